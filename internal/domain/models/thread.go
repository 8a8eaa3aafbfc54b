// internal/domain/models/thread.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Thread is a node in the discussion forest. A thread with no ParentID is a
// root post; a thread with a ParentID is a reply attached to that parent.
//
// ChildIDs holds the ids of direct replies in reply order. Only the
// attach-comment operation appends to it; nothing else mutates it.
//
// ParentID and CommunityID are soft references: the records they point at
// may have been deleted out from under us, and every read path treats a
// non-resolving reference as absent rather than as an error.
type Thread struct {
	ID          primitive.ObjectID   `bson:"_id" json:"id"`
	Text        string               `bson:"text" json:"text"`
	AuthorID    primitive.ObjectID   `bson:"author_id" json:"author_id"`
	CommunityID *primitive.ObjectID  `bson:"community_id,omitempty" json:"community_id,omitempty"`
	ParentID    *primitive.ObjectID  `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	ChildIDs    []primitive.ObjectID `bson:"child_ids" json:"child_ids"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
}

// IsRoot reports whether the thread is a root post.
func (t Thread) IsRoot() bool {
	return t.ParentID == nil
}
