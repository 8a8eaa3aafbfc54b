// internal/domain/models/community.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Community is a shared posting space. Community records are owned by an
// external system which addresses them by Code, an opaque external
// identifier distinct from the Mongo id. Root creation resolves a caller
// supplied code to the internal id; an unknown code means the post is
// created as personal.
//
// ThreadIDs lists the root posts published into the community, maintained
// the same way as User.ThreadIDs.
type Community struct {
	ID          primitive.ObjectID   `bson:"_id" json:"id"`
	Code        string               `bson:"code" json:"code"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"name_ci"`
	Bio         string               `bson:"bio,omitempty" json:"bio,omitempty"`
	ImageURL    string               `bson:"image_url,omitempty" json:"image_url,omitempty"`
	CreatedByID *primitive.ObjectID  `bson:"created_by,omitempty" json:"created_by,omitempty"`
	MemberIDs   []primitive.ObjectID `bson:"member_ids" json:"member_ids"`
	ThreadIDs   []primitive.ObjectID `bson:"thread_ids" json:"thread_ids"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
