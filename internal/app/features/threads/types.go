// internal/app/features/threads/types.go
package threads

import (
	"time"

	"github.com/dalemusser/threadhub/internal/app/store/queries/threadqueries"
	"github.com/dalemusser/threadhub/internal/domain/models"
)

type createThreadRequest struct {
	Text          string `json:"text" validate:"required"`
	AuthorID      string `json:"authorId" validate:"required"`
	CommunityCode string `json:"communityCode" validate:"omitempty,max=64"`
	Path          string `json:"path" validate:"omitempty,startswith=/"`
}

type createReplyRequest struct {
	Text     string `json:"text" validate:"required"`
	AuthorID string `json:"authorId" validate:"required"`
	Path     string `json:"path" validate:"omitempty,startswith=/"`
}

// AuthorView is the author shape embedded in thread responses. A nil author
// means the account no longer exists.
type AuthorView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// CommunityView is the community shape embedded in root thread responses.
type CommunityView struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// ThreadView is the API shape of a thread, with as many child levels as the
// serving endpoint expanded.
type ThreadView struct {
	ID         string         `json:"id"`
	Text       string         `json:"text"`
	ParentID   string         `json:"parentId,omitempty"`
	Author     *AuthorView    `json:"author"`
	Community  *CommunityView `json:"community,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	ReplyCount int            `json:"replyCount"`
	Children   []*ThreadView  `json:"children"`
}

func newAuthorView(u *models.User) *AuthorView {
	if u == nil {
		return nil
	}
	return &AuthorView{
		ID:       u.ID.Hex(),
		Username: u.Username,
		FullName: u.FullName,
		ImageURL: u.ImageURL,
	}
}

func newCommunityView(c *models.Community) *CommunityView {
	if c == nil {
		return nil
	}
	return &CommunityView{
		ID:       c.ID.Hex(),
		Code:     c.Code,
		Name:     c.Name,
		ImageURL: c.ImageURL,
	}
}

func newThreadView(t models.Thread, author *models.User, community *models.Community) *ThreadView {
	v := &ThreadView{
		ID:         t.ID.Hex(),
		Text:       t.Text,
		Author:     newAuthorView(author),
		Community:  newCommunityView(community),
		CreatedAt:  t.CreatedAt,
		ReplyCount: len(t.ChildIDs),
		Children:   []*ThreadView{},
	}
	if t.ParentID != nil {
		v.ParentID = t.ParentID.Hex()
	}
	return v
}

// ViewFromExpanded renders an expanded subtree into the API shape.
func ViewFromExpanded(n *threadqueries.ExpandedThread) *ThreadView {
	v := newThreadView(n.Thread, n.Author, n.Community)
	for _, child := range n.Children {
		v.Children = append(v.Children, ViewFromExpanded(child))
	}
	return v
}
