// internal/app/features/threads/threadreply.go
package threads

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	threadstore "github.com/dalemusser/threadhub/internal/app/store/threads"
	userstore "github.com/dalemusser/threadhub/internal/app/store/users"
	"github.com/dalemusser/threadhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/threadhub/internal/app/system/limits"
	"github.com/dalemusser/threadhub/internal/app/system/timeouts"
	"github.com/dalemusser/threadhub/internal/app/system/webjson"
	"github.com/dalemusser/threadhub/internal/app/system/weberrors"
	"github.com/dalemusser/threadhub/internal/domain/models"
)

// HandleCreateReply handles POST /api/threads/{id}/comments.
//
// The reply record is inserted first and then appended to the parent's
// child list; the two writes are not atomic. If the parent is deleted
// between the two, the reply survives as an unreachable orphan until the
// integrity scan reports it.
func (h *Handler) HandleCreateReply(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	parentID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		weberrors.RenderValidation(w, "thread id must be a valid id")
		return
	}

	var req createReplyRequest
	if err := webjson.DecodeValidate(w, r, &req); err != nil {
		weberrors.RenderValidation(w, "invalid request body")
		return
	}

	authorID, err := primitive.ObjectIDFromHex(req.AuthorID)
	if err != nil {
		weberrors.RenderValidation(w, "authorId must be a valid id")
		return
	}

	text := htmlsanitize.SanitizeAndTrim(req.Text)
	if text == "" {
		weberrors.RenderValidation(w, "text must not be empty")
		return
	}
	if len(text) > limits.MaxThreadTextLen {
		weberrors.RenderValidation(w, "text is too long")
		return
	}

	db := h.DB
	thrStore := threadstore.New(db)

	parent, err := thrStore.GetByID(ctx, parentID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			weberrors.RenderNotFound(w, "parent thread not found")
			return
		}
		h.Log.Error("create reply: load parent", zap.Error(err))
		weberrors.RenderStoreUnavailable(w)
		return
	}

	author, err := userstore.New(db).GetByID(ctx, authorID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			weberrors.RenderNotFound(w, "author not found")
			return
		}
		h.Log.Error("create reply: load author", zap.Error(err))
		weberrors.RenderStoreUnavailable(w)
		return
	}

	created, err := thrStore.Create(ctx, models.Thread{
		Text:     text,
		AuthorID: author.ID,
		ParentID: &parent.ID,
	})
	if err != nil {
		h.Log.Error("create reply: insert", zap.Error(err))
		weberrors.RenderStoreUnavailable(w)
		return
	}

	if err := thrStore.AppendChild(ctx, parent.ID, created.ID); err != nil {
		if err == mongo.ErrNoDocuments {
			// Parent deleted while the reply was being created. The reply
			// record remains as an invisible orphan.
			h.Log.Warn("create reply: parent vanished before append",
				zap.String("parent_id", parent.ID.Hex()),
				zap.String("reply_id", created.ID.Hex()))
			weberrors.RenderNotFound(w, "parent thread not found")
			return
		}
		h.Log.Error("create reply: append to parent", zap.Error(err))
		weberrors.RenderStoreUnavailable(w)
		return
	}

	if req.Path != "" {
		h.Reval.Invalidate(ctx, req.Path)
	}

	webjson.Write(w, http.StatusCreated, newThreadView(created, author, nil))
}
