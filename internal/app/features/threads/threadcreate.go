// internal/app/features/threads/threadcreate.go
package threads

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	communitystore "github.com/dalemusser/threadhub/internal/app/store/communities"
	threadstore "github.com/dalemusser/threadhub/internal/app/store/threads"
	userstore "github.com/dalemusser/threadhub/internal/app/store/users"
	"github.com/dalemusser/threadhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/threadhub/internal/app/system/limits"
	"github.com/dalemusser/threadhub/internal/app/system/timeouts"
	"github.com/dalemusser/threadhub/internal/app/system/webjson"
	"github.com/dalemusser/threadhub/internal/app/system/weberrors"
	"github.com/dalemusser/threadhub/internal/domain/models"
)

// HandleCreateThread handles POST /api/threads: a new top-level thread.
//
// The community code is resolved silently: a code that doesn't match any
// community yields a thread without one, never an error.
func (h *Handler) HandleCreateThread(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var req createThreadRequest
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
	usrStore := userstore.New(db)

	author, err := usrStore.GetByID(ctx, authorID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			weberrors.RenderNotFound(w, "author not found")
			return
		}
		h.Log.Error("create thread: load author", zap.Error(err))
		weberrors.RenderStoreUnavailable(w)
		return
	}

	var community *models.Community
	if req.CommunityCode != "" {
		c, err := communitystore.New(db).GetByCode(ctx, req.CommunityCode)
		switch {
		case err == mongo.ErrNoDocuments:
			h.Log.Debug("community code did not resolve",
				zap.String("code", req.CommunityCode))
		case err != nil:
			h.Log.Error("create thread: resolve community", zap.Error(err))
			weberrors.RenderStoreUnavailable(w)
			return
		default:
			community = c
		}
	}

	t := models.Thread{
		Text:     text,
		AuthorID: author.ID,
	}
	if community != nil {
		t.CommunityID = &community.ID
	}

	created, err := threadstore.New(db).Create(ctx, t)
	if err != nil {
		h.Log.Error("create thread: insert", zap.Error(err))
		weberrors.RenderStoreUnavailable(w)
		return
	}

	if err := usrStore.AppendThread(ctx, author.ID, created.ID); err != nil {
		if err == mongo.ErrNoDocuments {
			weberrors.RenderNotFound(w, "author not found")
			return
		}
		h.Log.Error("create thread: append to author", zap.Error(err))
		weberrors.RenderStoreUnavailable(w)
		return
	}

	if community != nil {
		if err := communitystore.New(db).AppendThread(ctx, community.ID, created.ID); err != nil {
			// The community vanished after resolution; the thread stays a
			// community-less root, same as an unresolvable code.
			if err == mongo.ErrNoDocuments {
				h.Log.Debug("community vanished before append",
					zap.String("community_id", community.ID.Hex()))
				community = nil
			} else {
				h.Log.Error("create thread: append to community", zap.Error(err))
				weberrors.RenderStoreUnavailable(w)
				return
			}
		}
	}

	if req.Path != "" {
		h.Reval.Invalidate(ctx, req.Path)
	}

	webjson.Write(w, http.StatusCreated, newThreadView(created, author, community))
}
