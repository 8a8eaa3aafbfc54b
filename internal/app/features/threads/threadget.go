// internal/app/features/threads/threadget.go
package threads

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/threadhub/internal/app/store/queries/threadqueries"
	threadstore "github.com/dalemusser/threadhub/internal/app/store/threads"
	"github.com/dalemusser/threadhub/internal/app/system/timeouts"
	"github.com/dalemusser/threadhub/internal/app/system/webjson"
	"github.com/dalemusser/threadhub/internal/app/system/weberrors"
)

// viewDepth is how many child levels a direct thread view expands: the
// thread's replies, and each reply's replies (each with its author).
const viewDepth = 2

// ServeThread handles GET /api/threads/{id}.
func (h *Handler) ServeThread(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		weberrors.RenderValidation(w, "thread id must be a valid id")
		return
	}

	root, err := threadstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			weberrors.RenderNotFound(w, "thread not found")
			return
		}
		h.Log.Error("view thread: load root", zap.Error(err))
		weberrors.RenderStoreUnavailable(w)
		return
	}

	expanded, err := threadqueries.Expand(ctx, h.DB, root, viewDepth)
	if err != nil {
		h.Log.Error("view thread: expand", zap.Error(err))
		weberrors.RenderStoreUnavailable(w)
		return
	}

	webjson.Write(w, http.StatusOK, ViewFromExpanded(expanded))
}
