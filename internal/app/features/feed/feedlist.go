// internal/app/features/feed/feedlist.go
package feed

import (
	"context"
	"net/http"

	"github.com/dalemusser/threadhub/internal/app/features/threads"
	"github.com/dalemusser/threadhub/internal/app/store/queries/threadqueries"
	threadstore "github.com/dalemusser/threadhub/internal/app/store/threads"
	"github.com/dalemusser/threadhub/internal/app/system/paging"
	"github.com/dalemusser/threadhub/internal/app/system/timeouts"
	"github.com/dalemusser/threadhub/internal/app/system/weberrors"
	"github.com/dalemusser/threadhub/internal/app/system/webjson"
	"go.uber.org/zap"
)

// feedResponse is the page envelope for GET /api/feed.
type feedResponse struct {
	Threads  []*threads.ThreadView `json:"threads"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
	Total    int64                 `json:"total"`
	HasMore  bool                  `json:"hasMore"`
}

// ServeFeed handles GET /api/feed: root threads newest first, each with
// its author, community and one level of replies.
func (h *Handler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	page := paging.ParsePage(r)
	pageSize := paging.ParsePageSize(r, h.PageSize)
	offset := paging.Offset(page, pageSize)

	thrStore := threadstore.New(h.DB)

	roots, err := thrStore.ListRoots(ctx, offset, int64(pageSize))
	if err != nil {
		h.Log.Error("feed: list roots", zap.Error(err))
		weberrors.RenderStoreUnavailable(w)
		return
	}

	total, err := thrStore.CountRoots(ctx)
	if err != nil {
		h.Log.Error("feed: count roots", zap.Error(err))
		weberrors.RenderStoreUnavailable(w)
		return
	}

	expanded, err := threadqueries.ExpandMany(ctx, h.DB, roots, 1)
	if err != nil {
		h.Log.Error("feed: expand roots", zap.Error(err))
		weberrors.RenderStoreUnavailable(w)
		return
	}

	views := make([]*threads.ThreadView, 0, len(expanded))
	for _, node := range expanded {
		views = append(views, threads.ViewFromExpanded(node))
	}

	webjson.Write(w, http.StatusOK, feedResponse{
		Threads:  views,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		HasMore:  paging.HasMore(total, offset, len(roots)),
	})
}
