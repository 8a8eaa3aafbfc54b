// internal/app/features/threads/threaddelete.go
package threads

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/threadhub/internal/app/store/crossref"
	threadstore "github.com/dalemusser/threadhub/internal/app/store/threads"
	"github.com/dalemusser/threadhub/internal/app/system/metrics"
	"github.com/dalemusser/threadhub/internal/app/system/timeouts"
	"github.com/dalemusser/threadhub/internal/app/system/weberrors"
)

// PartialCascadeError reports a cascade whose thread records were deleted
// but whose owner-list retraction failed. The records are gone; the stale
// references are recoverable by an operator repair pass, not by retrying
// the delete (the root no longer resolves).
type PartialCascadeError struct {
	RootID    primitive.ObjectID
	VictimIDs []primitive.ObjectID
	Err       error
}

func (e *PartialCascadeError) Error() string {
	return fmt.Sprintf("cascade delete %s: %d records deleted but retraction failed: %v",
		e.RootID.Hex(), len(e.VictimIDs), e.Err)
}

func (e *PartialCascadeError) Unwrap() error { return e.Err }

// HandleDeleteThread handles DELETE /api/threads/{id}?path=.
//
// Deleting an already-deleted id fails with 404; deletion is not idempotent
// at the API boundary even though its effect is.
func (h *Handler) HandleDeleteThread(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		weberrors.RenderValidation(w, "thread id must be a valid id")
		return
	}

	err = h.deleteSubtree(ctx, id, r.URL.Query().Get("path"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			weberrors.RenderNotFound(w, "thread not found")
			return
		}
		var partial *PartialCascadeError
		if errors.As(err, &partial) {
			weberrors.RenderPartialCascade(w)
			return
		}
		h.Log.Error("delete thread", zap.Error(err))
		weberrors.RenderStoreUnavailable(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deleteSubtree removes the thread, every transitive descendant, and all
// owner-list references to any of them.
//
// The victim set is computed from a point-in-time read before the bulk
// delete; a reply attached to the subtree between the read and the delete
// survives as an orphan. No lock spans the steps, so a concurrent delete of
// an overlapping subtree makes the later call fail on the root fetch.
func (h *Handler) deleteSubtree(ctx context.Context, rootID primitive.ObjectID, path string) error {
	thrStore := threadstore.New(h.DB)

	root, err := thrStore.GetByID(ctx, rootID)
	if err != nil {
		return err
	}

	descendants, err := thrStore.Descendants(ctx, root)
	if err != nil {
		return err
	}

	victims := make([]primitive.ObjectID, 0, len(descendants)+1)
	victims = append(victims, root.ID)
	for _, d := range descendants {
		victims = append(victims, d.ID)
	}

	authorSeen := map[primitive.ObjectID]bool{root.AuthorID: true}
	authorIDs := []primitive.ObjectID{root.AuthorID}
	communitySeen := map[primitive.ObjectID]bool{}
	var communityIDs []primitive.ObjectID
	if root.CommunityID != nil {
		communitySeen[*root.CommunityID] = true
		communityIDs = append(communityIDs, *root.CommunityID)
	}
	for _, d := range descendants {
		if !authorSeen[d.AuthorID] {
			authorSeen[d.AuthorID] = true
			authorIDs = append(authorIDs, d.AuthorID)
		}
		if d.CommunityID != nil && !communitySeen[*d.CommunityID] {
			communitySeen[*d.CommunityID] = true
			communityIDs = append(communityIDs, *d.CommunityID)
		}
	}

	deleted, err := thrStore.DeleteByIDs(ctx, victims)
	if err != nil {
		return err
	}

	if err := crossref.New(h.DB).Retract(ctx, victims, authorIDs, communityIDs); err != nil {
		h.Audit.CascadeDeleteFailed(ctx, root.ID, victims, authorIDs, communityIDs, err.Error())
		metrics.RecordCascadeDelete("partial")
		return &PartialCascadeError{RootID: root.ID, VictimIDs: victims, Err: err}
	}

	h.Audit.CascadeDeleteSucceeded(ctx, root.ID, victims, authorIDs, communityIDs)
	metrics.RecordCascadeDelete("ok")
	h.Log.Info("thread subtree deleted",
		zap.String("root_id", root.ID.Hex()),
		zap.Int("victims", len(victims)),
		zap.Int64("deleted", deleted))

	if path != "" {
		h.Reval.Invalidate(ctx, path)
	}
	return nil
}
