// internal/app/features/threads/routes.go
package threads

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter for the threads API; it is mounted under
// /api/threads. writeLimit is applied to every mutating route.
func Routes(h *Handler, writeLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// VIEW (author, community, two levels of children)
	r.Get("/{id}", h.ServeThread)

	// Writes share one rate limiter
	r.Group(func(wr chi.Router) {
		wr.Use(writeLimit)

		// CREATE
		wr.Post("/", h.HandleCreateThread)

		// REPLY
		wr.Post("/{id}/comments", h.HandleCreateReply)

		// DELETE (cascades over the whole subtree)
		wr.Delete("/{id}", h.HandleDeleteThread)
	})

	return r
}
