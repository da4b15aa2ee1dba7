// internal/app/features/influencers/routes.go
package influencers

import "github.com/go-chi/chi/v5"

// Routes mounts under /api/influencers. Callers wrap it in RequireSignedIn.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/search", h.ServeSearch)
	r.Post("/backfill", h.HandleBackfill)
	r.Get("/{id}", h.ServeGet)
	r.Patch("/{id}", h.HandlePatch)
	r.Delete("/{id}", h.HandleDelete)
	return r
}
