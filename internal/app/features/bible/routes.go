// internal/app/features/bible/routes.go
package bible

import "github.com/go-chi/chi/v5"

// APIRoutes is mounted at /api/bible.
func APIRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeAPI)
	r.Get("/random", h.ServeRandom)
	return r
}

// PageRoutes is mounted at /biblia.
func PageRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServePage)
	return r
}
