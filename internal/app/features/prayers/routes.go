// internal/app/features/prayers/routes.go
package prayers

import (
	"github.com/go-chi/chi/v5"
	"github.com/koinonia-app/koinonia/internal/app/system/auth"
)

// Routes is mounted at /api/prayer-requests. Any signed-in user may submit;
// listing is scoped in the handler.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/", h.HandleCreate)
		pr.Get("/", h.ServeList)
	})

	return r
}
