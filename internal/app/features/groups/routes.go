// internal/app/features/groups/routes.go
package groups

import (
	"github.com/go-chi/chi/v5"
	"github.com/koinonia-app/koinonia/internal/app/system/auth"
	"github.com/koinonia-app/koinonia/internal/domain/models"
)

// Routes is mounted at /api/groups.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/select-leader", h.ServeLeaders)
		pr.Post("/select-leader", h.HandleSelect)
	})

	return r
}

// AdminRoutes is mounted at /admin/groups.
func AdminRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleAdmin))
		pr.Get("/", h.ServeOverview)
	})

	return r
}
