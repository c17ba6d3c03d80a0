// internal/app/features/readingplans/routes.go
package readingplans

import (
	"github.com/go-chi/chi/v5"
	"github.com/koinonia-app/koinonia/internal/app/system/auth"
	"github.com/koinonia-app/koinonia/internal/domain/models"
)

// Routes is mounted at /planos and is public.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeCatalog)
	r.Get("/{slug}", h.ServePlan)
	return r
}

// MyPlansRoutes is mounted at /meus-planos.
func MyPlansRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeMyPlans)
	})

	return r
}

// APIRoutes is mounted at /api/reading-plans.
func APIRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/join", h.HandleJoin)
		pr.Post("/progress", h.HandleProgress)
	})

	return r
}

// AdminRoutes is mounted at /admin/plans.
func AdminRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleAdmin))
		pr.Get("/", h.ServeAdminPlans)
	})

	return r
}
