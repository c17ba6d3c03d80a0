// internal/app/features/devotionals/routes.go
package devotionals

import (
	"github.com/go-chi/chi/v5"
	"github.com/koinonia-app/koinonia/internal/app/system/auth"
	"github.com/koinonia-app/koinonia/internal/domain/models"
)

// Routes is mounted at /devocionais and is public.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{slug}", h.ServeShow)
	return r
}

// AdminRoutes is mounted at /admin/devotionals.
func AdminRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleAdmin))
		pr.Get("/", h.ServeAdminList)
	})

	return r
}
