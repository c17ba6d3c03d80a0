// internal/app/features/meetings/routes.go
package meetings

import (
	"github.com/go-chi/chi/v5"
	"github.com/koinonia-app/koinonia/internal/app/system/auth"
	"github.com/koinonia-app/koinonia/internal/domain/models"
)

// Routes is mounted at /api/meetings.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleLeader, models.RoleAdmin))
		pr.Post("/", h.HandleCreate)
		pr.Get("/", h.ServeList)
	})

	return r
}
