// internal/app/features/leaders/routes.go
package leaders

import (
	"github.com/go-chi/chi/v5"
	"github.com/koinonia-app/koinonia/internal/app/system/auth"
	"github.com/koinonia-app/koinonia/internal/domain/models"
)

// Routes is mounted at /leader.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleLeader, models.RoleAdmin))
		pr.Get("/", h.ServeLeader)
	})

	return r
}
