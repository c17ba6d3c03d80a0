// internal/app/features/heartbeat/routes.go
package heartbeat

import (
	"github.com/go-chi/chi/v5"
	"github.com/koinonia-app/koinonia/internal/app/system/auth"
)

// Routes returns the router for heartbeat endpoints.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Post("/", h.ServeHeartbeat)
	return r
}
