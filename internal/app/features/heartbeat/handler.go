// internal/app/features/heartbeat/handler.go
package heartbeat

import (
	"context"
	"net/http"
	"time"

	userstore "github.com/koinonia-app/koinonia/internal/app/store/users"
	"github.com/koinonia-app/koinonia/internal/app/system/authz"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler refreshes last_activity_at, which drives the online indicator.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
	Now   func() time.Time
}

// NewHandler creates a new heartbeat handler.
func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger, Now: time.Now}
}

// ServeHeartbeat handles POST /api/heartbeat.
//
// It always answers 204. A failed write only costs the caller a few
// minutes of "online" status, so it is logged and otherwise ignored.
func (h *Handler) ServeHeartbeat(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.TouchActivity(ctx, uid, h.Now().UTC()); err != nil {
		h.Log.Warn("failed to update last_activity_at",
			zap.Error(err),
			zap.String("user_id", uid.Hex()))
	}
	w.WriteHeader(http.StatusNoContent)
}
