// internal/app/features/systemusers/list.go
package systemusers

import (
	"net/http"
	"time"

	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	"github.com/koinonia-app/koinonia/internal/app/system/authz"
	"github.com/koinonia-app/koinonia/internal/app/system/presence"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type userRow struct {
	ID             primitive.ObjectID  `json:"id"`
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	Role           string              `json:"role"`
	LeaderID       *primitive.ObjectID `json:"leaderId,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
	LastActivityAt *time.Time          `json:"lastActivityAt,omitempty"`
	Online         bool                `json:"online"`
}

// ServeList handles GET /admin/users: every user, newest first. Opening
// the page counts as activity for the admin.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, _, adminID, _ := authz.UserCtx(r)
	now := h.Now()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin user list")
	defer cancel()

	if err := h.Users.TouchActivity(ctx, adminID, now); err != nil {
		h.Log.Warn("admin user list: touch activity", zap.Error(err))
	}

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin user list", err, "Unable to load users.")
		return
	}

	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		last := u.LastActivityAt
		if u.ID == adminID {
			last = &now
		}
		rows = append(rows, userRow{
			ID:             u.ID,
			Name:           u.FullName,
			Email:          u.Email,
			Role:           u.Role,
			LeaderID:       u.LeaderID,
			CreatedAt:      u.CreatedAt,
			LastActivityAt: last,
			Online:         presence.Online(last, now),
		})
	}
	shared.WriteJSON(w, http.StatusOK, rows)
}
