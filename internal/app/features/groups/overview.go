// internal/app/features/groups/overview.go
package groups

import (
	"net/http"

	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	"github.com/koinonia-app/koinonia/internal/app/system/groupstats"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"github.com/koinonia-app/koinonia/internal/domain/models"
)

// ServeOverview handles GET /admin/groups: every leader with their members
// and online counts, plus members without a valid leader.
func (h *Handler) ServeOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "group overview")
	defer cancel()

	leaders, err := h.Users.ListByRole(ctx, models.RoleLeader)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "groups: list leaders", err, "Unable to load groups.")
		return
	}
	members, err := h.Users.ListByRole(ctx, models.RoleMember)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "groups: list members", err, "Unable to load groups.")
		return
	}

	shared.WriteJSON(w, http.StatusOK, groupstats.Build(leaders, members, h.Now()))
}
