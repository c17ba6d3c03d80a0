// internal/app/features/groups/selectleader.go
package groups

import (
	"net/http"

	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	"github.com/koinonia-app/koinonia/internal/app/policy/memberpolicy"
	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/app/system/authz"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// leaderOption is one row of the leader picker.
type leaderOption struct {
	ID             primitive.ObjectID `json:"id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	DisciplesCount int64              `json:"disciplesCount"`
}

// ServeLeaders handles GET /api/groups/select-leader: every LEADER sorted by
// name with how many users currently point at them.
func (h *Handler) ServeLeaders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list leaders")
	defer cancel()

	leaders, err := h.Users.ListByRole(ctx, models.RoleLeader)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "groups: list leaders", err, "Unable to load leaders.")
		return
	}
	ids := make([]primitive.ObjectID, len(leaders))
	for i, l := range leaders {
		ids[i] = l.ID
	}
	counts, err := h.Users.CountDisciplesByLeader(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "groups: count disciples", err, "Unable to load leaders.")
		return
	}

	out := make([]leaderOption, 0, len(leaders))
	for _, l := range leaders {
		out = append(out, leaderOption{ID: l.ID, Name: l.FullName, Email: l.Email, DisciplesCount: counts[l.ID]})
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

type selectRequest struct {
	LeaderID string `json:"leaderId" validate:"required,objectid" label:"Leader"`
}

// HandleSelect handles POST /api/groups/select-leader. Only members choose a
// leader; the choice may be changed at any time.
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Respond(w, r, "groups: no user", apperr.Unauthenticated("Unauthorized."))
		return
	}
	if err := memberpolicy.CheckCanSelect(role); err != nil {
		h.ErrLog.Respond(w, r, "groups: select leader", err)
		return
	}

	var req selectRequest
	if err := shared.DecodeAndValidate(w, r, &req); err != nil {
		h.ErrLog.Respond(w, r, "groups: bad body", err)
		return
	}
	leaderID, _ := primitive.ObjectIDFromHex(req.LeaderID)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "select leader")
	defer cancel()

	leader, err := h.Users.GetByID(ctx, leaderID)
	if err != nil && !apperr.Is(err, apperr.NotFound) {
		h.ErrLog.LogServerError(w, r, "groups: load leader", err, "Unable to select leader.")
		return
	}
	if err := memberpolicy.CheckLeaderChoice(userID, leaderID, leader); err != nil {
		h.ErrLog.Respond(w, r, "groups: leader choice", err)
		return
	}

	if err := h.Users.SetLeader(ctx, userID, leaderID); err != nil {
		h.ErrLog.Respond(w, r, "groups: set leader", err)
		return
	}
	h.AuditLog.LeaderSelected(ctx, r, userID, leaderID)

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Leader " + leader.FullName + " selected.",
	})
}
