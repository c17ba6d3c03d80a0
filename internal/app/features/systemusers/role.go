// internal/app/features/systemusers/role.go
package systemusers

import (
	"net/http"

	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	"github.com/koinonia-app/koinonia/internal/app/policy/rolepolicy"
	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/app/system/authz"
	"github.com/koinonia-app/koinonia/internal/app/system/normalize"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.uber.org/zap"
)

type roleRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// HandleSetRole handles PATCH /api/admin/users/role.
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	role, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Respond(w, r, "set role: no user", apperr.Unauthenticated("Unauthorized."))
		return
	}
	// Non-admins are refused before the body is read.
	if role != models.RoleAdmin {
		h.ErrLog.Respond(w, r, "set role", apperr.Forbidden("Only admins can change roles."))
		return
	}

	var req roleRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.Respond(w, r, "set role: bad body", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "set role")
	defer cancel()

	newRole := normalize.Role(req.Role)
	target, err := rolepolicy.Authorize(ctx, h.Users, rolepolicy.Change{
		ActorID:   actorID,
		ActorRole: role,
		TargetID:  req.UserID,
		NewRole:   newRole,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, "set role: rejected", err)
		return
	}

	if err := h.Users.SetRole(ctx, target.ID, newRole); err != nil {
		h.ErrLog.Respond(w, r, "set role: persist", err)
		return
	}
	h.AuditLog.RoleChanged(ctx, r, actorID, target.ID, target.Role, newRole)
	h.Log.Info("role changed",
		zap.String("actor", actorID.Hex()),
		zap.String("target", target.ID.Hex()),
		zap.String("from", target.Role),
		zap.String("to", newRole))

	shared.WriteJSON(w, http.StatusOK, map[string]string{"id": target.ID.Hex(), "role": newRole})
}
