// internal/app/features/register/handler.go
package register

import (
	"context"
	"net/http"

	uierrors "github.com/koinonia-app/koinonia/internal/app/features/errors"
	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	userstore "github.com/koinonia-app/koinonia/internal/app/store/users"
	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/app/system/auditlog"
	"github.com/koinonia-app/koinonia/internal/app/system/authutil"
	"github.com/koinonia-app/koinonia/internal/app/system/normalize"
	"github.com/koinonia-app/koinonia/internal/app/system/ratelimit"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.uber.org/zap"
)

// Handler creates member accounts.
type Handler struct {
	Users    *userstore.Store
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Limiter  *ratelimit.AuthLimiter // nil disables attempt limiting
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, ErrLog: errLog, AuditLog: audit, Log: logger}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2" label:"Name"`
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required,min=6,max=72" label:"Password"`
}

// HandleRegister handles POST /api/auth/register. New accounts are always
// MEMBERs; roles are changed later by an admin.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.Respond(w, r, "register: bad body", err)
		return
	}
	req.Name = normalize.Name(req.Name)
	req.Email = normalize.Email(req.Email)
	if err := shared.Validate(&req); err != nil {
		h.ErrLog.Respond(w, r, "register: invalid", err)
		return
	}
	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, req.Email); !ok {
			shared.WriteError(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		h.ErrLog.Respond(w, r, "register: hash password", apperr.Wrap(apperr.Validation, err.Error(), err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName:     req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleMember,
	})
	if err != nil {
		if apperr.Is(err, apperr.Validation) {
			h.ErrLog.Respond(w, r, "register: create", err)
			return
		}
		h.ErrLog.LogServerError(w, r, "register: create user", err, "Unable to register user.")
		return
	}

	h.AuditLog.UserRegistered(ctx, r, u.ID, u.Email)
	shared.WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "id": u.ID.Hex()})
}
