// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: the MongoDB ObjectID (_id) of the user record
//   - Email: what users type to sign in

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	uierrors "github.com/koinonia-app/koinonia/internal/app/features/errors"
	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	userstore "github.com/koinonia-app/koinonia/internal/app/store/users"
	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/app/system/auditlog"
	"github.com/koinonia-app/koinonia/internal/app/system/auth"
	"github.com/koinonia-app/koinonia/internal/app/system/authutil"
	"github.com/koinonia-app/koinonia/internal/app/system/normalize"
	"github.com/koinonia-app/koinonia/internal/app/system/ratelimit"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// DefaultDestination is where users land after signing in without a
// callback URL.
const DefaultDestination = "/dashboard"

const invalidCredentials = "Invalid email or password."

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Limiter    *ratelimit.AuthLimiter // nil disables attempt limiting
	Log        *zap.Logger
	Now        func() time.Time
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
		Log:        logger,
		Now:        time.Now,
	}
}

type loginRequest struct {
	Email       string `json:"email" validate:"required,email" label:"Email"`
	Password    string `json:"password" validate:"required" label:"Password"`
	CallbackURL string `json:"callbackUrl"`
}

type sessionView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type loginResponse struct {
	OK       bool        `json:"ok"`
	Redirect string      `json:"redirect"`
	User     sessionView `json:"user"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeLogin describes the login form. Signed-in users are sent straight
// on to their destination.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	dest := destination(query.Get(r, "callbackUrl"))
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"callbackUrl": dest,
		"fields":      []string{"email", "password"},
		"registerUrl": "/api/auth/register",
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := shared.DecodeAndValidate(w, r, &req); err != nil {
		h.ErrLog.Respond(w, r, "login: bad request", err)
		return
	}
	email := normalize.Email(req.Email)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, email); !ok {
			h.AuditLog.LoginFailed(ctx, r, nil, email, "rate_limited")
			shared.WriteError(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	u, err := h.Users.GetByEmail(ctx, email)
	switch {
	case apperr.Is(err, apperr.NotFound):
		h.AuditLog.LoginFailed(ctx, r, nil, email, "user_not_found")
		shared.WriteError(w, http.StatusUnauthorized, invalidCredentials)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB find user", err, "A server error occurred.")
		return
	}

	if !authutil.CheckPassword(req.Password, u.PasswordHash) {
		h.AuditLog.LoginFailed(ctx, r, &u.ID, email, "bad_password")
		shared.WriteError(w, http.StatusUnauthorized, invalidCredentials)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Unable to create session. Please try again.")
		return
	}

	if err := h.Users.TouchLogin(ctx, u.ID, h.Now().UTC()); err != nil {
		h.Log.Warn("failed to stamp last login", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, email)

	shared.WriteJSON(w, http.StatusOK, loginResponse{
		OK:       true,
		Redirect: destination(req.CallbackURL),
		User:     sessionView{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email, Role: u.Role},
	})
}

// destination keeps only local paths.
func destination(callback string) string {
	return urlutil.SafeReturn(callback, "", DefaultDestination)
}
