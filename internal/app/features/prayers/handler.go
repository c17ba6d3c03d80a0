// internal/app/features/prayers/handler.go
package prayers

import (
	"net/http"
	"strings"
	"time"

	uierrors "github.com/koinonia-app/koinonia/internal/app/features/errors"
	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	"github.com/koinonia-app/koinonia/internal/app/policy/prayerpolicy"
	prayerstore "github.com/koinonia-app/koinonia/internal/app/store/prayers"
	"github.com/koinonia-app/koinonia/internal/app/store/queries/prayerqueries"
	userstore "github.com/koinonia-app/koinonia/internal/app/store/users"
	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/app/system/authz"
	"github.com/koinonia-app/koinonia/internal/app/system/htmlsanitize"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB      *mongo.Database
	Prayers *prayerstore.Store
	Users   *userstore.Store
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
	Now     func() time.Time
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Prayers: prayerstore.New(db),
		Users:   userstore.New(db),
		ErrLog:  errLog,
		Log:     logger,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

type createRequest struct {
	Subject  string `json:"subject" validate:"required,min=3,max=200" label:"Subject"`
	Message  string `json:"message" validate:"required,min=10,max=5000" label:"Message"`
	LeaderID string `json:"leaderId" validate:"omitempty,objectid" label:"Leader"`
}

// HandleCreate handles POST /api/prayer-requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Respond(w, r, "prayers: no user", apperr.Unauthenticated("Unauthorized."))
		return
	}

	var req createRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.Respond(w, r, "prayers: bad body", err)
		return
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if err := shared.Validate(&req); err != nil {
		h.ErrLog.Respond(w, r, "prayers: invalid", err)
		return
	}
	if htmlsanitize.HasMarkup(req.Subject) || htmlsanitize.HasMarkup(req.Message) {
		h.ErrLog.Respond(w, r, "prayers: markup", apperr.ValidationError("Subject and message must be plain text."))
		return
	}

	var explicit *primitive.ObjectID
	if req.LeaderID != "" {
		oid, _ := primitive.ObjectIDFromHex(req.LeaderID)
		explicit = &oid
	}
	leaderID := prayerpolicy.ResolveLeader(explicit, authz.LeaderID(r))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create prayer request")
	defer cancel()

	if leaderID != nil {
		leader, err := h.Users.GetByID(ctx, *leaderID)
		if err != nil && !apperr.Is(err, apperr.NotFound) {
			h.ErrLog.LogServerError(w, r, "prayers: load leader", err, "Unable to create prayer request.")
			return
		}
		if leader == nil || leader.Role != models.RoleLeader {
			h.ErrLog.Respond(w, r, "prayers: bad leader", apperr.ValidationError("Selected leader is invalid."))
			return
		}
	}

	p, err := h.Prayers.Create(ctx, models.PrayerRequest{
		UserID:    userID,
		LeaderID:  leaderID,
		Subject:   req.Subject,
		Message:   req.Message,
		CreatedAt: h.Now(),
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "prayers: insert", err, "Unable to create prayer request.")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, p)
}

// ServeList handles GET /api/prayer-requests. Admins see every request,
// leaders only those addressed to them.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Respond(w, r, "prayers: no user", apperr.Unauthenticated("Unauthorized."))
		return
	}
	scope, err := prayerpolicy.ListScope(role, userID)
	if err != nil {
		h.ErrLog.Respond(w, r, "prayers: list scope", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list prayer requests")
	defer cancel()

	rows, err := prayerqueries.List(ctx, h.DB, scope, 0)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "prayers: list", err, "Unable to load prayer requests.")
		return
	}
	shared.WriteJSON(w, http.StatusOK, rows)
}
