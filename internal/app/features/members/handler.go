// internal/app/features/members/handler.go
package members

import (
	"context"
	"net/http"

	uierrors "github.com/koinonia-app/koinonia/internal/app/features/errors"
	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	meetingstore "github.com/koinonia-app/koinonia/internal/app/store/meetings"
	userstore "github.com/koinonia-app/koinonia/internal/app/store/users"
	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/app/system/authz"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DevotionalSource yields the devotional shown on the member page.
type DevotionalSource interface {
	OfTheDay(ctx context.Context) (*models.Devotional, bool)
}

// Handler serves the member area.
type Handler struct {
	Users       *userstore.Store
	Meetings    *meetingstore.Store
	Devotionals DevotionalSource
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(users *userstore.Store, meetings *meetingstore.Store, devos DevotionalSource, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:       users,
		Meetings:    meetings,
		Devotionals: devos,
		ErrLog:      errLog,
		Log:         logger,
	}
}

type leaderInfo struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

type memberData struct {
	Leader       *leaderInfo        `json:"leader"`
	Meetings     []models.Meeting   `json:"meetings"`
	Devotional   *models.Devotional `json:"devotionalOfTheDay"`
	FromFallback bool               `json:"fromFallback"`
}

// ServeMember handles GET /member: the caller's leader, that leader's most
// recent meetings, and the devotional of the day.
func (h *Handler) ServeMember(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Respond(w, r, "member page: no user", apperr.Unauthenticated("Unauthorized."))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "member page")
	defer cancel()

	me, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.Respond(w, r, "member page: load user", err)
		return
	}

	d := memberData{Meetings: []models.Meeting{}}
	if me.HasLeader() {
		leader, err := h.Users.GetByID(ctx, *me.LeaderID)
		switch {
		case err == nil:
			d.Leader = &leaderInfo{ID: leader.ID, Name: leader.FullName, Email: leader.Email}
		case !apperr.Is(err, apperr.NotFound):
			h.ErrLog.LogServerError(w, r, "member page: load leader", err, "Unable to load the member area.")
			return
		}
		if d.Meetings, err = h.Meetings.Recent(ctx, *me.LeaderID); err != nil {
			h.ErrLog.LogServerError(w, r, "member page: meetings", err, "Unable to load the member area.")
			return
		}
	}

	d.Devotional, d.FromFallback = h.Devotionals.OfTheDay(r.Context())
	shared.WriteJSON(w, http.StatusOK, d)
}
