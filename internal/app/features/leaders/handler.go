// internal/app/features/leaders/handler.go
package leaders

import (
	"net/http"
	"time"

	uierrors "github.com/koinonia-app/koinonia/internal/app/features/errors"
	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	"github.com/koinonia-app/koinonia/internal/app/policy/prayerpolicy"
	meetingstore "github.com/koinonia-app/koinonia/internal/app/store/meetings"
	"github.com/koinonia-app/koinonia/internal/app/store/queries/prayerqueries"
	userstore "github.com/koinonia-app/koinonia/internal/app/store/users"
	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/app/system/authz"
	"github.com/koinonia-app/koinonia/internal/app/system/groupstats"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Handler serves the leader area.
type Handler struct {
	DB       *mongo.Database
	Users    *userstore.Store
	Meetings *meetingstore.Store
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
	Now      func() time.Time
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Users:    userstore.New(db),
		Meetings: meetingstore.New(db),
		ErrLog:   errLog,
		Log:      logger,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

type leaderData struct {
	Prayers       []prayerqueries.PrayerRow `json:"prayers"`
	Meetings      []models.Meeting          `json:"meetings"`
	Disciples     []groupstats.MemberView   `json:"disciples"`
	OnlineCount   int                       `json:"onlineCount"`
	DisciplesSize int                       `json:"disciplesCount"`
}

// ServeLeader handles GET /leader: prayer requests in the caller's scope,
// the caller's meetings, and (for leaders) their disciples with presence.
// Admins see every prayer request and no disciples list.
func (h *Handler) ServeLeader(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Respond(w, r, "leader page: no user", apperr.Unauthenticated("Unauthorized."))
		return
	}
	scope, err := prayerpolicy.ListScope(role, userID)
	if err != nil {
		h.ErrLog.Respond(w, r, "leader page: scope", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "leader page")
	defer cancel()

	var (
		d         leaderData
		disciples []models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Prayers, err = prayerqueries.List(gctx, h.DB, scope, 0)
		return err
	})
	g.Go(func() (err error) {
		d.Meetings, err = h.Meetings.ListByLeader(gctx, userID, 0)
		return err
	})
	if role == models.RoleLeader {
		g.Go(func() (err error) {
			disciples, err = h.Users.ListDisciples(gctx, userID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		h.ErrLog.LogServerError(w, r, "leader page: load", err, "Unable to load the leader area.")
		return
	}

	d.Disciples = groupstats.Members(disciples, h.Now())
	d.DisciplesSize = len(d.Disciples)
	for _, m := range d.Disciples {
		if m.Online {
			d.OnlineCount++
		}
	}
	shared.WriteJSON(w, http.StatusOK, d)
}
