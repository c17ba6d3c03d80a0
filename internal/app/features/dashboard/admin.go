// internal/app/features/dashboard/admin.go
package dashboard

import (
	"net/http"

	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	"github.com/koinonia-app/koinonia/internal/app/system/groupstats"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// leaderStat is one row of the per-leader table on the admin panel.
type leaderStat struct {
	ID      primitive.ObjectID `json:"id"`
	Name    string             `json:"name"`
	Total   int                `json:"total"`
	Online  int                `json:"online"`
	Offline int                `json:"offline"`
}

type adminData struct {
	TotalUsers             int64        `json:"totalUsers"`
	TotalMembers           int64        `json:"totalMembers"`
	TotalLeaders           int64        `json:"totalLeaders"`
	TotalAdmins            int64        `json:"totalAdmins"`
	MembersWithLeader      int64        `json:"membersWithLeader"`
	MembersWithoutLeader   int64        `json:"membersWithoutLeader"`
	OnlineMembers          int64        `json:"onlineMembers"`
	TotalPrayerRequests    int64        `json:"totalPrayerRequests"`
	TotalMeetings          int64        `json:"totalMeetings"`
	TotalGroupsWithMembers int          `json:"totalGroupsWithMembers"`
	Leaders                []leaderStat `json:"leaders"`
}

// ServeAdmin handles GET /admin: community-wide counts and per-leader
// online stats. Counts run concurrently; any failure fails the page.
func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin dashboard")
	defer cancel()

	now := h.Now()
	var (
		d                adminData
		leaders, members []models.User
	)

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, f func() (int64, error)) {
		g.Go(func() error {
			n, err := f()
			*dst = n
			return err
		})
	}
	count(&d.TotalUsers, func() (int64, error) { return h.Users.CountAll(gctx) })
	count(&d.TotalMembers, func() (int64, error) { return h.Users.CountByRole(gctx, models.RoleMember) })
	count(&d.TotalLeaders, func() (int64, error) { return h.Users.CountByRole(gctx, models.RoleLeader) })
	count(&d.TotalAdmins, func() (int64, error) { return h.Users.CountByRole(gctx, models.RoleAdmin) })
	count(&d.MembersWithLeader, func() (int64, error) { return h.Users.CountMembersWithLeader(gctx, true) })
	count(&d.OnlineMembers, func() (int64, error) { return h.Users.CountOnlineMembers(gctx, now) })
	count(&d.TotalPrayerRequests, func() (int64, error) { return h.Prayers.CountAll(gctx) })
	count(&d.TotalMeetings, func() (int64, error) { return h.Meetings.CountAll(gctx) })
	g.Go(func() (err error) {
		leaders, err = h.Users.ListByRole(gctx, models.RoleLeader)
		return err
	})
	g.Go(func() (err error) {
		members, err = h.Users.ListByRole(gctx, models.RoleMember)
		return err
	})
	if err := g.Wait(); err != nil {
		h.ErrLog.LogServerError(w, r, "admin dashboard counts", err, "Unable to load the admin panel.")
		return
	}

	d.MembersWithoutLeader = d.TotalMembers - d.MembersWithLeader
	sum := groupstats.Build(leaders, members, now)
	d.TotalGroupsWithMembers = sum.GroupsWithMembers
	d.Leaders = make([]leaderStat, 0, len(sum.Groups))
	for _, grp := range sum.Groups {
		d.Leaders = append(d.Leaders, leaderStat{
			ID:      grp.LeaderID,
			Name:    grp.LeaderName,
			Total:   grp.Total,
			Online:  grp.Online,
			Offline: grp.Offline,
		})
	}

	h.Log.Debug("admin dashboard served", zap.Int64("users", d.TotalUsers))
	shared.WriteJSON(w, http.StatusOK, d)
}
