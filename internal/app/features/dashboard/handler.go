// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/koinonia-app/koinonia/internal/app/features/errors"
	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	meetingstore "github.com/koinonia-app/koinonia/internal/app/store/meetings"
	prayerstore "github.com/koinonia-app/koinonia/internal/app/store/prayers"
	userstore "github.com/koinonia-app/koinonia/internal/app/store/users"
	"github.com/koinonia-app/koinonia/internal/app/system/authz"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.uber.org/zap"
)

// DevotionalSource yields the devotional shown on dashboards.
type DevotionalSource interface {
	OfTheDay(ctx context.Context) (*models.Devotional, bool)
}

type Handler struct {
	Users       *userstore.Store
	Prayers     *prayerstore.Store
	Meetings    *meetingstore.Store
	Devotionals DevotionalSource
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger
	Now         func() time.Time
}

func NewHandler(users *userstore.Store, prayers *prayerstore.Store, meetings *meetingstore.Store, devos DevotionalSource, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:       users,
		Prayers:     prayers,
		Meetings:    meetings,
		Devotionals: devos,
		ErrLog:      errLog,
		Log:         logger,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

// Link is a navigation entry on the dashboard.
type Link struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// HomeFor is the landing page of each role.
func HomeFor(role string) string {
	switch role {
	case models.RoleAdmin:
		return "/admin"
	case models.RoleLeader:
		return "/leader"
	}
	return "/member"
}

// LinksFor lists the pages a role may open, most specific first.
func LinksFor(role string) []Link {
	var links []Link
	switch role {
	case models.RoleAdmin:
		links = append(links,
			Link{"Admin panel", "/admin"},
			Link{"Users", "/admin/users"},
			Link{"Groups", "/admin/groups"},
			Link{"Reading plans", "/admin/plans"},
			Link{"Devotionals", "/admin/devotionals"},
			Link{"Audit log", "/admin/audit"},
			Link{"Leader area", "/leader"},
		)
	case models.RoleLeader:
		links = append(links, Link{"Leader area", "/leader"})
	default:
		links = append(links, Link{"Member area", "/member"})
	}
	return append(links,
		Link{"My plans", "/meus-planos"},
		Link{"Plans", "/planos"},
		Link{"Devotionals", "/devocionais"},
		Link{"Bible", "/biblia"},
	)
}

type dashboardData struct {
	Role         string             `json:"role"`
	UserName     string             `json:"userName"`
	Home         string             `json:"home"`
	Links        []Link             `json:"links"`
	Devotional   *models.Devotional `json:"devotionalOfTheDay"`
	FromFallback bool               `json:"fromFallback"`
}

// ServeDashboard handles GET /dashboard. Browsers are sent to their role's
// home; API callers get the link list and the devotional of the day.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	role, name, _, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login?callbackUrl=/dashboard", http.StatusSeeOther)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, HomeFor(role), http.StatusSeeOther)
		return
	}

	devo, fallback := h.Devotionals.OfTheDay(r.Context())
	shared.WriteJSON(w, http.StatusOK, dashboardData{
		Role:         role,
		UserName:     name,
		Home:         HomeFor(role),
		Links:        LinksFor(role),
		Devotional:   devo,
		FromFallback: fallback,
	})
}
