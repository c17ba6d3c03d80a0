// internal/app/features/meetings/handler.go
package meetings

import (
	"net/http"
	"strings"
	"time"

	uierrors "github.com/koinonia-app/koinonia/internal/app/features/errors"
	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	meetingstore "github.com/koinonia-app/koinonia/internal/app/store/meetings"
	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/app/system/authz"
	"github.com/koinonia-app/koinonia/internal/app/system/htmlsanitize"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Meetings *meetingstore.Store
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
	Now      func() time.Time
}

func NewHandler(meetings *meetingstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Meetings: meetings,
		ErrLog:   errLog,
		Log:      logger,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

type createRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200" label:"Title"`
	Description string `json:"description" validate:"max=5000" label:"Description"`
	MeetingDate string `json:"meetingDate" validate:"required" label:"Meeting date"`
}

// dateLayouts are tried in order. Layouts without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseMeetingDate accepts an RFC 3339 timestamp, a datetime-local value,
// or a bare date.
func ParseMeetingDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.ValidationError("Invalid meeting date.")
}

// HandleCreate handles POST /api/meetings. The caller owns the meeting.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Respond(w, r, "meetings: no user", apperr.Unauthenticated("Unauthorized."))
		return
	}
	if !authz.CanManageMeetings(r) {
		h.ErrLog.Respond(w, r, "meetings: role", apperr.Forbidden("Only leaders or admins can schedule meetings."))
		return
	}

	var req createRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.Respond(w, r, "meetings: bad body", err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := shared.Validate(&req); err != nil {
		h.ErrLog.Respond(w, r, "meetings: invalid", err)
		return
	}
	if htmlsanitize.HasMarkup(req.Title) || htmlsanitize.HasMarkup(req.Description) {
		h.ErrLog.Respond(w, r, "meetings: markup", apperr.ValidationError("Title and description must be plain text."))
		return
	}
	date, err := ParseMeetingDate(req.MeetingDate)
	if err != nil {
		h.ErrLog.Respond(w, r, "meetings: date", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create meeting")
	defer cancel()

	m, err := h.Meetings.Create(ctx, models.Meeting{
		LeaderID:    userID,
		Title:       req.Title,
		Description: req.Description,
		MeetingDate: date,
		CreatedAt:   h.Now(),
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "meetings: insert", err, "Unable to create meeting.")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, m)
}

// ServeList handles GET /api/meetings: the caller's own meetings, latest
// meeting date first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Respond(w, r, "meetings: no user", apperr.Unauthenticated("Unauthorized."))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list meetings")
	defer cancel()

	ms, err := h.Meetings.ListByLeader(ctx, userID, 0)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "meetings: list", err, "Unable to load meetings.")
		return
	}
	shared.WriteJSON(w, http.StatusOK, ms)
}
