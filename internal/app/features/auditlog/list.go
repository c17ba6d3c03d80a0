// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strings"
	"time"

	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	"github.com/koinonia-app/koinonia/internal/app/store/audit"
	"github.com/koinonia-app/koinonia/internal/app/system/paging"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeList handles GET /admin/audit with optional category, event_type,
// start_date, end_date (YYYY-MM-DD) and page filters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	eventType := strings.TrimSpace(q.Get("event_type"))

	page := paging.ParsePage(r)

	filter := audit.QueryFilter{
		Category:  category,
		EventType: eventType,
		Limit:     paging.PageSize,
		Offset:    paging.Offset(page, paging.PageSize),
	}
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(q.Get("start_date"))); err == nil {
		filter.StartTime = &t
	}
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(q.Get("end_date"))); err == nil {
		endOfDay := t.Add(24*time.Hour - time.Second)
		filter.EndTime = &endOfDay
	}

	events, err := h.Audit.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit log query", err, "Unable to load the audit log.")
		return
	}
	total, err := h.Audit.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit log count", err, "Unable to load the audit log.")
		return
	}

	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, e := range events {
		for _, id := range []*primitive.ObjectID{e.ActorID, e.UserID} {
			if id == nil {
				continue
			}
			if _, ok := seen[*id]; !ok {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
		}
	}
	users, err := h.Users.GetManyByIDs(ctx, ids)
	if err != nil {
		// Names are cosmetic; fall back to ids.
		h.Log.Warn("failed to fetch user names for audit log", zap.Error(err))
	}
	name := func(id *primitive.ObjectID) string {
		if id == nil {
			return ""
		}
		if u, ok := users[*id]; ok {
			return u.FullName
		}
		return id.Hex()
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, listItem{
			ID:            e.ID.Hex(),
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			ActorName:     name(e.ActorID),
			TargetName:    name(e.UserID),
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		})
	}

	shared.WriteJSON(w, http.StatusOK, listData{
		Items:      items,
		Category:   category,
		EventType:  eventType,
		EventTypes: eventTypesForCategory(category),
		Page:       page,
		TotalPages: paging.TotalPages(total, paging.PageSize),
		Total:      total,
	})
}
