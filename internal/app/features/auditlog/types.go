// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/koinonia-app/koinonia/internal/app/store/audit"
)

// listItem is one audit event with user ids resolved to names.
type listItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	ActorName     string            `json:"actorName,omitempty"`
	TargetName    string            `json:"targetName,omitempty"`
	IP            string            `json:"ip"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

type listData struct {
	Items      []listItem `json:"items"`
	Category   string     `json:"category,omitempty"`
	EventType  string     `json:"eventType,omitempty"`
	EventTypes []string   `json:"eventTypes"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
	Total      int64      `json:"total"`
}

// eventTypesForCategory returns the event types for a category, or all of
// them when category is empty.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailed,
		audit.EventLogout,
		audit.EventUserRegistered,
	}
	adminEvents := []string{
		audit.EventRoleChanged,
		audit.EventLeaderSelected,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		return append(append([]string{}, authEvents...), adminEvents...)
	}
	return nil
}
