// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/collegehub/internal/app/store/audit"
)

const (
	pageSize = 50
	// maxPage bounds the page parameter so its offset stays well inside int64.
	maxPage = 1_000_000
)

// listItem is one audit event with names resolved.
type listItem struct {
	ID             string            `json:"id"`
	Timestamp      time.Time         `json:"timestamp"`
	Category       string            `json:"category"`
	EventType      string            `json:"event_type"`
	ActorName      string            `json:"actor_name,omitempty"`
	ActorRole      string            `json:"actor_role,omitempty"`
	DepartmentName string            `json:"department_name,omitempty"`
	Success        bool              `json:"success"`
	FailureReason  string            `json:"failure_reason,omitempty"`
	Details        map[string]string `json:"details,omitempty"`
}

type listResponse struct {
	Items []listItem `json:"items"`

	Category   string   `json:"category,omitempty"`
	EventType  string   `json:"event_type,omitempty"`
	EventTypes []string `json:"event_types"`

	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
	Total      int64 `json:"total"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

// eventTypesForCategory lists the event types a category filter offers.
// An empty category means all.
func eventTypesForCategory(category string) []string {
	adminEvents := []string{
		audit.EventDepartmentCreated,
		audit.EventDepartmentCreateFailed,
		audit.EventDepartmentDeleted,
		audit.EventDepartmentDeleteFailed,
	}
	switch category {
	case "", audit.CategoryAdmin:
		return adminEvents
	}
	return []string{}
}
