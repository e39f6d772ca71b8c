// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/dalemusser/collegehub/internal/app/features/errors"
	"github.com/dalemusser/collegehub/internal/app/store/audit"
	"github.com/dalemusser/collegehub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeList handles GET /audit.
//
// Query parameters: category, event_type, department_id, start_date and
// end_date (YYYY-MM-DD, inclusive), page (1-based).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	eventType := strings.TrimSpace(q.Get("event_type"))

	page := parsePage(q.Get("page"))

	filter := audit.QueryFilter{
		Category:  category,
		EventType: eventType,
		Limit:     pageSize,
		Offset:    int64(page-1) * pageSize,
	}
	if hex := strings.TrimSpace(q.Get("department_id")); hex != "" {
		oid, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			uierrors.WriteError(w, http.StatusBadRequest, "bad_request", "bad department id")
			return
		}
		filter.DepartmentID = &oid
	}
	if s := strings.TrimSpace(q.Get("start_date")); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.StartTime = &t
		}
	}
	if s := strings.TrimSpace(q.Get("end_date")); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Nanosecond)
			filter.EndTime = &endOfDay
		}
	}

	events, err := h.Audit.Query(ctx, filter)
	if err != nil {
		h.ErrLog.Log(r, http.StatusInternalServerError, "query audit events", err)
		uierrors.WriteError(w, http.StatusInternalServerError, "database_error", "A database error occurred.")
		return
	}
	total, err := h.Audit.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.Log(r, http.StatusInternalServerError, "count audit events", err)
		uierrors.WriteError(w, http.StatusInternalServerError, "database_error", "A database error occurred.")
		return
	}

	userNames := h.actorNames(r, events)
	deptNames := h.departmentNames(r, events)

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:            e.ID.Hex(),
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			ActorRole:     e.ActorRole,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
		if e.ActorID != nil {
			item.ActorName = nameOr(userNames, *e.ActorID)
		}
		if e.DepartmentID != nil {
			item.DepartmentName = nameOr(deptNames, *e.DepartmentID)
		}
		items = append(items, item)
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{
		Items:      items,
		Category:   category,
		EventType:  eventType,
		EventTypes: eventTypesForCategory(category),
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	})
}

func (h *Handler) actorNames(r *http.Request, events []audit.Event) map[primitive.ObjectID]string {
	seen := make(map[primitive.ObjectID]struct{})
	ids := make([]primitive.ObjectID, 0, len(events))
	for _, e := range events {
		if e.ActorID == nil {
			continue
		}
		if _, ok := seen[*e.ActorID]; !ok {
			seen[*e.ActorID] = struct{}{}
			ids = append(ids, *e.ActorID)
		}
	}
	names := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return names
	}
	users, err := h.Users.GetByIDs(r.Context(), ids)
	if err != nil {
		h.Log.Warn("failed to fetch user names for audit log", zap.Error(err))
		return names
	}
	for _, u := range users {
		names[u.ID] = u.FullName
	}
	return names
}

// departmentNames resolves from the current department list; deleted
// departments fall back to the name recorded in the event details.
func (h *Handler) departmentNames(r *http.Request, events []audit.Event) map[primitive.ObjectID]string {
	names := make(map[primitive.ObjectID]string)
	for _, e := range events {
		if e.DepartmentID != nil && e.Details["name"] != "" {
			names[*e.DepartmentID] = e.Details["name"]
		}
	}
	depts, err := h.Departments.List(r.Context())
	if err != nil {
		h.Log.Warn("failed to fetch department names for audit log", zap.Error(err))
		return names
	}
	for _, d := range depts {
		names[d.ID] = d.Name
	}
	return names
}

func nameOr(names map[primitive.ObjectID]string, id primitive.ObjectID) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id.Hex()
}

// parsePage reads a 1-based page number. Missing or invalid values give 1
// and values past maxPage are clamped.
func parsePage(s string) int {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p < 1 {
		return 1
	}
	if p > maxPage {
		return maxPage
	}
	return p
}
