// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	core "github.com/dalemusser/collegehub/internal/app/dashboard"
	errorsfeature "github.com/dalemusser/collegehub/internal/app/features/errors"
	"github.com/dalemusser/collegehub/internal/app/system/auth"
	"github.com/dalemusser/collegehub/internal/app/system/authz"
	"github.com/dalemusser/collegehub/internal/app/system/notify"
	"github.com/dalemusser/collegehub/internal/app/system/timeouts"
	"github.com/dalemusser/collegehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Dashboards *core.Registry
	ErrLog     *errorsfeature.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(reg *core.Registry, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Dashboards: reg,
		ErrLog:     errLog,
		Log:        logger,
	}
}

// snapshotResponse is the JSON body of every dashboard read.
type snapshotResponse[V any] struct {
	State         string                `json:"state"`
	View          *V                    `json:"view"`
	LoadedAt      *time.Time            `json:"loaded_at,omitempty"`
	Error         string                `json:"error,omitempty"`
	Message       string                `json:"message,omitempty"`
	Notifications []notify.Notification `json:"notifications"`
}

// ServeDashboard sends each admin to their own dashboard and everyone else
// home.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	_, role, ok := authz.UserCtx(r)
	if !ok {
		auth.RedirectHome(w, r)
		return
	}
	switch role {
	case models.RoleSuperAdmin:
		http.Redirect(w, r, "/dashboard/super-admin", http.StatusSeeOther)
	case models.RoleDepartmentAdmin:
		http.Redirect(w, r, "/dashboard/department-admin", http.StatusSeeOther)
	default:
		auth.RedirectHome(w, r)
	}
}

// ServeSuperAdmin handles GET /dashboard/super-admin. Every request is a
// full reload.
func (h *Handler) ServeSuperAdmin(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	d := h.Dashboards.SuperAdmin(user)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	_, err := d.Reload(ctx)
	if core.IsDenied(err) {
		auth.RedirectHome(w, r)
		return
	}
	writeSnapshot(w, r, h.ErrLog, d.Instance, err)
}

// ServeDepartmentAdmin handles GET /dashboard/department-admin.
func (h *Handler) ServeDepartmentAdmin(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	d := h.Dashboards.DepartmentAdmin(user)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	_, err := d.Reload(ctx)
	if core.IsDenied(err) {
		auth.RedirectHome(w, r)
		return
	}
	writeSnapshot(w, r, h.ErrLog, d.Instance, err)
}

// ServeAction handles POST /dashboard/actions/{action} for input-free
// actions. Disabled actions answer 501.
func (h *Handler) ServeAction(w http.ResponseWriter, r *http.Request) {
	name := core.ActionName(chi.URLParam(r, "action"))
	user, _ := auth.CurrentUser(r)

	var err error
	switch {
	case authz.IsSuperAdmin(r):
		err = h.Dashboards.SuperAdmin(user).Invoke(r.Context(), name)
	case authz.IsDepartmentAdmin(r):
		err = h.Dashboards.DepartmentAdmin(user).Invoke(r.Context(), name)
	default:
		auth.RedirectHome(w, r)
		return
	}
	if core.IsDenied(err) {
		auth.RedirectHome(w, r)
		return
	}
	if err == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	status := errorsfeature.StatusFor(err)
	h.ErrLog.Log(r, status, "dashboard action", err)
	errorsfeature.WriteError(w, status, errorsfeature.CodeFor(err), errorsfeature.MessageFor(err))
}

func writeSnapshot[V any](w http.ResponseWriter, r *http.Request, errLog *errorsfeature.ErrorLogger, in *core.Instance[V], err error) {
	view, state, _ := in.Snapshot()
	resp := snapshotResponse[V]{
		State:         state.String(),
		View:          view,
		Notifications: in.Notifications(),
	}
	if at := in.LoadedAt(); !at.IsZero() {
		resp.LoadedAt = &at
	}
	status := http.StatusOK
	if err != nil {
		status = errorsfeature.StatusFor(err)
		resp.Error = errorsfeature.CodeFor(err)
		resp.Message = errorsfeature.MessageFor(err)
		errLog.Log(r, status, "dashboard load", err)
	}
	errorsfeature.WriteJSON(w, status, resp)
}
