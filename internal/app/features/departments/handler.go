// internal/app/features/departments/handler.go
package departments

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	core "github.com/dalemusser/collegehub/internal/app/dashboard"
	errorsfeature "github.com/dalemusser/collegehub/internal/app/features/errors"
	"github.com/dalemusser/collegehub/internal/app/system/auth"
	"github.com/dalemusser/collegehub/internal/app/system/limits"
	"github.com/dalemusser/collegehub/internal/app/system/notify"
	"github.com/dalemusser/collegehub/internal/app/system/timeouts"
	"github.com/dalemusser/collegehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
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

// mutationResponse reports the outcome of a department mutation together
// with the refreshed super-admin snapshot.
type mutationResponse struct {
	Department    *models.Department    `json:"department,omitempty"`
	State         string                `json:"state"`
	View          *core.SuperAdminView  `json:"view"`
	Error         string                `json:"error,omitempty"`
	Message       string                `json:"message,omitempty"`
	Notifications []notify.Notification `json:"notifications"`
}

type createRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// HandleCreate creates a department from a form or JSON body.
//
// Route: POST /departments
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	d := h.Dashboards.SuperAdmin(user)
	if !d.Authorized() {
		auth.RedirectHome(w, r)
		return
	}

	in, err := decodeCreate(w, r)
	if err != nil {
		errorsfeature.WriteError(w, http.StatusBadRequest, "bad_request", "Malformed request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	dept, err := d.CreateDepartment(ctx, in)
	if err != nil {
		h.writeFailure(w, r, d, "create department", err)
		return
	}
	h.Log.Info("department created",
		zap.String("department_id", dept.ID.Hex()),
		zap.String("code", dept.Code),
		zap.String("actor_id", user.ID))
	h.writeResult(w, http.StatusCreated, d, &dept)
}

// HandleDelete deletes a department. The request must carry confirm=yes.
//
// Route: POST /departments/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)
	d := h.Dashboards.SuperAdmin(user)
	if !d.Authorized() {
		auth.RedirectHome(w, r)
		return
	}

	idHex := chi.URLParam(r, "id")
	oid, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		errorsfeature.WriteError(w, http.StatusBadRequest, "bad_request", "bad department id")
		return
	}
	confirmed := strings.EqualFold(strings.TrimSpace(r.FormValue("confirm")), "yes")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := d.DeleteDepartment(ctx, oid, confirmed); err != nil {
		h.writeFailure(w, r, d, "delete department", err)
		return
	}
	h.Log.Info("department deleted",
		zap.String("department_id", idHex),
		zap.String("actor_id", user.ID))
	h.writeResult(w, http.StatusOK, d, nil)
}

func (h *Handler) writeResult(w http.ResponseWriter, status int, d *core.SuperAdminDashboard, dept *models.Department) {
	view, state, _ := d.Snapshot()
	errorsfeature.WriteJSON(w, status, mutationResponse{
		Department:    dept,
		State:         state.String(),
		View:          view,
		Notifications: d.Notifications(),
	})
}

func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, d *core.SuperAdminDashboard, msg string, err error) {
	if core.IsDenied(err) {
		auth.RedirectHome(w, r)
		return
	}
	status := errorsfeature.StatusFor(err)
	h.ErrLog.Log(r, status, msg, err)

	view, state, _ := d.Snapshot()
	errorsfeature.WriteJSON(w, status, mutationResponse{
		State:         state.String(),
		View:          view,
		Error:         errorsfeature.CodeFor(err),
		Message:       errorsfeature.MessageFor(err),
		Notifications: d.Notifications(),
	})
}

// decodeCreate reads name, code and description from a JSON body or from
// form values.
func decodeCreate(w http.ResponseWriter, r *http.Request) (core.DepartmentInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxDepartmentFormSize)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return core.DepartmentInput{}, err
		}
		return core.DepartmentInput{Name: req.Name, Code: req.Code, Description: req.Description}, nil
	}
	if err := r.ParseForm(); err != nil {
		return core.DepartmentInput{}, err
	}
	return core.DepartmentInput{
		Name:        r.FormValue("name"),
		Code:        r.FormValue("code"),
		Description: r.FormValue("description"),
	}, nil
}
