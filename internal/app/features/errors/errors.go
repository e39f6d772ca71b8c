// internal/app/features/errors/errors.go
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/collegehub/internal/app/dashboard"
	departmentstore "github.com/dalemusser/collegehub/internal/app/store/departments"
	"go.uber.org/zap"
)

// Handler serves the router's fallback responses.
// No DB needed.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound answers unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "Not found")
}

// MethodNotAllowed answers known paths with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
}

// ErrorLogger logs server-side failures with request context.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger wraps logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// Log records err for the request at a level matching status: 5xx at error,
// everything else at debug.
func (e *ErrorLogger) Log(r *http.Request, status int, msg string, err error) {
	if e == nil || e.log == nil {
		return
	}
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		e.log.Error(msg, fields...)
		return
	}
	e.log.Debug(msg, fields...)
}

// StatusFor maps a dashboard error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, dashboard.ErrNotImplemented):
		return http.StatusNotImplemented
	case stderrors.Is(err, dashboard.ErrUnknownAction):
		return http.StatusNotFound
	case stderrors.Is(err, dashboard.ErrConfirmationRequired):
		return http.StatusBadRequest
	case stderrors.Is(err, dashboard.ErrSuperseded):
		return http.StatusConflict
	}

	switch dashboard.KindOf(err) {
	case dashboard.AuthorizationDenied:
		return http.StatusSeeOther
	case dashboard.ScopeResolutionFailure:
		return http.StatusNotFound
	case dashboard.ValidationFailure:
		return http.StatusBadRequest
	case dashboard.MutationFailure:
		switch {
		case stderrors.Is(err, departmentstore.ErrDuplicateCode),
			stderrors.Is(err, departmentstore.ErrDepartmentNotEmpty):
			return http.StatusConflict
		case stderrors.Is(err, departmentstore.ErrNotFound):
			return http.StatusNotFound
		}
		return http.StatusInternalServerError
	case dashboard.LoadFailure:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// CodeFor is the machine-readable error code reported alongside StatusFor.
func CodeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, dashboard.ErrNotImplemented):
		return "not_implemented"
	case stderrors.Is(err, dashboard.ErrUnknownAction):
		return "unknown_action"
	case stderrors.Is(err, dashboard.ErrConfirmationRequired):
		return "confirmation_required"
	case stderrors.Is(err, dashboard.ErrSuperseded):
		return "superseded"
	}
	if k := dashboard.KindOf(err); k != 0 {
		return k.String()
	}
	return "internal"
}

// MessageFor is the operator-safe message for err.
func MessageFor(err error) string {
	var f *dashboard.Failure
	if stderrors.As(err, &f) {
		return f.Message
	}
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, dashboard.ErrNotImplemented):
		return "This action is not available yet"
	case stderrors.Is(err, dashboard.ErrUnknownAction):
		return "Unknown action"
	case stderrors.Is(err, dashboard.ErrConfirmationRequired):
		return "Please confirm the deletion"
	case stderrors.Is(err, dashboard.ErrSuperseded):
		return "A newer reload replaced this one"
	}
	return "Something went wrong"
}
