package dashboard

import (
	"errors"
	"fmt"
)

// Kind classifies a dashboard failure.
type Kind int

const (
	// AuthorizationDenied: absent user or wrong role. Callers redirect.
	AuthorizationDenied Kind = iota + 1
	// ScopeResolutionFailure: a department admin has no department.
	ScopeResolutionFailure
	// LoadFailure: a repository read failed.
	LoadFailure
	// ValidationFailure: mutation input rejected before any repository call.
	ValidationFailure
	// MutationFailure: the repository refused a create or delete.
	MutationFailure
)

func (k Kind) String() string {
	switch k {
	case AuthorizationDenied:
		return "authorization_denied"
	case ScopeResolutionFailure:
		return "scope_resolution_failure"
	case LoadFailure:
		return "load_failure"
	case ValidationFailure:
		return "validation_failure"
	case MutationFailure:
		return "mutation_failure"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Operator-facing messages.
const (
	MsgDepartmentNotFound  = "Department not found"
	MsgLoadFailed          = "Failed to load dashboard data"
	MsgNameCodeRequired    = "Name and code are required"
	MsgCreateFailed        = "Failed to create department"
	MsgDeleteFailed        = "Failed to delete department"
	MsgDepartmentCreated   = "Department created successfully!"
	MsgDepartmentDeleted   = "Department deleted"
	msgAuthorizationDenied = "not authorized for this dashboard"
)

var (
	// ErrNotImplemented is returned when a disabled action is invoked.
	ErrNotImplemented = errors.New("action not implemented")
	// ErrUnknownAction is returned for an action name no dashboard offers.
	ErrUnknownAction = errors.New("unknown dashboard action")
	// ErrConfirmationRequired is returned by DeleteDepartment when the
	// operator has not confirmed.
	ErrConfirmationRequired = errors.New("department deletion must be confirmed")
	// ErrSuperseded is returned by a reload whose result was discarded
	// because a newer reload started.
	ErrSuperseded = errors.New("reload superseded by a newer one")
)

// Failure is the error type every dashboard operation fails with.
// Message is safe to show the operator; Err carries the cause.
type Failure struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

func fail(kind Kind, msg string, err error) *Failure {
	return &Failure{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the Kind of err, or 0 when err is not a *Failure.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}

// IsDenied reports whether err means the caller must be redirected away.
func IsDenied(err error) bool {
	return KindOf(err) == AuthorizationDenied
}
