package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/collegehub/internal/app/system/auth"
	"github.com/dalemusser/collegehub/internal/app/system/notify"
	"github.com/dalemusser/collegehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// State is where a dashboard instance is in its load cycle.
type State int

const (
	StateUnauthorized State = iota
	StateLoading
	StateReady
	StateLoadError
)

func (s State) String() string {
	switch s {
	case StateUnauthorized:
		return "unauthorized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateLoadError:
		return "load_error"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

type loadFunc[V any] func(ctx context.Context, user *auth.SessionUser) (*V, error)

// Instance is one operator's view of one dashboard. It keeps the last good
// snapshot across failed reloads. A reload that starts while another is in
// flight cancels the older one, whose result is then discarded.
type Instance[V any] struct {
	user     *auth.SessionUser
	required models.Role
	load     loadFunc[V]
	notifier notify.Notifier
	inbox    notify.Recorder

	mu       sync.Mutex
	state    State
	snapshot *V
	lastErr  error
	loadedAt time.Time
	gen      uint64
	cancel   context.CancelFunc
}

func newInstance[V any](user *auth.SessionUser, required models.Role, load loadFunc[V], n notify.Notifier) *Instance[V] {
	in := &Instance[V]{
		user:     user,
		required: required,
		load:     load,
		state:    StateUnauthorized,
	}
	in.notifier = notify.Multi{&in.inbox, n}
	return in
}

// Authorized reports whether the instance's user passes the gate.
func (in *Instance[V]) Authorized() bool {
	return Authorize(in.user, in.required)
}

// Notifications drains the notifications this instance has produced since
// the last call.
func (in *Instance[V]) Notifications() []notify.Notification {
	return in.inbox.Drain()
}

// User returns the operator this instance belongs to.
func (in *Instance[V]) User() *auth.SessionUser { return in.user }

// Reload runs a full load. On success the new snapshot replaces the old
// one. On failure the old snapshot is kept, the state becomes LoadError and
// a notification is sent. A denied user leaves the instance Unauthorized
// and nothing is notified.
func (in *Instance[V]) Reload(ctx context.Context) (*V, error) {
	if !in.Authorized() {
		return nil, denied(in.required)
	}

	in.mu.Lock()
	if in.cancel != nil {
		in.cancel()
	}
	in.gen++
	gen := in.gen
	lctx, cancel := context.WithCancel(ctx)
	in.cancel = cancel
	in.state = StateLoading
	in.mu.Unlock()

	v, err := in.load(lctx, in.user)
	cancel()

	in.mu.Lock()
	if gen != in.gen {
		in.mu.Unlock()
		return nil, ErrSuperseded
	}
	in.cancel = nil
	if err != nil {
		in.state = StateLoadError
		in.lastErr = err
		in.mu.Unlock()
		in.notifyFailure(ctx, err)
		return nil, err
	}
	in.snapshot = v
	in.state = StateReady
	in.lastErr = nil
	in.loadedAt = time.Now().UTC()
	in.mu.Unlock()
	return v, nil
}

// Snapshot returns the current snapshot (nil before the first successful
// load), the state and the error of the last failed load.
func (in *Instance[V]) Snapshot() (*V, State, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.snapshot, in.state, in.lastErr
}

// State returns the current state.
func (in *Instance[V]) State() State {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

// LoadedAt is when the current snapshot was produced.
func (in *Instance[V]) LoadedAt() time.Time {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.loadedAt
}

func (in *Instance[V]) notifyFailure(ctx context.Context, err error) {
	var f *Failure
	if !errors.As(err, &f) || f.Kind == AuthorizationDenied {
		return
	}
	in.notifier.Notify(ctx, notify.Failure(f.Message))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Concrete dashboards                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// SuperAdminDashboard is a super admin's dashboard instance plus the
// department mutations it offers.
type SuperAdminDashboard struct {
	*Instance[SuperAdminView]
	agg *Aggregator
}

// NewSuperAdmin creates an instance for user. Nothing is loaded until
// Reload is called.
func (a *Aggregator) NewSuperAdmin(user *auth.SessionUser, n notify.Notifier) *SuperAdminDashboard {
	return &SuperAdminDashboard{
		Instance: newInstance[SuperAdminView](user, models.RoleSuperAdmin, a.LoadSuperAdmin, n),
		agg:      a,
	}
}

// CreateDepartment creates a department and, on success, notifies and
// reloads. A validation or repository failure is notified and leaves the
// snapshot untouched.
func (d *SuperAdminDashboard) CreateDepartment(ctx context.Context, in DepartmentInput) (models.Department, error) {
	dept, err := d.agg.CreateDepartment(ctx, d.user, in)
	if err != nil {
		d.notifyFailure(ctx, err)
		return models.Department{}, err
	}
	d.notifier.Notify(ctx, notify.Success(MsgDepartmentCreated))
	_, _ = d.Reload(ctx)
	return dept, nil
}

// DeleteDepartment deletes a confirmed department and, on success, notifies
// and reloads. An unconfirmed request does nothing and is not notified.
func (d *SuperAdminDashboard) DeleteDepartment(ctx context.Context, id primitive.ObjectID, confirmed bool) error {
	if err := d.agg.DeleteDepartment(ctx, d.user, id, confirmed); err != nil {
		d.notifyFailure(ctx, err)
		return err
	}
	d.notifier.Notify(ctx, notify.Success(MsgDepartmentDeleted))
	_, _ = d.Reload(ctx)
	return nil
}

// Invoke runs a named input-free action.
func (d *SuperAdminDashboard) Invoke(ctx context.Context, name ActionName) error {
	return d.agg.Invoke(ctx, d.user, name)
}

// DepartmentAdminDashboard is a department admin's dashboard instance.
type DepartmentAdminDashboard struct {
	*Instance[DepartmentAdminView]
	agg *Aggregator
}

// NewDepartmentAdmin creates an instance for user. Nothing is loaded until
// Reload is called.
func (a *Aggregator) NewDepartmentAdmin(user *auth.SessionUser, n notify.Notifier) *DepartmentAdminDashboard {
	return &DepartmentAdminDashboard{
		Instance: newInstance[DepartmentAdminView](user, models.RoleDepartmentAdmin, a.LoadDepartmentAdmin, n),
		agg:      a,
	}
}

// Invoke runs a named input-free action.
func (d *DepartmentAdminDashboard) Invoke(ctx context.Context, name ActionName) error {
	return d.agg.Invoke(ctx, d.user, name)
}
