package dashboard

import (
	"sync"
	"time"

	"github.com/dalemusser/collegehub/internal/app/system/auth"
	"github.com/dalemusser/collegehub/internal/app/system/metrics"
	"github.com/dalemusser/collegehub/internal/app/system/notify"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Default registry sizing.
const (
	DefaultRegistrySize = 1000
	DefaultRegistryTTL  = 30 * time.Minute
)

// Registry keeps one dashboard instance per operator so snapshots and
// pending notifications survive between requests. Entries expire after
// ttl of inactivity and the least recently used are evicted past size.
type Registry struct {
	agg     *Aggregator
	sink    notify.Notifier
	metrics *metrics.Metrics

	// mu makes get-or-create atomic so concurrent first requests from one
	// operator share an instance.
	mu    sync.Mutex
	super *expirable.LRU[string, *SuperAdminDashboard]
	dept  *expirable.LRU[string, *DepartmentAdminDashboard]
}

// NewRegistry creates a registry. sink receives every notification any
// instance produces, in addition to the instance's own inbox.
func NewRegistry(agg *Aggregator, size int, ttl time.Duration, sink notify.Notifier, m *metrics.Metrics) *Registry {
	if size <= 0 {
		size = DefaultRegistrySize
	}
	if ttl <= 0 {
		ttl = DefaultRegistryTTL
	}
	return &Registry{
		agg:     agg,
		sink:    sink,
		metrics: m,
		super:   expirable.NewLRU[string, *SuperAdminDashboard](size, nil, ttl),
		dept:    expirable.NewLRU[string, *DepartmentAdminDashboard](size, nil, ttl),
	}
}

// key includes the role so a user whose role changed gets a fresh instance.
func key(u *auth.SessionUser) string {
	return u.ID + "|" + u.Role
}

// SuperAdmin returns user's super-admin instance, creating it if needed.
// A nil user gets an uncached instance that will deny every reload.
func (r *Registry) SuperAdmin(user *auth.SessionUser) *SuperAdminDashboard {
	if user == nil {
		return r.agg.NewSuperAdmin(nil, r.sink)
	}
	k := key(user)
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.super.Get(k); ok {
		return d
	}
	d := r.agg.NewSuperAdmin(user, r.sink)
	r.super.Add(k, d)
	r.metrics.SetInstances(r.Len())
	return d
}

// DepartmentAdmin returns user's department-admin instance, creating it if
// needed. A nil user gets an uncached instance that will deny every reload.
func (r *Registry) DepartmentAdmin(user *auth.SessionUser) *DepartmentAdminDashboard {
	if user == nil {
		return r.agg.NewDepartmentAdmin(nil, r.sink)
	}
	k := key(user)
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.dept.Get(k); ok {
		return d
	}
	d := r.agg.NewDepartmentAdmin(user, r.sink)
	r.dept.Add(k, d)
	r.metrics.SetInstances(r.Len())
	return d
}

// Len is the number of live instances.
func (r *Registry) Len() int {
	return r.super.Len() + r.dept.Len()
}
