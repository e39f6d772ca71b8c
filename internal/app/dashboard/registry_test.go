package dashboard_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/collegehub/internal/app/dashboard"
	"github.com/dalemusser/collegehub/internal/app/system/auth"
	"github.com/dalemusser/collegehub/internal/app/system/notify"
)

func TestRegistry_ReusesInstancePerOperator(t *testing.T) {
	s := newScenario()
	reg := dashboard.NewRegistry(s.aggregator(dashboard.Options{}), 10, time.Minute, nil, nil)

	u := superAdmin()
	a := reg.SuperAdmin(u)
	b := reg.SuperAdmin(&auth.SessionUser{ID: u.ID, Role: u.Role})
	if a != b {
		t.Error("expected the same instance for the same operator")
	}
	if c := reg.SuperAdmin(superAdmin()); c == a {
		t.Error("different operators must not share an instance")
	}
	if reg.Len() != 2 {
		t.Errorf("Len = %d, want 2", reg.Len())
	}
}

func TestRegistry_ConcurrentFirstRequestsShareInstance(t *testing.T) {
	s := newScenario()
	reg := dashboard.NewRegistry(s.aggregator(dashboard.Options{}), 10, time.Minute, nil, nil)

	u := superAdmin()
	const n = 32
	got := make([]*dashboard.SuperAdminDashboard, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			got[i] = reg.SuperAdmin(&auth.SessionUser{ID: u.ID, Role: u.Role})
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 1; i < n; i++ {
		if got[i] != got[0] {
			t.Fatalf("request %d got a different instance", i)
		}
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}
}

func TestRegistry_RoleChangeGetsFreshInstance(t *testing.T) {
	s := newScenario()
	reg := dashboard.NewRegistry(s.aggregator(dashboard.Options{}), 10, time.Minute, nil, nil)

	u := s.deptAdmin()
	a := reg.DepartmentAdmin(u)
	promoted := &auth.SessionUser{ID: u.ID, Role: "super_admin"}
	if reg.DepartmentAdmin(promoted) == a {
		t.Error("role change must not reuse the old instance")
	}
}

func TestRegistry_NilUserNotCached(t *testing.T) {
	s := newScenario()
	reg := dashboard.NewRegistry(s.aggregator(dashboard.Options{}), 10, time.Minute, nil, nil)

	d := reg.SuperAdmin(nil)
	if _, err := d.Reload(context.Background()); !dashboard.IsDenied(err) {
		t.Errorf("nil user reload err = %v, want denied", err)
	}
	if reg.Len() != 0 {
		t.Errorf("nil user instance was cached, Len = %d", reg.Len())
	}
}

func TestRegistry_InboxAndSink(t *testing.T) {
	s := newScenario()
	var sink notify.Recorder
	reg := dashboard.NewRegistry(s.aggregator(dashboard.Options{}), 10, time.Minute, &sink, nil)

	s.w.setFail("dept.list", errBackend)
	d := reg.SuperAdmin(superAdmin())
	_, _ = d.Reload(context.Background())

	got := d.Notifications()
	if len(got) != 1 || got[0].Description != dashboard.MsgLoadFailed {
		t.Errorf("inbox = %+v", got)
	}
	if len(d.Notifications()) != 0 {
		t.Error("inbox should be empty after draining")
	}
	if n := len(sink.Drain()); n != 1 {
		t.Errorf("sink received %d notifications, want 1", n)
	}
}
