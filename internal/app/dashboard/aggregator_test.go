package dashboard_test

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/collegehub/internal/app/dashboard"
	"github.com/dalemusser/collegehub/internal/app/system/auth"
	"github.com/dalemusser/collegehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		user     *auth.SessionUser
		required models.Role
		want     bool
	}{
		{"nil user", nil, models.RoleSuperAdmin, false},
		{"nil user dept admin", nil, models.RoleDepartmentAdmin, false},
		{"super admin", &auth.SessionUser{Role: "super_admin"}, models.RoleSuperAdmin, true},
		{"super admin on dept dashboard", &auth.SessionUser{Role: "super_admin"}, models.RoleDepartmentAdmin, false},
		{"dept admin", &auth.SessionUser{Role: "department_admin"}, models.RoleDepartmentAdmin, true},
		{"dept admin on super dashboard", &auth.SessionUser{Role: "department_admin"}, models.RoleSuperAdmin, false},
		{"student", &auth.SessionUser{Role: "student"}, models.RoleDepartmentAdmin, false},
		{"instructor", &auth.SessionUser{Role: "instructor"}, models.RoleSuperAdmin, false},
		{"empty role", &auth.SessionUser{}, models.RoleSuperAdmin, false},
		{"upper case", &auth.SessionUser{Role: "SUPER_ADMIN"}, models.RoleSuperAdmin, false},
		{"padded upper case", &auth.SessionUser{Role: " SUPER_ADMIN "}, models.RoleSuperAdmin, false},
		{"mixed case dept admin", &auth.SessionUser{Role: "Department_Admin"}, models.RoleDepartmentAdmin, false},
		{"trailing space", &auth.SessionUser{Role: "department_admin "}, models.RoleDepartmentAdmin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dashboard.Authorize(tt.user, tt.required); got != tt.want {
				t.Errorf("Authorize = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadSuperAdmin_Scenario(t *testing.T) {
	s := newScenario()
	agg := s.aggregator(dashboard.Options{})

	v, err := agg.LoadSuperAdmin(context.Background(), superAdmin())
	if err != nil {
		t.Fatalf("LoadSuperAdmin: %v", err)
	}

	want := dashboard.SystemTotals{Departments: 2, Students: 1, Instructors: 1, Courses: 2}
	if v.Totals != want {
		t.Errorf("Totals = %+v, want %+v", v.Totals, want)
	}

	if len(v.Admins) != 1 || v.Admins[0].ID != s.a1.Hex() {
		t.Fatalf("Admins = %+v, want [a1]", v.Admins)
	}
	if v.Admins[0].Department != "Mathematics" || v.Admins[0].Status != "Active" {
		t.Errorf("admin row = %+v", v.Admins[0])
	}

	if len(v.CourseRows) != 2 || v.CourseRows[0].Department != "Computer Science" || v.CourseRows[1].Department != "Mathematics" {
		t.Errorf("CourseRows = %+v", v.CourseRows)
	}

	if got := v.StatsByDepartment[s.d1.Hex()]; got != (models.DepartmentStats{Students: 1, Instructors: 1, Courses: 1}) {
		t.Errorf("d1 stats = %+v", got)
	}
	if got := v.StatsByDepartment[s.d2.Hex()]; got != (models.DepartmentStats{Courses: 1}) {
		t.Errorf("d2 stats = %+v", got)
	}
	if n := s.w.count("dept.stats"); n != 2 {
		t.Errorf("expected one stats call per department, got %d", n)
	}

	if len(v.Actions) == 0 {
		t.Fatal("expected action set")
	}
	for _, a := range v.Actions {
		if a.Name == dashboard.ActionCreateAdmin && a.Enabled {
			t.Error("create_admin must be disabled")
		}
	}
}

func TestLoadSuperAdmin_RowsWithUnknownDepartment(t *testing.T) {
	s := newScenario()
	ghost := primitive.NewObjectID()
	s.w.courses = append(s.w.courses, models.Course{ID: primitive.NewObjectID(), Title: "Orphan", DepartmentID: ghost})
	s.w.users = append(s.w.users,
		models.User{ID: primitive.NewObjectID(), FullName: "adm-ghost", Role: models.RoleDepartmentAdmin, DepartmentID: &ghost},
		models.User{ID: primitive.NewObjectID(), FullName: "adm-none", Role: models.RoleDepartmentAdmin},
	)

	v, err := s.aggregator(dashboard.Options{}).LoadSuperAdmin(context.Background(), superAdmin())
	if err != nil {
		t.Fatalf("LoadSuperAdmin: %v", err)
	}
	if got := v.CourseRows[2].Department; got != "N/A" {
		t.Errorf("orphan course department = %q, want N/A", got)
	}
	if len(v.Admins) != 3 {
		t.Fatalf("expected 3 admins, got %d", len(v.Admins))
	}
	for _, a := range v.Admins[1:] {
		if a.Department != "N/A" || a.Status != "Inactive" {
			t.Errorf("admin row = %+v", a)
		}
	}
}

func TestLoadSuperAdmin_Empty(t *testing.T) {
	s := newScenario()
	s.w.depts, s.w.users, s.w.courses = nil, nil, nil

	v, err := s.aggregator(dashboard.Options{}).LoadSuperAdmin(context.Background(), superAdmin())
	if err != nil {
		t.Fatalf("LoadSuperAdmin: %v", err)
	}
	if v.Departments == nil || v.Users == nil || v.Courses == nil || v.Admins == nil || v.CourseRows == nil {
		t.Error("expected empty, non-nil lists")
	}
	if v.Totals != (dashboard.SystemTotals{}) {
		t.Errorf("Totals = %+v", v.Totals)
	}
}

func TestLoadSuperAdmin_AnyReadFailureIsAtomic(t *testing.T) {
	for _, op := range []string{"dept.list", "user.all", "course.all", "dept.stats"} {
		t.Run(op, func(t *testing.T) {
			s := newScenario()
			s.w.setFail(op, errBackend)

			v, err := s.aggregator(dashboard.Options{}).LoadSuperAdmin(context.Background(), superAdmin())
			if v != nil {
				t.Error("expected no partial view")
			}
			if dashboard.KindOf(err) != dashboard.LoadFailure {
				t.Fatalf("kind = %v, want LoadFailure (err %v)", dashboard.KindOf(err), err)
			}
			var f *dashboard.Failure
			errors.As(err, &f)
			if f.Message != "Failed to load dashboard data" {
				t.Errorf("Message = %q", f.Message)
			}
			if !errors.Is(err, errBackend) {
				t.Error("expected cause to be wrapped")
			}
		})
	}
}

func TestLoadSuperAdmin_StatsConcurrencyBounded(t *testing.T) {
	s := newScenario()
	for i := 0; i < 8; i++ {
		s.w.depts = append(s.w.depts, models.Department{ID: primitive.NewObjectID(), Name: "D", Code: "D"})
	}
	var inFlight, peak int32
	s.w.statsHook = func(context.Context) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
	}

	v, err := s.aggregator(dashboard.Options{StatsConcurrency: 2}).LoadSuperAdmin(context.Background(), superAdmin())
	if err != nil {
		t.Fatalf("LoadSuperAdmin: %v", err)
	}
	if len(v.StatsByDepartment) != 10 {
		t.Errorf("expected stats for 10 departments, got %d", len(v.StatsByDepartment))
	}
	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Errorf("peak concurrent stats calls = %d, want <= 2", p)
	}
}

func TestLoadDepartmentAdmin_Scenario(t *testing.T) {
	s := newScenario()
	v, err := s.aggregator(dashboard.Options{}).LoadDepartmentAdmin(context.Background(), s.deptAdmin())
	if err != nil {
		t.Fatalf("LoadDepartmentAdmin: %v", err)
	}
	if v.Department.ID != s.d1 {
		t.Errorf("Department = %s, want d1", v.Department.ID.Hex())
	}
	if got := ids(v.Students, userID); !reflect.DeepEqual(got, []primitive.ObjectID{s.s1}) {
		t.Errorf("Students = %v, want [s1]", got)
	}
	if got := ids(v.Instructors, userID); !reflect.DeepEqual(got, []primitive.ObjectID{s.i1}) {
		t.Errorf("Instructors = %v, want [i1]", got)
	}
	if got := ids(v.Courses, courseID); !reflect.DeepEqual(got, []primitive.ObjectID{s.c1}) {
		t.Errorf("Courses = %v, want [c1]", got)
	}
	if v.Totals != (dashboard.DepartmentTotals{Students: 1, Instructors: 1, Courses: 1}) {
		t.Errorf("Totals = %+v", v.Totals)
	}
	for _, a := range v.Actions {
		if a.Enabled {
			t.Errorf("action %s should be disabled", a.Name)
		}
	}
}

func TestLoadDepartmentAdmin_NoScope(t *testing.T) {
	s := newScenario()
	user := &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: "department_admin"}

	v, err := s.aggregator(dashboard.Options{}).LoadDepartmentAdmin(context.Background(), user)
	if v != nil {
		t.Error("expected no view")
	}
	if dashboard.KindOf(err) != dashboard.ScopeResolutionFailure {
		t.Fatalf("kind = %v, want ScopeResolutionFailure", dashboard.KindOf(err))
	}
	var f *dashboard.Failure
	errors.As(err, &f)
	if f.Message != "Department not found" {
		t.Errorf("Message = %q", f.Message)
	}
	for _, op := range []string{"dept.get", "user.by_dept", "course.by_dept"} {
		if n := s.w.count(op); n != 0 {
			t.Errorf("%s called %d times after scope failure", op, n)
		}
	}
}

func TestLoadDepartmentAdmin_ScopeToDeletedDepartment(t *testing.T) {
	s := newScenario()
	s.w.adminDept[s.adminD1] = primitive.NewObjectID()

	_, err := s.aggregator(dashboard.Options{}).LoadDepartmentAdmin(context.Background(), s.deptAdmin())
	if dashboard.KindOf(err) != dashboard.ScopeResolutionFailure {
		t.Errorf("kind = %v, want ScopeResolutionFailure", dashboard.KindOf(err))
	}
}

func TestLoadDepartmentAdmin_ReadFailure(t *testing.T) {
	for _, op := range []string{"user.scope", "dept.get", "user.by_dept", "course.by_dept"} {
		t.Run(op, func(t *testing.T) {
			s := newScenario()
			s.w.setFail(op, errBackend)
			v, err := s.aggregator(dashboard.Options{}).LoadDepartmentAdmin(context.Background(), s.deptAdmin())
			if v != nil {
				t.Error("expected no partial view")
			}
			if dashboard.KindOf(err) != dashboard.LoadFailure {
				t.Errorf("kind = %v, want LoadFailure", dashboard.KindOf(err))
			}
		})
	}
}

func TestPartition_DisjointAndExhaustive(t *testing.T) {
	s := newScenario()
	d1 := s.d1
	roles := []models.Role{models.RoleStudent, models.RoleInstructor, models.RoleDepartmentAdmin, models.RoleSuperAdmin, "", "janitor", models.RoleStudent, models.RoleInstructor}
	s.w.users = nil
	for _, r := range roles {
		s.w.users = append(s.w.users, models.User{ID: primitive.NewObjectID(), Role: r, DepartmentID: &d1})
	}

	v, err := s.aggregator(dashboard.Options{}).LoadDepartmentAdmin(context.Background(), s.deptAdmin())
	if err != nil {
		t.Fatalf("LoadDepartmentAdmin: %v", err)
	}

	seen := map[primitive.ObjectID]int{}
	for _, u := range v.Students {
		if u.Role != models.RoleStudent {
			t.Errorf("non-student %q in Students", u.Role)
		}
		seen[u.ID]++
	}
	for _, u := range v.Instructors {
		if u.Role != models.RoleInstructor {
			t.Errorf("non-instructor %q in Instructors", u.Role)
		}
		seen[u.ID]++
	}
	for _, u := range s.w.users {
		want := 0
		if u.Role == models.RoleStudent || u.Role == models.RoleInstructor {
			want = 1
		}
		if seen[u.ID] != want {
			t.Errorf("user with role %q appears %d times, want %d", u.Role, seen[u.ID], want)
		}
	}
	if !reflect.DeepEqual(ids(v.Students, userID), []primitive.ObjectID{s.w.users[0].ID, s.w.users[6].ID}) {
		t.Error("students not in repository order")
	}
}

func TestLoad_Idempotent(t *testing.T) {
	s := newScenario()
	agg := s.aggregator(dashboard.Options{})
	ctx := context.Background()
	su := superAdmin()

	a, err := agg.LoadSuperAdmin(ctx, su)
	if err != nil {
		t.Fatal(err)
	}
	b, err := agg.LoadSuperAdmin(ctx, su)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("super admin loads differ on unchanged data")
	}

	da := s.deptAdmin()
	c, err := agg.LoadDepartmentAdmin(ctx, da)
	if err != nil {
		t.Fatal(err)
	}
	d, err := agg.LoadDepartmentAdmin(ctx, da)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c, d) {
		t.Error("department admin loads differ on unchanged data")
	}
}

func TestLoad_Denied(t *testing.T) {
	s := newScenario()
	agg := s.aggregator(dashboard.Options{})
	ctx := context.Background()

	for _, u := range []*auth.SessionUser{nil, {Role: "student"}, {Role: "department_admin"}, {Role: " SUPER_ADMIN "}, {Role: "Super_Admin"}} {
		if _, err := agg.LoadSuperAdmin(ctx, u); !dashboard.IsDenied(err) {
			t.Errorf("LoadSuperAdmin(%v) err = %v, want denied", u, err)
		}
	}
	for _, u := range []*auth.SessionUser{nil, {Role: "instructor"}, {Role: "super_admin"}, {Role: "DEPARTMENT_ADMIN"}} {
		if _, err := agg.LoadDepartmentAdmin(ctx, u); !dashboard.IsDenied(err) {
			t.Errorf("LoadDepartmentAdmin(%v) err = %v, want denied", u, err)
		}
	}
	if len(s.w.calls) != 0 {
		t.Errorf("denied loads touched repositories: %v", s.w.calls)
	}
}

func TestCreateDepartment_Validation(t *testing.T) {
	s := newScenario()
	agg := s.aggregator(dashboard.Options{})

	for _, in := range []dashboard.DepartmentInput{
		{Name: "", Code: "CS"},
		{Name: "Physics", Code: ""},
		{Name: "   ", Code: "PHYS"},
		{Name: "Physics", Code: "\t"},
		{},
	} {
		_, err := agg.CreateDepartment(context.Background(), superAdmin(), in)
		if dashboard.KindOf(err) != dashboard.ValidationFailure {
			t.Errorf("CreateDepartment(%+v) kind = %v, want ValidationFailure", in, dashboard.KindOf(err))
		}
	}
	if n := s.w.count("dept.create"); n != 0 {
		t.Errorf("repository Create called %d times for invalid input", n)
	}
}

func TestCreateDepartment_SanitizesDescription(t *testing.T) {
	s := newScenario()
	agg := s.aggregator(dashboard.Options{})

	d, err := agg.CreateDepartment(context.Background(), superAdmin(), dashboard.DepartmentInput{
		Name:        " Physics ",
		Code:        "PHYS",
		Description: `<script>alert(1)</script><b>Matter</b> and energy`,
	})
	if err != nil {
		t.Fatalf("CreateDepartment: %v", err)
	}
	if d.Name != "Physics" {
		t.Errorf("Name = %q", d.Name)
	}
	if d.Description != "Matter and energy" {
		t.Errorf("Description = %q", d.Description)
	}
}

func TestCreateDepartment_RepositoryFailure(t *testing.T) {
	s := newScenario()
	s.w.setFail("dept.create", errBackend)

	_, err := s.aggregator(dashboard.Options{}).CreateDepartment(context.Background(), superAdmin(), dashboard.DepartmentInput{Name: "Physics", Code: "PHYS"})
	if dashboard.KindOf(err) != dashboard.MutationFailure {
		t.Fatalf("kind = %v, want MutationFailure", dashboard.KindOf(err))
	}
	if !errors.Is(err, errBackend) {
		t.Error("expected cause to be wrapped")
	}
}

func TestMutations_Denied(t *testing.T) {
	s := newScenario()
	agg := s.aggregator(dashboard.Options{})
	ctx := context.Background()

	if _, err := agg.CreateDepartment(ctx, s.deptAdmin(), dashboard.DepartmentInput{Name: "X", Code: "X"}); !dashboard.IsDenied(err) {
		t.Errorf("create by dept admin: %v", err)
	}
	if err := agg.DeleteDepartment(ctx, nil, s.d1, true); !dashboard.IsDenied(err) {
		t.Errorf("delete by nil user: %v", err)
	}
	if s.w.count("dept.create")+s.w.count("dept.delete") != 0 {
		t.Error("denied mutations reached the repository")
	}
}

func TestDeleteDepartment_RequiresConfirmation(t *testing.T) {
	s := newScenario()
	err := s.aggregator(dashboard.Options{}).DeleteDepartment(context.Background(), superAdmin(), s.d1, false)
	if !errors.Is(err, dashboard.ErrConfirmationRequired) {
		t.Errorf("err = %v, want ErrConfirmationRequired", err)
	}
	if n := s.w.count("dept.delete"); n != 0 {
		t.Errorf("repository Delete called %d times without confirmation", n)
	}
}

func TestInvoke(t *testing.T) {
	s := newScenario()
	agg := s.aggregator(dashboard.Options{})
	ctx := context.Background()

	tests := []struct {
		name   string
		user   *auth.SessionUser
		action dashboard.ActionName
		want   error
	}{
		{"super create_admin", superAdmin(), dashboard.ActionCreateAdmin, dashboard.ErrNotImplemented},
		{"dept add_student", s.deptAdmin(), dashboard.ActionAddStudent, dashboard.ErrNotImplemented},
		{"dept add_instructor", s.deptAdmin(), dashboard.ActionAddInstructor, dashboard.ErrNotImplemented},
		{"dept create_admin", s.deptAdmin(), dashboard.ActionCreateAdmin, dashboard.ErrUnknownAction},
		{"super add_student", superAdmin(), dashboard.ActionAddStudent, dashboard.ErrUnknownAction},
		{"super create_department", superAdmin(), dashboard.ActionCreateDepartment, dashboard.ErrUnknownAction},
		{"super bogus", superAdmin(), "launch_rocket", dashboard.ErrUnknownAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := agg.Invoke(ctx, tt.user, tt.action); !errors.Is(err, tt.want) {
				t.Errorf("Invoke = %v, want %v", err, tt.want)
			}
		})
	}

	if err := agg.Invoke(ctx, &auth.SessionUser{Role: "student"}, dashboard.ActionAddStudent); !dashboard.IsDenied(err) {
		t.Errorf("student invoke: %v", err)
	}
}
