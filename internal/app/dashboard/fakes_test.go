package dashboard_test

import (
	"context"
	"errors"
	"sync"

	"github.com/dalemusser/collegehub/internal/app/dashboard"
	departmentstore "github.com/dalemusser/collegehub/internal/app/store/departments"
	userstore "github.com/dalemusser/collegehub/internal/app/store/users"
	"github.com/dalemusser/collegehub/internal/app/system/auth"
	"github.com/dalemusser/collegehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// world is an in-memory backing store shared by the three fake repositories.
type world struct {
	mu        sync.Mutex
	depts     []models.Department
	users     []models.User
	courses   []models.Course
	adminDept map[primitive.ObjectID]primitive.ObjectID

	calls map[string]int
	fail  map[string]error

	// listHook, when set, runs at the start of every departments List call.
	listHook func(ctx context.Context) error
	// statsHook, when set, runs inside every Stats call.
	statsHook func(ctx context.Context)
}

func (w *world) record(op string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls[op]++
	return w.fail[op]
}

func (w *world) count(op string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls[op]
}

func (w *world) setFail(op string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err == nil {
		delete(w.fail, op)
		return
	}
	w.fail[op] = err
}

type fakeDepts struct{ w *world }
type fakeUsers struct{ w *world }
type fakeCourses struct{ w *world }

func (f fakeDepts) GetByID(_ context.Context, id primitive.ObjectID) (models.Department, error) {
	if err := f.w.record("dept.get"); err != nil {
		return models.Department{}, err
	}
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for _, d := range f.w.depts {
		if d.ID == id {
			return d, nil
		}
	}
	return models.Department{}, departmentstore.ErrNotFound
}

func (f fakeDepts) List(ctx context.Context) ([]models.Department, error) {
	if err := f.w.record("dept.list"); err != nil {
		return nil, err
	}
	if f.w.listHook != nil {
		if err := f.w.listHook(ctx); err != nil {
			return nil, err
		}
	}
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	return append([]models.Department(nil), f.w.depts...), nil
}

func (f fakeDepts) Stats(ctx context.Context, id primitive.ObjectID) (models.DepartmentStats, error) {
	if err := f.w.record("dept.stats"); err != nil {
		return models.DepartmentStats{}, err
	}
	if f.w.statsHook != nil {
		f.w.statsHook(ctx)
	}
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var st models.DepartmentStats
	for _, u := range f.w.users {
		if u.DepartmentID == nil || *u.DepartmentID != id {
			continue
		}
		switch u.Role {
		case models.RoleStudent:
			st.Students++
		case models.RoleInstructor:
			st.Instructors++
		}
	}
	for _, c := range f.w.courses {
		if c.DepartmentID == id {
			st.Courses++
		}
	}
	return st, nil
}

func (f fakeDepts) Create(_ context.Context, d models.Department) (models.Department, error) {
	if err := f.w.record("dept.create"); err != nil {
		return models.Department{}, err
	}
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	d.ID = primitive.NewObjectID()
	f.w.depts = append(f.w.depts, d)
	return d, nil
}

func (f fakeDepts) Delete(_ context.Context, id primitive.ObjectID) error {
	if err := f.w.record("dept.delete"); err != nil {
		return err
	}
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for i, d := range f.w.depts {
		if d.ID == id {
			f.w.depts = append(f.w.depts[:i:i], f.w.depts[i+1:]...)
			return nil
		}
	}
	return departmentstore.ErrNotFound
}

func (f fakeUsers) AdminDepartment(_ context.Context, userID primitive.ObjectID) (primitive.ObjectID, error) {
	if err := f.w.record("user.scope"); err != nil {
		return primitive.NilObjectID, err
	}
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	id, ok := f.w.adminDept[userID]
	if !ok {
		return primitive.NilObjectID, userstore.ErrNoDepartment
	}
	return id, nil
}

func (f fakeUsers) ListByDepartment(_ context.Context, deptID primitive.ObjectID) ([]models.User, error) {
	if err := f.w.record("user.by_dept"); err != nil {
		return nil, err
	}
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	out := []models.User{}
	for _, u := range f.w.users {
		if u.DepartmentID != nil && *u.DepartmentID == deptID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f fakeUsers) ListAll(context.Context) ([]models.User, error) {
	if err := f.w.record("user.all"); err != nil {
		return nil, err
	}
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	return append([]models.User(nil), f.w.users...), nil
}

func (f fakeCourses) ListByDepartment(_ context.Context, deptID primitive.ObjectID) ([]models.Course, error) {
	if err := f.w.record("course.by_dept"); err != nil {
		return nil, err
	}
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	out := []models.Course{}
	for _, c := range f.w.courses {
		if c.DepartmentID == deptID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f fakeCourses) ListAll(context.Context) ([]models.Course, error) {
	if err := f.w.record("course.all"); err != nil {
		return nil, err
	}
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	return append([]models.Course(nil), f.w.courses...), nil
}

var errBackend = errors.New("backend unavailable")

// scenario holds the ids of the reference data set: departments CS (d1)
// and Math (d2); s1 student and i1 instructor in d1; a1 department admin
// of d2; one course in each department. adminD1 administers d1.
type scenario struct {
	w                   *world
	d1, d2              primitive.ObjectID
	s1, i1, a1, adminD1 primitive.ObjectID
	c1, c2              primitive.ObjectID
}

func newScenario() *scenario {
	s := &scenario{
		d1: primitive.NewObjectID(), d2: primitive.NewObjectID(),
		s1: primitive.NewObjectID(), i1: primitive.NewObjectID(), a1: primitive.NewObjectID(),
		adminD1: primitive.NewObjectID(),
		c1:      primitive.NewObjectID(), c2: primitive.NewObjectID(),
	}
	d1, d2 := s.d1, s.d2
	s.w = &world{
		depts: []models.Department{
			{ID: s.d1, Name: "Computer Science", Code: "CS"},
			{ID: s.d2, Name: "Mathematics", Code: "Math"},
		},
		users: []models.User{
			{ID: s.s1, FullName: "s1", Role: models.RoleStudent, IsActive: true, DepartmentID: &d1},
			{ID: s.i1, FullName: "i1", Role: models.RoleInstructor, IsActive: true, DepartmentID: &d1},
			{ID: s.a1, FullName: "a1", Email: "a1@college.edu", Role: models.RoleDepartmentAdmin, IsActive: true, DepartmentID: &d2},
		},
		courses: []models.Course{
			{ID: s.c1, Title: "Intro to Go", Level: models.LevelBeginner, DepartmentID: s.d1},
			{ID: s.c2, Title: "Linear Algebra", Level: models.LevelIntermediate, DepartmentID: s.d2},
		},
		adminDept: map[primitive.ObjectID]primitive.ObjectID{
			s.adminD1: s.d1,
			s.a1:      s.d2,
		},
		calls: map[string]int{},
		fail:  map[string]error{},
	}
	return s
}

func (s *scenario) aggregator(opts dashboard.Options) *dashboard.Aggregator {
	return dashboard.New(fakeDepts{s.w}, fakeUsers{s.w}, fakeCourses{s.w}, opts)
}

func superAdmin() *auth.SessionUser {
	return &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Name: "Root", Role: string(models.RoleSuperAdmin)}
}

func (s *scenario) deptAdmin() *auth.SessionUser {
	return &auth.SessionUser{ID: s.adminD1.Hex(), Name: "Dept Admin", Role: string(models.RoleDepartmentAdmin), DepartmentID: s.d1.Hex()}
}

func ids[T any](items []T, id func(T) primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func userID(u models.User) primitive.ObjectID     { return u.ID }
func courseID(c models.Course) primitive.ObjectID { return c.ID }
