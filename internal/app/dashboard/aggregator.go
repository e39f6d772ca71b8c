// Package dashboard authorizes, fetches and assembles the super-admin and
// department-admin dashboards.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"time"

	departmentstore "github.com/dalemusser/collegehub/internal/app/store/departments"
	userstore "github.com/dalemusser/collegehub/internal/app/store/users"
	"github.com/dalemusser/collegehub/internal/app/system/auditlog"
	"github.com/dalemusser/collegehub/internal/app/system/auth"
	"github.com/dalemusser/collegehub/internal/app/system/authz"
	"github.com/dalemusser/collegehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/collegehub/internal/app/system/metrics"
	"github.com/dalemusser/collegehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DepartmentRepository is what the aggregator needs from department storage.
// GetByID returns departmentstore.ErrNotFound for a missing record.
type DepartmentRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Department, error)
	List(ctx context.Context) ([]models.Department, error)
	Stats(ctx context.Context, id primitive.ObjectID) (models.DepartmentStats, error)
	Create(ctx context.Context, d models.Department) (models.Department, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UserRepository is what the aggregator needs from user storage.
// AdminDepartment returns userstore.ErrNoDepartment when the user
// administers no department.
type UserRepository interface {
	AdminDepartment(ctx context.Context, userID primitive.ObjectID) (primitive.ObjectID, error)
	ListByDepartment(ctx context.Context, deptID primitive.ObjectID) ([]models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
}

// CourseRepository is what the aggregator needs from course storage.
type CourseRepository interface {
	ListByDepartment(ctx context.Context, deptID primitive.ObjectID) ([]models.Course, error)
	ListAll(ctx context.Context) ([]models.Course, error)
}

// Metric view labels.
const (
	viewSuperAdmin      = "super_admin"
	viewDepartmentAdmin = "department_admin"
)

// DefaultStatsConcurrency bounds the per-department stats fan-out.
const DefaultStatsConcurrency = 4

// Options configures an Aggregator. Zero values are usable.
type Options struct {
	StatsConcurrency int
	Audit            *auditlog.Logger
	Metrics          *metrics.Metrics
	Logger           *zap.Logger
}

// Aggregator holds no per-operator state; one is shared by every dashboard
// instance.
type Aggregator struct {
	departments DepartmentRepository
	users       UserRepository
	courses     CourseRepository

	statsConcurrency int
	audit            *auditlog.Logger
	metrics          *metrics.Metrics
	log              *zap.Logger
}

func New(departments DepartmentRepository, users UserRepository, courses CourseRepository, opts Options) *Aggregator {
	if opts.StatsConcurrency <= 0 {
		opts.StatsConcurrency = DefaultStatsConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Aggregator{
		departments:      departments,
		users:            users,
		courses:          courses,
		statsConcurrency: opts.StatsConcurrency,
		audit:            opts.Audit,
		metrics:          opts.Metrics,
		log:              opts.Logger,
	}
}

// Authorize is the dashboard gate. An absent user and a user with any
// other role are both denied.
func Authorize(user *auth.SessionUser, required models.Role) bool {
	return authz.Allowed(user, required)
}

func denied(required models.Role) *Failure {
	return fail(AuthorizationDenied, msgAuthorizationDenied, errors.New("requires role "+string(required)))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Department-admin view                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadDepartmentAdmin assembles the dashboard for the department user
// administers. When no department can be resolved it fails with
// ScopeResolutionFailure without reading users or courses.
func (a *Aggregator) LoadDepartmentAdmin(ctx context.Context, user *auth.SessionUser) (v *DepartmentAdminView, err error) {
	if !Authorize(user, models.RoleDepartmentAdmin) {
		return nil, denied(models.RoleDepartmentAdmin)
	}
	start := time.Now()
	defer func() { a.metrics.ObserveLoad(viewDepartmentAdmin, err, time.Since(start)) }()

	uid, perr := primitive.ObjectIDFromHex(user.ID)
	if perr != nil {
		return nil, fail(ScopeResolutionFailure, MsgDepartmentNotFound, perr)
	}
	deptID, serr := a.users.AdminDepartment(ctx, uid)
	switch {
	case errors.Is(serr, userstore.ErrNoDepartment):
		return nil, fail(ScopeResolutionFailure, MsgDepartmentNotFound, serr)
	case serr != nil:
		a.log.Warn("resolve department admin scope", zap.String("user_id", user.ID), zap.Error(serr))
		return nil, fail(LoadFailure, MsgLoadFailed, serr)
	case deptID.IsZero():
		return nil, fail(ScopeResolutionFailure, MsgDepartmentNotFound, userstore.ErrNoDepartment)
	}

	var (
		dept    models.Department
		members []models.User
		courses []models.Course
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := a.departments.GetByID(gctx, deptID)
		if errors.Is(err, departmentstore.ErrNotFound) {
			return fail(ScopeResolutionFailure, MsgDepartmentNotFound, err)
		}
		dept = d
		return err
	})
	g.Go(func() error {
		var err error
		members, err = a.users.ListByDepartment(gctx, deptID)
		return err
	})
	g.Go(func() error {
		var err error
		courses, err = a.courses.ListByDepartment(gctx, deptID)
		return err
	})
	if werr := g.Wait(); werr != nil {
		a.log.Warn("load department admin dashboard",
			zap.String("user_id", user.ID),
			zap.String("department_id", deptID.Hex()),
			zap.Error(werr))
		return nil, asLoadFailure(werr)
	}

	students, instructors := partition(members)
	if courses == nil {
		courses = []models.Course{}
	}
	return &DepartmentAdminView{
		Department:  dept,
		Students:    students,
		Instructors: instructors,
		Courses:     courses,
		Totals: DepartmentTotals{
			Students:    len(students),
			Instructors: len(instructors),
			Courses:     len(courses),
		},
		Actions: departmentAdminActions(),
	}, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Super-admin view                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadSuperAdmin assembles the system-wide dashboard.
func (a *Aggregator) LoadSuperAdmin(ctx context.Context, user *auth.SessionUser) (v *SuperAdminView, err error) {
	if !Authorize(user, models.RoleSuperAdmin) {
		return nil, denied(models.RoleSuperAdmin)
	}
	start := time.Now()
	defer func() { a.metrics.ObserveLoad(viewSuperAdmin, err, time.Since(start)) }()

	var (
		depts   []models.Department
		users   []models.User
		courses []models.Course
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		depts, err = a.departments.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = a.users.ListAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		courses, err = a.courses.ListAll(gctx)
		return err
	})
	if werr := g.Wait(); werr != nil {
		a.log.Warn("load super admin dashboard", zap.Error(werr))
		return nil, asLoadFailure(werr)
	}

	stats := make([]models.DepartmentStats, len(depts))
	sg, sctx := errgroup.WithContext(ctx)
	sg.SetLimit(a.statsConcurrency)
	for i, d := range depts {
		sg.Go(func() error {
			st, err := a.departments.Stats(sctx, d.ID)
			if err != nil {
				return err
			}
			stats[i] = st
			return nil
		})
	}
	if werr := sg.Wait(); werr != nil {
		a.log.Warn("load department stats", zap.Error(werr))
		return nil, asLoadFailure(werr)
	}

	if depts == nil {
		depts = []models.Department{}
	}
	if users == nil {
		users = []models.User{}
	}
	if courses == nil {
		courses = []models.Course{}
	}
	byDept := make(map[string]models.DepartmentStats, len(depts))
	for i, d := range depts {
		byDept[d.ID.Hex()] = stats[i]
	}
	names := departmentNames(depts)

	return &SuperAdminView{
		Departments:       depts,
		Users:             users,
		Courses:           courses,
		StatsByDepartment: byDept,
		Totals:            systemTotals(depts, users, courses),
		Admins:            adminRows(users, names),
		CourseRows:        courseRows(courses, names),
		Actions:           superAdminActions(),
	}, nil
}

// asLoadFailure passes through failures already classified (a missing
// department) and wraps everything else as LoadFailure.
func asLoadFailure(err error) error {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return fail(LoadFailure, MsgLoadFailed, err)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Mutations                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// DepartmentInput is what an operator submits to create a department.
type DepartmentInput struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// CreateDepartment validates in and asks the repository to create it.
// Empty name or code fails with ValidationFailure before any repository
// call; a repository error fails with MutationFailure.
func (a *Aggregator) CreateDepartment(ctx context.Context, user *auth.SessionUser, in DepartmentInput) (dept models.Department, err error) {
	if !Authorize(user, models.RoleSuperAdmin) {
		return models.Department{}, denied(models.RoleSuperAdmin)
	}
	name := strings.TrimSpace(in.Name)
	code := strings.TrimSpace(in.Code)
	if name == "" || code == "" {
		return models.Department{}, fail(ValidationFailure, MsgNameCodeRequired, nil)
	}
	defer func() { a.metrics.CountMutation("create", err) }()

	actor := auditlog.Actor{ID: user.ID, Role: user.Role}
	created, cerr := a.departments.Create(ctx, models.Department{
		Name:        name,
		Code:        code,
		Description: htmlsanitize.PlainText(in.Description),
	})
	if cerr != nil {
		a.log.Warn("create department", zap.String("code", code), zap.Error(cerr))
		a.audit.DepartmentCreateFailed(ctx, actor, code, cerr)
		return models.Department{}, fail(MutationFailure, MsgCreateFailed, cerr)
	}
	a.audit.DepartmentCreated(ctx, actor, created)
	return created, nil
}

// DeleteDepartment deletes id once the operator has confirmed. Without
// confirmation it returns ErrConfirmationRequired and touches nothing.
// Users and courses referencing the department are handled by the
// repository's delete policy.
func (a *Aggregator) DeleteDepartment(ctx context.Context, user *auth.SessionUser, id primitive.ObjectID, confirmed bool) (err error) {
	if !Authorize(user, models.RoleSuperAdmin) {
		return denied(models.RoleSuperAdmin)
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	defer func() { a.metrics.CountMutation("delete", err) }()

	actor := auditlog.Actor{ID: user.ID, Role: user.Role}
	if derr := a.departments.Delete(ctx, id); derr != nil {
		a.log.Warn("delete department", zap.String("department_id", id.Hex()), zap.Error(derr))
		a.audit.DepartmentDeleteFailed(ctx, actor, id, derr)
		return fail(MutationFailure, MsgDeleteFailed, derr)
	}
	a.audit.DepartmentDeleted(ctx, actor, id)
	return nil
}

// Invoke runs a named action that takes no input. Every such action is
// currently disabled, so an authorized call returns ErrNotImplemented.
func (a *Aggregator) Invoke(_ context.Context, user *auth.SessionUser, name ActionName) error {
	var set []Action
	switch {
	case Authorize(user, models.RoleSuperAdmin):
		set = superAdminActions()
	case Authorize(user, models.RoleDepartmentAdmin):
		set = departmentAdminActions()
	default:
		return denied(models.RoleSuperAdmin)
	}
	act, ok := lookupAction(set, name)
	if !ok || act.Enabled {
		// enabled actions take input and have their own methods
		return ErrUnknownAction
	}
	return ErrNotImplemented
}
