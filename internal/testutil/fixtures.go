package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/collegehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateDepartment inserts a department directly, bypassing the store.
func (f *Fixtures) CreateDepartment(ctx context.Context, name, code string) models.Department {
	f.t.Helper()

	now := time.Now().UTC()
	d := models.Department{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Code:      code,
		CodeCI:    text.Fold(code),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("departments").InsertOne(ctx, d); err != nil {
		f.t.Fatalf("failed to create test department: %v", err)
	}
	return d
}

// CreateUser inserts an active user. deptID may be nil for super admins.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string, role models.Role, deptID *primitive.ObjectID) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		Role:         role,
		IsActive:     true,
		DepartmentID: deptID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateStudent inserts an active student in deptID.
func (f *Fixtures) CreateStudent(ctx context.Context, fullName, email string, deptID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleStudent, &deptID)
}

// CreateInstructor inserts an active instructor in deptID.
func (f *Fixtures) CreateInstructor(ctx context.Context, fullName, email string, deptID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleInstructor, &deptID)
}

// CreateDepartmentAdmin inserts an active admin of deptID.
func (f *Fixtures) CreateDepartmentAdmin(ctx context.Context, fullName, email string, deptID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleDepartmentAdmin, &deptID)
}

// CreateCourse inserts a beginner course in deptID.
func (f *Fixtures) CreateCourse(ctx context.Context, title string, deptID primitive.ObjectID) models.Course {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Course{
		ID:             primitive.NewObjectID(),
		Title:          title,
		TitleCI:        text.Fold(title),
		InstructorName: "Test Instructor",
		Level:          models.LevelBeginner,
		Category:       "General",
		DepartmentID:   deptID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("courses").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test course: %v", err)
	}
	return c
}
