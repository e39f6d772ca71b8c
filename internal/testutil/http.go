package testutil

import (
	"net/http"
	"net/http/httptest"

	"github.com/dalemusser/collegehub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID           string
	Name         string
	Email        string
	Role         string
	DepartmentID string
}

// SuperAdminUser returns a TestUser with the super_admin role.
func SuperAdminUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Super Admin",
		Email: "super@test.com",
		Role:  "super_admin",
	}
}

// DepartmentAdminUser returns a TestUser administering deptID.
func DepartmentAdminUser(deptID primitive.ObjectID) TestUser {
	return TestUser{
		ID:           primitive.NewObjectID().Hex(),
		Name:         "Test Department Admin",
		Email:        "deptadmin@test.com",
		Role:         "department_admin",
		DepartmentID: deptID.Hex(),
	}
}

// StudentUser returns a TestUser with the student role.
func StudentUser(deptID primitive.ObjectID) TestUser {
	return TestUser{
		ID:           primitive.NewObjectID().Hex(),
		Name:         "Test Student",
		Email:        "student@test.com",
		Role:         "student",
		DepartmentID: deptID.Hex(),
	}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		DepartmentID: user.DepartmentID,
	})
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), user)
}
