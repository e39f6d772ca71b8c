// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/collegehub/internal/app/system/auth"
	"github.com/dalemusser/collegehub/internal/domain/models"
)

// Allowed is the dashboard gate: it reports whether user may open a
// dashboard that requires the given role. An absent user and a user with
// any other role are treated the same.
func Allowed(user *auth.SessionUser, required models.Role) bool {
	return user != nil && models.Role(user.Role) == required
}

// UserCtx returns the current user and its role. ok is false when no user
// is present or the role is not exactly one this app knows.
func UserCtx(r *http.Request) (user *auth.SessionUser, role models.Role, ok bool) {
	u, found := auth.CurrentUser(r)
	if !found {
		return nil, "", false
	}
	role, known := models.ParseRole(u.Role)
	if !known {
		return u, role, false
	}
	return u, role, true
}

// IsSuperAdmin reports whether the current request's user is a super admin.
func IsSuperAdmin(r *http.Request) bool {
	_, role, ok := UserCtx(r)
	return ok && role == models.RoleSuperAdmin
}

// IsDepartmentAdmin reports whether the current request's user administers
// a department.
func IsDepartmentAdmin(r *http.Request) bool {
	_, role, ok := UserCtx(r)
	return ok && role == models.RoleDepartmentAdmin
}
