// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the single role a user holds.
type Role string

const (
	RoleStudent         Role = "student"
	RoleInstructor      Role = "instructor"
	RoleDepartmentAdmin Role = "department_admin"
	RoleSuperAdmin      Role = "super_admin"
)

// ParseRole reports whether s names a known role. Matching is exact;
// callers normalize user input first.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	switch r {
	case RoleStudent, RoleInstructor, RoleDepartmentAdmin, RoleSuperAdmin:
		return r, true
	}
	return r, false
}

// User represents students, instructors and administrators.
//
// DepartmentID is the department a student or instructor belongs to, and
// the department a department_admin administers. Super admins have none.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName     string              `bson:"full_name" json:"name"`
	FullNameCI   string              `bson:"full_name_ci" json:"-"`
	Email        string              `bson:"email" json:"email"`
	Role         Role                `bson:"role" json:"role"`
	StudentID    *string             `bson:"student_id,omitempty" json:"student_id,omitempty"`
	EmployeeID   *string             `bson:"employee_id,omitempty" json:"employee_id,omitempty"`
	IsActive     bool                `bson:"is_active" json:"is_active"`
	DepartmentID *primitive.ObjectID `bson:"department_id,omitempty" json:"department_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
