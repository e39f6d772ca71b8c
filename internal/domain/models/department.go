// internal/domain/models/department.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Department is an academic department. Code is a short label (e.g. "CS")
// that is unique among departments; CodeCI carries the folded form the
// unique index is built on.
type Department struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Code        string             `bson:"code" json:"code"`
	CodeCI      string             `bson:"code_ci" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// DepartmentStats is computed per department when a dashboard loads.
// It is never persisted.
type DepartmentStats struct {
	Students    int64 `json:"students"`
	Instructors int64 `json:"instructors"`
	Courses     int64 `json:"courses"`
}
