// internal/domain/models/course.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Level is the difficulty tier of a course.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Course belongs to exactly one department. InstructorName is a
// denormalized display name, not a reference to a user.
type Course struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Title          string             `bson:"title" json:"title"`
	TitleCI        string             `bson:"title_ci" json:"-"`
	InstructorName string             `bson:"instructor_name" json:"instructor_name"`
	Level          Level              `bson:"level" json:"level"`
	Category       string             `bson:"category" json:"category"`
	DepartmentID   primitive.ObjectID `bson:"department_id" json:"department_id"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
