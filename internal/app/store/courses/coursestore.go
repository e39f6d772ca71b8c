// internal/app/store/courses/coursestore.go
package coursestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/collegehub/internal/app/system/normalize"
	"github.com/dalemusser/collegehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	errTitleRequired = errors.New("course title is required")
	errDeptRequired  = errors.New("course must belong to a department")
	errBadLevel      = errors.New(`level must be "beginner"|"intermediate"|"advanced"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("courses")}
}

var byTitle = options.Find().SetSort(bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}})

// ListAll returns every course.
func (s *Store) ListAll(ctx context.Context) ([]models.Course, error) {
	return s.find(ctx, bson.M{})
}

// ListByDepartment returns the courses of one department.
func (s *Store) ListByDepartment(ctx context.Context, deptID primitive.ObjectID) ([]models.Course, error) {
	return s.find(ctx, bson.M{"department_id": deptID})
}

// Create inserts a course. The department is not checked for existence
// here; callers create courses for departments they just loaded.
func (s *Store) Create(ctx context.Context, c models.Course) (models.Course, error) {
	c.Title = normalize.Name(c.Title)
	if c.Title == "" {
		return models.Course{}, errTitleRequired
	}
	if c.DepartmentID.IsZero() {
		return models.Course{}, errDeptRequired
	}
	switch c.Level {
	case models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced:
	default:
		return models.Course{}, errBadLevel
	}

	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.TitleCI = text.Fold(c.Title)
	c.InstructorName = normalize.Name(c.InstructorName)
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Course{}, err
	}
	return c, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Course, error) {
	cur, err := s.c.Find(ctx, filter, byTitle)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	courses := []models.Course{}
	if err := cur.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}
