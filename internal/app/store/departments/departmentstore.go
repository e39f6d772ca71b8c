// internal/app/store/departments/departmentstore.go
package departmentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/collegehub/internal/app/system/normalize"
	"github.com/dalemusser/collegehub/internal/app/system/txn"
	"github.com/dalemusser/collegehub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// DeletePolicy decides what happens to users and courses that reference a
// department being deleted.
type DeletePolicy string

const (
	// PolicyCascade deletes the department's courses and clears
	// department_id on its users.
	PolicyCascade DeletePolicy = "cascade"
	// PolicyRejectNonEmpty refuses to delete a department any user or
	// course still references.
	PolicyRejectNonEmpty DeletePolicy = "reject_nonempty"
)

// ParseDeletePolicy maps a config value to a policy. Empty means cascade.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(s) {
	case "", PolicyCascade:
		return PolicyCascade, nil
	case PolicyRejectNonEmpty:
		return PolicyRejectNonEmpty, nil
	}
	return "", fmt.Errorf("unknown department delete policy %q", s)
}

var (
	ErrDuplicateCode      = errors.New("a department with this code already exists")
	ErrNotFound           = errors.New("department not found")
	ErrDepartmentNotEmpty = errors.New("department still has users or courses")
	errNameRequired       = errors.New("department name is required")
	errCodeRequired       = errors.New("department code is required")
)

type Store struct {
	db      *mongo.Database
	c       *mongo.Collection
	users   *mongo.Collection
	courses *mongo.Collection
	policy  DeletePolicy
	log     *zap.Logger

	// beforeRemove runs inside the delete transaction just before the
	// department document itself is removed.
	beforeRemove func(ctx context.Context) error
}

func New(db *mongo.Database, policy DeletePolicy) *Store {
	if policy == "" {
		policy = PolicyCascade
	}
	return &Store{
		db:      db,
		c:       db.Collection("departments"),
		users:   db.Collection("users"),
		courses: db.Collection("courses"),
		policy:  policy,
		log:     zap.NewNop(),
	}
}

// WithLogger sets the logger used for transaction fallbacks.
func (s *Store) WithLogger(logger *zap.Logger) *Store {
	if logger != nil {
		s.log = logger
	}
	return s
}

// Create inserts a department after normalizing name and code.
// Returns ErrDuplicateCode when the folded code is already taken.
func (s *Store) Create(ctx context.Context, d models.Department) (models.Department, error) {
	d.Name = normalize.Name(d.Name)
	d.Code = normalize.Code(d.Code)
	if d.Name == "" {
		return models.Department{}, errNameRequired
	}
	if d.Code == "" {
		return models.Department{}, errCodeRequired
	}

	now := time.Now().UTC()
	d.ID = primitive.NewObjectID()
	d.NameCI = text.Fold(d.Name)
	d.CodeCI = text.Fold(d.Code)
	d.CreatedAt = now
	d.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, d); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Department{}, ErrDuplicateCode
		}
		return models.Department{}, err
	}
	return d, nil
}

// GetByID loads one department. Returns ErrNotFound when it does not exist.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Department, error) {
	var d models.Department
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Department{}, ErrNotFound
	}
	if err != nil {
		return models.Department{}, err
	}
	return d, nil
}

// List returns every department ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Department, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	depts := []models.Department{}
	if err := cur.All(ctx, &depts); err != nil {
		return nil, err
	}
	return depts, nil
}

// Stats counts the students, instructors and courses of one department.
func (s *Store) Stats(ctx context.Context, id primitive.ObjectID) (models.DepartmentStats, error) {
	var out models.DepartmentStats
	var err error

	if out.Students, err = s.users.CountDocuments(ctx, bson.M{"department_id": id, "role": models.RoleStudent}); err != nil {
		return models.DepartmentStats{}, err
	}
	if out.Instructors, err = s.users.CountDocuments(ctx, bson.M{"department_id": id, "role": models.RoleInstructor}); err != nil {
		return models.DepartmentStats{}, err
	}
	if out.Courses, err = s.courses.CountDocuments(ctx, bson.M{"department_id": id}); err != nil {
		return models.DepartmentStats{}, err
	}
	return out, nil
}

// Delete removes a department, applying the store's DeletePolicy to the
// users and courses that reference it. Returns ErrNotFound when nothing
// was deleted. All writes run in one transaction, so a failure leaves the
// department and its dependents as they were.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		return s.delete(ctx, id)
	})
}

func (s *Store) delete(ctx context.Context, id primitive.ObjectID) error {
	switch s.policy {
	case PolicyRejectNonEmpty:
		n, err := s.users.CountDocuments(ctx, bson.M{"department_id": id}, options.Count().SetLimit(1))
		if err != nil {
			return err
		}
		if n == 0 {
			n, err = s.courses.CountDocuments(ctx, bson.M{"department_id": id}, options.Count().SetLimit(1))
			if err != nil {
				return err
			}
		}
		if n > 0 {
			return ErrDepartmentNotEmpty
		}
	default:
		if _, err := s.users.UpdateMany(ctx,
			bson.M{"department_id": id},
			bson.M{
				"$unset": bson.M{"department_id": ""},
				"$set":   bson.M{"updated_at": time.Now().UTC()},
			},
		); err != nil {
			return fmt.Errorf("detach users: %w", err)
		}
		if _, err := s.courses.DeleteMany(ctx, bson.M{"department_id": id}); err != nil {
			return fmt.Errorf("delete courses: %w", err)
		}
	}

	if s.beforeRemove != nil {
		if err := s.beforeRemove(ctx); err != nil {
			return err
		}
	}
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
