package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/collegehub/internal/app/system/normalize"
	"github.com/dalemusser/collegehub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNoDepartment is returned by AdminDepartment when the user is not a
	// department admin or administers no department.
	ErrNoDepartment = errors.New("no department associated with user")
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "student"|"instructor"|"department_admin"|"super_admin"`)
	errDeptNeeded     = errors.New("student/instructor/department_admin must have department_id")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// byName keeps listings stable: display order, then insertion order.
var byName = options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}})

// GetByIDs loads the users with the given ids. Unknown ids are skipped.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// ListAll returns every user.
func (s *Store) ListAll(ctx context.Context) ([]models.User, error) {
	return s.find(ctx, bson.M{})
}

// ListByDepartment returns the users whose department_id is deptID,
// whatever their role.
func (s *Store) ListByDepartment(ctx context.Context, deptID primitive.ObjectID) ([]models.User, error) {
	return s.find(ctx, bson.M{"department_id": deptID})
}

// AdminDepartment resolves the department a department admin administers.
func (s *Store) AdminDepartment(ctx context.Context, userID primitive.ObjectID) (primitive.ObjectID, error) {
	var u struct {
		DepartmentID *primitive.ObjectID `bson:"department_id"`
	}
	proj := options.FindOne().SetProjection(bson.M{"department_id": 1})
	err := s.c.FindOne(ctx, bson.M{"_id": userID, "role": models.RoleDepartmentAdmin}, proj).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return primitive.NilObjectID, ErrNoDepartment
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	if u.DepartmentID == nil || u.DepartmentID.IsZero() {
		return primitive.NilObjectID, ErrNoDepartment
	}
	return *u.DepartmentID, nil
}

// Create inserts a new user after normalizing and validating fields.
// Everyone except super admins must belong to a department.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	role, ok := models.ParseRole(normalize.Role(string(u.Role)))
	if !ok {
		return models.User{}, errBadRole
	}
	if role != models.RoleSuperAdmin && u.DepartmentID == nil {
		return models.User{}, errDeptNeeded
	}

	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.Role = role
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter, byName)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
