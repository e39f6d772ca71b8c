// internal/app/features/auditlog/handler.go
package auditlog

import (
	uierrors "github.com/dalemusser/collegehub/internal/app/features/errors"
	"github.com/dalemusser/collegehub/internal/app/store/audit"
	departmentstore "github.com/dalemusser/collegehub/internal/app/store/departments"
	userstore "github.com/dalemusser/collegehub/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Audit       *audit.Store
	Users       *userstore.Store
	Departments *departmentstore.Store
	Log         *zap.Logger
	ErrLog      *uierrors.ErrorLogger
}

// NewHandler constructs an audit log handler over db.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Audit:       audit.New(db),
		Users:       userstore.New(db),
		Departments: departmentstore.New(db, departmentstore.PolicyCascade),
		Log:         logger,
		ErrLog:      errLog,
	}
}
