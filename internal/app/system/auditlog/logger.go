// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"

	"github.com/dalemusser/collegehub/internal/app/store/audit"
	"github.com/dalemusser/collegehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Admin controls logging for department create/delete events.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// Logger records audit events to MongoDB (via audit.Store) and zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil when Admin is "log" or "off".
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.ActorRole != "" {
		fields = append(fields, zap.String("actor_role", event.ActorRole))
	}
	if event.DepartmentID != nil {
		fields = append(fields, zap.String("department_id", event.DepartmentID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := "all"
	if event.Category == audit.CategoryAdmin && l.config.Admin != "" {
		setting = l.config.Admin
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// Actor identifies who performed an audited action.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) oid() *primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(a.ID)
	if err != nil {
		return nil
	}
	return &oid
}

// DepartmentCreated logs a successful department creation.
func (l *Logger) DepartmentCreated(ctx context.Context, actor Actor, dept models.Department) {
	id := dept.ID
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryAdmin,
		EventType:    audit.EventDepartmentCreated,
		DepartmentID: &id,
		ActorID:      actor.oid(),
		ActorRole:    actor.Role,
		Success:      true,
		Details: map[string]string{
			"name": dept.Name,
			"code": dept.Code,
		},
	})
}

// DepartmentCreateFailed logs a department creation the repository refused.
func (l *Logger) DepartmentCreateFailed(ctx context.Context, actor Actor, code string, reason error) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAdmin,
		EventType:     audit.EventDepartmentCreateFailed,
		ActorID:       actor.oid(),
		ActorRole:     actor.Role,
		Success:       false,
		FailureReason: errString(reason),
		Details:       map[string]string{"code": code},
	})
}

// DepartmentDeleted logs a successful department deletion.
func (l *Logger) DepartmentDeleted(ctx context.Context, actor Actor, deptID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:     audit.CategoryAdmin,
		EventType:    audit.EventDepartmentDeleted,
		DepartmentID: &deptID,
		ActorID:      actor.oid(),
		ActorRole:    actor.Role,
		Success:      true,
	})
}

// DepartmentDeleteFailed logs a department deletion the repository refused.
func (l *Logger) DepartmentDeleteFailed(ctx context.Context, actor Actor, deptID primitive.ObjectID, reason error) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAdmin,
		EventType:     audit.EventDepartmentDeleteFailed,
		DepartmentID:  &deptID,
		ActorID:       actor.oid(),
		ActorRole:     actor.Role,
		Success:       false,
		FailureReason: errString(reason),
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
