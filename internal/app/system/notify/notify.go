// Package notify carries operator-facing notifications ("toasts") from the
// dashboards to whatever surfaces them: the HTTP response, the log, Redis.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Variant selects how a notification is presented.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// ErrorTitle is the title used for every failure notification.
const ErrorTitle = "Error"

// Notification is a single operator-facing message.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Variant     Variant   `json:"variant"`
	CreatedAt   time.Time `json:"created_at"`
}

// New builds a notification with a fresh id and timestamp.
func New(title, description string, variant Variant) Notification {
	if variant == "" {
		variant = VariantDefault
	}
	return Notification{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Variant:     variant,
		CreatedAt:   time.Now().UTC(),
	}
}

// Success is a default-variant notification with only a title.
func Success(title string) Notification {
	return New(title, "", VariantDefault)
}

// Failure is a destructive notification titled "Error".
func Failure(description string) Notification {
	return New(ErrorTitle, description, VariantDestructive)
}

// Notifier accepts notifications. Implementations must not block for long
// and must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Multi fans a notification out to every non-nil notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, s := range m {
		if s != nil {
			s.Notify(ctx, n)
		}
	}
}

// Recorder keeps notifications in memory until drained.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

// Drain returns the recorded notifications and clears the recorder.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.items
	r.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// ZapNotifier writes each notification as a structured log entry.
// Destructive notifications log at warn.
type ZapNotifier struct {
	log *zap.Logger
}

func NewZapNotifier(logger *zap.Logger) *ZapNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapNotifier{log: logger}
}

func (z *ZapNotifier) Notify(_ context.Context, n Notification) {
	fields := []zap.Field{
		zap.String("notification_id", n.ID.String()),
		zap.String("title", n.Title),
		zap.String("variant", string(n.Variant)),
	}
	if n.Description != "" {
		fields = append(fields, zap.String("description", n.Description))
	}
	if n.Variant == VariantDestructive {
		z.log.Warn("notification", fields...)
		return
	}
	z.log.Info("notification", fields...)
}
