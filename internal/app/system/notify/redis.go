package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "collegehub:notifications"

// RedisPublisher publishes notifications as JSON on a Redis channel so
// other processes (e.g. a websocket fan-out) can relay them. Publish
// errors are logged and swallowed; notifications are best effort.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	log     *zap.Logger
}

// NewRedisPublisher returns a publisher on channel. A nil client yields a
// publisher that does nothing.
func NewRedisPublisher(client *redis.Client, channel string, logger *zap.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPublisher{client: client, channel: channel, log: logger}
}

// Channel returns the channel notifications are published on.
func (p *RedisPublisher) Channel() string { return p.channel }

func (p *RedisPublisher) Notify(ctx context.Context, n Notification) {
	if p == nil || p.client == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		p.log.Warn("marshal notification", zap.Error(err))
		return
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.log.Warn("publish notification",
			zap.String("channel", p.channel),
			zap.String("notification_id", n.ID.String()),
			zap.Error(err))
	}
}
