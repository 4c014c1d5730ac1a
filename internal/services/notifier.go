package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Notification event types consumed by the notification service.
const (
	EventPenaltyApplied = "gem.penalty.applied"
	EventDebtCreated    = "debt.created"
	EventDebtPayment    = "debt.payment.recorded"
	EventDebtWaived     = "debt.waived"
	EventOrderCompleted = "payment.order.completed"
)

// Event is a fire-and-forget notification. Delivery is best effort: a failed
// publish is logged and dropped, never surfaced to the ledger write path.
type Event struct {
	Type      string                 `json:"type"`
	UserID    uint                   `json:"user_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Notifier publishes events for the external notification collaborator.
type Notifier interface {
	Publish(ctx context.Context, event Event)
}

// RedisNotifier pushes events onto a Redis list drained by the notification
// service.
type RedisNotifier struct {
	client *redis.Client
	queue  string
}

func NewRedisNotifier(client *redis.Client, queue string) *RedisNotifier {
	return &RedisNotifier{client: client, queue: queue}
}

func (n *RedisNotifier) Publish(ctx context.Context, event Event) {
	if n.client == nil {
		return
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Error("notifier: marshal event", zap.String("type", event.Type), zap.Error(err))
		return
	}
	if err := n.client.LPush(ctx, n.queue, data).Err(); err != nil {
		logger.Log.Warn("notifier: publish failed",
			zap.String("type", event.Type),
			zap.Uint("user_id", event.UserID),
			zap.Error(err))
	}
}

// NopNotifier discards all events. Used in tests and in deployments without
// Redis.
type NopNotifier struct{}

func (NopNotifier) Publish(ctx context.Context, event Event) {}
