package services

import (
	"context"
	"encoding/json"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/ordercore/domain"
	"github.com/fastygo/ordercore/usecase"
)

// Notifier mirrors committed domain events onto a redis pub/sub channel so
// external consumers can react without polling the document store.
type Notifier struct {
	redis   *redislib.Client
	channel string
	logger  *zap.Logger
}

func NewNotifier(redis *redislib.Client, channel string, logger *zap.Logger) *Notifier {
	if channel == "" {
		channel = "order-events"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		redis:   redis,
		channel: channel,
		logger:  logger,
	}
}

// Subscribe attaches the notifier to every order event kind.
func (n *Notifier) Subscribe(registry *usecase.EventRegistry) {
	kinds := []domain.EventKind{
		domain.EventOrderPlaced,
		domain.EventOrderLineAdded,
		domain.EventOrderPaid,
		domain.EventOrderCancelled,
	}
	for _, kind := range kinds {
		registry.Subscribe(kind, n.Publish)
	}
}

// Publish serializes the event and pushes it to the configured channel.
func (n *Notifier) Publish(ctx context.Context, event domain.DomainEvent) error {
	payload, err := json.Marshal(map[string]interface{}{
		"kind":         event.Kind,
		"aggregate_id": event.AggregateID,
		"occurred_at":  event.OccurredAt,
		"payload":      event.Payload,
	})
	if err != nil {
		return domain.WrapError(domain.ErrCodeSerialization, "event encoding failed", err)
	}

	if err := n.redis.Publish(ctx, n.channel, payload).Err(); err != nil {
		return domain.WrapError(domain.ErrCodeUnavailable, "event publish failed", err)
	}

	n.logger.Debug("event published",
		zap.String("kind", string(event.Kind)),
		zap.String("aggregate_id", event.AggregateID),
	)
	return nil
}
