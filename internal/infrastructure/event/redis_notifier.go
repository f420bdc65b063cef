package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/restaurant/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const defaultChannelPrefix = "resto:events:"

// Publisher is the part of a Redis client the notifier needs
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Envelope is the message written to the real-time channel
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// RedisNotifier forwards committed events to a per-tenant Redis channel
// for POS terminals and kitchen displays. Delivery is fire-and-forget.
type RedisNotifier struct {
	client        Publisher
	channelPrefix string
	eventTypes    []string
	logger        *zap.Logger
}

// NewRedisNotifier creates a notifier. With no event types it forwards all events.
func NewRedisNotifier(client Publisher, logger *zap.Logger, eventTypes ...string) *RedisNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisNotifier{
		client:        client,
		channelPrefix: defaultChannelPrefix,
		eventTypes:    eventTypes,
		logger:        logger,
	}
}

// Channel returns the channel events of a tenant are published on
func (n *RedisNotifier) Channel(tenantID uuid.UUID) string {
	return n.channelPrefix + tenantID.String()
}

// Handle implements shared.EventHandler
func (n *RedisNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.EventType(), err)
	}
	msg, err := json.Marshal(Envelope{
		ID:            event.EventID(),
		Type:          event.EventType(),
		TenantID:      event.TenantID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	receivers, err := n.client.Publish(ctx, n.Channel(event.TenantID()), msg).Result()
	if err != nil {
		return fmt.Errorf("publish %s event: %w", event.EventType(), err)
	}
	n.logger.Debug("Event forwarded",
		zap.String("event_type", event.EventType()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.Int64("receivers", receivers),
	)
	return nil
}

// EventTypes implements shared.EventHandler
func (n *RedisNotifier) EventTypes() []string {
	return n.eventTypes
}

var _ shared.EventHandler = (*RedisNotifier)(nil)
