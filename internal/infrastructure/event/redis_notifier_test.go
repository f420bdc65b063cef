package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	channel string
	message []byte
	err     error
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	p.channel = channel
	p.message, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	if p.err != nil {
		cmd.SetErr(p.err)
	} else {
		cmd.SetVal(2)
	}
	return cmd
}

func TestRedisNotifier_PublishesEnvelopePerTenant(t *testing.T) {
	pub := &fakePublisher{}
	notifier := NewRedisNotifier(pub, nil)
	tenantID := uuid.New()
	evt := newTestEvent("order_payment_completed", tenantID)

	require.NoError(t, notifier.Handle(context.Background(), evt))

	assert.Equal(t, "resto:events:"+tenantID.String(), pub.channel)
	var env Envelope
	require.NoError(t, json.Unmarshal(pub.message, &env))
	assert.Equal(t, evt.ID, env.ID)
	assert.Equal(t, "order_payment_completed", env.Type)
	assert.Equal(t, tenantID, env.TenantID)
	assert.Equal(t, "Order", env.AggregateType)
	assert.Contains(t, string(env.Payload), `"amount":"10.00"`)
}

func TestRedisNotifier_ReturnsPublishError(t *testing.T) {
	notifier := NewRedisNotifier(&fakePublisher{err: errors.New("connection refused")}, nil)
	err := notifier.Handle(context.Background(), newTestEvent("shift_closed", uuid.New()))
	assert.ErrorContains(t, err, "connection refused")
}

func TestRedisNotifier_EventTypes(t *testing.T) {
	assert.Empty(t, NewRedisNotifier(&fakePublisher{}, nil).EventTypes())
	assert.Equal(t, []string{"guest_joined"}, NewRedisNotifier(&fakePublisher{}, nil, "guest_joined").EventTypes())
}
