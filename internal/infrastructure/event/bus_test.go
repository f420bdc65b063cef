package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
	Amount string `json:"amount"`
}

func newTestEvent(eventType string, tenantID uuid.UUID) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Order", uuid.New(), tenantID),
		Amount:          "10.00",
	}
}

type recordingHandler struct {
	mu      sync.Mutex
	types   []string
	handled []shared.DomainEvent
	err     error
	panics  bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panics {
		panic("handler exploded")
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	payments := &recordingHandler{types: []string{"order_payment_recorded"}}
	shifts := &recordingHandler{types: []string{"shift_closed"}}
	everything := &recordingHandler{}
	bus.Subscribe(payments)
	bus.Subscribe(shifts)
	bus.Subscribe(everything)

	tenantID := uuid.New()
	err := bus.Publish(context.Background(),
		newTestEvent("order_payment_recorded", tenantID),
		newTestEvent("order_payment_recorded", tenantID),
		newTestEvent("table_session_started", tenantID),
	)

	require.NoError(t, err)
	assert.Equal(t, 2, payments.count())
	assert.Equal(t, 0, shifts.count())
	assert.Equal(t, 3, everything.count())
}

func TestInMemoryEventBus_FailingHandlersDoNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	failing := &recordingHandler{err: errors.New("redis down")}
	panicking := &recordingHandler{panics: true}
	healthy := &recordingHandler{}
	bus.Subscribe(failing, "order_cancelled")
	bus.Subscribe(panicking, "order_cancelled")
	bus.Subscribe(healthy, "order_cancelled")

	err := bus.Publish(context.Background(), newTestEvent("order_cancelled", uuid.New()))

	require.NoError(t, err)
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, panicking.count())
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{}
	bus.Subscribe(handler, "shift_opened", "shift_closed")

	_ = bus.Publish(context.Background(), newTestEvent("shift_opened", uuid.New()))
	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent("shift_closed", uuid.New()))

	assert.Equal(t, 1, handler.count())
	assert.Empty(t, bus.registry.GetHandlers("shift_closed"))
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	assert.True(t, bus.running.Load())
	require.NoError(t, bus.Stop(context.Background()))
	assert.False(t, bus.running.Load())
}
