package event

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/costerbox/backend/internal/domain/shared"
)

type countingHandler struct {
	types   []string
	handled atomic.Int64
	err     error
}

func (h *countingHandler) Handle(_ context.Context, _ shared.DomainEvent) error {
	h.handled.Add(1)
	return h.err
}

func (h *countingHandler) EventTypes() []string {
	return h.types
}

// gateHandler blocks inside Handle until released, so tests can hold a
// delivery in flight.
type gateHandler struct {
	types   []string
	entered chan struct{}
	release chan struct{}
}

func (h *gateHandler) Handle(_ context.Context, _ shared.DomainEvent) error {
	close(h.entered)
	<-h.release
	return nil
}

func (h *gateHandler) EventTypes() []string {
	return h.types
}

func newTestEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "order", uuid.New())
	return &e
}

func newStartedBus(t *testing.T) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	return bus
}

func TestInMemoryEventBus_PublishToSubscriber(t *testing.T) {
	bus := newStartedBus(t)
	handler := &countingHandler{types: []string{"order.paid"}}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.paid")))
	assert.Equal(t, int64(1), handler.handled.Load())

	// Unrelated event type does not reach the handler
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.shipped")))
	assert.Equal(t, int64(1), handler.handled.Load())
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := newStartedBus(t)
	handler := &countingHandler{}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("order.created"),
		newTestEvent("order.claimed"),
	))
	assert.Equal(t, int64(2), handler.handled.Load())
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := newStartedBus(t)
	failing := &countingHandler{types: []string{"order.paid"}, err: errors.New("boom")}
	healthy := &countingHandler{types: []string{"order.paid"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.paid")))
	assert.Equal(t, int64(1), failing.handled.Load())
	assert.Equal(t, int64(1), healthy.handled.Load())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := newStartedBus(t)
	handler := &countingHandler{types: []string{"order.paid"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.paid")))
	assert.Equal(t, int64(0), handler.handled.Load())
}

func TestInMemoryEventBus_PublishRequiresStart(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &countingHandler{types: []string{"order.paid"}}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("order.paid"))
	require.ErrorIs(t, err, ErrBusNotRunning)
	assert.Equal(t, int64(0), handler.handled.Load())

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("order.paid")))
	require.NoError(t, bus.Stop(context.Background()))

	err = bus.Publish(context.Background(), newTestEvent("order.paid"))
	require.ErrorIs(t, err, ErrBusNotRunning)
	assert.Equal(t, int64(1), handler.handled.Load())
}

func TestInMemoryEventBus_StopWaitsForInflightDelivery(t *testing.T) {
	bus := newStartedBus(t)
	handler := &gateHandler{
		types:   []string{"order.paid"},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	bus.Subscribe(handler)

	published := make(chan error, 1)
	go func() {
		published <- bus.Publish(context.Background(), newTestEvent("order.paid"))
	}()
	<-handler.entered

	stopped := make(chan struct{})
	go func() {
		assert.NoError(t, bus.Stop(context.Background()))
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a delivery was still in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(handler.release)
	require.NoError(t, <-published)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the delivery finished")
	}
}
