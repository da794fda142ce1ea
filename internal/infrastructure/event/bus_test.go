package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/emedico/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Cart", uuid.New(), "session-1"),
	}
}

type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panics     bool
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestLocalBus_PublishToSubscribedHandlers(t *testing.T) {
	bus := NewLocalBus(zap.NewNop())
	placed := newTestHandler("OrderPlaced")
	cleared := newTestHandler("CartCleared")
	all := newTestHandler()

	bus.Subscribe(placed)
	bus.Subscribe(cleared)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced"), newTestEvent("CartCleared")))

	assert.Equal(t, 1, placed.count())
	assert.Equal(t, 1, cleared.count())
	assert.Equal(t, 2, all.count())
}

func TestLocalBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewLocalBus(zap.NewNop())
	h := newTestHandler("OrderPlaced")
	bus.Subscribe(h, "CartCleared")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced")))
	assert.Equal(t, 0, h.count())

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("CartCleared")))
	assert.Equal(t, 1, h.count())
}

func TestLocalBus_FailingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewLocalBus(zap.NewNop())
	failing := newTestHandler("OrderPlaced")
	failing.err = errors.New("handler failed")
	panicking := newTestHandler("OrderPlaced")
	panicking.panics = true
	healthy := newTestHandler("OrderPlaced")

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced")))
	assert.Equal(t, 1, healthy.count())
}

func TestLocalBus_Unsubscribe(t *testing.T) {
	bus := NewLocalBus(zap.NewNop())
	h := newTestHandler("OrderPlaced")
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced")))
	assert.Equal(t, 0, h.count())
}

func TestLocalBus_StopRejectsPublish(t *testing.T) {
	bus := NewLocalBus(zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))

	assert.ErrorIs(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced")), ErrBusStopped)

	require.NoError(t, bus.Start(context.Background()))
	assert.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced")))
}

func TestLocalBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := NewLocalBus(zap.NewNop())
	var order []string
	for _, name := range []string{"audit", "notify", "metrics"} {
		bus.Subscribe(handlerFunc(func(context.Context, shared.DomainEvent) error {
			order = append(order, name)
			return nil
		}), "OrderPlaced")
	}

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced")))
	assert.Equal(t, []string{"audit", "notify", "metrics"}, order)
}

func TestLocalBus_SubscribeDuringPublish(t *testing.T) {
	bus := NewLocalBus(zap.NewNop())
	late := newTestHandler("OrderPlaced")
	bus.Subscribe(handlerFunc(func(context.Context, shared.DomainEvent) error {
		bus.Subscribe(late)
		return nil
	}), "OrderPlaced")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced")))
	assert.Equal(t, 0, late.count(), "a handler added mid-publish waits for the next event")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced")))
	assert.Equal(t, 1, late.count())
}

type handlerFunc func(context.Context, shared.DomainEvent) error

func (f handlerFunc) Handle(ctx context.Context, ev shared.DomainEvent) error { return f(ctx, ev) }
func (f handlerFunc) EventTypes() []string                                   { return nil }
