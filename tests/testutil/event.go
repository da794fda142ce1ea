package testutil

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emedico/backend/internal/domain/shared"
)

// EventRecorder subscribes to every event type and keeps what it sees.
type EventRecorder struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewEventRecorder() *EventRecorder { return &EventRecorder{} }

func (r *EventRecorder) EventTypes() []string { return nil }

func (r *EventRecorder) Handle(_ context.Context, ev shared.DomainEvent) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

// Of returns the recorded events of eventType in arrival order.
func (r *EventRecorder) Of(eventType string) []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []shared.DomainEvent
	for _, ev := range r.events {
		if ev.EventType() == eventType {
			out = append(out, ev)
		}
	}
	return out
}

// Types lists the type of every recorded event in arrival order.
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, ev := range r.events {
		types[i] = ev.EventType()
	}
	return types
}

func (r *EventRecorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// AwaitEvents fails t unless at least n events of eventType arrive within wait.
func AwaitEvents(t testing.TB, r *EventRecorder, eventType string, n int, wait time.Duration) []shared.DomainEvent {
	t.Helper()
	require.Eventually(t, func() bool { return len(r.Of(eventType)) >= n },
		wait, 10*time.Millisecond, "want %d %s events, saw %v", n, eventType, r.Types())
	return slices.Clip(r.Of(eventType))
}
