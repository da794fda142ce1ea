package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emedico/backend/internal/domain/shared"
)

func sessionEvent(eventType, sessionID string) shared.BaseDomainEvent {
	return shared.NewBaseDomainEvent(eventType, "Order", uuid.New(), sessionID)
}

func TestEventRecorder_FiltersByType(t *testing.T) {
	r := NewEventRecorder()
	assert.Empty(t, r.EventTypes(), "recorder listens to everything")

	ctx := context.Background()
	placed := sessionEvent("OrderPlaced", "sess-1")
	require.NoError(t, r.Handle(ctx, &placed))
	cleared := sessionEvent("CartCleared", "sess-1")
	require.NoError(t, r.Handle(ctx, &cleared))

	assert.Equal(t, []string{"OrderPlaced", "CartCleared"}, r.Types())
	got := r.Of("OrderPlaced")
	require.Len(t, got, 1)
	assert.Equal(t, placed.EventID(), got[0].EventID())

	r.Reset()
	assert.Empty(t, r.Types())
}

func TestAwaitEvents(t *testing.T) {
	r := NewEventRecorder()
	go func() {
		time.Sleep(20 * time.Millisecond)
		ev := sessionEvent("OrderPlaced", "sess-2")
		_ = r.Handle(context.Background(), &ev)
	}()

	got := AwaitEvents(t, r, "OrderPlaced", 1, time.Second)
	assert.Equal(t, "sess-2", got[0].SessionID())
}
