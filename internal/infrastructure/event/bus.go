// Package event delivers domain events, such as OrderPlaced, to in-process handlers.
package event

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/emedico/backend/internal/domain/shared"
	"github.com/emedico/backend/internal/infrastructure/telemetry"
)

// ErrBusStopped is returned by Publish after Stop.
var ErrBusStopped = errors.New("event bus is stopped")

type subscription struct {
	handler shared.EventHandler
	types   []string // empty means every event
}

func (s subscription) wants(eventType string) bool {
	return len(s.types) == 0 || slices.Contains(s.types, eventType)
}

// LocalBus runs handlers synchronously inside Publish, in subscription order.
// A failing or panicking handler is logged and the rest still run.
type LocalBus struct {
	log *zap.Logger

	mu      sync.RWMutex
	subs    []subscription
	stopped bool
	busy    sync.WaitGroup
}

func NewLocalBus(log *zap.Logger) *LocalBus {
	return &LocalBus{log: log}
}

func (b *LocalBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	if b.stopped {
		b.mu.RUnlock()
		return ErrBusStopped
	}
	subs := b.subs
	b.busy.Add(1)
	b.mu.RUnlock()
	defer b.busy.Done()

	for _, ev := range events {
		for _, s := range subs {
			if !s.wants(ev.EventType()) {
				continue
			}
			if err := deliver(ctx, s.handler, ev); err != nil {
				b.log.Error("Event handler failed",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.String("session_id", ev.SessionID()),
					zap.Error(err))
			}
		}
	}
	return nil
}

// Subscribe adds handler for eventTypes, defaulting to handler.EventTypes().
// A handler with no types at all receives every event.
func (b *LocalBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.mu.Lock()
	// copy on write so Publish can range over a snapshot without the lock
	b.subs = append(slices.Clip(b.subs), subscription{handler: handler, types: eventTypes})
	b.mu.Unlock()
	b.log.Debug("Event handler subscribed", zap.Strings("event_types", eventTypes))
}

func (b *LocalBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = slices.DeleteFunc(slices.Clone(b.subs), func(s subscription) bool { return s.handler == handler })
}

// Start reopens a stopped bus.
func (b *LocalBus) Start(context.Context) error {
	b.mu.Lock()
	b.stopped = false
	b.mu.Unlock()
	b.log.Info("Event bus started")
	return nil
}

// Stop rejects further events and waits for running deliveries or ctx.
func (b *LocalBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()

	idle := make(chan struct{})
	go func() {
		b.busy.Wait()
		close(idle)
	}()
	select {
	case <-idle:
		b.log.Info("Event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func deliver(ctx context.Context, handler shared.EventHandler, ev shared.DomainEvent) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "event."+ev.EventType(),
		telemetry.WithAttribute("event_id", ev.EventID().String()),
		telemetry.WithAttribute(telemetry.SpanAttrSessionID, ev.SessionID()))
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panicked: %v", r)
		}
		telemetry.RecordError(span, err)
	}()
	return handler.Handle(ctx, ev)
}

var _ shared.EventBus = (*LocalBus)(nil)
