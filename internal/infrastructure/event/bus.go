package event

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sheetflow/listener/internal/domain/shared"
	"github.com/sheetflow/listener/internal/infrastructure/telemetry"
)

// InMemoryEventBus implements EventBus with synchronous in-process dispatch.
// Handler failures are collected and returned to the publisher so a failed
// handler marks the originating webhook delivery as failed, matching the
// host platform's failed-job semantics.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	running  atomic.Bool
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
}

// Publish dispatches events to all registered handlers synchronously.
// All handlers run even when earlier ones fail; the combined error is
// returned.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	var errs []error

	for _, ev := range events {
		handlers := b.registry.GetHandlers(ev.EventType())

		for _, handler := range handlers {
			if err := b.dispatchToHandler(ctx, handler, ev); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.Error(err),
				)
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start starts the event bus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started")
	return nil
}

// Stop stops the event bus
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)
	b.logger.Info("event bus stopped")
	return nil
}

// dispatchToHandler dispatches an event to a handler, converting panics
// into errors
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, ev shared.DomainEvent) (err error) {
	ctx, span := telemetry.StartHandlerSpan(ctx, ev.EventType(), ev.EventID().String())
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", ev.EventType()),
				zap.Any("panic", r),
			)
			err = fmt.Errorf("handler panicked handling %s: %v", ev.EventType(), r)
		}
		telemetry.RecordError(span, err)
	}()

	return handler.Handle(ctx, ev)
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
