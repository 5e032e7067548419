// Package eventbus is the in-process publish/subscribe registry that decouples
// event producers from the handlers that fan them out.
//
// Subscribers registered for a name run one after another, in registration
// order, inside a single supervised goroutine per publish. A failing or
// panicking subscriber is logged once and never affects its siblings or the
// publisher. Separate publishes run concurrently.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	"github.com/shandysiswandi/herald/internal/pkg/instrument"
	"github.com/shandysiswandi/herald/internal/pkg/stacktrace"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("eventbus: closed")

// Event is anything that knows its own name.
type Event interface {
	EventName() string
}

// Handler consumes one published event.
type Handler func(ctx context.Context, evt Event) error

// Bus is the process-wide subscriber registry.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler

	// life orders wg.Add against the closed flag so Close never waits while
	// a publish is still being admitted.
	life   sync.Mutex
	wg     sync.WaitGroup
	closed atomic.Bool

	published metric.Int64Counter
	failures  metric.Int64Counter
}

// New builds an empty bus. meter may be nil.
func New(meter metric.Meter) *Bus {
	b := &Bus{handlers: make(map[string][]Handler)}
	if meter == nil {
		meter = instrument.NewNoop().Meter("eventbus")
	}

	//nolint:errcheck // instrument creation on a valid meter does not fail in practice
	b.published, _ = meter.Int64Counter("eventbus.published")
	//nolint:errcheck // instrument creation on a valid meter does not fail in practice
	b.failures, _ = meter.Int64Counter("eventbus.handler_failures")

	return b
}

// Subscribe appends h to the handlers for name.
func (b *Bus) Subscribe(name string, h Handler) {
	if h == nil {
		return
	}

	b.mu.Lock()
	b.handlers[name] = append(b.handlers[name], h)
	b.mu.Unlock()
}

// On registers a typed handler. Events whose dynamic type is not T are logged
// and skipped.
func On[T Event](b *Bus, name string, fn func(ctx context.Context, evt T) error) {
	b.Subscribe(name, func(ctx context.Context, evt Event) error {
		typed, ok := evt.(T)
		if !ok {
			return fmt.Errorf("eventbus: %s carries %T", name, evt)
		}
		return fn(ctx, typed)
	})
}

// Subscribers reports how many handlers are registered for name.
func (b *Bus) Subscribers(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[name])
}

// Publish schedules delivery of evt and returns without waiting for handlers.
func (b *Bus) Publish(ctx context.Context, evt Event) error {
	handlers, err := b.prepare(ctx, evt)
	if err != nil {
		return err
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		defer b.wg.Done()
		b.run(detached, evt, handlers)
	}()

	return nil
}

// PublishAndWait delivers evt and returns once every handler has finished.
// Handler failures are still logged and swallowed.
func (b *Bus) PublishAndWait(ctx context.Context, evt Event) error {
	handlers, err := b.prepare(ctx, evt)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	detached := context.WithoutCancel(ctx)
	go func() {
		defer b.wg.Done()
		defer close(done)
		b.run(detached, evt, handlers)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// prepare admits one delivery. On success the caller owns a wg slot and must
// release it with wg.Done.
func (b *Bus) prepare(ctx context.Context, evt Event) ([]Handler, error) {
	if evt == nil {
		return nil, errors.New("eventbus: nil event")
	}

	b.life.Lock()
	defer b.life.Unlock()
	if b.closed.Load() {
		return nil, ErrClosed
	}
	b.wg.Add(1)

	name := evt.EventName()
	b.published.Add(ctx, 1, metric.WithAttributes(attribute.String("event", name)))

	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[name]))
	copy(handlers, b.handlers[name])
	b.mu.RUnlock()

	return handlers, nil
}

func (b *Bus) run(ctx context.Context, evt Event, handlers []Handler) {
	for i, h := range handlers {
		err := b.call(ctx, evt, h)
		if err == nil {
			continue
		}

		b.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("event", evt.EventName())))
		attrs := []any{"event", evt.EventName(), "handler_index", i, "error", err}
		var pe *panicError
		if errors.As(err, &pe) && len(pe.stack) > 0 {
			attrs = append(attrs, "stack", pe.stack)
		}
		slog.ErrorContext(ctx, "event handler failed", attrs...)
	}
}

type panicError struct {
	value any
	stack []string
}

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.value) }

func (b *Bus) call(ctx context.Context, evt Event, h Handler) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			err = &panicError{value: rvr, stack: stacktrace.InternalPaths(debug.Stack())}
		}
	}()

	return h(ctx, evt)
}

// Close rejects new publishes and waits for in-flight deliveries or ctx.
func (b *Bus) Close(ctx context.Context) error {
	b.life.Lock()
	b.closed.Store(true)
	b.life.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
