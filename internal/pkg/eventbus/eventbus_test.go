package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// countingHandler counts records per level.
type countingHandler struct {
	mu     sync.Mutex
	errors int
	stack  bool
}

func (h *countingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *countingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r.Level == slog.LevelError {
		h.errors++
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == "stack" {
				h.stack = true
			}
			return true
		})
	}
	return nil
}

func (h *countingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *countingHandler) WithGroup(string) slog.Handler      { return h }

type testEvent struct {
	name string
	n    int
}

func (e testEvent) EventName() string { return e.name }

func TestBus_RunsHandlersInOrderDespiteFailures(t *testing.T) {
	// Arrange
	bus := New(nil)
	var mu sync.Mutex
	var calls []string
	record := func(s string) {
		mu.Lock()
		calls = append(calls, s)
		mu.Unlock()
	}

	bus.Subscribe("order:created", func(context.Context, Event) error {
		record("first")
		return errors.New("boom")
	})
	bus.Subscribe("order:created", func(context.Context, Event) error {
		record("second")
		panic("worse")
	})
	On(bus, "order:created", func(_ context.Context, evt testEvent) error {
		record("third")
		return nil
	})

	// Act
	err := bus.PublishAndWait(context.Background(), testEvent{name: "order:created"})

	// Assert
	if err != nil {
		t.Fatalf("PublishAndWait() error = %v", err)
	}
	if len(calls) != 3 || calls[0] != "first" || calls[1] != "second" || calls[2] != "third" {
		t.Fatalf("unexpected call order %v", calls)
	}
}

func TestBus_PublishDoesNotWait(t *testing.T) {
	// Arrange
	bus := New(nil)
	release := make(chan struct{})
	done := make(chan int, 1)
	On(bus, "payment:overdue", func(_ context.Context, evt testEvent) error {
		<-release
		done <- evt.n
		return nil
	})

	// Act
	err := bus.Publish(context.Background(), testEvent{name: "payment:overdue", n: 7})

	// Assert
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	select {
	case <-done:
		t.Fatalf("handler completed before release")
	default:
	}
	close(release)
	select {
	case n := <-done:
		if n != 7 {
			t.Fatalf("expected payload 7, got %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("handler never ran")
	}
}

func TestBus_PublishSurvivesCanceledContext(t *testing.T) {
	// Arrange
	bus := New(nil)
	done := make(chan struct{})
	bus.Subscribe("x", func(ctx context.Context, _ Event) error {
		if ctx.Err() != nil {
			t.Errorf("handler received canceled context")
		}
		close(done)
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())

	// Act
	_ = bus.Publish(ctx, testEvent{name: "x"})
	cancel()

	// Assert
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("handler never ran")
	}
}

func TestBus_CloseDrainsAndRejects(t *testing.T) {
	// Arrange
	bus := New(nil)
	var ran bool
	var mu sync.Mutex
	bus.Subscribe("x", func(context.Context, Event) error {
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		ran = true
		mu.Unlock()
		return nil
	})
	_ = bus.Publish(context.Background(), testEvent{name: "x"})

	// Act
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := bus.Close(ctx)
	errAfter := bus.Publish(context.Background(), testEvent{name: "x"})

	// Assert
	if err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if !ran {
		t.Fatalf("in-flight handler was not drained")
	}
	if !errors.Is(errAfter, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", errAfter)
	}
}

func TestBus_NoSubscribers(t *testing.T) {
	// Arrange
	bus := New(nil)

	// Act
	err := bus.PublishAndWait(context.Background(), testEvent{name: "nobody"})

	// Assert
	if err != nil || bus.Subscribers("nobody") != 0 {
		t.Fatalf("unexpected result err=%v subs=%d", err, bus.Subscribers("nobody"))
	}
}

func TestBus_PanicIsLoggedOnce(t *testing.T) {
	// Arrange
	logs := &countingHandler{}
	prev := slog.Default()
	slog.SetDefault(slog.New(logs))
	defer slog.SetDefault(prev)

	bus := New(nil)
	bus.Subscribe("ticket:created", func(context.Context, Event) error {
		panic("nil map")
	})

	// Act
	err := bus.PublishAndWait(context.Background(), testEvent{name: "ticket:created"})

	// Assert
	if err != nil {
		t.Fatalf("PublishAndWait() error = %v", err)
	}
	logs.mu.Lock()
	defer logs.mu.Unlock()
	if logs.errors != 1 {
		t.Fatalf("error records = %d, want 1", logs.errors)
	}
	if !logs.stack {
		t.Fatalf("panic record carries no stack")
	}
}

func TestBus_PublishRacingClose(t *testing.T) {
	// Arrange
	bus := New(nil)
	var handled atomic.Int64
	bus.Subscribe("x", func(context.Context, Event) error {
		handled.Add(1)
		return nil
	})

	var accepted atomic.Int64
	var wg sync.WaitGroup
	start := make(chan struct{})
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if err := bus.Publish(context.Background(), testEvent{name: "x"}); err == nil {
				accepted.Add(1)
			} else if !errors.Is(err, ErrClosed) {
				t.Errorf("Publish() error = %v", err)
			}
		}()
	}

	// Act
	close(start)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := bus.Close(ctx)
	wg.Wait()

	// Assert
	if err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if handled.Load() != accepted.Load() {
		t.Fatalf("handled = %d, accepted = %d", handled.Load(), accepted.Load())
	}
}
