// Package goroutine runs fire-and-forget side work under a concurrency cap.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/herald/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine scales with CPU count when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// maxKeptErrors bounds how many task errors Wait reports. Older ones are
// counted, not kept; every failure is logged when it happens.
const maxKeptErrors = 32

// Manager runs functions in goroutines with a configurable concurrency limit.
// Work submitted while the manager is saturated or closed is dropped with a warning.
type Manager struct {
	mu      sync.Mutex
	errs    []error
	dropped int
	wg      sync.WaitGroup
	sema    chan struct{}
	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

// Go schedules f under name. It reports whether the task was accepted.
func (g *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) bool {
	if g == nil {
		return false
	}

	g.stateMu.RLock()
	defer g.stateMu.RUnlock()

	if g.closed {
		slog.WarnContext(ctx, "goroutine manager is closed, task dropped", "task", name)
		return false
	}

	select {
	case g.sema <- struct{}{}:
	default:
		slog.WarnContext(ctx, "maximum goroutine limit reached, task dropped", "task", name)
		return false
	}

	g.wg.Go(func() {
		defer func() {
			<-g.sema

			if rvr := recover(); rvr != nil {
				stack := debug.Stack()
				if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
					slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "because", rvr, "stack", paths)
				} else {
					slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "because", rvr, "stack", string(stack))
				}
			}
		}()

		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "goroutine canceled before start", "task", name, "because", err)
			return
		}

		if err := f(ctx); err != nil {
			slog.ErrorContext(ctx, "goroutine task failed", "task", name, "error", err)
			g.keep(err)
		}
	})

	return true
}

func (g *Manager) keep(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.errs) < maxKeptErrors {
		g.errs = append(g.errs, err)
		return
	}
	copy(g.errs, g.errs[1:])
	g.errs[len(g.errs)-1] = err
	g.dropped++
}

// Wait closes the manager, blocks until running tasks finish and returns their joined errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.dropped > 0 {
		return errors.Join(append([]error{fmt.Errorf("goroutine: %d earlier task errors not kept", g.dropped)}, g.errs...)...)
	}
	return errors.Join(g.errs...)
}
