package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/herald/internal/pkg/stacktrace"
)

func callHandlerWithRecover(ctx context.Context, driver string, fn func() error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", paths)
			} else {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", string(stack))
			}
			err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
		}
	}()

	return fn()
}

// dispatch runs handler for msg and applies auto-ack unless the handler
// already acked or nacked.
func dispatch(ctx context.Context, driver string, handler Handler, msg Message, responded func() bool, autoAck bool) error {
	herr := callHandlerWithRecover(ctx, driver, func() error { return handler(ctx, msg) })
	if !autoAck || responded() {
		return nil
	}
	if herr != nil {
		return msg.Nack(ctx)
	}
	return msg.Ack(ctx)
}
