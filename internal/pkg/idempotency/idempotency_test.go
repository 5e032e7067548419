package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func runContract(t *testing.T, tr Idempotency) {
	t.Helper()
	ctx := context.Background()

	// first run executes
	calls := 0
	fn := func(context.Context) error { calls++; return nil }
	if err := tr.Exec(ctx, "evt-1:u-1:ORDER_CREATED", fn); err != nil {
		t.Fatalf("first Exec() error = %v", err)
	}

	// repeat is suppressed
	err := tr.Exec(ctx, "evt-1:u-1:ORDER_CREATED", fn)
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected fn to run once, ran %d times", calls)
	}

	// a failed run releases the key
	errBoom := errors.New("boom")
	if err := tr.Exec(ctx, "evt-2", func(context.Context) error { return errBoom }); !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}
	if err := tr.Exec(ctx, "evt-2", fn); err != nil {
		t.Fatalf("retry after failure should run, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected retry to execute fn, calls = %d", calls)
	}
}

func TestMemory_Exec(t *testing.T) {
	runContract(t, NewMemory())
}

func TestMemory_CompletedExpires(t *testing.T) {
	// Arrange
	m := NewMemory()
	now := time.Now()
	m.now = func() time.Time { return now }
	ctx := context.Background()
	if err := m.Exec(ctx, "k", func(context.Context) error { return nil }, WithStateTTL(time.Minute)); err != nil {
		t.Fatalf("Exec() error = %v", err)
	}

	// Act
	now = now.Add(2 * time.Minute)
	state, err := m.Acquire(ctx, "k", time.Minute)

	// Assert
	if err != nil || state != StateNone {
		t.Fatalf("expected expired key to be acquirable, got %v %v", state, err)
	}
}

func TestMemory_InProgress(t *testing.T) {
	// Arrange
	m := NewMemory()
	ctx := context.Background()
	if _, err := m.Acquire(ctx, "k", time.Minute); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	// Act
	err := m.Exec(ctx, "k", func(context.Context) error { return nil })

	// Assert
	if !errors.Is(err, ErrAlreadyInProgress) {
		t.Fatalf("expected ErrAlreadyInProgress, got %v", err)
	}
}

func TestStateTracker_Redis(t *testing.T) {
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis connection string: %v", err)
	}
	opt, err := redis.ParseURL(uri)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	runContract(t, New(client))
}
