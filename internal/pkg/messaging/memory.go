package messaging

import (
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Memory is an in-process broker. Each Consume call with the same group
// shares deliveries; distinct groups each receive every message.
type Memory struct {
	mu     sync.RWMutex
	subs   map[string]map[string]chan *memoryMessage
	seq    atomic.Int64
	closed bool
}

// NewMemory returns an empty in-process broker.
func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[string]chan *memoryMessage)}
}

// Publish fans msg out to one channel per group subscribed to destination.
// It blocks while a group's buffer is full.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) error {
	if destination == "" {
		return ErrDestinationRequired
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return io.ErrClosedPipe
	}

	for _, ch := range m.subs[destination] {
		mm := &memoryMessage{
			id:      strconv.FormatInt(m.seq.Inc(), 10),
			source:  destination,
			out:     msg,
			created: time.Now(),
		}
		select {
		case ch <- mm:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Consume blocks until ctx is done.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	group := co.group
	if group == "" {
		group = co.queueGroup
	}

	ch := m.channel(source, group)
	if ch == nil {
		return io.ErrClosedPipe
	}

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case mm := <-ch:
					//nolint:errcheck // in-process acks cannot fail
					_ = dispatch(ctx, DriverMemory, handler, mm, mm.responded.Load, co.autoAck)
				}
			}
		})
	}

	wg.Wait()
	return ctx.Err()
}

func (m *Memory) channel(source, group string) chan *memoryMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	groups, ok := m.subs[source]
	if !ok {
		groups = make(map[string]chan *memoryMessage)
		m.subs[source] = groups
	}
	ch, ok := groups[group]
	if !ok {
		ch = make(chan *memoryMessage, 256)
		groups[group] = ch
	}
	return ch
}

// Close rejects further publishes.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

type memoryMessage struct {
	id        string
	source    string
	out       OutgoingMessage
	created   time.Time
	responded atomic.Bool
}

func (mm *memoryMessage) Body() []byte             { return mm.out.Body }
func (mm *memoryMessage) Key() []byte              { return mm.out.Key }
func (mm *memoryMessage) Header(key string) string { return mm.out.Headers[key] }
func (mm *memoryMessage) ID() string               { return mm.id }
func (mm *memoryMessage) Source() string           { return mm.source }
func (mm *memoryMessage) Timestamp() time.Time     { return mm.created }

func (mm *memoryMessage) Headers() map[string]string {
	out := make(map[string]string, len(mm.out.Headers))
	for k, v := range mm.out.Headers {
		out[k] = v
	}
	return out
}

func (mm *memoryMessage) Ack(context.Context) error {
	mm.responded.Store(true)
	return nil
}

func (mm *memoryMessage) Nack(context.Context) error {
	mm.responded.Store(true)
	return nil
}
