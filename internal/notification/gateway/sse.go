package gateway

import (
	"sync"
)

// SSE is a push-only session backed by a server-sent event stream. The HTTP
// handler drains Frames and writes them to the response.
type SSE struct {
	info Info
	out  chan Frame
	done chan struct{}
	once sync.Once
}

func NewSSE(info Info, buffer int) *SSE {
	if buffer < 1 {
		buffer = 1
	}
	return &SSE{info: info, out: make(chan Frame, buffer), done: make(chan struct{})}
}

func (s *SSE) Info() Info { return s.info }

func (s *SSE) Send(event string, data any) error {
	return s.enqueue(Frame{Event: event, Data: data})
}

func (s *SSE) Reply(ref, event string, data any) error {
	return s.enqueue(Frame{Event: event, Ref: ref, Data: data})
}

func (s *SSE) enqueue(f Frame) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	select {
	case s.out <- f:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		return ErrSendBufferFull
	}
}

func (s *SSE) Frames() <-chan Frame { return s.out }

func (s *SSE) Done() <-chan struct{} { return s.done }

func (s *SSE) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}
