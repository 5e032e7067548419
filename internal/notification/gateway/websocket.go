package gateway

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxInboundSize = 64 << 10
)

// WebSocket is a bidirectional session. All writes go through one pump
// goroutine; Send only enqueues.
type WebSocket struct {
	info Info
	conn *websocket.Conn
	out  chan []byte
	done chan struct{}
	once sync.Once
	ping time.Duration
}

// NewWebSocket wraps an upgraded connection. Call WritePump and ReadLoop in
// their own goroutines.
func NewWebSocket(conn *websocket.Conn, info Info, buffer int, ping time.Duration) *WebSocket {
	if buffer < 1 {
		buffer = 1
	}
	if ping <= 0 {
		ping = 25 * time.Second
	}
	return &WebSocket{
		info: info,
		conn: conn,
		out:  make(chan []byte, buffer),
		done: make(chan struct{}),
		ping: ping,
	}
}

func (w *WebSocket) Info() Info { return w.info }

func (w *WebSocket) Send(event string, data any) error {
	return w.enqueue(Frame{Event: event, Data: data})
}

func (w *WebSocket) Reply(ref, event string, data any) error {
	return w.enqueue(Frame{Event: event, Ref: ref, Data: data})
}

func (w *WebSocket) enqueue(f Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}

	select {
	case <-w.done:
		return ErrSessionClosed
	default:
	}

	select {
	case w.out <- b:
		return nil
	case <-w.done:
		return ErrSessionClosed
	default:
		return ErrSendBufferFull
	}
}

// Done is closed once the session is closed.
func (w *WebSocket) Done() <-chan struct{} { return w.done }

// WritePump drains queued frames and keeps the connection alive with pings.
func (w *WebSocket) WritePump() {
	ticker := time.NewTicker(w.ping)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case b := <-w.out:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				_ = w.Close()
				return
			}
		case <-ticker.C:
			if err := w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = w.Close()
				return
			}
		}
	}
}

// ReadLoop decodes client frames until the connection fails or closes.
// Malformed frames are reported through handle with an empty Event.
func (w *WebSocket) ReadLoop(handle func(InboundFrame)) error {
	pongWait := 2 * w.ping
	w.conn.SetReadLimit(maxInboundSize)
	_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := w.conn.ReadMessage()
		if err != nil {
			return err
		}

		var f InboundFrame
		if err := json.Unmarshal(payload, &f); err != nil {
			f = InboundFrame{}
		}
		handle(f)
	}
}

// Close sends a normal close frame and releases the connection.
func (w *WebSocket) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		err = w.conn.Close()
	})
	return err
}

// Reject answers a failed handshake on an upgraded connection with an error
// event and closes it. The connection is never registered.
func Reject(conn *websocket.Conn, message string) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteJSON(Frame{Event: EventError, Data: ErrorData{Message: message}})
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, message)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = conn.Close()
}
