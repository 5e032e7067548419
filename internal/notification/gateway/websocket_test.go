package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialPair(t *testing.T, serve func(*websocket.Conn)) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serve(conn)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestWebSocket_SendAndReply(t *testing.T) {
	// Arrange
	client := dialPair(t, func(conn *websocket.Conn) {
		ws := NewWebSocket(conn, Info{ID: "c1", UserID: "u1"}, 4, time.Minute)
		go ws.WritePump()
		_ = ws.ReadLoop(func(f InboundFrame) {
			_ = ws.Reply(f.Ref, f.Event, UnreadCountData{Count: 7})
		})
		_ = ws.Close()
	})

	// Act
	if err := client.WriteJSON(InboundFrame{Event: OpGetUnreadCount, Ref: "r1"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	var got struct {
		Event string          `json:"event"`
		Ref   string          `json:"ref"`
		Data  UnreadCountData `json:"data"`
	}
	_ = client.SetReadDeadline(time.Now().Add(5 * time.Second))
	err := client.ReadJSON(&got)

	// Assert
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.Event != OpGetUnreadCount || got.Ref != "r1" || got.Data.Count != 7 {
		t.Fatalf("unexpected reply %+v", got)
	}
}

func TestWebSocket_SendAfterCloseFails(t *testing.T) {
	// Arrange
	done := make(chan error, 1)
	dialPair(t, func(conn *websocket.Conn) {
		ws := NewWebSocket(conn, Info{ID: "c1"}, 1, time.Minute)
		_ = ws.Close()
		done <- ws.Send(EventUnreadCount, nil)
	})

	// Assert
	select {
	case err := <-done:
		if err != ErrSessionClosed {
			t.Fatalf("Send() error = %v, want %v", err, ErrSessionClosed)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server handler did not run")
	}
}

func TestWebSocket_SendBufferFull(t *testing.T) {
	// Arrange
	done := make(chan error, 1)
	dialPair(t, func(conn *websocket.Conn) {
		ws := NewWebSocket(conn, Info{ID: "c1"}, 1, time.Minute)
		_ = ws.Send(EventUnreadCount, nil)
		done <- ws.Send(EventUnreadCount, nil)
		_ = ws.Close()
	})

	// Assert
	select {
	case err := <-done:
		if err != ErrSendBufferFull {
			t.Fatalf("Send() error = %v, want %v", err, ErrSendBufferFull)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server handler did not run")
	}
}

func TestReject_SendsErrorAndCloses(t *testing.T) {
	// Arrange
	client := dialPair(t, func(conn *websocket.Conn) {
		Reject(conn, "unauthorized")
	})

	// Act
	var got struct {
		Event string    `json:"event"`
		Data  ErrorData `json:"data"`
	}
	_ = client.SetReadDeadline(time.Now().Add(5 * time.Second))
	err := client.ReadJSON(&got)

	// Assert
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.Event != EventError || got.Data.Message != "unauthorized" {
		t.Fatalf("unexpected frame %+v", got)
	}
	if _, _, err := client.ReadMessage(); !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}
