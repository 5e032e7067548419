package inbound

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shandysiswandi/herald/internal/notification/gateway"
	"github.com/shandysiswandi/herald/internal/pkg/clock"
	"github.com/shandysiswandi/herald/internal/pkg/instrument"
	"github.com/shandysiswandi/herald/internal/pkg/jwt"
)

type wireFrame struct {
	Event string         `json:"event"`
	Ref   string         `json:"ref"`
	Data  map[string]any `json:"data"`
}

func newRealtimeServer(t *testing.T, fake *fakeUsecase, limiter *gateway.ConnectLimiter, handler func(*RealtimeEndpoint) http.HandlerFunc) *httptest.Server {
	t.Helper()

	end := newRealtimeEndpoint(fake, RealtimeConfig{
		Limiter:    limiter,
		SendBuffer: 8,
		Ping:       time.Minute,
		UUID:       &seqID{},
		Clock:      clock.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		Instrument: instrument.NewNoop(),
	})
	srv := httptest.NewServer(handler(end))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + query
}

func readFrame(t *testing.T, conn *websocket.Conn) wireFrame {
	t.Helper()
	var f wireFrame
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return f
}

func TestRealtimeEndpoint_WebSocketRejectsBadToken(t *testing.T) {
	// Arrange
	fake := &fakeUsecase{tokens: map[string]jwt.Claims{}}
	srv := newRealtimeServer(t, fake, nil, func(e *RealtimeEndpoint) http.HandlerFunc { return e.WebSocket })

	// Act
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "?token=nope"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	first := readFrame(t, conn)
	_, _, closeErr := conn.ReadMessage()

	// Assert
	if first.Event != gateway.EventError {
		t.Fatalf("first frame = %+v, want error", first)
	}
	if !websocket.IsCloseError(closeErr, websocket.ClosePolicyViolation) {
		t.Fatalf("close error = %v, want policy violation", closeErr)
	}
	if fake.connectedCount() != 0 {
		t.Fatalf("rejected handshake was connected")
	}
}

func TestRealtimeEndpoint_WebSocketRateLimited(t *testing.T) {
	// Arrange
	fake := &fakeUsecase{tokens: map[string]jwt.Claims{"good": {Identity: jwt.Identity{UserID: "u1"}}}}
	limiter := gateway.NewConnectLimiter(0.0001, 1)
	srv := newRealtimeServer(t, fake, limiter, func(e *RealtimeEndpoint) http.HandlerFunc { return e.WebSocket })
	header := http.Header{"Authorization": {"Bearer good"}}

	// Act
	first, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), header)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer first.Close()
	greeting := readFrame(t, first)

	second, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), header)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer second.Close()
	refused := readFrame(t, second)

	// Assert
	if greeting.Event != gateway.EventConnected {
		t.Fatalf("greeting = %+v", greeting)
	}
	if refused.Event != gateway.EventError {
		t.Fatalf("second frame = %+v, want error", refused)
	}
}

func TestRealtimeEndpoint_WebSocketServesClientOps(t *testing.T) {
	// Arrange
	fake := &fakeUsecase{tokens: map[string]jwt.Claims{
		"good": {Identity: jwt.Identity{UserID: "u1", CompanyID: "c1"}},
	}}
	srv := newRealtimeServer(t, fake, nil, func(e *RealtimeEndpoint) http.HandlerFunc { return e.WebSocket })

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "?token=good"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	greeting := readFrame(t, conn)

	// Act
	if err := conn.WriteJSON(gateway.InboundFrame{Event: gateway.OpGetUnreadCount, Ref: "r1"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	reply := readFrame(t, conn)
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	// Assert
	if greeting.Event != gateway.EventConnected || greeting.Data["user_id"] != "u1" {
		t.Fatalf("greeting = %+v", greeting)
	}
	if reply.Event != gateway.OpGetUnreadCount || reply.Ref != "r1" || reply.Data["count"] != float64(3) {
		t.Fatalf("reply = %+v", reply)
	}
	deadline := time.Now().Add(5 * time.Second)
	for fake.disconnectedCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if fake.disconnectedCount() != 1 {
		t.Fatalf("session was not disconnected")
	}
	if fake.connected[0].TenantID != "c1" {
		t.Fatalf("tenant = %q", fake.connected[0].TenantID)
	}
}

func TestRealtimeEndpoint_StreamNotifications(t *testing.T) {
	// Arrange
	fake := &fakeUsecase{}
	srv := newRealtimeServer(t, fake, nil, func(e *RealtimeEndpoint) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx := jwt.SetAuth(r.Context(), jwt.Claims{Identity: jwt.Identity{UserID: "u1"}})
			e.StreamNotifications(w, r.WithContext(ctx))
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)

	// Act
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()
	reader := bufio.NewReader(resp.Body)
	eventLine, _ := reader.ReadString('\n')
	dataLine, _ := reader.ReadString('\n')

	// Assert
	if resp.Header.Get("Content-Type") != "text/event-stream" {
		t.Fatalf("content type = %q", resp.Header.Get("Content-Type"))
	}
	if eventLine != "event: connected\n" {
		t.Fatalf("event line = %q", eventLine)
	}
	if !strings.Contains(dataLine, `"user_id":"u1"`) {
		t.Fatalf("data line = %q", dataLine)
	}
}

func TestRealtimeEndpoint_StreamRequiresAuth(t *testing.T) {
	// Arrange
	srv := newRealtimeServer(t, &fakeUsecase{}, nil, func(e *RealtimeEndpoint) http.HandlerFunc { return e.StreamNotifications })

	// Act
	resp, err := http.Get(srv.URL)

	// Assert
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}
