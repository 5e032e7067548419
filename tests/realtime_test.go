//go:build e2e

package tests

import (
	"bufio"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type frame struct {
	Event string         `json:"event"`
	Ref   string         `json:"ref,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

func wsURL(t *testing.T, tok string) string {
	t.Helper()

	u, err := url.Parse(baseURL() + "/ws/notifications")
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	if tok != "" {
		u.RawQuery = url.Values{"token": {tok}}.Encode()
	}
	return u.String()
}

func readFrame(t *testing.T, conn *websocket.Conn, event string) frame {
	t.Helper()

	//nolint:errcheck // deadline on an open conn
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read %s frame: %v", event, err)
		}
		if f.Event == event {
			return f
		}
	}
}

func TestRealtime_MultiDeviceReceivesPush(t *testing.T) {
	// Arrange
	userID, tok := newUser(t)
	c1, _, err := websocket.DefaultDialer.Dial(wsURL(t, tok), nil)
	if err != nil {
		t.Fatalf("dial c1: %v", err)
	}
	defer c1.Close()
	c2, _, err := websocket.DefaultDialer.Dial(wsURL(t, tok), nil)
	if err != nil {
		t.Fatalf("dial c2: %v", err)
	}
	defer c2.Close()
	readFrame(t, c1, "connected")
	readFrame(t, c2, "connected")

	// Act
	created := dispatchTo(t, userID, "Realtime check")

	// Assert
	for _, c := range []*websocket.Conn{c1, c2} {
		n := readFrame(t, c, "notification:new")
		if n.Data["id"] != created.ID {
			t.Fatalf("pushed = %v, want %s", n.Data, created.ID)
		}
		readFrame(t, c, "unread-count")
	}

	if err := c1.WriteJSON(frame{Event: "mark-read", Ref: "r1", Data: map[string]any{"id": created.ID}}); err != nil {
		t.Fatalf("write mark-read: %v", err)
	}
	count := readFrame(t, c2, "unread-count")
	if count.Data["count"] != float64(0) {
		t.Fatalf("c2 unread count = %v, want 0", count.Data)
	}
}

func TestRealtime_RejectsMissingToken(t *testing.T) {
	// Arrange
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(t, ""), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Act
	f := readFrame(t, conn, "error")

	// Assert
	if f.Data["message"] != "Authentication required" {
		t.Fatalf("error frame = %v", f.Data)
	}
}

func TestRealtime_SSEStreamStarts(t *testing.T) {
	// Arrange
	_, tok := newUser(t)
	req, err := http.NewRequest(http.MethodGet, baseURL()+"/api/v1/notification/stream", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	// Act
	resp, err := (&http.Client{Timeout: 5 * time.Second}).Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	// Assert
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type = %q", ct)
	}
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil {
		t.Fatalf("read first line: %v", err)
	}
	if line != "event: connected\n" {
		t.Fatalf("first line = %q", line)
	}
}
