package gateway

import (
	"encoding/json"
	"errors"
	"time"
)

// Server pushed events.
const (
	EventConnected       = "connected"
	EventNotificationNew = "notification:new"
	EventUnreadCount     = "unread-count"
	EventError           = "error"
)

// Client invoked operations. Replies reuse the operation name.
const (
	OpMarkRead         = "mark-read"
	OpGetUnreadCount   = "get-unread-count"
	OpGetNotifications = "get-notifications"
)

var (
	ErrSessionClosed    = errors.New("gateway: session closed")
	ErrSendBufferFull   = errors.New("gateway: send buffer full")
	ErrDuplicateSession = errors.New("gateway: session already registered")
)

// Info identifies an authenticated connection.
type Info struct {
	ID        string
	UserID    string
	UserName  string
	TenantID  string
	CreatedAt time.Time
}

// Session is one live client connection.
type Session interface {
	Info() Info
	// Send queues event without blocking.
	Send(event string, data any) error
	// Reply answers a client operation carrying ref.
	Reply(ref, event string, data any) error
	Close() error
}

// Frame is the JSON envelope used in both directions.
type Frame struct {
	Event string `json:"event"`
	Ref   string `json:"ref,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// InboundFrame is a client operation before its data is decoded.
type InboundFrame struct {
	Event string          `json:"event"`
	Ref   string          `json:"ref,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ErrorData is the payload of an error event.
type ErrorData struct {
	Message string `json:"message"`
}

// UnreadCountData is the payload of an unread-count event.
type UnreadCountData struct {
	Count int64 `json:"count"`
}

// ConnectedData is the payload of the connected event.
type ConnectedData struct {
	ConnectionID string `json:"connection_id"`
	UserID       string `json:"user_id"`
	TenantID     string `json:"tenant_id,omitempty"`
}
