package entity

import (
	"time"

	"github.com/shandysiswandi/herald/internal/pkg/valueobject"
)

// Notification is one recipient's copy of a dispatched notification. Only the
// read and delivery fields change after creation.
type Notification struct {
	ID             string              `json:"id"`
	Type           Type                `json:"type"`
	Priority       Priority            `json:"priority"`
	RecipientID    string              `json:"recipient_id"`
	CompanyID      string              `json:"company_id,omitempty"`
	Title          string              `json:"title"`
	Body           string              `json:"body"`
	Data           valueobject.JSONMap `json:"data"`
	ActionURL      string              `json:"action_url,omitempty"`
	EntityType     string              `json:"entity_type,omitempty"`
	EntityID       string              `json:"entity_id,omitempty"`
	Read           bool                `json:"read"`
	ReadAt         *time.Time          `json:"read_at,omitempty"`
	DeliveryStatus DeliveryStatus      `json:"delivery_status"`
	DeliveredAt    *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

// CreateNotification is the row inserted by the dispatcher. created_at is
// assigned by the database.
type CreateNotification struct {
	ID          string
	Type        Type
	Priority    Priority
	RecipientID string
	CompanyID   string
	Title       string
	Body        string
	Data        valueobject.JSONMap
	ActionURL   string
	EntityType  string
	EntityID    string
}

// Filter scopes notification queries to a recipient and optionally a tenant.
type Filter struct {
	RecipientID string
	CompanyID   string
	UnreadOnly  bool
	Type        Type
	IDs         []string
}

// Page is one slice of a feed ordered by created_at descending.
type Page struct {
	Items      []Notification
	NextCursor *time.Time
}

// UserContact is what the email and SMS channels need about a recipient.
type UserContact struct {
	UserID string
	Name   string
	Email  string
	Phone  string
}
