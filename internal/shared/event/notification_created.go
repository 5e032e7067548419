package event

import "time"

const NotificationCreatedDestination string = "notification_created"

// NotificationCreatedMessage is published after a notification row is stored.
type NotificationCreatedMessage struct {
	NotificationID string    `json:"notification_id"`
	Type           string    `json:"type"`
	Priority       string    `json:"priority"`
	RecipientID    string    `json:"recipient_id"`
	CompanyID      string    `json:"company_id,omitempty"`
	Delivered      bool      `json:"delivered"`
	CreatedAt      time.Time `json:"created_at"`
}
