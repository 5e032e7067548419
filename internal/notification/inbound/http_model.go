package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/notification/usecase"
	"github.com/shandysiswandi/herald/internal/pkg/valueobject"
)

type NotificationResponse struct {
	ID             string              `json:"id"`
	Type           string              `json:"type"`
	Priority       string              `json:"priority"`
	CompanyID      string              `json:"company_id,omitempty"`
	Title          string              `json:"title"`
	Body           string              `json:"body"`
	Data           valueobject.JSONMap `json:"data" swaggertype:"object"`
	ActionURL      string              `json:"action_url,omitempty"`
	EntityType     string              `json:"entity_type,omitempty"`
	EntityID       string              `json:"entity_id,omitempty"`
	Read           bool                `json:"read"`
	ReadAt         *time.Time          `json:"read_at,omitempty"`
	DeliveryStatus string              `json:"delivery_status"`
	CreatedAt      time.Time           `json:"created_at"`
}

func toNotificationResponse(n entity.Notification) NotificationResponse {
	return NotificationResponse{
		ID:             n.ID,
		Type:           n.Type.String(),
		Priority:       n.Priority.String(),
		CompanyID:      n.CompanyID,
		Title:          n.Title,
		Body:           n.Body,
		Data:           n.Data,
		ActionURL:      n.ActionURL,
		EntityType:     n.EntityType,
		EntityID:       n.EntityID,
		Read:           n.Read,
		ReadAt:         n.ReadAt,
		DeliveryStatus: n.DeliveryStatus.String(),
		CreatedAt:      n.CreatedAt,
	}
}

func toNotificationResponses(items []entity.Notification) []NotificationResponse {
	resp := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toNotificationResponse(item))
	}
	return resp
}

type InboxResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	// meta
	nextCursor *time.Time
}

func (r InboxResponse) Meta() map[string]any {
	if r.nextCursor == nil {
		return map[string]any{"next_cursor": nil}
	}
	return map[string]any{"next_cursor": r.nextCursor.Format(time.RFC3339Nano)}
}

type NotificationDetailResponse struct {
	Notification NotificationResponse `json:"notification"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type MarkReadRequest struct {
	IDs []string `json:"ids"`
}

type MarkReadResponse struct {
	Updated     int64 `json:"updated"`
	UnreadCount int64 `json:"unread_count"`
}

func toMarkReadResponse(out *usecase.MarkReadOutput) MarkReadResponse {
	return MarkReadResponse{Updated: out.Updated, UnreadCount: out.UnreadCount}
}

type DispatchRequest struct {
	Type           string              `json:"type"`
	Priority       string              `json:"priority"`
	RecipientID    string              `json:"recipient_id"`
	RecipientIDs   []string            `json:"recipient_ids"`
	CompanyID      string              `json:"company_id"`
	Title          string              `json:"title"`
	Body           string              `json:"body"`
	Data           valueobject.JSONMap `json:"data" swaggertype:"object"`
	ActionURL      string              `json:"action_url"`
	EntityType     string              `json:"entity_type"`
	EntityID       string              `json:"entity_id"`
	SkipEmail      bool                `json:"skip_email"`
	IdempotencyKey string              `json:"idempotency_key"`
}

func (r DispatchRequest) input() usecase.DispatchInput {
	return usecase.DispatchInput{
		Type:           entity.Type(r.Type),
		Priority:       entity.Priority(r.Priority),
		RecipientID:    r.RecipientID,
		CompanyID:      r.CompanyID,
		Title:          r.Title,
		Body:           r.Body,
		Data:           r.Data,
		ActionURL:      r.ActionURL,
		EntityType:     r.EntityType,
		EntityID:       r.EntityID,
		SkipEmail:      r.SkipEmail,
		IdempotencyKey: r.IdempotencyKey,
	}
}

type DispatchFailureResponse struct {
	RecipientID string `json:"recipient_id"`
	Error       string `json:"error"`
}

type DispatchResponse struct {
	Created    []NotificationResponse    `json:"created"`
	Duplicates []string                  `json:"duplicates"`
	Failures   []DispatchFailureResponse `json:"failures"`
}

func (DispatchResponse) StatusCode() int {
	return http.StatusCreated
}

func (DispatchResponse) Message() string {
	return "Notification dispatched"
}

func toDispatchResponse(res usecase.BulkResult) DispatchResponse {
	failures := make([]DispatchFailureResponse, 0, len(res.Failures))
	for _, f := range res.Failures {
		failures = append(failures, DispatchFailureResponse{RecipientID: f.RecipientID, Error: f.Error})
	}

	duplicates := res.Duplicates
	if duplicates == nil {
		duplicates = []string{}
	}

	return DispatchResponse{
		Created:    toNotificationResponses(res.Created),
		Duplicates: duplicates,
		Failures:   failures,
	}
}
