package mq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/instrument"
	"github.com/shandysiswandi/herald/internal/pkg/messaging"
	"github.com/shandysiswandi/herald/internal/shared/event"
)

type fakePublisher struct {
	destination string
	msg         messaging.OutgoingMessage
}

func (f *fakePublisher) Publish(_ context.Context, destination string, msg messaging.OutgoingMessage) error {
	f.destination = destination
	f.msg = msg
	return nil
}

func TestMQ_PublishNotificationCreated(t *testing.T) {
	// Arrange
	pub := &fakePublisher{}
	m := New(pub, instrument.NewNoop())
	ctx := instrument.SetCorrelationID(context.Background(), "corr-1")
	n := entity.Notification{
		ID:             "n1",
		Type:           entity.TypeOrderCreated,
		Priority:       entity.PriorityHigh,
		RecipientID:    "u1",
		CompanyID:      "c1",
		DeliveryStatus: entity.DeliveryStatusDelivered,
		CreatedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	// Act
	err := m.PublishNotificationCreated(ctx, n)

	// Assert
	if err != nil {
		t.Fatalf("PublishNotificationCreated() error = %v", err)
	}
	if pub.destination != event.NotificationCreatedDestination {
		t.Fatalf("destination = %q", pub.destination)
	}
	if pub.msg.Headers[event.HeaderCorrelationID] != "corr-1" {
		t.Fatalf("headers = %v", pub.msg.Headers)
	}
	var got event.NotificationCreatedMessage
	if err := json.Unmarshal(pub.msg.Body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.NotificationID != "n1" || got.Type != "ORDER_CREATED" || !got.Delivered || string(pub.msg.Key) != "u1" {
		t.Fatalf("message = %+v key = %q", got, pub.msg.Key)
	}
}

func TestMQ_NilPublisherIsNoop(t *testing.T) {
	// Arrange
	m := New(nil, instrument.NewNoop())

	// Act
	err := m.PublishNotificationCreated(context.Background(), entity.Notification{ID: "n1"})

	// Assert
	if err != nil {
		t.Fatalf("PublishNotificationCreated() error = %v", err)
	}
}
