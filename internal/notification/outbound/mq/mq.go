package mq

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/codes"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/instrument"
	"github.com/shandysiswandi/herald/internal/pkg/messaging"
	"github.com/shandysiswandi/herald/internal/shared/event"
)

// MQ announces stored notifications to other services. A nil publisher turns
// every call into a no-op.
type MQ struct {
	pub messaging.Publisher
	ins instrument.Instrumentation
}

func New(pub messaging.Publisher, ins instrument.Instrumentation) *MQ {
	return &MQ{pub: pub, ins: ins}
}

func (m *MQ) PublishNotificationCreated(ctx context.Context, n entity.Notification) error {
	if m.pub == nil {
		return nil
	}

	ctx, span := m.ins.Tracer("notification.outbound.mq").Start(ctx, "PublishNotificationCreated")
	defer span.End()

	body, err := json.Marshal(event.NotificationCreatedMessage{
		NotificationID: n.ID,
		Type:           n.Type.String(),
		Priority:       n.Priority.String(),
		RecipientID:    n.RecipientID,
		CompanyID:      n.CompanyID,
		Delivered:      n.DeliveryStatus == entity.DeliveryStatusDelivered,
		CreatedAt:      n.CreatedAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	headers := map[string]string{}
	if cID := instrument.GetCorrelationID(ctx); cID != "" {
		headers[event.HeaderCorrelationID] = cID
	}

	if err := m.pub.Publish(ctx, event.NotificationCreatedDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(n.RecipientID),
		Headers: headers,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
