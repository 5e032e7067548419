package inbound

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/herald/internal/pkg/instrument"
	"github.com/shandysiswandi/herald/internal/pkg/messaging"
	"github.com/shandysiswandi/herald/internal/pkg/uid"
	"github.com/shandysiswandi/herald/internal/shared/event"
)

type MQHandler struct {
	bus  publisher
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := msg.Header(event.HeaderCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// DomainEvent decodes an externally produced event and hands it to the
// in-process subscribers. Messages that cannot be decoded are acked so the
// broker does not redeliver them forever.
func (h *MQHandler) DomainEvent(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "DomainEvent")
	defer span.End()

	name := msg.Header(event.HeaderEvent)
	body := msg.Body()
	slog.InfoContext(ctx, "consume: domain event", "event", name, "msg_id", msg.ID())

	evt, err := event.Decode(name, body)
	if err != nil {
		slog.ErrorContext(ctx, "failed to decode domain event", "event", name, "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.bus.PublishAndWait(ctx, evt); err != nil {
		slog.ErrorContext(ctx, "failed to publish domain event", "event", name, "error", err)
		return err
	}

	return nil
}
