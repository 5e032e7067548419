package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/herald/internal/pkg/config"
	"github.com/shandysiswandi/herald/internal/pkg/goroutine"
	"github.com/shandysiswandi/herald/internal/pkg/instrument"
	"github.com/shandysiswandi/herald/internal/pkg/messaging"
	"github.com/shandysiswandi/herald/internal/pkg/uid"
	"github.com/shandysiswandi/herald/internal/shared/event"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Consumer,
	uuid uid.StringID,
	bus publisher,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{bus: bus, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notification.consumer_names")

	var consumers = []struct {
		name              string
		topic             string // destination where publisher sent message
		natsConsumerName  string // for nats
		kafkaConsumerName string // for kafka
		handler           messaging.Handler
	}{
		{
			name:              event.DomainEventConsumerNotification,
			topic:             event.DomainEventDestination,
			natsConsumerName:  event.DomainEventConsumerNotification,
			kafkaConsumerName: event.DomainEventConsumerNotification,
			handler:           mqHandler.DomainEvent,
		},
	}

	concurrency := cfg.GetInt("modules.notification.consumer_concurrency")
	if concurrency <= 0 {
		concurrency = 10
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && slices.Contains(enableConsumerNames, consumer.name) {
			routine.Go(ctx, consumer.name, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithQueueGroup(consumer.natsConsumerName),
					messaging.WithGroup(consumer.kafkaConsumerName),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(concurrency),
				)
			})
		}
	}
}
