// Package worker wires event subscribers onto the in-process dispatcher.
package worker

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/npdi-tracker/internal/events"
	"github.com/spec-kit/npdi-tracker/internal/queue"
	"github.com/spec-kit/npdi-tracker/internal/service"
)

// RegisterNotificationHandlers subscribes the chat webhook to the events it
// announces.
func RegisterNotificationHandlers(dispatcher events.Dispatcher, notifications *service.NotificationService) {
	dispatcher.Subscribe(events.EventTicketCreated, notifications.HandleTicketCreated)
	dispatcher.Subscribe(events.EventTicketStatusChanged, notifications.HandleStatusChanged)
}

// RegisterQueueMirror subscribes a handler that republishes every domain
// event onto the durable broker queue. Publish failures are logged and
// dropped; the mirror must never fail the originating write.
func RegisterQueueMirror(dispatcher events.Dispatcher, publisher queue.Publisher, logger *zap.Logger) {
	if publisher == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, event events.Event) error {
		body, err := json.Marshal(event)
		if err != nil {
			logger.Warn("event mirror marshal failed", zap.String("type", string(event.Type)), zap.Error(err))
			return nil
		}
		if err := publisher.Publish(ctx, queue.QueueTicketEvents, body); err != nil {
			logger.Warn("event mirror publish failed",
				zap.String("type", string(event.Type)),
				zap.String("ticketNumber", event.TicketNumber),
				zap.Error(err))
		}
		return nil
	}
	for _, eventType := range events.AllEventTypes() {
		dispatcher.Subscribe(eventType, handler)
	}
}
