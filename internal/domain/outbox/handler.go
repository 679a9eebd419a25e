package outbox

import (
	"context"

	"hydrostock/pkg/logger"
)

// LogHandler delivers messages to the structured log. Downstream transports
// (mail, chat, websocket) consume from there.
type LogHandler struct {
	log *logger.Logger
}

// NewLogHandler creates a handler writing through log.
func NewLogHandler(log *logger.Logger) *LogHandler {
	return &LogHandler{log: log.WithComponent("outbox")}
}

// Handle implements Handler.
func (h *LogHandler) Handle(ctx context.Context, msg *Message) error {
	h.log.WithContext(ctx).Infow("outbox event",
		"message_id", msg.ID,
		"event_type", msg.EventType,
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID,
		"retry_count", msg.RetryCount,
		"payload", string(msg.Payload),
	)
	return nil
}
