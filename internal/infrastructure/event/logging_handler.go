package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/clinicore/backend/internal/domain/shared"
)

// LoggingHandler logs every published domain event. It subscribes as a
// wildcard handler and is meant as the default audit trail for the bus.
type LoggingHandler struct {
	logger *zap.Logger
}

// NewLoggingHandler creates a handler that logs domain events
func NewLoggingHandler(logger *zap.Logger) *LoggingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingHandler{logger: logger.Named("events")}
}

func (h *LoggingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.logger.Info("Domain event",
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventTypes returns an empty slice so the handler receives all events
func (h *LoggingHandler) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*LoggingHandler)(nil)
