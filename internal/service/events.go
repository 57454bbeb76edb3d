package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/logger"
)

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.BookingEvent) error { return nil }

// eventEmitter publishes best-effort: a failed publish is logged, never
// returned to the caller.
type eventEmitter struct {
	publisher EventPublisher
	now       func() time.Time
}

func newEventEmitter(p EventPublisher) *eventEmitter {
	if p == nil {
		p = NopPublisher{}
	}
	return &eventEmitter{publisher: p, now: time.Now}
}

func (e *eventEmitter) emit(ctx context.Context, typ domain.EventType, itemID, requestID, blockID string, attrs map[string]string) {
	event := domain.BookingEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		ItemID:     itemID,
		RequestID:  requestID,
		BlockID:    blockID,
		Attributes: attrs,
		OccurredOn: e.now().UTC(),
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "Publishing booking event failed", "type", typ, "item_id", itemID, "error", err)
	}
}
