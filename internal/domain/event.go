package domain

import "time"

type EventType string

const (
	EventRequestCreated       EventType = "rental_request.created"
	EventRequestStatusChanged EventType = "rental_request.status_changed"
	EventRequestUpdated       EventType = "rental_request.updated"
	EventCalendarBlocked      EventType = "calendar.blocked"
	EventCalendarReleased     EventType = "calendar.released"
)

// BookingEvent is the envelope published after a state change of a request
// or a calendar. Attributes carry event-specific values as strings.
type BookingEvent struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	ItemID     string            `json:"item_id"`
	RequestID  string            `json:"request_id,omitempty"`
	BlockID    string            `json:"block_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredOn time.Time         `json:"occurred_on"`
}
