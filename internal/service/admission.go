package service

import (
	"context"
	"fmt"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/repository"
)

type Action string

const (
	ActionCheckAvailability Action = "check_availability"
	ActionViewCalendar      Action = "view_calendar"
	ActionManageCalendar    Action = "manage_calendar"
	ActionRequestBooking    Action = "request_booking"
	ActionDecideRequest     Action = "decide_request"
	ActionCancelRequest     Action = "cancel_request"
)

// IsPublic reports whether anonymous callers may perform the action.
func (a Action) IsPublic() bool {
	return a == ActionCheckAvailability || a == ActionViewCalendar
}

// ownershipPolicy admits actions from the item directory: calendar management
// and decisions belong to the owner or an admin, and owners cannot book their
// own items.
type ownershipPolicy struct {
	items repository.ItemRepository
}

func NewOwnershipPolicy(items repository.ItemRepository) AdmissionPolicy {
	return &ownershipPolicy{items: items}
}

func (p *ownershipPolicy) Admit(ctx context.Context, caller domain.CallerIdentity, action Action, itemID string) (*domain.Item, error) {
	if !caller.IsAuthenticated() && !action.IsPublic() {
		return nil, fmt.Errorf("%w: %s requires a caller", domain.ErrUnauthenticated, action)
	}

	item, err := p.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	switch action {
	case ActionManageCalendar, ActionDecideRequest:
		if item.OwnerID != caller.ID && !caller.IsAdmin() {
			return nil, fmt.Errorf("%w: %s on item %s", domain.ErrForbidden, action, itemID)
		}
	case ActionRequestBooking:
		if item.OwnerID == caller.ID {
			return nil, fmt.Errorf("%w: owners cannot book their own item", domain.ErrForbidden)
		}
	}
	return item, nil
}
