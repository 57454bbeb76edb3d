package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/repository"
)

type rentalRequestLedger struct {
	requests     repository.RentalRequestRepository
	newID        func() string
	maxRangeDays int
}

func NewRentalRequestLedger(requests repository.RentalRequestRepository, opts ...RangeOption) RentalRequestLedger {
	return &rentalRequestLedger{
		requests:     requests,
		newID:        uuid.NewString,
		maxRangeDays: applyRangeOptions(opts).maxRangeDays,
	}
}

func (l *rentalRequestLedger) Create(ctx context.Context, p CreateRequestParams) (*domain.RentalRequest, error) {
	if p.Range.IsEmptyOrInverted() {
		return nil, fmt.Errorf("%w: request %s must end after it starts", domain.ErrInvalidRange, p.Range)
	}
	if err := checkSpan(p.Range, l.maxRangeDays); err != nil {
		return nil, err
	}
	if p.TotalAmountCents < 0 {
		return nil, fmt.Errorf("%w: negative amount %d", domain.ErrInvalidRange, p.TotalAmountCents)
	}
	status := p.Status
	if status == "" {
		status = domain.RentalStatusPending
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	rq := &domain.RentalRequest{
		ID:               l.newID(),
		ItemID:           p.ItemID,
		RenterID:         p.RenterID,
		OwnerID:          p.OwnerID,
		Range:            p.Range,
		TotalAmountCents: p.TotalAmountCents,
		Message:          p.Message,
		Status:           status,
	}
	if err := l.requests.Create(ctx, rq); err != nil {
		return nil, err
	}
	return rq, nil
}

func (l *rentalRequestLedger) Get(ctx context.Context, id string) (*domain.RentalRequest, error) {
	return l.requests.GetByID(ctx, id)
}

func (l *rentalRequestLedger) ListActive(ctx context.Context, itemID string) ([]domain.RentalRequest, error) {
	return l.requests.List(ctx, domain.RentalRequestFilter{ItemID: itemID, Statuses: domain.ActiveStatuses})
}

func (l *rentalRequestLedger) Transition(ctx context.Context, id string, status domain.RentalStatus) (*domain.RentalRequest, error) {
	return l.Update(ctx, id, domain.RentalRequestPatch{Status: &status})
}

// Update applies the patch without consulting availability.
func (l *rentalRequestLedger) Update(ctx context.Context, id string, patch domain.RentalRequestPatch) (*domain.RentalRequest, error) {
	rq, err := l.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *patch.Status)
		}
		if !rq.Status.CanTransitionTo(*patch.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, rq.Status, *patch.Status)
		}
		rq.Status = *patch.Status
	}
	if patch.ChangesDates() {
		next := patch.ApplyRange(rq.Range)
		if next.IsEmptyOrInverted() {
			return nil, fmt.Errorf("%w: request %s must end after it starts", domain.ErrInvalidRange, next)
		}
		if err := checkSpan(next, l.maxRangeDays); err != nil {
			return nil, err
		}
		rq.Range = next
	}
	if patch.TotalAmountCents != nil {
		if *patch.TotalAmountCents < 0 {
			return nil, fmt.Errorf("%w: negative amount %d", domain.ErrInvalidRange, *patch.TotalAmountCents)
		}
		rq.TotalAmountCents = *patch.TotalAmountCents
	}
	if patch.Message != nil {
		rq.Message = patch.Message
	}

	if err := l.requests.Update(ctx, rq); err != nil {
		return nil, err
	}
	return rq, nil
}

func (l *rentalRequestLedger) ListByRenter(ctx context.Context, renterID string, status *domain.RentalStatus) ([]domain.RentalRequest, error) {
	return l.requests.List(ctx, domain.RentalRequestFilter{RenterID: renterID, Statuses: statusFilter(status)})
}

func (l *rentalRequestLedger) ListByOwner(ctx context.Context, ownerID string, status *domain.RentalStatus) ([]domain.RentalRequest, error) {
	return l.requests.List(ctx, domain.RentalRequestFilter{OwnerID: ownerID, Statuses: statusFilter(status)})
}

func (l *rentalRequestLedger) ListByStatus(ctx context.Context, statuses []domain.RentalStatus, endingOnOrAfter, endingBefore *time.Time) ([]domain.RentalRequest, error) {
	return l.requests.List(ctx, domain.RentalRequestFilter{
		Statuses:        statuses,
		EndingOnOrAfter: endingOnOrAfter,
		EndingBefore:    endingBefore,
	})
}

func statusFilter(status *domain.RentalStatus) []domain.RentalStatus {
	if status == nil {
		return nil
	}
	return []domain.RentalStatus{*status}
}
