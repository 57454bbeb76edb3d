package repository

import (
	"context"

	"rental-booking-engine/internal/domain"
)

// Implementations return domain.ErrNotFound for missing rows and wrap every
// other driver failure with domain.ErrStoreUnavailable.

type BlockRepository interface {
	// CreateIfFree inserts the block unless an existing block of the same item
	// overlaps its range, in which case it returns domain.ErrConflict.
	CreateIfFree(ctx context.Context, block *domain.BlockedDateRange) error
	ListByItem(ctx context.Context, itemID string) ([]domain.BlockedDateRange, error)
	ListOverlapping(ctx context.Context, itemID string, r domain.DateRange) ([]domain.BlockedDateRange, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByRequest(ctx context.Context, requestID string) (int64, error)
}

type RentalRequestRepository interface {
	Create(ctx context.Context, req *domain.RentalRequest) error
	GetByID(ctx context.Context, id string) (*domain.RentalRequest, error)
	Update(ctx context.Context, req *domain.RentalRequest) error
	List(ctx context.Context, filter domain.RentalRequestFilter) ([]domain.RentalRequest, error)
}

type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Item, error)
}
