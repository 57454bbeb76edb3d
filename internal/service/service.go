package service

import (
	"context"
	"time"

	"rental-booking-engine/internal/domain"
)

type BlockedCalendar interface {
	ListBlocks(ctx context.Context, itemID string) ([]domain.BlockedDateRange, error)
	AddBlock(ctx context.Context, itemID string, r domain.DateRange, reason domain.BlockReason, requestID string) (*domain.BlockedDateRange, error)
	RemoveBlock(ctx context.Context, blockID string) (bool, error)
	HasConflict(ctx context.Context, itemID string, r domain.DateRange) (bool, error)
	ReleaseForRequest(ctx context.Context, requestID string) (int64, error)
}

type RentalRequestLedger interface {
	Create(ctx context.Context, params CreateRequestParams) (*domain.RentalRequest, error)
	Get(ctx context.Context, id string) (*domain.RentalRequest, error)
	ListActive(ctx context.Context, itemID string) ([]domain.RentalRequest, error)
	Transition(ctx context.Context, id string, status domain.RentalStatus) (*domain.RentalRequest, error)
	Update(ctx context.Context, id string, patch domain.RentalRequestPatch) (*domain.RentalRequest, error)
	ListByRenter(ctx context.Context, renterID string, status *domain.RentalStatus) ([]domain.RentalRequest, error)
	ListByOwner(ctx context.Context, ownerID string, status *domain.RentalStatus) ([]domain.RentalRequest, error)
	ListByStatus(ctx context.Context, statuses []domain.RentalStatus, endingOnOrAfter, endingBefore *time.Time) ([]domain.RentalRequest, error)
}

type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, itemID string, c Candidate) (*Availability, error)
	Check(ctx context.Context, itemID string, c Candidate, opts CheckOptions) (*Availability, error)
}

type BookingLifecycleController interface {
	RequestBooking(ctx context.Context, params CreateRequestParams) (*domain.RentalRequest, error)
	Approve(ctx context.Context, requestID string) (*domain.RentalRequest, error)
	CreateWithAutoApprove(ctx context.Context, params CreateRequestParams) (*domain.RentalRequest, error)
	Cancel(ctx context.Context, requestID string) (*domain.RentalRequest, error)
	Transition(ctx context.Context, requestID string, status domain.RentalStatus) (*domain.RentalRequest, error)
	Update(ctx context.Context, requestID string, patch domain.RentalRequestPatch) (*domain.RentalRequest, error)
	Reblock(ctx context.Context, rq *domain.RentalRequest) AutoBlockReport
}

type AdmissionPolicy interface {
	// Admit returns the item the action targets when the caller may perform it.
	Admit(ctx context.Context, caller domain.CallerIdentity, action Action, itemID string) (*domain.Item, error)
}

// BookingService is the per-caller entry point used by the API layers.
type BookingService interface {
	CheckAvailability(ctx context.Context, caller domain.CallerIdentity, itemID string, c Candidate) (*Availability, error)
	ListBlocks(ctx context.Context, caller domain.CallerIdentity, itemID string) ([]domain.BlockedDateRange, error)
	AddBlock(ctx context.Context, caller domain.CallerIdentity, itemID string, r domain.DateRange, reason domain.BlockReason) (*domain.BlockedDateRange, error)
	RemoveBlock(ctx context.Context, caller domain.CallerIdentity, itemID, blockID string) (bool, error)
	RequestBooking(ctx context.Context, caller domain.CallerIdentity, in BookingRequest) (*domain.RentalRequest, error)
	Approve(ctx context.Context, caller domain.CallerIdentity, requestID string) (*domain.RentalRequest, error)
	Decline(ctx context.Context, caller domain.CallerIdentity, requestID string) (*domain.RentalRequest, error)
	Cancel(ctx context.Context, caller domain.CallerIdentity, requestID string) (*domain.RentalRequest, error)
	Transition(ctx context.Context, caller domain.CallerIdentity, requestID string, status domain.RentalStatus) (*domain.RentalRequest, error)
	UpdateRequest(ctx context.Context, caller domain.CallerIdentity, requestID string, patch domain.RentalRequestPatch) (*domain.RentalRequest, error)
	GetRequest(ctx context.Context, caller domain.CallerIdentity, requestID string) (*domain.RentalRequest, error)
	ListMyRentals(ctx context.Context, caller domain.CallerIdentity, status *domain.RentalStatus) ([]domain.RentalRequest, error)
	ListMyLendings(ctx context.Context, caller domain.CallerIdentity, status *domain.RentalStatus) ([]domain.RentalRequest, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.BookingEvent) error
}

// CreateRequestParams are the fields of a new rental request. An empty
// Status means pending.
type CreateRequestParams struct {
	ItemID           string
	RenterID         string
	OwnerID          string
	Range            domain.DateRange
	TotalAmountCents int64
	Message          *string
	Status           domain.RentalStatus
}

// BookingRequest is what a renter submits; renter and owner are resolved by the service.
type BookingRequest struct {
	ItemID           string
	Range            domain.DateRange
	TotalAmountCents int64
	Message          *string
	Status           domain.RentalStatus
}

// AutoBlockReport counts per-day outcomes of materializing rented blocks.
type AutoBlockReport struct {
	Created int
	Skipped int
	Failed  int
}
