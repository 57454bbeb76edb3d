package grpc_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/service"
)

// MockBookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CheckAvailability(ctx context.Context, caller domain.CallerIdentity, itemID string, c service.Candidate) (*service.Availability, error) {
	args := m.Called(ctx, caller, itemID, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Availability), args.Error(1)
}

func (m *MockBookingService) ListBlocks(ctx context.Context, caller domain.CallerIdentity, itemID string) ([]domain.BlockedDateRange, error) {
	args := m.Called(ctx, caller, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BlockedDateRange), args.Error(1)
}

func (m *MockBookingService) AddBlock(ctx context.Context, caller domain.CallerIdentity, itemID string, r domain.DateRange, reason domain.BlockReason) (*domain.BlockedDateRange, error) {
	args := m.Called(ctx, caller, itemID, r, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlockedDateRange), args.Error(1)
}

func (m *MockBookingService) RemoveBlock(ctx context.Context, caller domain.CallerIdentity, itemID, blockID string) (bool, error) {
	args := m.Called(ctx, caller, itemID, blockID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingService) RequestBooking(ctx context.Context, caller domain.CallerIdentity, in service.BookingRequest) (*domain.RentalRequest, error) {
	args := m.Called(ctx, caller, in)
	return requestResult(args)
}

func (m *MockBookingService) Approve(ctx context.Context, caller domain.CallerIdentity, requestID string) (*domain.RentalRequest, error) {
	return requestResult(m.Called(ctx, caller, requestID))
}

func (m *MockBookingService) Decline(ctx context.Context, caller domain.CallerIdentity, requestID string) (*domain.RentalRequest, error) {
	return requestResult(m.Called(ctx, caller, requestID))
}

func (m *MockBookingService) Cancel(ctx context.Context, caller domain.CallerIdentity, requestID string) (*domain.RentalRequest, error) {
	return requestResult(m.Called(ctx, caller, requestID))
}

func (m *MockBookingService) Transition(ctx context.Context, caller domain.CallerIdentity, requestID string, status domain.RentalStatus) (*domain.RentalRequest, error) {
	return requestResult(m.Called(ctx, caller, requestID, status))
}

func (m *MockBookingService) UpdateRequest(ctx context.Context, caller domain.CallerIdentity, requestID string, patch domain.RentalRequestPatch) (*domain.RentalRequest, error) {
	return requestResult(m.Called(ctx, caller, requestID, patch))
}

func (m *MockBookingService) GetRequest(ctx context.Context, caller domain.CallerIdentity, requestID string) (*domain.RentalRequest, error) {
	return requestResult(m.Called(ctx, caller, requestID))
}

func (m *MockBookingService) ListMyRentals(ctx context.Context, caller domain.CallerIdentity, status *domain.RentalStatus) ([]domain.RentalRequest, error) {
	args := m.Called(ctx, caller, status)
	return args.Get(0).([]domain.RentalRequest), args.Error(1)
}

func (m *MockBookingService) ListMyLendings(ctx context.Context, caller domain.CallerIdentity, status *domain.RentalStatus) ([]domain.RentalRequest, error) {
	args := m.Called(ctx, caller, status)
	return args.Get(0).([]domain.RentalRequest), args.Error(1)
}

func requestResult(args mock.Arguments) (*domain.RentalRequest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalRequest), args.Error(1)
}
