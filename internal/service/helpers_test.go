package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/repository/memory"
	"rental-booking-engine/internal/service"
)

const (
	ownerID  = "owner-1"
	renterID = "renter-1"
	otherID  = "renter-2"
	itemX    = "item-x"
	itemY    = "item-y"
)

var (
	owner  = domain.CallerIdentity{ID: ownerID, Role: domain.RoleUser}
	renter = domain.CallerIdentity{ID: renterID, Role: domain.RoleUser}
	other  = domain.CallerIdentity{ID: otherID, Role: domain.RoleUser}
	admin  = domain.CallerIdentity{ID: "admin-1", Role: domain.RoleAdmin}
)

func day(s string) time.Time {
	t, err := domain.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func span(start, end string) domain.DateRange {
	return domain.NewDateRange(day(start), day(end))
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store     *memory.Store
	calendar  service.BlockedCalendar
	ledger    service.RentalRequestLedger
	checker   service.AvailabilityChecker
	lifecycle service.BookingLifecycleController
	booking   service.BookingService
	events    *recordingPublisher
}

func newFixture(t *testing.T, opts service.LifecycleOptions) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.SeedItem(domain.Item{ID: itemX, OwnerID: ownerID})
	store.SeedItem(domain.Item{ID: itemY, OwnerID: ownerID, InstantBooking: true})

	f := &fixture{store: store, events: &recordingPublisher{}}
	f.calendar = service.NewBlockedCalendar(store.BlockRepository)
	f.ledger = service.NewRentalRequestLedger(store.RentalRequestRepository)
	f.checker = service.NewAvailabilityChecker(f.calendar, f.ledger, nil)
	f.lifecycle = service.NewBookingLifecycleController(f.calendar, f.ledger, f.checker, f.events, nil, opts)
	f.booking = service.NewBookingService(service.NewOwnershipPolicy(store.ItemRepository), f.calendar, f.ledger, f.checker, f.lifecycle)
	return f
}

func (f *fixture) request(t *testing.T, itemID, renter string, r domain.DateRange, status domain.RentalStatus) *domain.RentalRequest {
	t.Helper()
	rq, err := f.lifecycle.RequestBooking(context.Background(), service.CreateRequestParams{
		ItemID:   itemID,
		RenterID: renter,
		OwnerID:  ownerID,
		Range:    r,
		Status:   status,
	})
	require.NoError(t, err)
	return rq
}

func (f *fixture) available(t *testing.T, itemID string, r domain.DateRange) bool {
	t.Helper()
	a, err := f.checker.IsAvailable(context.Background(), itemID, service.RangeCandidate(r))
	require.NoError(t, err)
	return a.Available
}

// blockedDays flattens the item's blocks into the set of covered days.
func (f *fixture) blockedDays(t *testing.T, itemID string) []string {
	t.Helper()
	blocks, err := f.calendar.ListBlocks(context.Background(), itemID)
	require.NoError(t, err)
	var days []string
	for _, b := range blocks {
		for _, d := range b.Range.Days() {
			days = append(days, domain.FormatDay(d))
		}
	}
	return days
}

type mockBlockedCalendar struct {
	mock.Mock
}

func (m *mockBlockedCalendar) ListBlocks(ctx context.Context, itemID string) ([]domain.BlockedDateRange, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BlockedDateRange), args.Error(1)
}

func (m *mockBlockedCalendar) AddBlock(ctx context.Context, itemID string, r domain.DateRange, reason domain.BlockReason, requestID string) (*domain.BlockedDateRange, error) {
	args := m.Called(ctx, itemID, r, reason, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlockedDateRange), args.Error(1)
}

func (m *mockBlockedCalendar) RemoveBlock(ctx context.Context, blockID string) (bool, error) {
	args := m.Called(ctx, blockID)
	return args.Bool(0), args.Error(1)
}

func (m *mockBlockedCalendar) HasConflict(ctx context.Context, itemID string, r domain.DateRange) (bool, error) {
	args := m.Called(ctx, itemID, r)
	return args.Bool(0), args.Error(1)
}

func (m *mockBlockedCalendar) ReleaseForRequest(ctx context.Context, requestID string) (int64, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).(int64), args.Error(1)
}
