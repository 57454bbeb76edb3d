// Package memory keeps the engine's collections in process memory. It backs
// tests and local development; every write is serialized by a single mutex.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/repository"
)

type Store struct {
	mu       sync.RWMutex
	blocks   map[string]domain.BlockedDateRange
	requests map[string]domain.RentalRequest
	items    map[string]domain.Item
	now      func() time.Time

	repository.BlockRepository
	repository.RentalRequestRepository
	repository.ItemRepository
}

func NewStore() *Store {
	s := &Store{
		blocks:   make(map[string]domain.BlockedDateRange),
		requests: make(map[string]domain.RentalRequest),
		items:    make(map[string]domain.Item),
		now:      time.Now,
	}
	s.BlockRepository = &blockRepository{s: s}
	s.RentalRequestRepository = &rentalRequestRepository{s: s}
	s.ItemRepository = &itemRepository{s: s}
	return s
}

// SeedItem registers an item in the directory.
func (s *Store) SeedItem(it domain.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[it.ID] = it
}

type blockRepository struct {
	s *Store
}

func (r *blockRepository) CreateIfFree(ctx context.Context, b *domain.BlockedDateRange) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.blocks {
		if existing.ItemID == b.ItemID && existing.Range.Overlaps(b.Range) {
			return fmt.Errorf("%w: item %s already blocked within %s", domain.ErrConflict, b.ItemID, b.Range)
		}
	}
	b.CreatedOn = r.s.now().UTC()
	r.s.blocks[b.ID] = *b
	return nil
}

func (r *blockRepository) ListByItem(ctx context.Context, itemID string) ([]domain.BlockedDateRange, error) {
	return r.collect(ctx, func(b domain.BlockedDateRange) bool {
		return b.ItemID == itemID
	})
}

func (r *blockRepository) ListOverlapping(ctx context.Context, itemID string, rg domain.DateRange) ([]domain.BlockedDateRange, error) {
	return r.collect(ctx, func(b domain.BlockedDateRange) bool {
		return b.ItemID == itemID && b.Range.Overlaps(rg)
	})
}

func (r *blockRepository) collect(ctx context.Context, keep func(domain.BlockedDateRange) bool) ([]domain.BlockedDateRange, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.BlockedDateRange
	for _, b := range r.s.blocks {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Range.Start.Equal(out[j].Range.Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Range.Start.Before(out[j].Range.Start)
	})
	return out, nil
}

func (r *blockRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.blocks[id]; !ok {
		return false, nil
	}
	delete(r.s.blocks, id)
	return true, nil
}

func (r *blockRepository) DeleteByRequest(ctx context.Context, requestID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, b := range r.s.blocks {
		if b.OwnedBy(requestID) {
			delete(r.s.blocks, id)
			n++
		}
	}
	return n, nil
}

type rentalRequestRepository struct {
	s *Store
}

func (r *rentalRequestRepository) Create(ctx context.Context, rq *domain.RentalRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.requests[rq.ID]; exists {
		return fmt.Errorf("%w: duplicate rental request id %s", domain.ErrStoreUnavailable, rq.ID)
	}
	now := r.s.now().UTC()
	rq.CreatedOn, rq.UpdatedOn = now, now
	r.s.requests[rq.ID] = copyRequest(*rq)
	return nil
}

func (r *rentalRequestRepository) GetByID(ctx context.Context, id string) (*domain.RentalRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rq, ok := r.s.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: rental request %s", domain.ErrNotFound, id)
	}
	out := copyRequest(rq)
	return &out, nil
}

func (r *rentalRequestRepository) Update(ctx context.Context, rq *domain.RentalRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.requests[rq.ID]
	if !ok {
		return fmt.Errorf("%w: rental request %s", domain.ErrNotFound, rq.ID)
	}
	stored.Range = rq.Range
	stored.TotalAmountCents = rq.TotalAmountCents
	stored.Message = rq.Message
	stored.Status = rq.Status
	stored.UpdatedOn = r.s.now().UTC()
	rq.UpdatedOn = stored.UpdatedOn
	r.s.requests[rq.ID] = copyRequest(stored)
	return nil
}

func (r *rentalRequestRepository) List(ctx context.Context, f domain.RentalRequestFilter) ([]domain.RentalRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.RentalRequest
	for _, rq := range r.s.requests {
		if matches(rq, f) {
			out = append(out, copyRequest(rq))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Range.Start.Equal(out[j].Range.Start) {
			return out[i].CreatedOn.Before(out[j].CreatedOn)
		}
		return out[i].Range.Start.Before(out[j].Range.Start)
	})
	return out, nil
}

func matches(rq domain.RentalRequest, f domain.RentalRequestFilter) bool {
	if f.ItemID != "" && rq.ItemID != f.ItemID {
		return false
	}
	if f.RenterID != "" && rq.RenterID != f.RenterID {
		return false
	}
	if f.OwnerID != "" && rq.OwnerID != f.OwnerID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if rq.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	end := rq.Range.EndDay()
	if f.EndingOnOrAfter != nil && end.Before(domain.DayOf(*f.EndingOnOrAfter)) {
		return false
	}
	if f.EndingBefore != nil && !end.Before(domain.DayOf(*f.EndingBefore)) {
		return false
	}
	return true
}

func copyRequest(rq domain.RentalRequest) domain.RentalRequest {
	if rq.Message != nil {
		msg := *rq.Message
		rq.Message = &msg
	}
	return rq
}

type itemRepository struct {
	s *Store
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, id)
	}
	return &it, nil
}
