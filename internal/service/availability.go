package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/metrics"
)

// Candidate is either a contiguous range or an explicit set of days.
type Candidate struct {
	Range *domain.DateRange
	Days  []time.Time
}

func RangeCandidate(r domain.DateRange) Candidate {
	return Candidate{Range: &r}
}

func DaysCandidate(days ...time.Time) Candidate {
	return Candidate{Days: days}
}

// DefaultMaxRangeDays bounds ranges and day sets when no limit is configured.
const DefaultMaxRangeDays = 366

type rangeSettings struct {
	maxRangeDays int
}

// RangeOption configures the span limit shared by the ledger and the
// availability checker.
type RangeOption func(*rangeSettings)

// WithMaxRangeDays caps how many calendar days a request or candidate may
// cover. Values below one fall back to DefaultMaxRangeDays.
func WithMaxRangeDays(n int) RangeOption {
	return func(s *rangeSettings) {
		if n > 0 {
			s.maxRangeDays = n
		}
	}
}

func applyRangeOptions(opts []RangeOption) rangeSettings {
	s := rangeSettings{maxRangeDays: DefaultMaxRangeDays}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func checkSpan(r domain.DateRange, maxDays int) error {
	if r.SpansMoreThan(maxDays) {
		return fmt.Errorf("%w: %s spans more than %d days", domain.ErrInvalidRange, r, maxDays)
	}
	return nil
}

// days returns the distinct candidate days in ascending order, refusing
// candidates that cover more than maxDays days.
func (c Candidate) days(maxDays int) ([]time.Time, error) {
	if c.Range != nil {
		if err := checkSpan(*c.Range, maxDays); err != nil {
			return nil, err
		}
		return c.Range.Days(), nil
	}
	seen := make(map[time.Time]struct{}, len(c.Days))
	out := make([]time.Time, 0, len(c.Days))
	for _, d := range c.Days {
		day := domain.DayOf(d)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
		if len(out) > maxDays {
			return nil, fmt.Errorf("%w: more than %d candidate days", domain.ErrInvalidRange, maxDays)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

const (
	ConflictSourceBlock   = "block"
	ConflictSourceRequest = "request"
)

type Availability struct {
	Available bool `json:"available"`
	// Set only when unavailable: the first taken day and what occupies it.
	ConflictDay    *time.Time `json:"conflict_day,omitempty"`
	ConflictSource string     `json:"conflict_source,omitempty"`
	ConflictID     string     `json:"conflict_id,omitempty"`
}

// CheckOptions narrows what counts as occupying a day.
type CheckOptions struct {
	// ExcludeRequestID ignores the request and the rented blocks materialized for it.
	ExcludeRequestID string
	// OccupyingStatuses defaults to domain.ActiveStatuses.
	OccupyingStatuses []domain.RentalStatus
}

type availabilityChecker struct {
	calendar     BlockedCalendar
	ledger       RentalRequestLedger
	metrics      *metrics.Metrics
	maxRangeDays int
}

func NewAvailabilityChecker(calendar BlockedCalendar, ledger RentalRequestLedger, m *metrics.Metrics, opts ...RangeOption) AvailabilityChecker {
	return &availabilityChecker{
		calendar:     calendar,
		ledger:       ledger,
		metrics:      m,
		maxRangeDays: applyRangeOptions(opts).maxRangeDays,
	}
}

func (a *availabilityChecker) IsAvailable(ctx context.Context, itemID string, c Candidate) (*Availability, error) {
	return a.Check(ctx, itemID, c, CheckOptions{})
}

// Check is a point-in-time read: it reserves nothing.
func (a *availabilityChecker) Check(ctx context.Context, itemID string, c Candidate, opts CheckOptions) (*Availability, error) {
	days, err := c.days(a.maxRangeDays)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: no candidate days", domain.ErrInvalidRange)
	}

	blocks, err := a.calendar.ListBlocks(ctx, itemID)
	if err != nil {
		return nil, err
	}
	active, err := a.ledger.ListActive(ctx, itemID)
	if err != nil {
		return nil, err
	}

	occupying := opts.OccupyingStatuses
	if len(occupying) == 0 {
		occupying = domain.ActiveStatuses
	}

	for _, day := range days {
		for i := range blocks {
			b := &blocks[i]
			if opts.ExcludeRequestID != "" && b.OwnedBy(opts.ExcludeRequestID) {
				continue
			}
			if b.Range.Contains(day) {
				return a.taken(day, ConflictSourceBlock, b.ID), nil
			}
		}
		for _, rq := range active {
			if rq.ID == opts.ExcludeRequestID || !hasStatus(rq.Status, occupying) {
				continue
			}
			if rq.Range.Contains(day) {
				return a.taken(day, ConflictSourceRequest, rq.ID), nil
			}
		}
	}

	a.metrics.AvailabilityChecked(true)
	return &Availability{Available: true}, nil
}

func (a *availabilityChecker) taken(day time.Time, source, id string) *Availability {
	a.metrics.AvailabilityChecked(false)
	return &Availability{Available: false, ConflictDay: &day, ConflictSource: source, ConflictID: id}
}

func hasStatus(s domain.RentalStatus, set []domain.RentalStatus) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}
