package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/logger"
	"rental-booking-engine/internal/metrics"
)

type LifecycleOptions struct {
	// RevalidateOnApprove refuses an approval whose dates are taken by a
	// foreign block or another approved or paid request.
	RevalidateOnApprove bool
	// ReleaseBlocksOnCancel drops the rented blocks of a request once it is
	// cancelled or declined.
	ReleaseBlocksOnCancel bool
}

func DefaultLifecycleOptions() LifecycleOptions {
	return LifecycleOptions{RevalidateOnApprove: true, ReleaseBlocksOnCancel: true}
}

type lifecycleController struct {
	calendar     BlockedCalendar
	ledger       RentalRequestLedger
	availability AvailabilityChecker
	events       *eventEmitter
	metrics      *metrics.Metrics
	opts         LifecycleOptions
}

func NewBookingLifecycleController(
	calendar BlockedCalendar,
	ledger RentalRequestLedger,
	availability AvailabilityChecker,
	publisher EventPublisher,
	m *metrics.Metrics,
	opts LifecycleOptions,
) BookingLifecycleController {
	return &lifecycleController{
		calendar:     calendar,
		ledger:       ledger,
		availability: availability,
		events:       newEventEmitter(publisher),
		metrics:      m,
		opts:         opts,
	}
}

// RequestBooking stores the request as given. Callers check availability first.
func (c *lifecycleController) RequestBooking(ctx context.Context, p CreateRequestParams) (*domain.RentalRequest, error) {
	rq, err := c.ledger.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	c.events.emit(ctx, domain.EventRequestCreated, rq.ItemID, rq.ID, "", map[string]string{"status": string(rq.Status)})
	return rq, nil
}

func (c *lifecycleController) CreateWithAutoApprove(ctx context.Context, p CreateRequestParams) (*domain.RentalRequest, error) {
	rq, err := c.RequestBooking(ctx, p)
	if err != nil {
		return nil, err
	}
	if rq.Status == domain.RentalStatusApproved {
		c.Reblock(ctx, rq)
	}
	return rq, nil
}

// Approve moves the request to approved and materializes one rented block per
// day of its range. Block failures never undo the transition.
func (c *lifecycleController) Approve(ctx context.Context, requestID string) (*domain.RentalRequest, error) {
	logger.EnterMethod("lifecycleController.Approve", "requestID", requestID)

	rq, err := c.ledger.Get(ctx, requestID)
	if err != nil {
		logger.ExitMethodWithError("lifecycleController.Approve", err, "requestID", requestID)
		return nil, err
	}
	if !rq.Status.CanTransitionTo(domain.RentalStatusApproved) {
		err := fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, rq.Status, domain.RentalStatusApproved)
		logger.ExitMethodWithError("lifecycleController.Approve", err, "requestID", requestID)
		return nil, err
	}

	from := rq.Status
	if from != domain.RentalStatusApproved {
		if c.opts.RevalidateOnApprove {
			if err := c.revalidate(ctx, rq); err != nil {
				logger.ExitMethodWithError("lifecycleController.Approve", err, "requestID", requestID)
				return nil, err
			}
		}
		rq, err = c.ledger.Transition(ctx, requestID, domain.RentalStatusApproved)
		if err != nil {
			logger.ExitMethodWithError("lifecycleController.Approve", err, "requestID", requestID)
			return nil, err
		}
		c.statusChanged(ctx, rq, from)
	}

	report := c.Reblock(ctx, rq)
	logger.ExitMethod("lifecycleController.Approve", "requestID", requestID,
		"created", report.Created, "skipped", report.Skipped, "failed", report.Failed)
	return rq, nil
}

func (c *lifecycleController) revalidate(ctx context.Context, rq *domain.RentalRequest) error {
	avail, err := c.availability.Check(ctx, rq.ItemID, RangeCandidate(rq.Range), CheckOptions{
		ExcludeRequestID:  rq.ID,
		OccupyingStatuses: []domain.RentalStatus{domain.RentalStatusApproved, domain.RentalStatusPaid},
	})
	if err != nil {
		return err
	}
	if !avail.Available {
		return fmt.Errorf("%w: %s taken on %s by %s %s", domain.ErrConflict, rq.ItemID,
			domain.FormatDay(*avail.ConflictDay), avail.ConflictSource, avail.ConflictID)
	}
	return nil
}

// Reblock runs the per-day auto-block for the request. Days already covered
// by any block are skipped, so repeated runs converge.
func (c *lifecycleController) Reblock(ctx context.Context, rq *domain.RentalRequest) AutoBlockReport {
	var report AutoBlockReport
	for _, day := range rq.Range.Days() {
		span := domain.DayBounds(day)

		taken, err := c.calendar.HasConflict(ctx, rq.ItemID, span)
		if err != nil {
			c.blockFailed(ctx, rq, day, err)
			report.Failed++
			continue
		}
		if taken {
			c.metrics.AutoBlock(metrics.AutoBlockSkipped)
			report.Skipped++
			continue
		}

		if _, err := c.calendar.AddBlock(ctx, rq.ItemID, span, domain.BlockReasonRented, rq.ID); err != nil {
			c.blockFailed(ctx, rq, day, err)
			report.Failed++
			continue
		}
		c.metrics.AutoBlock(metrics.AutoBlockCreated)
		report.Created++
	}

	if report.Created > 0 {
		c.events.emit(ctx, domain.EventCalendarBlocked, rq.ItemID, rq.ID, "", map[string]string{
			"range": rq.Range.String(),
			"days":  strconv.Itoa(report.Created),
		})
	}
	return report
}

func (c *lifecycleController) blockFailed(ctx context.Context, rq *domain.RentalRequest, day time.Time, err error) {
	c.metrics.AutoBlock(metrics.AutoBlockFailed)
	logger.WarnContext(ctx, "Auto-block failed, day skipped",
		"item_id", rq.ItemID, "request_id", rq.ID, "day", day.Format(domain.DateFormat), "error", err)
}

func (c *lifecycleController) Cancel(ctx context.Context, requestID string) (*domain.RentalRequest, error) {
	return c.leave(ctx, requestID, domain.RentalStatusCancelled)
}

// Transition routes approval and cancellation through their side effects.
func (c *lifecycleController) Transition(ctx context.Context, requestID string, status domain.RentalStatus) (*domain.RentalRequest, error) {
	switch status {
	case domain.RentalStatusApproved:
		return c.Approve(ctx, requestID)
	case domain.RentalStatusCancelled, domain.RentalStatusDeclined:
		return c.leave(ctx, requestID, status)
	}

	rq, err := c.ledger.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	from := rq.Status
	rq, err = c.ledger.Transition(ctx, requestID, status)
	if err != nil {
		return nil, err
	}
	c.statusChanged(ctx, rq, from)
	return rq, nil
}

// leave moves the request to cancelled or declined and applies the release policy.
func (c *lifecycleController) leave(ctx context.Context, requestID string, status domain.RentalStatus) (*domain.RentalRequest, error) {
	rq, err := c.ledger.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	from := rq.Status
	rq, err = c.ledger.Transition(ctx, requestID, status)
	if err != nil {
		return nil, err
	}
	c.statusChanged(ctx, rq, from)

	if c.opts.ReleaseBlocksOnCancel {
		c.release(ctx, rq)
	}
	return rq, nil
}

func (c *lifecycleController) release(ctx context.Context, rq *domain.RentalRequest) {
	n, err := c.calendar.ReleaseForRequest(ctx, rq.ID)
	if err != nil {
		logger.WarnContext(ctx, "Releasing rented blocks failed", "item_id", rq.ItemID, "request_id", rq.ID, "error", err)
		return
	}
	if n == 0 {
		return
	}
	c.metrics.BlocksReleased(n)
	c.events.emit(ctx, domain.EventCalendarReleased, rq.ItemID, rq.ID, "", map[string]string{"blocks": strconv.FormatInt(n, 10)})
}

// Update patches the request. Every check, including approval re-validation
// against the patched range, runs before the single ledger write, so a
// rejected patch leaves the request untouched. An approved or paid request
// that moves its dates has its rented blocks rebuilt for the new range.
func (c *lifecycleController) Update(ctx context.Context, requestID string, patch domain.RentalRequestPatch) (*domain.RentalRequest, error) {
	logger.EnterMethod("lifecycleController.Update", "requestID", requestID)

	before, err := c.ledger.Get(ctx, requestID)
	if err != nil {
		logger.ExitMethodWithError("lifecycleController.Update", err, "requestID", requestID)
		return nil, err
	}

	target := before.Status
	if patch.Status != nil {
		target = *patch.Status
		if !target.IsValid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, target)
		}
		if !before.Status.CanTransitionTo(target) {
			return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, before.Status, target)
		}
	}

	if target == domain.RentalStatusApproved && before.Status != domain.RentalStatusApproved && c.opts.RevalidateOnApprove {
		candidate := *before
		candidate.Range = patch.ApplyRange(before.Range)
		if err := c.revalidate(ctx, &candidate); err != nil {
			logger.ExitMethodWithError("lifecycleController.Update", err, "requestID", requestID)
			return nil, err
		}
	}

	rq, err := c.ledger.Update(ctx, requestID, patch)
	if err != nil {
		logger.ExitMethodWithError("lifecycleController.Update", err, "requestID", requestID)
		return nil, err
	}

	if patch.ChangesDates() || patch.TotalAmountCents != nil || patch.Message != nil {
		c.events.emit(ctx, domain.EventRequestUpdated, rq.ItemID, rq.ID, "", map[string]string{"range": rq.Range.String()})
	}
	c.statusChanged(ctx, rq, before.Status)

	moved := patch.ChangesDates() && !rq.Range.Equal(before.Range)
	switch {
	case rq.Status == domain.RentalStatusCancelled || rq.Status == domain.RentalStatusDeclined:
		if c.opts.ReleaseBlocksOnCancel {
			c.release(ctx, rq)
		}
	case holdsBlocks(rq.Status):
		if moved && holdsBlocks(before.Status) {
			c.release(ctx, rq)
		}
		if moved || patch.Status != nil {
			c.Reblock(ctx, rq)
		}
	}

	logger.ExitMethod("lifecycleController.Update", "requestID", requestID, "status", rq.Status)
	return rq, nil
}

func holdsBlocks(s domain.RentalStatus) bool {
	return s == domain.RentalStatusApproved || s == domain.RentalStatusPaid
}

func (c *lifecycleController) statusChanged(ctx context.Context, rq *domain.RentalRequest, from domain.RentalStatus) {
	if from == rq.Status {
		return
	}
	c.metrics.Transition(string(from), string(rq.Status))
	c.events.emit(ctx, domain.EventRequestStatusChanged, rq.ItemID, rq.ID, "", map[string]string{
		"from": string(from),
		"to":   string(rq.Status),
	})
}
