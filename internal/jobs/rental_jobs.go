package jobs

import (
	"context"
	"fmt"

	"rental-booking-engine/internal/domain"
)

// ReconcileRentedBlocks re-materializes the rented blocks of every approved
// or paid request that has not ended yet. Days already blocked are skipped,
// so the job only fills gaps left by failed per-day inserts.
func (jr *JobRunner) ReconcileRentedBlocks() error {
	return jr.runWithRecovery(JobReconcileRentedBlocks, func() error {
		ctx := context.Background()
		today := jr.today()

		requests, err := jr.services.Ledger.ListByStatus(ctx,
			[]domain.RentalStatus{domain.RentalStatusApproved, domain.RentalStatusPaid}, &today, nil)
		if err != nil {
			return fmt.Errorf("list booked requests: %w", err)
		}

		var created, failed int
		for i := range requests {
			report := jr.services.Lifecycle.Reblock(ctx, &requests[i])
			created += report.Created
			failed += report.Failed
			if report.Created > 0 {
				jr.log.Info("Restored rented blocks",
					"request_id", requests[i].ID,
					"item_id", requests[i].ItemID,
					"created", report.Created)
			}
		}

		jr.log.Info("Reconciled rented blocks", "requests", len(requests), "created", created, "failed", failed)
		if failed > 0 {
			return fmt.Errorf("%d rented days could not be blocked", failed)
		}
		return nil
	})
}

// CompleteFinishedRentals moves paid requests whose last day is before today
// to completed.
func (jr *JobRunner) CompleteFinishedRentals() error {
	return jr.runWithRecovery(JobCompleteFinishedRentals, func() error {
		ctx := context.Background()
		today := jr.today()

		requests, err := jr.services.Ledger.ListByStatus(ctx,
			[]domain.RentalStatus{domain.RentalStatusPaid}, nil, &today)
		if err != nil {
			return fmt.Errorf("list finished rentals: %w", err)
		}

		completed, failed := 0, 0
		for _, rq := range requests {
			if _, err := jr.services.Lifecycle.Transition(ctx, rq.ID, domain.RentalStatusCompleted); err != nil {
				jr.log.Warn("Failed to complete rental", "request_id", rq.ID, "error", err)
				failed++
				continue
			}
			jr.log.Debug("Completed rental", "request_id", rq.ID, "end_date", domain.FormatDay(rq.Range.End))
			completed++
		}

		jr.log.Info("Completed finished rentals", "count", completed, "failed", failed)
		if failed > 0 {
			return fmt.Errorf("%d rentals could not be completed", failed)
		}
		return nil
	})
}
