package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"rental-booking-engine/internal/config"
	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/logger"
	"rental-booking-engine/internal/metrics"
	"rental-booking-engine/internal/service"
)

// Job names, as accepted by the cronjob runner.
const (
	JobReconcileRentedBlocks   = "reconcile-rented-blocks"
	JobCompleteFinishedRentals = "complete-finished-rentals"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
	metrics  *metrics.Metrics
	log      *slog.Logger
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Ledger    service.RentalRequestLedger
	Lifecycle service.BookingLifecycleController
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config, m *metrics.Metrics) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
		metrics:  m,
		log:      logger.WithService("cronjob"),
		now:      time.Now,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery and records the outcome
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			jr.log.Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		jr.metrics.JobRun(jobName, err)
	}()

	jr.log.Info("Starting job", "job", jobName)
	start := jr.now()
	if err = jobFunc(); err != nil {
		jr.log.Error("Job failed", "job", jobName, "error", err)
		return err
	}
	jr.log.Info("Job completed", "job", jobName, "duration", jr.now().Sub(start))
	return nil
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ReconcileRentedBlocks()
	jr.CompleteFinishedRentals()
}

// Run executes a job by name.
func (jr *JobRunner) Run(jobName string) error {
	switch jobName {
	case JobReconcileRentedBlocks:
		return jr.ReconcileRentedBlocks()
	case JobCompleteFinishedRentals:
		return jr.CompleteFinishedRentals()
	}
	return fmt.Errorf("unknown job %q", jobName)
}

// today is the UTC midnight of the runner's current day.
func (jr *JobRunner) today() time.Time {
	return domain.DayOf(jr.now())
}
