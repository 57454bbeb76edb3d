package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-booking-engine/internal/config"
	"rental-booking-engine/internal/jobs"
)

func TestNewScheduler(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		ReconcileRentedBlocks:   "0 */15 * * * *",
		CompleteFinishedRentals: "0 0 1 * * *",
	}}

	s, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg, nil))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Entries())

	s.Start()
	s.Stop()
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		ReconcileRentedBlocks:   "every now and then",
		CompleteFinishedRentals: "0 0 1 * * *",
	}}

	_, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg, nil))
	assert.Error(t, err)
}
