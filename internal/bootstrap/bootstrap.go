// Package bootstrap wires stores and services from configuration. Both the
// API server and the cronjob runner build on it.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rental-booking-engine/internal/config"
	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/logger"
	"rental-booking-engine/internal/metrics"
	"rental-booking-engine/internal/repository"
	"rental-booking-engine/internal/repository/memory"
	"rental-booking-engine/internal/repository/mongo"
	"rental-booking-engine/internal/repository/postgres"
	"rental-booking-engine/internal/service"
)

// Repositories are the storage handles selected by database.driver.
type Repositories struct {
	Blocks   repository.BlockRepository
	Requests repository.RentalRequestRepository
	Items    repository.ItemRepository

	close func() error
}

func (r *Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// OpenRepositories connects to the configured store and verifies it is reachable.
func OpenRepositories(ctx context.Context, cfg config.DatabaseConfig, dsn string) (*Repositories, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		logger.Info("Connecting to database...", "driver", cfg.Driver, "host", cfg.Host, "port", cfg.Port, "database", cfg.Database)
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		store := postgres.NewStore(db)
		return &Repositories{
			Blocks:   store.BlockRepository,
			Requests: store.RentalRequestRepository,
			Items:    store.ItemRepository,
			close:    db.Close,
		}, nil

	case config.DriverMongo:
		logger.Info("Connecting to database...", "driver", cfg.Driver, "database", cfg.Mongo.Database)
		client, err := mongo.New(cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := client.Ping(ctx); err != nil {
			client.Close(context.Background())
			return nil, fmt.Errorf("ping mongo: %w", err)
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			client.Close(context.Background())
			return nil, err
		}
		store := mongo.NewStore(client)
		return &Repositories{
			Blocks:   store.BlockRepository,
			Requests: store.RentalRequestRepository,
			Items:    store.ItemRepository,
			close: func() error {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return client.Close(ctx)
			},
		}, nil

	case config.DriverMemory:
		logger.Warn("Using in-memory store; data is lost on exit", "seed_items", len(cfg.SeedItems))
		store := memory.NewStore()
		for _, it := range cfg.SeedItems {
			store.SeedItem(domain.Item{ID: it.ID, OwnerID: it.OwnerID, InstantBooking: it.InstantBooking})
		}
		return &Repositories{
			Blocks:   store.BlockRepository,
			Requests: store.RentalRequestRepository,
			Items:    store.ItemRepository,
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver: %q", cfg.Driver)
}

// Services is the engine assembled over one set of repositories.
type Services struct {
	Calendar     service.BlockedCalendar
	Ledger       service.RentalRequestLedger
	Availability service.AvailabilityChecker
	Lifecycle    service.BookingLifecycleController
	Booking      service.BookingService
}

func NewServices(repos *Repositories, publisher service.EventPublisher, m *metrics.Metrics, booking config.BookingConfig) *Services {
	calendar := service.NewBlockedCalendar(repos.Blocks)
	limit := service.WithMaxRangeDays(booking.MaxRangeDays)
	ledger := service.NewRentalRequestLedger(repos.Requests, limit)
	availability := service.NewAvailabilityChecker(calendar, ledger, m, limit)
	lifecycle := service.NewBookingLifecycleController(calendar, ledger, availability, publisher, m, service.LifecycleOptions{
		RevalidateOnApprove:   booking.ShouldRevalidateOnApprove(),
		ReleaseBlocksOnCancel: booking.ShouldReleaseBlocksOnCancel(),
	})

	return &Services{
		Calendar:     calendar,
		Ledger:       ledger,
		Availability: availability,
		Lifecycle:    lifecycle,
		Booking:      service.NewBookingService(service.NewOwnershipPolicy(repos.Items), calendar, ledger, availability, lifecycle),
	}
}
