package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rental-booking-engine/internal/bootstrap"
	"rental-booking-engine/internal/config"
	"rental-booking-engine/internal/events/kafka"
	"rental-booking-engine/internal/jobs"
	"rental-booking-engine/internal/logger"
	"rental-booking-engine/internal/metrics"
	"rental-booking-engine/internal/scheduler"
	"rental-booking-engine/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'reconcile-rented-blocks', 'complete-finished-rentals', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Booking Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Repositories
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	repos, err := bootstrap.OpenRepositories(ctx, cfg.Database, cfg.GetDatabaseConnectionString())
	cancel()
	if err != nil {
		logger.Error("Failed to open store", "driver", cfg.Database.Driver, "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer repos.Close()
	logger.Info("Database connection established", "driver", cfg.Database.Driver)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	// Completing rentals emits status events like the API does
	var publisher service.EventPublisher = service.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ClientID, cfg.Kafka.Topic)
		if err != nil {
			logger.Error("Failed to create kafka producer", "brokers", cfg.Kafka.Brokers, "error", err)
			log.Fatalf("Failed to create kafka producer: %v", err)
		}
		defer producer.Close()
		publisher = producer
	}

	services := bootstrap.NewServices(repos, publisher, m, cfg.Booking)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(&jobs.Services{
		Ledger:    services.Ledger,
		Lifecycle: services.Lifecycle,
	}, cfg, m)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to register jobs: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	if jobName == "all" {
		jobRunner.RunAll()
		return
	}
	if err := jobRunner.Run(jobName); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - %s\n", jobs.JobReconcileRentedBlocks)
		fmt.Printf("  - %s\n", jobs.JobCompleteFinishedRentals)
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
