package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	api "rental-booking-engine/internal/api/grpc"
	"rental-booking-engine/internal/api/grpc/interceptor"
	httpapi "rental-booking-engine/internal/api/http"
	"rental-booking-engine/internal/bootstrap"
	"rental-booking-engine/internal/config"
	"rental-booking-engine/internal/events/kafka"
	"rental-booking-engine/internal/logger"
	"rental-booking-engine/internal/metrics"
	"rental-booking-engine/internal/security"
	"rental-booking-engine/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rental Booking Engine...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "grpc_address", cfg.GetServerAddress(), "http_address", cfg.GetHTTPAddress())

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

	// Initialize Metrics
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	// Initialize Event Publisher
	var publisher service.EventPublisher = service.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ClientID, cfg.Kafka.Topic)
		if err != nil {
			logger.Error("Failed to create kafka producer", "brokers", cfg.Kafka.Brokers, "error", err)
			log.Fatalf("Failed to create kafka producer: %v", err)
		}
		defer producer.Close()
		publisher = producer
		logger.Info("Publishing booking events", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	}

	// Initialize Services
	services := bootstrap.NewServices(repos, publisher, m, cfg.Booking)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	authInterceptor := interceptor.NewAuthInterceptor(tokenManager)

	// Set up gRPC server
	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptor.Metrics(m),
			authInterceptor.Unary(),
		),
	)
	api.RegisterBookingServiceServer(s, api.NewBookingHandler(services.Booking))

	// Register reflection service for grpcurl
	reflection.Register(s)

	// Set up HTTP server for health, metrics and public calendar reads
	var metricsHandler http.Handler
	if m != nil {
		metricsHandler = m.Handler()
	}
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           httpapi.NewRouter(services.Booking, cfg.Metrics.Path, metricsHandler),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetServerAddress())
		if err := s.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down servers...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	s.GracefulStop()
	logger.Info("Servers stopped. Goodbye!")
}
