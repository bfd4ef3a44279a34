package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lodgical/service-reservation/internal/application"
	"github.com/lodgical/service-reservation/internal/clock"
	"github.com/lodgical/service-reservation/internal/config"
	"github.com/lodgical/service-reservation/internal/consumer"
	bookingDomain "github.com/lodgical/service-reservation/internal/domain/booking"
	"github.com/lodgical/service-reservation/internal/handler"
	"github.com/lodgical/service-reservation/internal/platform/database"
	"github.com/lodgical/service-reservation/internal/platform/health"
	"github.com/lodgical/service-reservation/internal/platform/kafka"
	"github.com/lodgical/service-reservation/internal/platform/logger"
	"github.com/lodgical/service-reservation/internal/platform/middleware"
	"github.com/lodgical/service-reservation/internal/repository"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-reservation")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-reservation",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations. The exclusion constraint on calendar_blocks
	// needs raw SQL, so production always goes through the migrations dir.
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.BlockModel{},
			&repository.StatusEventModel{},
			&repository.DisputeModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories and transaction manager
	txManager := repository.NewTxManager(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	blockRepo := repository.NewGormBlockRepository(db)
	statusEventRepo := repository.NewGormStatusEventRepository(db)
	disputeRepo := repository.NewGormDisputeRepository(db)

	// Initialize pricing oracle
	pricingOracle := bookingDomain.NewStandardPricingOracle(
		cfg.Pricing.NightlyRateCents,
		cfg.Pricing.FeePercent,
		cfg.Pricing.TaxPercent,
		cfg.Pricing.Currency,
	)

	// Initialize application services
	clk := clock.NewSystem()
	availabilityService := application.NewAvailabilityService(blockRepo, txManager, clk, log)
	bookingService := application.NewBookingService(
		bookingRepo,
		statusEventRepo,
		disputeRepo,
		availabilityService,
		pricingOracle,
		txManager,
		kafkaProducer,
		clk,
		log,
		application.WithPendingHoldTTL(cfg.PendingHoldTTL),
	)

	// Initialize and start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "reservation-service"
	paymentConsumer := consumer.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-reservation")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup)
	availabilityHandler.RegisterRoutes(&router.RouterGroup)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-reservation...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-reservation stopped")
}
