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
	"go.uber.org/zap"

	"github.com/fitsair-platform/service-groupdesk/internal/application"
	"github.com/fitsair-platform/service-groupdesk/internal/config"
	"github.com/fitsair-platform/service-groupdesk/internal/handler"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/auth"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/database"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/health"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/kafka"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/logger"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/middleware"
	"github.com/fitsair-platform/service-groupdesk/internal/platform/storage"
	"github.com/fitsair-platform/service-groupdesk/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-groupdesk")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-groupdesk",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.GroupRequestModel{},
			&repository.QuotationModel{},
			&repository.PaymentModel{},
			&repository.AttachmentModel{},
			&repository.UserModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		dbURL := dbConfig.DatabaseURL()
		if err := database.RunMigrations(dbURL, "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.TokenTTL)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize attachment blob store
	blobStore, err := storage.NewFileStore(cfg.AttachmentDir)
	if err != nil {
		log.Fatal("failed to create attachment store", zap.Error(err))
	}

	// Initialize repositories
	requestRepo := repository.NewGormGroupRequestRepository(db)
	quotationRepo := repository.NewGormQuotationRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)
	attachmentRepo := repository.NewGormAttachmentRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	txManager := database.NewTxManager(db)

	// Initialize application services
	requestService := application.NewGroupRequestService(
		requestRepo,
		quotationRepo,
		paymentRepo,
		userRepo,
		kafkaProducer,
		cfg.WorkflowConfig,
		log,
	)
	quotationService := application.NewQuotationService(
		quotationRepo,
		requestRepo,
		paymentRepo,
		txManager,
		kafkaProducer,
		cfg.WorkflowConfig,
		log,
	)
	paymentService := application.NewPaymentService(
		paymentRepo,
		attachmentRepo,
		blobStore,
		kafkaProducer,
		log,
	)
	userService := application.NewUserService(userRepo, jwtManager, log)

	// Start the remittance consumer and expiry sweep in goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "groupdesk-service"
	remittanceConsumer := application.NewRemittanceConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		paymentService,
		log,
	)
	defer func() { _ = remittanceConsumer.Close() }()

	go func() {
		log.Info("starting remittance consumer")
		if err := remittanceConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("remittance consumer error", zap.Error(err))
		}
	}()

	sweeper := application.NewExpirySweeper(quotationRepo, cfg.WorkflowConfig.ExpirySweepInterval, log)
	go sweeper.Run(ctx)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(userService)
	requestHandler := handler.NewGroupRequestHandler(requestService)
	quotationHandler := handler.NewQuotationHandler(quotationService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	adminHandler := handler.NewAdminHandler(userService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-groupdesk")
	healthHandler.RegisterRoutes(router)

	// Register routes
	authHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	requestHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	quotationHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	paymentHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

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

	log.Info("shutting down service-groupdesk...")

	// Stop the consumer and sweeper
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-groupdesk stopped")
}
