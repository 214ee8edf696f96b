package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/api/handlers"
	"github.com/youcodecowboy/groovy-demo-sub007/internal/application"
	kafkaPub "github.com/youcodecowboy/groovy-demo-sub007/internal/infrastructure/kafka"
	mongoRepo "github.com/youcodecowboy/groovy-demo-sub007/internal/infrastructure/mongodb"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/kafka"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/logging"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/metrics"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/middleware"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/mongodb"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/tracing"
)

const serviceName = "item-tracking"

func main() {
	// Setup enhanced logger
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting item-tracking API")

	// Load configuration
	config := loadConfig()
	ctx := context.Background()

	// Initialize OpenTelemetry tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Initialize Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// Initialize MongoDB
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	db := mongoClient.Database()

	// Initialize repositories
	workflowRepo := mongoRepo.NewWorkflowRepository(db)
	itemRepo := mongoRepo.NewItemRepository(db)
	historyRepo := mongoRepo.NewItemHistoryRepository(db)
	completedRepo := mongoRepo.NewCompletedItemRepository(db)
	exceptionRepo := mongoRepo.NewItemExceptionRepository(db)
	locationRepo := mongoRepo.NewLocationRepository(db)
	auditRepo := mongoRepo.NewAuditRepository(db)
	archiver := mongoRepo.NewArchiver(mongoClient, logger)

	// Initialize Kafka producer with circuit breaker
	producer := kafka.NewProductionProducer(config.Kafka, m, logger)
	defer func() {
		if err := producer.Close(); err != nil {
			logger.WithError(err).Error("Failed to close Kafka producer")
		}
	}()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	publisher := kafkaPub.NewEventPublisher(producer, serviceName, logger)

	// Initialize application services
	itemService := application.NewItemService(
		itemRepo,
		historyRepo,
		workflowRepo,
		completedRepo,
		exceptionRepo,
		locationRepo,
		archiver,
		auditRepo,
		publisher,
		m,
		logger,
	)
	workflowService := application.NewWorkflowService(workflowRepo, auditRepo, logger)
	locationService := application.NewLocationService(locationRepo, itemRepo, auditRepo, m, logger)
	auditService := application.NewAuditService(auditRepo, logger)

	// Setup Gin router with middleware
	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)

	// Add metrics middleware
	router.Use(middleware.MetricsMiddleware(m))

	// Add tracing middleware
	router.Use(middleware.SimpleTracingMiddleware(serviceName))

	// Handle 404 and 405 errors
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	// Health check endpoints
	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))

	// Metrics endpoint
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	// API v1 routes
	apiV1 := router.Group("/api/v1")

	itemHandlers := handlers.NewItemHandlers(itemService, locationService, logger)
	itemHandlers.RegisterRoutes(apiV1)

	workflowHandlers := handlers.NewWorkflowHandlers(workflowService, logger)
	workflowHandlers.RegisterRoutes(apiV1)

	locationHandlers := handlers.NewLocationHandlers(locationService, logger)
	locationHandlers.RegisterRoutes(apiV1)

	auditHandlers := handlers.NewAuditHandlers(auditService, logger)
	auditHandlers.RegisterRoutes(apiV1)

	// Start server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
}

func loadConfig() *Config {
	mongoConfig := mongodb.DefaultConfig()
	mongoConfig.URI = getEnv("MONGODB_URI", "mongodb://localhost:27017")
	mongoConfig.Database = getEnv("MONGODB_DATABASE", "tracking")

	kafkaConfig := kafka.DefaultConfig()
	kafkaConfig.Brokers = []string{getEnv("KAFKA_BROKERS", "localhost:9092")}
	kafkaConfig.ClientID = serviceName

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		MongoDB:    mongoConfig,
		Kafka:      kafkaConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
