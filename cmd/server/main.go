package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"business_manager/internal/cache"
	"business_manager/internal/config"
	"business_manager/internal/database"
	"business_manager/internal/handlers"
	"business_manager/internal/logger"
	"business_manager/internal/migrations"
	"business_manager/internal/redis"
	"business_manager/internal/repository"
	"business_manager/internal/services"
	"business_manager/pkg/sms"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer zl.Sync()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.DBLogLevel)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := migrations.RunMigrations(db, cfg.SeedDefaults, zl); err != nil {
		zl.Fatal("failed to migrate database", zap.Error(err))
	}

	// Report cache: Redis when configured so every process shares it
	var reportCache cache.Cache
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.Initialize(cfg.RedisURL)
		if err != nil {
			zl.Fatal("failed to connect to Redis", zap.Error(err))
		}
		reportCache = cache.NewRedis(redisClient, time.Duration(cfg.CacheTTL)*time.Second, cfg.CacheSize)
	} else {
		reportCache, err = cache.NewMemory(cfg.CacheSize)
		if err != nil {
			zl.Fatal("failed to build report cache", zap.Error(err))
		}
	}

	var notifier services.Notifier = services.LogNotifier{Logger: zl}
	if cfg.SMSEnabled {
		notifier = sms.NewClient(cfg.SMSAPIURL, cfg.SMSAccountSID, cfg.SMSAuthToken, cfg.SMSFrom)
	}

	// Initialize services
	repos := repository.NewRepositories(db)
	notifications := services.NewNotificationService(notifier, zl)
	orderService := services.NewOrderService(repos, notifications, reportCache, zl)
	paymentService := services.NewPaymentService(repos, services.LogInitiator{Logger: zl}, reportCache, zl)
	catalogService := services.NewCatalogService(repos, zl)
	customerService := services.NewCustomerService(repos, zl)
	expenseService := services.NewExpenseService(repos, reportCache, zl)
	analyticsService := services.NewAnalyticsService(repos, reportCache, zl)

	// Initialize handlers
	apiHandler := &handlers.APIHandler{
		Orders:    handlers.NewOrderHandler(orderService, paymentService, services.NewExportService(repos), zl),
		Catalog:   handlers.NewCatalogHandler(catalogService, zl),
		Customers: handlers.NewCustomerHandler(customerService, zl),
		Expenses:  handlers.NewExpenseHandler(expenseService, zl),
		Analytics: handlers.NewAnalyticsHandler(analyticsService),
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	apiHandler.RegisterRoutes(router)

	srv := &http.Server{Addr: ":" + cfg.ServerPort, Handler: router}
	go func() {
		zl.Info("server starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server shutdown failed", zap.Error(err))
	}

	// Let queued customer messages drain before exit
	notifications.Wait()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			zl.Warn("failed to close Redis", zap.Error(err))
		}
	}
}
