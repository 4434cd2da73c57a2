package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chickenshop-admin/config"
	"chickenshop-admin/internal/api"
	"chickenshop-admin/internal/broker"
	"chickenshop-admin/internal/redisclient"
	"chickenshop-admin/internal/service"
	"chickenshop-admin/internal/session"
	"chickenshop-admin/internal/store"
	"chickenshop-admin/internal/util"
	"chickenshop-admin/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting chickenshop admin", zap.String("env", cfg.Server.Env))

	tp, err := util.InitTracer("chickenshop-admin", cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database connected")

	viewTTL := time.Duration(cfg.Redis.ViewTTLSeconds) * time.Second
	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, viewTTL)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Redis connected")

	orderProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer orderProducer.Close()
	notificationProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicNotifications)
	defer notificationProducer.Close()
	logger.Info("Kafka producers initialized",
		zap.String("order_topic", cfg.Kafka.TopicOrder),
		zap.String("notification_topic", cfg.Kafka.TopicNotifications))

	location, err := time.LoadLocation(cfg.Dashboard.DisplayTimezone)
	if err != nil {
		logger.Warn("Unknown display timezone, using UTC",
			zap.String("timezone", cfg.Dashboard.DisplayTimezone),
			zap.Error(err))
		location = time.UTC
	}

	sessions := session.ContextResolver{}
	jwtProvider := session.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Auth.JWTExpireHours)

	statusController := service.NewOrderStatusController(
		db,
		sessions,
		broker.NewNotifier(notificationProducer),
		redisClient,
		broker.NewEventPublisher(orderProducer),
	)
	reporter := service.NewReporter(db, cfg.Dashboard.LatestUsersLimit, location)
	orderViews := service.NewOrderViewService(db, redisClient)
	notifications := service.NewNotificationService(db, sessions)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	notificationConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicNotifications, cfg.Kafka.ConsumerGroup)
	notificationWorker := worker.NewNotificationWorker(notificationConsumer, db, notifications.Deliver)
	go func() {
		if err := notificationWorker.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Notification worker error", zap.Error(err))
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(session.Middleware(jwtProvider))
	handler := api.NewHandler(statusController, reporter, orderViews, notifications, map[string]api.Pinger{
		"postgres": db,
		"redis":    redisClient,
	})
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if err := notificationWorker.Stop(); err != nil {
		logger.Error("Failed to stop notification worker", zap.Error(err))
	}

	logger.Info("Server exited")
}
