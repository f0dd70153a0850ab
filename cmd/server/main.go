package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mailsense/mailsense/internal/api"
	"github.com/mailsense/mailsense/internal/auth"
	"github.com/mailsense/mailsense/internal/billing"
	"github.com/mailsense/mailsense/internal/database"
	"github.com/mailsense/mailsense/internal/sentiment"
	"github.com/mailsense/mailsense/internal/tasks"
	"github.com/mailsense/mailsense/pkg/config"
	"github.com/mailsense/mailsense/pkg/queue"
	"github.com/mailsense/mailsense/pkg/util"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting MailSense server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis", "error", err)
		redisClient = nil
	}

	// Asynq client for background email delivery
	asynqClient := queue.NewClient(&cfg.Redis)
	emailEnqueuer := tasks.NewEnqueuer(asynqClient)

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService, emailEnqueuer, cfg.Sentiment.FreeTierLimit, logger)
	billingService := billing.NewService(db, logger)
	completionClient := sentiment.NewOpenAIClient(&cfg.OpenAI)
	sentimentService := sentiment.NewService(db, completionClient, logger)

	// Create router
	router := api.NewRouter(api.RouterConfig{
		DB:               db,
		Redis:            redisClient,
		Logger:           logger,
		JWTService:       jwtService,
		AuthService:      authService,
		BillingService:   billingService,
		SentimentService: sentimentService,
		Paddle:           &cfg.Paddle,
		Sentiment:        &cfg.Sentiment,
		RateLimitReqs:    cfg.RateLimit.Requests,
		RateLimitSecs:    cfg.RateLimit.WindowSeconds,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	asynqClient.Close()

	if redisClient != nil {
		redisClient.Close()
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info("server stopped")
}
