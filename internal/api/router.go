package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/mailsense/mailsense/internal/api/handlers"
	"github.com/mailsense/mailsense/internal/api/middleware"
	"github.com/mailsense/mailsense/internal/auth"
	"github.com/mailsense/mailsense/internal/billing"
	"github.com/mailsense/mailsense/internal/sentiment"
	"github.com/mailsense/mailsense/pkg/config"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB               *gorm.DB
	Redis            *redis.Client
	Logger           *slog.Logger
	JWTService       *auth.JWTService
	AuthService      *auth.Service
	BillingService   *billing.Service
	SentimentService *sentiment.Service
	Paddle           *config.PaddleConfig
	Sentiment        *config.SentimentConfig
	AllowedOrigins   []string
	RateLimitReqs    int
	RateLimitSecs    int
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	subscriptionHandler := handlers.NewSubscriptionHandler(cfg.AuthService, cfg.Paddle)
	sentimentHandler := handlers.NewSentimentHandler(cfg.SentimentService, cfg.AuthService)
	webhookHandler := handlers.NewWebhookHandler(cfg.BillingService, cfg.Paddle, cfg.Logger)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public user endpoints
		r.Post("/users/register", authHandler.Register)
		r.Get("/users/verify", authHandler.Verify)
		r.Post("/users/login", authHandler.Login)
		r.Post("/users/request-password-reset", authHandler.RequestPasswordReset)
		r.Post("/users/reset-password", authHandler.ResetPassword)
		r.Get("/users/pricing", subscriptionHandler.Pricing)

		// Webhooks authenticate themselves
		r.Post("/webhooks/paddle", webhookHandler.Paddle)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			r.Get("/users/me", func(w http.ResponseWriter, r *http.Request) {
				// The token subject is the username.
				user, err := cfg.AuthService.GetUserByUsername(r.Context(), middleware.GetUsername(r.Context()))
				if err != nil {
					http.Error(w, "User not found", http.StatusNotFound)
					return
				}
				writeJSON(w, http.StatusOK, user)
			})

			r.Get("/users/subscription/status", subscriptionHandler.Status)
			r.Post("/users/subscription/checkout", subscriptionHandler.CreateCheckout)

			r.Route("/sentiment", func(r chi.Router) {
				if cfg.Sentiment != nil && cfg.Sentiment.RequireSubscription {
					r.Use(middleware.RequireSubscription(cfg.DB))
				}
				r.Post("/analyze", sentimentHandler.Analyze)
				r.Get("/history", sentimentHandler.History)
			})
		})
	})

	return &Router{r}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
