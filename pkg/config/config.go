package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	SMTP      SMTPConfig
	Paddle    PaddleConfig
	OpenAI    OpenAIConfig
	Sentiment SentimentConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
	// APIDomain is the externally visible base URL used in email links.
	APIDomain string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type PaddleConfig struct {
	// WebhookSecret keys the ts=...;h1=... signed-header scheme.
	WebhookSecret string
	// LegacyKey authenticates the older API-key-trust scheme; empty disables it.
	LegacyKey string
	VendorID  string
	ProductID string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type SentimentConfig struct {
	// RequireSubscription puts /sentiment behind the subscription gate.
	RequireSubscription bool
	FreeTierLimit       int
}

type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (j *JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

func (s *SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *SMTPConfig) FromAddress() string {
	if s.From != "" {
		return s.From
	}
	return s.User
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("API_DOMAIN", "http://localhost:8080")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "mailsense")
	v.SetDefault("DATABASE_PASSWORD", "mailsense_secret")
	v.SetDefault("DATABASE_NAME", "mailsense")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("SENTIMENT_REQUIRE_SUBSCRIPTION", false)
	v.SetDefault("SENTIMENT_FREE_TIER_LIMIT", 10)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	// Load from .env file if present
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Host:      v.GetString("SERVER_HOST"),
			Port:      v.GetInt("SERVER_PORT"),
			Env:       v.GetString("SERVER_ENV"),
			APIDomain: v.GetString("API_DOMAIN"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DATABASE_HOST"),
			Port:     v.GetInt("DATABASE_PORT"),
			User:     v.GetString("DATABASE_USER"),
			Password: v.GetString("DATABASE_PASSWORD"),
			Name:     v.GetString("DATABASE_NAME"),
			SSLMode:  v.GetString("DATABASE_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		Paddle: PaddleConfig{
			WebhookSecret: v.GetString("PADDLE_WEBHOOK_SECRET"),
			LegacyKey:     v.GetString("PADDLE_LEGACY_KEY"),
			VendorID:      v.GetString("PADDLE_VENDOR_ID"),
			ProductID:     v.GetString("PADDLE_PRODUCT_ID"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  v.GetString("OPENAI_API_KEY"),
			Model:   v.GetString("OPENAI_MODEL"),
			BaseURL: v.GetString("OPENAI_BASE_URL"),
		},
		Sentiment: SentimentConfig{
			RequireSubscription: v.GetBool("SENTIMENT_REQUIRE_SUBSCRIPTION"),
			FreeTierLimit:       v.GetInt("SENTIMENT_FREE_TIER_LIMIT"),
		},
		RateLimit: RateLimitConfig{
			Requests:      v.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	return cfg, nil
}
