//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mailsense/mailsense/internal/auth"
	"github.com/mailsense/mailsense/internal/database"
	"github.com/mailsense/mailsense/pkg/config"
	"github.com/mailsense/mailsense/pkg/util"
)

// discardEnqueuer skips email delivery; the seeded user is verified directly.
type discardEnqueuer struct{}

func (discardEnqueuer) EnqueueVerificationEmail(email, token string) error  { return nil }
func (discardEnqueuer) EnqueuePasswordResetEmail(email, token string) error { return nil }

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService, discardEnqueuer{}, cfg.Sentiment.FreeTierLimit, logger)

	username := os.Getenv("SEED_USERNAME")
	email := os.Getenv("SEED_EMAIL")
	password := os.Getenv("SEED_PASSWORD")

	if username == "" {
		username = "devuser"
	}
	if email == "" {
		email = "dev@example.com"
	}
	if password == "" {
		password = "devpassword1"
	}

	user, err := authService.Register(context.Background(), auth.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		if err == auth.ErrUsernameTaken || err == auth.ErrEmailTaken {
			fmt.Printf("Seed user already exists: %s\n", username)
			return
		}
		log.Fatalf("failed to create seed user: %v", err)
	}

	if err := db.Model(user).Update("is_verified", true).Error; err != nil {
		log.Fatalf("failed to verify seed user: %v", err)
	}

	fmt.Printf("Seed user created successfully!\n")
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Email: %s\n", user.Email)
}
