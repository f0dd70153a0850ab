package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/mailsense/mailsense/internal/database/models"
)

// Authenticator defines the interface for user account operations.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, input LoginInput) (string, *models.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	GenerateToken(userID uuid.UUID, username, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
)
