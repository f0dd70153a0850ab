package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mailsense/mailsense/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrTokenNotFound      = errors.New("invalid or expired token")
)

// EmailEnqueuer schedules outbound account emails. Delivery is best-effort
// and must never block or fail the request that triggered it.
type EmailEnqueuer interface {
	EnqueueVerificationEmail(email, token string) error
	EnqueuePasswordResetEmail(email, token string) error
}

const defaultFreeTierLimit = 10

type Service struct {
	db            *gorm.DB
	jwt           *JWTService
	emails        EmailEnqueuer
	freeTierLimit int
	logger        *slog.Logger
}

// NewService wires the account service. freeTierLimit is the analysis quota
// stamped onto new accounts; zero or negative falls back to the default.
func NewService(db *gorm.DB, jwt *JWTService, emails EmailEnqueuer, freeTierLimit int, logger *slog.Logger) *Service {
	if freeTierLimit <= 0 {
		freeTierLimit = defaultFreeTierLimit
	}
	return &Service{db: db, jwt: jwt, emails: emails, freeTierLimit: freeTierLimit, logger: logger}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	var existing models.User
	if err := s.db.WithContext(ctx).Where("username = ?", input.Username).First(&existing).Error; err == nil {
		return nil, ErrUsernameTaken
	}
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	token, err := generateVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("generating verification token: %w", err)
	}

	user := models.User{
		Username:           input.Username,
		Email:              input.Email,
		PasswordHash:       hash,
		IsVerified:         false,
		VerificationToken:  &token,
		SubscriptionStatus: models.SubscriptionInactive,
		APIUsageLimit:      s.freeTierLimit,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	s.sendVerification(user.Email, token)

	return &user, nil
}

// VerifyEmail consumes a verification token. The match and the clear happen
// in one conditional UPDATE so a token can never be consumed twice, even by
// concurrent requests.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("verification_token = ?", token).
		Updates(map[string]interface{}{
			"is_verified":        true,
			"verification_token": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

func (s *Service) Login(ctx context.Context, input LoginInput) (string, *models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", input.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same error as a password mismatch so callers cannot probe
			// for registered usernames.
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		// Re-issue a fresh token and resend the verification email.
		token, err := generateVerificationToken()
		if err == nil {
			err = s.db.WithContext(ctx).Model(&user).
				Update("verification_token", token).Error
		}
		if err != nil {
			s.logger.Error("re-issuing verification token", "error", err)
		} else {
			s.sendVerification(user.Email, token)
		}
		return "", nil, ErrEmailNotVerified
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		return "", nil, err
	}

	return token, &user, nil
}

// RequestPasswordReset issues a reset token into the shared token slot. Any
// pending verification token is overwritten, so an unverified user who asks
// for a reset invalidates their verification link.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	token, err := generateVerificationToken()
	if err != nil {
		return fmt.Errorf("generating reset token: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("verification_token", token).Error; err != nil {
		return err
	}

	if err := s.emails.EnqueuePasswordResetEmail(user.Email, token); err != nil {
		s.logger.Error("enqueueing password reset email", "error", err)
	}

	return nil
}

// ResetPassword consumes a reset token and swaps in the new hash with the
// same compare-and-clear UPDATE used for verification.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("verification_token = ?", token).
		Updates(map[string]interface{}{
			"password_hash":      hash,
			"verification_token": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) sendVerification(email, token string) {
	if err := s.emails.EnqueueVerificationEmail(email, token); err != nil {
		s.logger.Error("enqueueing verification email", "error", err)
	}
}

// generateVerificationToken returns a URL-safe token with 32 bytes of entropy.
func generateVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
