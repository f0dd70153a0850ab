package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mailsense/mailsense/internal/database/models"
	"gorm.io/gorm"
)

var (
	// ErrUpstream covers any completion-service failure. Callers see one
	// generic class regardless of whether the network, quota, or response
	// shape was at fault.
	ErrUpstream = errors.New("completion service failed")

	ErrUsageLimitReached = errors.New("api usage limit reached")
)

const analysisPrompt = "Analyze the following email for sentiment and tone. Return both as short labels.\n\nEmail:\n%s"

type Service struct {
	db     *gorm.DB
	client Client
	logger *slog.Logger
}

func NewService(db *gorm.DB, client Client, logger *slog.Logger) *Service {
	return &Service{db: db, client: client, logger: logger}
}

// Analyze sends the email text to the completion service once (no retry, no
// streaming), extracts labels, and persists the result for the caller.
// Free-tier users are limited by their usage quota; premium users are not
// counted.
func (s *Service) Analyze(ctx context.Context, user *models.User, emailText string) (*models.EmailAnalysis, error) {
	if !user.IsPremium && user.APIUsageCount >= user.APIUsageLimit {
		return nil, ErrUsageLimitReached
	}

	prompt := fmt.Sprintf(analysisPrompt, emailText)

	result, err := s.client.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("completion request failed", "user_id", user.ID, "error", err)
		return nil, ErrUpstream
	}

	sentiment, tone := ParseLabels(result)

	analysis := models.EmailAnalysis{
		UserID:     user.ID,
		EmailText:  emailText,
		Sentiment:  sentiment,
		Tone:       tone,
		AnalyzedAt: time.Now(),
	}

	if err := s.db.WithContext(ctx).Create(&analysis).Error; err != nil {
		return nil, err
	}

	if !user.IsPremium {
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", user.ID).
			UpdateColumn("api_usage_count", gorm.Expr("api_usage_count + 1")).Error; err != nil {
			s.logger.Error("incrementing usage counter", "user_id", user.ID, "error", err)
		}
	}

	return &analysis, nil
}

// History returns the caller's analyses, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]models.EmailAnalysis, error) {
	var analyses []models.EmailAnalysis
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("analyzed_at DESC").
		Find(&analyses).Error
	if err != nil {
		return nil, err
	}
	return analyses, nil
}
