package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mailsense/mailsense/internal/database/models"
	"gorm.io/gorm"
)

var ErrNoMatchingUser = errors.New("no user matches webhook event")

// Service applies subscription lifecycle events to user records.
type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// ProcessEvent applies a verified webhook event. Transitions are idempotent:
// replaying an event yields the same end state.
func (s *Service) ProcessEvent(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case EventSubscriptionCreated:
		return s.handleCreated(ctx, ev)
	case EventSubscriptionUpdated:
		return s.handleUpdated(ctx, ev)
	case EventSubscriptionCancelled:
		return s.handleCancelled(ctx, ev)
	case EventPaymentSucceeded:
		s.logger.Info("subscription payment succeeded",
			"subscription_id", ev.SubscriptionID)
		return nil
	default:
		s.logger.Debug("ignoring unknown webhook event", "event", ev.RawName)
		return nil
	}
}

func (s *Service) handleCreated(ctx context.Context, ev Event) error {
	user, err := s.findUser(ctx, ev)
	if err != nil {
		return err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"subscription_status":     models.SubscriptionActive,
		"is_premium":              true,
		"subscription_started_at": now,
		"subscription_ended_at":   nil,
	}
	if ev.SubscriptionID != "" {
		updates["subscription_id"] = ev.SubscriptionID
	}
	if ev.PlanID != "" {
		updates["plan_id"] = ev.PlanID
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return fmt.Errorf("activating subscription: %w", err)
	}

	s.logger.Info("subscription created",
		"user_id", user.ID, "subscription_id", ev.SubscriptionID)
	return nil
}

func (s *Service) handleUpdated(ctx context.Context, ev Event) error {
	user, err := s.findUser(ctx, ev)
	if err != nil {
		return err
	}

	status := ev.Status
	if status == "" {
		status = models.SubscriptionInactive
	}

	updates := map[string]interface{}{
		"subscription_status": status,
		"is_premium":          status == models.SubscriptionActive,
	}
	if ev.PlanID != "" {
		updates["plan_id"] = ev.PlanID
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return fmt.Errorf("updating subscription: %w", err)
	}

	s.logger.Info("subscription updated",
		"user_id", user.ID, "status", status)
	return nil
}

func (s *Service) handleCancelled(ctx context.Context, ev Event) error {
	user, err := s.findUser(ctx, ev)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"subscription_status":   models.SubscriptionCancelled,
		"is_premium":            false,
		"subscription_ended_at": time.Now(),
	}).Error; err != nil {
		return fmt.Errorf("cancelling subscription: %w", err)
	}

	s.logger.Info("subscription cancelled",
		"user_id", user.ID, "subscription_id", ev.SubscriptionID)
	return nil
}

// findUser resolves the event's target user: by subscription id once one is
// stored, by customer email for creation events.
func (s *Service) findUser(ctx context.Context, ev Event) (*models.User, error) {
	var user models.User

	if ev.SubscriptionID != "" {
		err := s.db.WithContext(ctx).
			Where("subscription_id = ?", ev.SubscriptionID).
			First(&user).Error
		if err == nil {
			return &user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if ev.Email != "" {
		err := s.db.WithContext(ctx).
			Where("email = ?", ev.Email).
			First(&user).Error
		if err == nil {
			return &user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return nil, ErrNoMatchingUser
}
