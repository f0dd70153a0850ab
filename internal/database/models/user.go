package models

import "time"

// Subscription statuses as reported through Paddle webhooks.
const (
	SubscriptionInactive  = "inactive"
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
)

type User struct {
	Base
	Username     string `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	IsVerified   bool   `gorm:"default:false" json:"is_verified"`

	// VerificationToken is a single-use slot shared by email verification and
	// password reset: issuing either kind invalidates the other. Non-nil only
	// between issuance and consumption.
	VerificationToken *string `gorm:"index" json:"-"`

	// Paddle subscription state
	SubscriptionID        *string    `gorm:"index" json:"subscription_id,omitempty"`
	PlanID                *string    `json:"plan_id,omitempty"`
	SubscriptionStatus    string     `gorm:"default:'inactive'" json:"subscription_status"`
	IsPremium             bool       `gorm:"default:false" json:"is_premium"`
	SubscriptionStartedAt *time.Time `json:"subscription_started_at,omitempty"`
	SubscriptionEndedAt   *time.Time `json:"subscription_ended_at,omitempty"`

	// Free tier usage tracking
	APIUsageCount int `gorm:"default:0" json:"api_usage_count"`
	APIUsageLimit int `gorm:"default:10" json:"api_usage_limit"`

	// Relationships
	Analyses []EmailAnalysis `gorm:"foreignKey:UserID" json:"analyses,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// HasActiveSubscription reports whether premium features are unlocked.
func (u *User) HasActiveSubscription() bool {
	return u.SubscriptionStatus == SubscriptionActive
}
