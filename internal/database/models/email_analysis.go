package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailAnalysis is one sentiment/tone analysis result. Rows are written once
// and never updated.
type EmailAnalysis struct {
	Base
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	EmailText  string    `gorm:"type:text;not null" json:"email_text"`
	Sentiment  *string   `gorm:"size:50" json:"sentiment"`
	Tone       *string   `gorm:"size:50" json:"tone"`
	AnalyzedAt time.Time `json:"analyzed_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (EmailAnalysis) TableName() string {
	return "email_analyses"
}
