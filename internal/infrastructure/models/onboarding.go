package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type OnboardingProgress struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ProviderID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	CurrentStep    string         `gorm:"type:varchar(30);not null"`
	CompletedSteps pq.StringArray `gorm:"type:text[]"`
	IsCompleted    bool           `gorm:"not null;default:false"`
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (OnboardingProgress) TableName() string {
	return "onboarding_progress"
}
