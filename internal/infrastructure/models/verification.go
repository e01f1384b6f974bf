package models

import (
	"time"

	"github.com/google/uuid"
)

type VerificationCase struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProviderID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Level            string    `gorm:"type:varchar(20);not null"`
	Status           string    `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	IsVerified       bool      `gorm:"not null;default:false"`
	VerificationDate *time.Time
	ExpirationDate   *time.Time `gorm:"index"`
	RejectionReason  *string    `gorm:"type:text"`
	ReviewerID       *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Documents []VerificationDocument `gorm:"foreignKey:CaseID"`
}

func (VerificationCase) TableName() string {
	return "verification_cases"
}

type VerificationDocument struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	CaseID           uuid.UUID `gorm:"type:uuid;not null;index"`
	DocumentType     string    `gorm:"type:varchar(50);not null"`
	Status           string    `gorm:"type:varchar(20);not null;default:'PENDING'"`
	StorageRef       string    `gorm:"type:text;not null"`
	DisplayName      string    `gorm:"type:varchar(255);not null"`
	ContentType      string    `gorm:"type:varchar(100);not null"`
	SizeBytes        int64     `gorm:"not null"`
	Checksum         string    `gorm:"type:varchar(128)"`
	DocumentNumber   *string   `gorm:"type:varchar(100)"`
	IssuingAuthority *string   `gorm:"type:varchar(255)"`
	ExpirationDate   *time.Time
	RejectionReason  *string    `gorm:"type:text"`
	VerifiedBy       *uuid.UUID `gorm:"type:uuid"`
	VerifiedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (VerificationDocument) TableName() string {
	return "verification_documents"
}

type VerificationHistory struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CaseID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_history_case_action"`
	Action         string     `gorm:"type:varchar(50);not null;index:idx_history_case_action"`
	PreviousStatus string     `gorm:"type:varchar(20);not null"`
	NewStatus      string     `gorm:"type:varchar(20);not null"`
	Notes          *string    `gorm:"type:text"`
	PerformedBy    *uuid.UUID `gorm:"type:uuid"`
	ThresholdDays  *int
	DaysRemaining  *int
	CreatedAt      time.Time
}

func (VerificationHistory) TableName() string {
	return "verification_history"
}
