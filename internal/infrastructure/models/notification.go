package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Message   string    `gorm:"type:text;not null"`
	Type      string    `gorm:"type:varchar(50);not null"`
	Read      bool      `gorm:"not null;default:false"`
	Data      *string   `gorm:"type:jsonb"`
	CreatedAt time.Time
}

func (Notification) TableName() string {
	return "notifications"
}

type ProviderContact struct {
	ProviderID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email       string    `gorm:"type:varchar(255);not null"`
	DisplayName string    `gorm:"type:varchar(255)"`
	UpdatedAt   time.Time
}

func (ProviderContact) TableName() string {
	return "provider_contacts"
}

// VerificationBlob holds document bytes for the database-backed document store
type VerificationBlob struct {
	Path        string `gorm:"type:text;primaryKey"`
	ContentType string `gorm:"type:varchar(100);not null"`
	SizeBytes   int64  `gorm:"not null"`
	Checksum    string `gorm:"type:varchar(128);not null"`
	Data        []byte `gorm:"type:bytea;not null"`
	CreatedAt   time.Time
}

func (VerificationBlob) TableName() string {
	return "verification_blobs"
}
