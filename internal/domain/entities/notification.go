package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// NotificationKind selects the template used for a message
type NotificationKind string

const (
	NotificationKindStatusUpdate       NotificationKind = "status_update"
	NotificationKindDocumentOutcome    NotificationKind = "document_outcome"
	NotificationKindExpirationReminder NotificationKind = "expiration_reminder"
)

// NotificationTypeVerification is the feed type of every record written here
const NotificationTypeVerification = "verification"

// NotificationContext carries what templates may render
type NotificationContext struct {
	CaseID          uuid.UUID
	ProviderName    string
	PreviousStatus  VerificationStatus
	NewStatus       VerificationStatus
	RejectionReason string
	Notes           string
	DocumentType    DocumentType
	DocumentName    string
	DocumentStatus  DocumentStatus
	DaysRemaining   int
	ExpirationDate  time.Time
}

// Notification is an in-app feed record
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	Data      null.JSON `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProviderContact is where outbound mail for a provider goes
type ProviderContact struct {
	ProviderID  uuid.UUID `json:"providerId"`
	Email       string    `json:"email" validate:"required,email,max=255"`
	DisplayName string    `json:"displayName" validate:"omitempty,max=255"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
