package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// VerificationLevel is the tier of rigor a provider is verified at
type VerificationLevel string

const (
	VerificationLevelBasic    VerificationLevel = "BASIC"
	VerificationLevelStandard VerificationLevel = "STANDARD"
	VerificationLevelPremium  VerificationLevel = "PREMIUM"
)

// Valid reports whether l is a known level
func (l VerificationLevel) Valid() bool {
	switch l {
	case VerificationLevelBasic, VerificationLevelStandard, VerificationLevelPremium:
		return true
	}
	return false
}

// ParseVerificationLevel accepts any casing.
func ParseVerificationLevel(raw string) (VerificationLevel, bool) {
	l := VerificationLevel(strings.ToUpper(strings.TrimSpace(raw)))
	return l, l.Valid()
}

// VerificationStatus represents the case lifecycle status
type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "PENDING"
	VerificationStatusInReview VerificationStatus = "IN_REVIEW"
	VerificationStatusApproved VerificationStatus = "APPROVED"
	VerificationStatusRejected VerificationStatus = "REJECTED"
	VerificationStatusExpired  VerificationStatus = "EXPIRED"
)

// Valid reports whether s is a known status
func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationStatusPending, VerificationStatusInReview, VerificationStatusApproved,
		VerificationStatusRejected, VerificationStatusExpired:
		return true
	}
	return false
}

// ParseVerificationStatus accepts any casing.
func ParseVerificationStatus(raw string) (VerificationStatus, bool) {
	s := VerificationStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// CanSubmit reports whether a case in s may be moved into review.
func (s VerificationStatus) CanSubmit() bool {
	switch s {
	case VerificationStatusPending, VerificationStatusRejected:
		return true
	case VerificationStatusInReview, VerificationStatusApproved, VerificationStatusExpired:
		return false
	}
	return false
}

// CanBeDecided reports whether an admin may approve or reject a case in s.
func (s VerificationStatus) CanBeDecided() bool {
	switch s {
	case VerificationStatusPending, VerificationStatusInReview:
		return true
	case VerificationStatusApproved, VerificationStatusRejected, VerificationStatusExpired:
		return false
	}
	return false
}

// AllVerificationStatuses lists statuses in lifecycle order
func AllVerificationStatuses() []VerificationStatus {
	return []VerificationStatus{
		VerificationStatusPending,
		VerificationStatusInReview,
		VerificationStatusApproved,
		VerificationStatusRejected,
		VerificationStatusExpired,
	}
}

// DocumentType is a fixed category of evidence
type DocumentType string

const (
	DocumentTypeIdentity        DocumentType = "identity"
	DocumentTypeBusinessLicense DocumentType = "business_license"
	DocumentTypeInsurance       DocumentType = "insurance"
	DocumentTypeCertification   DocumentType = "certification"
	DocumentTypeTaxDocument     DocumentType = "tax_document"
	DocumentTypeReference       DocumentType = "reference"
	DocumentTypePortfolio       DocumentType = "portfolio"
	DocumentTypeBackgroundCheck DocumentType = "background_check"
)

// Valid reports whether t is a known document type
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeIdentity, DocumentTypeBusinessLicense, DocumentTypeInsurance, DocumentTypeCertification,
		DocumentTypeTaxDocument, DocumentTypeReference, DocumentTypePortfolio, DocumentTypeBackgroundCheck:
		return true
	}
	return false
}

// Label is the human readable name used in notifications.
func (t DocumentType) Label() string {
	switch t {
	case DocumentTypeIdentity:
		return "Identity Document"
	case DocumentTypeBusinessLicense:
		return "Business License"
	case DocumentTypeInsurance:
		return "Insurance Certificate"
	case DocumentTypeCertification:
		return "Professional Certification"
	case DocumentTypeTaxDocument:
		return "Tax Document"
	case DocumentTypeReference:
		return "Reference"
	case DocumentTypePortfolio:
		return "Portfolio"
	case DocumentTypeBackgroundCheck:
		return "Background Check"
	}
	return string(t)
}

// DocumentStatus represents the review state of a single document
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "PENDING"
	DocumentStatusApproved DocumentStatus = "APPROVED"
	DocumentStatusRejected DocumentStatus = "REJECTED"
	DocumentStatusExpired  DocumentStatus = "EXPIRED"
)

// HistoryAction tags a history entry
type HistoryAction string

const (
	HistoryActionSubmitted          HistoryAction = "submitted"
	HistoryActionRenewalInitiated   HistoryAction = "renewal_initiated"
	HistoryActionExpirationReminder HistoryAction = "expiration_reminder"
	HistoryActionApproved           HistoryAction = "approved"
	HistoryActionRejected           HistoryAction = "rejected"
	HistoryActionExpired            HistoryAction = "expired"
	HistoryActionReopened           HistoryAction = "reopened"
	HistoryActionDocumentApproved   HistoryAction = "document_approved"
	HistoryActionDocumentRejected   HistoryAction = "document_rejected"
)

// LevelRequirements returns the document types a case at level must carry.
// Each level's set contains the previous one.
func LevelRequirements(level VerificationLevel) []DocumentType {
	basic := []DocumentType{DocumentTypeIdentity}
	standard := append(append([]DocumentType{}, basic...), DocumentTypeBusinessLicense, DocumentTypeInsurance)

	switch level {
	case VerificationLevelBasic:
		return basic
	case VerificationLevelStandard:
		return standard
	case VerificationLevelPremium:
		return append(standard, DocumentTypeCertification, DocumentTypeBackgroundCheck)
	}
	return nil
}

// MissingDocumentTypes returns required types of level absent from present, in requirement order.
func MissingDocumentTypes(level VerificationLevel, present []DocumentType) []DocumentType {
	have := make(map[DocumentType]bool, len(present))
	for _, t := range present {
		have[t] = true
	}
	missing := []DocumentType{}
	for _, req := range LevelRequirements(level) {
		if !have[req] {
			missing = append(missing, req)
		}
	}
	return missing
}

// VerificationCase is one provider's verification attempt
type VerificationCase struct {
	ID               uuid.UUID               `json:"id"`
	ProviderID       uuid.UUID               `json:"providerId"`
	Level            VerificationLevel       `json:"level"`
	Status           VerificationStatus      `json:"status"`
	IsVerified       bool                    `json:"isVerified"`
	VerificationDate null.Time               `json:"verificationDate"`
	ExpirationDate   null.Time               `json:"expirationDate"`
	RejectionReason  null.String             `json:"rejectionReason"`
	ReviewerID       *uuid.UUID              `json:"reviewerId"`
	Documents        []*VerificationDocument `json:"documents,omitempty"`
	CreatedAt        time.Time               `json:"createdAt"`
	UpdatedAt        time.Time               `json:"updatedAt"`
}

// VerifiedAt reports whether the case counts as verified at now.
func (c *VerificationCase) VerifiedAt(now time.Time) bool {
	if c.Status != VerificationStatusApproved || !c.ExpirationDate.Valid {
		return false
	}
	return !now.After(c.ExpirationDate.Time)
}

// PresentDocumentTypes returns the distinct types among the case documents.
func (c *VerificationCase) PresentDocumentTypes() []DocumentType {
	seen := make(map[DocumentType]bool)
	var out []DocumentType
	for _, d := range c.Documents {
		if d == nil || seen[d.DocumentType] {
			continue
		}
		seen[d.DocumentType] = true
		out = append(out, d.DocumentType)
	}
	return out
}

// MissingDocuments returns the required types not yet uploaded.
func (c *VerificationCase) MissingDocuments() []DocumentType {
	return MissingDocumentTypes(c.Level, c.PresentDocumentTypes())
}

// RenewalEligible reports whether renew may run at now with the given window.
func (c *VerificationCase) RenewalEligible(now time.Time, window time.Duration) bool {
	if c.Status != VerificationStatusApproved || !c.ExpirationDate.Valid {
		return false
	}
	return !c.ExpirationDate.Time.After(now.Add(window))
}

// VerificationDocument is one uploaded piece of evidence
type VerificationDocument struct {
	ID               uuid.UUID      `json:"id"`
	CaseID           uuid.UUID      `json:"caseId"`
	DocumentType     DocumentType   `json:"documentType"`
	Status           DocumentStatus `json:"status"`
	StorageRef       string         `json:"-"`
	DisplayName      string         `json:"displayName"`
	ContentType      string         `json:"contentType"`
	SizeBytes        int64          `json:"sizeBytes"`
	Checksum         string         `json:"checksum"`
	DocumentNumber   null.String    `json:"documentNumber"`
	IssuingAuthority null.String    `json:"issuingAuthority"`
	ExpirationDate   null.Time      `json:"expirationDate"`
	RejectionReason  null.String    `json:"rejectionReason"`
	VerifiedBy       *uuid.UUID     `json:"verifiedBy"`
	VerifiedAt       null.Time      `json:"verifiedAt"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// HistoryEntry is an immutable audit record on a case
type HistoryEntry struct {
	ID             uuid.UUID          `json:"id"`
	CaseID         uuid.UUID          `json:"caseId"`
	Action         HistoryAction      `json:"action"`
	PreviousStatus VerificationStatus `json:"previousStatus"`
	NewStatus      VerificationStatus `json:"newStatus"`
	Notes          null.String        `json:"notes"`
	PerformedBy    *uuid.UUID         `json:"performedBy"`
	ThresholdDays  null.Int           `json:"thresholdDays,omitempty"`
	DaysRemaining  null.Int           `json:"daysRemaining,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// DocumentMetadata is optional provider-supplied detail on an upload
type DocumentMetadata struct {
	DocumentNumber   string     `json:"documentNumber" validate:"omitempty,max=100,printascii"`
	IssuingAuthority string     `json:"issuingAuthority" validate:"omitempty,max=255"`
	ExpirationDate   *time.Time `json:"expirationDate"`
}

// CaseFilter narrows the admin review queue
type CaseFilter struct {
	Status VerificationStatus
	Level  VerificationLevel
}

// VerificationStatusSummary is the provider-facing view of a case
type VerificationStatusSummary struct {
	CaseID              uuid.UUID          `json:"caseId"`
	ProviderID          uuid.UUID          `json:"providerId"`
	Level               VerificationLevel  `json:"level"`
	Status              VerificationStatus `json:"status"`
	IsVerified          bool               `json:"isVerified"`
	VerificationDate    null.Time          `json:"verificationDate"`
	ExpirationDate      null.Time          `json:"expirationDate"`
	RejectionReason     null.String        `json:"rejectionReason"`
	MissingDocuments    []DocumentType     `json:"missingDocuments"`
	RenewalEligible     bool               `json:"renewalEligible"`
	DaysUntilExpiration null.Int           `json:"daysUntilExpiration"`
}

// VerificationStats summarises the case population
type VerificationStats struct {
	Total                int64                        `json:"total"`
	ByStatus             map[VerificationStatus]int64 `json:"byStatus"`
	AverageApprovalHours float64                      `json:"averageApprovalHours"`
}

// StoredObject describes a blob written to the document store
type StoredObject struct {
	Ref         string
	ContentType string
	SizeBytes   int64
	Checksum    string
}
