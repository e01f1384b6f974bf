package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	"github.com/Faitltd/FAIT-sub005/internal/usecases"
	"github.com/Faitltd/FAIT-sub005/pkg/utils"
)

// VerificationService is the engine surface the provider routes use
type VerificationService interface {
	CreateOrUpdateCase(ctx context.Context, providerID uuid.UUID, level entities.VerificationLevel) (*entities.VerificationCase, error)
	GetCaseByProvider(ctx context.Context, providerID uuid.UUID) (*entities.VerificationCase, error)
	StatusByProvider(ctx context.Context, providerID uuid.UUID) (*entities.VerificationStatusSummary, error)
	UploadDocument(ctx context.Context, caseID uuid.UUID, in usecases.UploadDocumentInput) (*entities.VerificationDocument, error)
	DeleteDocument(ctx context.Context, providerID, documentID uuid.UUID) error
	DocumentURL(ctx context.Context, providerID *uuid.UUID, documentID uuid.UUID) (*usecases.DocumentURL, error)
	MissingDocuments(ctx context.Context, caseID uuid.UUID) ([]entities.DocumentType, error)
	Submit(ctx context.Context, caseID uuid.UUID) (*entities.VerificationCase, error)
	Renew(ctx context.Context, caseID uuid.UUID) (*entities.VerificationCase, error)
	History(ctx context.Context, caseID uuid.UUID) ([]*entities.HistoryEntry, error)
}

// AdminVerificationService is the engine surface the review queue uses
type AdminVerificationService interface {
	ListCases(ctx context.Context, filter entities.CaseFilter, page, limit int) ([]*entities.VerificationCase, utils.PaginationMeta, error)
	Stats(ctx context.Context) (*entities.VerificationStats, error)
	GetCase(ctx context.Context, caseID uuid.UUID) (*entities.VerificationCase, error)
	History(ctx context.Context, caseID uuid.UUID) ([]*entities.HistoryEntry, error)
	Approve(ctx context.Context, caseID, adminID uuid.UUID, notes string) (*entities.VerificationCase, error)
	Reject(ctx context.Context, caseID, adminID uuid.UUID, reason string) (*entities.VerificationCase, error)
	Reopen(ctx context.Context, caseID, adminID uuid.UUID, notes string) (*entities.VerificationCase, error)
	ApproveDocument(ctx context.Context, documentID, adminID uuid.UUID) (*entities.VerificationDocument, error)
	RejectDocument(ctx context.Context, documentID, adminID uuid.UUID, reason string) (*entities.VerificationDocument, error)
	DocumentURL(ctx context.Context, providerID *uuid.UUID, documentID uuid.UUID) (*usecases.DocumentURL, error)
}

// OnboardingService tracks provider onboarding
type OnboardingService interface {
	View(ctx context.Context, providerID uuid.UUID) (*entities.OnboardingView, error)
	CompleteStep(ctx context.Context, providerID uuid.UUID, step entities.OnboardingStep) (*entities.OnboardingProgress, error)
	SetCurrentStep(ctx context.Context, providerID uuid.UUID, step entities.OnboardingStep) (*entities.OnboardingProgress, error)
	Advance(ctx context.Context, providerID uuid.UUID) (*entities.OnboardingStep, error)
	CompleteOnboarding(ctx context.Context, providerID uuid.UUID) (*entities.OnboardingProgress, error)
}

// NotificationService serves the in-app feed and contact details
type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.Notification, utils.PaginationMeta, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	UpsertContact(ctx context.Context, providerID uuid.UUID, email, displayName string) (*entities.ProviderContact, error)
	GetContact(ctx context.Context, providerID uuid.UUID) (*entities.ProviderContact, error)
}

type caseActionFunc func(ctx context.Context, caseID uuid.UUID) (*entities.VerificationCase, error)
