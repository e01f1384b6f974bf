package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
)

// VerificationCaseRepository persists verification cases.
// Reads made with a context from UnitOfWork.WithLock take a row lock.
type VerificationCaseRepository interface {
	Create(ctx context.Context, c *entities.VerificationCase) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.VerificationCase, error)
	GetByProviderID(ctx context.Context, providerID uuid.UUID) (*entities.VerificationCase, error)
	UpdateLevel(ctx context.Context, id uuid.UUID, level entities.VerificationLevel, at time.Time) error
	// TouchIfPending bumps updated_at only while the case is PENDING.
	TouchIfPending(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	// Transition writes the mutable fields of c if the stored status still equals from.
	// A lost race returns ErrConflict.
	Transition(ctx context.Context, c *entities.VerificationCase, from entities.VerificationStatus) error
	List(ctx context.Context, filter entities.CaseFilter, limit, offset int) ([]*entities.VerificationCase, int64, error)
	ListApprovedExpiringBetween(ctx context.Context, after, until time.Time, limit int) ([]*entities.VerificationCase, error)
	ListApprovedExpiredBefore(ctx context.Context, before time.Time, limit int) ([]*entities.VerificationCase, error)
	CountByStatus(ctx context.Context) (map[entities.VerificationStatus]int64, error)
	// AverageApprovalDuration averages created_at to verification_date over verified cases.
	AverageApprovalDuration(ctx context.Context) (time.Duration, error)
}

// VerificationDocumentRepository persists uploaded documents
type VerificationDocumentRepository interface {
	Create(ctx context.Context, doc *entities.VerificationDocument) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.VerificationDocument, error)
	ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*entities.VerificationDocument, error)
	UpdateReview(ctx context.Context, id uuid.UUID, status entities.DocumentStatus, reviewer uuid.UUID, reason null.String, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// VerificationHistoryRepository is append-only
type VerificationHistoryRepository interface {
	Create(ctx context.Context, entry *entities.HistoryEntry) error
	// ListByCaseID returns entries newest first.
	ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*entities.HistoryEntry, error)
	// ListByAction returns entries for caseID with action created at or after since, newest first.
	ListByAction(ctx context.Context, caseID uuid.UUID, action entities.HistoryAction, since time.Time) ([]*entities.HistoryEntry, error)
}
