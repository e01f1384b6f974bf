package usecases

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub005/internal/config"
	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	domainerrors "github.com/Faitltd/FAIT-sub005/internal/domain/errors"
	"github.com/Faitltd/FAIT-sub005/internal/domain/repositories"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/metrics"
	"github.com/Faitltd/FAIT-sub005/pkg/logger"
	"github.com/Faitltd/FAIT-sub005/pkg/utils"
)

const (
	noteSubmitted = "Verification submitted for review"
	noteRenewal   = "Verification renewal initiated"
	noteExpired   = "Verification expired"
)

var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// VerificationSettings are the lifecycle knobs of the engine
type VerificationSettings struct {
	ValidityPeriod time.Duration
	RenewalWindow  time.Duration
	UploadTimeout  time.Duration
	URLTTL         time.Duration
	MaxUploadBytes int64
}

// DefaultVerificationSettings: one year validity, 30 day renewal window, 10 MB uploads.
func DefaultVerificationSettings() VerificationSettings {
	return VerificationSettings{
		ValidityPeriod: 365 * 24 * time.Hour,
		RenewalWindow:  30 * 24 * time.Hour,
		UploadTimeout:  30 * time.Second,
		URLTTL:         60 * time.Second,
		MaxUploadBytes: 10 * 1024 * 1024,
	}
}

func VerificationSettingsFromConfig(cfg *config.Config) VerificationSettings {
	return VerificationSettings{
		ValidityPeriod: cfg.Verification.ValidityPeriod,
		RenewalWindow:  cfg.Verification.RenewalWindow,
		UploadTimeout:  cfg.Storage.UploadTimeout,
		URLTTL:         cfg.Storage.URLTTL,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	}
}

// UploadDocumentInput is one file posted against a case
type UploadDocumentInput struct {
	DocumentType entities.DocumentType
	DisplayName  string
	ContentType  string
	Data         []byte
	Metadata     entities.DocumentMetadata
}

// DocumentURL is a short-lived download link
type DocumentURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VerificationUsecase owns the case state machine
type VerificationUsecase struct {
	caseRepo     repositories.VerificationCaseRepository
	documentRepo repositories.VerificationDocumentRepository
	historyRepo  repositories.VerificationHistoryRepository
	uow          repositories.UnitOfWork
	store        DocumentStore
	notifier     Notifier
	metrics      *metrics.Metrics
	validate     *validator.Validate
	settings     VerificationSettings
	now          func() time.Time
}

// NewVerificationUsecase creates a new verification usecase
func NewVerificationUsecase(
	caseRepo repositories.VerificationCaseRepository,
	documentRepo repositories.VerificationDocumentRepository,
	historyRepo repositories.VerificationHistoryRepository,
	uow repositories.UnitOfWork,
	store DocumentStore,
	notifier Notifier,
	m *metrics.Metrics,
	settings VerificationSettings,
) *VerificationUsecase {
	return &VerificationUsecase{
		caseRepo:     caseRepo,
		documentRepo: documentRepo,
		historyRepo:  historyRepo,
		uow:          uow,
		store:        store,
		notifier:     notifier,
		metrics:      m,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		settings:     settings,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Intended for tests and sweeps that need a fixed now.
func (u *VerificationUsecase) SetClock(now func() time.Time) {
	u.now = func() time.Time { return now().UTC() }
}

// CreateOrUpdateCase opens a PENDING case for the provider or changes the level of the existing one.
func (u *VerificationUsecase) CreateOrUpdateCase(ctx context.Context, providerID uuid.UUID, level entities.VerificationLevel) (*entities.VerificationCase, error) {
	if !level.Valid() {
		return nil, domainerrors.ErrUnknownLevel
	}

	c, err := u.createOrUpdateCase(ctx, providerID, level)
	if errors.Is(err, domainerrors.ErrConflict) {
		// another request created the case first
		c, err = u.createOrUpdateCase(ctx, providerID, level)
	}
	return c, err
}

func (u *VerificationUsecase) createOrUpdateCase(ctx context.Context, providerID uuid.UUID, level entities.VerificationLevel) (*entities.VerificationCase, error) {
	var result *entities.VerificationCase
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		now := u.now()
		existing, err := u.caseRepo.GetByProviderID(u.uow.WithLock(txCtx), providerID)
		switch {
		case errors.Is(err, domainerrors.ErrNotFound):
			c := &entities.VerificationCase{
				ID:         utils.GenerateUUIDv7(),
				ProviderID: providerID,
				Level:      level,
				Status:     entities.VerificationStatusPending,
				IsVerified: false,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := u.caseRepo.Create(txCtx, c); err != nil {
				return err
			}
			result, err = u.caseRepo.GetByID(txCtx, c.ID)
			return err
		case err != nil:
			return err
		}

		if existing.Level != level {
			if err := u.caseRepo.UpdateLevel(txCtx, existing.ID, level, now); err != nil {
				return err
			}
		}
		result, err = u.caseRepo.GetByID(txCtx, existing.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (u *VerificationUsecase) GetCase(ctx context.Context, caseID uuid.UUID) (*entities.VerificationCase, error) {
	return u.caseRepo.GetByID(ctx, caseID)
}

func (u *VerificationUsecase) GetCaseByProvider(ctx context.Context, providerID uuid.UUID) (*entities.VerificationCase, error) {
	return u.caseRepo.GetByProviderID(ctx, providerID)
}

// UploadDocument validates, stores and records one document. The case status never changes.
func (u *VerificationUsecase) UploadDocument(ctx context.Context, caseID uuid.UUID, in UploadDocumentInput) (*entities.VerificationDocument, error) {
	contentType, err := u.validateUpload(in)
	if err != nil {
		u.metrics.IncUpload("rejected")
		return nil, err
	}

	c, err := u.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	putCtx, cancel := context.WithTimeout(ctx, u.settings.UploadTimeout)
	obj, err := u.store.Put(putCtx, c.ProviderID, in.DocumentType, contentType, in.Data)
	cancel()
	if err != nil {
		u.metrics.IncUpload("storage_error")
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrStorageFailure, err)
	}

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = in.DocumentType.Label()
	}

	var doc *entities.VerificationDocument
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		now := u.now()
		d := &entities.VerificationDocument{
			ID:               utils.GenerateUUIDv7(),
			CaseID:           c.ID,
			DocumentType:     in.DocumentType,
			Status:           entities.DocumentStatusPending,
			StorageRef:       obj.Ref,
			DisplayName:      displayName,
			ContentType:      obj.ContentType,
			SizeBytes:        obj.SizeBytes,
			Checksum:         obj.Checksum,
			DocumentNumber:   nullIfBlank(in.Metadata.DocumentNumber),
			IssuingAuthority: nullIfBlank(in.Metadata.IssuingAuthority),
			ExpirationDate:   null.TimeFromPtr(in.Metadata.ExpirationDate),
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := u.documentRepo.Create(txCtx, d); err != nil {
			return err
		}
		if _, err := u.caseRepo.TouchIfPending(txCtx, c.ID, now); err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		if delErr := u.store.Delete(context.WithoutCancel(ctx), obj.Ref); delErr != nil {
			logger.Error(ctx, "Failed to remove orphaned blob", zap.String("ref", obj.Ref), zap.Error(delErr))
		}
		u.metrics.IncUpload("db_error")
		return nil, err
	}

	u.metrics.IncUpload("stored")
	return doc, nil
}

// validateUpload returns the normalised content type
func (u *VerificationUsecase) validateUpload(in UploadDocumentInput) (string, error) {
	if !in.DocumentType.Valid() {
		return "", domainerrors.ErrUnknownDocType
	}

	contentType, _, err := mime.ParseMediaType(in.ContentType)
	if err != nil || !allowedContentTypes[strings.ToLower(contentType)] {
		return "", domainerrors.ErrInvalidType
	}
	contentType = strings.ToLower(contentType)

	if len(in.Data) == 0 {
		return "", fmt.Errorf("%w: empty file", domainerrors.ErrValidation)
	}
	if int64(len(in.Data)) > u.settings.MaxUploadBytes {
		return "", domainerrors.ErrTooLarge
	}
	if !mimetype.Detect(in.Data).Is(contentType) {
		return "", domainerrors.ErrContentMismatch
	}

	if err := u.validate.Struct(in.Metadata); err != nil {
		return "", fmt.Errorf("%w: %v", domainerrors.ErrValidation, err)
	}
	return contentType, nil
}

// DeleteDocument removes a document owned by providerID. Documents under review are frozen.
func (u *VerificationUsecase) DeleteDocument(ctx context.Context, providerID, documentID uuid.UUID) error {
	var ref string
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		doc, err := u.documentRepo.GetByID(txCtx, documentID)
		if err != nil {
			return err
		}
		c, err := u.caseRepo.GetByID(u.uow.WithLock(txCtx), doc.CaseID)
		if err != nil {
			return err
		}
		if c.ProviderID != providerID {
			return domainerrors.ErrNotFound
		}
		if c.Status == entities.VerificationStatusInReview {
			return fmt.Errorf("%w: documents are locked while the case is in review", domainerrors.ErrInvalidState)
		}
		ref = doc.StorageRef
		return u.documentRepo.Delete(txCtx, documentID)
	})
	if err != nil {
		return err
	}

	if err := u.store.Delete(ctx, ref); err != nil {
		logger.Warn(ctx, "Document row deleted but blob removal failed", zap.String("ref", ref), zap.Error(err))
	}
	return nil
}

// DocumentURL signs a download link. A non-nil providerID restricts access to that provider's documents.
func (u *VerificationUsecase) DocumentURL(ctx context.Context, providerID *uuid.UUID, documentID uuid.UUID) (*DocumentURL, error) {
	doc, err := u.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if providerID != nil {
		c, err := u.caseRepo.GetByID(ctx, doc.CaseID)
		if err != nil {
			return nil, err
		}
		if c.ProviderID != *providerID {
			return nil, domainerrors.ErrNotFound
		}
	}

	url, err := u.store.SignedURL(ctx, doc.StorageRef, u.settings.URLTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrStorageFailure, err)
	}
	return &DocumentURL{URL: url, ExpiresAt: u.now().Add(u.settings.URLTTL)}, nil
}

// MissingDocuments lists the required types the case does not carry yet
func (u *VerificationUsecase) MissingDocuments(ctx context.Context, caseID uuid.UUID) ([]entities.DocumentType, error) {
	c, err := u.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return c.MissingDocuments(), nil
}

// Submit moves a complete PENDING or REJECTED case into review.
func (u *VerificationUsecase) Submit(ctx context.Context, caseID uuid.UUID) (*entities.VerificationCase, error) {
	c, from, err := u.transition(ctx, caseID, transition{
		action: entities.HistoryActionSubmitted,
		notes:  noteSubmitted,
		guard: func(c *entities.VerificationCase, _ time.Time) error {
			if !c.Status.CanSubmit() {
				return fmt.Errorf("%w: cannot submit a %s case", domainerrors.ErrInvalidState, c.Status)
			}
			if missing := c.MissingDocuments(); len(missing) > 0 {
				return domainerrors.NewMissingDocuments(missing)
			}
			return nil
		},
		apply: func(c *entities.VerificationCase, _ time.Time) {
			c.Status = entities.VerificationStatusInReview
			c.IsVerified = false
			c.RejectionReason = null.String{}
		},
	})
	if err != nil {
		return nil, err
	}
	dispatch(ctx, u.notifier, u.metrics, c.ProviderID, entities.NotificationKindStatusUpdate, statusContext(c, from))
	return c, nil
}

// Approve verifies the case for one validity period.
func (u *VerificationUsecase) Approve(ctx context.Context, caseID, adminID uuid.UUID, notes string) (*entities.VerificationCase, error) {
	c, from, err := u.transition(ctx, caseID, transition{
		action: entities.HistoryActionApproved,
		actor:  &adminID,
		notes:  strings.TrimSpace(notes),
		guard:  decidable,
		apply: func(c *entities.VerificationCase, now time.Time) {
			c.Status = entities.VerificationStatusApproved
			c.IsVerified = true
			c.VerificationDate = null.TimeFrom(now)
			c.ExpirationDate = null.TimeFrom(now.Add(u.settings.ValidityPeriod))
			c.RejectionReason = null.String{}
			c.ReviewerID = &adminID
		},
	})
	if err != nil {
		return nil, err
	}
	dispatch(ctx, u.notifier, u.metrics, c.ProviderID, entities.NotificationKindStatusUpdate, statusContext(c, from))
	return c, nil
}

// Reject sends the case back to the provider with a mandatory reason.
func (u *VerificationUsecase) Reject(ctx context.Context, caseID, adminID uuid.UUID, reason string) (*entities.VerificationCase, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domainerrors.ErrMissingReason
	}

	c, from, err := u.transition(ctx, caseID, transition{
		action: entities.HistoryActionRejected,
		actor:  &adminID,
		notes:  reason,
		guard:  decidable,
		apply: func(c *entities.VerificationCase, _ time.Time) {
			c.Status = entities.VerificationStatusRejected
			c.IsVerified = false
			c.RejectionReason = null.StringFrom(reason)
			c.ReviewerID = &adminID
		},
	})
	if err != nil {
		return nil, err
	}
	dispatch(ctx, u.notifier, u.metrics, c.ProviderID, entities.NotificationKindStatusUpdate, statusContext(c, from))
	return c, nil
}

// Renew resets an approved case inside the renewal window to PENDING. Documents are kept.
func (u *VerificationUsecase) Renew(ctx context.Context, caseID uuid.UUID) (*entities.VerificationCase, error) {
	c, from, err := u.transition(ctx, caseID, transition{
		action: entities.HistoryActionRenewalInitiated,
		notes:  noteRenewal,
		guard: func(c *entities.VerificationCase, now time.Time) error {
			if !c.RenewalEligible(now, u.settings.RenewalWindow) {
				return domainerrors.ErrNotEligible
			}
			return nil
		},
		apply: func(c *entities.VerificationCase, _ time.Time) {
			c.Status = entities.VerificationStatusPending
			c.IsVerified = false
			c.RejectionReason = null.String{}
		},
	})
	if err != nil {
		return nil, err
	}
	dispatch(ctx, u.notifier, u.metrics, c.ProviderID, entities.NotificationKindStatusUpdate, statusContext(c, from))
	return c, nil
}

// Reopen is the admin path out of EXPIRED; the case starts over as PENDING.
func (u *VerificationUsecase) Reopen(ctx context.Context, caseID, adminID uuid.UUID, notes string) (*entities.VerificationCase, error) {
	c, from, err := u.transition(ctx, caseID, transition{
		action: entities.HistoryActionReopened,
		actor:  &adminID,
		notes:  strings.TrimSpace(notes),
		guard: func(c *entities.VerificationCase, _ time.Time) error {
			if c.Status != entities.VerificationStatusExpired {
				return fmt.Errorf("%w: only expired cases can be reopened", domainerrors.ErrInvalidState)
			}
			return nil
		},
		apply: func(c *entities.VerificationCase, _ time.Time) {
			c.Status = entities.VerificationStatusPending
			c.IsVerified = false
			c.RejectionReason = null.String{}
			c.ReviewerID = &adminID
		},
	})
	if err != nil {
		return nil, err
	}
	dispatch(ctx, u.notifier, u.metrics, c.ProviderID, entities.NotificationKindStatusUpdate, statusContext(c, from))
	return c, nil
}

// Expire moves an APPROVED case past its expiration date to EXPIRED.
func (u *VerificationUsecase) Expire(ctx context.Context, caseID uuid.UUID) (*entities.VerificationCase, error) {
	c, from, err := u.transition(ctx, caseID, transition{
		action: entities.HistoryActionExpired,
		notes:  noteExpired,
		guard: func(c *entities.VerificationCase, now time.Time) error {
			if c.Status != entities.VerificationStatusApproved || !c.ExpirationDate.Valid || !c.ExpirationDate.Time.Before(now) {
				return fmt.Errorf("%w: case is not past its expiration date", domainerrors.ErrInvalidState)
			}
			return nil
		},
		apply: func(c *entities.VerificationCase, _ time.Time) {
			c.Status = entities.VerificationStatusExpired
			c.IsVerified = false
		},
	})
	if err != nil {
		return nil, err
	}
	dispatch(ctx, u.notifier, u.metrics, c.ProviderID, entities.NotificationKindStatusUpdate, statusContext(c, from))
	return c, nil
}

// ApproveDocument marks one document approved. Case status is untouched.
func (u *VerificationUsecase) ApproveDocument(ctx context.Context, documentID, adminID uuid.UUID) (*entities.VerificationDocument, error) {
	return u.reviewDocument(ctx, documentID, adminID, entities.DocumentStatusApproved, "")
}

// RejectDocument marks one document rejected with a mandatory reason.
func (u *VerificationUsecase) RejectDocument(ctx context.Context, documentID, adminID uuid.UUID, reason string) (*entities.VerificationDocument, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domainerrors.ErrMissingReason
	}
	return u.reviewDocument(ctx, documentID, adminID, entities.DocumentStatusRejected, reason)
}

func (u *VerificationUsecase) reviewDocument(ctx context.Context, documentID, adminID uuid.UUID, status entities.DocumentStatus, reason string) (*entities.VerificationDocument, error) {
	action := entities.HistoryActionDocumentApproved
	if status == entities.DocumentStatusRejected {
		action = entities.HistoryActionDocumentRejected
	}

	var (
		doc        *entities.VerificationDocument
		providerID uuid.UUID
	)
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		now := u.now()
		d, err := u.documentRepo.GetByID(u.uow.WithLock(txCtx), documentID)
		if err != nil {
			return err
		}
		c, err := u.caseRepo.GetByID(txCtx, d.CaseID)
		if err != nil {
			return err
		}

		if err := u.documentRepo.UpdateReview(txCtx, d.ID, status, adminID, nullIfBlank(reason), now); err != nil {
			return err
		}

		notes := d.DocumentType.Label() + " approved"
		if status == entities.DocumentStatusRejected {
			notes = d.DocumentType.Label() + " rejected: " + reason
		}
		if err := u.historyRepo.Create(txCtx, &entities.HistoryEntry{
			ID:             utils.GenerateUUIDv7(),
			CaseID:         c.ID,
			Action:         action,
			PreviousStatus: c.Status,
			NewStatus:      c.Status,
			Notes:          null.StringFrom(notes),
			PerformedBy:    &adminID,
			CreatedAt:      now,
		}); err != nil {
			return err
		}

		doc, err = u.documentRepo.GetByID(txCtx, d.ID)
		providerID = c.ProviderID
		return err
	})
	if err != nil {
		return nil, err
	}

	u.metrics.IncTransition(string(action))
	dispatch(ctx, u.notifier, u.metrics, providerID, entities.NotificationKindDocumentOutcome, entities.NotificationContext{
		CaseID:          doc.CaseID,
		DocumentType:    doc.DocumentType,
		DocumentName:    doc.DisplayName,
		DocumentStatus:  doc.Status,
		RejectionReason: reason,
	})
	return doc, nil
}

// History returns the audit trail of a case, newest first
func (u *VerificationUsecase) History(ctx context.Context, caseID uuid.UUID) ([]*entities.HistoryEntry, error) {
	if _, err := u.caseRepo.GetByID(ctx, caseID); err != nil {
		return nil, err
	}
	return u.historyRepo.ListByCaseID(ctx, caseID)
}

// StatusByProvider is the provider-facing summary of their case
func (u *VerificationUsecase) StatusByProvider(ctx context.Context, providerID uuid.UUID) (*entities.VerificationStatusSummary, error) {
	c, err := u.caseRepo.GetByProviderID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	now := u.now()
	summary := &entities.VerificationStatusSummary{
		CaseID:           c.ID,
		ProviderID:       c.ProviderID,
		Level:            c.Level,
		Status:           c.Status,
		IsVerified:       c.VerifiedAt(now),
		VerificationDate: c.VerificationDate,
		ExpirationDate:   c.ExpirationDate,
		RejectionReason:  c.RejectionReason,
		MissingDocuments: c.MissingDocuments(),
		RenewalEligible:  c.RenewalEligible(now, u.settings.RenewalWindow),
	}
	if c.ExpirationDate.Valid {
		summary.DaysUntilExpiration = null.IntFrom(daysUntil(c.ExpirationDate.Time, now))
	}
	return summary, nil
}

// ListCases pages through the admin review queue, newest first
func (u *VerificationUsecase) ListCases(ctx context.Context, filter entities.CaseFilter, page, limit int) ([]*entities.VerificationCase, utils.PaginationMeta, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, utils.PaginationMeta{}, fmt.Errorf("%w: unknown status %q", domainerrors.ErrValidation, filter.Status)
	}
	if filter.Level != "" && !filter.Level.Valid() {
		return nil, utils.PaginationMeta{}, domainerrors.ErrUnknownLevel
	}

	params := utils.GetPaginationParams(page, limit)
	items, total, err := u.caseRepo.List(ctx, filter, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return items, utils.CalculateMeta(total, params.Page, params.Limit), nil
}

// Stats counts cases per status and averages the time from creation to approval
func (u *VerificationUsecase) Stats(ctx context.Context) (*entities.VerificationStats, error) {
	counts, err := u.caseRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	avg, err := u.caseRepo.AverageApprovalDuration(ctx)
	if err != nil {
		return nil, err
	}

	stats := &entities.VerificationStats{ByStatus: counts}
	for _, n := range counts {
		stats.Total += n
	}
	stats.AverageApprovalHours = math.Round(avg.Hours()*100) / 100
	return stats, nil
}

// transition describes one guarded status change
type transition struct {
	action entities.HistoryAction
	actor  *uuid.UUID
	notes  string
	guard  func(c *entities.VerificationCase, now time.Time) error
	apply  func(c *entities.VerificationCase, now time.Time)
}

// transition locks the case, checks the guard, writes the new status with a
// compare-and-swap and appends one history entry, all in one transaction.
// It returns the case as re-read inside that transaction and the prior status.
func (u *VerificationUsecase) transition(ctx context.Context, caseID uuid.UUID, t transition) (*entities.VerificationCase, entities.VerificationStatus, error) {
	var (
		result *entities.VerificationCase
		from   entities.VerificationStatus
	)
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		c, err := u.caseRepo.GetByID(u.uow.WithLock(txCtx), caseID)
		if err != nil {
			return err
		}

		now := u.now()
		if err := t.guard(c, now); err != nil {
			return err
		}

		from = c.Status
		t.apply(c, now)
		c.UpdatedAt = now

		if err := u.caseRepo.Transition(txCtx, c, from); err != nil {
			if errors.Is(err, domainerrors.ErrConflict) {
				return fmt.Errorf("%w: case changed concurrently", domainerrors.ErrInvalidState)
			}
			return err
		}

		if err := u.historyRepo.Create(txCtx, &entities.HistoryEntry{
			ID:             utils.GenerateUUIDv7(),
			CaseID:         c.ID,
			Action:         t.action,
			PreviousStatus: from,
			NewStatus:      c.Status,
			Notes:          nullIfBlank(t.notes),
			PerformedBy:    t.actor,
			CreatedAt:      now,
		}); err != nil {
			return err
		}

		result, err = u.caseRepo.GetByID(txCtx, caseID)
		return err
	})
	if err != nil {
		return nil, "", err
	}

	u.metrics.IncTransition(string(t.action))
	logger.Info(ctx, "Verification case transitioned",
		zap.String("caseId", caseID.String()),
		zap.String("action", string(t.action)),
		zap.String("from", string(from)),
		zap.String("to", string(result.Status)),
	)
	return result, from, nil
}

func decidable(c *entities.VerificationCase, _ time.Time) error {
	if !c.Status.CanBeDecided() {
		return fmt.Errorf("%w: cannot decide a %s case", domainerrors.ErrInvalidState, c.Status)
	}
	return nil
}

func nullIfBlank(s string) null.String {
	s = strings.TrimSpace(s)
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}

// daysUntil rounds up so a case expiring in 4.2 days reports 5
func daysUntil(exp, now time.Time) int {
	return int(math.Ceil(exp.Sub(now).Hours() / 24))
}
