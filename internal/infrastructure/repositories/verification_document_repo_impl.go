package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	domainerrors "github.com/Faitltd/FAIT-sub005/internal/domain/errors"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/models"
	"github.com/Faitltd/FAIT-sub005/pkg/utils"
)

// VerificationDocumentRepository implements document persistence with GORM
type VerificationDocumentRepository struct {
	db *gorm.DB
}

// NewVerificationDocumentRepository creates a new document repository
func NewVerificationDocumentRepository(db *gorm.DB) *VerificationDocumentRepository {
	return &VerificationDocumentRepository{db: db}
}

func (r *VerificationDocumentRepository) Create(ctx context.Context, doc *entities.VerificationDocument) error {
	if doc.ID == uuid.Nil {
		doc.ID = utils.GenerateUUIDv7()
	}
	m := toDocumentModel(doc)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	doc.CreatedAt = m.CreatedAt.UTC()
	doc.UpdatedAt = m.UpdatedAt.UTC()
	return nil
}

func (r *VerificationDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.VerificationDocument, error) {
	var m models.VerificationDocument
	if err := lockedDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toDocumentEntity(&m), nil
}

func (r *VerificationDocumentRepository) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*entities.VerificationDocument, error) {
	var ms []models.VerificationDocument
	if err := GetDB(ctx, r.db).Where("case_id = ?", caseID).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}

	docs := make([]*entities.VerificationDocument, 0, len(ms))
	for i := range ms {
		docs = append(docs, toDocumentEntity(&ms[i]))
	}
	return docs, nil
}

func (r *VerificationDocumentRepository) UpdateReview(ctx context.Context, id uuid.UUID, status entities.DocumentStatus, reviewer uuid.UUID, reason null.String, at time.Time) error {
	result := GetDB(ctx, r.db).Model(&models.VerificationDocument{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           string(status),
			"verified_by":      reviewer,
			"verified_at":      at.UTC(),
			"rejection_reason": stringOrNil(reason),
			"updated_at":       at.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *VerificationDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Where("id = ?", id).Delete(&models.VerificationDocument{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}
