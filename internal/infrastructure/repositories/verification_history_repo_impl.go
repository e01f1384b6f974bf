package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/models"
	"github.com/Faitltd/FAIT-sub005/pkg/utils"
)

// VerificationHistoryRepository implements the append-only audit trail
type VerificationHistoryRepository struct {
	db *gorm.DB
}

func NewVerificationHistoryRepository(db *gorm.DB) *VerificationHistoryRepository {
	return &VerificationHistoryRepository{db: db}
}

func (r *VerificationHistoryRepository) Create(ctx context.Context, entry *entities.HistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = utils.GenerateUUIDv7()
	}
	m := toHistoryModel(entry)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	entry.CreatedAt = m.CreatedAt.UTC()
	return nil
}

// ids are v7 so they break created_at ties in insertion order
func (r *VerificationHistoryRepository) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*entities.HistoryEntry, error) {
	var ms []models.VerificationHistory
	if err := GetDB(ctx, r.db).
		Where("case_id = ?", caseID).
		Order("created_at DESC").Order("id DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return toHistoryEntities(ms), nil
}

func (r *VerificationHistoryRepository) ListByAction(ctx context.Context, caseID uuid.UUID, action entities.HistoryAction, since time.Time) ([]*entities.HistoryEntry, error) {
	var ms []models.VerificationHistory
	if err := GetDB(ctx, r.db).
		Where("case_id = ? AND action = ? AND created_at >= ?", caseID, string(action), since.UTC()).
		Order("created_at DESC").Order("id DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return toHistoryEntities(ms), nil
}

func toHistoryEntities(ms []models.VerificationHistory) []*entities.HistoryEntry {
	items := make([]*entities.HistoryEntry, 0, len(ms))
	for i := range ms {
		items = append(items, toHistoryEntity(&ms[i]))
	}
	return items
}
