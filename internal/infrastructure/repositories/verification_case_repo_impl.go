package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	domainerrors "github.com/Faitltd/FAIT-sub005/internal/domain/errors"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/models"
	"github.com/Faitltd/FAIT-sub005/pkg/utils"
)

// VerificationCaseRepository implements case persistence with GORM
type VerificationCaseRepository struct {
	db *gorm.DB
}

// NewVerificationCaseRepository creates a new case repository
func NewVerificationCaseRepository(db *gorm.DB) *VerificationCaseRepository {
	return &VerificationCaseRepository{db: db}
}

func preloadDocuments(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

func (r *VerificationCaseRepository) Create(ctx context.Context, c *entities.VerificationCase) error {
	if c.ID == uuid.Nil {
		c.ID = utils.GenerateUUIDv7()
	}
	m := toCaseModel(c)
	if err := GetDB(ctx, r.db).Omit("Documents").Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return domainerrors.ErrConflict
		}
		return err
	}
	c.CreatedAt = m.CreatedAt.UTC()
	c.UpdatedAt = m.UpdatedAt.UTC()
	return nil
}

func (r *VerificationCaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.VerificationCase, error) {
	var m models.VerificationCase
	if err := lockedDB(ctx, r.db).Preload("Documents", preloadDocuments).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toCaseEntity(&m), nil
}

func (r *VerificationCaseRepository) GetByProviderID(ctx context.Context, providerID uuid.UUID) (*entities.VerificationCase, error) {
	var m models.VerificationCase
	if err := lockedDB(ctx, r.db).Preload("Documents", preloadDocuments).Where("provider_id = ?", providerID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toCaseEntity(&m), nil
}

func (r *VerificationCaseRepository) UpdateLevel(ctx context.Context, id uuid.UUID, level entities.VerificationLevel, at time.Time) error {
	result := GetDB(ctx, r.db).Model(&models.VerificationCase{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"level":      string(level),
			"updated_at": at.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *VerificationCaseRepository) TouchIfPending(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := GetDB(ctx, r.db).Model(&models.VerificationCase{}).
		Where("id = ? AND status = ?", id, string(entities.VerificationStatusPending)).
		Update("updated_at", at.UTC())
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *VerificationCaseRepository) Transition(ctx context.Context, c *entities.VerificationCase, from entities.VerificationStatus) error {
	db := GetDB(ctx, r.db)
	result := db.Model(&models.VerificationCase{}).
		Where("id = ? AND status = ?", c.ID, string(from)).
		Updates(map[string]interface{}{
			"level":             string(c.Level),
			"status":            string(c.Status),
			"is_verified":       c.IsVerified,
			"verification_date": timeOrNil(c.VerificationDate),
			"expiration_date":   timeOrNil(c.ExpirationDate),
			"rejection_reason":  stringOrNil(c.RejectionReason),
			"reviewer_id":       uuidOrNil(c.ReviewerID),
			"updated_at":        c.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.VerificationCase{}).Where("id = ?", c.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.ErrNotFound
	}
	return domainerrors.ErrConflict
}

func (r *VerificationCaseRepository) List(ctx context.Context, filter entities.CaseFilter, limit, offset int) ([]*entities.VerificationCase, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.VerificationCase{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Level != "" {
		query = query.Where("level = ?", string(filter.Level))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.VerificationCase
	find := query.Preload("Documents", preloadDocuments).Order("created_at DESC").Offset(offset)
	if limit > 0 {
		find = find.Limit(limit)
	}
	if err := find.Find(&ms).Error; err != nil {
		return nil, 0, err
	}
	return toCaseEntities(ms), total, nil
}

func (r *VerificationCaseRepository) ListApprovedExpiringBetween(ctx context.Context, after, until time.Time, limit int) ([]*entities.VerificationCase, error) {
	var ms []models.VerificationCase
	query := GetDB(ctx, r.db).
		Where("status = ? AND is_verified = ?", string(entities.VerificationStatusApproved), true).
		Where("expiration_date > ? AND expiration_date <= ?", after.UTC(), until.UTC()).
		Order("expiration_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}
	return toCaseEntities(ms), nil
}

func (r *VerificationCaseRepository) ListApprovedExpiredBefore(ctx context.Context, before time.Time, limit int) ([]*entities.VerificationCase, error) {
	var ms []models.VerificationCase
	query := GetDB(ctx, r.db).
		Where("status = ? AND expiration_date < ?", string(entities.VerificationStatusApproved), before.UTC()).
		Order("expiration_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}
	return toCaseEntities(ms), nil
}

func (r *VerificationCaseRepository) CountByStatus(ctx context.Context) (map[entities.VerificationStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := GetDB(ctx, r.db).Model(&models.VerificationCase{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[entities.VerificationStatus]int64, len(entities.AllVerificationStatuses()))
	for _, s := range entities.AllVerificationStatuses() {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[entities.VerificationStatus(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *VerificationCaseRepository) AverageApprovalDuration(ctx context.Context) (time.Duration, error) {
	var ms []models.VerificationCase
	if err := GetDB(ctx, r.db).
		Select("id, created_at, verification_date").
		Where("verification_date IS NOT NULL").
		Find(&ms).Error; err != nil {
		return 0, err
	}
	if len(ms) == 0 {
		return 0, nil
	}

	var total time.Duration
	for _, m := range ms {
		total += m.VerificationDate.Sub(m.CreatedAt)
	}
	return total / time.Duration(len(ms)), nil
}

func toCaseEntities(ms []models.VerificationCase) []*entities.VerificationCase {
	items := make([]*entities.VerificationCase, 0, len(ms))
	for i := range ms {
		items = append(items, toCaseEntity(&ms[i]))
	}
	return items
}
