package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	domainerrors "github.com/Faitltd/FAIT-sub005/internal/domain/errors"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/models"
	"github.com/Faitltd/FAIT-sub005/pkg/utils"
)

// NotificationRepository implements the in-app feed with GORM
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entities.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = utils.GenerateUUIDv7()
	}
	m := &models.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.UTC(),
	}
	if n.Data.Valid {
		data := string(n.Data.JSON)
		m.Data = &data
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	n.CreatedAt = m.CreatedAt.UTC()
	return nil
}

func (r *NotificationRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Notification, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Notification
	find := query.Order("created_at DESC").Order("id DESC").Offset(offset)
	if limit > 0 {
		find = find.Limit(limit)
	}
	if err := find.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*entities.Notification, 0, len(ms))
	for i := range ms {
		items = append(items, toNotificationEntity(&ms[i]))
	}
	return items, total, nil
}

// MarkRead only touches rows owned by userID
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toNotificationEntity(m *models.Notification) *entities.Notification {
	n := &entities.Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		Message:   m.Message,
		Type:      m.Type,
		Read:      m.Read,
		CreatedAt: m.CreatedAt.UTC(),
	}
	if m.Data != nil {
		n.Data = null.JSONFrom([]byte(*m.Data))
	}
	return n
}

// ProviderContactRepository implements contact lookup with GORM
type ProviderContactRepository struct {
	db *gorm.DB
}

func NewProviderContactRepository(db *gorm.DB) *ProviderContactRepository {
	return &ProviderContactRepository{db: db}
}

func (r *ProviderContactRepository) Upsert(ctx context.Context, c *entities.ProviderContact) error {
	m := &models.ProviderContact{
		ProviderID:  c.ProviderID,
		Email:       c.Email,
		DisplayName: c.DisplayName,
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
	if err := GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "updated_at"}),
	}).Create(m).Error; err != nil {
		return err
	}
	c.UpdatedAt = m.UpdatedAt.UTC()
	return nil
}

func (r *ProviderContactRepository) GetByProviderID(ctx context.Context, providerID uuid.UUID) (*entities.ProviderContact, error) {
	var m models.ProviderContact
	if err := GetDB(ctx, r.db).Where("provider_id = ?", providerID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.ProviderContact{
		ProviderID:  m.ProviderID,
		Email:       m.Email,
		DisplayName: m.DisplayName,
		UpdatedAt:   m.UpdatedAt.UTC(),
	}, nil
}
