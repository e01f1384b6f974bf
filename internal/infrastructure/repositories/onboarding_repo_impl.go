package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	domainerrors "github.com/Faitltd/FAIT-sub005/internal/domain/errors"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/models"
	"github.com/Faitltd/FAIT-sub005/pkg/utils"
)

// OnboardingProgressRepository implements onboarding persistence with GORM
type OnboardingProgressRepository struct {
	db *gorm.DB
}

func NewOnboardingProgressRepository(db *gorm.DB) *OnboardingProgressRepository {
	return &OnboardingProgressRepository{db: db}
}

func (r *OnboardingProgressRepository) Create(ctx context.Context, p *entities.OnboardingProgress) error {
	if p.ID == uuid.Nil {
		p.ID = utils.GenerateUUIDv7()
	}
	m := toOnboardingModel(p)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return domainerrors.ErrConflict
		}
		return err
	}
	p.CreatedAt = m.CreatedAt.UTC()
	p.UpdatedAt = m.UpdatedAt.UTC()
	return nil
}

func (r *OnboardingProgressRepository) GetByProviderID(ctx context.Context, providerID uuid.UUID) (*entities.OnboardingProgress, error) {
	var m models.OnboardingProgress
	if err := lockedDB(ctx, r.db).Where("provider_id = ?", providerID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toOnboardingEntity(&m), nil
}

func (r *OnboardingProgressRepository) Update(ctx context.Context, p *entities.OnboardingProgress) error {
	result := GetDB(ctx, r.db).Model(&models.OnboardingProgress{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"current_step":    string(p.CurrentStep),
			"completed_steps": stepsToArray(p.CompletedSteps),
			"is_completed":    p.IsCompleted,
			"completed_at":    timeOrNil(p.CompletedAt),
			"updated_at":      p.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func stepsToArray(steps []entities.OnboardingStep) pq.StringArray {
	arr := make(pq.StringArray, 0, len(steps))
	for _, s := range steps {
		arr = append(arr, string(s))
	}
	return arr
}

func toOnboardingModel(p *entities.OnboardingProgress) *models.OnboardingProgress {
	return &models.OnboardingProgress{
		ID:             p.ID,
		ProviderID:     p.ProviderID,
		CurrentStep:    string(p.CurrentStep),
		CompletedSteps: stepsToArray(p.CompletedSteps),
		IsCompleted:    p.IsCompleted,
		CompletedAt:    ptrFromNullTime(p.CompletedAt),
		CreatedAt:      p.CreatedAt.UTC(),
		UpdatedAt:      p.UpdatedAt.UTC(),
	}
}

func toOnboardingEntity(m *models.OnboardingProgress) *entities.OnboardingProgress {
	steps := make([]entities.OnboardingStep, 0, len(m.CompletedSteps))
	for _, s := range m.CompletedSteps {
		steps = append(steps, entities.OnboardingStep(s))
	}
	return &entities.OnboardingProgress{
		ID:             m.ID,
		ProviderID:     m.ProviderID,
		CurrentStep:    entities.OnboardingStep(m.CurrentStep),
		CompletedSteps: steps,
		IsCompleted:    m.IsCompleted,
		CompletedAt:    nullTimeFromPtr(m.CompletedAt),
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}
