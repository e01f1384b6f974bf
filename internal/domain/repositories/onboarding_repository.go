package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
)

// OnboardingProgressRepository persists one progress record per provider
type OnboardingProgressRepository interface {
	Create(ctx context.Context, p *entities.OnboardingProgress) error
	GetByProviderID(ctx context.Context, providerID uuid.UUID) (*entities.OnboardingProgress, error)
	Update(ctx context.Context, p *entities.OnboardingProgress) error
}
