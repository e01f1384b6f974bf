package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	domainerrors "github.com/Faitltd/FAIT-sub005/internal/domain/errors"
	"github.com/Faitltd/FAIT-sub005/internal/domain/repositories"
	"github.com/Faitltd/FAIT-sub005/pkg/utils"
)

// OnboardingUsecase tracks a provider through the setup steps
type OnboardingUsecase struct {
	progressRepo repositories.OnboardingProgressRepository
	caseRepo     repositories.VerificationCaseRepository
	uow          repositories.UnitOfWork
	now          func() time.Time
}

func NewOnboardingUsecase(
	progressRepo repositories.OnboardingProgressRepository,
	caseRepo repositories.VerificationCaseRepository,
	uow repositories.UnitOfWork,
) *OnboardingUsecase {
	return &OnboardingUsecase{
		progressRepo: progressRepo,
		caseRepo:     caseRepo,
		uow:          uow,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (u *OnboardingUsecase) SetClock(now func() time.Time) {
	u.now = func() time.Time { return now().UTC() }
}

// GetOrCreate returns the provider's progress, starting at WELCOME on first use.
func (u *OnboardingUsecase) GetOrCreate(ctx context.Context, providerID uuid.UUID) (*entities.OnboardingProgress, error) {
	p, err := u.progressRepo.GetByProviderID(ctx, providerID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	now := u.now()
	p = &entities.OnboardingProgress{
		ID:             utils.GenerateUUIDv7(),
		ProviderID:     providerID,
		CurrentStep:    entities.OnboardingStepWelcome,
		CompletedSteps: []entities.OnboardingStep{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := u.progressRepo.Create(ctx, p); err != nil {
		if errors.Is(err, domainerrors.ErrConflict) {
			return u.progressRepo.GetByProviderID(ctx, providerID)
		}
		return nil, err
	}
	return p, nil
}

// View is the progress plus derived fields and the provider's verification status.
func (u *OnboardingUsecase) View(ctx context.Context, providerID uuid.UUID) (*entities.OnboardingView, error) {
	p, err := u.GetOrCreate(ctx, providerID)
	if err != nil {
		return nil, err
	}

	view := &entities.OnboardingView{
		Progress:   p,
		Percentage: p.CompletionPercentage(),
	}
	if next, ok := p.CurrentStep.Next(); ok {
		view.NextStep = &next
	}

	c, err := u.caseRepo.GetByProviderID(ctx, providerID)
	switch {
	case err == nil:
		status := c.Status
		view.VerificationStatus = &status
		view.IsVerified = c.VerifiedAt(u.now())
	case !errors.Is(err, domainerrors.ErrNotFound):
		return nil, err
	}
	return view, nil
}

// CompleteStep adds step to the completed set. Completing it twice is a no-op.
// Only a reachable step can be completed, so steps are never skipped.
func (u *OnboardingUsecase) CompleteStep(ctx context.Context, providerID uuid.UUID, step entities.OnboardingStep) (*entities.OnboardingProgress, error) {
	if !step.Valid() {
		return nil, fmt.Errorf("%w: unknown onboarding step %q", domainerrors.ErrValidation, step)
	}
	return u.mutate(ctx, providerID, func(p *entities.OnboardingProgress, _ time.Time) (bool, error) {
		if !p.CanNavigateTo(step) {
			return false, domainerrors.ErrStepNotReachable
		}
		return p.MarkCompleted(step), nil
	})
}

// Advance returns the step after the current one, or nil at the last step. It does not mutate.
func (u *OnboardingUsecase) Advance(ctx context.Context, providerID uuid.UUID) (*entities.OnboardingStep, error) {
	p, err := u.GetOrCreate(ctx, providerID)
	if err != nil {
		return nil, err
	}
	next, ok := p.CurrentStep.Next()
	if !ok {
		return nil, nil
	}
	return &next, nil
}

// SetCurrentStep moves the cursor to a completed step, the current one, or the
// next incomplete step.
func (u *OnboardingUsecase) SetCurrentStep(ctx context.Context, providerID uuid.UUID, step entities.OnboardingStep) (*entities.OnboardingProgress, error) {
	if !step.Valid() {
		return nil, fmt.Errorf("%w: unknown onboarding step %q", domainerrors.ErrValidation, step)
	}
	return u.mutate(ctx, providerID, func(p *entities.OnboardingProgress, _ time.Time) (bool, error) {
		if !p.CanNavigateTo(step) {
			return false, domainerrors.ErrStepNotReachable
		}
		if p.CurrentStep == step {
			return false, nil
		}
		p.CurrentStep = step
		return true, nil
	})
}

// CompletionPercentage is round(completed/7*100)
func (u *OnboardingUsecase) CompletionPercentage(ctx context.Context, providerID uuid.UUID) (int, error) {
	p, err := u.GetOrCreate(ctx, providerID)
	if err != nil {
		return 0, err
	}
	return p.CompletionPercentage(), nil
}

// CompleteOnboarding marks the final step done and stamps completion once.
// Every earlier step must be completed first.
func (u *OnboardingUsecase) CompleteOnboarding(ctx context.Context, providerID uuid.UUID) (*entities.OnboardingProgress, error) {
	return u.mutate(ctx, providerID, func(p *entities.OnboardingProgress, now time.Time) (bool, error) {
		if !p.ReadyToFinish() {
			return false, domainerrors.ErrStepNotReachable
		}
		changed := p.MarkCompleted(entities.OnboardingStepCompletion)
		if p.CurrentStep != entities.OnboardingStepCompletion {
			p.CurrentStep = entities.OnboardingStepCompletion
			changed = true
		}
		if !p.IsCompleted {
			p.IsCompleted = true
			p.CompletedAt = null.TimeFrom(now)
			changed = true
		}
		return changed, nil
	})
}

// mutate applies fn to the locked progress record and persists it when fn reports a change.
func (u *OnboardingUsecase) mutate(ctx context.Context, providerID uuid.UUID, fn func(p *entities.OnboardingProgress, now time.Time) (bool, error)) (*entities.OnboardingProgress, error) {
	if _, err := u.GetOrCreate(ctx, providerID); err != nil {
		return nil, err
	}

	var result *entities.OnboardingProgress
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		p, err := u.progressRepo.GetByProviderID(u.uow.WithLock(txCtx), providerID)
		if err != nil {
			return err
		}
		now := u.now()
		changed, err := fn(p, now)
		if err != nil {
			return err
		}
		if changed {
			p.UpdatedAt = now
			if err := u.progressRepo.Update(txCtx, p); err != nil {
				return err
			}
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
