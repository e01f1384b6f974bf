package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	domainerrors "github.com/Faitltd/FAIT-sub005/internal/domain/errors"
	"github.com/Faitltd/FAIT-sub005/internal/usecases"
)

func TestOnboarding_GetOrCreateStartsAtWelcome(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	providerID := uuid.New()

	p, err := env.onboarding.GetOrCreate(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, entities.OnboardingStepWelcome, p.CurrentStep)
	assert.Empty(t, p.CompletedSteps)
	assert.False(t, p.IsCompleted)

	again, err := env.onboarding.GetOrCreate(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
}

func TestOnboarding_CompleteStepIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	providerID := uuid.New()

	_, err := env.onboarding.CompleteStep(ctx, providerID, entities.OnboardingStepWelcome)
	require.NoError(t, err)
	p, err := env.onboarding.CompleteStep(ctx, providerID, entities.OnboardingStepWelcome)
	require.NoError(t, err)
	assert.Equal(t, []entities.OnboardingStep{entities.OnboardingStepWelcome}, p.CompletedSteps)

	pct, err := env.onboarding.CompletionPercentage(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, 14, pct)

	_, err = env.onboarding.CompleteStep(ctx, providerID, entities.OnboardingStep("PAYMENT"))
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestOnboarding_PercentageIsMonotone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	providerID := uuid.New()

	last := 0
	for _, step := range entities.AllOnboardingSteps() {
		_, err := env.onboarding.CompleteStep(ctx, providerID, step)
		require.NoError(t, err)
		pct, err := env.onboarding.CompletionPercentage(ctx, providerID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, pct, last)
		last = pct
	}
	assert.Equal(t, 100, last)
}

func TestOnboarding_Navigation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	providerID := uuid.New()

	next, err := env.onboarding.Advance(ctx, providerID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, entities.OnboardingStepProfile, *next)

	// PROFILE is not reachable until WELCOME is done
	_, err = env.onboarding.SetCurrentStep(ctx, providerID, entities.OnboardingStepProfile)
	require.ErrorIs(t, err, domainerrors.ErrStepNotReachable)

	_, err = env.onboarding.CompleteStep(ctx, providerID, entities.OnboardingStepWelcome)
	require.NoError(t, err)

	p, err := env.onboarding.SetCurrentStep(ctx, providerID, entities.OnboardingStepProfile)
	require.NoError(t, err)
	assert.Equal(t, entities.OnboardingStepProfile, p.CurrentStep)

	_, err = env.onboarding.SetCurrentStep(ctx, providerID, entities.OnboardingStepBusiness)
	require.ErrorIs(t, err, domainerrors.ErrStepNotReachable)

	// back to a completed step is allowed
	p, err = env.onboarding.SetCurrentStep(ctx, providerID, entities.OnboardingStepWelcome)
	require.NoError(t, err)
	assert.Equal(t, entities.OnboardingStepWelcome, p.CurrentStep)

	// and forward again to the next incomplete one
	p, err = env.onboarding.SetCurrentStep(ctx, providerID, entities.OnboardingStepProfile)
	require.NoError(t, err)
	assert.Equal(t, entities.OnboardingStepProfile, p.CurrentStep)

	// Advance does not move the cursor
	_, err = env.onboarding.Advance(ctx, providerID)
	require.NoError(t, err)
	p, err = env.onboarding.GetOrCreate(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, entities.OnboardingStepProfile, p.CurrentStep)
}

func TestOnboarding_WalkThroughEveryStep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	providerID := uuid.New()

	p, err := env.onboarding.GetOrCreate(ctx, providerID)
	require.NoError(t, err)

	visited := []entities.OnboardingStep{p.CurrentStep}
	for {
		_, err := env.onboarding.CompleteStep(ctx, providerID, p.CurrentStep)
		require.NoError(t, err)

		next, err := env.onboarding.Advance(ctx, providerID)
		require.NoError(t, err)
		if next == nil {
			break
		}
		p, err = env.onboarding.SetCurrentStep(ctx, providerID, *next)
		require.NoError(t, err, "moving to %s", *next)
		visited = append(visited, p.CurrentStep)
	}
	assert.Equal(t, entities.AllOnboardingSteps(), visited)

	p, err = env.onboarding.CompleteOnboarding(ctx, providerID)
	require.NoError(t, err)
	assert.True(t, p.IsCompleted)
	assert.Len(t, p.CompletedSteps, 7)

	pct, err := env.onboarding.CompletionPercentage(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, 100, pct)
}

func TestOnboarding_CannotCompleteAhead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	providerID := uuid.New()

	_, err := env.onboarding.CompleteStep(ctx, providerID, entities.OnboardingStepBackgroundCheck)
	require.ErrorIs(t, err, domainerrors.ErrStepNotReachable)

	_, err = env.onboarding.SetCurrentStep(ctx, providerID, entities.OnboardingStepBackgroundCheck)
	require.ErrorIs(t, err, domainerrors.ErrStepNotReachable)

	p, err := env.onboarding.GetOrCreate(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, entities.OnboardingStepWelcome, p.CurrentStep)
	assert.Empty(t, p.CompletedSteps)
}

func TestOnboarding_CompleteOnboardingRequiresEarlierSteps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	providerID := uuid.New()

	_, err := env.onboarding.CompleteOnboarding(ctx, providerID)
	require.ErrorIs(t, err, domainerrors.ErrStepNotReachable)

	for _, step := range entities.AllOnboardingSteps()[:4] {
		_, err := env.onboarding.CompleteStep(ctx, providerID, step)
		require.NoError(t, err)
	}
	_, err = env.onboarding.CompleteOnboarding(ctx, providerID)
	require.ErrorIs(t, err, domainerrors.ErrStepNotReachable)

	p, err := env.onboarding.GetOrCreate(ctx, providerID)
	require.NoError(t, err)
	assert.False(t, p.IsCompleted)
	assert.False(t, p.HasCompleted(entities.OnboardingStepCompletion))
	assert.Equal(t, entities.OnboardingStepWelcome, p.CurrentStep)
}

func TestOnboarding_CompleteOnboarding(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	providerID := uuid.New()

	for _, step := range entities.AllOnboardingSteps()[:6] {
		_, err := env.onboarding.CompleteStep(ctx, providerID, step)
		require.NoError(t, err)
	}

	p, err := env.onboarding.CompleteOnboarding(ctx, providerID)
	require.NoError(t, err)
	assert.True(t, p.IsCompleted)
	assert.True(t, p.CompletedAt.Valid)
	assert.Equal(t, entities.OnboardingStepCompletion, p.CurrentStep)
	assert.True(t, p.HasCompleted(entities.OnboardingStepCompletion))

	next, err := env.onboarding.Advance(ctx, providerID)
	require.NoError(t, err)
	assert.Nil(t, next)

	first := p.CompletedAt.Time
	p, err = env.onboarding.CompleteOnboarding(ctx, providerID)
	require.NoError(t, err)
	assert.True(t, p.CompletedAt.Time.Equal(first))
}

func TestOnboarding_ViewCarriesVerificationStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	view, err := env.onboarding.View(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, view.VerificationStatus)
	assert.False(t, view.IsVerified)
	require.NotNil(t, view.NextStep)
	assert.Equal(t, entities.OnboardingStepProfile, *view.NextStep)

	c := env.approvedCase(t)
	view, err = env.onboarding.View(ctx, c.ProviderID)
	require.NoError(t, err)
	require.NotNil(t, view.VerificationStatus)
	assert.Equal(t, entities.VerificationStatusApproved, *view.VerificationStatus)
	assert.True(t, view.IsVerified)
	assert.Zero(t, view.Percentage)
}

func TestOnboarding_CreateRaceRereads(t *testing.T) {
	progress := new(MockOnboardingProgressRepository)
	providerID := uuid.New()
	existing := &entities.OnboardingProgress{ID: uuid.New(), ProviderID: providerID, CurrentStep: entities.OnboardingStepWelcome}

	progress.On("GetByProviderID", mock.Anything, providerID).Return(nil, domainerrors.ErrNotFound).Once()
	progress.On("Create", mock.Anything, mock.Anything).Return(domainerrors.ErrConflict)
	progress.On("GetByProviderID", mock.Anything, providerID).Return(existing, nil).Once()

	uc := usecases.NewOnboardingUsecase(progress, nil, nil)
	p, err := uc.GetOrCreate(context.Background(), providerID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, p.ID)
}

func TestOnboarding_RepositoryErrorsPropagate(t *testing.T) {
	progress := new(MockOnboardingProgressRepository)
	progress.On("GetByProviderID", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	uc := usecases.NewOnboardingUsecase(progress, nil, nil)
	_, err := uc.CompleteStep(context.Background(), uuid.New(), entities.OnboardingStepProfile)
	require.EqualError(t, err, "db down")
}
