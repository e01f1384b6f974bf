package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	domainerrors "github.com/Faitltd/FAIT-sub005/internal/domain/errors"
	"github.com/Faitltd/FAIT-sub005/internal/interfaces/http/middleware"
)

type onboardingStub struct {
	progress *entities.OnboardingProgress
	next     *entities.OnboardingStep
	lastStep entities.OnboardingStep
	err      error
}

func (s *onboardingStub) View(context.Context, uuid.UUID) (*entities.OnboardingView, error) {
	return &entities.OnboardingView{Progress: s.progress, Percentage: s.progress.CompletionPercentage(), NextStep: s.next}, s.err
}
func (s *onboardingStub) CompleteStep(_ context.Context, _ uuid.UUID, step entities.OnboardingStep) (*entities.OnboardingProgress, error) {
	s.lastStep = step
	return s.progress, s.err
}
func (s *onboardingStub) SetCurrentStep(_ context.Context, _ uuid.UUID, step entities.OnboardingStep) (*entities.OnboardingProgress, error) {
	s.lastStep = step
	if s.err != nil {
		return nil, s.err
	}
	return s.progress, nil
}
func (s *onboardingStub) Advance(context.Context, uuid.UUID) (*entities.OnboardingStep, error) {
	return s.next, s.err
}
func (s *onboardingStub) CompleteOnboarding(context.Context, uuid.UUID) (*entities.OnboardingProgress, error) {
	return s.progress, s.err
}

func onboardingRouter(stub *onboardingStub) http.Handler {
	h := NewOnboardingHandler(stub)
	r := newRouter(uuid.New(), middleware.RoleProvider)
	r.GET("/onboarding", h.GetProgress)
	r.POST("/onboarding/steps/:step/complete", h.CompleteStep)
	r.PUT("/onboarding/current", h.SetCurrentStep)
	r.GET("/onboarding/next", h.NextStep)
	r.POST("/onboarding/complete", h.Complete)
	return r
}

func TestOnboardingHandler_Flow(t *testing.T) {
	next := entities.OnboardingStepProfile
	stub := &onboardingStub{
		progress: &entities.OnboardingProgress{
			CurrentStep:    entities.OnboardingStepWelcome,
			CompletedSteps: []entities.OnboardingStep{entities.OnboardingStepWelcome},
		},
		next: &next,
	}
	r := onboardingRouter(stub)

	w := doJSON(r, http.MethodGet, "/onboarding", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PROFILE", decodeBody(t, w)["nextStep"])

	w = doJSON(r, http.MethodPost, "/onboarding/steps/background-check/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.OnboardingStepBackgroundCheck, stub.lastStep)

	w = doJSON(r, http.MethodPost, "/onboarding/steps/lunch/complete", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/onboarding/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PROFILE", decodeBody(t, w)["nextStep"])

	w = doJSON(r, http.MethodPost, "/onboarding/complete", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOnboardingHandler_SetCurrentStep(t *testing.T) {
	stub := &onboardingStub{progress: &entities.OnboardingProgress{}, err: domainerrors.ErrStepNotReachable}
	r := onboardingRouter(stub)

	w := doJSON(r, http.MethodPut, "/onboarding/current", map[string]string{"step": "services"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, entities.OnboardingStepServices, stub.lastStep)

	w = doJSON(r, http.MethodPut, "/onboarding/current", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOnboardingHandler_NextAtEnd(t *testing.T) {
	r := onboardingRouter(&onboardingStub{progress: &entities.OnboardingProgress{}})

	w := doJSON(r, http.MethodGet, "/onboarding/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body, "nextStep")
	assert.Nil(t, body["nextStep"])
}
