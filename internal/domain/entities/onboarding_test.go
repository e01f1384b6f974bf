package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOnboardingStep_Order(t *testing.T) {
	steps := AllOnboardingSteps()
	assert.Len(t, steps, 7)
	assert.Equal(t, OnboardingStepWelcome, steps[0])
	assert.Equal(t, OnboardingStepCompletion, steps[6])

	next, ok := OnboardingStepServices.Next()
	assert.True(t, ok)
	assert.Equal(t, OnboardingStepVerification, next)

	_, ok = OnboardingStepCompletion.Next()
	assert.False(t, ok)
	_, ok = OnboardingStep("NOPE").Next()
	assert.False(t, ok)

	step, ok := ParseOnboardingStep("background-check")
	assert.True(t, ok)
	assert.Equal(t, OnboardingStepBackgroundCheck, step)
}

func TestOnboardingProgress_Navigation(t *testing.T) {
	p := &OnboardingProgress{CurrentStep: OnboardingStepBusiness}
	assert.True(t, p.MarkCompleted(OnboardingStepWelcome))
	assert.False(t, p.MarkCompleted(OnboardingStepWelcome))
	assert.True(t, p.MarkCompleted(OnboardingStepProfile))

	assert.True(t, p.CanNavigateTo(OnboardingStepWelcome))
	assert.True(t, p.CanNavigateTo(OnboardingStepBusiness))
	assert.False(t, p.CanNavigateTo(OnboardingStepServices))
}

func TestOnboardingProgress_NextIncompleteIsReachable(t *testing.T) {
	p := &OnboardingProgress{CurrentStep: OnboardingStepWelcome}
	next, ok := p.FirstIncomplete()
	assert.True(t, ok)
	assert.Equal(t, OnboardingStepWelcome, next)
	assert.False(t, p.CanNavigateTo(OnboardingStepProfile))

	p.MarkCompleted(OnboardingStepWelcome)
	assert.True(t, p.CanNavigateTo(OnboardingStepProfile))
	assert.False(t, p.CanNavigateTo(OnboardingStepBusiness))
	assert.False(t, p.ReadyToFinish())

	for _, step := range AllOnboardingSteps()[:6] {
		p.MarkCompleted(step)
	}
	assert.True(t, p.CanNavigateTo(OnboardingStepCompletion))
	assert.True(t, p.ReadyToFinish())

	p.MarkCompleted(OnboardingStepCompletion)
	_, ok = p.FirstIncomplete()
	assert.False(t, ok)
	assert.True(t, p.ReadyToFinish())
}

func TestOnboardingProgress_PercentageMonotone(t *testing.T) {
	p := &OnboardingProgress{CurrentStep: OnboardingStepWelcome}
	assert.Equal(t, 0, p.CompletionPercentage())

	last := 0
	for _, step := range AllOnboardingSteps() {
		p.MarkCompleted(step)
		p.MarkCompleted(step)
		got := p.CompletionPercentage()
		assert.GreaterOrEqual(t, got, last)
		last = got
	}
	assert.Equal(t, 100, last)

	p = &OnboardingProgress{CompletedSteps: []OnboardingStep{OnboardingStepWelcome}}
	assert.Equal(t, 14, p.CompletionPercentage())
}
