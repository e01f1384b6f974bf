package entities

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// OnboardingStep is one stage of provider setup
type OnboardingStep string

const (
	OnboardingStepWelcome         OnboardingStep = "WELCOME"
	OnboardingStepProfile         OnboardingStep = "PROFILE"
	OnboardingStepBusiness        OnboardingStep = "BUSINESS"
	OnboardingStepServices        OnboardingStep = "SERVICES"
	OnboardingStepVerification    OnboardingStep = "VERIFICATION"
	OnboardingStepBackgroundCheck OnboardingStep = "BACKGROUND_CHECK"
	OnboardingStepCompletion      OnboardingStep = "COMPLETION"
)

var onboardingOrder = []OnboardingStep{
	OnboardingStepWelcome,
	OnboardingStepProfile,
	OnboardingStepBusiness,
	OnboardingStepServices,
	OnboardingStepVerification,
	OnboardingStepBackgroundCheck,
	OnboardingStepCompletion,
}

// AllOnboardingSteps returns the steps in their fixed order
func AllOnboardingSteps() []OnboardingStep {
	return append([]OnboardingStep(nil), onboardingOrder...)
}

// Index returns the position of s in the order, or -1.
func (s OnboardingStep) Index() int {
	for i, step := range onboardingOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known step
func (s OnboardingStep) Valid() bool {
	return s.Index() >= 0
}

// Next returns the step following s. ok is false at the last step.
func (s OnboardingStep) Next() (OnboardingStep, bool) {
	i := s.Index()
	if i < 0 || i == len(onboardingOrder)-1 {
		return "", false
	}
	return onboardingOrder[i+1], true
}

// ParseOnboardingStep accepts any casing and dashes for underscores.
func ParseOnboardingStep(raw string) (OnboardingStep, bool) {
	s := OnboardingStep(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", "_")))
	return s, s.Valid()
}

// OnboardingProgress tracks one provider through setup
type OnboardingProgress struct {
	ID             uuid.UUID        `json:"id"`
	ProviderID     uuid.UUID        `json:"providerId"`
	CurrentStep    OnboardingStep   `json:"currentStep"`
	CompletedSteps []OnboardingStep `json:"completedSteps"`
	IsCompleted    bool             `json:"isCompleted"`
	CompletedAt    null.Time        `json:"completedAt"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// HasCompleted reports whether step is in the completed set
func (p *OnboardingProgress) HasCompleted(step OnboardingStep) bool {
	for _, s := range p.CompletedSteps {
		if s == step {
			return true
		}
	}
	return false
}

// MarkCompleted adds step to the completed set. It reports whether the set changed.
func (p *OnboardingProgress) MarkCompleted(step OnboardingStep) bool {
	if p.HasCompleted(step) {
		return false
	}
	p.CompletedSteps = append(p.CompletedSteps, step)
	return true
}

// FirstIncomplete returns the earliest step in order that is not completed.
// ok is false once every step is done.
func (p *OnboardingProgress) FirstIncomplete() (OnboardingStep, bool) {
	for _, step := range onboardingOrder {
		if !p.HasCompleted(step) {
			return step, true
		}
	}
	return "", false
}

// CanNavigateTo reports whether step is completed, current, or the next incomplete step.
func (p *OnboardingProgress) CanNavigateTo(step OnboardingStep) bool {
	if step == p.CurrentStep || p.HasCompleted(step) {
		return true
	}
	next, ok := p.FirstIncomplete()
	return ok && step == next
}

// ReadyToFinish reports whether onboarding may be closed: the cursor is on
// COMPLETION or every earlier step is completed.
func (p *OnboardingProgress) ReadyToFinish() bool {
	if p.CurrentStep == OnboardingStepCompletion {
		return true
	}
	next, ok := p.FirstIncomplete()
	return !ok || next == OnboardingStepCompletion
}

// CompletionPercentage is the rounded share of completed steps, 0..100.
func (p *OnboardingProgress) CompletionPercentage() int {
	return int(math.Round(float64(len(p.CompletedSteps)) / float64(len(onboardingOrder)) * 100))
}

// OnboardingView is the progress record plus what the UI derives from it
type OnboardingView struct {
	Progress           *OnboardingProgress `json:"progress"`
	Percentage         int                 `json:"percentage"`
	NextStep           *OnboardingStep     `json:"nextStep"`
	VerificationStatus *VerificationStatus `json:"verificationStatus"`
	IsVerified         bool                `json:"isVerified"`
}
