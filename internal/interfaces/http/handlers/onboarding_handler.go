package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	domainerrors "github.com/Faitltd/FAIT-sub005/internal/domain/errors"
	"github.com/Faitltd/FAIT-sub005/internal/interfaces/http/response"
)

// OnboardingHandler handles provider onboarding progress
type OnboardingHandler struct {
	onboarding OnboardingService
}

// NewOnboardingHandler creates a new onboarding handler
func NewOnboardingHandler(onboarding OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding}
}

type setStepRequest struct {
	Step string `json:"step" binding:"required"`
}

// GetProgress returns progress, percentage and verification state
// GET /api/v1/onboarding
func (h *OnboardingHandler) GetProgress(c *gin.Context) {
	providerID, ok := callerID(c)
	if !ok {
		return
	}

	view, err := h.onboarding.View(c.Request.Context(), providerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// CompleteStep marks a step completed
// POST /api/v1/onboarding/steps/:step/complete
func (h *OnboardingHandler) CompleteStep(c *gin.Context) {
	providerID, ok := callerID(c)
	if !ok {
		return
	}
	step, ok := entities.ParseOnboardingStep(c.Param("step"))
	if !ok {
		response.Error(c, domainerrors.BadRequest("unknown onboarding step"))
		return
	}

	progress, err := h.onboarding.CompleteStep(c.Request.Context(), providerID, step)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, progress)
}

// SetCurrentStep navigates to a step already reached
// PUT /api/v1/onboarding/current
func (h *OnboardingHandler) SetCurrentStep(c *gin.Context) {
	providerID, ok := callerID(c)
	if !ok {
		return
	}
	var req setStepRequest
	if !bindJSON(c, &req) {
		return
	}
	step, ok := entities.ParseOnboardingStep(req.Step)
	if !ok {
		response.Error(c, domainerrors.BadRequest("unknown onboarding step"))
		return
	}

	progress, err := h.onboarding.SetCurrentStep(c.Request.Context(), providerID, step)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, progress)
}

// NextStep returns the step after the current one, or null at the end
// GET /api/v1/onboarding/next
func (h *OnboardingHandler) NextStep(c *gin.Context) {
	providerID, ok := callerID(c)
	if !ok {
		return
	}

	next, err := h.onboarding.Advance(c.Request.Context(), providerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"nextStep": next})
}

// Complete finishes onboarding
// POST /api/v1/onboarding/complete
func (h *OnboardingHandler) Complete(c *gin.Context) {
	providerID, ok := callerID(c)
	if !ok {
		return
	}

	progress, err := h.onboarding.CompleteOnboarding(c.Request.Context(), providerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, progress)
}
