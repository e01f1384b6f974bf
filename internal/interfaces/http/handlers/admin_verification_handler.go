package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	domainerrors "github.com/Faitltd/FAIT-sub005/internal/domain/errors"
	"github.com/Faitltd/FAIT-sub005/internal/interfaces/http/response"
)

// AdminVerificationHandler serves the admin review queue
type AdminVerificationHandler struct {
	verification AdminVerificationService
}

// NewAdminVerificationHandler creates a new admin verification handler
func NewAdminVerificationHandler(verification AdminVerificationService) *AdminVerificationHandler {
	return &AdminVerificationHandler{verification: verification}
}

type decisionRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

type rejectionRequest struct {
	Reason string `json:"reason" binding:"max=2000"`
}

// ListCases lists cases with optional status and level filters
// GET /api/v1/admin/verifications
func (h *AdminVerificationHandler) ListCases(c *gin.Context) {
	var filter entities.CaseFilter
	if raw := c.Query("status"); raw != "" {
		status, ok := entities.ParseVerificationStatus(raw)
		if !ok {
			response.Error(c, domainerrors.BadRequest("unknown status"))
			return
		}
		filter.Status = status
	}
	if raw := c.Query("level"); raw != "" {
		level, ok := entities.ParseVerificationLevel(raw)
		if !ok {
			response.Error(c, domainerrors.ErrUnknownLevel)
			return
		}
		filter.Level = level
	}

	page, limit := pageParams(c)
	cases, meta, err := h.verification.ListCases(c.Request.Context(), filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, cases, meta)
}

// Stats returns counts per status and the average approval time
// GET /api/v1/admin/verifications/stats
func (h *AdminVerificationHandler) Stats(c *gin.Context) {
	stats, err := h.verification.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// GetCase returns a case with its documents
// GET /api/v1/admin/verifications/:id
func (h *AdminVerificationHandler) GetCase(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	vc, err := h.verification.GetCase(c.Request.Context(), caseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, vc)
}

// History returns a case audit trail
// GET /api/v1/admin/verifications/:id/history
func (h *AdminVerificationHandler) History(c *gin.Context) {
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	entries, err := h.verification.History(c.Request.Context(), caseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": entries})
}

// Approve approves a case under review
// POST /api/v1/admin/verifications/:id/approve
func (h *AdminVerificationHandler) Approve(c *gin.Context) {
	var req decisionRequest
	h.decide(c, &req, func(caseID, adminID uuid.UUID) (*entities.VerificationCase, error) {
		return h.verification.Approve(c.Request.Context(), caseID, adminID, req.Notes)
	})
}

// Reject rejects a case under review. A reason is mandatory.
// POST /api/v1/admin/verifications/:id/reject
func (h *AdminVerificationHandler) Reject(c *gin.Context) {
	var req rejectionRequest
	h.decide(c, &req, func(caseID, adminID uuid.UUID) (*entities.VerificationCase, error) {
		return h.verification.Reject(c.Request.Context(), caseID, adminID, req.Reason)
	})
}

// Reopen moves an expired case back to pending
// POST /api/v1/admin/verifications/:id/reopen
func (h *AdminVerificationHandler) Reopen(c *gin.Context) {
	var req decisionRequest
	h.decide(c, &req, func(caseID, adminID uuid.UUID) (*entities.VerificationCase, error) {
		return h.verification.Reopen(c.Request.Context(), caseID, adminID, req.Notes)
	})
}

func (h *AdminVerificationHandler) decide(c *gin.Context, req interface{}, fn func(caseID, adminID uuid.UUID) (*entities.VerificationCase, error)) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	caseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !bindOptionalJSON(c, req) {
		return
	}

	vc, err := fn(caseID, adminID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, vc)
}

// ApproveDocument marks one document approved
// POST /api/v1/admin/verifications/documents/:docId/approve
func (h *AdminVerificationHandler) ApproveDocument(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}

	doc, err := h.verification.ApproveDocument(c.Request.Context(), docID, adminID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, doc)
}

// RejectDocument marks one document rejected with a reason
// POST /api/v1/admin/verifications/documents/:docId/reject
func (h *AdminVerificationHandler) RejectDocument(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}
	var req rejectionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	doc, err := h.verification.RejectDocument(c.Request.Context(), docID, adminID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, doc)
}

// DocumentURL returns a download link for any document
// GET /api/v1/admin/verifications/documents/:docId/url
func (h *AdminVerificationHandler) DocumentURL(c *gin.Context) {
	docID, ok := pathID(c, "docId")
	if !ok {
		return
	}

	u, err := h.verification.DocumentURL(c.Request.Context(), nil, docID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}
