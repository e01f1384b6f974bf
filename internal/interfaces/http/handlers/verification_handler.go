package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	domainerrors "github.com/Faitltd/FAIT-sub005/internal/domain/errors"
	"github.com/Faitltd/FAIT-sub005/internal/interfaces/http/response"
	"github.com/Faitltd/FAIT-sub005/internal/usecases"
)

// multipart overhead allowed on top of the file limit
const formOverheadBytes = 1 << 20

// VerificationHandler handles the provider's own verification case
type VerificationHandler struct {
	verification   VerificationService
	maxUploadBytes int64
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(verification VerificationService, maxUploadBytes int64) *VerificationHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = usecases.DefaultVerificationSettings().MaxUploadBytes
	}
	return &VerificationHandler{verification: verification, maxUploadBytes: maxUploadBytes}
}

type upsertCaseRequest struct {
	Level string `json:"level" binding:"required"`
}

// UpsertCase opens a case or changes its level
// PUT /api/v1/verification
func (h *VerificationHandler) UpsertCase(c *gin.Context) {
	providerID, ok := callerID(c)
	if !ok {
		return
	}

	var req upsertCaseRequest
	if !bindJSON(c, &req) {
		return
	}
	level, valid := entities.ParseVerificationLevel(req.Level)
	if !valid {
		response.Error(c, domainerrors.ErrUnknownLevel)
		return
	}

	vc, err := h.verification.CreateOrUpdateCase(c.Request.Context(), providerID, level)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, vc)
}

// GetStatus returns the provider-facing summary of the case
// GET /api/v1/verification
func (h *VerificationHandler) GetStatus(c *gin.Context) {
	providerID, ok := callerID(c)
	if !ok {
		return
	}

	summary, err := h.verification.StatusByProvider(c.Request.Context(), providerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

// UploadDocument stores one piece of evidence on the caller's case
// POST /api/v1/verification/documents
func (h *VerificationHandler) UploadDocument(c *gin.Context) {
	vc, ok := h.providerCase(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+formOverheadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, domainerrors.BadRequest("file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(c, domainerrors.BadRequest("file is unreadable"))
		return
	}
	defer f.Close()

	// one byte past the limit is enough for the engine to reject it
	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("file is unreadable"))
		return
	}

	metadata, err := uploadMetadata(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	displayName := strings.TrimSpace(c.PostForm("displayName"))
	if displayName == "" {
		displayName = fh.Filename
	}

	doc, err := h.verification.UploadDocument(c.Request.Context(), vc.ID, usecases.UploadDocumentInput{
		DocumentType: entities.DocumentType(strings.TrimSpace(c.PostForm("documentType"))),
		DisplayName:  displayName,
		ContentType:  fh.Header.Get("Content-Type"),
		Data:         data,
		Metadata:     metadata,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, doc)
}

func uploadMetadata(c *gin.Context) (entities.DocumentMetadata, error) {
	md := entities.DocumentMetadata{
		DocumentNumber:   strings.TrimSpace(c.PostForm("documentNumber")),
		IssuingAuthority: strings.TrimSpace(c.PostForm("issuingAuthority")),
	}
	raw := strings.TrimSpace(c.PostForm("expirationDate"))
	if raw == "" {
		return md, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			md.ExpirationDate = &t
			return md, nil
		}
	}
	return md, domainerrors.BadRequest("expirationDate must be YYYY-MM-DD or RFC3339")
}

// DeleteDocument removes one of the caller's documents
// DELETE /api/v1/verification/documents/:id
func (h *VerificationHandler) DeleteDocument(c *gin.Context) {
	providerID, ok := callerID(c)
	if !ok {
		return
	}
	docID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.verification.DeleteDocument(c.Request.Context(), providerID, docID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DocumentURL returns a short-lived download link for one of the caller's documents
// GET /api/v1/verification/documents/:id/url
func (h *VerificationHandler) DocumentURL(c *gin.Context) {
	providerID, ok := callerID(c)
	if !ok {
		return
	}
	docID, ok := pathID(c, "id")
	if !ok {
		return
	}

	u, err := h.verification.DocumentURL(c.Request.Context(), &providerID, docID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

// MissingDocuments lists required types not yet uploaded
// GET /api/v1/verification/missing
func (h *VerificationHandler) MissingDocuments(c *gin.Context) {
	vc, ok := h.providerCase(c)
	if !ok {
		return
	}

	missing, err := h.verification.MissingDocuments(c.Request.Context(), vc.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"missingDocuments": missing})
}

// Submit sends the case for review
// POST /api/v1/verification/submit
func (h *VerificationHandler) Submit(c *gin.Context) {
	h.caseAction(c, h.verification.Submit)
}

// Renew reopens an approved case inside its renewal window
// POST /api/v1/verification/renew
func (h *VerificationHandler) Renew(c *gin.Context) {
	h.caseAction(c, h.verification.Renew)
}

// History returns the case audit trail, newest first
// GET /api/v1/verification/history
func (h *VerificationHandler) History(c *gin.Context) {
	vc, ok := h.providerCase(c)
	if !ok {
		return
	}

	entries, err := h.verification.History(c.Request.Context(), vc.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": entries})
}

func (h *VerificationHandler) caseAction(c *gin.Context, action caseActionFunc) {
	vc, ok := h.providerCase(c)
	if !ok {
		return
	}

	updated, err := action(c.Request.Context(), vc.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, updated)
}

func (h *VerificationHandler) providerCase(c *gin.Context) (*entities.VerificationCase, bool) {
	providerID, ok := callerID(c)
	if !ok {
		return nil, false
	}
	vc, err := h.verification.GetCaseByProvider(c.Request.Context(), providerID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return vc, true
}
