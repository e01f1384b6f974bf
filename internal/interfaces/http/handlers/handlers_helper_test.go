package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	"github.com/Faitltd/FAIT-sub005/internal/interfaces/http/middleware"
	"github.com/Faitltd/FAIT-sub005/internal/usecases"
)

// verificationStub backs VerificationService with per-test funcs. Unset funcs panic.
type verificationStub struct {
	createOrUpdateCase func(uuid.UUID, entities.VerificationLevel) (*entities.VerificationCase, error)
	getCaseByProvider  func(uuid.UUID) (*entities.VerificationCase, error)
	statusByProvider   func(uuid.UUID) (*entities.VerificationStatusSummary, error)
	uploadDocument     func(uuid.UUID, usecases.UploadDocumentInput) (*entities.VerificationDocument, error)
	deleteDocument     func(uuid.UUID, uuid.UUID) error
	documentURL        func(*uuid.UUID, uuid.UUID) (*usecases.DocumentURL, error)
	missingDocuments   func(uuid.UUID) ([]entities.DocumentType, error)
	submit             func(uuid.UUID) (*entities.VerificationCase, error)
	renew              func(uuid.UUID) (*entities.VerificationCase, error)
	history            func(uuid.UUID) ([]*entities.HistoryEntry, error)
}

func (s *verificationStub) CreateOrUpdateCase(_ context.Context, providerID uuid.UUID, level entities.VerificationLevel) (*entities.VerificationCase, error) {
	return s.createOrUpdateCase(providerID, level)
}
func (s *verificationStub) GetCaseByProvider(_ context.Context, providerID uuid.UUID) (*entities.VerificationCase, error) {
	return s.getCaseByProvider(providerID)
}
func (s *verificationStub) StatusByProvider(_ context.Context, providerID uuid.UUID) (*entities.VerificationStatusSummary, error) {
	return s.statusByProvider(providerID)
}
func (s *verificationStub) UploadDocument(_ context.Context, caseID uuid.UUID, in usecases.UploadDocumentInput) (*entities.VerificationDocument, error) {
	return s.uploadDocument(caseID, in)
}
func (s *verificationStub) DeleteDocument(_ context.Context, providerID, documentID uuid.UUID) error {
	return s.deleteDocument(providerID, documentID)
}
func (s *verificationStub) DocumentURL(_ context.Context, providerID *uuid.UUID, documentID uuid.UUID) (*usecases.DocumentURL, error) {
	return s.documentURL(providerID, documentID)
}
func (s *verificationStub) MissingDocuments(_ context.Context, caseID uuid.UUID) ([]entities.DocumentType, error) {
	return s.missingDocuments(caseID)
}
func (s *verificationStub) Submit(_ context.Context, caseID uuid.UUID) (*entities.VerificationCase, error) {
	return s.submit(caseID)
}
func (s *verificationStub) Renew(_ context.Context, caseID uuid.UUID) (*entities.VerificationCase, error) {
	return s.renew(caseID)
}
func (s *verificationStub) History(_ context.Context, caseID uuid.UUID) ([]*entities.HistoryEntry, error) {
	return s.history(caseID)
}

// withCaller installs the identity AuthMiddleware would set.
func withCaller(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(middleware.UserIDKey, userID)
			c.Set(middleware.UserRoleKey, role)
		}
		c.Next()
	}
}

func newRouter(userID uuid.UUID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withCaller(userID, role))
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
