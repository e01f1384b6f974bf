package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/volatiletech/null/v8"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	m.Called(ctx)
	return ctx
}

// Mock VerificationCaseRepository
type MockVerificationCaseRepository struct {
	mock.Mock
}

func (m *MockVerificationCaseRepository) Create(ctx context.Context, c *entities.VerificationCase) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockVerificationCaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.VerificationCase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VerificationCase), args.Error(1)
}

func (m *MockVerificationCaseRepository) GetByProviderID(ctx context.Context, providerID uuid.UUID) (*entities.VerificationCase, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VerificationCase), args.Error(1)
}

func (m *MockVerificationCaseRepository) UpdateLevel(ctx context.Context, id uuid.UUID, level entities.VerificationLevel, at time.Time) error {
	args := m.Called(ctx, id, level, at)
	return args.Error(0)
}

func (m *MockVerificationCaseRepository) TouchIfPending(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockVerificationCaseRepository) Transition(ctx context.Context, c *entities.VerificationCase, from entities.VerificationStatus) error {
	args := m.Called(ctx, c, from)
	return args.Error(0)
}

func (m *MockVerificationCaseRepository) List(ctx context.Context, filter entities.CaseFilter, limit, offset int) ([]*entities.VerificationCase, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.VerificationCase), args.Get(1).(int64), args.Error(2)
}

func (m *MockVerificationCaseRepository) ListApprovedExpiringBetween(ctx context.Context, after, until time.Time, limit int) ([]*entities.VerificationCase, error) {
	args := m.Called(ctx, after, until, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.VerificationCase), args.Error(1)
}

func (m *MockVerificationCaseRepository) ListApprovedExpiredBefore(ctx context.Context, before time.Time, limit int) ([]*entities.VerificationCase, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.VerificationCase), args.Error(1)
}

func (m *MockVerificationCaseRepository) CountByStatus(ctx context.Context) (map[entities.VerificationStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entities.VerificationStatus]int64), args.Error(1)
}

func (m *MockVerificationCaseRepository) AverageApprovalDuration(ctx context.Context) (time.Duration, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Duration), args.Error(1)
}

// Mock VerificationDocumentRepository
type MockVerificationDocumentRepository struct {
	mock.Mock
}

func (m *MockVerificationDocumentRepository) Create(ctx context.Context, doc *entities.VerificationDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockVerificationDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.VerificationDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VerificationDocument), args.Error(1)
}

func (m *MockVerificationDocumentRepository) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*entities.VerificationDocument, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.VerificationDocument), args.Error(1)
}

func (m *MockVerificationDocumentRepository) UpdateReview(ctx context.Context, id uuid.UUID, status entities.DocumentStatus, reviewer uuid.UUID, reason null.String, at time.Time) error {
	args := m.Called(ctx, id, status, reviewer, reason, at)
	return args.Error(0)
}

func (m *MockVerificationDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock VerificationHistoryRepository
type MockVerificationHistoryRepository struct {
	mock.Mock
}

func (m *MockVerificationHistoryRepository) Create(ctx context.Context, entry *entities.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockVerificationHistoryRepository) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*entities.HistoryEntry, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.HistoryEntry), args.Error(1)
}

func (m *MockVerificationHistoryRepository) ListByAction(ctx context.Context, caseID uuid.UUID, action entities.HistoryAction, since time.Time) ([]*entities.HistoryEntry, error) {
	args := m.Called(ctx, caseID, action, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.HistoryEntry), args.Error(1)
}

// Mock DocumentStore
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Put(ctx context.Context, providerID uuid.UUID, docType entities.DocumentType, contentType string, data []byte) (*entities.StoredObject, error) {
	args := m.Called(ctx, providerID, docType, contentType, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.StoredObject), args.Error(1)
}

func (m *MockDocumentStore) SignedURL(ctx context.Context, ref string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, ref, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentStore) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

// Mock Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, recipient uuid.UUID, kind entities.NotificationKind, nc entities.NotificationContext) error {
	args := m.Called(ctx, recipient, kind, nc)
	return args.Error(0)
}

// Mock OnboardingProgressRepository
type MockOnboardingProgressRepository struct {
	mock.Mock
}

func (m *MockOnboardingProgressRepository) Create(ctx context.Context, p *entities.OnboardingProgress) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockOnboardingProgressRepository) GetByProviderID(ctx context.Context, providerID uuid.UUID) (*entities.OnboardingProgress, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OnboardingProgress), args.Error(1)
}

func (m *MockOnboardingProgressRepository) Update(ctx context.Context, p *entities.OnboardingProgress) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// Mock NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *entities.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Notification, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// Mock ProviderContactRepository
type MockProviderContactRepository struct {
	mock.Mock
}

func (m *MockProviderContactRepository) Upsert(ctx context.Context, c *entities.ProviderContact) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockProviderContactRepository) GetByProviderID(ctx context.Context, providerID uuid.UUID) (*entities.ProviderContact, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ProviderContact), args.Error(1)
}
