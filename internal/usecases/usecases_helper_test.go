package usecases_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/metrics"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/models"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/repositories"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/storage"
	"github.com/Faitltd/FAIT-sub005/internal/usecases"
	"github.com/Faitltd/FAIT-sub005/pkg/jwt"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentNotification struct {
	Recipient uuid.UUID
	Kind      entities.NotificationKind
	Context   entities.NotificationContext
}

// recordingNotifier keeps every Send call and optionally fails them
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, recipient uuid.UUID, kind entities.NotificationKind, nc entities.NotificationContext) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{Recipient: recipient, Kind: kind, Context: nc})
	return n.err
}

func (n *recordingNotifier) Sent() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}

func (n *recordingNotifier) OfKind(kind entities.NotificationKind) []sentNotification {
	var out []sentNotification
	for _, s := range n.Sent() {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

type testEnv struct {
	db           *gorm.DB
	clock        *testClock
	notifier     *recordingNotifier
	metrics      *metrics.Metrics
	cases        *repositories.VerificationCaseRepository
	history      *repositories.VerificationHistoryRepository
	store        *storage.BlobStore
	verification *usecases.VerificationUsecase
	reminders    *usecases.ReminderUsecase
	onboarding   *usecases.OnboardingUsecase
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:uc_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.VerificationCase{},
		&models.VerificationDocument{},
		&models.VerificationHistory{},
		&models.Notification{},
		&models.ProviderContact{},
		&models.VerificationBlob{},
	))
	require.NoError(t, db.Exec(`CREATE TABLE onboarding_progress (
		id TEXT PRIMARY KEY,
		provider_id TEXT NOT NULL UNIQUE,
		current_step TEXT NOT NULL,
		completed_steps TEXT,
		is_completed BOOLEAN NOT NULL DEFAULT 0,
		completed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`).Error)
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	clock := &testClock{}
	clock.Set(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	notifier := &recordingNotifier{}

	caseRepo := repositories.NewVerificationCaseRepository(db)
	docRepo := repositories.NewVerificationDocumentRepository(db)
	historyRepo := repositories.NewVerificationHistoryRepository(db)
	uow := repositories.NewUnitOfWork(db)
	store := storage.NewBlobStore(db, jwt.NewJWTService("test-secret", time.Hour), "http://localhost:8080")

	verification := usecases.NewVerificationUsecase(caseRepo, docRepo, historyRepo, uow, store, notifier, m, usecases.DefaultVerificationSettings())
	verification.SetClock(clock.Now)

	reminders := usecases.NewReminderUsecase(caseRepo, historyRepo, uow, verification, notifier, m, []int{30, 7, 1}, 4)
	reminders.SetClock(clock.Now)

	onboarding := usecases.NewOnboardingUsecase(repositories.NewOnboardingProgressRepository(db), caseRepo, uow)
	onboarding.SetClock(clock.Now)

	return &testEnv{
		db:           db,
		clock:        clock,
		notifier:     notifier,
		metrics:      m,
		cases:        caseRepo,
		history:      historyRepo,
		store:        store,
		verification: verification,
		reminders:    reminders,
		onboarding:   onboarding,
	}
}

// upload stores a small PDF of docType against the case.
func (e *testEnv) upload(t *testing.T, caseID uuid.UUID, docType entities.DocumentType) *entities.VerificationDocument {
	t.Helper()
	doc, err := e.verification.UploadDocument(context.Background(), caseID, usecases.UploadDocumentInput{
		DocumentType: docType,
		ContentType:  "application/pdf",
		Data:         pdfBytes,
	})
	require.NoError(t, err)
	return doc
}

// approvedCase walks a fresh BASIC case to APPROVED at the current clock.
func (e *testEnv) approvedCase(t *testing.T) *entities.VerificationCase {
	t.Helper()
	ctx := context.Background()
	c, err := e.verification.CreateOrUpdateCase(ctx, uuid.New(), entities.VerificationLevelBasic)
	require.NoError(t, err)
	e.upload(t, c.ID, entities.DocumentTypeIdentity)
	_, err = e.verification.Submit(ctx, c.ID)
	require.NoError(t, err)
	c, err = e.verification.Approve(ctx, c.ID, uuid.New(), "")
	require.NoError(t, err)
	return c
}

func actions(entries []*entities.HistoryEntry) []entities.HistoryAction {
	out := make([]entities.HistoryAction, len(entries))
	for i, e := range entries {
		out[i] = e.Action
	}
	return out
}
