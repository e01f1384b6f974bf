package repositories

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/models"
)

// newTestDB opens a private in-memory sqlite database with the full schema.
// A single connection serialises transactions the way row locks do on postgres.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err, "open sqlite")

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
	createOnboardingTable(t, db)
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

// postgres stores completed_steps as text[]; sqlite keeps the array literal as TEXT.
func createOnboardingTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE onboarding_progress (
		id TEXT PRIMARY KEY,
		provider_id TEXT NOT NULL UNIQUE,
		current_step TEXT NOT NULL,
		completed_steps TEXT,
		is_completed BOOLEAN NOT NULL DEFAULT 0,
		completed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}
