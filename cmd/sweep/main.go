package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Faitltd/FAIT-sub005/internal/config"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/datasources/postgres"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/jobs"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/metrics"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/notifier"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/repositories"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/storage"
	"github.com/Faitltd/FAIT-sub005/internal/usecases"
	"github.com/Faitltd/FAIT-sub005/pkg/jwt"
	"github.com/Faitltd/FAIT-sub005/pkg/logger"
	"github.com/Faitltd/FAIT-sub005/pkg/redis"
)

const sweepLockKey = "verification:sweep:lock"

type sweepDeps struct {
	loadEnv   func() error
	loadCfg   func() *config.Config
	initLog   func(env string)
	initRedis func(url, password string) error
	openDB    func(cfg config.DatabaseConfig) (*gorm.DB, error)
	getStdDB  func(db *gorm.DB) (*sql.DB, error)
	out       io.Writer
}

func defaultSweepDeps() sweepDeps {
	return sweepDeps{
		loadEnv:   func() error { return godotenv.Load() },
		loadCfg:   config.Load,
		initLog:   logger.Init,
		initRedis: redis.Init,
		openDB:    postgres.NewConnection,
		getStdDB:  func(db *gorm.DB) (*sql.DB, error) { return db.DB() },
		out:       os.Stdout,
	}
}

func parseAt(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at must be RFC3339 or YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// runSweep performs one expiration and reminder pass outside the server, sharing its run lock.
func runSweep(ctx context.Context, args []string, deps sweepDeps) error {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	atFlag := fs.String("at", "", "evaluate the sweep as of this time (RFC3339 or YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	at, err := parseAt(*atFlag)
	if err != nil {
		return err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := deps.loadCfg()
	deps.initLog(cfg.Server.Env)
	defer func() { _ = logger.GetLogger().Sync() }()

	if err := deps.initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}

	db, err := deps.openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := deps.getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	reminders := newReminderUsecase(cfg, db)
	if !at.IsZero() {
		reminders.SetClock(func() time.Time { return at })
	}
	job := jobs.NewVerificationReminderJob(
		reminders,
		jobs.NewRunLock(sweepLockKey, cfg.Verification.SweepLockTTL),
		nil,
		cfg.Verification.SweepInterval,
	)

	lockScope := "redis"
	if !redis.Enabled() {
		// a local lock cannot see the server's job in another process
		lockScope = "local"
		logger.Warn(ctx, "Redis not configured; this sweep may overlap with a running server's sweep")
	}
	_, _ = fmt.Fprintf(deps.out, "run_lock=%s\n", lockScope)

	result, ran, err := job.RunOnce(ctx)
	if !ran && err == nil {
		_, _ = fmt.Fprintln(deps.out, "sweep already running elsewhere, nothing done")
		return nil
	}
	if err != nil {
		logger.Error(ctx, "Verification sweep failed", zap.Error(err))
		return fmt.Errorf("sweep failed: %w", err)
	}

	_, _ = fmt.Fprintf(deps.out, "expired=%d\n", result.Expired)
	_, _ = fmt.Fprintf(deps.out, "reminded=%d\n", result.Reminded)
	_, _ = fmt.Fprintf(deps.out, "failed=%d\n", result.Failed)
	return nil
}

func newReminderUsecase(cfg *config.Config, db *gorm.DB) *usecases.ReminderUsecase {
	m := metrics.New(prometheus.NewRegistry())
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	caseRepo := repositories.NewVerificationCaseRepository(db)
	historyRepo := repositories.NewVerificationHistoryRepository(db)
	uow := repositories.NewUnitOfWork(db)
	notify := notifier.NewNotifier(
		repositories.NewNotificationRepository(db),
		repositories.NewProviderContactRepository(db),
		notifier.NewRenderer(),
		notifier.NewMailer(cfg.SMTP),
	)

	verification := usecases.NewVerificationUsecase(
		caseRepo,
		repositories.NewVerificationDocumentRepository(db),
		historyRepo,
		uow,
		storage.NewBlobStore(db, jwtService, cfg.Storage.PublicBaseURL),
		notify,
		m,
		usecases.VerificationSettingsFromConfig(cfg),
	)
	return usecases.NewReminderUsecase(
		caseRepo, historyRepo, uow, verification, notify, m,
		cfg.Verification.ReminderThresholds, cfg.Verification.SweepConcurrency,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runSweep(ctx, os.Args[1:], defaultSweepDeps()); err != nil {
		log.Fatal(err)
	}
}
