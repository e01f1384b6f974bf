package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Faitltd/FAIT-sub005/internal/config"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/datasources/postgres"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/jobs"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/metrics"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/models"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/notifier"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/repositories"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/storage"
	"github.com/Faitltd/FAIT-sub005/internal/interfaces/http/handlers"
	"github.com/Faitltd/FAIT-sub005/internal/interfaces/http/middleware"
	"github.com/Faitltd/FAIT-sub005/internal/usecases"
	"github.com/Faitltd/FAIT-sub005/pkg/jwt"
	"github.com/Faitltd/FAIT-sub005/pkg/logger"
	"github.com/Faitltd/FAIT-sub005/pkg/redis"
)

const (
	sweepLockKey    = "verification:sweep:lock"
	idempotencyKeys = "idempotency:"
	shutdownTimeout = 15 * time.Second
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = postgres.NewConnection
	migrateDB  = models.AutoMigrate
	getStdDB   = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
	serve      = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runMainProcess(ctx); err != nil {
		log.Fatal(err)
	}
}

// application is the wired service: the router plus the background sweep.
type application struct {
	router *gin.Engine
	job    *jobs.VerificationReminderJob
}

func runMainProcess(ctx context.Context) error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer func() { _ = logger.GetLogger().Sync() }()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	if redis.Enabled() {
		logger.Info(ctx, "Redis initialized")
	} else {
		logger.Warn(ctx, "Redis not configured; sweep lock and idempotency stay in-process")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()
	logger.Info(ctx, "Connected to PostgreSQL")

	if cfg.Database.AutoMigrate {
		if err := migrateDB(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info(ctx, "Database schema migrated")
	}

	app := newApplication(cfg, db, sqlDB, prometheus.NewRegistry())

	jobCtx, cancelJob := context.WithCancel(ctx)
	defer cancelJob()
	go app.job.Start(jobCtx)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Provider verification service starting", zap.String("port", cfg.Server.Port))
		serveErr <- serve(srv)
	}()

	select {
	case err := <-serveErr:
		app.job.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "Shutting down server...")
	// the sweep finishes its current pass before HTTP drains
	app.job.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// newApplication builds repositories, usecases and handlers on db.
func newApplication(cfg *config.Config, db *gorm.DB, pinger handlers.Pinger, reg *prometheus.Registry) *application {
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	caseRepo := repositories.NewVerificationCaseRepository(db)
	documentRepo := repositories.NewVerificationDocumentRepository(db)
	historyRepo := repositories.NewVerificationHistoryRepository(db)
	onboardingRepo := repositories.NewOnboardingProgressRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	contactRepo := repositories.NewProviderContactRepository(db)
	uow := repositories.NewUnitOfWork(db)

	blobs := storage.NewBlobStore(db, jwtService, cfg.Storage.PublicBaseURL)
	notify := notifier.NewNotifier(notificationRepo, contactRepo, notifier.NewRenderer(), notifier.NewMailer(cfg.SMTP))

	verificationUsecase := usecases.NewVerificationUsecase(
		caseRepo, documentRepo, historyRepo, uow, blobs, notify, m,
		usecases.VerificationSettingsFromConfig(cfg),
	)
	reminderUsecase := usecases.NewReminderUsecase(
		caseRepo, historyRepo, uow, verificationUsecase, notify, m,
		cfg.Verification.ReminderThresholds, cfg.Verification.SweepConcurrency,
	)
	onboardingUsecase := usecases.NewOnboardingUsecase(onboardingRepo, caseRepo, uow)
	notificationUsecase := usecases.NewNotificationUsecase(notificationRepo, contactRepo)

	job := jobs.NewVerificationReminderJob(
		reminderUsecase,
		jobs.NewRunLock(sweepLockKey, cfg.Verification.SweepLockTTL),
		m,
		cfg.Verification.SweepInterval,
	)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	registerOpsRoutes(r, handlers.NewHealthHandler(pinger), reg)
	registerAPIV1Routes(r, routeDeps{
		verificationHandler:      handlers.NewVerificationHandler(verificationUsecase, cfg.Storage.MaxUploadBytes),
		adminVerificationHandler: handlers.NewAdminVerificationHandler(verificationUsecase),
		onboardingHandler:        handlers.NewOnboardingHandler(onboardingUsecase),
		notificationHandler:      handlers.NewNotificationHandler(notificationUsecase),
		fileHandler:              handlers.NewFileHandler(blobs),
		authMiddleware:           middleware.AuthMiddleware(jwtService),
		idempotencyMiddleware: middleware.IdempotencyMiddleware(
			redis.NewIdempotencyStore(idempotencyKeys, middleware.LockDuration, middleware.RetentionDuration),
		),
	})

	for _, route := range r.Routes() {
		logger.Debug(context.Background(), "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	return &application{router: r, job: job}
}
