package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faitltd/FAIT-sub005/internal/domain/entities"
	domainerrors "github.com/Faitltd/FAIT-sub005/internal/domain/errors"
	"github.com/Faitltd/FAIT-sub005/internal/domain/repositories"
	"github.com/Faitltd/FAIT-sub005/internal/infrastructure/metrics"
	"github.com/Faitltd/FAIT-sub005/pkg/logger"
	"github.com/Faitltd/FAIT-sub005/pkg/utils"
)

const sweepBatchSize = 500

var errReminderNotDue = errors.New("reminder not due")

// DefaultReminderThresholds are the days-before-expiration at which providers are reminded
var DefaultReminderThresholds = []int{30, 7, 1}

// SweepResult summarises one scheduler run
type SweepResult struct {
	Expired  int
	Reminded int
	Failed   int
}

// ReminderUsecase sends expiration reminders and expires lapsed cases
type ReminderUsecase struct {
	caseRepo     repositories.VerificationCaseRepository
	historyRepo  repositories.VerificationHistoryRepository
	uow          repositories.UnitOfWork
	verification *VerificationUsecase
	notifier     Notifier
	metrics      *metrics.Metrics
	thresholds   []int
	concurrency  int
	now          func() time.Time
}

func NewReminderUsecase(
	caseRepo repositories.VerificationCaseRepository,
	historyRepo repositories.VerificationHistoryRepository,
	uow repositories.UnitOfWork,
	verification *VerificationUsecase,
	notifier Notifier,
	m *metrics.Metrics,
	thresholds []int,
	concurrency int,
) *ReminderUsecase {
	ts := normalizeThresholds(thresholds)
	if len(ts) == 0 {
		ts = normalizeThresholds(DefaultReminderThresholds)
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &ReminderUsecase{
		caseRepo:     caseRepo,
		historyRepo:  historyRepo,
		uow:          uow,
		verification: verification,
		notifier:     notifier,
		metrics:      m,
		thresholds:   ts,
		concurrency:  concurrency,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source of the sweep and of the engine it drives.
func (u *ReminderUsecase) SetClock(now func() time.Time) {
	u.now = func() time.Time { return now().UTC() }
	if u.verification != nil {
		u.verification.SetClock(now)
	}
}

// Thresholds returns the configured thresholds, tightest first
func (u *ReminderUsecase) Thresholds() []int {
	return append([]int(nil), u.thresholds...)
}

// Run expires lapsed cases and then sends due reminders.
func (u *ReminderUsecase) Run(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	defer func() { u.metrics.ObserveSweep(time.Since(start)) }()

	var result SweepResult

	expired, failed, err := u.SweepExpired(ctx)
	result.Expired = expired
	result.Failed += failed
	if err != nil {
		return result, err
	}

	reminded, failed, err := u.SendReminders(ctx)
	result.Reminded = reminded
	result.Failed += failed
	return result, err
}

// SweepExpired moves every APPROVED case past its expiration date to EXPIRED.
// It returns how many cases expired and how many failed.
func (u *ReminderUsecase) SweepExpired(ctx context.Context) (int, int, error) {
	now := u.now()
	cases, err := u.caseRepo.ListApprovedExpiredBefore(ctx, now, sweepBatchSize)
	if err != nil {
		u.metrics.IncSweepFailure("expire_list")
		return 0, 0, fmt.Errorf("list expired cases: %w", err)
	}

	expired, failed := u.fanOut(ctx, cases, func(ctx context.Context, c *entities.VerificationCase) error {
		_, err := u.verification.Expire(ctx, c.ID)
		if errors.Is(err, domainerrors.ErrInvalidState) {
			// renewed or already expired by another worker
			return errReminderNotDue
		}
		return err
	}, "expire")

	if expired > 0 {
		logger.Info(ctx, "Expired verification cases", zap.Int("count", expired))
	}
	return expired, failed, nil
}

// SendReminders sends at most one reminder per candidate case.
// It returns how many reminders were sent and how many cases failed.
func (u *ReminderUsecase) SendReminders(ctx context.Context) (int, int, error) {
	now := u.now()
	maxThreshold := u.thresholds[len(u.thresholds)-1]
	cases, err := u.caseRepo.ListApprovedExpiringBetween(ctx, now, now.Add(days(maxThreshold)), sweepBatchSize)
	if err != nil {
		u.metrics.IncSweepFailure("remind_list")
		return 0, 0, fmt.Errorf("list expiring cases: %w", err)
	}

	sent, failed := u.fanOut(ctx, cases, func(ctx context.Context, c *entities.VerificationCase) error {
		return u.remind(ctx, c.ID)
	}, "remind")

	if sent > 0 {
		logger.Info(ctx, "Sent expiration reminders", zap.Int("count", sent))
	}
	return sent, failed, nil
}

// fanOut runs fn per case on a bounded errgroup. Errors stay with their case.
func (u *ReminderUsecase) fanOut(ctx context.Context, cases []*entities.VerificationCase, fn func(context.Context, *entities.VerificationCase) error, phase string) (int, int) {
	results := make([]error, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i] = gctx.Err()
				return nil
			}
			results[i] = fn(gctx, c)
			return nil
		})
	}
	_ = g.Wait()

	var ok, failed int
	for i, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, errReminderNotDue):
		default:
			failed++
			u.metrics.IncSweepFailure(phase)
			logger.Error(ctx, "Sweep failed for case",
				zap.String("phase", phase),
				zap.String("caseId", cases[i].ID.String()),
				zap.Error(err),
			)
		}
	}
	return ok, failed
}

// remind re-reads the case under lock and writes a reminder entry when one is due.
func (u *ReminderUsecase) remind(ctx context.Context, caseID uuid.UUID) error {
	var (
		c     *entities.VerificationCase
		entry *entities.HistoryEntry
	)
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		c, err = u.caseRepo.GetByID(u.uow.WithLock(txCtx), caseID)
		if err != nil {
			return err
		}

		now := u.now()
		threshold, ok := u.dueThreshold(c, now)
		if !ok {
			return errReminderNotDue
		}

		prior, err := u.historyRepo.ListByAction(txCtx, c.ID, entities.HistoryActionExpirationReminder, c.VerificationDate.Time)
		if err != nil {
			return err
		}
		if !reminderDue(prior, threshold, now) {
			return errReminderNotDue
		}

		remaining := daysUntil(c.ExpirationDate.Time, now)
		entry = &entities.HistoryEntry{
			ID:             utils.GenerateUUIDv7(),
			CaseID:         c.ID,
			Action:         entities.HistoryActionExpirationReminder,
			PreviousStatus: c.Status,
			NewStatus:      c.Status,
			Notes:          null.StringFrom(fmt.Sprintf("Expiration reminder sent (%d days remaining)", remaining)),
			ThresholdDays:  null.IntFrom(threshold),
			DaysRemaining:  null.IntFrom(remaining),
			CreatedAt:      now,
		}
		return u.historyRepo.Create(txCtx, entry)
	})
	if err != nil {
		return err
	}

	u.metrics.IncReminder(entry.ThresholdDays.Int)
	dispatch(ctx, u.notifier, u.metrics, c.ProviderID, entities.NotificationKindExpirationReminder, entities.NotificationContext{
		CaseID:         c.ID,
		NewStatus:      c.Status,
		PreviousStatus: c.Status,
		DaysRemaining:  entry.DaysRemaining.Int,
		ExpirationDate: c.ExpirationDate.Time,
	})
	return nil
}

// dueThreshold returns the tightest threshold c has crossed at now.
func (u *ReminderUsecase) dueThreshold(c *entities.VerificationCase, now time.Time) (int, bool) {
	if c.Status != entities.VerificationStatusApproved || !c.IsVerified || !c.ExpirationDate.Valid {
		return 0, false
	}
	exp := c.ExpirationDate.Time
	if !exp.After(now) {
		return 0, false
	}
	for _, t := range u.thresholds {
		if !exp.After(now.Add(days(t))) {
			return t, true
		}
	}
	return 0, false
}

// reminderDue reports whether threshold has not fired yet and nothing went out today.
// A fired threshold covers every looser one.
func reminderDue(prior []*entities.HistoryEntry, threshold int, now time.Time) bool {
	y, m, d := now.Date()
	for _, e := range prior {
		ey, em, ed := e.CreatedAt.UTC().Date()
		if ey == y && em == m && ed == d {
			return false
		}
		if e.ThresholdDays.Valid && e.ThresholdDays.Int <= threshold {
			return false
		}
	}
	return true
}

// normalizeThresholds drops non-positive values and duplicates and sorts ascending.
func normalizeThresholds(in []int) []int {
	seen := make(map[int]bool, len(in))
	out := make([]int, 0, len(in))
	for _, t := range in {
		if t <= 0 || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
