package jobs

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faitltd/FAIT-sub005/internal/usecases"
	"github.com/Faitltd/FAIT-sub005/pkg/logger"
)

// Sweeper is one scheduler pass over verification cases
type Sweeper interface {
	Run(ctx context.Context) (usecases.SweepResult, error)
}

type sweepMetrics interface {
	IncSweepFailure(phase string)
}

// VerificationReminderJob expires lapsed cases and sends expiration reminders on a ticker
type VerificationReminderJob struct {
	sweeper  Sweeper
	lock     RunLock
	metrics  sweepMetrics
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
	done     chan struct{}
}

func NewVerificationReminderJob(sweeper Sweeper, lock RunLock, m sweepMetrics, interval time.Duration) *VerificationReminderJob {
	if interval <= 0 {
		interval = time.Hour
	}
	if lock == nil {
		lock = &LocalRunLock{}
	}
	return &VerificationReminderJob{
		sweeper:  sweeper,
		lock:     lock,
		metrics:  m,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled or Stop is called. The first sweep runs immediately.
func (j *VerificationReminderJob) Start(ctx context.Context) {
	j.started.Store(true)
	defer close(j.done)
	logger.Info(ctx, "Starting verification reminder job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Verification reminder job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Verification reminder job stopped")
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (j *VerificationReminderJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
	if j.started.Load() {
		<-j.done
	}
}

func (j *VerificationReminderJob) runOnce(ctx context.Context) {
	result, ran, err := j.RunOnce(ctx)
	if !ran {
		return
	}
	if err != nil {
		logger.Error(ctx, "Verification sweep failed", zap.Error(err))
	}
	if result.Expired > 0 || result.Reminded > 0 || result.Failed > 0 {
		logger.Info(ctx, "Verification sweep finished",
			zap.Int("expired", result.Expired),
			zap.Int("reminded", result.Reminded),
			zap.Int("failed", result.Failed),
		)
	}
}

// RunOnce performs a single sweep under the run lock. ran is false when the lock
// is held elsewhere or could not be acquired.
func (j *VerificationReminderJob) RunOnce(ctx context.Context) (usecases.SweepResult, bool, error) {
	release, ok, err := j.lock.TryAcquire(ctx)
	if err != nil {
		if j.metrics != nil {
			j.metrics.IncSweepFailure("lock")
		}
		logger.Error(ctx, "Failed to acquire sweep lock", zap.Error(err))
		return usecases.SweepResult{}, false, err
	}
	if !ok {
		logger.Debug(ctx, "Verification sweep already running, skipping tick")
		return usecases.SweepResult{}, false, nil
	}
	defer release()

	result, err := j.sweeper.Run(ctx)
	return result, true, err
}
