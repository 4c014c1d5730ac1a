package services

import (
	"context"
	"time"

	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	accrualLockKey = "nirapoth:latefee:lock"
	// accrualLockTTL bounds how long a crashed sweep can block the next one.
	accrualLockTTL = 10 * time.Minute
)

// LateFeeScheduler runs the late-fee accrual sweep on a fixed interval.
// Overlapping runs (a slow sweep, or a second instance of the process) are
// prevented with a Redis advisory lock; double-applying weekly fee deltas
// would break the sweep's idempotence guarantee.
type LateFeeScheduler struct {
	debts    *DebtService
	rdb      *redis.Client
	interval time.Duration
	stopChan chan struct{}
}

func NewLateFeeScheduler(debts *DebtService, rdb *redis.Client, interval time.Duration) *LateFeeScheduler {
	return &LateFeeScheduler{
		debts:    debts,
		rdb:      rdb,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start runs the sweep loop. Call in a goroutine; Stop terminates it.
func (s *LateFeeScheduler) Start() {
	logger.Log.Info("late-fee scheduler started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopChan:
			logger.Log.Info("late-fee scheduler stopped")
			return
		}
	}
}

// Stop terminates the loop.
func (s *LateFeeScheduler) Stop() {
	close(s.stopChan)
}

// RunOnce performs a single guarded sweep. Returns the summary, or nil when
// the lock was held elsewhere and the sweep was skipped.
func (s *LateFeeScheduler) RunOnce(ctx context.Context) *AccrualSummary {
	if !s.acquireLock(ctx) {
		logger.Log.Info("late-fee sweep skipped: lock held by another run")
		return nil
	}
	defer s.releaseLock(ctx)

	summary, err := s.debts.UpdateLateFeesForAllDebts()
	if err != nil {
		logger.Log.Error("late-fee sweep failed", zap.Error(err))
		return nil
	}

	logger.Log.Info("late-fee sweep finished",
		zap.Int("scanned", summary.Scanned),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed))
	return summary
}

// acquireLock takes the advisory lock. Without Redis (single-instance
// deployments) the sweep proceeds unguarded.
func (s *LateFeeScheduler) acquireLock(ctx context.Context) bool {
	if s.rdb == nil {
		return true
	}
	ok, err := s.rdb.SetNX(ctx, accrualLockKey, time.Now().Format(time.RFC3339), accrualLockTTL).Result()
	if err != nil {
		logger.Log.Warn("late-fee lock unavailable, skipping sweep", zap.Error(err))
		return false
	}
	return ok
}

func (s *LateFeeScheduler) releaseLock(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, accrualLockKey).Err(); err != nil {
		logger.Log.Warn("late-fee lock release failed", zap.Error(err))
	}
}
