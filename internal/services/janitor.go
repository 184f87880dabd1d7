package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper drops entries that expired before now.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

type Janitor interface {
	Start(ctx context.Context)
	Stop()
	SweepOnce(ctx context.Context)
}

type janitor struct {
	sweepers map[string]Sweeper
	interval time.Duration
	logger   *zap.Logger
	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewJanitor(interval time.Duration, logger *zap.Logger, sweepers map[string]Sweeper) Janitor {
	return &janitor{
		sweepers: sweepers,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start implements Janitor.
func (j *janitor) Start(ctx context.Context) {
	j.wg.Add(1)
	go j.run(ctx)
	j.logger.Info("🧹 Janitor started", zap.Duration("interval", j.interval), zap.Int("sweepers", len(j.sweepers)))
}

// Stop implements Janitor.
func (j *janitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.stopChan)
	})
	j.wg.Wait()
	j.logger.Info("🧹 Janitor stopped")
}

// SweepOnce implements Janitor.
func (j *janitor) SweepOnce(ctx context.Context) {
	now := time.Now()
	for name, sweeper := range j.sweepers {
		removed, err := sweeper.Sweep(ctx, now)
		if err != nil {
			j.logger.Warn("⚠️  Sweep failed", zap.String("sweeper", name), zap.Error(err))
			continue
		}
		if removed > 0 {
			j.logger.Debug("Expired entries removed", zap.String("sweeper", name), zap.Int("removed", removed))
		}
	}
}

func (j *janitor) run(ctx context.Context) {
	defer j.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.SweepOnce(ctx)
		}
	}
}
