package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// DeadlineChecker publishes deadline events for tasks due soon, once per
// task and due date.
type DeadlineChecker interface {
	AnnounceDeadlines(ctx context.Context, threshold time.Duration) (int, error)
}

// SchedulerConfig controls how often deadlines are scanned and how far ahead.
type SchedulerConfig struct {
	Interval  time.Duration
	Threshold time.Duration
}

// DeadlineScheduler runs the deadline scan on a cron schedule.
type DeadlineScheduler struct {
	checker DeadlineChecker
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     SchedulerConfig
}

func NewDeadlineScheduler(checker DeadlineChecker, monitor ConnectionHealth, logger *zap.Logger, cfg SchedulerConfig) (*DeadlineScheduler, error) {
	if cfg.Interval < time.Second {
		cfg.Interval = time.Minute
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ds := &DeadlineScheduler{
		checker: checker,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	if _, err := ds.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if _, err := ds.Scan(ctx); err != nil {
			ds.logger.Error("deadline scan failed", zap.Error(err))
		}
	}); err != nil {
		return nil, fmt.Errorf("deadline scheduler: %w", err)
	}

	return ds, nil
}

// Start launches the cron scheduler.
func (ds *DeadlineScheduler) Start() {
	if ds == nil || ds.cron == nil {
		return
	}
	ds.cron.Start()
	ds.logger.Info("deadline scheduler started",
		zap.Duration("interval", ds.cfg.Interval),
		zap.Duration("threshold", ds.cfg.Threshold),
	)
}

// Stop waits for a running scan to finish or ctx to expire.
func (ds *DeadlineScheduler) Stop(ctx context.Context) error {
	if ds == nil || ds.cron == nil {
		return nil
	}
	stopCtx := ds.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	ds.logger.Info("deadline scheduler stopped")
	return nil
}

// Scan runs one deadline check. It is skipped while the storage backends are
// unreachable.
func (ds *DeadlineScheduler) Scan(ctx context.Context) (int, error) {
	if ds == nil || ds.checker == nil {
		return 0, nil
	}
	if ds.monitor != nil && !ds.monitor.IsOnline() {
		ds.logger.Debug("skipping deadline scan (offline)")
		return 0, nil
	}
	count, err := ds.checker.AnnounceDeadlines(ctx, ds.cfg.Threshold)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		ds.logger.Info("deadline notifications published", zap.Int("tasks", count))
	}
	return count, nil
}
