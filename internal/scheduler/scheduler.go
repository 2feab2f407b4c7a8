// Package scheduler wires the engine's cadenced triggers: the weekly
// plan-template generation and the hourly overdue sweep. The scheduler is
// an explicit instance with a Start/Stop lifecycle owned by the host
// process and passed to registrants by reference; there is no ambient
// process-wide singleton.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rfoster/cadence/internal/config"
	"github.com/rfoster/cadence/internal/platform/logger"
)

// WeeklyJob is the weekly generation entry point the scheduler invokes.
type WeeklyJob interface {
	Run(ctx context.Context) (int, error)
}

// SweepJob is the overdue sweep entry point the scheduler invokes.
type SweepJob interface {
	Run(ctx context.Context) error
}

// DailyJob is the daily long-task generation entry point the scheduler
// invokes. Habit generation is per-owner and fires from the API layer's
// login hook instead.
type DailyJob interface {
	GenerateDailyLongTasks(ctx context.Context) (int, error)
}

// Scheduler runs the background jobs on their configured cron cadences.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a Scheduler from the given configuration and jobs. Cron
// specs are evaluated in the configured timezone.
func New(
	cfg config.SchedulerConfig,
	weekly WeeklyJob,
	daily DailyJob,
	sweeper SweepJob,
	log *slog.Logger,
) (*Scheduler, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "scheduler"))

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Timezone, err)
	}

	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.WeeklyCron, func() {
		jobLog := log.With(slog.String("job", "weekly_task_generation"))
		ctx := logger.WithLogger(context.Background(), jobLog)

		created, err := weekly.Run(ctx)
		if err != nil {
			jobLog.Error("weekly task generation failed",
				slog.String("error", err.Error()))
			return
		}
		jobLog.Info("weekly task generation finished",
			slog.Int("created", created))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid weekly cron spec %q: %w", cfg.WeeklyCron, err)
	}

	_, err = c.AddFunc(cfg.DailyCron, func() {
		jobLog := log.With(slog.String("job", "daily_long_task_generation"))
		ctx := logger.WithLogger(context.Background(), jobLog)

		created, err := daily.GenerateDailyLongTasks(ctx)
		if err != nil {
			jobLog.Error("daily long-task generation failed",
				slog.String("error", err.Error()))
			return
		}
		jobLog.Info("daily long-task generation finished",
			slog.Int("created", created))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid daily cron spec %q: %w", cfg.DailyCron, err)
	}

	_, err = c.AddFunc(cfg.SweepCron, func() {
		jobLog := log.With(slog.String("job", "overdue_sweep"))
		ctx := logger.WithLogger(context.Background(), jobLog)

		if err := sweeper.Run(ctx); err != nil {
			jobLog.Error("overdue sweep failed",
				slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweep cron spec %q: %w", cfg.SweepCron, err)
	}

	return &Scheduler{
		cron:   c,
		logger: log,
	}, nil
}

// Start begins running jobs on their cadences. Non-blocking.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops scheduling new runs and blocks until in-flight jobs finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// DefaultHolder derives the job-lock holder identity for this process,
// hostname_pid by convention.
func DefaultHolder() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s_%d", hostname, os.Getpid())
}
