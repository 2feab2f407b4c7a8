// Command schedulerd is the host process for the work-item generation
// engine. It owns the scheduler lifecycle: it loads configuration, applies
// database migrations, wires the stores and generators, runs the cadenced
// jobs (weekly plan-template generation, hourly overdue sweep), and
// exposes health probes. The REST API, authentication, and AI surfaces of
// the wider system are separate services consuming the same database.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rfoster/cadence/internal/config"
	"github.com/rfoster/cadence/internal/generation"
	"github.com/rfoster/cadence/internal/platform/logger"
	"github.com/rfoster/cadence/internal/platform/postgres"
	"github.com/rfoster/cadence/internal/scheduler"
	"github.com/rfoster/cadence/internal/sweep"
)

func main() {
	if err := run(); err != nil {
		slog.Error("schedulerd exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	log.Info("starting schedulerd",
		slog.String("database_url", maskDatabaseURL(cfg.Database.URL)),
		slog.String("timezone", cfg.Scheduler.Timezone))

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", "error", err)
		}
	}()

	if err := runMigrations(db); err != nil {
		return err
	}

	// Stores.
	items := postgres.NewPostgresWorkItemStore(db, log)
	templates := postgres.NewPostgresTemplateStore(db, log)
	plans := postgres.NewPostgresPlanTemplateStore(db, log)
	quotas := postgres.NewPostgresExemptionQuotaStore(db, log)
	locks := postgres.NewPostgresJobLockStore(db, log)

	tz, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Scheduler.Timezone, err)
	}

	holder := cfg.Scheduler.Holder
	if holder == "" {
		holder = scheduler.DefaultHolder()
	}

	// Engine. GenerateDailyHabits and GenerateNow on the same generator
	// are invoked synchronously by the API service's login and
	// template-creation hooks; this process only drives the cadenced jobs.
	generator := generation.NewGenerator(items, templates, log)

	weekly := generation.NewWeeklyGenerator(
		items,
		plans,
		locks,
		tz,
		time.Duration(cfg.Scheduler.WeeklyLockMinutes)*time.Minute,
		holder,
		log,
	)

	sweeper := sweep.NewSweeper(db, items, quotas, log)

	sched, err := scheduler.New(cfg.Scheduler, weekly, generator, sweeper, log)
	if err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	// Ops endpoint: health and readiness probes.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.OpsPort),
		Handler:           newOpsRouter(db),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("ops endpoint listening", slog.Int("port", cfg.Server.OpsPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("ops endpoint failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("ops endpoint shutdown failed", "error", err)
	}

	return nil
}
