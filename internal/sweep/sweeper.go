// Package sweep contains the overdue sweeper: the periodic pass that
// transitions expired OPEN work items to OVERDUE, honoring day-pass
// exemptions. It runs independently of generation.
package sweep

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rfoster/cadence/internal/domain"
	"github.com/rfoster/cadence/internal/store"
)

// Sweeper transitions OPEN work items with an elapsed deadline to
// OVERDUE, unless the owner's current-week exemption quota has a day pass
// active for today. The day pass is owner-wide: one pass pauses overdue
// judgment for every item of that owner on that calendar day.
//
// Each item is evaluated independently; status writes commit as one
// batch. A storage failure aborts the whole pass and is surfaced to the
// operator, since partial application is safer than continuing against a
// failing store.
type Sweeper struct {
	db     *sql.DB
	items  store.WorkItemStore
	quotas store.ExemptionQuotaStore
	logger *slog.Logger
	now    func() time.Time
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithClock overrides the sweeper's clock for tests.
func WithClock(now func() time.Time) SweeperOption {
	return func(s *Sweeper) {
		s.now = now
	}
}

// NewSweeper creates a Sweeper. db may be nil, in which case the pass
// runs directly against the store without a wrapping transaction; unit
// tests with fake stores use that mode.
// If logger is nil, a default logger will be used.
func NewSweeper(
	db *sql.DB,
	items store.WorkItemStore,
	quotas store.ExemptionQuotaStore,
	logger *slog.Logger,
	opts ...SweeperOption,
) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Sweeper{
		db:     db,
		items:  items,
		quotas: quotas,
		logger: logger.With(slog.String("component", "overdue_sweeper")),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run executes one sweep pass.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.db == nil {
		return s.sweep(ctx, s.items)
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.sweep(ctx, s.items.WithTx(tx))
	})
}

func (s *Sweeper) sweep(ctx context.Context, items store.WorkItemStore) error {
	now := s.now()
	today := domain.Midnight(now)

	expired, err := items.ListExpiredOpen(ctx, now.UTC())
	if err != nil {
		return fmt.Errorf("failed to list expired open work items: %w", err)
	}

	// Day-pass state is per owner per day; cache lookups across items.
	dayPass := make(map[uuid.UUID]bool)
	transitioned := 0

	for _, item := range expired {
		active, ok := dayPass[item.OwnerID]
		if !ok {
			active, err = s.dayPassActive(ctx, item.OwnerID, today)
			if err != nil {
				// A failed quota read must not default to marking the
				// item overdue; abort the batch instead.
				return fmt.Errorf("failed to check day pass for owner %s: %w", item.OwnerID, err)
			}
			dayPass[item.OwnerID] = active
		}

		if active {
			continue
		}

		if err := items.UpdateStatus(ctx, item.ID, domain.WorkItemStatusOverdue); err != nil {
			return fmt.Errorf("failed to mark work item %s overdue: %w", item.ID, err)
		}
		transitioned++
	}

	s.logger.Info("overdue sweep completed",
		slog.Int("expired", len(expired)),
		slog.Int("transitioned", transitioned))
	return nil
}

// dayPassActive reports whether the owner's quota for the week containing
// today has its day pass set to today. A missing quota row means no pass.
func (s *Sweeper) dayPassActive(ctx context.Context, ownerID uuid.UUID, today time.Time) (bool, error) {
	quota, err := s.quotas.GetForWeek(ctx, ownerID, domain.WeekStart(today))
	if err != nil {
		if errors.Is(err, store.ErrQuotaNotFound) {
			return false, nil
		}
		return false, err
	}

	return quota.DayPassActiveOn(today), nil
}
