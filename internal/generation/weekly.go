package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rfoster/cadence/internal/domain"
	"github.com/rfoster/cadence/internal/store"
)

// JobWeeklyGeneration is the job lock name guarding weekly runs.
const JobWeeklyGeneration = "weekly_task_generation"

// WeeklyGenerator creates this week's work items from active weekly plan
// templates. Runs on a weekly cadence under a persisted job lock.
type WeeklyGenerator struct {
	items  store.WorkItemStore
	plans  store.PlanTemplateStore
	locks  store.JobLockStore
	logger *slog.Logger

	tz           *time.Location
	lockDuration time.Duration
	holder       string
	now          func() time.Time
}

// WeeklyOption configures a WeeklyGenerator.
type WeeklyOption func(*WeeklyGenerator)

// WithWeeklyClock overrides the generator's clock for tests.
func WithWeeklyClock(now func() time.Time) WeeklyOption {
	return func(w *WeeklyGenerator) {
		w.now = now
	}
}

// NewWeeklyGenerator creates a WeeklyGenerator. tz is the zone week
// boundaries and deadlines are computed in; holder identifies this
// process for lock ownership. If logger is nil, a default logger will be
// used.
func NewWeeklyGenerator(
	items store.WorkItemStore,
	plans store.PlanTemplateStore,
	locks store.JobLockStore,
	tz *time.Location,
	lockDuration time.Duration,
	holder string,
	logger *slog.Logger,
	opts ...WeeklyOption,
) *WeeklyGenerator {
	if logger == nil {
		logger = slog.Default()
	}

	w := &WeeklyGenerator{
		items:        items,
		plans:        plans,
		locks:        locks,
		logger:       logger.With(slog.String("component", "weekly_generator")),
		tz:           tz,
		lockDuration: lockDuration,
		holder:       holder,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run executes one weekly generation pass. Returns (0, nil) without doing
// work when another holder owns the job lock.
//
// Dedup is week-level and creation-time based: a template is skipped when
// any linked item was created on or after this week's Monday 00:00 in the
// configured zone. This is a coarser notion of "this week" than the
// generation-date marker the daily generators key on; the two can
// disagree for a trigger firing very late near a week boundary, which
// matches the system's observed behavior.
func (w *WeeklyGenerator) Run(ctx context.Context) (int, error) {
	acquired, err := w.locks.Acquire(ctx, JobWeeklyGeneration, w.holder, w.lockDuration)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire weekly generation lock: %w", err)
	}
	if !acquired {
		w.logger.Info("skipping weekly generation, lock held elsewhere")
		return 0, nil
	}

	now := w.now().In(w.tz)
	weekStart := mondayMidnight(now)
	weekID := isoWeekID(now)

	templates, err := w.plans.ListActiveWeekly(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list weekly plan templates: %w", err)
	}

	created := 0
	for _, tpl := range templates {
		n, err := w.generateForPlan(ctx, tpl, now, weekStart, weekID)
		if err != nil {
			w.logger.Error("weekly generation failed for template, continuing batch",
				slog.String("plan_template_id", tpl.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		created += n
	}

	w.logger.Info("weekly generation completed",
		slog.String("week", weekID),
		slog.Int("created", created))
	return created, nil
}

func (w *WeeklyGenerator) generateForPlan(
	ctx context.Context,
	tpl *domain.WeeklyPlanTemplate,
	now, weekStart time.Time,
	weekID string,
) (int, error) {
	exists, err := w.items.ExistsForPlanTemplateSince(ctx, tpl.ID, weekStart)
	if err != nil {
		return 0, fmt.Errorf("weekly dedup check failed: %w", err)
	}
	if exists {
		w.logger.Info("skipping plan template, already generated this week",
			slog.String("plan_template_id", tpl.ID.String()),
			slog.String("title", tpl.Title))
		return 0, nil
	}

	times := tpl.TimesPerWeek
	if times < 1 {
		times = 1
	}

	y, m, d := now.Date()
	deadline := time.Date(y, m, d, tpl.DefaultDeadlineHour, 59, 59, 0, w.tz).UTC()

	created := 0
	for i := 1; i <= times; i++ {
		// Titles carry an occurrence index and the ISO week identifier
		// for human traceability and for the duplicate-title detection
		// used by unrelated system-task logic.
		title := fmt.Sprintf("%s (%s)", tpl.Title, weekID)
		if times > 1 {
			title = fmt.Sprintf("%s %d/%d (%s)", tpl.Title, i, times, weekID)
		}

		planID := tpl.ID
		item := &domain.WorkItem{
			ID:               uuid.New(),
			OwnerID:          tpl.OwnerID,
			Title:            title,
			Description:      tpl.Description,
			Status:           domain.WorkItemStatusOpen,
			EvidenceType:     tpl.EvidenceType,
			EvidenceCriteria: tpl.EvidenceCriteria,
			Deadline:         &deadline,
			PlanTemplateID:   &planID,
			CreatedAt:        now.UTC(),
			UpdatedAt:        now.UTC(),
		}

		if err := w.items.Create(ctx, item); err != nil {
			return created, fmt.Errorf("failed to persist weekly work item: %w", err)
		}
		created++
	}

	return created, nil
}

// mondayMidnight returns Monday 00:00:00 of t's week as an instant in t's
// location.
func mondayMidnight(t time.Time) time.Time {
	y, m, d := t.AddDate(0, 0, -domain.MondayIndex(t.Weekday())).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// isoWeekID renders the week identifier embedded in generated titles,
// e.g. "W2026-06". The year component is the calendar year of the run,
// the week number is ISO.
func isoWeekID(t time.Time) string {
	_, week := t.ISOWeek()
	return fmt.Sprintf("W%d-%02d", t.Year(), week)
}
