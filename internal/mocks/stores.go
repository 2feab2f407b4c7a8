package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rfoster/cadence/internal/domain"
	"github.com/rfoster/cadence/internal/store"
)

// MemWorkItemStore is an in-memory store.WorkItemStore.
type MemWorkItemStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.WorkItem

	// CreateErr, when non-nil, is returned by the next Create call and
	// then cleared. Tests use it to simulate the losing side of an
	// insert race (store.ErrDuplicate) or a hard storage failure.
	CreateErr error
}

// NewMemWorkItemStore creates an empty in-memory work item store.
func NewMemWorkItemStore() *MemWorkItemStore {
	return &MemWorkItemStore{items: make(map[uuid.UUID]*domain.WorkItem)}
}

var _ store.WorkItemStore = (*MemWorkItemStore)(nil)

// Put inserts an item bypassing validation and the uniqueness rule.
// Tests use it to seed pre-existing duplicates for reconciliation.
func (s *MemWorkItemStore) Put(item *domain.WorkItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *item
	s.items[item.ID] = &cp
}

// All returns a snapshot of every stored item.
func (s *MemWorkItemStore) All() []*domain.WorkItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.WorkItem, 0, len(s.items))
	for _, item := range s.items {
		cp := *item
		out = append(out, &cp)
	}
	return out
}

// Create implements store.WorkItemStore.Create, enforcing the dedup
// uniqueness rule the way the database constraint does.
func (s *MemWorkItemStore) Create(_ context.Context, item *domain.WorkItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		err := s.CreateErr
		s.CreateErr = nil
		return err
	}

	if err := item.Validate(); err != nil {
		return store.ErrInvalidEntity
	}

	if item.TemplateID != nil && item.GeneratedForDate != nil {
		for _, existing := range s.items {
			if existing.TemplateID != nil && existing.GeneratedForDate != nil &&
				*existing.TemplateID == *item.TemplateID &&
				existing.GeneratedForDate.Equal(*item.GeneratedForDate) {
				return store.ErrDuplicate
			}
		}
	}

	cp := *item
	s.items[item.ID] = &cp
	return nil
}

// GetByID implements store.WorkItemStore.GetByID
func (s *MemWorkItemStore) GetByID(_ context.Context, id uuid.UUID) (*domain.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, store.ErrWorkItemNotFound
	}
	cp := *item
	return &cp, nil
}

// GetGenerated implements store.WorkItemStore.GetGenerated
func (s *MemWorkItemStore) GetGenerated(
	_ context.Context,
	templateID uuid.UUID,
	date time.Time,
) (*domain.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := domain.Midnight(date)
	var found *domain.WorkItem
	for _, item := range s.items {
		if item.TemplateID != nil && *item.TemplateID == templateID &&
			item.GeneratedForDate != nil && item.GeneratedForDate.Equal(day) {
			if found == nil || lessByCreation(item, found) {
				found = item
			}
		}
	}
	if found == nil {
		return nil, store.ErrWorkItemNotFound
	}
	cp := *found
	return &cp, nil
}

// LatestGeneratedDate implements store.WorkItemStore.LatestGeneratedDate
func (s *MemWorkItemStore) LatestGeneratedDate(
	_ context.Context,
	templateID uuid.UUID,
) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *time.Time
	for _, item := range s.items {
		if item.TemplateID == nil || *item.TemplateID != templateID || item.GeneratedForDate == nil {
			continue
		}
		if latest == nil || item.GeneratedForDate.After(*latest) {
			t := *item.GeneratedForDate
			latest = &t
		}
	}
	return latest, nil
}

// ListGenerated implements store.WorkItemStore.ListGenerated
func (s *MemWorkItemStore) ListGenerated(
	_ context.Context,
	templateID *uuid.UUID,
) ([]*domain.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.WorkItem
	for _, item := range s.items {
		if item.TemplateID == nil || item.GeneratedForDate == nil {
			continue
		}
		if templateID != nil && *item.TemplateID != *templateID {
			continue
		}
		cp := *item
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if c := strings.Compare(a.TemplateID.String(), b.TemplateID.String()); c != 0 {
			return c < 0
		}
		if !a.GeneratedForDate.Equal(*b.GeneratedForDate) {
			return a.GeneratedForDate.Before(*b.GeneratedForDate)
		}
		return lessByCreation(a, b)
	})

	return out, nil
}

// Delete implements store.WorkItemStore.Delete
func (s *MemWorkItemStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return store.ErrWorkItemNotFound
	}
	delete(s.items, id)
	return nil
}

// ListExpiredOpen implements store.WorkItemStore.ListExpiredOpen
func (s *MemWorkItemStore) ListExpiredOpen(
	_ context.Context,
	now time.Time,
) ([]*domain.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.WorkItem
	for _, item := range s.items {
		if item.Status == domain.WorkItemStatusOpen &&
			item.Deadline != nil && item.Deadline.Before(now) {
			cp := *item
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Deadline.Before(*out[j].Deadline)
	})
	return out, nil
}

// UpdateStatus implements store.WorkItemStore.UpdateStatus
func (s *MemWorkItemStore) UpdateStatus(
	_ context.Context,
	id uuid.UUID,
	status domain.WorkItemStatus,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return store.ErrWorkItemNotFound
	}
	item.Status = status
	item.UpdatedAt = time.Now().UTC()
	return nil
}

// ExistsForPlanTemplateSince implements store.WorkItemStore.ExistsForPlanTemplateSince
func (s *MemWorkItemStore) ExistsForPlanTemplateSince(
	_ context.Context,
	planTemplateID uuid.UUID,
	since time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.PlanTemplateID != nil && *item.PlanTemplateID == planTemplateID &&
			!item.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

// WithTx implements store.WorkItemStore.WithTx; the in-memory store has
// no transactions and returns itself.
func (s *MemWorkItemStore) WithTx(_ *sql.Tx) store.WorkItemStore {
	return s
}

func lessByCreation(a, b *domain.WorkItem) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return strings.Compare(a.ID.String(), b.ID.String()) < 0
}

// MemTemplateStore is an in-memory store.TemplateStore.
type MemTemplateStore struct {
	mu             sync.Mutex
	templates      map[uuid.UUID]*domain.RecurrenceTemplate
	activeProjects map[uuid.UUID]bool
}

// NewMemTemplateStore creates an empty in-memory template store.
func NewMemTemplateStore() *MemTemplateStore {
	return &MemTemplateStore{
		templates:      make(map[uuid.UUID]*domain.RecurrenceTemplate),
		activeProjects: make(map[uuid.UUID]bool),
	}
}

var _ store.TemplateStore = (*MemTemplateStore)(nil)

// Put stores or replaces a template.
func (s *MemTemplateStore) Put(tpl *domain.RecurrenceTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tpl
	s.templates[tpl.ID] = &cp
}

// SetProjectActive records a project's ACTIVE state.
func (s *MemTemplateStore) SetProjectActive(projectID uuid.UUID, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeProjects[projectID] = active
}

// GetByID implements store.TemplateStore.GetByID
func (s *MemTemplateStore) GetByID(
	_ context.Context,
	id uuid.UUID,
) (*domain.RecurrenceTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tpl, ok := s.templates[id]
	if !ok {
		return nil, store.ErrTemplateNotFound
	}
	cp := *tpl
	return &cp, nil
}

// ListEnabledHabits implements store.TemplateStore.ListEnabledHabits
func (s *MemTemplateStore) ListEnabledHabits(
	_ context.Context,
	ownerID uuid.UUID,
) ([]*domain.RecurrenceTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.RecurrenceTemplate
	for _, tpl := range s.templates {
		if tpl.OwnerID == ownerID && tpl.Enabled && tpl.Cycle == nil {
			cp := *tpl
			out = append(out, &cp)
		}
	}
	sortTemplates(out)
	return out, nil
}

// ListActiveBounded implements store.TemplateStore.ListActiveBounded
func (s *MemTemplateStore) ListActiveBounded(
	_ context.Context,
) ([]*domain.RecurrenceTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.RecurrenceTemplate
	for _, tpl := range s.templates {
		if tpl.Enabled && tpl.Cycle != nil && s.activeProjects[tpl.Cycle.ProjectID] {
			cp := *tpl
			out = append(out, &cp)
		}
	}
	sortTemplates(out)
	return out, nil
}

// ProjectActive implements store.TemplateStore.ProjectActive
func (s *MemTemplateStore) ProjectActive(
	_ context.Context,
	projectID uuid.UUID,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeProjects[projectID], nil
}

func sortTemplates(templates []*domain.RecurrenceTemplate) {
	sort.Slice(templates, func(i, j int) bool {
		if !templates[i].CreatedAt.Equal(templates[j].CreatedAt) {
			return templates[i].CreatedAt.Before(templates[j].CreatedAt)
		}
		return strings.Compare(templates[i].ID.String(), templates[j].ID.String()) < 0
	})
}

// MemPlanTemplateStore is an in-memory store.PlanTemplateStore.
type MemPlanTemplateStore struct {
	mu        sync.Mutex
	templates []*domain.WeeklyPlanTemplate
}

// NewMemPlanTemplateStore creates an empty in-memory plan template store.
func NewMemPlanTemplateStore() *MemPlanTemplateStore {
	return &MemPlanTemplateStore{}
}

var _ store.PlanTemplateStore = (*MemPlanTemplateStore)(nil)

// Put appends a plan template.
func (s *MemPlanTemplateStore) Put(tpl *domain.WeeklyPlanTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tpl
	s.templates = append(s.templates, &cp)
}

// ListActiveWeekly implements store.PlanTemplateStore.ListActiveWeekly
func (s *MemPlanTemplateStore) ListActiveWeekly(
	_ context.Context,
) ([]*domain.WeeklyPlanTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.WeeklyPlanTemplate
	for _, tpl := range s.templates {
		if tpl.Active && tpl.Frequency == domain.PlanFrequencyWeekly {
			cp := *tpl
			out = append(out, &cp)
		}
	}
	return out, nil
}

// MemJobLockStore is an in-memory store.JobLockStore with the same
// acquire semantics as the PostgreSQL upsert: expired locks are stolen,
// the current holder extends, everyone else fails.
type MemJobLockStore struct {
	mu    sync.Mutex
	locks map[string]*domain.JobLock

	// Now overrides the clock; defaults to time.Now.
	Now func() time.Time
}

// NewMemJobLockStore creates an empty in-memory job lock store.
func NewMemJobLockStore() *MemJobLockStore {
	return &MemJobLockStore{locks: make(map[string]*domain.JobLock)}
}

var _ store.JobLockStore = (*MemJobLockStore)(nil)

// Acquire implements store.JobLockStore.Acquire
func (s *MemJobLockStore) Acquire(
	_ context.Context,
	name, holder string,
	duration time.Duration,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	existing, ok := s.locks[name]
	if ok && existing.LockedUntil.After(now) && existing.LockedBy != holder {
		return false, nil
	}

	s.locks[name] = &domain.JobLock{
		Name:        name,
		LockedUntil: now.Add(duration),
		LockedBy:    holder,
		LockedAt:    now,
	}
	return true, nil
}

// Lock returns the current lock row for a job, or nil.
func (s *MemJobLockStore) Lock(name string) *domain.JobLock {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[name]; ok {
		cp := *l
		return &cp
	}
	return nil
}

// MemExemptionQuotaStore is an in-memory store.ExemptionQuotaStore.
type MemExemptionQuotaStore struct {
	mu     sync.Mutex
	quotas []*domain.ExemptionQuota

	// GetErr, when non-nil, is returned by every GetForWeek call. Tests
	// use it to simulate storage failure during a sweep.
	GetErr error
}

// NewMemExemptionQuotaStore creates an empty in-memory quota store.
func NewMemExemptionQuotaStore() *MemExemptionQuotaStore {
	return &MemExemptionQuotaStore{}
}

var _ store.ExemptionQuotaStore = (*MemExemptionQuotaStore)(nil)

// Put appends a quota row.
func (s *MemExemptionQuotaStore) Put(q *domain.ExemptionQuota) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *q
	s.quotas = append(s.quotas, &cp)
}

// GetForWeek implements store.ExemptionQuotaStore.GetForWeek
func (s *MemExemptionQuotaStore) GetForWeek(
	_ context.Context,
	ownerID uuid.UUID,
	weekStart time.Time,
) (*domain.ExemptionQuota, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.GetErr != nil {
		return nil, s.GetErr
	}

	week := domain.Midnight(weekStart)
	for _, q := range s.quotas {
		if q.OwnerID == ownerID && domain.Midnight(q.WeekStart).Equal(week) {
			cp := *q
			return &cp, nil
		}
	}
	return nil, store.ErrQuotaNotFound
}
