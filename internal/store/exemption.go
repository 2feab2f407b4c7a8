package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rfoster/cadence/internal/domain"
)

// ExemptionQuotaStore defines the engine's read-only view of exemption
// quotas. Quota creation and consumption happen in the external exemption
// flow; the overdue sweep only needs the current week's day-pass state.
type ExemptionQuotaStore interface {
	// GetForWeek retrieves the owner's quota for the week starting at the
	// given Monday. Returns ErrQuotaNotFound when the owner has no quota
	// row for that week, which callers treat as "no day pass".
	GetForWeek(ctx context.Context, ownerID uuid.UUID, weekStart time.Time) (*domain.ExemptionQuota, error)
}
