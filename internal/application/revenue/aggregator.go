package revenue

import (
	"context"
	"fmt"
	"time"

	"github.com/hms/backend/internal/domain/dayend"
	"github.com/hms/backend/internal/domain/revenue"
	"github.com/hms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Cache keys for computed breakdowns. The all-history entry is written
// only by an explicit refresh and outranks the rolling same-day entry.
const (
	cacheKeyAllHistory  = "revenue:breakdown:all"
	cacheKeyDayPrefix   = "revenue:breakdown:day:"
	defaultSameDayTTL   = 15 * time.Minute
	defaultAllHistTTL   = 24 * time.Hour
)

// Aggregator computes windowed revenue breakdowns straight from the
// source entities. It deliberately does not sum ledger rows: the ledger
// and the aggregator are two independent views over the same
// recognition rules, and keeping both lets reconciliation cross-check
// one against the other.
type Aggregator struct {
	appointments revenue.AppointmentReader
	services     revenue.AppointmentServiceReader
	labTests     revenue.LabTestReader
	sales        revenue.SaleReader
	dayState     dayend.DayState
	clock        shared.Clock
	logger       *zap.Logger
	sameDayTTL   time.Duration
}

// NewAggregator creates a revenue aggregator
func NewAggregator(
	appointments revenue.AppointmentReader,
	services revenue.AppointmentServiceReader,
	labTests revenue.LabTestReader,
	sales revenue.SaleReader,
	dayState dayend.DayState,
	clock shared.Clock,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		appointments: appointments,
		services:     services,
		labTests:     labTests,
		sales:        sales,
		dayState:     dayState,
		clock:        clock,
		logger:       logger,
		sameDayTTL:   defaultSameDayTTL,
	}
}

// SetSameDayTTL overrides the lifetime of the rolling same-day cache
// entry. Non-positive values are ignored.
func (a *Aggregator) SetSameDayTTL(ttl time.Duration) {
	if ttl > 0 {
		a.sameDayTTL = ttl
	}
}

// Aggregate computes the breakdown for an arbitrary window, live from
// the source entities
func (a *Aggregator) Aggregate(ctx context.Context, window revenue.Window) (revenue.Breakdown, error) {
	breakdown := revenue.ZeroBreakdown()

	appointments, err := a.appointments.RecognizableInWindow(ctx, window)
	if err != nil {
		return breakdown, fmt.Errorf("failed to aggregate appointment revenue: %w", err)
	}
	departments, err := a.services.DepartmentTotalsInWindow(ctx, window)
	if err != nil {
		return breakdown, fmt.Errorf("failed to aggregate department revenue: %w", err)
	}
	labServices, err := a.services.LaboratoryServicesInWindow(ctx, window)
	if err != nil {
		return breakdown, fmt.Errorf("failed to aggregate laboratory service revenue: %w", err)
	}
	labAppointments, err := a.appointments.LaboratoryFeesInWindow(ctx, window)
	if err != nil {
		return breakdown, fmt.Errorf("failed to aggregate laboratory appointment revenue: %w", err)
	}
	labTests, err := a.labTests.CompletedInWindow(ctx, window)
	if err != nil {
		return breakdown, fmt.Errorf("failed to aggregate lab test revenue: %w", err)
	}
	pharmacy, err := a.sales.PaidInWindow(ctx, window)
	if err != nil {
		return breakdown, fmt.Errorf("failed to aggregate pharmacy revenue: %w", err)
	}
	count, err := a.appointments.CountInWindow(ctx, window)
	if err != nil {
		return breakdown, fmt.Errorf("failed to count appointments: %w", err)
	}

	breakdown.Appointments = appointments
	for _, total := range departments {
		breakdown.Departments = breakdown.Departments.Add(total)
	}
	breakdown.Laboratory = labServices.Add(labAppointments).Add(labTests)
	breakdown.Pharmacy = pharmacy
	breakdown.AppointmentsCount = count
	return breakdown.Sum(), nil
}

// CurrentDay returns the breakdown for the running business day. The
// window starts at the cutover boundary when one is set and is newer
// than calendar midnight, at midnight otherwise. Resolution order: the
// all-history cache entry, then the same-day cache entry, then a live
// computation whose result backfills the same-day entry.
func (a *Aggregator) CurrentDay(ctx context.Context) (revenue.Breakdown, error) {
	now := a.clock.Now()
	window, err := a.currentDayWindow(ctx, now)
	if err != nil {
		return revenue.ZeroBreakdown(), err
	}

	if cached := a.cached(ctx, cacheKeyAllHistory); cached != nil {
		return *cached, nil
	}
	dayKey := SameDayCacheKey(now)
	if cached := a.cached(ctx, dayKey); cached != nil {
		return *cached, nil
	}

	breakdown, err := a.Aggregate(ctx, window)
	if err != nil {
		return revenue.ZeroBreakdown(), err
	}

	if err := a.dayState.CacheBreakdown(ctx, dayKey, breakdown, a.sameDayTTL); err != nil {
		a.logger.Warn("failed to cache same-day breakdown", zap.Error(err))
	}
	return breakdown, nil
}

// CurrentDaySafe is the dashboard-facing variant of CurrentDay: any
// failure degrades to an all-zero payload instead of erroring the page
func (a *Aggregator) CurrentDaySafe(ctx context.Context) revenue.Breakdown {
	breakdown, err := a.CurrentDay(ctx)
	if err != nil {
		a.logger.Error("current-day aggregation degraded to zero", zap.Error(err))
		return revenue.ZeroBreakdown()
	}
	return breakdown
}

// RefreshAllHistory recomputes the all-time breakdown and pins it in
// the all-history cache entry
func (a *Aggregator) RefreshAllHistory(ctx context.Context) (revenue.Breakdown, error) {
	breakdown, err := a.Aggregate(ctx, revenue.AllTime(time.Time{}))
	if err != nil {
		return revenue.ZeroBreakdown(), err
	}
	if err := a.dayState.CacheBreakdown(ctx, cacheKeyAllHistory, breakdown, defaultAllHistTTL); err != nil {
		a.logger.Warn("failed to cache all-history breakdown", zap.Error(err))
	}
	return breakdown, nil
}

func (a *Aggregator) currentDayWindow(ctx context.Context, now time.Time) (revenue.Window, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	boundary, err := a.dayState.Boundary(ctx)
	if err != nil {
		return revenue.Window{}, fmt.Errorf("failed to read day boundary: %w", err)
	}
	start := midnight
	if boundary.After(midnight) {
		start = boundary
	}
	return revenue.NewWindow(start, now), nil
}

func (a *Aggregator) cached(ctx context.Context, key string) *revenue.Breakdown {
	cached, err := a.dayState.CachedBreakdown(ctx, key)
	if err != nil {
		a.logger.Warn("breakdown cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	return cached
}

// SameDayCacheKey returns the cache key holding the rolling breakdown
// for t's calendar date. The cutover flow clears it when a day closes.
func SameDayCacheKey(t time.Time) string {
	return cacheKeyDayPrefix + t.Format("2006-01-02")
}
