package dayend

import (
	"context"
	"time"

	"github.com/hms/backend/internal/domain/revenue"
)

// DayState holds the fast-changing cutover state shared between
// instances: the activity boundary, per-day acknowledgement flags and
// cached breakdowns. Implementations must survive losing all of it; the
// durable snapshots remain the source of truth.
type DayState interface {
	// Boundary returns the instant before which revenue activity has
	// been folded into snapshots. Zero time means no boundary is set.
	Boundary(ctx context.Context) (time.Time, error)
	// AdvanceBoundary moves the boundary forward. A boundary older than
	// the current one is ignored so concurrent closes cannot rewind it.
	AdvanceBoundary(ctx context.Context, boundary time.Time) error

	// Acknowledged reports whether the given business date was already
	// acknowledged as closed
	Acknowledged(ctx context.Context, date time.Time) (bool, error)
	// Acknowledge records that the business date has been closed
	Acknowledge(ctx context.Context, date time.Time) error

	// CachedBreakdown returns a previously cached breakdown for the key,
	// or nil when absent
	CachedBreakdown(ctx context.Context, key string) (*revenue.Breakdown, error)
	// CacheBreakdown stores a breakdown under the key with a TTL
	CacheBreakdown(ctx context.Context, key string, breakdown revenue.Breakdown, ttl time.Duration) error
	// ForgetBreakdown drops a cached breakdown
	ForgetBreakdown(ctx context.Context, key string) error
}

// Lock is a held cutover lock
type Lock interface {
	Release(ctx context.Context) error
}

// Locker serializes day-end closes across instances
type Locker interface {
	// Acquire obtains the cutover lock or fails when another close is
	// in flight
	Acquire(ctx context.Context, ttl time.Duration) (Lock, error)
}
