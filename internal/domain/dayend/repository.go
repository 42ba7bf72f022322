package dayend

import (
	"context"
	"time"
)

// SnapshotRepository persists daily snapshots
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *DailySnapshot) error
	// ExistsForDate reports whether any snapshot covers the business date
	ExistsForDate(ctx context.Context, date time.Time) (bool, error)
	// LatestDate returns the most recent snapshotted business date, or a
	// zero time when no snapshot exists
	LatestDate(ctx context.Context) (time.Time, error)
	// FindByDate returns all snapshot slices for the business date
	FindByDate(ctx context.Context, date time.Time) ([]*DailySnapshot, error)
}
