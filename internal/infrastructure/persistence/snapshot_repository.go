package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/hms/backend/internal/domain/dayend"
	"gorm.io/gorm"
)

// GormSnapshotRepository implements dayend.SnapshotRepository using GORM
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository creates a new GormSnapshotRepository
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db}
}

// Save persists a daily snapshot
func (r *GormSnapshotRepository) Save(ctx context.Context, snapshot *dayend.DailySnapshot) error {
	return translateError(r.db.WithContext(ctx).Create(snapshot).Error)
}

// ExistsForDate reports whether any snapshot covers the business date
func (r *GormSnapshotRepository) ExistsForDate(ctx context.Context, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&dayend.DailySnapshot{}).
		Where("snapshot_date = ?", date.Format("2006-01-02")).
		Count(&count).Error
	if err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

// LatestDate returns the most recent snapshotted business date, zero
// when no snapshot exists
func (r *GormSnapshotRepository) LatestDate(ctx context.Context) (time.Time, error) {
	var snapshot dayend.DailySnapshot
	err := r.db.WithContext(ctx).
		Order("snapshot_date DESC").
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, translateError(err)
	}
	return snapshot.SnapshotDate, nil
}

// FindByDate returns all snapshot slices for the business date, oldest
// first
func (r *GormSnapshotRepository) FindByDate(ctx context.Context, date time.Time) ([]*dayend.DailySnapshot, error) {
	var out []*dayend.DailySnapshot
	err := r.db.WithContext(ctx).
		Where("snapshot_date = ?", date.Format("2006-01-02")).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}
