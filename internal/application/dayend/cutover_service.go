package dayend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	apprevenue "github.com/hms/backend/internal/application/revenue"
	"github.com/hms/backend/internal/domain/dayend"
	"github.com/hms/backend/internal/domain/revenue"
	"github.com/hms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Day status values returned by CheckStatus
const (
	StatusDayStarted      = "day_started"
	StatusNewDayAvailable = "new_day_available"
)

// defaultCloseLockTTL bounds how long a crashed close can hold the lock
const defaultCloseLockTTL = 30 * time.Second

// CutoverService owns the business-day boundary. Closing a day archives
// the activity slice since the previous boundary into a durable
// snapshot and moves the boundary to now, which redefines where
// "today's revenue" starts. Archival and boundary failures surface to
// the operator; the cache and acknowledgement cleanup steps only feed
// dashboard hints and degrade to warnings.
type CutoverService struct {
	aggregator *apprevenue.Aggregator
	snapshots  dayend.SnapshotRepository
	dayState   dayend.DayState
	locker     dayend.Locker
	clock      shared.Clock
	lockTTL    time.Duration
	logger     *zap.Logger
}

// NewCutoverService creates a cutover service. A non-positive lockTTL
// falls back to the default close-lock lifetime.
func NewCutoverService(
	aggregator *apprevenue.Aggregator,
	snapshots dayend.SnapshotRepository,
	dayState dayend.DayState,
	locker dayend.Locker,
	clock shared.Clock,
	lockTTL time.Duration,
	logger *zap.Logger,
) *CutoverService {
	if lockTTL <= 0 {
		lockTTL = defaultCloseLockTTL
	}
	return &CutoverService{
		aggregator: aggregator,
		snapshots:  snapshots,
		dayState:   dayState,
		locker:     locker,
		clock:      clock,
		lockTTL:    lockTTL,
		logger:     logger,
	}
}

// CheckStatus reports whether a new business day is available to close.
// A new day is available only when today's calendar date strictly
// exceeds the last archived snapshot date and today has not been
// acknowledged yet.
func (s *CutoverService) CheckStatus(ctx context.Context) (string, error) {
	today := truncateToDate(s.clock.Now())

	acknowledged, err := s.dayState.Acknowledged(ctx, today)
	if err != nil {
		return "", fmt.Errorf("failed to read acknowledgement: %w", err)
	}
	if acknowledged {
		return StatusDayStarted, nil
	}

	latest, err := s.snapshots.LatestDate(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read latest snapshot date: %w", err)
	}
	if latest.IsZero() || today.After(truncateToDate(latest)) {
		return StatusNewDayAvailable, nil
	}
	return StatusDayStarted, nil
}

// CloseDay archives the activity slice since the previous boundary and
// advances the boundary to now. It is idempotent: an immediate second
// call finds an empty slice, archives nothing and only moves the
// boundary forward. Concurrent calls are excluded by a distributed lock.
func (s *CutoverService) CloseDay(ctx context.Context, closedBy *uuid.UUID) error {
	lock, err := s.locker.Acquire(ctx, s.lockTTL)
	if err != nil {
		return fmt.Errorf("another day-end close is in flight: %w", err)
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			s.logger.Warn("failed to release day-end lock", zap.Error(err))
		}
	}()

	now := s.clock.Now()
	today := truncateToDate(now)

	boundary, err := s.dayState.Boundary(ctx)
	if err != nil {
		return fmt.Errorf("failed to read day boundary: %w", err)
	}

	if boundary.IsZero() {
		if err := s.firstClose(ctx, now, today, closedBy); err != nil {
			return err
		}
	} else {
		if err := s.archiveSlice(ctx, revenue.NewWindow(boundary, now), truncateToDate(boundary), false, closedBy); err != nil {
			return err
		}
	}

	// The boundary must move as soon as the slice is archived. If the
	// cleanup steps below ran first and failed, a retry would find the
	// old boundary and archive the same slice a second time.
	if err := s.dayState.AdvanceBoundary(ctx, now); err != nil {
		return fmt.Errorf("failed to advance day boundary: %w", err)
	}

	if err := s.dayState.ForgetBreakdown(ctx, apprevenue.SameDayCacheKey(now)); err != nil {
		s.logger.Warn("failed to clear same-day cache", zap.Error(err))
	}
	if err := s.dayState.Acknowledge(ctx, today); err != nil {
		s.logger.Warn("failed to acknowledge day", zap.Error(err))
	}

	s.logger.Info("business day closed",
		zap.Time("boundary", now),
		zap.Time("previous_boundary", boundary),
	)
	return nil
}

// Summary returns the live breakdown for the running business day,
// recomputed from source entities so the confirmation view is immune to
// any previously archived value
func (s *CutoverService) Summary(ctx context.Context) (revenue.Breakdown, revenue.Window, error) {
	now := s.clock.Now()

	boundary, err := s.dayState.Boundary(ctx)
	if err != nil {
		return revenue.ZeroBreakdown(), revenue.Window{}, fmt.Errorf("failed to read day boundary: %w", err)
	}

	window := revenue.NewWindow(boundary, now)
	breakdown, err := s.aggregator.Aggregate(ctx, window)
	if err != nil {
		return revenue.ZeroBreakdown(), window, err
	}
	return breakdown, window, nil
}

// firstClose handles the very first close, when no boundary exists yet:
// yesterday is archived as a whole day (unless already present) and
// today's pre-close activity is archived with the pre_reset tag
func (s *CutoverService) firstClose(ctx context.Context, now, today time.Time, closedBy *uuid.UUID) error {
	yesterday := today.AddDate(0, 0, -1)

	exists, err := s.snapshots.ExistsForDate(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("failed to check yesterday's snapshot: %w", err)
	}
	if !exists {
		if err := s.archiveSlice(ctx, revenue.NewWindow(yesterday, today), yesterday, false, closedBy); err != nil {
			return err
		}
	}

	return s.archiveSlice(ctx, revenue.NewWindow(today, now), today, true, closedBy)
}

// archiveSlice aggregates a window and persists it as a snapshot for
// the business date, skipping slices with no activity
func (s *CutoverService) archiveSlice(ctx context.Context, window revenue.Window, date time.Time, preReset bool, closedBy *uuid.UUID) error {
	breakdown, err := s.aggregator.Aggregate(ctx, window)
	if err != nil {
		return fmt.Errorf("failed to aggregate slice for archival: %w", err)
	}
	if breakdown.IsZero() {
		return nil
	}

	snapshot, err := dayend.NewDailySnapshot(date, breakdown, closedBy)
	if err != nil {
		return err
	}
	if preReset {
		if err := snapshot.MarkPreReset(); err != nil {
			return fmt.Errorf("failed to tag pre-reset snapshot: %w", err)
		}
	}
	if err := s.snapshots.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.logger.Info("archived business-day slice",
		zap.Time("date", date),
		zap.String("total", breakdown.Total.String()),
		zap.Int64("appointments", breakdown.AppointmentsCount),
		zap.Bool("pre_reset", preReset),
	)
	return nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
