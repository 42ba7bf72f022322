package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hms/backend/internal/domain/dayend"
	"github.com/hms/backend/internal/domain/revenue"
	"github.com/hms/backend/internal/domain/shared"
)

// InMemoryDayState is a process-local DayState for single-instance
// deployments and tests. Entries honor their TTLs against the injected
// clock so day-boundary tests stay deterministic.
type InMemoryDayState struct {
	mu         sync.RWMutex
	clock      shared.Clock
	boundary   time.Time
	boundaryAt time.Time
	acks       map[string]time.Time
	breakdowns map[string]memBreakdown
}

type memBreakdown struct {
	value     revenue.Breakdown
	expiresAt time.Time
}

// NewInMemoryDayState creates an in-memory day state
func NewInMemoryDayState(clock shared.Clock) *InMemoryDayState {
	return &InMemoryDayState{
		clock:      clock,
		acks:       make(map[string]time.Time),
		breakdowns: make(map[string]memBreakdown),
	}
}

// Boundary returns the current day boundary, zero when unset
func (s *InMemoryDayState) Boundary(ctx context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boundary, nil
}

// AdvanceBoundary moves the boundary forward, ignoring older values
func (s *InMemoryDayState) AdvanceBoundary(ctx context.Context, boundary time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if boundary.Before(s.boundary) {
		return nil
	}
	s.boundary = boundary
	s.boundaryAt = s.clock.Now()
	return nil
}

// Acknowledged reports whether the date was acknowledged as closed
func (s *InMemoryDayState) Acknowledged(ctx context.Context, date time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiresAt, ok := s.acks[dateKey(date)]
	if !ok {
		return false, nil
	}
	return s.clock.Now().Before(expiresAt), nil
}

// Acknowledge records the date as closed for roughly one day
func (s *InMemoryDayState) Acknowledge(ctx context.Context, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acks[dateKey(date)] = s.clock.Now().Add(24 * time.Hour)
	return nil
}

// CachedBreakdown returns the live cached breakdown for the key, nil
// when absent or expired
func (s *InMemoryDayState) CachedBreakdown(ctx context.Context, key string) (*revenue.Breakdown, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.breakdowns[key]
	if !ok || !s.clock.Now().Before(entry.expiresAt) {
		return nil, nil
	}
	value := entry.value
	return &value, nil
}

// CacheBreakdown stores a breakdown under the key
func (s *InMemoryDayState) CacheBreakdown(ctx context.Context, key string, breakdown revenue.Breakdown, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breakdowns[key] = memBreakdown{value: breakdown, expiresAt: s.clock.Now().Add(ttl)}
	return nil
}

// ForgetBreakdown drops a cached breakdown
func (s *InMemoryDayState) ForgetBreakdown(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.breakdowns, key)
	return nil
}

func dateKey(date time.Time) string {
	return date.Format("2006-01-02")
}

// InMemoryLocker serializes day-end closes within a single process
type InMemoryLocker struct {
	mu sync.Mutex
}

// NewInMemoryLocker creates an in-memory locker
func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{}
}

// Acquire obtains the close lock, failing when already held
func (l *InMemoryLocker) Acquire(ctx context.Context, ttl time.Duration) (dayend.Lock, error) {
	if !l.mu.TryLock() {
		return nil, shared.NewDomainError("LOCK_HELD", "Day-end close already in progress")
	}
	return &inMemoryLock{locker: l}, nil
}

type inMemoryLock struct {
	locker *InMemoryLocker
	once   sync.Once
}

// Release frees the close lock
func (l *inMemoryLock) Release(ctx context.Context) error {
	l.once.Do(l.locker.mu.Unlock)
	return nil
}
