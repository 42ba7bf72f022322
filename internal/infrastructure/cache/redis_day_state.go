package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/hms/backend/internal/domain/revenue"
	"github.com/redis/go-redis/v9"
)

const (
	boundaryKey  = "dayend:boundary"
	ackKeyPrefix = "dayend:ack:"
)

// advanceBoundaryScript sets the boundary only when the new value is not
// older than the stored one, so racing closes cannot rewind it. Values
// are Unix nanoseconds.
var advanceBoundaryScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if not cur or tonumber(ARGV[1]) >= tonumber(cur) then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
	return 1
end
return 0
`)

// RedisDayState implements dayend.DayState on Redis so every instance
// observes the same boundary, acknowledgements and cached breakdowns
type RedisDayState struct {
	client      *redis.Client
	boundaryTTL time.Duration
	ackTTL      time.Duration
}

// NewRedisDayState creates a Redis-backed day state
func NewRedisDayState(client *redis.Client, boundaryTTL, ackTTL time.Duration) *RedisDayState {
	return &RedisDayState{
		client:      client,
		boundaryTTL: boundaryTTL,
		ackTTL:      ackTTL,
	}
}

// Boundary returns the stored day boundary, zero when unset or expired
func (s *RedisDayState) Boundary(ctx context.Context) (time.Time, error) {
	raw, err := s.client.Get(ctx, boundaryKey).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read day boundary: %w", err)
	}

	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt day boundary value %q: %w", raw, err)
	}
	return time.Unix(0, nanos).UTC(), nil
}

// AdvanceBoundary moves the boundary forward, ignoring older values
func (s *RedisDayState) AdvanceBoundary(ctx context.Context, boundary time.Time) error {
	err := advanceBoundaryScript.Run(ctx, s.client,
		[]string{boundaryKey},
		strconv.FormatInt(boundary.UnixNano(), 10),
		strconv.FormatInt(s.boundaryTTL.Milliseconds(), 10),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to advance day boundary: %w", err)
	}
	return nil
}

// Acknowledged reports whether the date was acknowledged as closed
func (s *RedisDayState) Acknowledged(ctx context.Context, date time.Time) (bool, error) {
	exists, err := s.client.Exists(ctx, ackKeyPrefix+dateKey(date)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check day acknowledgement: %w", err)
	}
	return exists > 0, nil
}

// Acknowledge records the date as closed until the flag expires
func (s *RedisDayState) Acknowledge(ctx context.Context, date time.Time) error {
	err := s.client.Set(ctx, ackKeyPrefix+dateKey(date), "1", s.ackTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to acknowledge day: %w", err)
	}
	return nil
}

// CachedBreakdown returns the cached breakdown for the key, nil when
// absent
func (s *RedisDayState) CachedBreakdown(ctx context.Context, key string) (*revenue.Breakdown, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached breakdown: %w", err)
	}

	var breakdown revenue.Breakdown
	if err := json.Unmarshal(raw, &breakdown); err != nil {
		return nil, fmt.Errorf("corrupt cached breakdown under %q: %w", key, err)
	}
	return &breakdown, nil
}

// CacheBreakdown stores a breakdown under the key with a TTL
func (s *RedisDayState) CacheBreakdown(ctx context.Context, key string, breakdown revenue.Breakdown, ttl time.Duration) error {
	raw, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}
	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache breakdown: %w", err)
	}
	return nil
}

// ForgetBreakdown drops a cached breakdown
func (s *RedisDayState) ForgetBreakdown(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to drop cached breakdown: %w", err)
	}
	return nil
}
