package dayend

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/revenue"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDailySnapshot(t *testing.T) {
	date := time.Date(2025, 6, 1, 18, 45, 0, 0, time.UTC)
	closedBy := uuid.New()

	t.Run("freezes breakdown at midnight of the date", func(t *testing.T) {
		breakdown := revenue.Breakdown{
			Appointments:      decimal.NewFromInt(100),
			Departments:       decimal.NewFromInt(40),
			Laboratory:        decimal.NewFromInt(25),
			Pharmacy:          decimal.NewFromInt(15),
			AppointmentsCount: 7,
		}.Sum()

		snapshot, err := NewDailySnapshot(date, breakdown, &closedBy)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), snapshot.SnapshotDate)
		assert.True(t, snapshot.Total.Equal(decimal.NewFromInt(180)))
		assert.Equal(t, int64(7), snapshot.AppointmentsCount)
		assert.False(t, snapshot.IsPreReset())
	})

	t.Run("rejects a day with no activity", func(t *testing.T) {
		_, err := NewDailySnapshot(date, revenue.ZeroBreakdown(), nil)

		assert.Error(t, err)
	})

	t.Run("allows zero revenue with activity", func(t *testing.T) {
		breakdown := revenue.ZeroBreakdown()
		breakdown.AppointmentsCount = 2

		snapshot, err := NewDailySnapshot(date, breakdown, nil)

		require.NoError(t, err)
		assert.True(t, snapshot.Total.IsZero())
	})
}

func TestDailySnapshotMetadata(t *testing.T) {
	t.Run("pre-reset tag round-trips", func(t *testing.T) {
		breakdown := revenue.Breakdown{Appointments: decimal.NewFromInt(10)}.Sum()
		snapshot, err := NewDailySnapshot(time.Now(), breakdown, nil)
		require.NoError(t, err)

		require.NoError(t, snapshot.MarkPreReset())

		assert.True(t, snapshot.IsPreReset())
	})
}

func TestDailySnapshotBreakdown(t *testing.T) {
	breakdown := revenue.Breakdown{
		Appointments:      decimal.NewFromInt(100),
		Laboratory:        decimal.NewFromInt(30),
		AppointmentsCount: 4,
	}.Sum()
	snapshot, err := NewDailySnapshot(time.Now(), breakdown, nil)
	require.NoError(t, err)

	restored := snapshot.Breakdown()

	assert.True(t, restored.Total.Equal(breakdown.Total))
	assert.Equal(t, breakdown.AppointmentsCount, restored.AppointmentsCount)
}
