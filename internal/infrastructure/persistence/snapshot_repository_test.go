package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/dayend"
	"github.com/hms/backend/internal/domain/revenue"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockSnapshotRepository(t *testing.T) (*GormSnapshotRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormSnapshotRepository(gormDB), mock, mockDB
}

func snapshotColumns() []string {
	return []string{
		"id", "snapshot_date", "appointments", "departments", "laboratory",
		"pharmacy", "total", "appointments_count", "metadata", "closed_by", "created_at",
	}
}

func TestGormSnapshotRepository_Save(t *testing.T) {
	t.Run("inserts the snapshot", func(t *testing.T) {
		repo, mock, mockDB := newMockSnapshotRepository(t)
		defer mockDB.Close()

		snapshot, err := dayend.NewDailySnapshot(
			time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC),
			revenue.Breakdown{
				Appointments:      decimal.NewFromInt(100),
				Departments:       decimal.NewFromInt(50),
				Laboratory:        decimal.NewFromInt(65),
				Pharmacy:          decimal.NewFromInt(15),
				Total:             decimal.NewFromInt(230),
				AppointmentsCount: 3,
			},
			nil,
		)
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "daily_snapshots"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err = repo.Save(context.Background(), snapshot)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSnapshotRepository_ExistsForDate(t *testing.T) {
	t.Run("true when a snapshot covers the date", func(t *testing.T) {
		repo, mock, mockDB := newMockSnapshotRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "daily_snapshots" WHERE snapshot_date = \$1`).
			WithArgs("2025-06-02").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		exists, err := repo.ExistsForDate(context.Background(), time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("false for an unclosed date", func(t *testing.T) {
		repo, mock, mockDB := newMockSnapshotRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "daily_snapshots" WHERE snapshot_date = \$1`).
			WithArgs("2025-06-03").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsForDate(context.Background(), time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC))

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSnapshotRepository_LatestDate(t *testing.T) {
	t.Run("returns the most recent business date", func(t *testing.T) {
		repo, mock, mockDB := newMockSnapshotRepository(t)
		defer mockDB.Close()

		latest := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
		now := time.Now()

		rows := sqlmock.NewRows(snapshotColumns()).
			AddRow(uuid.New(), latest, "100", "50", "65", "15", "230", 3, nil, nil, now)

		mock.ExpectQuery(`SELECT \* FROM "daily_snapshots" ORDER BY snapshot_date DESC`).
			WillReturnRows(rows)

		date, err := repo.LatestDate(context.Background())

		assert.NoError(t, err)
		assert.True(t, latest.Equal(date))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero time when no snapshot exists", func(t *testing.T) {
		repo, mock, mockDB := newMockSnapshotRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "daily_snapshots" ORDER BY snapshot_date DESC`).
			WillReturnError(gorm.ErrRecordNotFound)

		date, err := repo.LatestDate(context.Background())

		assert.NoError(t, err)
		assert.True(t, date.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSnapshotRepository_FindByDate(t *testing.T) {
	t.Run("returns the day's slices oldest first", func(t *testing.T) {
		repo, mock, mockDB := newMockSnapshotRepository(t)
		defer mockDB.Close()

		date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
		now := time.Now()

		rows := sqlmock.NewRows(snapshotColumns()).
			AddRow(uuid.New(), date, "120", "0", "0", "0", "120", 1, `{"pre_reset":true}`, nil, now).
			AddRow(uuid.New(), date, "60", "0", "0", "0", "60", 1, nil, nil, now.Add(4*time.Hour))

		mock.ExpectQuery(`SELECT \* FROM "daily_snapshots" WHERE snapshot_date = \$1`).
			WithArgs("2025-06-02").
			WillReturnRows(rows)

		slices, err := repo.FindByDate(context.Background(), date)

		assert.NoError(t, err)
		require.Len(t, slices, 2)
		assert.True(t, slices[0].IsPreReset())
		assert.False(t, slices[1].IsPreReset())
		assert.True(t, slices[0].Total.Equal(decimal.NewFromInt(120)))
		assert.True(t, slices[1].Total.Equal(decimal.NewFromInt(60)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
