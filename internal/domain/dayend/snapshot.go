package dayend

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/revenue"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MetadataKeyPreReset marks snapshots written for a partial period when
// a business day was closed more than once for the same date
const MetadataKeyPreReset = "pre_reset"

// DailySnapshot is the immutable per-bucket revenue record written when
// a business day closes. Several snapshots may exist for one date; each
// covers a disjoint slice of the day, so summing them reconstructs the
// whole day.
type DailySnapshot struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	SnapshotDate      time.Time       `gorm:"type:date;not null;index"`
	Appointments      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Departments       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Laboratory        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Pharmacy          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AppointmentsCount int64           `gorm:"not null;default:0"`
	Metadata          []byte          `gorm:"type:jsonb"`
	ClosedBy          *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DailySnapshot) TableName() string {
	return "daily_snapshots"
}

// NewDailySnapshot freezes a breakdown for a business date. Snapshots
// with no revenue and no activity are rejected so empty days never
// produce rows.
func NewDailySnapshot(date time.Time, breakdown revenue.Breakdown, closedBy *uuid.UUID) (*DailySnapshot, error) {
	if breakdown.IsZero() {
		return nil, shared.NewDomainError("EMPTY_SNAPSHOT", "Refusing to snapshot a day with no activity")
	}
	return &DailySnapshot{
		ID:                uuid.New(),
		SnapshotDate:      truncateToDate(date),
		Appointments:      breakdown.Appointments,
		Departments:       breakdown.Departments,
		Laboratory:        breakdown.Laboratory,
		Pharmacy:          breakdown.Pharmacy,
		Total:             breakdown.Total,
		AppointmentsCount: breakdown.AppointmentsCount,
		ClosedBy:          closedBy,
		CreatedAt:         time.Now(),
	}, nil
}

// MarkPreReset tags the snapshot as covering only the slice of the day
// before an intra-day reset
func (s *DailySnapshot) MarkPreReset() error {
	meta := map[string]any{}
	if len(s.Metadata) > 0 {
		if err := json.Unmarshal(s.Metadata, &meta); err != nil {
			return err
		}
	}
	meta[MetadataKeyPreReset] = true
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	s.Metadata = raw
	return nil
}

// IsPreReset reports whether the snapshot covers a pre-reset slice
func (s *DailySnapshot) IsPreReset() bool {
	if len(s.Metadata) == 0 {
		return false
	}
	meta := map[string]any{}
	if err := json.Unmarshal(s.Metadata, &meta); err != nil {
		return false
	}
	v, ok := meta[MetadataKeyPreReset].(bool)
	return ok && v
}

// Breakdown reconstructs the frozen breakdown
func (s *DailySnapshot) Breakdown() revenue.Breakdown {
	return revenue.Breakdown{
		Appointments:      s.Appointments,
		Departments:       s.Departments,
		Laboratory:        s.Laboratory,
		Pharmacy:          s.Pharmacy,
		Total:             s.Total,
		AppointmentsCount: s.AppointmentsCount,
	}
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
