package revenue

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllTimeEnd is the sentinel end instant meaning "no upper bound".
// Windows ending at or after it skip date filtering entirely.
var AllTimeEnd = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// Window is a half-open aggregation interval [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow creates a bounded aggregation window
func NewWindow(start, end time.Time) Window {
	return Window{Start: start, End: end}
}

// AllTime returns a window from the given start with no upper bound
func AllTime(start time.Time) Window {
	return Window{Start: start, End: AllTimeEnd}
}

// IsAllTime reports whether the window has no upper bound
func (w Window) IsAllTime() bool {
	return !w.End.Before(AllTimeEnd)
}

// Contains reports whether t falls inside the window
func (w Window) Contains(t time.Time) bool {
	if t.Before(w.Start) {
		return false
	}
	return w.IsAllTime() || t.Before(w.End)
}

// Breakdown is the revenue summary for one window, split by business
// bucket. Buckets are mutually exclusive so Total is always their sum.
type Breakdown struct {
	Appointments      decimal.Decimal `json:"appointments"`
	Departments       decimal.Decimal `json:"departments"`
	Laboratory        decimal.Decimal `json:"laboratory"`
	Pharmacy          decimal.Decimal `json:"pharmacy"`
	Total             decimal.Decimal `json:"total"`
	AppointmentsCount int64           `json:"appointments_count"`
}

// ZeroBreakdown returns an all-zero breakdown
func ZeroBreakdown() Breakdown {
	zero := decimal.Zero
	return Breakdown{
		Appointments: zero,
		Departments:  zero,
		Laboratory:   zero,
		Pharmacy:     zero,
		Total:        zero,
	}
}

// Sum recomputes Total from the buckets and returns the breakdown
func (b Breakdown) Sum() Breakdown {
	b.Total = b.Appointments.Add(b.Departments).Add(b.Laboratory).Add(b.Pharmacy)
	return b
}

// IsZero reports whether the breakdown carries no revenue and no activity
func (b Breakdown) IsZero() bool {
	return b.Total.IsZero() && b.AppointmentsCount == 0
}

// Add returns the bucket-wise sum of two breakdowns
func (b Breakdown) Add(other Breakdown) Breakdown {
	out := Breakdown{
		Appointments:      b.Appointments.Add(other.Appointments),
		Departments:       b.Departments.Add(other.Departments),
		Laboratory:        b.Laboratory.Add(other.Laboratory),
		Pharmacy:          b.Pharmacy.Add(other.Pharmacy),
		AppointmentsCount: b.AppointmentsCount + other.AppointmentsCount,
	}
	return out.Sum()
}
