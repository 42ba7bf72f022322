package dto

import (
	"time"

	"github.com/hms/backend/internal/domain/revenue"
)

// BreakdownResponse represents a per-bucket revenue breakdown
type BreakdownResponse struct {
	Appointments      string `json:"appointments" example:"100.00"`
	Departments       string `json:"departments" example:"50.00"`
	Laboratory        string `json:"laboratory" example:"65.00"`
	Pharmacy          string `json:"pharmacy" example:"15.00"`
	Total             string `json:"total" example:"230.00"`
	AppointmentsCount int64  `json:"appointments_count" example:"3"`
}

// NewBreakdownResponse converts a domain breakdown to its API shape
func NewBreakdownResponse(b revenue.Breakdown) BreakdownResponse {
	return BreakdownResponse{
		Appointments:      b.Appointments.StringFixed(2),
		Departments:       b.Departments.StringFixed(2),
		Laboratory:        b.Laboratory.StringFixed(2),
		Pharmacy:          b.Pharmacy.StringFixed(2),
		Total:             b.Total.StringFixed(2),
		AppointmentsCount: b.AppointmentsCount,
	}
}

// WindowedBreakdownResponse is a breakdown together with the half-open
// time window it covers
type WindowedBreakdownResponse struct {
	Breakdown BreakdownResponse `json:"breakdown"`
	From      time.Time         `json:"from"`
	To        time.Time         `json:"to"`
}

// DayStatusResponse reports whether a new business day is available
type DayStatusResponse struct {
	Status string `json:"status" example:"day_started"`
}

// AggregateRequest holds the optional window bounds for an aggregation
// query. Missing bounds mean all recorded history.
type AggregateRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}
