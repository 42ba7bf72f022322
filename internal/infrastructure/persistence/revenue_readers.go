package persistence

import (
	"context"

	"github.com/hms/backend/internal/domain/revenue"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var recognizableStatuses = []revenue.AppointmentStatus{
	revenue.AppointmentStatusCompleted,
	revenue.AppointmentStatusConfirmed,
}

// GormAppointmentReader implements revenue.AppointmentReader using GORM
type GormAppointmentReader struct {
	db *gorm.DB
}

// NewGormAppointmentReader creates a new GormAppointmentReader
func NewGormAppointmentReader(db *gorm.DB) *GormAppointmentReader {
	return &GormAppointmentReader{db: db}
}

// RecognizableInWindow sums net consultation fees for recognizable
// appointments without services outside the Laboratory department
func (r *GormAppointmentReader) RecognizableInWindow(ctx context.Context, window revenue.Window) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).
		Model(&revenue.Appointment{}).
		Where("status IN ?", recognizableStatuses).
		Where("service_count = 0").
		Where("department <> ?", revenue.DepartmentLaboratory)
	return sumNetFees(inWindow(query, "scheduled_at", window))
}

// LaboratoryFeesInWindow sums net fees of recognizable Laboratory
// appointments without services
func (r *GormAppointmentReader) LaboratoryFeesInWindow(ctx context.Context, window revenue.Window) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).
		Model(&revenue.Appointment{}).
		Where("status IN ?", recognizableStatuses).
		Where("service_count = 0").
		Where("department = ?", revenue.DepartmentLaboratory)
	return sumNetFees(inWindow(query, "scheduled_at", window))
}

// CountInWindow counts recognizable appointments in the window
func (r *GormAppointmentReader) CountInWindow(ctx context.Context, window revenue.Window) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&revenue.Appointment{}).
		Where("status IN ?", recognizableStatuses)
	err := inWindow(query, "scheduled_at", window).Count(&count).Error
	if err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

// GormAppointmentServiceReader implements revenue.AppointmentServiceReader
type GormAppointmentServiceReader struct {
	db *gorm.DB
}

// NewGormAppointmentServiceReader creates a new GormAppointmentServiceReader
func NewGormAppointmentServiceReader(db *gorm.DB) *GormAppointmentServiceReader {
	return &GormAppointmentServiceReader{db: db}
}

// DepartmentTotalsInWindow sums service costs on recognizable
// appointments grouped by department, Laboratory excluded
func (r *GormAppointmentServiceReader) DepartmentTotalsInWindow(ctx context.Context, window revenue.Window) (map[string]decimal.Decimal, error) {
	var rows []struct {
		Department string
		Total      decimal.Decimal
	}
	query := r.serviceQuery(ctx).
		Where("appointments.department <> ?", revenue.DepartmentLaboratory)
	err := inWindow(query, "appointments.scheduled_at", window).
		Select("appointments.department AS department, COALESCE(SUM(appointment_services.final_cost), 0) AS total").
		Group("appointments.department").
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	totals := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.Department] = row.Total
	}
	return totals, nil
}

// LaboratoryServicesInWindow sums costs of Laboratory services on
// recognizable appointments
func (r *GormAppointmentServiceReader) LaboratoryServicesInWindow(ctx context.Context, window revenue.Window) (decimal.Decimal, error) {
	query := r.serviceQuery(ctx).
		Where("appointments.department = ?", revenue.DepartmentLaboratory)
	return scanTotal(inWindow(query, "appointments.scheduled_at", window).
		Select("COALESCE(SUM(appointment_services.final_cost), 0) AS total"))
}

func (r *GormAppointmentServiceReader) serviceQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&revenue.AppointmentService{}).
		Joins("JOIN appointments ON appointments.id = appointment_services.appointment_id").
		Where("appointments.status IN ?", recognizableStatuses)
}

// GormLabTestReader implements revenue.LabTestReader using GORM
type GormLabTestReader struct {
	db *gorm.DB
}

// NewGormLabTestReader creates a new GormLabTestReader
func NewGormLabTestReader(db *gorm.DB) *GormLabTestReader {
	return &GormLabTestReader{db: db}
}

// CompletedInWindow sums costs of completed lab test requests. The
// recognition instant is the completion time, falling back to the
// request time for legacy rows without one.
func (r *GormLabTestReader) CompletedInWindow(ctx context.Context, window revenue.Window) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).
		Model(&revenue.LabTestRequest{}).
		Where("status = ?", revenue.LabTestStatusCompleted)
	return scanTotal(inWindow(query, "COALESCE(completed_at, requested_at)", window).
		Select("COALESCE(SUM(cost), 0) AS total"))
}

// GormSaleReader implements revenue.SaleReader using GORM
type GormSaleReader struct {
	db *gorm.DB
}

// NewGormSaleReader creates a new GormSaleReader
func NewGormSaleReader(db *gorm.DB) *GormSaleReader {
	return &GormSaleReader{db: db}
}

// PaidInWindow sums grand totals of paid sales
func (r *GormSaleReader) PaidInWindow(ctx context.Context, window revenue.Window) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).
		Model(&revenue.Sale{}).
		Where("payment_status = ?", revenue.SalePaymentStatusPaid)
	return scanTotal(inWindow(query, "sold_at", window).
		Select("COALESCE(SUM(grand_total), 0) AS total"))
}

// inWindow applies window bounds on the given timestamp column. The
// all-time sentinel skips filtering entirely.
func inWindow(query *gorm.DB, column string, window revenue.Window) *gorm.DB {
	if window.IsAllTime() {
		if !window.Start.IsZero() {
			return query.Where(column+" >= ?", window.Start)
		}
		return query
	}
	return query.Where(column+" >= ? AND "+column+" < ?", window.Start, window.End)
}

func sumNetFees(query *gorm.DB) (decimal.Decimal, error) {
	return scanTotal(query.Select("COALESCE(SUM(GREATEST(fee - discount, 0)), 0) AS total"))
}

func scanTotal(query *gorm.DB) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, translateError(err)
	}
	return result.Total, nil
}
