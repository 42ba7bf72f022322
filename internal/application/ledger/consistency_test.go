package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	apprevenue "github.com/hms/backend/internal/application/revenue"
	"github.com/hms/backend/internal/domain/revenue"
	"github.com/hms/backend/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// dualSources serves the aggregator the same entities the ledger was
// synced from, applying the recognition rules in memory
type dualSources struct {
	appointments []*revenue.Appointment
	services     []*revenue.AppointmentService
	labTests     []*revenue.LabTestRequest
	sales        []*revenue.Sale
}

func (d *dualSources) RecognizableInWindow(ctx context.Context, w revenue.Window) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, a := range d.appointments {
		if a.Status.IsRecognizable() && !a.HasServices() && !a.IsLaboratory() && w.Contains(a.ScheduledAt) {
			sum = sum.Add(a.NetFee().Amount())
		}
	}
	return sum, nil
}

func (d *dualSources) CountInWindow(ctx context.Context, w revenue.Window) (int64, error) {
	var count int64
	for _, a := range d.appointments {
		if a.Status.IsRecognizable() && w.Contains(a.ScheduledAt) {
			count++
		}
	}
	return count, nil
}

func (d *dualSources) LaboratoryFeesInWindow(ctx context.Context, w revenue.Window) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, a := range d.appointments {
		if a.Status.IsRecognizable() && !a.HasServices() && a.IsLaboratory() && w.Contains(a.ScheduledAt) {
			sum = sum.Add(a.NetFee().Amount())
		}
	}
	return sum, nil
}

func (d *dualSources) DepartmentTotalsInWindow(ctx context.Context, w revenue.Window) (map[string]decimal.Decimal, error) {
	totals := make(map[string]decimal.Decimal)
	for _, s := range d.services {
		if s.ParentRecognizable() && !s.IsLaboratory() && w.Contains(s.Appointment.ScheduledAt) {
			totals[s.Appointment.Department] = totals[s.Appointment.Department].Add(s.FinalCost)
		}
	}
	return totals, nil
}

func (d *dualSources) LaboratoryServicesInWindow(ctx context.Context, w revenue.Window) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, s := range d.services {
		if s.ParentRecognizable() && s.IsLaboratory() && w.Contains(s.Appointment.ScheduledAt) {
			sum = sum.Add(s.FinalCost)
		}
	}
	return sum, nil
}

func (d *dualSources) CompletedInWindow(ctx context.Context, w revenue.Window) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, lt := range d.labTests {
		if lt.IsCompleted() && w.Contains(lt.RecognizedAt()) {
			sum = sum.Add(lt.Cost)
		}
	}
	return sum, nil
}

func (d *dualSources) PaidInWindow(ctx context.Context, w revenue.Window) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, s := range d.sales {
		if s.PaymentStatus == revenue.SalePaymentStatusPaid && w.Contains(s.SoldAt) {
			sum = sum.Add(s.GrandTotal)
		}
	}
	return sum, nil
}

// The ledger (via source syncing) and the aggregator (via windowed SQL
// sums) are two independent paths over the same recognition rules.
// For sources covered by both, their totals must agree.
func TestLedgerMatchesAggregator(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	plain := completedAppointment(100, 20)

	radiology := &revenue.Appointment{
		ID:           uuid.New(),
		PatientID:    uuid.New(),
		PatientName:  "John Doe",
		Department:   "Radiology",
		Status:       revenue.AppointmentStatusCompleted,
		ServiceCount: 1,
		ScheduledAt:  day,
	}
	xray := &revenue.AppointmentService{
		ID:            uuid.New(),
		AppointmentID: radiology.ID,
		Name:          "X-Ray",
		FinalCost:     decimal.NewFromInt(50),
		Appointment:   radiology,
	}

	labVisit := &revenue.Appointment{
		ID:           uuid.New(),
		PatientID:    uuid.New(),
		PatientName:  "Mary Major",
		Department:   revenue.DepartmentLaboratory,
		Status:       revenue.AppointmentStatusCompleted,
		ServiceCount: 1,
		ScheduledAt:  day,
	}
	panel := &revenue.AppointmentService{
		ID:            uuid.New(),
		AppointmentID: labVisit.ID,
		Name:          "Blood Panel",
		FinalCost:     decimal.NewFromInt(40),
		Appointment:   labVisit,
	}

	completedAt := day.Add(2 * time.Hour)
	labTest := &revenue.LabTestRequest{
		ID:          uuid.New(),
		PatientID:   uuid.New(),
		TestName:    "Culture",
		Status:      revenue.LabTestStatusCompleted,
		Cost:        decimal.NewFromInt(25),
		RequestedAt: day,
		CompletedAt: &completedAt,
	}

	sale := &revenue.Sale{
		ID:            uuid.New(),
		InvoiceNumber: "INV-0001",
		GrandTotal:    decimal.NewFromInt(15),
		Status:        revenue.SaleStatusCompleted,
		PaymentStatus: revenue.SalePaymentStatusPaid,
		SoldAt:        day,
	}

	store := newMemStore()
	service, clock := newTestService(store)
	for _, src := range []revenue.Source{plain, radiology, labVisit, xray, panel, labTest, sale} {
		require.NoError(t, service.SyncSource(ctx, src, nil))
	}

	sources := &dualSources{
		appointments: []*revenue.Appointment{plain, radiology, labVisit},
		services:     []*revenue.AppointmentService{xray, panel},
		labTests:     []*revenue.LabTestRequest{labTest},
		sales:        []*revenue.Sale{sale},
	}
	aggregator := apprevenue.NewAggregator(
		sources, sources, sources, sources,
		cache.NewInMemoryDayState(clock), clock, zap.NewNop(),
	)

	breakdown, err := aggregator.Aggregate(ctx, revenue.AllTime(time.Time{}))
	require.NoError(t, err)

	balance := walletBalance(t, service)
	assert.True(t, breakdown.Total.Equal(balance),
		"aggregator total %s != ledger balance %s", breakdown.Total, balance)
	assert.True(t, breakdown.Total.Equal(decimal.NewFromInt(210)))
	assert.True(t, breakdown.Appointments.Equal(decimal.NewFromInt(80)))
	assert.True(t, breakdown.Departments.Equal(decimal.NewFromInt(50)))
	assert.True(t, breakdown.Laboratory.Equal(decimal.NewFromInt(65)))
	assert.True(t, breakdown.Pharmacy.Equal(decimal.NewFromInt(15)))
}
