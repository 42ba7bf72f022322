package revenue

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppointmentReader queries appointments for aggregation
type AppointmentReader interface {
	// RecognizableInWindow sums net consultation fees for recognizable
	// appointments without services outside the Laboratory department
	RecognizableInWindow(ctx context.Context, window Window) (decimal.Decimal, error)
	// CountInWindow counts recognizable appointments in the window,
	// regardless of department or attached services
	CountInWindow(ctx context.Context, window Window) (int64, error)
	// LaboratoryFeesInWindow sums net fees of recognizable Laboratory
	// appointments without services
	LaboratoryFeesInWindow(ctx context.Context, window Window) (decimal.Decimal, error)
}

// AppointmentServiceReader queries appointment services for aggregation
type AppointmentServiceReader interface {
	// DepartmentTotalsInWindow sums costs of services on recognizable
	// appointments grouped by department, Laboratory excluded
	DepartmentTotalsInWindow(ctx context.Context, window Window) (map[string]decimal.Decimal, error)
	// LaboratoryServicesInWindow sums costs of Laboratory services on
	// recognizable appointments
	LaboratoryServicesInWindow(ctx context.Context, window Window) (decimal.Decimal, error)
}

// LabTestReader queries lab test requests for aggregation
type LabTestReader interface {
	// CompletedInWindow sums costs of completed lab test requests
	CompletedInWindow(ctx context.Context, window Window) (decimal.Decimal, error)
}

// SaleReader queries pharmacy sales for aggregation
type SaleReader interface {
	// PaidInWindow sums grand totals of paid sales
	PaidInWindow(ctx context.Context, window Window) (decimal.Decimal, error)
}

// SaleRepository persists sales and their items
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	Save(ctx context.Context, sale *Sale) error
	// WithTx returns a repository bound to an in-flight unit of work.
	// The provider comes from ledger.Tx.Provider.
	WithTx(provider any) SaleRepository
}

// StockRepository persists pharmacy stock items
type StockRepository interface {
	// FindForUpdate loads a stock item under a row lock
	FindForUpdate(ctx context.Context, id uuid.UUID) (*StockItem, error)
	Save(ctx context.Context, item *StockItem) error
	WithTx(provider any) StockRepository
}
