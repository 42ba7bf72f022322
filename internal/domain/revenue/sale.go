package revenue

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/ledger"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SaleStatus is the lifecycle status of a pharmacy sale
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// SalePaymentStatus tracks whether a sale has been paid
type SalePaymentStatus string

const (
	SalePaymentStatusUnpaid SalePaymentStatus = "UNPAID"
	SalePaymentStatusPaid   SalePaymentStatus = "PAID"
)

// Sale is a pharmacy sale. Unlike the other sources it has an explicit,
// user-initiated finalization flow: stock deduction, item creation and
// the ledger entry commit as one atomic unit.
type Sale struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key"`
	InvoiceNumber string            `gorm:"type:varchar(50);not null;uniqueIndex"`
	PatientName   string            `gorm:"type:varchar(200)"`
	GrandTotal    decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Status        SaleStatus        `gorm:"type:varchar(20);not null;index"`
	PaymentStatus SalePaymentStatus `gorm:"type:varchar(20);not null;index"`
	SoldAt        time.Time         `gorm:"not null;index"`
	CreatedAt     time.Time         `gorm:"not null"`
	UpdatedAt     time.Time         `gorm:"not null"`

	Items []SaleItem `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// Reference returns the ledger reference for this sale
func (s *Sale) Reference() ledger.Reference {
	return ledger.Reference{Type: ReferenceTypeSale, ID: s.ID}
}

// IsRecognizable reports whether the sale contributes revenue: it has
// been paid, or completed in aggregation contexts
func (s *Sale) IsRecognizable() bool {
	return s.PaymentStatus == SalePaymentStatusPaid || s.Status == SaleStatusCompleted
}

// GrandTotalMoney returns the grand total as Money
func (s *Sale) GrandTotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(s.GrandTotal)
}

// Finalize marks the sale paid and completed. Only pending sales can be
// finalized; re-finalizing is an invalid state transition.
func (s *Sale) Finalize(at time.Time) error {
	if s.Status != SaleStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot finalize sale in %s status", s.Status))
	}
	s.Status = SaleStatusCompleted
	s.PaymentStatus = SalePaymentStatusPaid
	s.SoldAt = at
	s.UpdatedAt = at
	return nil
}

// SaleItem is one dispensed line of a sale
type SaleItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	StockItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// NewSaleItem creates a sale line for a stock item
func NewSaleItem(saleID uuid.UUID, stock *StockItem, quantity int) (*SaleItem, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	unitPrice := stock.UnitPrice
	return &SaleItem{
		ID:          uuid.New(),
		SaleID:      saleID,
		StockItemID: stock.ID,
		Name:        stock.Name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt:   time.Now(),
	}, nil
}

// StockItem is a pharmacy inventory row consumed by the sale flow
type StockItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Quantity  int             `gorm:"not null;default:0"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// Deduct removes quantity from stock, failing when not enough remains
func (i *StockItem) Deduct(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if i.Quantity < quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for %s: have %d, need %d", i.Name, i.Quantity, quantity))
	}
	i.Quantity -= quantity
	i.UpdatedAt = time.Now()
	return nil
}

// UnitPriceMoney returns the unit price as Money
func (i *StockItem) UnitPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.UnitPrice)
}
