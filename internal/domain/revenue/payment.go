package revenue

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/ledger"
	"github.com/hms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle status of a recorded patient payment
type PaymentStatus string

const (
	PaymentStatusRecorded PaymentStatus = "RECORDED"
	PaymentStatusVoided   PaymentStatus = "VOIDED"
)

// Payment is the read model of a directly recorded patient payment
// (deposits, bill settlements outside the other flows). It is recognized
// unconditionally on creation and re-recognized whenever its amount or
// status changes.
type Payment struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	PatientID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Method     string          `gorm:"type:varchar(30);not null"`
	Status     PaymentStatus   `gorm:"type:varchar(20);not null;index"`
	Notes      string          `gorm:"type:varchar(500)"`
	ReceivedAt time.Time       `gorm:"not null;index"`
	CreatedAt  time.Time       `gorm:"not null"`
	UpdatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// Reference returns the ledger reference for this payment
func (p *Payment) Reference() ledger.Reference {
	return ledger.Reference{Type: ReferenceTypePayment, ID: p.ID}
}

// IsVoided reports whether the payment has been voided
func (p *Payment) IsVoided() bool {
	return p.Status == PaymentStatusVoided
}

// AmountMoney returns the paid amount as Money
func (p *Payment) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Amount)
}
