package revenue

import (
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/ledger"
	"github.com/hms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LabTestStatus is the lifecycle status of a laboratory test request
type LabTestStatus string

const (
	LabTestStatusPending    LabTestStatus = "PENDING"
	LabTestStatusInProgress LabTestStatus = "IN_PROGRESS"
	LabTestStatusCompleted  LabTestStatus = "COMPLETED"
	LabTestStatusCancelled  LabTestStatus = "CANCELLED"
)

// LabTestRequest is the read model of a laboratory test request. Revenue
// is recognized only once the test completes.
type LabTestRequest struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	PatientID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	TestName    string          `gorm:"type:varchar(200);not null"`
	Status      LabTestStatus   `gorm:"type:varchar(20);not null;index"`
	Cost        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RequestedAt time.Time       `gorm:"not null;index"`
	CompletedAt *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LabTestRequest) TableName() string {
	return "lab_test_requests"
}

// Reference returns the ledger reference for this request
func (r *LabTestRequest) Reference() ledger.Reference {
	return ledger.Reference{Type: ReferenceTypeLabTestRequest, ID: r.ID}
}

// IsCompleted reports whether the test has finished
func (r *LabTestRequest) IsCompleted() bool {
	return r.Status == LabTestStatusCompleted
}

// CostMoney returns the test cost as Money
func (r *LabTestRequest) CostMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(r.Cost)
}

// RecognizedAt returns when the revenue became recognizable: the
// completion time when known, the request time otherwise
func (r *LabTestRequest) RecognizedAt() time.Time {
	if r.CompletedAt != nil {
		return *r.CompletedAt
	}
	return r.RequestedAt
}
