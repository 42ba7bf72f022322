package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// IsValid returns true for a known transaction type
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeCredit || t == TransactionTypeDebit
}

// Reference is a polymorphic weak pointer to the entity that produced a
// ledger entry. Many transactions may reference the same entity over its
// lifetime, since edits reverse and recreate credits.
type Reference struct {
	Type string
	ID   uuid.UUID
}

// IsZero returns true when the reference is unset
func (r Reference) IsZero() bool {
	return r.Type == "" || r.ID == uuid.Nil
}

func (r Reference) String() string {
	return fmt.Sprintf("%s/%s", r.Type, r.ID)
}

// Transaction is an immutable ledger entry. Once written it is never
// updated or deleted; corrections are new debit/credit rows.
type Transaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	WalletID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type            TransactionType `gorm:"type:varchar(10);not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Description     string          `gorm:"type:varchar(500);not null"`
	ReferenceType   string          `gorm:"type:varchar(50);not null;index:idx_transactions_reference,priority:1"`
	ReferenceID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_transactions_reference,priority:2"`
	TransactionDate time.Time       `gorm:"not null;index"`
	ReversalOfID    *uuid.UUID      `gorm:"type:uuid;index"` // set on debits that offset a prior credit
	CreatedBy       *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "transactions"
}

// NewCredit creates a credit entry for a recognized revenue amount
func NewCredit(
	walletID uuid.UUID,
	amount valueobject.Money,
	description string,
	ref Reference,
	transactionDate time.Time,
	createdBy *uuid.UUID,
) (*Transaction, error) {
	if walletID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WALLET", "Wallet ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	if ref.IsZero() {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Transaction reference is required")
	}
	if transactionDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Transaction date is required")
	}

	return &Transaction{
		ID:              uuid.New(),
		WalletID:        walletID,
		Type:            TransactionTypeCredit,
		Amount:          amount.Amount(),
		Description:     description,
		ReferenceType:   ref.Type,
		ReferenceID:     ref.ID,
		TransactionDate: transactionDate,
		CreatedBy:       createdBy,
		CreatedAt:       time.Now(),
	}, nil
}

// NewReversal creates a debit offsetting a prior credit. The reversal
// carries the reversal time, not the original transaction date, and keeps
// the original row untouched so the audit trail is preserved.
func NewReversal(original *Transaction, reversedAt time.Time, createdBy *uuid.UUID) (*Transaction, error) {
	if original == nil {
		return nil, shared.NewDomainError("INVALID_REVERSAL", "Original transaction is required")
	}
	if original.Type != TransactionTypeCredit {
		return nil, shared.NewDomainError("INVALID_REVERSAL", "Only credit transactions can be reversed")
	}
	if reversedAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Reversal time is required")
	}

	originalID := original.ID
	return &Transaction{
		ID:              uuid.New(),
		WalletID:        original.WalletID,
		Type:            TransactionTypeDebit,
		Amount:          original.Amount,
		Description:     fmt.Sprintf("Reversal: %s", original.Description),
		ReferenceType:   original.ReferenceType,
		ReferenceID:     original.ReferenceID,
		TransactionDate: reversedAt,
		ReversalOfID:    &originalID,
		CreatedBy:       createdBy,
		CreatedAt:       time.Now(),
	}, nil
}

// Reference returns the producing-entity reference of this entry
func (t *Transaction) Reference() Reference {
	return Reference{Type: t.ReferenceType, ID: t.ReferenceID}
}

// Signed returns the amount with its ledger sign: positive for credits,
// negative for debits.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IsReversal returns true when this entry offsets a prior credit
func (t *Transaction) IsReversal() bool {
	return t.ReversalOfID != nil
}
