package ledger

import (
	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type names published by the ledger
const (
	EventTypeWalletCreated           = "WalletCreated"
	EventTypeWalletBalanceRecomputed = "WalletBalanceRecomputed"
	EventTypeTransactionRecorded     = "TransactionRecorded"
)

// WalletCreatedEvent is raised when the wallet aggregate is lazily created
type WalletCreatedEvent struct {
	shared.BaseDomainEvent
	WalletID uuid.UUID `json:"wallet_id"`
	Name     string    `json:"name"`
}

// EventType returns the event type name
func (e *WalletCreatedEvent) EventType() string {
	return EventTypeWalletCreated
}

// NewWalletCreatedEvent creates a new WalletCreatedEvent
func NewWalletCreatedEvent(w *Wallet) *WalletCreatedEvent {
	return &WalletCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWalletCreated, "Wallet", w.ID),
		WalletID:        w.ID,
		Name:            w.Name,
	}
}

// WalletBalanceRecomputedEvent is raised after a balance recomputation
// changed the cached value
type WalletBalanceRecomputedEvent struct {
	shared.BaseDomainEvent
	WalletID        uuid.UUID       `json:"wallet_id"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	Balance         decimal.Decimal `json:"balance"`
}

// EventType returns the event type name
func (e *WalletBalanceRecomputedEvent) EventType() string {
	return EventTypeWalletBalanceRecomputed
}

// NewWalletBalanceRecomputedEvent creates a new WalletBalanceRecomputedEvent
func NewWalletBalanceRecomputedEvent(w *Wallet, previous decimal.Decimal) *WalletBalanceRecomputedEvent {
	return &WalletBalanceRecomputedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWalletBalanceRecomputed, "Wallet", w.ID),
		WalletID:        w.ID,
		PreviousBalance: previous,
		Balance:         w.Balance,
	}
}

// TransactionRecordedEvent is raised for every appended ledger entry
type TransactionRecordedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	WalletID      uuid.UUID       `json:"wallet_id"`
	Kind          TransactionType `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   uuid.UUID       `json:"reference_id"`
}

// EventType returns the event type name
func (e *TransactionRecordedEvent) EventType() string {
	return EventTypeTransactionRecorded
}

// NewTransactionRecordedEvent creates a new TransactionRecordedEvent
func NewTransactionRecordedEvent(t *Transaction) *TransactionRecordedEvent {
	return &TransactionRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionRecorded, "Transaction", t.ID),
		TransactionID:   t.ID,
		WalletID:        t.WalletID,
		Kind:            t.Type,
		Amount:          t.Amount,
		ReferenceType:   t.ReferenceType,
		ReferenceID:     t.ReferenceID,
	}
}
