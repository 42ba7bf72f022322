package ledger

import (
	"time"

	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultWalletName is the singleton hospital wallet's natural key
const DefaultWalletName = "Hospital Wallet"

// Wallet is the singleton-per-name aggregate holding the cached balance.
// Invariant: Balance == sum(credits) - sum(debits) over the wallet's
// transactions at any observed instant. The balance is mutated only by
// recomputation after a transaction write, never incrementally.
type Wallet struct {
	shared.BaseAggregateRoot
	Name    string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Balance decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (Wallet) TableName() string {
	return "wallets"
}

// NewWallet creates a wallet with a zero balance
func NewWallet(name string) (*Wallet, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_WALLET_NAME", "Wallet name cannot be empty")
	}

	w := &Wallet{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Balance:           decimal.Zero,
	}
	w.AddDomainEvent(NewWalletCreatedEvent(w))
	return w, nil
}

// Recompute replaces the cached balance with a freshly summed total.
// The full re-sum is intentional: an incremental counter could drift
// under concurrent writers, a re-sum under the wallet row lock cannot.
func (w *Wallet) Recompute(total decimal.Decimal) {
	previous := w.Balance
	w.Balance = total
	w.UpdatedAt = time.Now()
	w.IncrementVersion()

	if !previous.Equal(total) {
		w.AddDomainEvent(NewWalletBalanceRecomputedEvent(w, previous))
	}
}
