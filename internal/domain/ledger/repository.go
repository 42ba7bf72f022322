package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRepository provides append-only access to ledger entries
type TransactionRepository interface {
	// Append writes a new immutable ledger entry
	Append(ctx context.Context, txn *Transaction) error

	// FindByReference returns every entry ever written for a reference,
	// oldest first
	FindByReference(ctx context.Context, ref Reference) ([]Transaction, error)

	// ActiveCredits returns credits for a reference that have not been
	// offset by a reversal debit, oldest first
	ActiveCredits(ctx context.Context, ref Reference) ([]Transaction, error)

	// ActiveAmount returns sum(credits) - sum(debits) for a reference
	ActiveAmount(ctx context.Context, ref Reference) (decimal.Decimal, error)

	// SumByWallet returns sum(credits) - sum(debits) over a wallet's
	// full transaction set
	SumByWallet(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error)
}

// Tx is the unit-of-work handed to a ledger mutation. LockWallet must be
// called first: it get-or-creates the wallet by name and holds its row
// lock for the remainder of the transaction, serializing every
// reverse/recompute/credit sequence against concurrent writers.
type Tx interface {
	LockWallet(ctx context.Context, name string) (*Wallet, error)
	SaveWallet(ctx context.Context, w *Wallet) error
	Transactions() TransactionRepository

	// Provider exposes the underlying transaction handle (a *gorm.DB in
	// the production store) so sibling repositories can join the same
	// unit of work, e.g. the sale-processing flow that must commit stock
	// deduction and ledger entry together.
	Provider() any
}

// Store runs ledger mutations atomically
type Store interface {
	// InTransaction executes fn inside one database transaction.
	// Returning an error rolls back everything fn did.
	InTransaction(ctx context.Context, fn func(tx Tx) error) error

	// Wallet returns the wallet by name without locking, for reads
	Wallet(ctx context.Context, name string) (*Wallet, error)

	// Transactions returns a non-transactional repository, for reads
	Transactions() TransactionRepository
}
