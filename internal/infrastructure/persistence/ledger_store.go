package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLedgerStore implements ledger.Store using GORM
type GormLedgerStore struct {
	db *gorm.DB
}

// NewGormLedgerStore creates a new GormLedgerStore
func NewGormLedgerStore(db *gorm.DB) *GormLedgerStore {
	return &GormLedgerStore{db: db}
}

// InTransaction executes fn inside one database transaction
func (s *GormLedgerStore) InTransaction(ctx context.Context, fn func(tx ledger.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerTx{db: tx})
	})
	return translateError(err)
}

// Wallet returns the wallet by name without locking
func (s *GormLedgerStore) Wallet(ctx context.Context, name string) (*ledger.Wallet, error) {
	var wallet ledger.Wallet
	if err := s.db.WithContext(ctx).First(&wallet, "name = ?", name).Error; err != nil {
		return nil, translateError(err)
	}
	return &wallet, nil
}

// Transactions returns a non-transactional transaction repository
func (s *GormLedgerStore) Transactions() ledger.TransactionRepository {
	return &gormTransactionRepository{db: s.db}
}

// gormLedgerTx is the unit-of-work bound to one database transaction
type gormLedgerTx struct {
	db *gorm.DB
}

// LockWallet get-or-creates the wallet by name and holds its row lock
// until the transaction ends. The create path retries the locked read
// once because a concurrent insert can win the race on the unique name.
func (t *gormLedgerTx) LockWallet(ctx context.Context, name string) (*ledger.Wallet, error) {
	var wallet ledger.Wallet
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&wallet, "name = ?", name).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translateError(err)
	}

	created, err := ledger.NewWallet(name)
	if err != nil {
		return nil, err
	}
	if err := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(created).Error; err != nil {
		return nil, translateError(err)
	}

	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&wallet, "name = ?", name).Error; err != nil {
		return nil, translateError(err)
	}
	return &wallet, nil
}

// SaveWallet persists the wallet state
func (t *gormLedgerTx) SaveWallet(ctx context.Context, w *ledger.Wallet) error {
	return translateError(t.db.WithContext(ctx).Save(w).Error)
}

// Transactions returns the repository bound to this transaction
func (t *gormLedgerTx) Transactions() ledger.TransactionRepository {
	return &gormTransactionRepository{db: t.db}
}

// Provider exposes the transaction handle so sibling repositories can
// join this unit of work
func (t *gormLedgerTx) Provider() any {
	return t.db
}

// gormTransactionRepository implements ledger.TransactionRepository
type gormTransactionRepository struct {
	db *gorm.DB
}

// Append writes a new immutable ledger entry
func (r *gormTransactionRepository) Append(ctx context.Context, txn *ledger.Transaction) error {
	return translateError(r.db.WithContext(ctx).Create(txn).Error)
}

// FindByReference returns every entry for a reference, oldest first
func (r *gormTransactionRepository) FindByReference(ctx context.Context, ref ledger.Reference) ([]ledger.Transaction, error) {
	var out []ledger.Transaction
	err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", ref.Type, ref.ID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

// ActiveCredits returns credits for a reference not yet offset by a
// reversal debit, oldest first
func (r *gormTransactionRepository) ActiveCredits(ctx context.Context, ref ledger.Reference) ([]ledger.Transaction, error) {
	var out []ledger.Transaction
	err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ? AND type = ?", ref.Type, ref.ID, ledger.TransactionTypeCredit).
		Where("id NOT IN (?)", r.db.
			Model(&ledger.Transaction{}).
			Select("reversal_of_id").
			Where("reference_type = ? AND reference_id = ? AND reversal_of_id IS NOT NULL", ref.Type, ref.ID),
		).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

// ActiveAmount returns sum(credits) - sum(debits) for a reference
func (r *gormTransactionRepository) ActiveAmount(ctx context.Context, ref ledger.Reference) (decimal.Decimal, error) {
	return r.signedSum(ctx, r.db.WithContext(ctx).
		Model(&ledger.Transaction{}).
		Where("reference_type = ? AND reference_id = ?", ref.Type, ref.ID))
}

// SumByWallet returns sum(credits) - sum(debits) over a wallet's full
// transaction set
func (r *gormTransactionRepository) SumByWallet(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	return r.signedSum(ctx, r.db.WithContext(ctx).
		Model(&ledger.Transaction{}).
		Where("wallet_id = ?", walletID))
}

func (r *gormTransactionRepository) signedSum(ctx context.Context, query *gorm.DB) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := query.
		Select("COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE -amount END), 0) AS total", ledger.TransactionTypeCredit).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, translateError(err)
	}
	return result.Total, nil
}
