package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/ledger"
	"github.com/hms/backend/internal/domain/revenue"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service binds revenue sources to the hospital wallet. Every mutation
// runs as one database transaction holding the wallet row lock, so the
// reverse/credit/recompute sequence is serialized across instances.
type Service struct {
	store       ledger.Store
	recognizers *revenue.RecognizerSet
	publisher   shared.EventPublisher
	clock       shared.Clock
	logger      *zap.Logger
	walletName  string
}

// NewService creates a ledger service
func NewService(
	store ledger.Store,
	recognizers *revenue.RecognizerSet,
	publisher shared.EventPublisher,
	clock shared.Clock,
	logger *zap.Logger,
	walletName string,
) *Service {
	if walletName == "" {
		walletName = ledger.DefaultWalletName
	}
	return &Service{
		store:       store,
		recognizers: recognizers,
		publisher:   publisher,
		clock:       clock,
		logger:      logger,
		walletName:  walletName,
	}
}

// SyncSource reconciles the ledger with a source's current state. It is
// idempotent: when the active credited amount already matches what the
// source should carry, nothing is written. Otherwise every remaining
// credit is reversed and, if the source still recognizes revenue, a
// fresh credit for the new amount is appended.
func (s *Service) SyncSource(ctx context.Context, source revenue.Source, actorID *uuid.UUID) error {
	recognition, err := s.recognizers.Recognize(source)
	if err != nil {
		return err
	}

	target := decimal.Zero
	if recognition != nil {
		target = recognition.Amount.Amount()
	}

	ref := source.Reference()
	var (
		wallet   *ledger.Wallet
		recorded []*ledger.Transaction
	)

	err = s.store.InTransaction(ctx, func(tx ledger.Tx) error {
		var err error
		wallet, err = tx.LockWallet(ctx, s.walletName)
		if err != nil {
			return err
		}

		active, err := tx.Transactions().ActiveAmount(ctx, ref)
		if err != nil {
			return err
		}
		if active.Equal(target) {
			return nil
		}

		recorded, err = s.reverseActive(ctx, tx, ref, actorID)
		if err != nil {
			return err
		}

		if recognition != nil {
			credit, err := ledger.NewCredit(
				wallet.ID,
				recognition.Amount,
				recognition.Description,
				ref,
				recognition.OccurredAt,
				actorID,
			)
			if err != nil {
				return err
			}
			if err := tx.Transactions().Append(ctx, credit); err != nil {
				return err
			}
			recorded = append(recorded, credit)
		}

		return s.recomputeWallet(ctx, tx, wallet)
	})
	if err != nil {
		return err
	}

	s.publishRecorded(ctx, wallet, recorded)
	return nil
}

// ReverseSource offsets every remaining credit of a deleted source
func (s *Service) ReverseSource(ctx context.Context, source revenue.Source, actorID *uuid.UUID) error {
	ref := source.Reference()
	var (
		wallet   *ledger.Wallet
		recorded []*ledger.Transaction
	)

	err := s.store.InTransaction(ctx, func(tx ledger.Tx) error {
		var err error
		wallet, err = tx.LockWallet(ctx, s.walletName)
		if err != nil {
			return err
		}

		recorded, err = s.reverseActive(ctx, tx, ref, actorID)
		if err != nil {
			return err
		}
		if len(recorded) == 0 {
			return nil
		}

		return s.recomputeWallet(ctx, tx, wallet)
	})
	if err != nil {
		return err
	}

	s.publishRecorded(ctx, wallet, recorded)
	return nil
}

// WalletBalance returns the current cached wallet balance. A missing
// wallet reads as zero.
func (s *Service) WalletBalance(ctx context.Context) (decimal.Decimal, error) {
	wallet, err := s.store.Wallet(ctx, s.walletName)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return wallet.Balance, nil
}

// History returns the full audit trail for a source reference
func (s *Service) History(ctx context.Context, ref ledger.Reference) ([]ledger.Transaction, error) {
	return s.store.Transactions().FindByReference(ctx, ref)
}

// reverseActive debits every active credit of the reference. Credits
// already offset by a reversal are skipped, so replays never double-debit.
func (s *Service) reverseActive(
	ctx context.Context,
	tx ledger.Tx,
	ref ledger.Reference,
	actorID *uuid.UUID,
) ([]*ledger.Transaction, error) {
	credits, err := tx.Transactions().ActiveCredits(ctx, ref)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	reversals := make([]*ledger.Transaction, 0, len(credits))
	for i := range credits {
		reversal, err := ledger.NewReversal(&credits[i], now, actorID)
		if err != nil {
			return nil, err
		}
		if err := tx.Transactions().Append(ctx, reversal); err != nil {
			return nil, err
		}
		reversals = append(reversals, reversal)
	}
	return reversals, nil
}

// recomputeWallet re-sums the wallet's full transaction set under the
// held row lock and persists the result
func (s *Service) recomputeWallet(ctx context.Context, tx ledger.Tx, wallet *ledger.Wallet) error {
	total, err := tx.Transactions().SumByWallet(ctx, wallet.ID)
	if err != nil {
		return err
	}
	wallet.Recompute(total)
	return tx.SaveWallet(ctx, wallet)
}

// publishRecorded emits the wallet's accumulated aggregate events and
// one TransactionRecordedEvent per appended entry, after the commit
func (s *Service) publishRecorded(ctx context.Context, wallet *ledger.Wallet, recorded []*ledger.Transaction) {
	if s.publisher == nil {
		return
	}

	var events []shared.DomainEvent
	if wallet != nil {
		events = append(events, wallet.GetDomainEvents()...)
		wallet.ClearDomainEvents()
	}
	for _, txn := range recorded {
		events = append(events, ledger.NewTransactionRecordedEvent(txn))
	}
	if len(events) == 0 {
		return
	}

	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish ledger events", zap.Error(err))
	}
}
