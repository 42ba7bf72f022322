package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/ledger"
	"github.com/hms/backend/internal/domain/revenue"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory ledger.Store for service-level tests. It
// runs transaction functions directly; rollback behavior is covered by
// the persistence tests.
type memStore struct {
	mu      sync.Mutex
	wallets map[string]*ledger.Wallet
	entries []ledger.Transaction
}

func newMemStore() *memStore {
	return &memStore{wallets: make(map[string]*ledger.Wallet)}
}

func (s *memStore) InTransaction(ctx context.Context, fn func(tx ledger.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memTx{store: s})
}

func (s *memStore) Wallet(ctx context.Context, name string) (*ledger.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[name]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return w, nil
}

func (s *memStore) Transactions() ledger.TransactionRepository {
	return &memTxnRepo{store: s}
}

type memTx struct {
	store *memStore
}

func (t *memTx) LockWallet(ctx context.Context, name string) (*ledger.Wallet, error) {
	if w, ok := t.store.wallets[name]; ok {
		return w, nil
	}
	w, err := ledger.NewWallet(name)
	if err != nil {
		return nil, err
	}
	t.store.wallets[name] = w
	return w, nil
}

func (t *memTx) SaveWallet(ctx context.Context, w *ledger.Wallet) error {
	t.store.wallets[w.Name] = w
	return nil
}

func (t *memTx) Transactions() ledger.TransactionRepository {
	return &memTxnRepo{store: t.store, inTx: true}
}

func (t *memTx) Provider() any { return nil }

type memTxnRepo struct {
	store *memStore
	inTx  bool
}

func (r *memTxnRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *memTxnRepo) Append(ctx context.Context, txn *ledger.Transaction) error {
	defer r.lock()()
	r.store.entries = append(r.store.entries, *txn)
	return nil
}

func (r *memTxnRepo) FindByReference(ctx context.Context, ref ledger.Reference) ([]ledger.Transaction, error) {
	defer r.lock()()
	var out []ledger.Transaction
	for _, e := range r.store.entries {
		if e.Reference() == ref {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memTxnRepo) ActiveCredits(ctx context.Context, ref ledger.Reference) ([]ledger.Transaction, error) {
	defer r.lock()()
	reversed := make(map[uuid.UUID]bool)
	for _, e := range r.store.entries {
		if e.ReversalOfID != nil {
			reversed[*e.ReversalOfID] = true
		}
	}
	var out []ledger.Transaction
	for _, e := range r.store.entries {
		if e.Reference() == ref && e.Type == ledger.TransactionTypeCredit && !reversed[e.ID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memTxnRepo) ActiveAmount(ctx context.Context, ref ledger.Reference) (decimal.Decimal, error) {
	defer r.lock()()
	sum := decimal.Zero
	for _, e := range r.store.entries {
		if e.Reference() == ref {
			sum = sum.Add(e.Signed())
		}
	}
	return sum, nil
}

func (r *memTxnRepo) SumByWallet(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	defer r.lock()()
	sum := decimal.Zero
	for _, e := range r.store.entries {
		if e.WalletID == walletID {
			sum = sum.Add(e.Signed())
		}
	}
	return sum, nil
}

// capturePublisher collects everything the service publishes
type capturePublisher struct {
	events []shared.DomainEvent
}

func (p *capturePublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *capturePublisher) eventTypes() []string {
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

func newTestService(store *memStore) (*Service, *shared.FixedClock) {
	clock := &shared.FixedClock{Instant: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	service := NewService(store, revenue.NewRecognizerSet(), nil, clock, zap.NewNop(), "")
	return service, clock
}

func completedAppointment(fee, discount float64) *revenue.Appointment {
	return &revenue.Appointment{
		ID:          uuid.New(),
		PatientID:   uuid.New(),
		PatientName: "Jane Roe",
		Department:  "Cardiology",
		Status:      revenue.AppointmentStatusCompleted,
		Fee:         decimal.NewFromFloat(fee),
		Discount:    decimal.NewFromFloat(discount),
		ScheduledAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func walletBalance(t *testing.T, service *Service) decimal.Decimal {
	t.Helper()
	balance, err := service.WalletBalance(context.Background())
	require.NoError(t, err)
	return balance
}

func TestServiceSyncSource(t *testing.T) {
	ctx := context.Background()

	t.Run("new recognizable source credits the wallet", func(t *testing.T) {
		store := newMemStore()
		service, _ := newTestService(store)
		appt := completedAppointment(100, 20)

		require.NoError(t, service.SyncSource(ctx, appt, nil))

		assert.True(t, walletBalance(t, service).Equal(decimal.NewFromInt(80)))
		assert.Len(t, store.entries, 1)
		assert.Equal(t, ledger.TransactionTypeCredit, store.entries[0].Type)
	})

	t.Run("amount change reverses and re-credits", func(t *testing.T) {
		store := newMemStore()
		service, _ := newTestService(store)
		appt := completedAppointment(100, 20)
		require.NoError(t, service.SyncSource(ctx, appt, nil))

		appt.Fee = decimal.NewFromInt(150)
		appt.Discount = decimal.NewFromInt(20)
		require.NoError(t, service.SyncSource(ctx, appt, nil))

		require.Len(t, store.entries, 3)
		assert.Equal(t, ledger.TransactionTypeCredit, store.entries[0].Type)
		assert.Equal(t, ledger.TransactionTypeDebit, store.entries[1].Type)
		assert.Equal(t, store.entries[0].ID, *store.entries[1].ReversalOfID)
		assert.Equal(t, ledger.TransactionTypeCredit, store.entries[2].Type)
		assert.True(t, store.entries[2].Amount.Equal(decimal.NewFromInt(130)))
		assert.True(t, walletBalance(t, service).Equal(decimal.NewFromInt(130)))
	})

	t.Run("unchanged source is a no-op on redelivery", func(t *testing.T) {
		store := newMemStore()
		service, _ := newTestService(store)
		appt := completedAppointment(100, 0)
		require.NoError(t, service.SyncSource(ctx, appt, nil))

		require.NoError(t, service.SyncSource(ctx, appt, nil))
		require.NoError(t, service.SyncSource(ctx, appt, nil))

		assert.Len(t, store.entries, 1)
		assert.True(t, walletBalance(t, service).Equal(decimal.NewFromInt(100)))
	})

	t.Run("transition out of recognizable status reverses only", func(t *testing.T) {
		store := newMemStore()
		service, _ := newTestService(store)
		appt := completedAppointment(60, 0)
		require.NoError(t, service.SyncSource(ctx, appt, nil))

		appt.Status = revenue.AppointmentStatusCancelled
		require.NoError(t, service.SyncSource(ctx, appt, nil))

		require.Len(t, store.entries, 2)
		assert.Equal(t, ledger.TransactionTypeDebit, store.entries[1].Type)
		assert.True(t, walletBalance(t, service).IsZero())
	})

	t.Run("non-recognizable source never touches the ledger", func(t *testing.T) {
		store := newMemStore()
		service, _ := newTestService(store)
		appt := completedAppointment(60, 0)
		appt.Status = revenue.AppointmentStatusScheduled

		require.NoError(t, service.SyncSource(ctx, appt, nil))

		assert.Empty(t, store.entries)
	})

	t.Run("reversal carries the sync time not the original date", func(t *testing.T) {
		store := newMemStore()
		service, clock := newTestService(store)
		appt := completedAppointment(60, 0)
		require.NoError(t, service.SyncSource(ctx, appt, nil))

		clock.Advance(48 * time.Hour)
		appt.Status = revenue.AppointmentStatusCancelled
		require.NoError(t, service.SyncSource(ctx, appt, nil))

		assert.Equal(t, clock.Now(), store.entries[1].TransactionDate)
		assert.Equal(t, appt.ScheduledAt, store.entries[0].TransactionDate)
	})
}

func TestServiceReverseSource(t *testing.T) {
	ctx := context.Background()

	t.Run("deletion reverses every active credit", func(t *testing.T) {
		store := newMemStore()
		service, _ := newTestService(store)
		appt := completedAppointment(75, 0)
		require.NoError(t, service.SyncSource(ctx, appt, nil))

		require.NoError(t, service.ReverseSource(ctx, appt, nil))

		require.Len(t, store.entries, 2)
		assert.True(t, walletBalance(t, service).IsZero())
	})

	t.Run("repeat deletion is a no-op", func(t *testing.T) {
		store := newMemStore()
		service, _ := newTestService(store)
		appt := completedAppointment(75, 0)
		require.NoError(t, service.SyncSource(ctx, appt, nil))
		require.NoError(t, service.ReverseSource(ctx, appt, nil))

		require.NoError(t, service.ReverseSource(ctx, appt, nil))

		assert.Len(t, store.entries, 2)
	})

	t.Run("deleting an unknown source writes nothing", func(t *testing.T) {
		store := newMemStore()
		service, _ := newTestService(store)

		require.NoError(t, service.ReverseSource(ctx, completedAppointment(10, 0), nil))

		assert.Empty(t, store.entries)
	})
}

func TestServiceEventPublishing(t *testing.T) {
	ctx := context.Background()

	newPublishingService := func(store *memStore) (*Service, *capturePublisher) {
		clock := &shared.FixedClock{Instant: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
		publisher := &capturePublisher{}
		return NewService(store, revenue.NewRecognizerSet(), publisher, clock, zap.NewNop(), ""), publisher
	}

	t.Run("first sync publishes wallet lifecycle and transaction events", func(t *testing.T) {
		store := newMemStore()
		service, publisher := newPublishingService(store)

		require.NoError(t, service.SyncSource(ctx, completedAppointment(100, 20), nil))

		assert.Equal(t, []string{
			ledger.EventTypeWalletCreated,
			ledger.EventTypeWalletBalanceRecomputed,
			ledger.EventTypeTransactionRecorded,
		}, publisher.eventTypes())
	})

	t.Run("wallet events are published once, not redelivered", func(t *testing.T) {
		store := newMemStore()
		service, publisher := newPublishingService(store)
		appt := completedAppointment(100, 0)
		require.NoError(t, service.SyncSource(ctx, appt, nil))

		publisher.events = nil
		appt.Fee = decimal.NewFromInt(150)
		require.NoError(t, service.SyncSource(ctx, appt, nil))

		assert.Equal(t, []string{
			ledger.EventTypeWalletBalanceRecomputed,
			ledger.EventTypeTransactionRecorded,
			ledger.EventTypeTransactionRecorded,
		}, publisher.eventTypes())
	})

	t.Run("no-op sync publishes nothing", func(t *testing.T) {
		store := newMemStore()
		service, publisher := newPublishingService(store)
		appt := completedAppointment(100, 0)
		require.NoError(t, service.SyncSource(ctx, appt, nil))

		publisher.events = nil
		require.NoError(t, service.SyncSource(ctx, appt, nil))

		assert.Empty(t, publisher.events)
	})

	t.Run("reversal publishes the recompute alongside the debit", func(t *testing.T) {
		store := newMemStore()
		service, publisher := newPublishingService(store)
		appt := completedAppointment(75, 0)
		require.NoError(t, service.SyncSource(ctx, appt, nil))

		publisher.events = nil
		require.NoError(t, service.ReverseSource(ctx, appt, nil))

		assert.Equal(t, []string{
			ledger.EventTypeWalletBalanceRecomputed,
			ledger.EventTypeTransactionRecorded,
		}, publisher.eventTypes())
	})
}

func TestRecognitionBinder(t *testing.T) {
	ctx := context.Background()

	t.Run("created event credits the source", func(t *testing.T) {
		store := newMemStore()
		service, _ := newTestService(store)
		binder := NewRecognitionBinder(service, zap.NewNop())
		appt := completedAppointment(90, 0)

		err := binder.Handle(ctx, revenue.NewSourceCreatedEvent(appt, nil))

		require.NoError(t, err)
		assert.True(t, walletBalance(t, service).Equal(decimal.NewFromInt(90)))
	})

	t.Run("updated event rebinds to the new state", func(t *testing.T) {
		store := newMemStore()
		service, _ := newTestService(store)
		binder := NewRecognitionBinder(service, zap.NewNop())
		old := completedAppointment(90, 0)
		require.NoError(t, binder.Handle(ctx, revenue.NewSourceCreatedEvent(old, nil)))

		updated := *old
		updated.Fee = decimal.NewFromInt(120)
		err := binder.Handle(ctx, revenue.NewSourceUpdatedEvent(old, &updated, nil))

		require.NoError(t, err)
		assert.True(t, walletBalance(t, service).Equal(decimal.NewFromInt(120)))
		assert.Len(t, store.entries, 3)
	})

	t.Run("deleted event reverses the source", func(t *testing.T) {
		store := newMemStore()
		service, _ := newTestService(store)
		binder := NewRecognitionBinder(service, zap.NewNop())
		appt := completedAppointment(90, 0)
		require.NoError(t, binder.Handle(ctx, revenue.NewSourceCreatedEvent(appt, nil)))

		err := binder.Handle(ctx, revenue.NewSourceDeletedEvent(appt, nil))

		require.NoError(t, err)
		assert.True(t, walletBalance(t, service).IsZero())
	})

	t.Run("subscribes to all three lifecycle events", func(t *testing.T) {
		binder := NewRecognitionBinder(nil, zap.NewNop())

		assert.ElementsMatch(t, []string{
			revenue.EventTypeSourceCreated,
			revenue.EventTypeSourceUpdated,
			revenue.EventTypeSourceDeleted,
		}, binder.EventTypes())
	})
}
