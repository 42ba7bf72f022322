package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReference() Reference {
	return Reference{Type: "appointment", ID: uuid.New()}
}

func TestNewCredit(t *testing.T) {
	walletID := uuid.New()
	ref := testReference()
	now := time.Now()

	t.Run("creates credit with valid inputs", func(t *testing.T) {
		userID := uuid.New()
		txn, err := NewCredit(walletID, valueobject.NewMoneyUSDFromFloat(80), "Appointment fee", ref, now, &userID)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, txn.ID)
		assert.Equal(t, TransactionTypeCredit, txn.Type)
		assert.True(t, txn.Amount.Equal(decimal.NewFromInt(80)))
		assert.Equal(t, ref, txn.Reference())
		assert.Equal(t, now, txn.TransactionDate)
		assert.Equal(t, &userID, txn.CreatedBy)
		assert.Nil(t, txn.ReversalOfID)
		assert.False(t, txn.IsReversal())
	})

	t.Run("allows system-originated entries without a user", func(t *testing.T) {
		txn, err := NewCredit(walletID, valueobject.NewMoneyUSDFromFloat(10), "Lab test", ref, now, nil)
		require.NoError(t, err)
		assert.Nil(t, txn.CreatedBy)
	})

	t.Run("fails with zero amount", func(t *testing.T) {
		_, err := NewCredit(walletID, valueobject.ZeroUSD(), "x", ref, now, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive")
	})

	t.Run("fails with negative amount", func(t *testing.T) {
		_, err := NewCredit(walletID, valueobject.NewMoneyUSDFromFloat(-5), "x", ref, now, nil)
		assert.Error(t, err)
	})

	t.Run("fails with missing reference", func(t *testing.T) {
		_, err := NewCredit(walletID, valueobject.NewMoneyUSDFromFloat(5), "x", Reference{}, now, nil)
		assert.Error(t, err)
	})

	t.Run("fails with empty wallet", func(t *testing.T) {
		_, err := NewCredit(uuid.Nil, valueobject.NewMoneyUSDFromFloat(5), "x", ref, now, nil)
		assert.Error(t, err)
	})
}

func TestNewReversal(t *testing.T) {
	walletID := uuid.New()
	ref := testReference()
	original, err := NewCredit(walletID, valueobject.NewMoneyUSDFromFloat(130), "Consultation", ref, time.Now().Add(-24*time.Hour), nil)
	require.NoError(t, err)

	t.Run("debits the original amount with the reversal time", func(t *testing.T) {
		reversedAt := time.Now()
		rev, err := NewReversal(original, reversedAt, nil)
		require.NoError(t, err)
		assert.Equal(t, TransactionTypeDebit, rev.Type)
		assert.True(t, rev.Amount.Equal(original.Amount))
		assert.Equal(t, original.Reference(), rev.Reference())
		assert.Equal(t, reversedAt, rev.TransactionDate)
		require.NotNil(t, rev.ReversalOfID)
		assert.Equal(t, original.ID, *rev.ReversalOfID)
		assert.True(t, rev.IsReversal())
	})

	t.Run("net ledger effect is zero", func(t *testing.T) {
		rev, err := NewReversal(original, time.Now(), nil)
		require.NoError(t, err)
		assert.True(t, original.Signed().Add(rev.Signed()).IsZero())
	})

	t.Run("cannot reverse a debit", func(t *testing.T) {
		rev, err := NewReversal(original, time.Now(), nil)
		require.NoError(t, err)
		_, err = NewReversal(rev, time.Now(), nil)
		assert.Error(t, err)
	})

	t.Run("fails without an original", func(t *testing.T) {
		_, err := NewReversal(nil, time.Now(), nil)
		assert.Error(t, err)
	})
}

func TestTransaction_Signed(t *testing.T) {
	ref := testReference()
	credit, err := NewCredit(uuid.New(), valueobject.NewMoneyUSDFromFloat(50), "x", ref, time.Now(), nil)
	require.NoError(t, err)
	assert.True(t, credit.Signed().Equal(decimal.NewFromInt(50)))

	debit, err := NewReversal(credit, time.Now(), nil)
	require.NoError(t, err)
	assert.True(t, debit.Signed().Equal(decimal.NewFromInt(-50)))
}
