package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), USD)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
		assert.Equal(t, USD, m.Currency())
	})

	t.Run("fails with empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		require.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyUSDFromFloat(100.50)
	b := NewMoneyUSDFromFloat(50.25)

	t.Run("adds same-currency amounts", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, "150.75 USD", sum.String())
	})

	t.Run("subtracts same-currency amounts", func(t *testing.T) {
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.Equal(t, "50.25 USD", diff.String())
	})

	t.Run("rejects mixed currencies", func(t *testing.T) {
		eur := Zero(EUR)
		_, err := a.Add(eur)
		assert.Error(t, err)
		_, err = a.Subtract(eur)
		assert.Error(t, err)
	})

	t.Run("negation flips the sign", func(t *testing.T) {
		assert.True(t, a.Negate().IsNegative())
		assert.True(t, a.Negate().Negate().Equals(a))
	})
}

func TestMoney_NonNegative(t *testing.T) {
	t.Run("positive amount is unchanged", func(t *testing.T) {
		m := NewMoneyUSDFromFloat(80)
		assert.True(t, m.NonNegative().Equals(m))
	})

	t.Run("zero amount is unchanged", func(t *testing.T) {
		assert.True(t, ZeroUSD().NonNegative().IsZero())
	})

	t.Run("negative amount clamps to zero", func(t *testing.T) {
		fee := NewMoneyUSDFromFloat(100)
		discount := NewMoneyUSDFromFloat(120)
		net := fee.MustSubtract(discount).NonNegative()
		assert.True(t, net.IsZero())
		assert.Equal(t, USD, net.Currency())
	})
}

func TestMoney_Comparisons(t *testing.T) {
	small := NewMoneyUSDFromFloat(10)
	big := NewMoneyUSDFromFloat(20)

	gt, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	lt, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, lt)

	_, err = small.GreaterThan(Zero(GBP))
	assert.Error(t, err)
}

func TestMoney_JSON(t *testing.T) {
	m := NewMoneyUSDFromFloat(42.50)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"42.5","currency":"USD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equals(m))
}

func TestMoney_Scan(t *testing.T) {
	t.Run("scans string amount", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("123.45"))
		assert.Equal(t, DefaultCurrency, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(123.45)))
	})

	t.Run("nil scans to zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan(3.14))
	})
}
