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
		m, err := NewMoney(decimal.NewFromInt(100), MXN)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
		assert.Equal(t, MXN, m.Currency())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("parses valid amount", func(t *testing.T) {
		m, err := NewMoneyFromString("1234.56", MXN)
		require.NoError(t, err)
		assert.Equal(t, "1234.56", m.StringFixed(2))
	})

	t.Run("rejects invalid amount", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", MXN)
		assert.Error(t, err)
	})
}

func TestMoney_Add(t *testing.T) {
	t.Run("adds same currency", func(t *testing.T) {
		a := NewMoneyMXNFromFloat(3000)
		b := NewMoneyMXNFromFloat(7000)
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(10000)))
	})

	t.Run("rejects currency mismatch", func(t *testing.T) {
		a := NewMoneyMXNFromFloat(100)
		b, _ := NewMoney(decimal.NewFromInt(100), USD)
		_, err := a.Add(b)
		assert.Error(t, err)
	})
}

func TestMoney_Subtract(t *testing.T) {
	a := NewMoneyMXNFromFloat(10000)
	b := NewMoneyMXNFromFloat(3000)
	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromInt(7000)))
}

func TestMoney_Comparisons(t *testing.T) {
	small := NewMoneyMXNFromFloat(100)
	big := NewMoneyMXNFromFloat(200)

	lt, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	gte, err := big.GreaterThanOrEqual(big)
	require.NoError(t, err)
	assert.True(t, gte)
}

func TestMoney_CalculatePercentage(t *testing.T) {
	// 30% of 2000 = 600, the standard deposit scenario
	total := NewMoneyMXNFromFloat(2000)
	deposit := total.CalculatePercentage(decimal.NewFromInt(30))
	assert.True(t, deposit.Amount().Equal(decimal.NewFromInt(600)))
}

func TestMoney_ZeroAndSigns(t *testing.T) {
	zero := ZeroMXN()
	assert.True(t, zero.IsZero())
	assert.False(t, zero.IsPositive())

	pos := NewMoneyMXNFromFloat(1)
	assert.True(t, pos.IsPositive())
	assert.True(t, pos.Negate().IsNegative())
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyMXNFromFloat(2500.50)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var parsed Money
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.True(t, m.Equals(parsed))
}

func TestMoney_JSONDefaultsCurrency(t *testing.T) {
	var parsed Money
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"150.00"}`), &parsed))
	assert.Equal(t, DefaultCurrency, parsed.Currency())
}

func TestMoney_Scan(t *testing.T) {
	t.Run("scans string value", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("99.99"))
		assert.Equal(t, "99.99", m.StringFixed(2))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("scans nil as zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan(42))
	})
}
