package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.RequireFromString("5.99"), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("5.99")))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(1), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestParseMoney(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := ParseMoney("12.50", USD)
		require.NoError(t, err)
		assert.Equal(t, "12.50", m.Display())
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := ParseMoney("twelve", USD)
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	line := MustUSD("5.99").MultiplyByInt(2)
	assert.Equal(t, "11.98", line.Display())

	sum := line.MustAdd(MustUSD("8.75"))
	assert.True(t, sum.Amount().Equal(decimal.RequireFromString("20.73")))

	tax := sum.Multiply(decimal.RequireFromString("0.05"))
	assert.True(t, tax.Amount().Equal(decimal.RequireFromString("1.0365")))
	assert.Equal(t, "1.04", tax.Display())
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	_, err := MustUSD("1").Add(Zero(EUR))
	assert.Error(t, err)
	assert.ErrorIs(t, err, errCurrencyMismatch)

	assert.Panics(t, func() { MustUSD("1").MustAdd(Zero(EUR)) })
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "5.99 USD", MustUSD("5.99").String())
	assert.Equal(t, "0.00 USD", ZeroUSD().String())
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(MustUSD("26.7065"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"26.7065","currency":"USD"}`, string(data))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"9.99"}`), &m))
	assert.Equal(t, USD, m.Currency())
	assert.True(t, m.Equals(MustUSD("9.99")))
}

func TestMoney_Scan(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"string", "7.20", "7.20"},
		{"bytes", []byte("8.75"), "8.75"},
		{"nil", nil, "0.00"},
		{"int", int64(3), "3.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Money
			require.NoError(t, m.Scan(tt.input))
			assert.Equal(t, tt.want, m.Display())
			assert.Equal(t, DefaultCurrency, m.Currency())
		})
	}

	var m Money
	assert.Error(t, m.Scan(true))
}
