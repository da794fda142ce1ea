// Package valueobject holds immutable values shared by the storefront
// domains.
package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// DefaultCurrency is the currency catalog prices are quoted in
const DefaultCurrency = USD

// DisplayPlaces is how many decimals prices and totals show
const DisplayPlaces int32 = 2

var errCurrencyMismatch = errors.New("currency mismatch")

// Money is an exact amount in one currency. Amounts keep full precision
// through arithmetic and are rounded only by Display, so a 5% tax on 20.73
// stays 1.0365 until it is shown as 1.04.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// ParseMoney reads a decimal string such as "5.99"
func ParseMoney(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return NewMoney(d, currency)
}

// MustUSD parses a price literal and panics if it is malformed
func MustUSD(amount string) Money {
	m, err := ParseMoney(amount, USD)
	if err != nil {
		panic(err)
	}
	return m
}

func NewMoneyUSD(amount decimal.Decimal) Money { return Money{amount: amount, currency: USD} }

func Zero(currency Currency) Money { return Money{amount: decimal.Zero, currency: currency} }

func ZeroUSD() Money { return Zero(USD) }

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }

// Add sums two amounts of the same currency
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s + %s", errCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// MustAdd is Add for amounts known to share a currency, such as cart lines
func (m Money) MustAdd(other Money) Money {
	sum, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return sum
}

// Multiply scales the amount, e.g. by a tax rate
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// MultiplyByInt scales a unit price by a quantity
func (m Money) MultiplyByInt(n int64) Money {
	return m.Multiply(decimal.NewFromInt(n))
}

func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Display renders the amount half-up to two decimals, e.g. "26.71"
func (m Money) Display() string { return m.amount.StringFixed(DisplayPlaces) }

func (m Money) String() string { return m.Display() + " " + string(m.currency) }

type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount.String(), Currency: m.currency})
}

// UnmarshalJSON accepts a missing currency as DefaultCurrency
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Currency == "" {
		raw.Currency = DefaultCurrency
	}
	parsed, err := ParseMoney(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value stores the amount only; the currency lives in its own column
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan reads a numeric column. A NULL reads as zero.
func (m *Money) Scan(value any) error {
	var amount decimal.Decimal
	switch v := value.(type) {
	case nil:
		amount = decimal.Zero
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("scan money: %w", err)
		}
		amount = d
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("scan money: %w", err)
		}
		amount = d
	case int64:
		amount = decimal.NewFromInt(v)
	case float64:
		amount = decimal.NewFromFloat(v)
	default:
		return fmt.Errorf("scan money: unsupported type %T", value)
	}
	m.amount = amount
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}
