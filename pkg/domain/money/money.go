// Package money provides the Money value object used for every balance and
// payment computation. All arithmetic is exact decimal arithmetic; binary
// floating point never touches a monetary value.
package money

import (
	"errors"
	"fmt"

	"github.com/bellybank/backend/pkg/currency"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnsupportedCurrency is returned for currency codes the bank does not operate in.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	// ErrCurrencyMismatch is returned when arithmetic mixes currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrInvalidAmount is returned when an operation requires a strictly positive amount.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// RateScale is the decimal scale used for interest rates and ratios.
const RateScale = 4

// Money represents a monetary value in a specific currency.
// Invariants:
//   - Amount is stored at the currency's scale (2 decimal places).
//   - Currency code must be one the bank supports.
//   - All arithmetic operations require matching currencies.
type Money struct {
	amount   decimal.Decimal
	currency currency.Code
}

// New creates a Money value, rounding the amount half-up to the currency
// scale. An empty code defaults to the bank's operating currency.
func New(amount decimal.Decimal, code currency.Code) (Money, error) {
	if code == "" {
		code = currency.DefaultCurrency
	}
	scale, ok := currency.Decimals(code)
	if !ok {
		return Money{}, ErrUnsupportedCurrency
	}
	return Money{amount: amount.Round(int32(scale)), currency: code}, nil
}

// NewFromString parses a decimal string into a Money value.
func NewFromString(s string, code currency.Code) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return New(d, code)
}

// Zero returns a zero amount in the given currency.
func Zero(code currency.Code) Money {
	m, _ := New(decimal.Zero, code)
	return m
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency code.
func (m Money) Currency() currency.Code { return m.currency }

// Add returns m + other. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub returns m - other. Currencies must match. The result may be negative;
// callers that forbid negative balances must check before applying.
func (m Money) Sub(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Mul returns m scaled by factor, rounded to the currency scale.
func (m Money) Mul(factor decimal.Decimal) Money {
	scale, _ := currency.Decimals(m.currency)
	return Money{amount: m.amount.Mul(factor).Round(int32(scale)), currency: m.currency}
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// LessThan reports m < other. Callers are expected to have matched currencies.
func (m Money) LessThan(other Money) bool { return m.amount.LessThan(other.amount) }

// Equal reports whether amount and currency both match.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// SameCurrency reports whether both values share a currency.
func (m Money) SameCurrency(other Money) bool { return m.currency == other.currency }

// String formats the value as "123.45 KZT".
func (m Money) String() string {
	scale, _ := currency.Decimals(m.currency)
	return m.amount.StringFixed(int32(scale)) + " " + string(m.currency)
}

// RoundRate rounds an interest rate or ratio to the rate scale.
func RoundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(RateScale)
}
