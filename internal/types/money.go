// README: Money value object (integer cents) used by the ledger and the output views.
package types

import "math"

const DefaultCurrency = "USD"

// Money stores an amount in the currency's minor unit so ledger arithmetic stays exact.
type Money struct {
	Amount   int64
	Currency string
}

// FromDollars rounds a decimal amount to the nearest cent. Negative input is kept negative
// so callers can reject it.
func FromDollars(v float64) Money {
	return Money{Amount: int64(math.Round(v * 100)), Currency: DefaultCurrency}
}

// Cents builds a Money from an amount already in cents.
func Cents(n int64) Money {
	return Money{Amount: n, Currency: DefaultCurrency}
}

func (m Money) Dollars() float64 {
	return float64(m.Amount) / 100
}

func (m Money) Add(o Money) Money {
	return Money{Amount: m.Amount + o.Amount, Currency: m.currency()}
}

func (m Money) Sub(o Money) Money {
	return Money{Amount: m.Amount - o.Amount, Currency: m.currency()}
}

func (m Money) IsNegative() bool { return m.Amount < 0 }

func (m Money) currency() string {
	if m.Currency == "" {
		return DefaultCurrency
	}
	return m.Currency
}
