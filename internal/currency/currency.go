// Package currency converts amounts between a fixed, closed set of
// currencies using a static rate table.
//
// The table maps each currency to its rate relative to a base currency and
// is injected into a Converter at construction, so tests and callers that
// need different rates just build a different Converter. Conversion routes
// through integer cents (internal/money) so that A→B→A reproduces the
// original amount within one cent.
package currency

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anadi/splitledger/internal/money"
)

// ErrInvalidCurrency is returned when a currency code is not in the table.
var ErrInvalidCurrency = errors.New("invalid currency")

// Code is an ISO-4217-style currency code.
type Code string

// Supported currency codes.
const (
	USD Code = "USD"
	INR Code = "INR"
	EUR Code = "EUR"
	GBP Code = "GBP"
	CAD Code = "CAD"
	AUD Code = "AUD"
)

// RateTable maps each supported currency to its rate relative to a base
// currency. The table is treated as immutable once handed to a Converter.
type RateTable map[Code]decimal.Decimal

// DefaultRates is the static table used in production, relative to USD.
// Rates are approximate; live rate fetching is out of scope.
func DefaultRates() RateTable {
	return RateTable{
		USD: decimal.RequireFromString("1.0"),
		INR: decimal.RequireFromString("83.0"),
		EUR: decimal.RequireFromString("0.92"),
		GBP: decimal.RequireFromString("0.79"),
		CAD: decimal.RequireFromString("1.35"),
		AUD: decimal.RequireFromString("1.52"),
	}
}

// Conversion is the result of converting an amount between two currencies.
// Rate and Timestamp are carried so consumers can audit how a normalized
// amount was produced.
type Conversion struct {
	From            Code
	To              Code
	Amount          decimal.Decimal
	ConvertedAmount decimal.Decimal
	Rate            decimal.Decimal
	Timestamp       time.Time
}

// Converter converts amounts using a fixed rate table.
type Converter struct {
	rates RateTable
	now   func() time.Time
}

// NewConverter builds a Converter over the given rate table.
func NewConverter(rates RateTable) *Converter {
	return &Converter{rates: rates, now: time.Now}
}

// IsValid reports whether code is in the converter's rate table.
func (c *Converter) IsValid(code Code) bool {
	_, ok := c.rates[code]
	return ok
}

// Rate returns the exchange rate from one currency to another. Same-currency
// pairs always have rate 1.
func (c *Converter) Rate(from, to Code) (decimal.Decimal, error) {
	rateFrom, ok := c.rates[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidCurrency, from)
	}
	rateTo, ok := c.rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidCurrency, to)
	}
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	return rateTo.Div(rateFrom), nil
}

// Convert converts amount from one currency to another. The amount is moved
// through the base currency in cents: divide by the source rate, multiply by
// the target rate, round at each step.
func (c *Converter) Convert(amount decimal.Decimal, from, to Code) (Conversion, error) {
	rate, err := c.Rate(from, to)
	if err != nil {
		return Conversion{}, err
	}

	if from == to {
		return Conversion{
			From:            from,
			To:              to,
			Amount:          amount,
			ConvertedAmount: amount,
			Rate:            rate,
			Timestamp:       c.now(),
		}, nil
	}

	amountCents := money.ToCents(amount)
	baseCents, err := money.DivideCents(amountCents, c.rates[from])
	if err != nil {
		return Conversion{}, err
	}
	convertedCents := money.MultiplyCents(baseCents, c.rates[to])

	return Conversion{
		From:            from,
		To:              to,
		Amount:          amount,
		ConvertedAmount: money.FromCents(convertedCents),
		Rate:            rate,
		Timestamp:       c.now(),
	}, nil
}
