package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/anadi/splitledger/internal/currency"
	"github.com/anadi/splitledger/internal/money"
)

// PayerRecord is one payer on an expense, in the expense's currency.
type PayerRecord struct {
	UserID string
	Amount decimal.Decimal
}

// SplitRecord is one user's owed share of an expense, already normalized
// into that user's default currency by the producer.
type SplitRecord struct {
	UserID             string
	NormalizedAmount   decimal.Decimal
	NormalizedCurrency currency.Code
}

// ExpenseRecord is the slice of an expense the aggregator needs: its
// currency plus resolved payers and normalized splits.
type ExpenseRecord struct {
	Currency currency.Code
	Payers   []PayerRecord
	Splits   []SplitRecord
}

// SettlementRecord is the slice of a settlement the aggregator needs.
// Amounts were normalized into each party's default currency when the
// settlement was recorded. Reversed settlements stay in the ledger but are
// excluded from every recomputation.
type SettlementRecord struct {
	FromUserID           string
	ToUserID             string
	NormalizedFromAmount decimal.Decimal
	NormalizedToAmount   decimal.Decimal
	Reversed             bool
}

// Balance is one user's net position for a scope, in that user's own
// default currency. Positive means the user is owed money, negative means
// they owe, zero means settled. Balances are derived values, recomputed
// from the full ledger on every request, never stored as ground truth.
type Balance struct {
	UserID    string
	NetAmount decimal.Decimal
	Currency  currency.Code
}

// CurrencyLookup resolves a user's default currency. Supplied by the
// caller; the engine has no user store of its own.
type CurrencyLookup func(userID string) currency.Code

// Aggregator folds expense and settlement records into net balances.
type Aggregator struct {
	converter    *currency.Converter
	userCurrency CurrencyLookup
}

// NewAggregator builds an Aggregator over the given converter and user
// default-currency lookup.
func NewAggregator(converter *currency.Converter, userCurrency CurrencyLookup) *Aggregator {
	return &Aggregator{converter: converter, userCurrency: userCurrency}
}

// userTotals tracks one user's four running cent totals, each in that
// user's own default currency.
type userTotals struct {
	paid                int64
	owed                int64
	settlementsPaid     int64
	settlementsReceived int64
	currency            currency.Code
}

// Balances folds the given expenses and settlements into one Balance per
// user that appears as a payer, a split participant, or a settlement party.
// The fold is commutative over cents, so record order doesn't matter. Payer
// amounts are normalized here; split and settlement amounts arrive already
// normalized.
func (a *Aggregator) Balances(expenses []ExpenseRecord, settlements []SettlementRecord) ([]Balance, error) {
	totals := make(map[string]*userTotals)

	entry := func(userID string, code currency.Code) *userTotals {
		t, ok := totals[userID]
		if !ok {
			t = &userTotals{currency: code}
			totals[userID] = t
		}
		return t
	}

	for _, exp := range expenses {
		for _, payer := range exp.Payers {
			code := a.userCurrency(payer.UserID)
			conv, err := a.converter.Convert(payer.Amount, exp.Currency, code)
			if err != nil {
				return nil, fmt.Errorf("normalize payer %s: %w", payer.UserID, err)
			}
			t := entry(payer.UserID, code)
			t.paid = money.AddCents(t.paid, money.ToCents(conv.ConvertedAmount))
		}

		for _, split := range exp.Splits {
			t := entry(split.UserID, split.NormalizedCurrency)
			t.owed = money.AddCents(t.owed, money.ToCents(split.NormalizedAmount))
		}
	}

	for _, s := range settlements {
		if s.Reversed {
			continue
		}

		from := entry(s.FromUserID, a.userCurrency(s.FromUserID))
		from.settlementsPaid = money.AddCents(from.settlementsPaid, money.ToCents(s.NormalizedFromAmount))

		to := entry(s.ToUserID, a.userCurrency(s.ToUserID))
		to.settlementsReceived = money.AddCents(to.settlementsReceived, money.ToCents(s.NormalizedToAmount))
	}

	balances := make([]Balance, 0, len(totals))
	for userID, t := range totals {
		net := t.paid - t.owed + t.settlementsReceived - t.settlementsPaid
		balances = append(balances, Balance{
			UserID:    userID,
			NetAmount: money.FromCents(net),
			Currency:  t.currency,
		})
	}

	// Map iteration order is random; sort so callers see stable output.
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].UserID < balances[j].UserID
	})
	return balances, nil
}
