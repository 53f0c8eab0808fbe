// Package calculator implements the expense-split and balance-ledger
// computation engine: per-scheme split calculation, itemized bill totals,
// and folding expenses plus settlements into net balances.
//
// Everything here is a pure computation over caller-supplied snapshots. The
// package does no I/O and holds no state, so every entry point is safe to
// call concurrently. All arithmetic runs on integer cents (internal/money);
// results always sum exactly to the input total after remainder
// distribution.
package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/anadi/splitledger/internal/money"
)

// Scheme selects the rule used to divide an expense total among
// participants.
type Scheme string

// Supported split schemes.
const (
	SchemeEqual      Scheme = "EQUAL"
	SchemeExact      Scheme = "EXACT"
	SchemePercentage Scheme = "PERCENTAGE"
	SchemeShares     Scheme = "SHARES"
	SchemeItemBased  Scheme = "ITEM_BASED"
)

// Participant is one party to a split. Value carries the scheme-specific
// input: an exact amount for EXACT, a percentage for PERCENTAGE, a share
// count for SHARES. It is nil for EQUAL.
type Participant struct {
	UserID string
	Value  *decimal.Decimal
}

// Result is one participant's computed share, in the expense's currency.
type Result struct {
	UserID string
	Amount decimal.Decimal
}

// Splitter computes per-participant amounts for one scheme. Adding a scheme
// means adding an implementation, not another branch on a raw tag.
type Splitter interface {
	Scheme() Scheme
	Split(total decimal.Decimal, participants []Participant) ([]Result, error)
}

var splitters = map[Scheme]Splitter{
	SchemeEqual:      EqualSplitter{},
	SchemeExact:      ExactSplitter{},
	SchemePercentage: PercentageSplitter{},
	SchemeShares:     SharesSplitter{},
	SchemeItemBased:  ItemBasedSplitter{},
}

// SplitterFor returns the Splitter for the given scheme, or
// ErrUnknownSplitType for an unrecognized tag.
func SplitterFor(scheme Scheme) (Splitter, error) {
	s, ok := splitters[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSplitType, scheme)
	}
	return s, nil
}

// CalculateSplit divides total among participants under the given scheme.
// The returned amounts always sum exactly to total; any rounding remainder
// lands on the first participant(s) in caller-supplied order. That tie-break
// is deliberate and deterministic: reordering participants moves the extra
// cent.
func CalculateSplit(total decimal.Decimal, scheme Scheme, participants []Participant) ([]Result, error) {
	s, err := SplitterFor(scheme)
	if err != nil {
		return nil, err
	}
	return s.Split(total, participants)
}

// EqualSplitter divides the total evenly, one extra cent at a time to the
// earliest participants when the total doesn't divide cleanly.
type EqualSplitter struct{}

func (EqualSplitter) Scheme() Scheme { return SchemeEqual }

func (EqualSplitter) Split(total decimal.Decimal, participants []Participant) ([]Result, error) {
	if len(participants) == 0 {
		return []Result{}, nil
	}

	totalCents := money.ToCents(total)
	count := int64(len(participants))

	perPerson := totalCents / count
	remainder := money.SubtractCents(totalCents, perPerson*count)

	extra := int64(1)
	if remainder < 0 {
		extra = -1
		remainder = -remainder
	}

	results := make([]Result, len(participants))
	for i, p := range participants {
		cents := perPerson
		if int64(i) < remainder {
			cents = money.AddCents(cents, extra)
		}
		results[i] = Result{UserID: p.UserID, Amount: money.FromCents(cents)}
	}
	return results, nil
}

// ExactSplitter uses each participant's supplied amount, tolerating up to
// one cent of mismatch against the total.
type ExactSplitter struct{}

func (ExactSplitter) Scheme() Scheme { return SchemeExact }

func (ExactSplitter) Split(total decimal.Decimal, participants []Participant) ([]Result, error) {
	valued := withValues(participants)

	totalCents := money.ToCents(total)
	var sumCents int64
	for _, p := range valued {
		sumCents = money.AddCents(sumCents, money.ToCents(*p.Value))
	}

	diff := money.SubtractCents(totalCents, sumCents)
	if abs(diff) > 1 {
		return nil, fmt.Errorf("%w: exact amounts sum to %s, but expense total is %s",
			ErrAmountMismatch, money.FromCents(sumCents).StringFixed(2), total.StringFixed(2))
	}

	results := make([]Result, len(valued))
	for i, p := range valued {
		cents := money.ToCents(*p.Value)
		// Fold the one-cent residual into the first amount so the output
		// sums exactly to the total.
		if i == 0 {
			cents = money.AddCents(cents, diff)
		}
		results[i] = Result{UserID: p.UserID, Amount: money.FromCents(cents)}
	}
	return results, nil
}

// PercentageSplitter distributes the total proportionally to supplied
// percentages, which must sum to 100 within 0.01.
type PercentageSplitter struct{}

func (PercentageSplitter) Scheme() Scheme { return SchemePercentage }

func (PercentageSplitter) Split(total decimal.Decimal, participants []Participant) ([]Result, error) {
	valued := withValues(participants)

	totalPercentage := decimal.Zero
	for _, p := range valued {
		totalPercentage = totalPercentage.Add(*p.Value)
	}
	hundred := decimal.NewFromInt(100)
	if totalPercentage.Sub(hundred).Abs().GreaterThan(decimal.RequireFromString("0.01")) {
		return nil, fmt.Errorf("%w: percentages sum to %s%%",
			ErrPercentageMismatch, totalPercentage.StringFixed(2))
	}

	totalCents := money.ToCents(total)
	cents := make([]int64, len(valued))
	for i, p := range valued {
		c, err := money.DivideCents(money.MultiplyCents(totalCents, *p.Value), hundred)
		if err != nil {
			return nil, err
		}
		cents[i] = c
	}

	return distributeRemainder(totalCents, cents, valued), nil
}

// SharesSplitter distributes the total proportionally to share counts.
type SharesSplitter struct{}

func (SharesSplitter) Scheme() Scheme { return SchemeShares }

func (SharesSplitter) Split(total decimal.Decimal, participants []Participant) ([]Result, error) {
	var valued []Participant
	for _, p := range withValues(participants) {
		if p.Value.IsPositive() {
			valued = append(valued, p)
		}
	}
	if len(valued) == 0 {
		return nil, ErrNoPositiveShares
	}

	totalShares := decimal.Zero
	for _, p := range valued {
		totalShares = totalShares.Add(*p.Value)
	}
	if !totalShares.IsPositive() {
		return nil, ErrNoPositiveShares
	}

	totalCents := money.ToCents(total)
	cents := make([]int64, len(valued))
	for i, p := range valued {
		c, err := money.DivideCents(money.MultiplyCents(totalCents, *p.Value), totalShares)
		if err != nil {
			return nil, err
		}
		cents[i] = c
	}

	return distributeRemainder(totalCents, cents, valued), nil
}

// ItemBasedSplitter rejects the generic entry point. Item-based expenses are
// computed from bill items and assignments via ComputeItemTotals, then fed
// back as exact amounts.
type ItemBasedSplitter struct{}

func (ItemBasedSplitter) Scheme() Scheme { return SchemeItemBased }

func (ItemBasedSplitter) Split(decimal.Decimal, []Participant) ([]Result, error) {
	return nil, fmt.Errorf("%w: item-based splits are computed from bill items and assignments", ErrUnsupportedScheme)
}

// withValues filters out participants that did not supply a scheme value.
func withValues(participants []Participant) []Participant {
	var valued []Participant
	for _, p := range participants {
		if p.Value != nil {
			valued = append(valued, p)
		}
	}
	return valued
}

// distributeRemainder adds whatever rounding left over to the first
// participant so the results sum exactly to totalCents.
func distributeRemainder(totalCents int64, cents []int64, participants []Participant) []Result {
	var sum int64
	for _, c := range cents {
		sum = money.AddCents(sum, c)
	}
	remainder := money.SubtractCents(totalCents, sum)
	if remainder != 0 && len(cents) > 0 {
		cents[0] = money.AddCents(cents[0], remainder)
	}

	results := make([]Result, len(participants))
	for i, p := range participants {
		results[i] = Result{UserID: p.UserID, Amount: money.FromCents(cents[i])}
	}
	return results
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
