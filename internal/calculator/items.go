package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/anadi/splitledger/internal/money"
)

// BillItem is one line on an itemized bill. OrderIndex only fixes display
// and iteration order; it carries no financial meaning beyond tie-breaking.
type BillItem struct {
	ID         string
	Name       string
	Price      decimal.Decimal
	OrderIndex int
}

// ItemAssignment gives one user a share of one item's price.
type ItemAssignment struct {
	UserID string
	Share  decimal.Decimal
}

// ComputeItemTotals accumulates each user's assigned shares across all items
// and returns the per-user totals. Items with no assignments contribute
// nothing. An item whose assignment shares differ from its price by more
// than one cent fails with ErrItemAssignmentMismatch.
func ComputeItemTotals(items []BillItem, assignmentsByItem map[string][]ItemAssignment) (map[string]decimal.Decimal, error) {
	totalsCents := make(map[string]int64)

	for _, item := range sortedByOrder(items) {
		assignments := assignmentsByItem[item.ID]
		if len(assignments) == 0 {
			continue
		}

		priceCents := money.ToCents(item.Price)
		var assignedCents int64
		for _, a := range assignments {
			shareCents := money.ToCents(a.Share)
			assignedCents = money.AddCents(assignedCents, shareCents)
			totalsCents[a.UserID] = money.AddCents(totalsCents[a.UserID], shareCents)
		}

		if abs(money.SubtractCents(priceCents, assignedCents)) > 1 {
			return nil, fmt.Errorf("%w: item %q assignments sum to %s, but item price is %s",
				ErrItemAssignmentMismatch, item.Name,
				money.FromCents(assignedCents).StringFixed(2), item.Price.StringFixed(2))
		}
	}

	totals := make(map[string]decimal.Decimal, len(totalsCents))
	for userID, cents := range totalsCents {
		totals[userID] = money.FromCents(cents)
	}
	return totals, nil
}

// ValidateItemAssignments runs the same per-item check as ComputeItemTotals
// without failing, collecting one message per mismatched item. Used for
// non-fatal pre-submit validation.
func ValidateItemAssignments(items []BillItem, assignmentsByItem map[string][]ItemAssignment) (bool, []string) {
	var errs []string

	for _, item := range sortedByOrder(items) {
		assignments := assignmentsByItem[item.ID]
		priceCents := money.ToCents(item.Price)

		var assignedCents int64
		for _, a := range assignments {
			assignedCents = money.AddCents(assignedCents, money.ToCents(a.Share))
		}

		if abs(money.SubtractCents(priceCents, assignedCents)) > 1 {
			errs = append(errs, fmt.Sprintf("item %q: assignments sum to %s, but item price is %s",
				item.Name, money.FromCents(assignedCents).StringFixed(2), item.Price.StringFixed(2)))
		}
	}

	return len(errs) == 0, errs
}

func sortedByOrder(items []BillItem) []BillItem {
	sorted := make([]BillItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderIndex < sorted[j].OrderIndex
	})
	return sorted
}
