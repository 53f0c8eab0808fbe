package calculator

import "errors"

// Validation failures produced by the split and item-total calculators.
// None of these are system faults; callers surface them to the user.
var (
	// ErrAmountMismatch means exact split amounts don't sum to the expense
	// total within one cent.
	ErrAmountMismatch = errors.New("amounts do not sum to total")

	// ErrPercentageMismatch means percentages don't sum to 100 within 0.01.
	ErrPercentageMismatch = errors.New("percentages do not sum to 100")

	// ErrNoPositiveShares means a shares split has no participant with a
	// positive share count.
	ErrNoPositiveShares = errors.New("no participant has a positive share")

	// ErrItemAssignmentMismatch means a bill item's assignments don't sum to
	// its price within one cent.
	ErrItemAssignmentMismatch = errors.New("item assignments do not sum to item price")

	// ErrUnsupportedScheme means ITEM_BASED was requested from the generic
	// split entry point; item-based totals come from ComputeItemTotals.
	ErrUnsupportedScheme = errors.New("scheme not supported by the split calculator")

	// ErrUnknownSplitType means the scheme tag is not recognized.
	ErrUnknownSplitType = errors.New("unknown split type")
)
