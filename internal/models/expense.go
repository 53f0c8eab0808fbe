package models

import (
	"github.com/shopspring/decimal"

	"github.com/anadi/splitledger/internal/calculator"
	"github.com/anadi/splitledger/internal/currency"
)

// ContainerType says whether a record belongs to a group or to a direct
// thread between two users.
type ContainerType string

// Container types.
const (
	ContainerGroup  ContainerType = "group"
	ContainerDirect ContainerType = "direct"
)

// Expense represents one shared expense.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// ContainerType says whether GroupID or DirectID scopes this expense.
	ContainerType ContainerType

	// GroupID is set when ContainerType is group.
	GroupID string

	// DirectID is set when ContainerType is direct.
	DirectID string

	// Title is the human-readable name for the expense.
	Title string

	// Description is an optional longer note.
	Description string

	// Currency is the currency the expense was incurred in.
	Currency currency.Code

	// TotalAmount is the full expense amount in Currency.
	TotalAmount decimal.Decimal

	// SplitScheme is the rule used to divide TotalAmount among participants.
	SplitScheme calculator.Scheme

	// ParticipantIDs lists the users splitting this expense, in the order
	// they were supplied. Order matters: remainder cents go to the earliest
	// participants.
	ParticipantIDs []string

	// CreatedBy is the user who recorded the expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last modification.
	UpdatedAt int64

	// EditedFlag is set once the expense has been edited after creation.
	EditedFlag bool

	// EditedAt is the Unix timestamp of the last edit, zero if never edited.
	EditedAt int64
}

// ExpensePayer records how much one user actually paid toward an expense,
// in the expense's currency. The payer amounts for one expense must sum to
// the expense total within one cent; services validate this before writing.
type ExpensePayer struct {
	ExpenseID string
	UserID    string
	Amount    decimal.Decimal
}

// ExpenseSplit is one user's owed share of an expense. The amount is stored
// both in the expense's currency and normalized into the owing user's
// default currency, together with the rate and timestamp used, so balances
// can be folded without re-deriving conversions.
type ExpenseSplit struct {
	ExpenseID               string
	UserID                  string
	AmountInExpenseCurrency decimal.Decimal
	NormalizedAmount        decimal.Decimal
	NormalizedCurrency      currency.Code
	ConversionRate          decimal.Decimal
	ConversionTimestamp     int64
}
