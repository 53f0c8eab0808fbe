package models

import "github.com/anadi/splitledger/internal/currency"

// User represents a registered user account. The balance aggregator uses
// DefaultCurrency to decide which currency to normalize the user's totals
// into.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the user's email address (unique).
	Email string

	// DefaultCurrency is the currency the user sees balances in.
	DefaultCurrency currency.Code

	// CreatedAt is the Unix timestamp when the user account was created.
	CreatedAt int64
}
