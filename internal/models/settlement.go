package models

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/anadi/splitledger/internal/currency"
)

// ErrAlreadyReversed is returned when reversing a settlement that has
// already been reversed.
var ErrAlreadyReversed = errors.New("settlement is already reversed")

// SettlementStatus is the lifecycle state of a settlement.
type SettlementStatus string

// Settlement statuses. A settlement is created COMPLETED and may move to
// REVERSED exactly once; there are no other transitions.
const (
	SettlementCompleted SettlementStatus = "COMPLETED"
	SettlementReversed  SettlementStatus = "REVERSED"
)

// Settlement represents a payment between two users recorded to reduce an
// outstanding balance. Reversed settlements are excluded from balance
// aggregation but never deleted.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// ContainerType says whether GroupID or DirectID scopes this settlement.
	ContainerType ContainerType

	// GroupID is set when ContainerType is group.
	GroupID string

	// DirectID is set when ContainerType is direct.
	DirectID string

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string

	// Amount is the payment amount in Currency.
	Amount decimal.Decimal

	// Currency is the currency the payment was made in.
	Currency currency.Code

	// NormalizedFromAmount is Amount converted into the from-user's default
	// currency at creation time.
	NormalizedFromAmount decimal.Decimal

	// NormalizedToAmount is Amount converted into the to-user's default
	// currency at creation time.
	NormalizedToAmount decimal.Decimal

	// ConversionRateFrom and ConversionRateTo are the rates used for the
	// normalized amounts, kept for auditability.
	ConversionRateFrom decimal.Decimal
	ConversionRateTo   decimal.Decimal

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// Status is COMPLETED or REVERSED.
	Status SettlementStatus

	// ReversedAt is the Unix timestamp of the reversal, zero if none.
	ReversedAt int64

	// ReversedBy is the user who reversed the settlement, empty if none.
	ReversedBy string

	// Note is an optional description for the settlement.
	Note string
}

// Reverse transitions the settlement from COMPLETED to REVERSED. The
// transition is one-way: reversing an already-reversed settlement fails
// with ErrAlreadyReversed.
func (s *Settlement) Reverse(reversedBy string, reversedAt int64) error {
	if s.Status == SettlementReversed {
		return ErrAlreadyReversed
	}
	s.Status = SettlementReversed
	s.ReversedAt = reversedAt
	s.ReversedBy = reversedBy
	return nil
}
