package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/anadi/splitledger/internal/currency"
)

func TestSettlementReverse(t *testing.T) {
	s := Settlement{
		ID:         "s1",
		FromUserID: "u2",
		ToUserID:   "u1",
		Amount:     decimal.RequireFromString("5.00"),
		Currency:   currency.USD,
		Status:     SettlementCompleted,
	}

	if err := s.Reverse("u1", 1700000000); err != nil {
		t.Fatalf("Reverse returned error: %v", err)
	}
	if s.Status != SettlementReversed {
		t.Errorf("status = %s, want REVERSED", s.Status)
	}
	if s.ReversedBy != "u1" || s.ReversedAt != 1700000000 {
		t.Errorf("reversal audit fields not set: by=%s at=%d", s.ReversedBy, s.ReversedAt)
	}
}

func TestSettlementReverseTwiceFails(t *testing.T) {
	s := Settlement{Status: SettlementCompleted}

	if err := s.Reverse("u1", 1700000000); err != nil {
		t.Fatalf("first Reverse returned error: %v", err)
	}
	err := s.Reverse("u1", 1700000001)
	if !errors.Is(err, ErrAlreadyReversed) {
		t.Fatalf("second Reverse error = %v, want ErrAlreadyReversed", err)
	}
	if s.ReversedAt != 1700000000 {
		t.Errorf("failed reversal mutated ReversedAt: %d", s.ReversedAt)
	}
}
