package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestToCents(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   int64
	}{
		{"whole dollars", "10.00", 1000},
		{"with cents", "3.33", 333},
		{"rounds half up", "0.005", 1},
		{"rounds half away from zero when negative", "-0.005", -1},
		{"sub-cent noise rounds down", "19.999999", 2000},
		{"zero", "0", 0},
		{"negative", "-4.50", -450},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			if got := ToCents(amount); got != tt.want {
				t.Errorf("ToCents(%s) = %d, want %d", tt.amount, got, tt.want)
			}
		})
	}
}

func TestFromCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1000, "10"},
		{333, "3.33"},
		{1, "0.01"},
		{-450, "-4.5"},
		{0, "0"},
	}

	for _, tt := range tests {
		got := FromCents(tt.cents)
		if got.String() != tt.want {
			t.Errorf("FromCents(%d) = %s, want %s", tt.cents, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"0.01", "19.99", "1234567.89", "-0.07"} {
		amount := decimal.RequireFromString(s)
		if got := FromCents(ToCents(amount)); !got.Equal(amount) {
			t.Errorf("FromCents(ToCents(%s)) = %s", s, got)
		}
	}
}

func TestMultiplyCents(t *testing.T) {
	// 1000 cents * 0.333 = 333 cents, rounded to nearest
	got := MultiplyCents(1000, decimal.RequireFromString("0.333"))
	if got != 333 {
		t.Errorf("MultiplyCents(1000, 0.333) = %d, want 333", got)
	}

	// rounding half away from zero
	got = MultiplyCents(5, decimal.RequireFromString("0.5"))
	if got != 3 {
		t.Errorf("MultiplyCents(5, 0.5) = %d, want 3", got)
	}
}

func TestDivideCents(t *testing.T) {
	got, err := DivideCents(1000, decimal.NewFromInt(3))
	if err != nil {
		t.Fatalf("DivideCents returned error: %v", err)
	}
	if got != 333 {
		t.Errorf("DivideCents(1000, 3) = %d, want 333", got)
	}

	got, err = DivideCents(100, decimal.RequireFromString("83.0"))
	if err != nil {
		t.Fatalf("DivideCents returned error: %v", err)
	}
	if got != 1 {
		t.Errorf("DivideCents(100, 83.0) = %d, want 1", got)
	}
}

func TestDivideCentsByZero(t *testing.T) {
	_, err := DivideCents(100, decimal.Zero)
	if !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("DivideCents(100, 0) error = %v, want ErrDivisionByZero", err)
	}
}

func TestAddSubtractCents(t *testing.T) {
	if got := AddCents(333, 1); got != 334 {
		t.Errorf("AddCents(333, 1) = %d, want 334", got)
	}
	if got := SubtractCents(1000, 999); got != 1 {
		t.Errorf("SubtractCents(1000, 999) = %d, want 1", got)
	}
}
