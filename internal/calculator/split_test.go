package calculator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func sumResults(results []Result) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range results {
		sum = sum.Add(r.Amount)
	}
	return sum
}

func TestEqualSplit(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		participants []string
		want         []string
	}{
		{
			name:         "divides evenly",
			total:        "30.00",
			participants: []string{"u1", "u2", "u3"},
			want:         []string{"10", "10", "10"},
		},
		{
			name:         "remainder to first participants",
			total:        "10.00",
			participants: []string{"u1", "u2", "u3"},
			want:         []string{"3.34", "3.33", "3.33"},
		},
		{
			name:         "two remainder cents to first two of three",
			total:        "10.01",
			participants: []string{"u1", "u2", "u3"},
			want:         []string{"3.34", "3.34", "3.33"},
		},
		{
			name:         "two remainder cents to first two",
			total:        "10.02",
			participants: []string{"u1", "u2", "u3", "u4"},
			want:         []string{"2.51", "2.51", "2.50", "2.50"},
		},
		{
			name:         "single participant",
			total:        "7.77",
			participants: []string{"u1"},
			want:         []string{"7.77"},
		},
		{
			name:         "zero total",
			total:        "0",
			participants: []string{"u1", "u2"},
			want:         []string{"0", "0"},
		},
		{
			name:         "negative total",
			total:        "-10.00",
			participants: []string{"u1", "u2", "u3"},
			want:         []string{"-3.34", "-3.33", "-3.33"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			participants := make([]Participant, len(tt.participants))
			for i, id := range tt.participants {
				participants[i] = Participant{UserID: id}
			}

			results, err := CalculateSplit(dec(tt.total), SchemeEqual, participants)
			if err != nil {
				t.Fatalf("CalculateSplit returned error: %v", err)
			}
			if len(results) != len(tt.want) {
				t.Fatalf("got %d results, want %d", len(results), len(tt.want))
			}
			for i, want := range tt.want {
				if results[i].UserID != tt.participants[i] {
					t.Errorf("result %d user = %s, want %s", i, results[i].UserID, tt.participants[i])
				}
				if !results[i].Amount.Equal(dec(want)) {
					t.Errorf("result %d amount = %s, want %s", i, results[i].Amount, want)
				}
			}
			if !sumResults(results).Equal(dec(tt.total)) {
				t.Errorf("results sum to %s, want %s", sumResults(results), tt.total)
			}
		})
	}
}

func TestEqualSplitNoParticipants(t *testing.T) {
	results, err := CalculateSplit(dec("10.00"), SchemeEqual, nil)
	if err != nil {
		t.Fatalf("CalculateSplit returned error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestExactSplit(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		participants []Participant
		want         []string
		wantErr      error
	}{
		{
			name:  "amounts sum exactly",
			total: "10.00",
			participants: []Participant{
				{UserID: "u1", Value: decp("6.00")},
				{UserID: "u2", Value: decp("4.00")},
			},
			want: []string{"6", "4"},
		},
		{
			name:  "one cent under folds into first",
			total: "10.00",
			participants: []Participant{
				{UserID: "u1", Value: decp("5.99")},
				{UserID: "u2", Value: decp("4.00")},
			},
			want: []string{"6", "4"},
		},
		{
			name:  "one cent over folds into first",
			total: "10.00",
			participants: []Participant{
				{UserID: "u1", Value: decp("6.01")},
				{UserID: "u2", Value: decp("4.00")},
			},
			want: []string{"6", "4"},
		},
		{
			name:  "two cents off fails",
			total: "10.00",
			participants: []Participant{
				{UserID: "u1", Value: decp("6.02")},
				{UserID: "u2", Value: decp("4.00")},
			},
			wantErr: ErrAmountMismatch,
		},
		{
			name:  "participant without value ignored",
			total: "10.00",
			participants: []Participant{
				{UserID: "u1", Value: decp("10.00")},
				{UserID: "u2"},
			},
			want: []string{"10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := CalculateSplit(dec(tt.total), SchemeExact, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CalculateSplit returned error: %v", err)
			}
			for i, want := range tt.want {
				if !results[i].Amount.Equal(dec(want)) {
					t.Errorf("result %d amount = %s, want %s", i, results[i].Amount, want)
				}
			}
			if !sumResults(results).Equal(dec(tt.total)) {
				t.Errorf("results sum to %s, want %s", sumResults(results), tt.total)
			}
		})
	}
}

func TestPercentageSplit(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		participants []Participant
		want         []string
		wantErr      error
	}{
		{
			name:  "clean percentages",
			total: "100.00",
			participants: []Participant{
				{UserID: "u1", Value: decp("60")},
				{UserID: "u2", Value: decp("40")},
			},
			want: []string{"60", "40"},
		},
		{
			name:  "rounding remainder to first",
			total: "10.00",
			participants: []Participant{
				{UserID: "u1", Value: decp("33.33")},
				{UserID: "u2", Value: decp("33.33")},
				{UserID: "u3", Value: decp("33.34")},
			},
			want: []string{"3.34", "3.33", "3.33"},
		},
		{
			name:  "thirds of an odd total",
			total: "0.10",
			participants: []Participant{
				{UserID: "u1", Value: decp("33.34")},
				{UserID: "u2", Value: decp("33.33")},
				{UserID: "u3", Value: decp("33.33")},
			},
			want: []string{"0.04", "0.03", "0.03"},
		},
		{
			name:  "sum off by more than tolerance fails",
			total: "10.00",
			participants: []Participant{
				{UserID: "u1", Value: decp("60")},
				{UserID: "u2", Value: decp("39.98")},
			},
			wantErr: ErrPercentageMismatch,
		},
		{
			name:  "within 0.01 tolerance passes",
			total: "10.00",
			participants: []Participant{
				{UserID: "u1", Value: decp("60")},
				{UserID: "u2", Value: decp("39.99")},
			},
			want: []string{"6", "4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := CalculateSplit(dec(tt.total), SchemePercentage, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CalculateSplit returned error: %v", err)
			}
			for i, want := range tt.want {
				if !results[i].Amount.Equal(dec(want)) {
					t.Errorf("result %d amount = %s, want %s", i, results[i].Amount, want)
				}
			}
			if !sumResults(results).Equal(dec(tt.total)) {
				t.Errorf("results sum to %s, want %s", sumResults(results), tt.total)
			}
		})
	}
}

func TestSharesSplit(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		participants []Participant
		want         []string
		wantErr      error
	}{
		{
			name:  "proportional to shares",
			total: "30.00",
			participants: []Participant{
				{UserID: "u1", Value: decp("2")},
				{UserID: "u2", Value: decp("1")},
			},
			want: []string{"20", "10"},
		},
		{
			name:  "remainder to first",
			total: "10.00",
			participants: []Participant{
				{UserID: "u1", Value: decp("1")},
				{UserID: "u2", Value: decp("1")},
				{UserID: "u3", Value: decp("1")},
			},
			want: []string{"3.34", "3.33", "3.33"},
		},
		{
			name:  "zero-share participant dropped",
			total: "10.00",
			participants: []Participant{
				{UserID: "u1", Value: decp("0")},
				{UserID: "u2", Value: decp("1")},
			},
			want: []string{"10"},
		},
		{
			name:  "no positive shares fails",
			total: "10.00",
			participants: []Participant{
				{UserID: "u1", Value: decp("0")},
				{UserID: "u2", Value: decp("0")},
			},
			wantErr: ErrNoPositiveShares,
		},
		{
			name:         "no values at all fails",
			total:        "10.00",
			participants: []Participant{{UserID: "u1"}, {UserID: "u2"}},
			wantErr:      ErrNoPositiveShares,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := CalculateSplit(dec(tt.total), SchemeShares, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CalculateSplit returned error: %v", err)
			}
			for i, want := range tt.want {
				if !results[i].Amount.Equal(dec(want)) {
					t.Errorf("result %d amount = %s, want %s", i, results[i].Amount, want)
				}
			}
			if !sumResults(results).Equal(dec(tt.total)) {
				t.Errorf("results sum to %s, want %s", sumResults(results), tt.total)
			}
		})
	}
}

func TestItemBasedSchemeRejected(t *testing.T) {
	_, err := CalculateSplit(dec("10.00"), SchemeItemBased, []Participant{{UserID: "u1"}})
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("error = %v, want ErrUnsupportedScheme", err)
	}
}

func TestUnknownScheme(t *testing.T) {
	_, err := CalculateSplit(dec("10.00"), Scheme("RANDOM"), []Participant{{UserID: "u1"}})
	if !errors.Is(err, ErrUnknownSplitType) {
		t.Errorf("error = %v, want ErrUnknownSplitType", err)
	}

	if _, err := SplitterFor("EQUAL"); err != nil {
		t.Errorf("SplitterFor(EQUAL) returned error: %v", err)
	}
}
