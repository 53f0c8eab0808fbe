package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/anadi/splitledger/internal/calculator"
	"github.com/anadi/splitledger/internal/currency"
	"github.com/anadi/splitledger/internal/models"
	"github.com/anadi/splitledger/internal/storage"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSQLiteStore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "splitledger-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	t.Run("CreateUser generates ID and timestamps", func(t *testing.T) {
		user := &models.User{
			Name:            "Alice",
			Email:           "alice@example.com",
			DefaultCurrency: currency.USD,
		}

		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if user.ID == "" {
			t.Error("Expected user ID to be generated")
		}
		if user.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		retrieved, err := store.GetUser(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if retrieved.Email != "alice@example.com" || retrieved.DefaultCurrency != currency.USD {
			t.Errorf("retrieved user mismatch: %+v", retrieved)
		}
	})

	t.Run("GetUser missing fails with ErrNotFound", func(t *testing.T) {
		_, err := store.GetUser(ctx, "nope")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("CreateGroup and GetGroup round-trip members", func(t *testing.T) {
		group := &models.Group{
			Name:      "Roommates",
			MemberIDs: []string{"u1", "u2", "u3"},
		}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		retrieved, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(retrieved.MemberIDs) != 3 {
			t.Errorf("got %d members, want 3", len(retrieved.MemberIDs))
		}
	})

	t.Run("CreateExpense and GetExpense round-trip", func(t *testing.T) {
		expense := &models.Expense{
			ContainerType:  models.ContainerGroup,
			GroupID:        "g1",
			Title:          "Dinner",
			Currency:       currency.USD,
			TotalAmount:    dec("10.00"),
			SplitScheme:    calculator.SchemeEqual,
			ParticipantIDs: []string{"u1", "u2"},
			CreatedBy:      "u1",
		}
		payers := []models.ExpensePayer{
			{UserID: "u1", Amount: dec("10.00")},
		}
		splits := []models.ExpenseSplit{
			{
				UserID:                  "u1",
				AmountInExpenseCurrency: dec("5.00"),
				NormalizedAmount:        dec("5.00"),
				NormalizedCurrency:      currency.USD,
				ConversionRate:          dec("1"),
				ConversionTimestamp:     1700000000,
			},
			{
				UserID:                  "u2",
				AmountInExpenseCurrency: dec("5.00"),
				NormalizedAmount:        dec("415.00"),
				NormalizedCurrency:      currency.INR,
				ConversionRate:          dec("83"),
				ConversionTimestamp:     1700000000,
			},
		}

		if err := store.CreateExpense(ctx, expense, payers, splits); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == "" {
			t.Error("Expected expense ID to be generated")
		}

		detail, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !detail.Expense.TotalAmount.Equal(dec("10.00")) {
			t.Errorf("total = %s, want 10.00", detail.Expense.TotalAmount)
		}
		if len(detail.Expense.ParticipantIDs) != 2 || detail.Expense.ParticipantIDs[0] != "u1" {
			t.Errorf("participants = %v, want [u1 u2] in order", detail.Expense.ParticipantIDs)
		}
		if len(detail.Payers) != 1 || !detail.Payers[0].Amount.Equal(dec("10.00")) {
			t.Errorf("payers = %+v", detail.Payers)
		}
		if len(detail.Splits) != 2 {
			t.Fatalf("got %d splits, want 2", len(detail.Splits))
		}
		for _, split := range detail.Splits {
			if split.UserID == "u2" {
				if split.NormalizedCurrency != currency.INR || !split.NormalizedAmount.Equal(dec("415.00")) {
					t.Errorf("u2 split = %+v", split)
				}
			}
		}
	})

	t.Run("ListExpensesForGroup scopes by group", func(t *testing.T) {
		details, err := store.ListExpensesForGroup(ctx, "g1")
		if err != nil {
			t.Fatalf("ListExpensesForGroup failed: %v", err)
		}
		if len(details) != 1 {
			t.Errorf("got %d expenses for g1, want 1", len(details))
		}

		none, err := store.ListExpensesForGroup(ctx, "other")
		if err != nil {
			t.Fatalf("ListExpensesForGroup failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("got %d expenses for other group, want 0", len(none))
		}
	})

	t.Run("UpdateExpense replaces payers and splits", func(t *testing.T) {
		expense := &models.Expense{
			ContainerType:  models.ContainerDirect,
			DirectID:       "d1",
			Title:          "Taxi",
			Currency:       currency.USD,
			TotalAmount:    dec("20.00"),
			SplitScheme:    calculator.SchemeEqual,
			ParticipantIDs: []string{"u1", "u2"},
			CreatedBy:      "u1",
		}
		payers := []models.ExpensePayer{{UserID: "u1", Amount: dec("20.00")}}
		splits := []models.ExpenseSplit{
			{UserID: "u1", AmountInExpenseCurrency: dec("10.00"), NormalizedAmount: dec("10.00"), NormalizedCurrency: currency.USD, ConversionRate: dec("1")},
			{UserID: "u2", AmountInExpenseCurrency: dec("10.00"), NormalizedAmount: dec("10.00"), NormalizedCurrency: currency.USD, ConversionRate: dec("1")},
		}
		if err := store.CreateExpense(ctx, expense, payers, splits); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		expense.TotalAmount = dec("30.00")
		expense.EditedFlag = true
		expense.EditedAt = 1700000001
		expense.UpdatedAt = 1700000001
		newSplits := []models.ExpenseSplit{
			{UserID: "u1", AmountInExpenseCurrency: dec("15.00"), NormalizedAmount: dec("15.00"), NormalizedCurrency: currency.USD, ConversionRate: dec("1")},
			{UserID: "u2", AmountInExpenseCurrency: dec("15.00"), NormalizedAmount: dec("15.00"), NormalizedCurrency: currency.USD, ConversionRate: dec("1")},
		}
		newPayers := []models.ExpensePayer{{UserID: "u1", Amount: dec("30.00")}}
		if err := store.UpdateExpense(ctx, expense, newPayers, newSplits); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		detail, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !detail.Expense.TotalAmount.Equal(dec("30.00")) || !detail.Expense.EditedFlag {
			t.Errorf("expense not updated: %+v", detail.Expense)
		}
		if len(detail.Splits) != 2 || !detail.Splits[0].AmountInExpenseCurrency.Equal(dec("15.00")) {
			t.Errorf("splits not replaced: %+v", detail.Splits)
		}
	})

	t.Run("Settlement round-trip and status update", func(t *testing.T) {
		settlement := &models.Settlement{
			ContainerType:        models.ContainerGroup,
			GroupID:              "g1",
			FromUserID:           "u2",
			ToUserID:             "u1",
			Amount:               dec("5.00"),
			Currency:             currency.USD,
			NormalizedFromAmount: dec("5.00"),
			NormalizedToAmount:   dec("5.00"),
			ConversionRateFrom:   dec("1"),
			ConversionRateTo:     dec("1"),
			CreatedBy:            "u2",
			Note:                 "dinner debt",
		}
		if err := store.CreateSettlement(ctx, settlement); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}
		if settlement.Status != models.SettlementCompleted {
			t.Errorf("status = %s, want COMPLETED", settlement.Status)
		}

		if err := settlement.Reverse("u1", 1700000002); err != nil {
			t.Fatalf("Reverse failed: %v", err)
		}
		if err := store.UpdateSettlementStatus(ctx, settlement); err != nil {
			t.Fatalf("UpdateSettlementStatus failed: %v", err)
		}

		retrieved, err := store.GetSettlement(ctx, settlement.ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if retrieved.Status != models.SettlementReversed || retrieved.ReversedBy != "u1" {
			t.Errorf("reversal not persisted: %+v", retrieved)
		}
		if retrieved.Note != "dinner debt" {
			t.Errorf("note = %q, want dinner debt", retrieved.Note)
		}

		settlements, err := store.ListSettlementsForGroup(ctx, "g1")
		if err != nil {
			t.Fatalf("ListSettlementsForGroup failed: %v", err)
		}
		if len(settlements) != 1 {
			t.Errorf("got %d settlements, want 1", len(settlements))
		}
	})
}
