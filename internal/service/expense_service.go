// Package service wires the computation engine to storage: it validates
// inputs, computes and normalizes splits, and persists the resulting
// records.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anadi/splitledger/internal/calculator"
	"github.com/anadi/splitledger/internal/currency"
	"github.com/anadi/splitledger/internal/metrics"
	"github.com/anadi/splitledger/internal/models"
	"github.com/anadi/splitledger/internal/money"
	"github.com/anadi/splitledger/internal/storage"
)

// ErrInvalidInput flags request-level validation failures (missing scope
// IDs, bad payer sums, same-user settlements). Callers surface the message
// to the user.
var ErrInvalidInput = errors.New("invalid input")

// ExpenseService creates and edits expenses, running the split calculator
// and currency normalization before anything is persisted.
type ExpenseService struct {
	store     storage.Store
	converter *currency.Converter
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store storage.Store, converter *currency.Converter) *ExpenseService {
	return &ExpenseService{store: store, converter: converter}
}

// PayerInput is one payer on an incoming expense request.
type PayerInput struct {
	UserID string
	Amount decimal.Decimal
}

// CreateExpenseInput carries everything needed to record an expense.
type CreateExpenseInput struct {
	ContainerType models.ContainerType
	GroupID       string
	DirectID      string
	Title         string
	Description   string
	Amount        decimal.Decimal
	Currency      currency.Code
	SplitScheme   calculator.Scheme
	Participants  []calculator.Participant
	Payers        []PayerInput
	CreatedBy     string
}

// CreateExpense validates the input, computes splits, normalizes each
// split into the owing user's default currency, and persists the expense
// with its payer and split records.
func (s *ExpenseService) CreateExpense(ctx context.Context, input CreateExpenseInput) (*models.Expense, error) {
	if !s.converter.IsValid(input.Currency) {
		return nil, fmt.Errorf("%w: %s", currency.ErrInvalidCurrency, input.Currency)
	}
	if err := validateContainer(input.ContainerType, input.GroupID, input.DirectID); err != nil {
		return nil, err
	}
	if err := validatePayerSum(input.Payers, input.Amount); err != nil {
		return nil, err
	}

	results, err := calculator.CalculateSplit(input.Amount, input.SplitScheme, input.Participants)
	if err != nil {
		return nil, err
	}
	metrics.SplitsComputed.WithLabelValues(string(input.SplitScheme)).Inc()

	expense := &models.Expense{
		ContainerType:  input.ContainerType,
		GroupID:        input.GroupID,
		DirectID:       input.DirectID,
		Title:          input.Title,
		Description:    input.Description,
		Currency:       input.Currency,
		TotalAmount:    input.Amount,
		SplitScheme:    input.SplitScheme,
		ParticipantIDs: participantIDs(input.Participants),
		CreatedBy:      input.CreatedBy,
	}

	payers := make([]models.ExpensePayer, len(input.Payers))
	for i, p := range input.Payers {
		payers[i] = models.ExpensePayer{UserID: p.UserID, Amount: p.Amount}
	}

	splits, err := s.normalizeSplits(ctx, input.Currency, results)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateExpense(ctx, expense, payers, splits); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"container", expense.ContainerType,
		"scheme", expense.SplitScheme,
		"currency", expense.Currency,
		"participants", len(expense.ParticipantIDs),
	)
	return expense, nil
}

// UpdateExpenseInput carries a partial expense edit. Nil fields are left
// unchanged.
type UpdateExpenseInput struct {
	Title        *string
	Description  *string
	Amount       *decimal.Decimal
	Currency     *currency.Code
	SplitScheme  *calculator.Scheme
	Participants []calculator.Participant
	Payers       []PayerInput
}

// EditExpense applies a partial edit. If the amount, currency, scheme, or
// participant set changed, splits are recomputed and replaced; the expense
// is marked edited either way.
func (s *ExpenseService) EditExpense(ctx context.Context, expenseID string, input UpdateExpenseInput) (*models.Expense, error) {
	detail, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	expense := detail.Expense

	needsRecalculation := input.Amount != nil || input.Currency != nil ||
		input.SplitScheme != nil || input.Participants != nil

	if input.Title != nil {
		expense.Title = *input.Title
	}
	if input.Description != nil {
		expense.Description = *input.Description
	}
	if input.Amount != nil {
		expense.TotalAmount = *input.Amount
	}
	if input.Currency != nil {
		if !s.converter.IsValid(*input.Currency) {
			return nil, fmt.Errorf("%w: %s", currency.ErrInvalidCurrency, *input.Currency)
		}
		expense.Currency = *input.Currency
	}
	if input.SplitScheme != nil {
		expense.SplitScheme = *input.SplitScheme
	}

	participants := input.Participants
	if participants == nil {
		participants = equalParticipants(expense.ParticipantIDs)
	} else {
		expense.ParticipantIDs = participantIDs(participants)
	}

	payers := detail.Payers
	if input.Payers != nil {
		payers = make([]models.ExpensePayer, len(input.Payers))
		for i, p := range input.Payers {
			payers[i] = models.ExpensePayer{UserID: p.UserID, Amount: p.Amount}
		}
	}
	if err := validatePayerSumModels(payers, expense.TotalAmount); err != nil {
		return nil, err
	}

	splits := detail.Splits
	if needsRecalculation {
		results, err := calculator.CalculateSplit(expense.TotalAmount, expense.SplitScheme, participants)
		if err != nil {
			return nil, err
		}
		metrics.SplitsComputed.WithLabelValues(string(expense.SplitScheme)).Inc()

		splits, err = s.normalizeSplits(ctx, expense.Currency, results)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().Unix()
	expense.UpdatedAt = now
	expense.EditedFlag = true
	expense.EditedAt = now

	if err := s.store.UpdateExpense(ctx, &expense, payers, splits); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	slog.Info("Expense edited", "expense_id", expense.ID, "recomputed_splits", needsRecalculation)
	return &expense, nil
}

// GetExpense retrieves an expense with its payers and splits.
func (s *ExpenseService) GetExpense(ctx context.Context, expenseID string) (*storage.ExpenseDetail, error) {
	return s.store.GetExpense(ctx, expenseID)
}

// normalizeSplits converts each computed split into the owing user's
// default currency, carrying the rate and timestamp for auditability.
func (s *ExpenseService) normalizeSplits(ctx context.Context, from currency.Code, results []calculator.Result) ([]models.ExpenseSplit, error) {
	splits := make([]models.ExpenseSplit, len(results))
	for i, r := range results {
		userCurrency := s.userDefaultCurrency(ctx, r.UserID)
		conv, err := s.converter.Convert(r.Amount, from, userCurrency)
		if err != nil {
			return nil, fmt.Errorf("normalize split for %s: %w", r.UserID, err)
		}
		metrics.ConversionsPerformed.Inc()

		splits[i] = models.ExpenseSplit{
			UserID:                  r.UserID,
			AmountInExpenseCurrency: r.Amount,
			NormalizedAmount:        conv.ConvertedAmount,
			NormalizedCurrency:      userCurrency,
			ConversionRate:          conv.Rate,
			ConversionTimestamp:     conv.Timestamp.Unix(),
		}
	}
	return splits, nil
}

// userDefaultCurrency looks up a user's default currency, falling back to
// USD for unknown users so a missing profile never blocks an expense.
func (s *ExpenseService) userDefaultCurrency(ctx context.Context, userID string) currency.Code {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Failed to look up user currency", "user_id", userID, "error", err)
		}
		return currency.USD
	}
	if user.DefaultCurrency == "" {
		return currency.USD
	}
	return user.DefaultCurrency
}

func participantIDs(participants []calculator.Participant) []string {
	ids := make([]string, len(participants))
	for i, p := range participants {
		ids[i] = p.UserID
	}
	return ids
}

func equalParticipants(ids []string) []calculator.Participant {
	participants := make([]calculator.Participant, len(ids))
	for i, id := range ids {
		participants[i] = calculator.Participant{UserID: id}
	}
	return participants
}

func validateContainer(containerType models.ContainerType, groupID, directID string) error {
	switch containerType {
	case models.ContainerGroup:
		if groupID == "" {
			return fmt.Errorf("%w: groupId is required for group records", ErrInvalidInput)
		}
	case models.ContainerDirect:
		if directID == "" {
			return fmt.Errorf("%w: directId is required for direct records", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown container type %q", ErrInvalidInput, containerType)
	}
	return nil
}

// validatePayerSum checks that payer amounts sum to the expense total
// within one cent, the same tolerance the split calculator applies.
func validatePayerSum(payers []PayerInput, total decimal.Decimal) error {
	var sumCents int64
	for _, p := range payers {
		sumCents = money.AddCents(sumCents, money.ToCents(p.Amount))
	}
	diff := money.SubtractCents(money.ToCents(total), sumCents)
	if diff < -1 || diff > 1 {
		return fmt.Errorf("%w: payers sum to %s, but expense total is %s",
			calculator.ErrAmountMismatch, money.FromCents(sumCents).StringFixed(2), total.StringFixed(2))
	}
	return nil
}

func validatePayerSumModels(payers []models.ExpensePayer, total decimal.Decimal) error {
	inputs := make([]PayerInput, len(payers))
	for i, p := range payers {
		inputs[i] = PayerInput{UserID: p.UserID, Amount: p.Amount}
	}
	return validatePayerSum(inputs, total)
}
