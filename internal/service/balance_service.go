package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anadi/splitledger/internal/calculator"
	"github.com/anadi/splitledger/internal/currency"
	"github.com/anadi/splitledger/internal/metrics"
	"github.com/anadi/splitledger/internal/models"
	"github.com/anadi/splitledger/internal/storage"
)

// BalanceService recomputes net balances for a scope from the full set of
// its expenses and settlements. Nothing is cached: every request re-folds
// the ledger, so there is no stale state to invalidate.
type BalanceService struct {
	store     storage.Store
	converter *currency.Converter
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(store storage.Store, converter *currency.Converter) *BalanceService {
	return &BalanceService{store: store, converter: converter}
}

// GroupBalances computes one balance per user involved in the group's
// ledger.
func (s *BalanceService) GroupBalances(ctx context.Context, groupID string) ([]calculator.Balance, error) {
	expenses, err := s.store.ListExpensesForGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group expenses: %w", err)
	}
	settlements, err := s.store.ListSettlementsForGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group settlements: %w", err)
	}
	metrics.BalanceRecomputations.WithLabelValues(string(models.ContainerGroup)).Inc()
	return s.aggregate(ctx, expenses, settlements)
}

// DirectBalances computes balances for a direct thread between two users.
func (s *BalanceService) DirectBalances(ctx context.Context, directID string) ([]calculator.Balance, error) {
	expenses, err := s.store.ListExpensesForDirect(ctx, directID)
	if err != nil {
		return nil, fmt.Errorf("failed to load direct expenses: %w", err)
	}
	settlements, err := s.store.ListSettlementsForDirect(ctx, directID)
	if err != nil {
		return nil, fmt.Errorf("failed to load direct settlements: %w", err)
	}
	metrics.BalanceRecomputations.WithLabelValues(string(models.ContainerDirect)).Inc()
	return s.aggregate(ctx, expenses, settlements)
}

func (s *BalanceService) aggregate(ctx context.Context, details []storage.ExpenseDetail, settlements []models.Settlement) ([]calculator.Balance, error) {
	lookup := func(userID string) currency.Code {
		user, err := s.store.GetUser(ctx, userID)
		if err != nil || user.DefaultCurrency == "" {
			return currency.USD
		}
		return user.DefaultCurrency
	}
	agg := calculator.NewAggregator(s.converter, lookup)

	expenses := make([]calculator.ExpenseRecord, len(details))
	for i, d := range details {
		record := calculator.ExpenseRecord{Currency: d.Expense.Currency}
		for _, p := range d.Payers {
			record.Payers = append(record.Payers, calculator.PayerRecord{UserID: p.UserID, Amount: p.Amount})
		}
		for _, sp := range d.Splits {
			record.Splits = append(record.Splits, calculator.SplitRecord{
				UserID:             sp.UserID,
				NormalizedAmount:   sp.NormalizedAmount,
				NormalizedCurrency: sp.NormalizedCurrency,
			})
		}
		expenses[i] = record
	}

	records := make([]calculator.SettlementRecord, len(settlements))
	for i, st := range settlements {
		records[i] = calculator.SettlementRecord{
			FromUserID:           st.FromUserID,
			ToUserID:             st.ToUserID,
			NormalizedFromAmount: st.NormalizedFromAmount,
			NormalizedToAmount:   st.NormalizedToAmount,
			Reversed:             st.Status == models.SettlementReversed,
		}
	}

	balances, err := agg.Balances(expenses, records)
	if err != nil {
		return nil, err
	}
	slog.Debug("Balances recomputed", "expenses", len(expenses), "settlements", len(records), "users", len(balances))
	return balances, nil
}
