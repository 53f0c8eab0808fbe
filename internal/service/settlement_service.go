package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anadi/splitledger/internal/currency"
	"github.com/anadi/splitledger/internal/metrics"
	"github.com/anadi/splitledger/internal/models"
	"github.com/anadi/splitledger/internal/storage"
)

// SettlementService records and reverses settlements between users.
type SettlementService struct {
	store     storage.Store
	converter *currency.Converter
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(store storage.Store, converter *currency.Converter) *SettlementService {
	return &SettlementService{store: store, converter: converter}
}

// CreateSettlementInput carries everything needed to record a settlement.
type CreateSettlementInput struct {
	ContainerType models.ContainerType
	GroupID       string
	DirectID      string
	FromUserID    string
	ToUserID      string
	Amount        decimal.Decimal
	Currency      currency.Code
	CreatedBy     string
	Note          string
}

// CreateSettlement validates the input, normalizes the amount into both
// parties' default currencies, and persists the settlement in COMPLETED
// state.
func (s *SettlementService) CreateSettlement(ctx context.Context, input CreateSettlementInput) (*models.Settlement, error) {
	if input.FromUserID == input.ToUserID {
		return nil, fmt.Errorf("%w: cannot create settlement between the same user", ErrInvalidInput)
	}
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: settlement amount must be greater than 0", ErrInvalidInput)
	}
	if !s.converter.IsValid(input.Currency) {
		return nil, fmt.Errorf("%w: %s", currency.ErrInvalidCurrency, input.Currency)
	}
	if err := validateContainer(input.ContainerType, input.GroupID, input.DirectID); err != nil {
		return nil, err
	}

	fromCurrency := s.defaultCurrency(ctx, input.FromUserID)
	toCurrency := s.defaultCurrency(ctx, input.ToUserID)

	normalizedFrom, err := s.converter.Convert(input.Amount, input.Currency, fromCurrency)
	if err != nil {
		return nil, fmt.Errorf("normalize for payer: %w", err)
	}
	normalizedTo, err := s.converter.Convert(input.Amount, input.Currency, toCurrency)
	if err != nil {
		return nil, fmt.Errorf("normalize for receiver: %w", err)
	}
	metrics.ConversionsPerformed.Add(2)

	settlement := &models.Settlement{
		ContainerType:        input.ContainerType,
		GroupID:              input.GroupID,
		DirectID:             input.DirectID,
		FromUserID:           input.FromUserID,
		ToUserID:             input.ToUserID,
		Amount:               input.Amount,
		Currency:             input.Currency,
		NormalizedFromAmount: normalizedFrom.ConvertedAmount,
		NormalizedToAmount:   normalizedTo.ConvertedAmount,
		ConversionRateFrom:   normalizedFrom.Rate,
		ConversionRateTo:     normalizedTo.Rate,
		CreatedBy:            input.CreatedBy,
		Status:               models.SettlementCompleted,
		Note:                 input.Note,
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, fmt.Errorf("failed to create settlement: %w", err)
	}

	slog.Info("Settlement recorded",
		"settlement_id", settlement.ID,
		"from", settlement.FromUserID,
		"to", settlement.ToUserID,
		"amount", settlement.Amount,
		"currency", settlement.Currency,
	)
	return settlement, nil
}

// ReverseSettlement transitions a settlement to REVERSED. The transition
// happens exactly once: reversing an already-reversed settlement fails with
// models.ErrAlreadyReversed.
func (s *SettlementService) ReverseSettlement(ctx context.Context, settlementID, reversedBy string) (*models.Settlement, error) {
	settlement, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}

	if err := settlement.Reverse(reversedBy, time.Now().Unix()); err != nil {
		return nil, err
	}
	if err := s.store.UpdateSettlementStatus(ctx, settlement); err != nil {
		return nil, fmt.Errorf("failed to persist reversal: %w", err)
	}
	metrics.SettlementsReversed.Inc()

	slog.Info("Settlement reversed", "settlement_id", settlement.ID, "reversed_by", reversedBy)
	return settlement, nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SettlementService) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	return s.store.GetSettlement(ctx, settlementID)
}

func (s *SettlementService) defaultCurrency(ctx context.Context, userID string) currency.Code {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil || user.DefaultCurrency == "" {
		return currency.USD
	}
	return user.DefaultCurrency
}
