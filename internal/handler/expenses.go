package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/anadi/splitledger/internal/calculator"
	"github.com/anadi/splitledger/internal/currency"
	"github.com/anadi/splitledger/internal/models"
	"github.com/anadi/splitledger/internal/service"
	"github.com/anadi/splitledger/internal/storage"
)

type payerPayload struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
}

type createExpenseRequest struct {
	ContainerType models.ContainerType `json:"containerType"`
	GroupID       string               `json:"groupId,omitempty"`
	DirectID      string               `json:"directId,omitempty"`
	Title         string               `json:"title"`
	Description   string               `json:"description,omitempty"`
	Amount        decimal.Decimal      `json:"amount"`
	Currency      currency.Code        `json:"currency"`
	SplitScheme   calculator.Scheme    `json:"splitScheme"`
	Participants  []participantPayload `json:"participants"`
	Payers        []payerPayload       `json:"payers"`
	CreatedBy     string               `json:"createdBy"`
}

type updateExpenseRequest struct {
	Title        *string              `json:"title,omitempty"`
	Description  *string              `json:"description,omitempty"`
	Amount       *decimal.Decimal     `json:"amount,omitempty"`
	Currency     *currency.Code       `json:"currency,omitempty"`
	SplitScheme  *calculator.Scheme   `json:"splitScheme,omitempty"`
	Participants []participantPayload `json:"participants,omitempty"`
	Payers       []payerPayload       `json:"payers,omitempty"`
}

type expensePayload struct {
	ID             string               `json:"id"`
	ContainerType  models.ContainerType `json:"containerType"`
	GroupID        string               `json:"groupId,omitempty"`
	DirectID       string               `json:"directId,omitempty"`
	Title          string               `json:"title"`
	Description    string               `json:"description,omitempty"`
	Currency       currency.Code        `json:"currency"`
	TotalAmount    decimal.Decimal      `json:"totalAmount"`
	SplitScheme    calculator.Scheme    `json:"splitScheme"`
	ParticipantIDs []string             `json:"participantIds"`
	CreatedBy      string               `json:"createdBy"`
	CreatedAt      int64                `json:"createdAt"`
	UpdatedAt      int64                `json:"updatedAt"`
	EditedFlag     bool                 `json:"edited"`
	EditedAt       int64                `json:"editedAt,omitempty"`
}

type splitPayload struct {
	UserID                  string          `json:"userId"`
	AmountInExpenseCurrency decimal.Decimal `json:"amountInExpenseCurrency"`
	NormalizedAmount        decimal.Decimal `json:"normalizedAmount"`
	NormalizedCurrency      currency.Code   `json:"normalizedCurrency"`
	ConversionRate          decimal.Decimal `json:"conversionRate"`
	ConversionTimestamp     int64           `json:"conversionTimestamp"`
}

type expenseDetailResponse struct {
	Expense expensePayload `json:"expense"`
	Payers  []payerPayload `json:"payers"`
	Splits  []splitPayload `json:"splits"`
}

func toExpensePayload(e *models.Expense) expensePayload {
	return expensePayload{
		ID:             e.ID,
		ContainerType:  e.ContainerType,
		GroupID:        e.GroupID,
		DirectID:       e.DirectID,
		Title:          e.Title,
		Description:    e.Description,
		Currency:       e.Currency,
		TotalAmount:    e.TotalAmount,
		SplitScheme:    e.SplitScheme,
		ParticipantIDs: e.ParticipantIDs,
		CreatedBy:      e.CreatedBy,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
		EditedFlag:     e.EditedFlag,
		EditedAt:       e.EditedAt,
	}
}

func toDetailResponse(detail *storage.ExpenseDetail) expenseDetailResponse {
	resp := expenseDetailResponse{Expense: toExpensePayload(&detail.Expense)}
	for _, p := range detail.Payers {
		resp.Payers = append(resp.Payers, payerPayload{UserID: p.UserID, Amount: p.Amount})
	}
	for _, s := range detail.Splits {
		resp.Splits = append(resp.Splits, splitPayload{
			UserID:                  s.UserID,
			AmountInExpenseCurrency: s.AmountInExpenseCurrency,
			NormalizedAmount:        s.NormalizedAmount,
			NormalizedCurrency:      s.NormalizedCurrency,
			ConversionRate:          s.ConversionRate,
			ConversionTimestamp:     s.ConversionTimestamp,
		})
	}
	return resp
}

func toPayerInputs(payloads []payerPayload) []service.PayerInput {
	payers := make([]service.PayerInput, len(payloads))
	for i, p := range payloads {
		payers[i] = service.PayerInput{UserID: p.UserID, Amount: p.Amount}
	}
	return payers
}

// CreateExpense records a new expense with computed, normalized splits.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expense, err := h.expenses.CreateExpense(r.Context(), service.CreateExpenseInput{
		ContainerType: req.ContainerType,
		GroupID:       req.GroupID,
		DirectID:      req.DirectID,
		Title:         req.Title,
		Description:   req.Description,
		Amount:        req.Amount,
		Currency:      req.Currency,
		SplitScheme:   req.SplitScheme,
		Participants:  toParticipants(req.Participants),
		Payers:        toPayerInputs(req.Payers),
		CreatedBy:     req.CreatedBy,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpensePayload(expense))
}

// GetExpense returns an expense with its payers and splits.
func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	detail, err := h.expenses.GetExpense(r.Context(), pathParam(r, "expenseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDetailResponse(detail))
}

// EditExpense applies a partial edit, recomputing splits when the financial
// fields change.
func (h *Handler) EditExpense(w http.ResponseWriter, r *http.Request) {
	var req updateExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input := service.UpdateExpenseInput{
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    req.Currency,
		SplitScheme: req.SplitScheme,
	}
	if req.Participants != nil {
		input.Participants = toParticipants(req.Participants)
	}
	if req.Payers != nil {
		input.Payers = toPayerInputs(req.Payers)
	}

	expense, err := h.expenses.EditExpense(r.Context(), pathParam(r, "expenseID"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpensePayload(expense))
}
