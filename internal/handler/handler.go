// Package handler exposes the computation engine and ledger over a JSON
// HTTP API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/anadi/splitledger/internal/calculator"
	"github.com/anadi/splitledger/internal/currency"
	"github.com/anadi/splitledger/internal/models"
	"github.com/anadi/splitledger/internal/service"
	"github.com/anadi/splitledger/internal/storage"
)

// Handler implements the HTTP API.
type Handler struct {
	expenses    *service.ExpenseService
	settlements *service.SettlementService
	balances    *service.BalanceService
	converter   *currency.Converter
}

// New creates a Handler on top of the given services.
func New(expenses *service.ExpenseService, settlements *service.SettlementService, balances *service.BalanceService, converter *currency.Converter) *Handler {
	return &Handler{
		expenses:    expenses,
		settlements: settlements,
		balances:    balances,
		converter:   converter,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP status codes. Validation and
// calculator errors are the client's fault; anything unrecognized is a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyReversed):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, currency.ErrInvalidCurrency),
		errors.Is(err, calculator.ErrAmountMismatch),
		errors.Is(err, calculator.ErrPercentageMismatch),
		errors.Is(err, calculator.ErrNoPositiveShares),
		errors.Is(err, calculator.ErrItemAssignmentMismatch),
		errors.Is(err, calculator.ErrUnsupportedScheme),
		errors.Is(err, calculator.ErrUnknownSplitType):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

type participantPayload struct {
	UserID string           `json:"userId"`
	Value  *decimal.Decimal `json:"value,omitempty"`
}

type splitResultPayload struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
}

func toParticipants(payloads []participantPayload) []calculator.Participant {
	participants := make([]calculator.Participant, len(payloads))
	for i, p := range payloads {
		participants[i] = calculator.Participant{UserID: p.UserID, Value: p.Value}
	}
	return participants
}

func toResultPayloads(results []calculator.Result) []splitResultPayload {
	payloads := make([]splitResultPayload, len(results))
	for i, r := range results {
		payloads[i] = splitResultPayload{UserID: r.UserID, Amount: r.Amount}
	}
	return payloads
}

type splitPreviewRequest struct {
	Amount       decimal.Decimal      `json:"amount"`
	Scheme       calculator.Scheme    `json:"scheme"`
	Participants []participantPayload `json:"participants"`
}

type splitPreviewResponse struct {
	Splits []splitResultPayload `json:"splits"`
}

// PreviewSplit computes splits for a prospective expense without
// persisting anything.
func (h *Handler) PreviewSplit(w http.ResponseWriter, r *http.Request) {
	var req splitPreviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	results, err := calculator.CalculateSplit(req.Amount, req.Scheme, toParticipants(req.Participants))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, splitPreviewResponse{Splits: toResultPayloads(results)})
}

type convertRequest struct {
	Amount decimal.Decimal `json:"amount"`
	From   currency.Code   `json:"from"`
	To     currency.Code   `json:"to"`
}

type convertResponse struct {
	From            currency.Code   `json:"from"`
	To              currency.Code   `json:"to"`
	Amount          decimal.Decimal `json:"amount"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
	Rate            decimal.Decimal `json:"rate"`
	Timestamp       int64           `json:"timestamp"`
}

// Convert converts an amount between two supported currencies.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	conv, err := h.converter.Convert(req.Amount, req.From, req.To)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convertResponse{
		From:            conv.From,
		To:              conv.To,
		Amount:          conv.Amount,
		ConvertedAmount: conv.ConvertedAmount,
		Rate:            conv.Rate,
		Timestamp:       conv.Timestamp.Unix(),
	})
}

type itemPayload struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	OrderIndex int             `json:"orderIndex"`
}

type assignmentPayload struct {
	UserID string          `json:"userId"`
	Share  decimal.Decimal `json:"share"`
}

type itemTotalsRequest struct {
	Items       []itemPayload                  `json:"items"`
	Assignments map[string][]assignmentPayload `json:"assignments"`
}

type itemTotalsResponse struct {
	Valid  bool                       `json:"valid"`
	Errors []string                   `json:"errors,omitempty"`
	Totals map[string]decimal.Decimal `json:"totals,omitempty"`
}

// ItemTotals validates item assignments and, when they are consistent,
// returns the per-user totals across the bill.
func (h *Handler) ItemTotals(w http.ResponseWriter, r *http.Request) {
	var req itemTotalsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]calculator.BillItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = calculator.BillItem{ID: it.ID, Name: it.Name, Price: it.Price, OrderIndex: it.OrderIndex}
	}
	assignments := make(map[string][]calculator.ItemAssignment, len(req.Assignments))
	for itemID, as := range req.Assignments {
		list := make([]calculator.ItemAssignment, len(as))
		for i, a := range as {
			list[i] = calculator.ItemAssignment{UserID: a.UserID, Share: a.Share}
		}
		assignments[itemID] = list
	}

	valid, errs := calculator.ValidateItemAssignments(items, assignments)
	if !valid {
		writeJSON(w, http.StatusOK, itemTotalsResponse{Valid: false, Errors: errs})
		return
	}

	totals, err := calculator.ComputeItemTotals(items, assignments)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemTotalsResponse{Valid: true, Totals: totals})
}

type balancePayload struct {
	UserID    string          `json:"userId"`
	NetAmount decimal.Decimal `json:"netAmount"`
	Currency  currency.Code   `json:"currency"`
}

type balancesResponse struct {
	Balances []balancePayload `json:"balances"`
}

// GroupBalances returns net balances for every user in a group's ledger.
func (h *Handler) GroupBalances(w http.ResponseWriter, r *http.Request) {
	h.writeBalances(w, r, func() ([]calculator.Balance, error) {
		return h.balances.GroupBalances(r.Context(), pathParam(r, "groupID"))
	})
}

// DirectBalances returns net balances for a direct thread.
func (h *Handler) DirectBalances(w http.ResponseWriter, r *http.Request) {
	h.writeBalances(w, r, func() ([]calculator.Balance, error) {
		return h.balances.DirectBalances(r.Context(), pathParam(r, "directID"))
	})
}

func (h *Handler) writeBalances(w http.ResponseWriter, _ *http.Request, load func() ([]calculator.Balance, error)) {
	balances, err := load()
	if err != nil {
		writeError(w, err)
		return
	}
	payloads := make([]balancePayload, len(balances))
	for i, b := range balances {
		payloads[i] = balancePayload{UserID: b.UserID, NetAmount: b.NetAmount, Currency: b.Currency}
	}
	writeJSON(w, http.StatusOK, balancesResponse{Balances: payloads})
}
