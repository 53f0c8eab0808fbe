package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/anadi/splitledger/internal/currency"
	"github.com/anadi/splitledger/internal/models"
	"github.com/anadi/splitledger/internal/service"
)

type createSettlementRequest struct {
	ContainerType models.ContainerType `json:"containerType"`
	GroupID       string               `json:"groupId,omitempty"`
	DirectID      string               `json:"directId,omitempty"`
	FromUserID    string               `json:"fromUserId"`
	ToUserID      string               `json:"toUserId"`
	Amount        decimal.Decimal      `json:"amount"`
	Currency      currency.Code        `json:"currency"`
	CreatedBy     string               `json:"createdBy"`
	Note          string               `json:"note,omitempty"`
}

type reverseSettlementRequest struct {
	ReversedBy string `json:"reversedBy"`
}

type settlementPayload struct {
	ID                   string                  `json:"id"`
	ContainerType        models.ContainerType    `json:"containerType"`
	GroupID              string                  `json:"groupId,omitempty"`
	DirectID             string                  `json:"directId,omitempty"`
	FromUserID           string                  `json:"fromUserId"`
	ToUserID             string                  `json:"toUserId"`
	Amount               decimal.Decimal         `json:"amount"`
	Currency             currency.Code           `json:"currency"`
	NormalizedFromAmount decimal.Decimal         `json:"normalizedFromAmount"`
	NormalizedToAmount   decimal.Decimal         `json:"normalizedToAmount"`
	ConversionRateFrom   decimal.Decimal         `json:"conversionRateFrom"`
	ConversionRateTo     decimal.Decimal         `json:"conversionRateTo"`
	CreatedAt            int64                   `json:"createdAt"`
	CreatedBy            string                  `json:"createdBy"`
	Status               models.SettlementStatus `json:"status"`
	ReversedAt           int64                   `json:"reversedAt,omitempty"`
	ReversedBy           string                  `json:"reversedBy,omitempty"`
	Note                 string                  `json:"note,omitempty"`
}

func toSettlementPayload(s *models.Settlement) settlementPayload {
	return settlementPayload{
		ID:                   s.ID,
		ContainerType:        s.ContainerType,
		GroupID:              s.GroupID,
		DirectID:             s.DirectID,
		FromUserID:           s.FromUserID,
		ToUserID:             s.ToUserID,
		Amount:               s.Amount,
		Currency:             s.Currency,
		NormalizedFromAmount: s.NormalizedFromAmount,
		NormalizedToAmount:   s.NormalizedToAmount,
		ConversionRateFrom:   s.ConversionRateFrom,
		ConversionRateTo:     s.ConversionRateTo,
		CreatedAt:            s.CreatedAt,
		CreatedBy:            s.CreatedBy,
		Status:               s.Status,
		ReversedAt:           s.ReversedAt,
		ReversedBy:           s.ReversedBy,
		Note:                 s.Note,
	}
}

// CreateSettlement records a payment between two users.
func (h *Handler) CreateSettlement(w http.ResponseWriter, r *http.Request) {
	var req createSettlementRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	settlement, err := h.settlements.CreateSettlement(r.Context(), service.CreateSettlementInput{
		ContainerType: req.ContainerType,
		GroupID:       req.GroupID,
		DirectID:      req.DirectID,
		FromUserID:    req.FromUserID,
		ToUserID:      req.ToUserID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		CreatedBy:     req.CreatedBy,
		Note:          req.Note,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSettlementPayload(settlement))
}

// GetSettlement returns a settlement by ID.
func (h *Handler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	settlement, err := h.settlements.GetSettlement(r.Context(), pathParam(r, "settlementID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementPayload(settlement))
}

// ReverseSettlement marks a settlement REVERSED, restoring the balances it
// had offset. A second reversal of the same settlement is a conflict.
func (h *Handler) ReverseSettlement(w http.ResponseWriter, r *http.Request) {
	var req reverseSettlementRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	settlement, err := h.settlements.ReverseSettlement(r.Context(), pathParam(r, "settlementID"), req.ReversedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementPayload(settlement))
}
