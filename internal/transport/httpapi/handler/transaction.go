package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/kislikjeka/fintrack/internal/platform/watchlist"
)

// RecordTransactionRequest represents a buy or sell of an entry's asset
type RecordTransactionRequest struct {
	Direction  string          `json:"direction"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Currency   string          `json:"currency"`
	ExecutedAt string          `json:"executed_at"`
}

// RecordTransaction handles POST /watchlist/{id}/transactions
func (h *WatchlistHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req RecordTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	dir, err := watchlist.ParseDirection(req.Direction)
	if err != nil {
		respondError(w, err)
		return
	}
	executedAt, err := parseDate(req.ExecutedAt)
	if err != nil {
		respondError(w, err)
		return
	}

	tx, err := h.service.RecordTransaction(r.Context(), watchlist.RecordInput{
		EntryID:    entryID,
		Direction:  dir,
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
		Currency:   req.Currency,
		ExecutedAt: executedAt,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, tx, http.StatusCreated)
}

// ListTransactions handles GET /watchlist/{id}/transactions
func (h *WatchlistHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	txs, err := h.service.ListTransactions(r.Context(), entryID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, txs, http.StatusOK)
}

// DeleteTransaction handles DELETE /transactions/{id}
func (h *WatchlistHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.service.DeleteTransaction(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPosition handles GET /watchlist/{id}/position
func (h *WatchlistHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	pos, err := h.service.ComputePosition(r.Context(), entryID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, pos, http.StatusOK)
}
