package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kislikjeka/fintrack/internal/module/investment"
	"github.com/kislikjeka/fintrack/internal/platform/asset"
)

// InvestmentServiceInterface defines the interface for investing a cash amount
type InvestmentServiceInterface interface {
	Invest(ctx context.Context, in investment.InvestInput) (*investment.Result, error)
}

// InvestmentHandler handles investment requests
type InvestmentHandler struct {
	service InvestmentServiceInterface
}

// NewInvestmentHandler creates a new investment handler
func NewInvestmentHandler(service InvestmentServiceInterface) *InvestmentHandler {
	return &InvestmentHandler{service: service}
}

// InvestRequest represents a request to buy an asset for a cash amount
type InvestRequest struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Market string          `json:"market"`
}

// Invest handles POST /investments
func (h *InvestmentHandler) Invest(w http.ResponseWriter, r *http.Request) {
	var req InvestRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	in := investment.InvestInput{
		Symbol: req.Symbol,
		Name:   req.Name,
		Amount: req.Amount,
		Market: req.Market,
	}
	if strings.TrimSpace(req.Type) != "" {
		t, err := asset.ParseType(req.Type)
		if err != nil {
			respondError(w, err)
			return
		}
		in.Type = t
	}

	res, err := h.service.Invest(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, res, http.StatusCreated)
}
