package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kislikjeka/fintrack/internal/platform/fx"
	"github.com/kislikjeka/fintrack/pkg/money"
)

// FXServiceInterface defines the rate table operations needed by FXHandler
type FXServiceInterface interface {
	Snapshot() fx.Table
	Rate(from, to string) (decimal.Decimal, error)
}

// FXHandler handles exchange rate requests
type FXHandler struct {
	service FXServiceInterface
}

// NewFXHandler creates a new fx handler
func NewFXHandler(service FXServiceInterface) *FXHandler {
	return &FXHandler{service: service}
}

// RatesResponse is the current rate table
type RatesResponse struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	UpdatedAt *time.Time                 `json:"updated_at,omitempty"` // nil until the first refresh
}

// ConvertResponse is the result of a conversion
type ConvertResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Rate      decimal.Decimal `json:"rate"`
	Result    decimal.Decimal `json:"result"`
	Formatted string          `json:"formatted"`
}

// GetRates handles GET /fx/rates
func (h *FXHandler) GetRates(w http.ResponseWriter, r *http.Request) {
	t := h.service.Snapshot()
	resp := RatesResponse{Base: t.Base, Rates: t.Rates}
	if !t.UpdatedAt.IsZero() {
		resp.UpdatedAt = &t.UpdatedAt
	}
	respondOK(w, resp, http.StatusOK)
}

// Convert handles GET /fx/convert?amount=&from=&to=
func (h *FXHandler) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := money.ParseAmount(q.Get("amount"))
	if err != nil {
		badRequest(w, "invalid amount")
		return
	}
	from := strings.ToUpper(strings.TrimSpace(q.Get("from")))
	to := strings.ToUpper(strings.TrimSpace(q.Get("to")))
	if from == "" || to == "" {
		badRequest(w, "from and to currencies are required")
		return
	}

	rate, err := h.service.Rate(from, to)
	if err != nil {
		respondError(w, err)
		return
	}
	result := amount.Mul(rate)
	respondOK(w, ConvertResponse{
		Amount:    amount,
		From:      from,
		To:        to,
		Rate:      rate,
		Result:    result,
		Formatted: money.Format(result, to),
	}, http.StatusOK)
}
