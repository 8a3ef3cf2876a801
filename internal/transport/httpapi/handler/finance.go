package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/fintrack/internal/platform/finance"
)

// FinanceServiceInterface defines the ledger operations needed by FinanceHandler
type FinanceServiceInterface interface {
	Create(ctx context.Context, kind finance.Kind, in finance.RecordInput) (*finance.Record, error)
	Get(ctx context.Context, kind finance.Kind, id uuid.UUID) (*finance.Record, error)
	List(ctx context.Context, kind finance.Kind, filter finance.ListFilter) ([]*finance.Record, error)
	Update(ctx context.Context, kind finance.Kind, id uuid.UUID, in finance.RecordInput) (*finance.Record, error)
	Delete(ctx context.Context, kind finance.Kind, id uuid.UUID) (bool, error)
	Balance(ctx context.Context, currency string) (*finance.Balance, error)
	ExpensesByCategory(ctx context.Context, currency string) ([]finance.CategoryTotal, error)
	MonthlySummary(ctx context.Context, year int, currency string) (*finance.YearSummary, error)
}

// FinanceHandler handles expense, income and summary requests
type FinanceHandler struct {
	service FinanceServiceInterface
	now     func() time.Time
}

// NewFinanceHandler creates a new finance handler
func NewFinanceHandler(service FinanceServiceInterface) *FinanceHandler {
	return &FinanceHandler{service: service, now: time.Now}
}

// RecordRequest represents an expense or income body. Date accepts
// YYYY-MM-DD or RFC 3339.
type RecordRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
}

func (req RecordRequest) input() (finance.RecordInput, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return finance.RecordInput{}, err
	}
	return finance.RecordInput{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Category:    req.Category,
		Date:        date,
		Description: req.Description,
	}, nil
}

// Create handles POST /finance/expenses and /finance/incomes
func (h *FinanceHandler) Create(kind finance.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RecordRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
		in, err := req.input()
		if err != nil {
			respondError(w, err)
			return
		}

		rec, err := h.service.Create(r.Context(), kind, in)
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, rec, http.StatusCreated)
	}
}

// List handles GET /finance/expenses and /finance/incomes?from=&to=&category=
func (h *FinanceHandler) List(kind finance.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		from, err := parseDate(q.Get("from"))
		if err != nil {
			respondError(w, err)
			return
		}
		to, err := parseDate(q.Get("to"))
		if err != nil {
			respondError(w, err)
			return
		}

		records, err := h.service.List(r.Context(), kind, finance.ListFilter{
			From:     from,
			To:       to,
			Category: strings.TrimSpace(q.Get("category")),
		})
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, records, http.StatusOK)
	}
}

// Get handles GET /finance/{kind}s/{id}
func (h *FinanceHandler) Get(kind finance.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, err)
			return
		}
		rec, err := h.service.Get(r.Context(), kind, id)
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, rec, http.StatusOK)
	}
}

// Update handles PUT /finance/{kind}s/{id}
func (h *FinanceHandler) Update(kind finance.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, err)
			return
		}
		var req RecordRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
		in, err := req.input()
		if err != nil {
			respondError(w, err)
			return
		}

		rec, err := h.service.Update(r.Context(), kind, id, in)
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, rec, http.StatusOK)
	}
}

// Delete handles DELETE /finance/{kind}s/{id}
func (h *FinanceHandler) Delete(kind finance.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, err)
			return
		}
		deleted, err := h.service.Delete(r.Context(), kind, id)
		if err != nil {
			respondError(w, err)
			return
		}
		if !deleted {
			respondError(w, finance.ErrRecordNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetBalance handles GET /finance/balance?currency=
func (h *FinanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	bal, err := h.service.Balance(r.Context(), r.URL.Query().Get("currency"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, bal, http.StatusOK)
}

// GetExpensesByCategory handles GET /finance/expenses/by-category?currency=
func (h *FinanceHandler) GetExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.ExpensesByCategory(r.Context(), r.URL.Query().Get("currency"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, totals, http.StatusOK)
}

// GetMonthlySummary handles GET /finance/summary/monthly?year=&currency=.
// The year defaults to the current one.
func (h *FinanceHandler) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", h.now().Year())
	if err != nil {
		respondError(w, err)
		return
	}
	sum, err := h.service.MonthlySummary(r.Context(), year, r.URL.Query().Get("currency"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, sum, http.StatusOK)
}

// GetCategories handles GET /finance/categories
func (h *FinanceHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	respondOK(w, finance.Categories(), http.StatusOK)
}
