package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/kislikjeka/fintrack/internal/platform/market"
	"github.com/kislikjeka/fintrack/internal/platform/pricing"
	"github.com/kislikjeka/fintrack/internal/platform/quote"
	"github.com/kislikjeka/fintrack/internal/platform/watchlist"
	apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"
)

const (
	// HeaderPriceSynthetic marks a response built from generated prices
	HeaderPriceSynthetic = "X-Price-Synthetic"

	maxBatchSymbols = 50
	maxSearchLimit  = 50
)

// PricingServiceInterface defines the pricing operations needed by AssetHandler
type PricingServiceInterface interface {
	Quote(ctx context.Context, symbol string, t asset.Type, mkt string) (*quote.Quote, error)
	Quotes(ctx context.Context, reqs []market.Request) map[string]pricing.Outcome
	History(ctx context.Context, symbol string, t asset.Type, mkt string, req market.HistoryRequest) (*quote.Series, error)
}

// EntryLister lists watchlist entries to flag search results
type EntryLister interface {
	ListEntries(ctx context.Context) ([]*watchlist.Entry, error)
}

// AssetHandler handles quote, history and search requests
type AssetHandler struct {
	pricing PricingServiceInterface
	entries EntryLister
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(pricing PricingServiceInterface, entries EntryLister) *AssetHandler {
	return &AssetHandler{
		pricing: pricing,
		entries: entries,
	}
}

// BatchPricesRequest represents a batch quote request
type BatchPricesRequest struct {
	Symbols []string `json:"symbols"`
	Type    string   `json:"type"`
	Market  string   `json:"market"`
}

// BatchPriceResult is the outcome for one symbol of a batch
type BatchPriceResult struct {
	Symbol string       `json:"symbol"`
	Quote  *quote.Quote `json:"quote,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// SearchResult is a catalog listing
type SearchResult struct {
	Symbol      string     `json:"symbol"`
	Name        string     `json:"name"`
	Type        asset.Type `json:"type"`
	CoinGeckoID string     `json:"coingecko_id,omitempty"`
	InWatchlist bool       `json:"in_watchlist"`
}

// GetPrice handles GET /assets/price/{symbol}?type=&market=
func (h *AssetHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	t, err := queryType(r)
	if err != nil {
		respondError(w, err)
		return
	}

	q, err := h.pricing.Quote(r.Context(), symbol, resolveType(t, symbol), r.URL.Query().Get("market"))
	if err != nil {
		respondError(w, err)
		return
	}
	setSyntheticHeader(w, q.Synthetic)
	respondOK(w, q, http.StatusOK)
}

// GetPrices handles POST /assets/prices
func (h *AssetHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	var req BatchPricesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if len(req.Symbols) == 0 {
		badRequest(w, "symbols are required")
		return
	}
	if len(req.Symbols) > maxBatchSymbols {
		badRequest(w, "too many symbols")
		return
	}

	var t asset.Type
	if strings.TrimSpace(req.Type) != "" {
		parsed, err := asset.ParseType(req.Type)
		if err != nil {
			respondError(w, err)
			return
		}
		t = parsed
	}

	reqs := make([]market.Request, 0, len(req.Symbols))
	for _, s := range req.Symbols {
		reqs = append(reqs, market.Request{Symbol: s, Type: resolveType(t, s), Market: req.Market})
	}
	outcomes := h.pricing.Quotes(r.Context(), reqs)

	// one result per requested symbol, in request order, duplicates collapsed
	results := make([]BatchPriceResult, 0, len(outcomes))
	seen := make(map[string]struct{}, len(req.Symbols))
	for _, s := range req.Symbols {
		key := asset.NormalizeSymbol(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		res := BatchPriceResult{Symbol: key}
		switch o, ok := outcomes[key]; {
		case !ok:
			res.Error = "no price returned"
		case o.Err != nil:
			res.Error = apperrors.PublicMessage(o.Err)
		default:
			res.Quote = o.Quote
		}
		results = append(results, res)
	}
	respondOK(w, results, http.StatusOK)
}

// GetHistory handles GET /assets/history/{symbol}?type=&market=&period=
func (h *AssetHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	period, err := market.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		respondError(w, err)
		return
	}
	h.history(w, r, market.Daily(period))
}

// GetIntraday handles GET /assets/intraday/{symbol}?type=&market=&interval=
func (h *AssetHandler) GetIntraday(w http.ResponseWriter, r *http.Request) {
	interval, err := market.ParseInterval(r.URL.Query().Get("interval"))
	if err != nil {
		respondError(w, err)
		return
	}
	h.history(w, r, market.Intraday(interval))
}

func (h *AssetHandler) history(w http.ResponseWriter, r *http.Request, hr market.HistoryRequest) {
	symbol := chi.URLParam(r, "symbol")
	t, err := queryType(r)
	if err != nil {
		respondError(w, err)
		return
	}

	series, err := h.pricing.History(r.Context(), symbol, resolveType(t, symbol), r.URL.Query().Get("market"), hr)
	if err != nil {
		respondError(w, err)
		return
	}
	setSyntheticHeader(w, series.Synthetic)
	respondOK(w, series, http.StatusOK)
}

// Search handles GET /assets/search?query=&type=&limit=
func (h *AssetHandler) Search(w http.ResponseWriter, r *http.Request) {
	t, err := queryType(r)
	if err != nil {
		respondError(w, err)
		return
	}
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		respondError(w, err)
		return
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	var only *asset.Type
	if t.Valid() {
		only = &t
	}
	listings, err := asset.Search(r.URL.Query().Get("query"), only, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	tracked := map[string]bool{}
	if h.entries != nil {
		entries, err := h.entries.ListEntries(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		for _, e := range entries {
			tracked[e.Symbol] = true
		}
	}

	results := make([]SearchResult, 0, len(listings))
	for _, l := range listings {
		results = append(results, SearchResult{
			Symbol:      l.Symbol,
			Name:        l.Name,
			Type:        l.Type,
			CoinGeckoID: l.CoinGeckoID,
			InWatchlist: tracked[l.Symbol],
		})
	}
	respondOK(w, results, http.StatusOK)
}

func setSyntheticHeader(w http.ResponseWriter, synthetic bool) {
	if synthetic {
		w.Header().Set(HeaderPriceSynthetic, "true")
	}
}
