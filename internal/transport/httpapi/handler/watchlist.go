package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/kislikjeka/fintrack/internal/platform/market"
	"github.com/kislikjeka/fintrack/internal/platform/pricing"
	"github.com/kislikjeka/fintrack/internal/platform/quote"
	"github.com/kislikjeka/fintrack/internal/platform/watchlist"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

// WatchlistServiceInterface defines the watchlist operations needed by WatchlistHandler
type WatchlistServiceInterface interface {
	AddEntry(ctx context.Context, in watchlist.AddEntryInput) (*watchlist.Entry, error)
	UpdateEntry(ctx context.Context, id uuid.UUID, in watchlist.UpdateEntryInput) (*watchlist.Entry, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*watchlist.Entry, error)
	ListEntries(ctx context.Context) ([]*watchlist.Entry, error)
	RemoveEntry(ctx context.Context, id uuid.UUID) (bool, error)
	RecordTransaction(ctx context.Context, in watchlist.RecordInput) (*watchlist.Transaction, error)
	ListTransactions(ctx context.Context, entryID uuid.UUID) ([]*watchlist.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	ComputePosition(ctx context.Context, entryID uuid.UUID) (*watchlist.Position, error)
}

// SnapshotReader reads latest-known quotes saved by the refresher
type SnapshotReader interface {
	GetMany(ctx context.Context, symbols []string) (map[string]*quote.Quote, error)
}

// BatchQuoter prices several symbols live
type BatchQuoter interface {
	Quotes(ctx context.Context, reqs []market.Request) map[string]pricing.Outcome
}

// WatchlistHandler handles watchlist and investment transaction requests
type WatchlistHandler struct {
	service   WatchlistServiceInterface
	snapshots SnapshotReader
	quoter    BatchQuoter
	logger    *logger.Logger
}

// NewWatchlistHandler creates a new watchlist handler. snapshots may be nil,
// in which case with-prices always quotes live.
func NewWatchlistHandler(service WatchlistServiceInterface, snapshots SnapshotReader, quoter BatchQuoter, log *logger.Logger) *WatchlistHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &WatchlistHandler{
		service:   service,
		snapshots: snapshots,
		quoter:    quoter,
		logger:    log.WithComponent("watchlist_handler"),
	}
}

// AddEntryRequest represents the entry creation request
type AddEntryRequest struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Notes  string `json:"notes"`
}

// UpdateEntryRequest represents the entry update request; omitted fields are kept
type UpdateEntryRequest struct {
	Name  *string `json:"name"`
	Notes *string `json:"notes"`
	Type  *string `json:"type"`
}

// EntryWithPrice is an entry with its most recent known quote
type EntryWithPrice struct {
	*watchlist.Entry
	Quote       *quote.Quote `json:"quote,omitempty"`
	PriceSource string       `json:"price_source,omitempty"` // "snapshot" or "live"
	PriceError  string       `json:"price_error,omitempty"`
}

// AddEntry handles POST /watchlist
func (h *WatchlistHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req AddEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	in := watchlist.AddEntryInput{Symbol: req.Symbol, Name: req.Name, Notes: req.Notes}
	if strings.TrimSpace(req.Type) != "" {
		t, err := asset.ParseType(req.Type)
		if err != nil {
			respondError(w, err)
			return
		}
		in.Type = t
	}

	entry, err := h.service.AddEntry(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, entry, http.StatusCreated)
}

// ListEntries handles GET /watchlist
func (h *WatchlistHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListEntries(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, entries, http.StatusOK)
}

// ListEntriesWithPrices handles GET /watchlist/with-prices. Snapshots are
// preferred; symbols without one are quoted live in a single batch.
func (h *WatchlistHandler) ListEntriesWithPrices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := h.service.ListEntries(ctx)
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]EntryWithPrice, len(entries))
	symbols := make([]string, len(entries))
	for i, e := range entries {
		out[i] = EntryWithPrice{Entry: e}
		symbols[i] = e.Symbol
	}

	var snaps map[string]*quote.Quote
	if h.snapshots != nil && len(symbols) > 0 {
		snaps, err = h.snapshots.GetMany(ctx, symbols)
		if err != nil {
			// snapshots are a display cache, fall through to live quotes
			h.logger.Warn("failed to read quote snapshots", "error", err)
		}
	}

	var missing []market.Request
	for i := range out {
		if q, ok := snaps[out[i].Symbol]; ok {
			out[i].Quote = q
			out[i].PriceSource = "snapshot"
			continue
		}
		missing = append(missing, market.Request{Symbol: out[i].Symbol, Type: out[i].Type})
	}

	if len(missing) > 0 {
		live := h.quoter.Quotes(ctx, missing)
		for i := range out {
			if out[i].Quote != nil {
				continue
			}
			res, ok := live[strings.ToUpper(out[i].Symbol)]
			switch {
			case !ok:
				out[i].PriceError = "no price returned"
			case res.Err != nil:
				out[i].PriceError = res.Err.Error()
			default:
				out[i].Quote = res.Quote
				out[i].PriceSource = "live"
			}
		}
	}

	respondOK(w, out, http.StatusOK)
}

// GetEntry handles GET /watchlist/{id}
func (h *WatchlistHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	entry, err := h.service.GetEntry(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, entry, http.StatusOK)
}

// UpdateEntry handles PUT /watchlist/{id}
func (h *WatchlistHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req UpdateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	in := watchlist.UpdateEntryInput{Name: req.Name, Notes: req.Notes}
	if req.Type != nil {
		t, err := asset.ParseType(*req.Type)
		if err != nil {
			respondError(w, err)
			return
		}
		in.Type = &t
	}

	entry, err := h.service.UpdateEntry(r.Context(), id, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, entry, http.StatusOK)
}

// RemoveEntry handles DELETE /watchlist/{id}
func (h *WatchlistHandler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	deleted, err := h.service.RemoveEntry(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if !deleted {
		respondError(w, watchlist.ErrEntryNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
