package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/kislikjeka/fintrack/internal/platform/quote"
	"github.com/kislikjeka/fintrack/internal/platform/watchlist"
	"github.com/kislikjeka/fintrack/pkg/logger"
	"github.com/shopspring/decimal"
)

const percentPlaces = 4

var hundred = decimal.NewFromInt(100)

// PositionSource provides derived positions
type PositionSource interface {
	ListPositions(ctx context.Context) ([]watchlist.Position, error)
	ComputePosition(ctx context.Context, entryID uuid.UUID) (*watchlist.Position, error)
}

// PriceRequest identifies one symbol to price
type PriceRequest struct {
	Symbol string
	Type   asset.Type
}

// PriceResult is the per-symbol outcome of a price lookup
type PriceResult struct {
	Quote *quote.Quote
	Err   error
}

// PriceService fetches live quotes for many symbols at once
type PriceService interface {
	Quotes(ctx context.Context, reqs []PriceRequest) map[string]PriceResult
}

// Valuation is a position marked to a quote
type Valuation struct {
	Price         decimal.Decimal  `json:"price"`
	CurrentValue  decimal.Decimal  `json:"current_value"`
	Profit        decimal.Decimal  `json:"profit"`
	ProfitPercent *decimal.Decimal `json:"profit_percent"`
}

// Item is an open invested position with its valuation, or the reason it has none
type Item struct {
	Position   watchlist.Position `json:"position"`
	Quote      *quote.Quote       `json:"quote,omitempty"`
	Valuation  *Valuation         `json:"valuation,omitempty"`
	Allocation decimal.Decimal    `json:"allocation"`
	PriceError string             `json:"price_error,omitempty"`
}

// ClosedItem is a fully sold position with its realized result
type ClosedItem struct {
	Position              watchlist.Position `json:"position"`
	RealizedProfit        decimal.Decimal    `json:"realized_profit"`
	RealizedProfitPercent *decimal.Decimal   `json:"realized_profit_percent"`
}

// Overview is the valued portfolio
type Overview struct {
	Items               []Item               `json:"items"`
	Closed              []ClosedItem         `json:"closed"`
	Unvalued            []watchlist.Position `json:"unvalued"`
	TotalInvested       decimal.Decimal      `json:"total_invested"`
	TotalCurrentValue   decimal.Decimal      `json:"total_current_value"`
	TotalProfit         decimal.Decimal      `json:"total_profit"`
	TotalProfitPercent  *decimal.Decimal     `json:"total_profit_percent"`
	TotalRealizedProfit decimal.Decimal      `json:"total_realized_profit"`
	PricedCount         int                  `json:"priced_count"`
	FailedCount         int                  `json:"failed_count"`
	ValuedAt            time.Time            `json:"valued_at"`
}

// Share is a position's part of the total net invested amount
type Share struct {
	Position         watchlist.Position `json:"position"`
	SharePercent     decimal.Decimal    `json:"share_percent"`
	TotalNetInvested decimal.Decimal    `json:"total_net_invested"`
}

// Valuator marks positions to live prices
type Valuator struct {
	positions PositionSource
	prices    PriceService
	now       func() time.Time
	logger    *logger.Logger
}

// NewValuator creates a new valuator
func NewValuator(positions PositionSource, prices PriceService, log *logger.Logger) *Valuator {
	if log == nil {
		log = logger.Discard()
	}
	return &Valuator{
		positions: positions,
		prices:    prices,
		now:       time.Now,
		logger:    log.WithComponent("valuator"),
	}
}

// ValueOne marks one position to a quote. ProfitPercent is set only when
// something is still invested.
func ValueOne(pos watchlist.Position, q *quote.Quote) Valuation {
	v := Valuation{
		Price:        q.Price,
		CurrentValue: pos.QuantityHeld.Mul(q.Price),
	}
	v.Profit = v.CurrentValue.Sub(pos.NetInvested)
	v.ProfitPercent = percentOf(v.Profit, pos.NetInvested)
	return v
}

// percentOf returns part/whole*100 rounded, or nil when whole is not positive
func percentOf(part, whole decimal.Decimal) *decimal.Decimal {
	if !whole.IsPositive() {
		return nil
	}
	pct := part.Div(whole).Mul(hundred).Round(percentPlaces)
	return &pct
}

// ValuePortfolio prices every open invested position. A symbol whose price
// cannot be fetched is reported on its item and left out of the totals.
// Closed positions are never priced.
func (v *Valuator) ValuePortfolio(ctx context.Context) (*Overview, error) {
	positions, err := v.positions.ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	ov := &Overview{
		Items:    []Item{},
		Closed:   []ClosedItem{},
		Unvalued: []watchlist.Position{},
		ValuedAt: v.now().UTC(),
	}

	var open []watchlist.Position
	investedAll := decimal.Zero
	for _, p := range positions {
		switch {
		case p.IsClosed():
			realized := p.NetInvested.Neg()
			ov.Closed = append(ov.Closed, ClosedItem{
				Position:              p,
				RealizedProfit:        realized,
				RealizedProfitPercent: percentOf(realized, p.BoughtTotal),
			})
			ov.TotalRealizedProfit = ov.TotalRealizedProfit.Add(realized)
		case p.HasInvestment():
			open = append(open, p)
			investedAll = investedAll.Add(p.NetInvested)
		default:
			ov.Unvalued = append(ov.Unvalued, p)
		}
	}

	if len(open) == 0 {
		return ov, nil
	}

	reqs := make([]PriceRequest, len(open))
	for i, p := range open {
		reqs[i] = PriceRequest{Symbol: p.Symbol, Type: p.Type}
	}
	quotes := v.prices.Quotes(ctx, reqs)

	for _, p := range open {
		item := Item{
			Position:   p,
			Allocation: p.NetInvested.Div(investedAll).Mul(hundred),
		}

		res, ok := quotes[asset.NormalizeSymbol(p.Symbol)]
		switch {
		case !ok:
			item.PriceError = "no price returned"
		case res.Err != nil:
			item.PriceError = res.Err.Error()
		default:
			val := ValueOne(p, res.Quote)
			item.Quote = res.Quote
			item.Valuation = &val
		}

		if item.Valuation == nil {
			ov.FailedCount++
			v.logger.Warn("position left unpriced", "symbol", p.Symbol, "error", item.PriceError)
		} else {
			ov.PricedCount++
			ov.TotalInvested = ov.TotalInvested.Add(p.NetInvested)
			ov.TotalCurrentValue = ov.TotalCurrentValue.Add(item.Valuation.CurrentValue)
		}
		ov.Items = append(ov.Items, item)
	}

	ov.TotalProfit = ov.TotalCurrentValue.Sub(ov.TotalInvested)
	ov.TotalProfitPercent = percentOf(ov.TotalProfit, ov.TotalInvested)
	return ov, nil
}

// Share returns the entry's position and its percentage of the total net
// invested across all invested positions
func (v *Valuator) Share(ctx context.Context, entryID uuid.UUID) (*Share, error) {
	pos, err := v.positions.ComputePosition(ctx, entryID)
	if err != nil {
		return nil, err
	}
	all, err := v.positions.ListPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	total := decimal.Zero
	for _, p := range all {
		if p.HasInvestment() {
			total = total.Add(p.NetInvested)
		}
	}

	s := &Share{Position: *pos, TotalNetInvested: total}
	if pos.HasInvestment() && total.IsPositive() {
		s.SharePercent = pos.NetInvested.Div(total).Mul(hundred).Round(percentPlaces)
	}
	return s, nil
}
