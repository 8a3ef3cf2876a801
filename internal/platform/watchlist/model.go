package watchlist

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/shopspring/decimal"
)

// Entry is a tracked symbol
type Entry struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Symbol    string     `json:"symbol" db:"symbol"`
	Name      string     `json:"name" db:"name"`
	Type      asset.Type `json:"type" db:"asset_type"`
	Notes     string     `json:"notes" db:"notes"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// DefaultCurrency is the currency market prices are quoted in when none is given
const DefaultCurrency = "USD"

// Direction is the side of an investment transaction
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// IsValid checks if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionBuy || d == DirectionSell
}

// ParseDirection parses "buy"/"sell" case-insensitively
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", ErrInvalidDirection
	}
	return d, nil
}

// Transaction is a buy or sell of an entry's asset
type Transaction struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	EntryID    uuid.UUID       `json:"entry_id" db:"entry_id"`
	Direction  Direction       `json:"direction" db:"direction"`
	Quantity   decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
	Total      decimal.Decimal `json:"total" db:"total"`
	Currency   string          `json:"currency" db:"currency"`
	ExecutedAt time.Time       `json:"executed_at" db:"executed_at"`
	ExpenseID  *uuid.UUID      `json:"expense_id,omitempty" db:"expense_id"`
	IncomeID   *uuid.UUID      `json:"income_id,omitempty" db:"income_id"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// Recalculate sets Total = Quantity * UnitPrice. Call after changing either.
func (t *Transaction) Recalculate() {
	t.Total = t.Quantity.Mul(t.UnitPrice)
}

// Validate checks direction, quantity and price
func (t *Transaction) Validate() error {
	if !t.Direction.IsValid() {
		return ErrInvalidDirection
	}
	if !t.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if !t.UnitPrice.IsPositive() {
		return ErrInvalidPrice
	}
	if len(t.Currency) != 3 {
		return ErrInvalidCurrency
	}
	return nil
}

// Position is the holding derived from an entry's transactions
type Position struct {
	EntryID          uuid.UUID       `json:"entry_id"`
	Symbol           string          `json:"symbol"`
	Name             string          `json:"name"`
	Type             asset.Type      `json:"type"`
	QuantityHeld     decimal.Decimal `json:"quantity_held"`
	NetInvested      decimal.Decimal `json:"net_invested"`
	AverageCost      decimal.Decimal `json:"average_cost"`
	BoughtQuantity   decimal.Decimal `json:"bought_quantity"`
	BoughtTotal      decimal.Decimal `json:"bought_total"`
	SoldQuantity     decimal.Decimal `json:"sold_quantity"`
	SoldTotal        decimal.Decimal `json:"sold_total"`
	TransactionCount int             `json:"transaction_count"`
}

// IsClosed reports a fully sold position
func (p Position) IsClosed() bool {
	return p.TransactionCount > 0 && p.QuantityHeld.IsZero()
}

// HasInvestment reports a positive net amount still invested
func (p Position) HasInvestment() bool {
	return p.NetInvested.IsPositive()
}

// CalculatePosition folds transactions into a position. Sells beyond the held
// quantity are allowed and drive QuantityHeld negative.
func CalculatePosition(entry *Entry, txs []*Transaction) Position {
	p := Position{
		EntryID: entry.ID,
		Symbol:  entry.Symbol,
		Name:    entry.Name,
		Type:    entry.Type,
	}
	for _, tx := range txs {
		switch tx.Direction {
		case DirectionBuy:
			p.BoughtQuantity = p.BoughtQuantity.Add(tx.Quantity)
			p.BoughtTotal = p.BoughtTotal.Add(tx.Total)
		case DirectionSell:
			p.SoldQuantity = p.SoldQuantity.Add(tx.Quantity)
			p.SoldTotal = p.SoldTotal.Add(tx.Total)
		default:
			continue
		}
		p.TransactionCount++
	}

	p.QuantityHeld = p.BoughtQuantity.Sub(p.SoldQuantity)
	p.NetInvested = p.BoughtTotal.Sub(p.SoldTotal)
	if p.BoughtQuantity.IsPositive() {
		p.AverageCost = p.BoughtTotal.Div(p.BoughtQuantity)
	}
	return p
}

// AddEntryInput holds the fields for a new entry. A zero Type is inferred from the symbol.
type AddEntryInput struct {
	Symbol string
	Name   string
	Type   asset.Type
	Notes  string
}

// UpdateEntryInput holds optional entry changes; nil fields are left as is
type UpdateEntryInput struct {
	Name  *string
	Notes *string
	Type  *asset.Type
}

// RecordInput holds the fields for a new transaction. Zero ExecutedAt means now;
// an empty Currency means DefaultCurrency.
type RecordInput struct {
	EntryID    uuid.UUID
	Direction  Direction
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	Currency   string
	ExecutedAt time.Time
}
