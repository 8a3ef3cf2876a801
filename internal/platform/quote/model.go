package quote

import (
	"time"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/shopspring/decimal"
)

// Quote is a point-in-time price reading normalized from a provider payload.
// It is built fresh for every request.
type Quote struct {
	Symbol        string           `json:"symbol"`
	Type          asset.Type       `json:"type"`
	Price         decimal.Decimal  `json:"price"`
	Change        *decimal.Decimal `json:"change"` // absolute change over the provider's window
	ChangePercent *decimal.Decimal `json:"change_percent"`
	Currency      string           `json:"currency"`
	Source        string           `json:"source"`
	Synthetic     bool             `json:"synthetic"`
	FetchedAt     time.Time        `json:"fetched_at"`
}

// Point is one sample of a price series
type Point struct {
	Time  time.Time       `json:"time"`
	Price decimal.Decimal `json:"price"`
}

// Series is a normalized price history, ascending by time
type Series struct {
	Symbol    string     `json:"symbol"`
	Type      asset.Type `json:"type"`
	Currency  string     `json:"currency"`
	Source    string     `json:"source"`
	Synthetic bool       `json:"synthetic"`
	Interval  string     `json:"interval"`
	Points    []Point    `json:"points"`
}

// Latest returns the most recent point of the series
func (s *Series) Latest() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}
