package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/fintrack/internal/platform/market"
	"github.com/kislikjeka/fintrack/internal/platform/quote"
	"github.com/kislikjeka/fintrack/pkg/config"
	"github.com/kislikjeka/fintrack/pkg/money"
)

type historyCmd struct {
	common
	assetType string
	market    string
	period    string
	interval  string
	rows      int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "print the price history of a symbol" }
func (*historyCmd) Usage() string {
	return `fintrackctl history [-period 1d|5d|1m|3m|6m|1y] [-interval 1min|5min|15min|30min|60min] [-n rows] <symbol>

  Prints daily closes for the period, or intraday samples when -interval is set.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.assetType, "type", "", "Asset type (crypto, stock); inferred when empty.")
	f.StringVar(&c.market, "market", "", "Quote currency for crypto symbols.")
	f.StringVar(&c.period, "period", "1m", "History window.")
	f.StringVar(&c.interval, "interval", "", "Intraday sampling interval. Overrides -period.")
	f.IntVar(&c.rows, "n", 20, "Number of most recent points to print; 0 prints all.")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError(f, "exactly one symbol is required")
	}
	reqs, err := requests(f.Args(), c.assetType, c.market)
	if err != nil {
		return usageError(f, err.Error())
	}

	var hr market.HistoryRequest
	if c.interval != "" {
		iv, err := market.ParseInterval(c.interval)
		if err != nil {
			return usageError(f, err.Error())
		}
		hr = market.Intraday(iv)
	} else {
		p, err := market.ParsePeriod(c.period)
		if err != nil {
			return usageError(f, err.Error())
		}
		hr = market.Daily(p)
	}

	cfg, err := config.LoadMarket()
	if err != nil {
		return fail(err)
	}
	svc, err := newPricing(cfg, c.logger(cfg))
	if err != nil {
		return fail(err)
	}

	r := reqs[0]
	series, err := svc.History(ctx, r.Symbol, r.Type, r.Market, hr)
	if err != nil {
		return fail(err)
	}
	c.print(os.Stdout, seriesMarkdown(series, c.rows))
	return subcommands.ExitSuccess
}

func seriesMarkdown(s *quote.Series, rows int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s history (%s)\n\n", s.Symbol, s.Interval)

	if len(s.Points) == 0 {
		b.WriteString("No data points.\n")
		return b.String()
	}

	first, last := s.Points[0], s.Points[len(s.Points)-1]
	fmt.Fprintf(&b, "Source: %s", s.Source)
	if s.Synthetic {
		b.WriteString(" (synthetic)")
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "From %s to %s: %s → %s",
		first.Time.Format("2006-01-02 15:04"), last.Time.Format("2006-01-02 15:04"),
		money.Format(first.Price, s.Currency), money.Format(last.Price, s.Currency))
	if first.Price.IsPositive() {
		pct := last.Price.Sub(first.Price).Div(first.Price).Mul(decimal.NewFromInt(100))
		fmt.Fprintf(&b, " (%s%%)", pct.StringFixed(2))
	}
	b.WriteString("\n\n")

	points := s.Points
	if rows > 0 && len(points) > rows {
		points = points[len(points)-rows:]
	}
	b.WriteString("| Time | Price |\n|---|---:|\n")
	for _, p := range points {
		fmt.Fprintf(&b, "| %s | %s |\n", p.Time.Format("2006-01-02 15:04"), money.Format(p.Price, s.Currency))
	}
	return b.String()
}
