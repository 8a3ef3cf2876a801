package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/fintrack/internal/module/portfolio"
	"github.com/kislikjeka/fintrack/pkg/config"
)

type portfolioCmd struct {
	common
	market string
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "value the invested positions at live prices" }
func (*portfolioCmd) Usage() string {
	return `fintrackctl portfolio [-market <currency>]

  Reads positions from the database and marks each open one to a live quote.
  Requires DATABASE_URL.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.market, "market", "", "Quote currency for crypto positions.")
}

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}
	log := c.logger(cfg)

	l, err := openLedger(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}
	defer l.Close()

	svc, err := newPricing(cfg, log)
	if err != nil {
		return fail(err)
	}
	valuator := portfolio.NewValuator(l.watchlist, portfolio.NewPricingAdapter(svc, c.market), log)

	overview, err := valuator.ValuePortfolio(ctx)
	if err != nil {
		return fail(err)
	}
	c.print(os.Stdout, overviewMarkdown(overview))
	return subcommands.ExitSuccess
}

func pct(p *decimal.Decimal) string {
	if p == nil {
		return "n/a"
	}
	return p.StringFixed(2) + "%"
}

func overviewMarkdown(o *portfolio.Overview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Portfolio on %s\n\n", o.ValuedAt.Format("2006-01-02 15:04"))

	if len(o.Items) > 0 {
		b.WriteString("| Symbol | Quantity | Invested | Price | Value | P&L | P&L % | Allocation |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, it := range o.Items {
			p := it.Position
			if it.Valuation == nil {
				fmt.Fprintf(&b, "| %s | %s | %s | - | - | - | - | - |\n",
					p.Symbol, p.QuantityHeld.String(), p.NetInvested.StringFixed(2))
				continue
			}
			v := it.Valuation
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s%% |\n",
				p.Symbol, p.QuantityHeld.String(), p.NetInvested.StringFixed(2),
				v.Price.String(), v.CurrentValue.StringFixed(2), v.Profit.StringFixed(2),
				pct(v.ProfitPercent), it.Allocation.StringFixed(2))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("No open positions.\n\n")
	}

	fmt.Fprintf(&b, "- Invested: %s\n", o.TotalInvested.StringFixed(2))
	fmt.Fprintf(&b, "- Current value: %s\n", o.TotalCurrentValue.StringFixed(2))
	fmt.Fprintf(&b, "- Profit: %s (%s)\n", o.TotalProfit.StringFixed(2), pct(o.TotalProfitPercent))
	fmt.Fprintf(&b, "- Realized profit: %s\n", o.TotalRealizedProfit.StringFixed(2))
	fmt.Fprintf(&b, "- Priced: %d, failed: %d\n", o.PricedCount, o.FailedCount)

	var failed []string
	for _, it := range o.Items {
		if it.PriceError != "" {
			failed = append(failed, fmt.Sprintf("- **%s**: %s", it.Position.Symbol, it.PriceError))
		}
	}
	if len(failed) > 0 {
		b.WriteString("\n## Unpriced\n\n")
		b.WriteString(strings.Join(failed, "\n"))
		b.WriteString("\n")
	}

	if len(o.Closed) > 0 {
		b.WriteString("\n## Closed\n\n| Symbol | Realized | Realized % |\n|---|---:|---:|\n")
		for _, cl := range o.Closed {
			fmt.Fprintf(&b, "| %s | %s | %s |\n",
				cl.Position.Symbol, cl.RealizedProfit.StringFixed(2), pct(cl.RealizedProfitPercent))
		}
	}
	return b.String()
}
