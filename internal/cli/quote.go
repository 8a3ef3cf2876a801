package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/kislikjeka/fintrack/internal/platform/market"
	"github.com/kislikjeka/fintrack/internal/platform/pricing"
	"github.com/kislikjeka/fintrack/pkg/config"
	"github.com/kislikjeka/fintrack/pkg/money"
)

type quoteCmd struct {
	common
	assetType string
	market    string
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "fetch the current price of one or more symbols" }
func (*quoteCmd) Usage() string {
	return `fintrackctl quote [-type crypto|stock] [-market <currency>] <symbol>...

  Queries the configured providers directly, bypassing the snapshot cache.
  Without -type each symbol's type is inferred from the asset catalog.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.assetType, "type", "", "Asset type for every symbol (crypto, stock).")
	f.StringVar(&c.market, "market", "", "Quote currency; defaults to each provider's native currency.")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return usageError(f, "at least one symbol is required")
	}
	reqs, err := requests(f.Args(), c.assetType, c.market)
	if err != nil {
		return usageError(f, err.Error())
	}

	cfg, err := config.LoadMarket()
	if err != nil {
		return fail(err)
	}
	svc, err := newPricing(cfg, c.logger(cfg))
	if err != nil {
		return fail(err)
	}

	outcomes := svc.Quotes(ctx, reqs)
	c.print(os.Stdout, quotesMarkdown(reqs, outcomes))

	for _, out := range outcomes {
		if out.Err != nil {
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

// requests turns command line symbols into batch requests, dropping repeats
func requests(symbols []string, typeName, mkt string) ([]market.Request, error) {
	var forced asset.Type
	if typeName != "" {
		t, err := asset.ParseType(typeName)
		if err != nil {
			return nil, err
		}
		forced = t
	}

	seen := make(map[string]bool, len(symbols))
	reqs := make([]market.Request, 0, len(symbols))
	for _, s := range symbols {
		sym := asset.NormalizeSymbol(s)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		t := forced
		if !t.Valid() {
			t = asset.InferType(sym)
		}
		reqs = append(reqs, market.Request{Symbol: sym, Type: t, Market: mkt})
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("no valid symbols given")
	}
	return reqs, nil
}

func quotesMarkdown(reqs []market.Request, outcomes map[string]pricing.Outcome) string {
	var b strings.Builder
	b.WriteString("# Quotes\n\n")
	b.WriteString("| Symbol | Type | Price | Change | Source |\n")
	b.WriteString("|---|---|---:|---:|---|\n")

	var failed []string
	for _, r := range reqs {
		out, ok := outcomes[r.Symbol]
		if !ok || out.Err != nil || out.Quote == nil {
			msg := "no price returned"
			if ok && out.Err != nil {
				msg = out.Err.Error()
			}
			failed = append(failed, fmt.Sprintf("- **%s**: %s", r.Symbol, msg))
			continue
		}
		q := out.Quote
		change := "n/a"
		if q.ChangePercent != nil {
			change = q.ChangePercent.StringFixed(2) + "%"
		}
		source := q.Source
		if q.Synthetic {
			source += " (synthetic)"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			q.Symbol, q.Type, money.Format(q.Price, q.Currency), change, source)
	}

	if len(failed) > 0 {
		b.WriteString("\n## Failed\n\n")
		b.WriteString(strings.Join(failed, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}
