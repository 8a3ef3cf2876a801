// Package cli holds the fintrackctl subcommands.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/kislikjeka/fintrack/internal/infra/gateway/alphavantage"
	"github.com/kislikjeka/fintrack/internal/infra/gateway/coingecko"
	"github.com/kislikjeka/fintrack/internal/infra/gateway/twelvedata"
	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/kislikjeka/fintrack/internal/platform/market"
	"github.com/kislikjeka/fintrack/internal/platform/pricing"
	"github.com/kislikjeka/fintrack/internal/platform/quote"
	"github.com/kislikjeka/fintrack/pkg/config"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

// Commands lists every fintrackctl subcommand
var Commands = []subcommands.Command{
	&quoteCmd{},
	&historyCmd{},
	&portfolioCmd{},
	&refreshCmd{},
	&hashPasswordCmd{},
}

// common carries the flags shared by every command
type common struct {
	verbose bool
	plain   bool
}

func (c *common) setFlags(f *flag.FlagSet) {
	f.BoolVar(&c.verbose, "v", false, "Log provider calls to stderr.")
	f.BoolVar(&c.plain, "plain", false, "Print raw markdown instead of rendering it for the terminal.")
}

func (c *common) logger(cfg *config.Config) *logger.Logger {
	if !c.verbose {
		return logger.Discard()
	}
	return logger.New(cfg.Env, os.Stderr)
}

// print writes a markdown document to w, rendered unless plain output was asked for
func (c *common) print(w io.Writer, doc string) {
	if !c.plain {
		if out, err := glamour.Render(doc, "auto"); err == nil {
			doc = out
		}
	}
	fmt.Fprint(w, doc)
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}

// newPricing builds the provider chain the way the API server does
func newPricing(cfg *config.Config, log *logger.Logger) (*pricing.Service, error) {
	if cfg.AssetCatalogPath != "" {
		if _, err := asset.LoadCatalogFile(cfg.AssetCatalogPath); err != nil {
			return nil, err
		}
	}

	cg := coingecko.NewClient(cfg.CoinGeckoAPIKey, log)
	if cfg.CoinGeckoBaseURL != "" {
		cg.SetBaseURL(cfg.CoinGeckoBaseURL)
	}

	var equity []market.Provider
	if cfg.TwelveDataAPIKey != "" {
		td := twelvedata.NewClient(cfg.TwelveDataAPIKey, log)
		if cfg.TwelveDataBaseURL != "" {
			td.SetBaseURL(cfg.TwelveDataBaseURL)
		}
		equity = append(equity, twelvedata.NewProvider(td))
	}
	if cfg.AlphaVantageAPIKey != "" {
		av := alphavantage.NewClient(cfg.AlphaVantageAPIKey, log)
		if cfg.AlphaVantageBaseURL != "" {
			av.SetBaseURL(cfg.AlphaVantageBaseURL)
		}
		equity = append(equity, alphavantage.NewProvider(av))
	}

	gw := market.NewGateway(coingecko.NewProvider(cg), equity, &market.Config{
		Timeout:     cfg.ProviderTimeout,
		Concurrency: cfg.PriceConcurrency,
		Logger:      log,
	})
	return pricing.NewService(gw, quote.NewNormalizer(), log), nil
}

// usageError reports a bad invocation
func usageError(f *flag.FlagSet, msg string) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, msg)
	f.Usage()
	return subcommands.ExitUsageError
}
