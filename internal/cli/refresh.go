package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	infraRedis "github.com/kislikjeka/fintrack/internal/infra/redis"
	"github.com/kislikjeka/fintrack/internal/platform/pricing"
	"github.com/kislikjeka/fintrack/pkg/config"
)

type refreshCmd struct {
	common
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "run one price refresh cycle for the watchlist" }
func (*refreshCmd) Usage() string {
	return `fintrackctl refresh

  Prices every watchlist entry once and stores the quotes as snapshots in
  Redis, exactly like one tick of the server's background refresher.
  Requires DATABASE_URL and a reachable REDIS_URL.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
}

func (c *refreshCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	rdb, err := infraRedis.NewClient(ctx, infraRedis.Config{Addr: cfg.RedisURL, Password: cfg.RedisPassword})
	if err != nil {
		return fail(err)
	}
	defer rdb.Close()

	svc, err := newPricing(cfg, log)
	if err != nil {
		return fail(err)
	}
	r := pricing.NewRefresher(svc, l.watchlist, infraRedis.NewQuoteStore(rdb, log), nil, &pricing.RefresherConfig{Logger: log})

	ok, failed := r.RunOnce(ctx)
	fmt.Printf("refreshed %d symbols, %d failed\n", ok, failed)
	if failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
