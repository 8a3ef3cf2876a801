package market

import (
	"context"
	"sync"

	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"golang.org/x/sync/errgroup"
)

// FetchBatch fetches current payloads for many symbols with bounded
// concurrency. Every request gets its own Result keyed by uppercase symbol;
// a failing symbol never cancels the others.
func (g *Gateway) FetchBatch(ctx context.Context, reqs []Request) map[string]Result {
	results := make(map[string]Result, len(reqs))
	var mu sync.Mutex

	var eg errgroup.Group
	eg.SetLimit(g.concurrency)

	seen := make(map[string]struct{}, len(reqs))
	for _, req := range reqs {
		key := asset.NormalizeSymbol(req.Symbol)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		eg.Go(func() error {
			p, err := g.FetchCurrent(ctx, key, req.Type, req.Market)
			mu.Lock()
			results[key] = Result{Payload: p, Err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	return results
}
