package cli

import (
	"context"
	"fmt"

	"github.com/kislikjeka/fintrack/internal/infra/postgres"
	"github.com/kislikjeka/fintrack/internal/platform/finance"
	"github.com/kislikjeka/fintrack/internal/platform/fx"
	"github.com/kislikjeka/fintrack/internal/platform/watchlist"
	"github.com/kislikjeka/fintrack/pkg/config"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

// ledger is the database-backed part of the application a command needs
type ledger struct {
	db        *postgres.DB
	watchlist *watchlist.Service
}

func openLedger(ctx context.Context, cfg *config.Config, log *logger.Logger) (*ledger, error) {
	db, err := postgres.NewPool(ctx, postgres.Config{URL: cfg.DatabaseURL, MaxConns: 2, MinConns: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	books := finance.NewService(postgres.NewFinanceRepository(db.Pool), fx.NewService(), cfg.ReportingCurrency, log)
	svc := watchlist.NewService(
		postgres.NewWatchlistRepository(db.Pool),
		postgres.NewTxManager(db.Pool),
		books,
		log,
	)
	return &ledger{db: db, watchlist: svc}, nil
}

func (l *ledger) Close() {
	l.db.Close()
}
