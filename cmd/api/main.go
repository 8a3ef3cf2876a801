package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kislikjeka/fintrack/internal/infra/gateway/alphavantage"
	"github.com/kislikjeka/fintrack/internal/infra/gateway/coingecko"
	"github.com/kislikjeka/fintrack/internal/infra/gateway/twelvedata"
	"github.com/kislikjeka/fintrack/internal/infra/postgres"
	infraRedis "github.com/kislikjeka/fintrack/internal/infra/redis"
	"github.com/kislikjeka/fintrack/internal/module/investment"
	"github.com/kislikjeka/fintrack/internal/module/portfolio"
	"github.com/kislikjeka/fintrack/internal/platform/asset"
	"github.com/kislikjeka/fintrack/internal/platform/auth"
	"github.com/kislikjeka/fintrack/internal/platform/finance"
	"github.com/kislikjeka/fintrack/internal/platform/fx"
	"github.com/kislikjeka/fintrack/internal/platform/market"
	"github.com/kislikjeka/fintrack/internal/platform/pricing"
	"github.com/kislikjeka/fintrack/internal/platform/quote"
	"github.com/kislikjeka/fintrack/internal/platform/watchlist"
	"github.com/kislikjeka/fintrack/internal/transport/httpapi"
	"github.com/kislikjeka/fintrack/internal/transport/httpapi/handler"
	"github.com/kislikjeka/fintrack/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/fintrack/internal/transport/realtime"
	"github.com/kislikjeka/fintrack/pkg/config"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewDefault(cfg.Env)
	log.Info("Starting FinTrack API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.AssetCatalogPath != "" {
		n, err := asset.LoadCatalogFile(cfg.AssetCatalogPath)
		if err != nil {
			log.Error("Failed to load asset catalog", "path", cfg.AssetCatalogPath, "error", err)
			os.Exit(1)
		}
		log.Info("Asset catalog extended", "listings", n)
	}

	// Database
	db, err := postgres.NewPool(ctx, postgres.Config{URL: cfg.DatabaseURL})
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("Database connection established")

	// Redis only holds quote snapshots and the fx table, so the API runs without it
	var (
		redisClient *goredis.Client
		snapshots   *infraRedis.QuoteStore
		rateStore   *infraRedis.RateStore
	)
	redisClient, err = infraRedis.NewClient(ctx, infraRedis.Config{Addr: cfg.RedisURL, Password: cfg.RedisPassword})
	if err != nil {
		log.Warn("Redis unavailable, snapshots and fx persistence disabled", "error", err)
	} else {
		defer redisClient.Close()
		snapshots = infraRedis.NewQuoteStore(redisClient, log)
		rateStore = infraRedis.NewRateStore(redisClient, log)
		log.Info("Redis connection established")
	}

	// Market data providers
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
	var av *alphavantage.Client
	if cfg.AlphaVantageAPIKey != "" {
		av = alphavantage.NewClient(cfg.AlphaVantageAPIKey, log)
		if cfg.AlphaVantageBaseURL != "" {
			av.SetBaseURL(cfg.AlphaVantageBaseURL)
		}
		equity = append(equity, alphavantage.NewProvider(av))
	}

	gateway := market.NewGateway(coingecko.NewProvider(cg), equity, &market.Config{
		Timeout:     cfg.ProviderTimeout,
		Concurrency: cfg.PriceConcurrency,
		Logger:      log,
	})
	log.Info("Market gateway initialized", "equity_chain", gateway.EquityChain())

	pricingSvc := pricing.NewService(gateway, quote.NewNormalizer(), log)

	// FX
	fxSvc := fx.NewService()
	var fxProvider fx.Provider
	if av != nil {
		fxProvider = alphavantage.NewRateProvider(av)
	}
	var storeForFX fx.RateStore
	if rateStore != nil {
		storeForFX = rateStore
	}
	fxRefresher := fx.NewRefresher(fxSvc, fxProvider, storeForFX, &fx.RefresherConfig{
		Interval: cfg.FXRefreshInterval,
		Logger:   log,
	})
	if err := fxRefresher.Restore(ctx); err != nil {
		log.Warn("Failed to restore fx rates, using defaults", "error", err)
	}

	// Ledger and watchlist
	financeSvc := finance.NewService(postgres.NewFinanceRepository(db.Pool), fxSvc, cfg.ReportingCurrency, log)
	watchlistSvc := watchlist.NewService(
		postgres.NewWatchlistRepository(db.Pool),
		postgres.NewTxManager(db.Pool),
		financeSvc,
		log,
	)

	valuator := portfolio.NewValuator(watchlistSvc, portfolio.NewPricingAdapter(pricingSvc, ""), log)
	investmentSvc := investment.NewService(pricingSvc, watchlistSvc, log)

	hub := realtime.NewHub(cfg.AllowedOrigins, log)

	// HTTP
	var snapshotReader handler.SnapshotReader
	var cachePinger handler.Pinger
	if snapshots != nil {
		snapshotReader = snapshots
		cachePinger = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	limiter := middleware.NewDefaultRateLimiter()
	go limiter.Cleanup(ctx)

	routerCfg := httpapi.Config{
		Logger:            log,
		AllowedOrigins:    cfg.AllowedOrigins,
		ExposeErrorDetail: !cfg.IsProduction(),
		RateLimiter:       limiter,
		WatchlistHandler:  handler.NewWatchlistHandler(watchlistSvc, snapshotReader, pricingSvc, log),
		AssetHandler:      handler.NewAssetHandler(pricingSvc, watchlistSvc),
		InvestmentHandler: handler.NewInvestmentHandler(investmentSvc),
		PortfolioHandler:  handler.NewPortfolioHandler(valuator),
		FinanceHandler:    handler.NewFinanceHandler(financeSvc),
		FXHandler:         handler.NewFXHandler(fxSvc),
		HealthHandler:     handler.NewHealthHandler(db, cachePinger),
		PriceStream:       hub,
	}

	if cfg.AuthEnabled() {
		authSvc, err := auth.NewService(cfg.JWTSecret, cfg.OwnerPasswordHash)
		if err != nil {
			log.Error("Invalid auth configuration", "error", err)
			os.Exit(1)
		}
		routerCfg.AuthHandler = handler.NewAuthHandler(authSvc)
		routerCfg.AuthMiddleware = middleware.Auth(authSvc)
		log.Info("Operator authentication enabled")
	} else {
		log.Warn("JWT_SECRET or OWNER_PASSWORD_HASH not set, API is unauthenticated")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpapi.NewRouter(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Background jobs
	var snapshotStore pricing.SnapshotStore
	if snapshots != nil {
		snapshotStore = snapshots
	}
	priceRefresher := pricing.NewRefresher(pricingSvc, watchlistSvc, snapshotStore, hub, &pricing.RefresherConfig{
		Interval: cfg.PriceRefreshInterval,
		Logger:   log,
	})
	go priceRefresher.Run(ctx)
	log.Info("Price refresher started", "interval", cfg.PriceRefreshInterval)

	if fxProvider != nil {
		go fxRefresher.Run(ctx)
		log.Info("FX refresher started", "interval", cfg.FXRefreshInterval)
	} else {
		log.Warn("ALPHAVANTAGE_API_KEY not configured, fx rates stay at their last known values")
	}

	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// websocket connections are hijacked and not tracked by Shutdown
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped gracefully")
}
