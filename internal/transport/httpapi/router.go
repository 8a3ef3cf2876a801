package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kislikjeka/fintrack/internal/platform/finance"
	"github.com/kislikjeka/fintrack/internal/transport/httpapi/handler"
	"github.com/kislikjeka/fintrack/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

// Config holds router configuration. Nil handlers leave their routes unmounted.
type Config struct {
	Logger            *logger.Logger
	AllowedOrigins    []string
	ExposeErrorDetail bool
	RateLimiter       *middleware.RateLimiter

	AuthHandler       *handler.AuthHandler
	WatchlistHandler  *handler.WatchlistHandler
	AssetHandler      *handler.AssetHandler
	InvestmentHandler *handler.InvestmentHandler
	PortfolioHandler  *handler.PortfolioHandler
	FinanceHandler    *handler.FinanceHandler
	FXHandler         *handler.FXHandler
	HealthHandler     *handler.HealthHandler
	PriceStream       http.Handler

	// AuthMiddleware protects /api/v1 except /auth/token; nil disables auth
	AuthMiddleware func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	if cfg.RateLimiter == nil {
		cfg.RateLimiter = middleware.NewDefaultRateLimiter()
	}
	handler.SetErrorDetail(cfg.ExposeErrorDetail)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(cfg.RateLimiter.Middleware)

	// Health check endpoints (no authentication required)
	r.Get("/health", handler.GetHealth)
	r.Get("/health/live", handler.GetLiveness)
	if cfg.HealthHandler != nil {
		r.Get("/health/ready", cfg.HealthHandler.GetReadiness)
		r.Get("/health/detailed", cfg.HealthHandler.GetHealthDetailed)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuthHandler != nil {
			r.Post("/auth/token", cfg.AuthHandler.IssueToken)
		}

		r.Group(func(r chi.Router) {
			if cfg.AuthMiddleware != nil {
				r.Use(cfg.AuthMiddleware)
			}

			// websocket upgrades must not pass through the compressor
			if cfg.PriceStream != nil {
				r.Get("/stream/prices", cfg.PriceStream.ServeHTTP)
			}

			r.Group(func(r chi.Router) {
				r.Use(chimiddleware.Compress(5))
				mountAPI(r, cfg)
			})
		})
	})

	return r
}

func mountAPI(r chi.Router, cfg Config) {
	if h := cfg.WatchlistHandler; h != nil {
		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.AddEntry)
			r.Get("/with-prices", h.ListEntriesWithPrices)
			r.Get("/{id}", h.GetEntry)
			r.Put("/{id}", h.UpdateEntry)
			r.Delete("/{id}", h.RemoveEntry)
			r.Get("/{id}/transactions", h.ListTransactions)
			r.Post("/{id}/transactions", h.RecordTransaction)
			r.Get("/{id}/position", h.GetPosition)
		})
		r.Delete("/transactions/{id}", h.DeleteTransaction)
	}

	if h := cfg.AssetHandler; h != nil {
		r.Route("/assets", func(r chi.Router) {
			r.Get("/search", h.Search)
			r.Post("/prices", h.GetPrices)
			r.Get("/price/{symbol}", h.GetPrice)
			r.Get("/history/{symbol}", h.GetHistory)
			r.Get("/intraday/{symbol}", h.GetIntraday)
		})
	}

	if h := cfg.InvestmentHandler; h != nil {
		r.Post("/investments", h.Invest)
	}

	if h := cfg.PortfolioHandler; h != nil {
		r.Get("/portfolio/overview", h.GetOverview)
		r.Get("/portfolio/{id}", h.GetShare)
	}

	if h := cfg.FinanceHandler; h != nil {
		r.Route("/finance", func(r chi.Router) {
			mountRecords(r, "/expenses", finance.KindExpense, h)
			mountRecords(r, "/incomes", finance.KindIncome, h)
			r.Get("/expenses/by-category", h.GetExpensesByCategory)
			r.Get("/balance", h.GetBalance)
			r.Get("/summary/monthly", h.GetMonthlySummary)
			r.Get("/categories", h.GetCategories)
		})
	}

	if h := cfg.FXHandler; h != nil {
		r.Get("/fx/rates", h.GetRates)
		r.Get("/fx/convert", h.Convert)
	}
}

func mountRecords(r chi.Router, path string, kind finance.Kind, h *handler.FinanceHandler) {
	r.Get(path, h.List(kind))
	r.Post(path, h.Create(kind))
	r.Get(path+"/{id}", h.Get(kind))
	r.Put(path+"/{id}", h.Update(kind))
	r.Delete(path+"/{id}", h.Delete(kind))
}
