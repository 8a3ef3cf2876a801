package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/kislikjeka/fintrack/internal/module/portfolio"
)

// PortfolioServiceInterface defines the interface for portfolio operations
type PortfolioServiceInterface interface {
	ValuePortfolio(ctx context.Context) (*portfolio.Overview, error)
	Share(ctx context.Context, entryID uuid.UUID) (*portfolio.Share, error)
}

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioService PortfolioServiceInterface
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(portfolioService PortfolioServiceInterface) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// GetOverview handles GET /portfolio/overview
func (h *PortfolioHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.portfolioService.ValuePortfolio(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, overview, http.StatusOK)
}

// GetShare handles GET /portfolio/{id}
func (h *PortfolioHandler) GetShare(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	share, err := h.portfolioService.Share(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, share, http.StatusOK)
}
