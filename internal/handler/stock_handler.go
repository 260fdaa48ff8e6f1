package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stocktr-api/internal/service"
	"github.com/stocktr-api/pkg/response"
)

// StockHandler serves the quote proxy
type StockHandler struct {
	quoteService *service.QuoteService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(quoteService *service.QuoteService) *StockHandler {
	return &StockHandler{
		quoteService: quoteService,
	}
}

// GetStocks returns company profiles for the configured symbols
// GET /api/Stock
func (h *StockHandler) GetStocks(c *gin.Context) {
	quotes, err := h.quoteService.List(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoQuotes) {
			response.UpstreamError(c, http.StatusNotFound, "No stocks found")
			return
		}
		slog.Error("fetch stock data failed", "error", err)
		response.UpstreamError(c, http.StatusInternalServerError, service.ErrUpstreamFailure.Error())
		return
	}
	response.Success(c, quotes)
}

// RegisterRoutes registers stock routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/Stock", h.GetStocks)
}
