package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stocktr-api/internal/middleware"
	"github.com/stocktr-api/internal/repository"
	"github.com/stocktr-api/internal/service"
	"github.com/stocktr-api/pkg/response"
)

// WatchlistHandler handles watchlist API requests
type WatchlistHandler struct {
	watchlistService *service.WatchlistService
}

// NewWatchlistHandler creates a new WatchlistHandler
func NewWatchlistHandler(watchlistService *service.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistService: watchlistService,
	}
}

// GetWatchlist returns the user's watchlist
// GET /api/Watchlist
func (h *WatchlistHandler) GetWatchlist(c *gin.Context) {
	entries, err := h.watchlistService.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		slog.Error("list watchlist failed", "error", err)
		response.WatchlistError(c, http.StatusInternalServerError, "Error fetching watchlist")
		return
	}
	response.Success(c, entries)
}

// UpdateWatchlist upserts the posted entries
// POST /api/WatchlistUpdate
func (h *WatchlistHandler) UpdateWatchlist(c *gin.Context) {
	var req service.UpdateWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Watchlist == nil {
		response.WatchlistError(c, http.StatusBadRequest, "watchlist must be an array")
		return
	}

	entries, err := h.watchlistService.UpsertBatch(c.Request.Context(), middleware.GetUserID(c), req.Watchlist)
	if err != nil {
		if errors.Is(err, service.ErrInvalidEntry) {
			response.WatchlistError(c, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("update watchlist failed", "error", err)
		response.WatchlistError(c, http.StatusInternalServerError, "Error updating watchlist")
		return
	}

	response.Created(c, gin.H{
		"message": "Watchlist updated",
		"data":    entries,
	})
}

// RemoveFromWatchlist deletes one symbol
// DELETE /api/Watchlist/:symbol
func (h *WatchlistHandler) RemoveFromWatchlist(c *gin.Context) {
	symbol, err := h.watchlistService.RemoveOne(c.Request.Context(), middleware.GetUserID(c), c.Param("symbol"))
	if err != nil {
		if errors.Is(err, repository.ErrWatchlistEntryNotFound) {
			response.WatchlistError(c, http.StatusNotFound, "Stock not found in watchlist")
			return
		}
		slog.Error("remove from watchlist failed", "error", err)
		response.WatchlistError(c, http.StatusInternalServerError, "Error removing stock from watchlist")
		return
	}

	response.Success(c, gin.H{
		"message": "Stock removed from watchlist",
		"symbol":  symbol,
	})
}

// RegisterRoutes registers watchlist routes
func (h *WatchlistHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	watchlist := rg.Group("")
	watchlist.Use(authMiddleware)
	{
		watchlist.GET("/Watchlist", h.GetWatchlist)
		watchlist.POST("/WatchlistUpdate", h.UpdateWatchlist)
		watchlist.DELETE("/Watchlist/:symbol", h.RemoveFromWatchlist)
	}
}
