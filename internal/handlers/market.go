package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vivekxkt/trading-app/internal/engines/simulation"
	"github.com/vivekxkt/trading-app/internal/services/market"
)

type MarketHandler struct {
	engine  *simulation.MarketEngine
	candles *market.CandleService
}

func NewMarketHandler(engine *simulation.MarketEngine, candles *market.CandleService) *MarketHandler {
	return &MarketHandler{
		engine:  engine,
		candles: candles,
	}
}

// GetWatchlist handles GET /api/v1/market/watchlist requests
// @Summary Get Watchlist
// @Description Get every instrument with its latest price, drift and last tick change
// @Tags market
// @Produce json
// @Success 200 {object} map[string]interface{} "Instrument watchlist"
// @Router /market/watchlist [get]
func (h *MarketHandler) GetWatchlist(c *gin.Context) {
	instruments := h.engine.Watchlist()
	c.JSON(http.StatusOK, gin.H{
		"instruments": instruments,
		"count":       len(instruments),
		"timestamp":   GetCurrentTimestamp(),
	})
}

// GetCandles handles GET /api/v1/market/candles requests
// @Summary Get Candle Window
// @Description Get the visible candle window for a symbol's chart viewport
// @Tags market
// @Produce json
// @Param symbol query string true "Instrument symbol"
// @Param visibleCount query int false "Candles in the viewport (20-120)" default(60)
// @Param panOffset query int false "Candles panned back from the newest edge" default(0)
// @Success 200 {object} map[string]interface{} "Candle window"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Router /market/candles [get]
func (h *MarketHandler) GetCandles(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "symbol parameter is required",
		})
		return
	}

	visibleCount := 60
	if v := c.Query("visibleCount"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			visibleCount = parsed
		}
	}

	panOffset := 0
	if v := c.Query("panOffset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			panOffset = parsed
		}
	}

	candles := h.candles.Window(symbol, visibleCount, panOffset)
	c.JSON(http.StatusOK, gin.H{
		"symbol":  symbol,
		"candles": candles,
		"count":   len(candles),
		"total":   len(h.candles.History(symbol)),
	})
}

type TrackSymbolRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// TrackSymbol handles POST /api/v1/market/track requests
// @Summary Track Symbol
// @Description Switch the charted symbol; its candle series restarts from the next tick
// @Tags market
// @Accept json
// @Produce json
// @Param request body TrackSymbolRequest true "Symbol to track"
// @Success 200 {object} map[string]interface{} "Tracking confirmed"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Router /market/track [post]
func (h *MarketHandler) TrackSymbol(c *gin.Context) {
	var req TrackSymbolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.engine.SetTrackedSymbol(req.Symbol); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tracking " + req.Symbol,
		"symbol":  req.Symbol,
	})
}
