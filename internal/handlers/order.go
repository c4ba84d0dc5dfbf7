package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vivekxkt/trading-app/internal/engines/simulation"
	"github.com/vivekxkt/trading-app/internal/engines/trading"
	"github.com/vivekxkt/trading-app/internal/interfaces"
	"github.com/vivekxkt/trading-app/internal/services"
	"github.com/vivekxkt/trading-app/internal/types"
)

// OrderHandler handles order placement over HTTP
type OrderHandler struct {
	ledger    *trading.Ledger
	engine    *simulation.MarketEngine
	portfolio *services.PortfolioService
	hub       interfaces.Hub
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(ledger *trading.Ledger, engine *simulation.MarketEngine, portfolio *services.PortfolioService, hub interfaces.Hub) *OrderHandler {
	return &OrderHandler{
		ledger:    ledger,
		engine:    engine,
		portfolio: portfolio,
		hub:       hub,
	}
}

type PlaceOrderRequest struct {
	Symbol   string   `json:"symbol" binding:"required"`
	Quantity float64  `json:"quantity"`
	StopLoss *float64 `json:"stopLoss,omitempty"`
	Target   *float64 `json:"target,omitempty"`
}

// Buy handles POST /api/v1/orders/buy requests
// @Summary Place Buy Order
// @Description Fill a market buy at the engine's latest price, debiting turnover plus charges
// @Tags orders
// @Accept json
// @Produce json
// @Param request body PlaceOrderRequest true "Order details"
// @Success 201 {object} map[string]interface{} "Filled order"
// @Failure 400 {object} map[string]interface{} "Invalid quantity"
// @Failure 402 {object} map[string]interface{} "Insufficient funds"
// @Failure 404 {object} map[string]interface{} "Unknown symbol"
// @Router /orders/buy [post]
func (oh *OrderHandler) Buy(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price, ok := oh.engine.LatestPrice(req.Symbol)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown symbol: " + req.Symbol})
		return
	}

	order, err := oh.ledger.Buy(req.Symbol, req.Quantity, price, req.StopLoss, req.Target)
	if err != nil {
		c.JSON(statusForLedgerError(err), gin.H{"error": err.Error()})
		return
	}

	oh.broadcastFill(order)
	c.JSON(http.StatusCreated, gin.H{
		"order": order,
		"cash":  oh.ledger.Cash(),
	})
}

type SellOrderRequest struct {
	Symbol   string  `json:"symbol" binding:"required"`
	Quantity float64 `json:"quantity"`
}

// Sell handles POST /api/v1/orders/sell requests
// @Summary Place Sell Order
// @Description Fill a market sell at the engine's latest price, crediting turnover net of charges
// @Tags orders
// @Accept json
// @Produce json
// @Param request body SellOrderRequest true "Order details"
// @Success 201 {object} map[string]interface{} "Filled order"
// @Failure 400 {object} map[string]interface{} "Invalid quantity"
// @Failure 404 {object} map[string]interface{} "No such holding or unknown symbol"
// @Failure 409 {object} map[string]interface{} "Insufficient quantity"
// @Router /orders/sell [post]
func (oh *OrderHandler) Sell(c *gin.Context) {
	var req SellOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price, ok := oh.engine.LatestPrice(req.Symbol)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown symbol: " + req.Symbol})
		return
	}

	order, err := oh.ledger.Sell(req.Symbol, req.Quantity, price)
	if err != nil {
		c.JSON(statusForLedgerError(err), gin.H{"error": err.Error()})
		return
	}

	oh.broadcastFill(order)
	c.JSON(http.StatusCreated, gin.H{
		"order": order,
		"cash":  oh.ledger.Cash(),
	})
}

// broadcastFill pushes the fill and refreshed portfolio to all viewers.
func (oh *OrderHandler) broadcastFill(order interface{}) {
	if oh.hub == nil {
		return
	}
	oh.hub.Broadcast(types.OrderUpdate, order)
	if oh.portfolio != nil {
		oh.hub.Broadcast(types.PortfolioUpdate, oh.portfolio.Summary())
	}
}
