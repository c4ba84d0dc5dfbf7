package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vivekxkt/trading-app/internal/engines/trading"
	"github.com/vivekxkt/trading-app/internal/interfaces"
	"github.com/vivekxkt/trading-app/internal/services"
	"github.com/vivekxkt/trading-app/internal/types"
)

// AccountHandler handles cash movements and account views
type AccountHandler struct {
	ledger    *trading.Ledger
	portfolio *services.PortfolioService
	hub       interfaces.Hub
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(ledger *trading.Ledger, portfolio *services.PortfolioService, hub interfaces.Hub) *AccountHandler {
	return &AccountHandler{
		ledger:    ledger,
		portfolio: portfolio,
		hub:       hub,
	}
}

// GetPortfolio handles GET /api/v1/account/portfolio requests
// @Summary Get Portfolio
// @Description Get cash and every holding marked to the latest price
// @Tags account
// @Produce json
// @Success 200 {object} services.PortfolioSummary "Portfolio summary"
// @Router /account/portfolio [get]
func (ah *AccountHandler) GetPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, ah.portfolio.Summary())
}

// GetOrders handles GET /api/v1/account/orders requests
// @Summary Get Order Log
// @Description Get the in-memory order log, newest first
// @Tags account
// @Produce json
// @Param limit query int false "Number of orders to return (default: all retained)"
// @Success 200 {object} map[string]interface{} "Order log"
// @Router /account/orders [get]
func (ah *AccountHandler) GetOrders(c *gin.Context) {
	orders := ah.ledger.Snapshot().Orders

	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit < len(orders) {
			orders = orders[:limit]
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

type CashRequest struct {
	Amount float64 `json:"amount"`
}

// Deposit handles POST /api/v1/account/deposit requests
// @Summary Deposit Cash
// @Description Add cash to the account balance
// @Tags account
// @Accept json
// @Produce json
// @Param request body CashRequest true "Amount to deposit"
// @Success 200 {object} map[string]interface{} "Updated balance"
// @Failure 400 {object} map[string]interface{} "Invalid amount"
// @Router /account/deposit [post]
func (ah *AccountHandler) Deposit(c *gin.Context) {
	var req CashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ah.ledger.Deposit(req.Amount); err != nil {
		c.JSON(statusForLedgerError(err), gin.H{"error": err.Error()})
		return
	}

	ah.broadcastPortfolio()
	c.JSON(http.StatusOK, gin.H{
		"message": "Deposit completed",
		"cash":    ah.ledger.Cash(),
	})
}

// Withdraw handles POST /api/v1/account/withdraw requests
// @Summary Withdraw Cash
// @Description Remove cash from the account balance
// @Tags account
// @Accept json
// @Produce json
// @Param request body CashRequest true "Amount to withdraw"
// @Success 200 {object} map[string]interface{} "Updated balance"
// @Failure 400 {object} map[string]interface{} "Invalid amount"
// @Failure 402 {object} map[string]interface{} "Insufficient funds"
// @Router /account/withdraw [post]
func (ah *AccountHandler) Withdraw(c *gin.Context) {
	var req CashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ah.ledger.Withdraw(req.Amount); err != nil {
		c.JSON(statusForLedgerError(err), gin.H{"error": err.Error()})
		return
	}

	ah.broadcastPortfolio()
	c.JSON(http.StatusOK, gin.H{
		"message": "Withdrawal completed",
		"cash":    ah.ledger.Cash(),
	})
}

func (ah *AccountHandler) broadcastPortfolio() {
	if ah.hub != nil && ah.portfolio != nil {
		ah.hub.Broadcast(types.PortfolioUpdate, ah.portfolio.Summary())
	}
}
