package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivekxkt/trading-app/internal/engines/pricing"
	"github.com/vivekxkt/trading-app/internal/engines/simulation"
	"github.com/vivekxkt/trading-app/internal/engines/trading"
	"github.com/vivekxkt/trading-app/internal/models"
	"github.com/vivekxkt/trading-app/internal/services"
	"github.com/vivekxkt/trading-app/internal/services/market"
)

// newTestRouter wires order and account handlers against a never-started
// engine, so every fill happens at the instruments' seed prices.
func newTestRouter(t *testing.T) (*gin.Engine, *trading.Ledger) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	generator := pricing.NewGenerator(1)
	candles := market.NewCandleService()
	ledger := trading.NewLedger(100000)
	monitor := trading.NewMonitor(ledger)
	engine := simulation.NewMarketEngine(models.DefaultInstruments(), generator, candles, ledger, monitor, nil, time.Hour)
	t.Cleanup(engine.Cleanup)
	portfolio := services.NewPortfolioService(ledger, engine)

	orders := NewOrderHandler(ledger, engine, portfolio, nil)
	account := NewAccountHandler(ledger, portfolio, nil)

	router := gin.New()
	api := router.Group("/api/v1")
	api.POST("/orders/buy", orders.Buy)
	api.POST("/orders/sell", orders.Sell)
	api.GET("/account/portfolio", account.GetPortfolio)
	api.GET("/account/orders", account.GetOrders)
	api.POST("/account/deposit", account.Deposit)
	api.POST("/account/withdraw", account.Withdraw)
	return router, ledger
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type orderResponse struct {
	Order models.Order `json:"order"`
	Cash  float64      `json:"cash"`
}

func TestBuyFillsAtLatestPrice(t *testing.T) {
	router, ledger := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders/buy", gin.H{
		"symbol":   "RELIANCE",
		"quantity": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp orderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Order.ID)
	assert.Equal(t, "RELIANCE", resp.Order.Symbol)
	assert.Equal(t, models.SideBuy, resp.Order.Side)
	assert.Equal(t, 10.0, resp.Order.Quantity)
	assert.Equal(t, 2975.40, resp.Order.FillPrice)
	assert.Greater(t, resp.Order.FeesTotal, 0.0)
	assert.Equal(t, models.OrderStatusFilled, resp.Order.Status)

	assert.Equal(t, ledger.Cash(), resp.Cash)
	assert.InDelta(t, 100000-10*2975.40-resp.Order.FeesTotal, resp.Cash, 0.01)

	holding, held := ledger.Holding("RELIANCE")
	require.True(t, held)
	assert.Equal(t, 10.0, holding.Quantity)
	assert.Equal(t, 2975.40, holding.AvgPrice)
}

func TestBuyAttachesExitLevels(t *testing.T) {
	router, ledger := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders/buy", gin.H{
		"symbol":   "INFY",
		"quantity": 5,
		"stopLoss": 1700.0,
		"target":   1900.0,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	holding, held := ledger.Holding("INFY")
	require.True(t, held)
	require.NotNil(t, holding.StopLoss)
	require.NotNil(t, holding.Target)
	assert.Equal(t, 1700.0, *holding.StopLoss)
	assert.Equal(t, 1900.0, *holding.Target)
}

func TestBuyUnknownSymbol(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders/buy", gin.H{
		"symbol":   "NOPE",
		"quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "unknown symbol")
}

func TestBuyValidationAndFunds(t *testing.T) {
	router, ledger := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders/buy", gin.H{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing symbol should fail binding")

	w = doJSON(t, router, http.MethodPost, "/api/v1/orders/buy", gin.H{
		"symbol":   "RELIANCE",
		"quantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "quantity")

	w = doJSON(t, router, http.MethodPost, "/api/v1/orders/buy", gin.H{
		"symbol":   "RELIANCE",
		"quantity": 1000,
	})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "need")

	assert.Equal(t, 100000.0, ledger.Cash(), "failed orders must not move cash")
}

func TestSellRoundTrip(t *testing.T) {
	router, ledger := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders/buy", gin.H{
		"symbol":   "SBIN",
		"quantity": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/v1/orders/sell", gin.H{
		"symbol":   "SBIN",
		"quantity": 4,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp orderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.SideSell, resp.Order.Side)
	assert.Equal(t, 4.0, resp.Order.Quantity)
	assert.Equal(t, 818.60, resp.Order.FillPrice)

	holding, held := ledger.Holding("SBIN")
	require.True(t, held)
	assert.Equal(t, 6.0, holding.Quantity)
	assert.Equal(t, 818.60, holding.AvgPrice, "sell must not move the average price")
}

func TestSellErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders/sell", gin.H{
		"symbol":   "INFY",
		"quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no holding for symbol")

	w = doJSON(t, router, http.MethodPost, "/api/v1/orders/buy", gin.H{
		"symbol":   "INFY",
		"quantity": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/v1/orders/sell", gin.H{
		"symbol":   "INFY",
		"quantity": 10,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDepositAndWithdrawEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/account/deposit", gin.H{"amount": 500.25})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "100500.25")

	w = doJSON(t, router, http.MethodPost, "/api/v1/account/deposit", gin.H{"amount": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/account/withdraw", gin.H{"amount": 200000})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/account/withdraw", gin.H{"amount": 500.25})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "100000")
}

func TestGetOrdersNewestFirstWithLimit(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, symbol := range []string{"RELIANCE", "INFY", "TCS"} {
		w := doJSON(t, router, http.MethodPost, "/api/v1/orders/buy", gin.H{
			"symbol":   symbol,
			"quantity": 1,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/account/orders?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Orders []models.Order `json:"orders"`
		Count  int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Orders, 2)
	assert.Equal(t, "TCS", resp.Orders[0].Symbol)
	assert.Equal(t, "INFY", resp.Orders[1].Symbol)
}

func TestGetPortfolioEndpoint(t *testing.T) {
	router, ledger := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders/buy", gin.H{
		"symbol":   "TCS",
		"quantity": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/v1/account/portfolio", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary services.PortfolioSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, ledger.Cash(), summary.Cash)
	require.Len(t, summary.Holdings, 1)
	assert.Equal(t, "TCS", summary.Holdings[0].Symbol)
	assert.InDelta(t, 2*4012.55, summary.Holdings[0].MarketValue, 0.01)
	assert.InDelta(t, summary.Cash+summary.MarketValue, summary.TotalValue, 0.01)
}
