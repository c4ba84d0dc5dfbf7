package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vivekxkt/trading-app/internal/config"
	sessiondao "github.com/vivekxkt/trading-app/internal/dao/session"
	tradingdao "github.com/vivekxkt/trading-app/internal/dao/trading"
	"github.com/vivekxkt/trading-app/internal/database"
	"github.com/vivekxkt/trading-app/internal/engines/pricing"
	"github.com/vivekxkt/trading-app/internal/engines/simulation"
	"github.com/vivekxkt/trading-app/internal/engines/trading"
	"github.com/vivekxkt/trading-app/internal/handlers"
	ws "github.com/vivekxkt/trading-app/internal/handlers/websocket"
	"github.com/vivekxkt/trading-app/internal/models"
	"github.com/vivekxkt/trading-app/internal/services"
	"github.com/vivekxkt/trading-app/internal/services/market"
)

// @title Trading App API
// @version 1.0
// @description Paper trading API with a simulated market feed, candle charts and a fee-aware ledger
// @host localhost:8080
// @BasePath /api/v1
// @schemes http

func main() {
	// Load configuration
	cfg := config.Load()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Core market and trading state
	generator := pricing.NewGenerator(seed)
	candles := market.NewCandleService()
	ledger := trading.NewLedger(cfg.StartingCash)
	monitor := trading.NewMonitor(ledger)

	// WebSocket hub
	wsHandler := ws.NewWebSocketHandler()

	// Market engine drives everything on a tick
	engine := simulation.NewMarketEngine(
		models.DefaultInstruments(),
		generator,
		candles,
		ledger,
		monitor,
		wsHandler.GetHub(),
		cfg.TickInterval(),
	)
	portfolioService := services.NewPortfolioService(ledger, engine)
	engine.SetPortfolioService(portfolioService)
	wsHandler.SetControlHandler(ws.NewMarketEventHandler(engine))

	// Optional session recording
	var recorder *services.SessionRecorder
	if cfg.DatabaseURL != "" {
		if err := database.Connect(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := database.AutoMigrate(); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}

		recorder = services.NewSessionRecorder(
			sessiondao.NewSessionDAO(database.GetDB()),
			tradingdao.NewOrderRecordDAO(database.GetDB()),
		)
		if err := recorder.StartSession(seed, cfg.StartingCash); err != nil {
			log.Fatalf("Failed to start session recording: %v", err)
		}
		ledger.SetRecorder(recorder)
	} else {
		log.Println("DATABASE_URL not set, session recording disabled")
	}

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS middleware for development
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(engine)
	marketHandler := handlers.NewMarketHandler(engine, candles)
	orderHandler := handlers.NewOrderHandler(ledger, engine, portfolioService, wsHandler.GetHub())
	accountHandler := handlers.NewAccountHandler(ledger, portfolioService, wsHandler.GetHub())
	simulationHandler := handlers.NewSimulationHandler(engine)

	// Health check endpoint
	r.GET("/health", healthHandler.Health)

	// WebSocket endpoint
	r.GET("/ws", wsHandler.HandleWebSocket)

	// API routes group
	api := r.Group("/api/v1")
	{
		api.GET("/health", healthHandler.Health)

		// Market data endpoints
		marketGroup := api.Group("/market")
		{
			marketGroup.GET("/watchlist", marketHandler.GetWatchlist)
			marketGroup.GET("/candles", marketHandler.GetCandles)
			marketGroup.POST("/track", marketHandler.TrackSymbol)
		}

		// Order endpoints
		orders := api.Group("/orders")
		{
			orders.POST("/buy", orderHandler.Buy)
			orders.POST("/sell", orderHandler.Sell)
		}

		// Account endpoints
		account := api.Group("/account")
		{
			account.GET("/portfolio", accountHandler.GetPortfolio)
			account.GET("/orders", accountHandler.GetOrders)
			account.POST("/deposit", accountHandler.Deposit)
			account.POST("/withdraw", accountHandler.Withdraw)
		}

		// Simulation control endpoints
		handlers.RegisterSimulationRoutes(api, simulationHandler)
	}

	// Start the market feed
	if err := engine.Start(); err != nil {
		log.Fatalf("Failed to start market engine: %v", err)
	}

	// Start server
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := r.Run(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	engine.Stop()
	engine.Cleanup()
	if recorder != nil {
		recorder.CloseSession(portfolioService.Summary().TotalValue)
	}
}
