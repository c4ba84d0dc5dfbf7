package services

import (
	"github.com/vivekxkt/trading-app/internal/engines/trading"
	"github.com/vivekxkt/trading-app/internal/models"
)

// PriceSource supplies last traded prices for valuation.
type PriceSource interface {
	LatestPrices() map[string]float64
	LatestPrice(symbol string) (float64, bool)
}

// HoldingSummary is one position marked to the last traded price.
type HoldingSummary struct {
	models.Holding
	LastPrice     float64 `json:"lastPrice"`
	MarketValue   float64 `json:"marketValue"`
	InvestedValue float64 `json:"investedValue"`
	UnrealizedPnL float64 `json:"unrealizedPnL"`
	TotalReturn   float64 `json:"totalReturn"` // Percentage return
}

// PortfolioSummary is the account level view: cash plus every position
// marked to market.
type PortfolioSummary struct {
	Cash          float64          `json:"cash"`
	Holdings      []HoldingSummary `json:"holdings"`
	MarketValue   float64          `json:"marketValue"`
	InvestedValue float64          `json:"investedValue"`
	TotalPnL      float64          `json:"totalPnL"`
	TotalValue    float64          `json:"totalValue"`
}

// PortfolioService values the ledger against live prices.
type PortfolioService struct {
	ledger *trading.Ledger
	prices PriceSource
}

func NewPortfolioService(ledger *trading.Ledger, prices PriceSource) *PortfolioService {
	return &PortfolioService{ledger: ledger, prices: prices}
}

// Summary marks every holding to the latest price. A symbol with no
// quote yet is valued at its own average price, so a fresh position
// shows zero unrealized profit rather than a phantom loss.
func (ps *PortfolioService) Summary() *PortfolioSummary {
	snapshot := ps.ledger.Snapshot()
	quotes := ps.prices.LatestPrices()

	summary := &PortfolioSummary{
		Cash:     snapshot.Cash,
		Holdings: make([]HoldingSummary, 0, len(snapshot.Holdings)),
	}

	var marketValue, investedValue float64
	for _, h := range snapshot.Holdings {
		ltp, ok := quotes[h.Symbol]
		if !ok {
			ltp = h.AvgPrice
		}

		invested := h.Quantity * h.AvgPrice
		market := h.Quantity * ltp
		pnl := market - invested

		hs := HoldingSummary{
			Holding:       h,
			LastPrice:     ltp,
			MarketValue:   models.Round2(market),
			InvestedValue: models.Round2(invested),
			UnrealizedPnL: models.Round2(pnl),
		}
		if invested != 0 {
			hs.TotalReturn = models.Round2(pnl / invested * 100)
		}
		summary.Holdings = append(summary.Holdings, hs)

		marketValue += market
		investedValue += invested
	}

	summary.MarketValue = models.Round2(marketValue)
	summary.InvestedValue = models.Round2(investedValue)
	summary.TotalPnL = models.Round2(marketValue - investedValue)
	summary.TotalValue = models.Round2(snapshot.Cash + marketValue)
	return summary
}
