package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/vivekxkt/trading-app/internal/engines/pricing"
	"github.com/vivekxkt/trading-app/internal/engines/trading"
	"github.com/vivekxkt/trading-app/internal/models"
	"github.com/vivekxkt/trading-app/internal/services"
	"github.com/vivekxkt/trading-app/internal/services/market"
)

// demoPrices satisfies services.PriceSource for the headless run.
type demoPrices map[string]float64

func (d demoPrices) LatestPrices() map[string]float64 { return d }

func (d demoPrices) LatestPrice(symbol string) (float64, bool) {
	p, ok := d[symbol]
	return p, ok
}

func main() {
	seed := flag.Int64("seed", 42, "price generator seed")
	ticks := flag.Int("ticks", 240, "number of market ticks to simulate")
	cash := flag.Float64("cash", 100000, "starting cash")
	flag.Parse()

	generator := pricing.NewGenerator(*seed)
	candles := market.NewCandleService()
	ledger := trading.NewLedger(*cash)
	monitor := trading.NewMonitor(ledger)

	instruments := models.DefaultInstruments()
	prices := make(demoPrices, len(instruments))
	for _, inst := range instruments {
		prices[inst.Symbol] = inst.LastPrice
	}
	portfolio := services.NewPortfolioService(ledger, prices)

	tracked := "RELIANCE"
	candles.Track(tracked)

	fmt.Printf("Paper trading session: seed %d, %d ticks, %.2f starting cash\n\n", *seed, *ticks, *cash)

	// Scripted account activity before the market moves.
	if err := ledger.Deposit(20000); err != nil {
		log.Fatalf("deposit failed: %v", err)
	}

	level := func(symbol string, pct float64) *float64 {
		v := models.Round2(prices[symbol] * (1 + pct/100))
		return &v
	}
	buys := []struct {
		symbol   string
		quantity float64
		stopLoss *float64
		target   *float64
	}{
		{"RELIANCE", 10, level("RELIANCE", -0.25), level("RELIANCE", 0.25)},
		{"INFY", 20, nil, nil},
		{"TCS", 5, nil, level("TCS", 0.15)},
		{"SBIN", 50, level("SBIN", -0.15), nil},
	}
	for _, b := range buys {
		if _, err := ledger.Buy(b.symbol, b.quantity, prices[b.symbol], b.stopLoss, b.target); err != nil {
			log.Fatalf("buy %s failed: %v", b.symbol, err)
		}
	}

	// Drive the market. Each tick advances every instrument, feeds the
	// tracked symbol's candle series and lets the monitor close any
	// position whose stop or target is crossed.
	start := time.Now()
	exitCount := 0
	for i := 0; i < *ticks; i++ {
		label := start.Add(time.Duration(i) * 1200 * time.Millisecond).Format("15:04:05")
		for _, inst := range instruments {
			inst.Drift = generator.NextDrift(inst.Drift)
			inst.LastPrice = generator.NextPrice(inst.LastPrice, inst.Drift)
			prices[inst.Symbol] = inst.LastPrice
		}
		candles.Ingest(tracked, prices[tracked], label)

		for _, exit := range monitor.CheckExits(prices) {
			exitCount++
			fmt.Printf("tick %3d  auto exit (%s): sold %s x%.0f @ %.2f\n",
				i+1, exit.Reason, exit.Symbol, exit.Order.Quantity, exit.Price)
		}
	}

	// A manual partial sell at the final price, if the position survived.
	if h, ok := ledger.Holding("INFY"); ok {
		if _, err := ledger.Sell("INFY", h.Quantity/2, prices["INFY"]); err != nil {
			log.Fatalf("sell INFY failed: %v", err)
		}
	}

	history := candles.History(tracked)
	fmt.Printf("\n%d ticks complete: %d candles on %s, %d auto exits\n\n", *ticks, len(history), tracked, exitCount)

	printWatchlist(instruments)
	printOrders(ledger.Snapshot().Orders)
	printPortfolio(portfolio.Summary())
}

func printWatchlist(instruments []*models.Instrument) {
	fmt.Println("Watchlist")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Symbol", "Name", "LTP", "Drift")
	for _, inst := range instruments {
		table.Append(inst.Symbol, inst.Name,
			fmt.Sprintf("%.2f", inst.LastPrice),
			fmt.Sprintf("%+.5f%%", inst.Drift*100))
	}
	table.Render()
	fmt.Println()
}

func printOrders(orders []models.Order) {
	fmt.Println("Order log (newest first)")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Side", "Symbol", "Qty", "Price", "Fees", "Status")
	for _, o := range orders {
		table.Append(string(o.Side), o.Symbol,
			fmt.Sprintf("%.0f", o.Quantity),
			fmt.Sprintf("%.2f", o.FillPrice),
			fmt.Sprintf("%.2f", o.FeesTotal),
			string(o.Status))
	}
	table.Render()
	fmt.Println()
}

func printPortfolio(summary *services.PortfolioSummary) {
	fmt.Println("Portfolio")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Symbol", "Qty", "Avg", "LTP", "Value", "P&L", "Return")
	for _, h := range summary.Holdings {
		table.Append(h.Symbol,
			fmt.Sprintf("%.0f", h.Quantity),
			fmt.Sprintf("%.2f", h.AvgPrice),
			fmt.Sprintf("%.2f", h.LastPrice),
			fmt.Sprintf("%.2f", h.MarketValue),
			fmt.Sprintf("%+.2f", h.UnrealizedPnL),
			fmt.Sprintf("%+.2f%%", h.TotalReturn))
	}
	table.Render()

	fmt.Printf("\nCash:          %12.2f\n", summary.Cash)
	fmt.Printf("Invested:      %12.2f\n", summary.InvestedValue)
	fmt.Printf("Market value:  %12.2f\n", summary.MarketValue)
	fmt.Printf("Total P&L:     %+12.2f\n", summary.TotalPnL)
	fmt.Printf("Account value: %12.2f\n", summary.TotalValue)
}
