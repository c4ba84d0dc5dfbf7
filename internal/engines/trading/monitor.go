package trading

import (
	"log"

	"github.com/vivekxkt/trading-app/internal/models"
)

// ExitReason labels why the monitor closed a position.
type ExitReason string

const (
	ExitTarget   ExitReason = "target"
	ExitStopLoss ExitReason = "stop_loss"
)

// AutoExit describes one position the monitor closed during a cycle.
type AutoExit struct {
	Order  *models.Order `json:"order"`
	Symbol string        `json:"symbol"`
	Reason ExitReason    `json:"reason"`
	Price  float64       `json:"price"`
}

// Monitor watches open positions and sells the full quantity when the
// last traded price crosses a holding's target or stop loss level.
type Monitor struct {
	ledger *Ledger
}

func NewMonitor(ledger *Ledger) *Monitor {
	return &Monitor{ledger: ledger}
}

// CheckExits evaluates every holding once against the given prices, in
// ascending symbol order. The target check runs before the stop check,
// and the holding is re-read in between so a position closed by the
// first can never be sold twice.
func (m *Monitor) CheckExits(prices map[string]float64) []AutoExit {
	var exits []AutoExit
	for _, symbol := range m.ledger.HeldSymbols() {
		ltp, ok := prices[symbol]
		if !ok {
			continue
		}

		if h, held := m.ledger.Holding(symbol); held && h.Target != nil && ltp >= *h.Target && h.Quantity > 0 {
			if exit := m.sellAll(symbol, h.Quantity, ltp, ExitTarget); exit != nil {
				exits = append(exits, *exit)
			}
		}
		if h, held := m.ledger.Holding(symbol); held && h.StopLoss != nil && ltp <= *h.StopLoss && h.Quantity > 0 {
			if exit := m.sellAll(symbol, h.Quantity, ltp, ExitStopLoss); exit != nil {
				exits = append(exits, *exit)
			}
		}
	}
	return exits
}

func (m *Monitor) sellAll(symbol string, quantity, price float64, reason ExitReason) *AutoExit {
	order, err := m.ledger.Sell(symbol, quantity, price)
	if err != nil {
		log.Printf("Auto exit %s for %s failed: %v", reason, symbol, err)
		return nil
	}
	log.Printf("Auto exit %s: sold %s x%.2f @ %.2f", reason, symbol, quantity, price)
	return &AutoExit{Order: order, Symbol: symbol, Reason: reason, Price: price}
}
