package trading

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math"
	mrand "math/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vivekxkt/trading-app/internal/models"
)

// OrderLogLimit caps the in-memory order log, newest first.
const OrderLogLimit = 60

// OrderRecorder receives every filled order for out-of-band persistence.
// Implementations must not block.
type OrderRecorder interface {
	RecordOrder(order models.Order)
}

// Ledger owns the cash balance, holdings and order log for one trading
// session. All operations are atomic: a validation failure leaves every
// field untouched, and cash is rounded to two decimals only at commit.
type Ledger struct {
	mu       sync.Mutex
	cash     float64
	holdings map[string]*models.Holding
	orders   []models.Order
	entropy  io.Reader
	recorder OrderRecorder
}

func NewLedger(startingCash float64) *Ledger {
	var seed int64
	if err := binary.Read(crand.Reader, binary.BigEndian, &seed); err != nil {
		seed = time.Now().UnixNano()
	}
	return &Ledger{
		cash:     startingCash,
		holdings: make(map[string]*models.Holding),
		entropy:  ulid.Monotonic(mrand.New(mrand.NewSource(seed)), 0),
	}
}

// SetRecorder attaches an order recorder. Pass nil to detach.
func (l *Ledger) SetRecorder(recorder OrderRecorder) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recorder = recorder
}

// Buy fills a market buy at the given price, debiting turnover plus the
// full charge stack. Optional stop loss and target levels attach to the
// holding; on an existing holding they only apply where no level is set
// yet, and the average price becomes the quantity-weighted mean of the
// old position and the new fill.
func (l *Ledger) Buy(symbol string, quantity, price float64, stopLoss, target *float64) (*models.Order, error) {
	if !positiveFinite(quantity) {
		return nil, fmt.Errorf("buy %s: %w", symbol, ErrInvalidQuantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	charges := ComputeCharges(models.SideBuy, quantity, price)
	totalDebit := quantity*price + charges.Total
	if totalDebit > l.cash {
		return nil, fmt.Errorf("buy %s: need %.2f, have %.2f: %w", symbol, totalDebit, l.cash, ErrInsufficientFunds)
	}

	order := l.appendOrder(symbol, models.SideBuy, quantity, price, charges.Total)
	l.cash = models.Round2(l.cash - totalDebit)

	if h, ok := l.holdings[symbol]; ok {
		h.AvgPrice = (h.Quantity*h.AvgPrice + quantity*price) / (h.Quantity + quantity)
		h.Quantity += quantity
		if h.StopLoss == nil {
			h.StopLoss = cloneLevel(stopLoss)
		}
		if h.Target == nil {
			h.Target = cloneLevel(target)
		}
	} else {
		l.holdings[symbol] = &models.Holding{
			Symbol:   symbol,
			Quantity: quantity,
			AvgPrice: price,
			StopLoss: cloneLevel(stopLoss),
			Target:   cloneLevel(target),
		}
	}

	l.record(order)
	log.Printf("Filled BUY %s x%.2f @ %.2f, fees %.2f, cash %.2f", symbol, quantity, price, charges.Total, l.cash)
	return &order, nil
}

// Sell fills a market sell at the given price, crediting turnover minus
// the full charge stack. The position's average price never changes on a
// sell, and selling the entire quantity removes the holding.
func (l *Ledger) Sell(symbol string, quantity, price float64) (*models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sellLocked(symbol, quantity, price)
}

func (l *Ledger) sellLocked(symbol string, quantity, price float64) (*models.Order, error) {
	if !positiveFinite(quantity) {
		return nil, fmt.Errorf("sell %s: %w", symbol, ErrInvalidQuantity)
	}
	h, ok := l.holdings[symbol]
	if !ok {
		return nil, fmt.Errorf("sell %s: %w", symbol, ErrNoSuchHolding)
	}
	if quantity > h.Quantity {
		return nil, fmt.Errorf("sell %s: want %.2f, hold %.2f: %w", symbol, quantity, h.Quantity, ErrInsufficientQuantity)
	}

	charges := ComputeCharges(models.SideSell, quantity, price)
	netCredit := quantity*price - charges.Total

	order := l.appendOrder(symbol, models.SideSell, quantity, price, charges.Total)
	l.cash = models.Round2(l.cash + netCredit)

	h.Quantity -= quantity
	if h.Quantity <= 0 {
		delete(l.holdings, symbol)
	}

	l.record(order)
	log.Printf("Filled SELL %s x%.2f @ %.2f, fees %.2f, cash %.2f", symbol, quantity, price, charges.Total, l.cash)
	return &order, nil
}

// Deposit adds cash to the balance.
func (l *Ledger) Deposit(amount float64) error {
	if !positiveFinite(amount) {
		return fmt.Errorf("deposit: %w", ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cash = models.Round2(l.cash + amount)
	return nil
}

// Withdraw removes cash from the balance.
func (l *Ledger) Withdraw(amount float64) error {
	if !positiveFinite(amount) {
		return fmt.Errorf("withdraw: %w", ErrInvalidAmount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount > l.cash {
		return fmt.Errorf("withdraw: need %.2f, have %.2f: %w", amount, l.cash, ErrInsufficientFunds)
	}
	l.cash = models.Round2(l.cash - amount)
	return nil
}

// Snapshot returns a consistent copy of the ledger: cash, holdings
// sorted by symbol and the order log newest first.
func (l *Ledger) Snapshot() models.LedgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	holdings := make([]models.Holding, 0, len(l.holdings))
	for _, h := range l.holdings {
		holdings = append(holdings, cloneHolding(h))
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })

	orders := make([]models.Order, len(l.orders))
	copy(orders, l.orders)

	return models.LedgerSnapshot{Cash: l.cash, Holdings: holdings, Orders: orders}
}

func (l *Ledger) Cash() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash
}

// Holding returns a copy of the position for one symbol.
func (l *Ledger) Holding(symbol string) (models.Holding, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.holdings[symbol]
	if !ok {
		return models.Holding{}, false
	}
	return cloneHolding(h), true
}

// HeldSymbols returns the symbols with open positions in ascending
// order.
func (l *Ledger) HeldSymbols() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	symbols := make([]string, 0, len(l.holdings))
	for s := range l.holdings {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

func (l *Ledger) appendOrder(symbol string, side models.Side, quantity, price, feesTotal float64) models.Order {
	now := time.Now()
	order := models.Order{
		ID:        ulid.MustNew(ulid.Timestamp(now), l.entropy).String(),
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
		FillPrice: price,
		FeesTotal: feesTotal,
		Status:    models.OrderStatusFilled,
		PlacedAt:  now,
	}
	l.orders = append([]models.Order{order}, l.orders...)
	if len(l.orders) > OrderLogLimit {
		l.orders = l.orders[:OrderLogLimit]
	}
	return order
}

func (l *Ledger) record(order models.Order) {
	if l.recorder != nil {
		l.recorder.RecordOrder(order)
	}
}

// cloneHolding copies a holding so its exit level pointers never alias
// ledger state across the mutex.
func cloneHolding(h *models.Holding) models.Holding {
	c := *h
	c.StopLoss = cloneLevel(h.StopLoss)
	c.Target = cloneLevel(h.Target)
	return c
}

func cloneLevel(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
