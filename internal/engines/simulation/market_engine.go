package simulation

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/vivekxkt/trading-app/internal/engines/pricing"
	"github.com/vivekxkt/trading-app/internal/engines/trading"
	"github.com/vivekxkt/trading-app/internal/interfaces"
	"github.com/vivekxkt/trading-app/internal/models"
	"github.com/vivekxkt/trading-app/internal/services"
	"github.com/vivekxkt/trading-app/internal/services/market"
	"github.com/vivekxkt/trading-app/internal/types"
)

type EngineState string

const (
	StateStopped EngineState = "stopped"
	StatePlaying EngineState = "playing"
	StatePaused  EngineState = "paused"
)

// BaseTickInterval is the real-time spacing between cycles at 1x speed.
const BaseTickInterval = 1200 * time.Millisecond

// allowedSpeeds are the supported playback multipliers.
var allowedSpeeds = map[int]bool{1: true, 2: true, 5: true, 10: true}

// MarketEngine is the periodic driver of the whole simulation. Each
// cycle it evolves every instrument's drift and price in ascending
// symbol order, feeds the tracked symbol's price into the candle
// service, runs the position monitor and broadcasts the results.
type MarketEngine struct {
	mu           sync.RWMutex
	state        EngineState
	speed        int
	baseInterval time.Duration
	instruments  map[string]*models.Instrument
	symbols      []string

	generator *pricing.Generator
	candles   *market.CandleService
	ledger    *trading.Ledger
	monitor   *trading.Monitor
	hub       interfaces.Hub
	portfolio *services.PortfolioService

	stopChan        chan struct{}
	speedChangeChan chan int
	trackChangeChan chan string
	ctx             context.Context
	cancel          context.CancelFunc

	cycles int64
}

type EngineStatus struct {
	State     string `json:"state"`
	Speed     int    `json:"speed"`
	Tracked   string `json:"tracked"`
	Cycles    int64  `json:"cycles"`
	IsRunning bool   `json:"isRunning"`
	Message   string `json:"message,omitempty"`
}

func NewMarketEngine(instruments []*models.Instrument, generator *pricing.Generator, candles *market.CandleService, ledger *trading.Ledger, monitor *trading.Monitor, hub interfaces.Hub, baseInterval time.Duration) *MarketEngine {
	ctx, cancel := context.WithCancel(context.Background())

	if baseInterval <= 0 {
		baseInterval = BaseTickInterval
	}

	byName := make(map[string]*models.Instrument, len(instruments))
	symbols := make([]string, 0, len(instruments))
	for _, inst := range instruments {
		byName[inst.Symbol] = inst
		symbols = append(symbols, inst.Symbol)
	}
	sort.Strings(symbols)

	me := &MarketEngine{
		state:           StateStopped,
		speed:           1,
		baseInterval:    baseInterval,
		instruments:     byName,
		symbols:         symbols,
		generator:       generator,
		candles:         candles,
		ledger:          ledger,
		monitor:         monitor,
		hub:             hub,
		stopChan:        make(chan struct{}, 1),
		speedChangeChan: make(chan int, 1),
		trackChangeChan: make(chan string, 1),
		ctx:             ctx,
		cancel:          cancel,
	}

	if len(symbols) > 0 {
		candles.Track(symbols[0])
	}
	return me
}

// SetPortfolioService wires the valuation service used for portfolio
// broadcasts. Set once during startup, before Start.
func (me *MarketEngine) SetPortfolioService(portfolio *services.PortfolioService) {
	me.mu.Lock()
	defer me.mu.Unlock()
	me.portfolio = portfolio
}

func (me *MarketEngine) Start() error {
	me.mu.Lock()
	defer me.mu.Unlock()

	if me.state != StateStopped {
		return fmt.Errorf("simulation already running")
	}
	if len(me.symbols) == 0 {
		return fmt.Errorf("no instruments configured")
	}

	me.state = StatePlaying
	me.stopChan = make(chan struct{}, 1)

	log.Printf("Starting market engine: %d instruments, tracking %s at %dx speed",
		len(me.symbols), me.candles.Tracked(), me.speed)
	me.broadcastStatusUnsafe("Simulation started")

	go me.run()
	return nil
}

func (me *MarketEngine) run() {
	me.mu.RLock()
	interval := me.effectiveInterval()
	stopChan := me.stopChan
	me.mu.RUnlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Market engine loop started with tick interval %v", interval)

	for {
		select {
		case <-ticker.C:
			me.RunCycle()

		case newSpeed := <-me.speedChangeChan:
			me.mu.Lock()
			log.Printf("Received speed change from %dx to %dx", me.speed, newSpeed)
			me.speed = newSpeed
			ticker.Reset(me.effectiveInterval())
			me.broadcastStatusUnsafe(fmt.Sprintf("Speed changed to %dx", newSpeed))
			me.mu.Unlock()

		case symbol := <-me.trackChangeChan:
			me.mu.Lock()
			log.Printf("Received track change to %s", symbol)
			me.candles.Track(symbol)
			me.broadcastStatusUnsafe(fmt.Sprintf("Tracking %s", symbol))
			me.mu.Unlock()

		case <-stopChan:
			log.Printf("Market engine loop stopped via stop channel")
			return
		case <-me.ctx.Done():
			log.Printf("Market engine loop stopped via context")
			return
		}
	}
}

// RunCycle advances the whole market by one tick. It is a no-op unless
// the engine is playing. The run loop calls it on every ticker fire;
// tests call it directly to step deterministically.
func (me *MarketEngine) RunCycle() {
	me.mu.Lock()
	if me.state != StatePlaying {
		me.mu.Unlock()
		return
	}

	timeLabel := time.Now().Format("15:04:05")
	prices := make(map[string]float64, len(me.symbols))
	watchlist := make([]models.Instrument, 0, len(me.symbols))

	for _, symbol := range me.symbols {
		inst := me.instruments[symbol]
		inst.Drift = me.generator.NextDrift(inst.Drift)

		previous := inst.LastPrice
		next := me.generator.NextPrice(previous, inst.Drift)
		inst.ChangeAbs = models.Round2(next - previous)
		if previous != 0 {
			inst.ChangePct = models.Round2((next - previous) / previous * 100)
		} else {
			inst.ChangePct = 0
		}
		inst.LastPrice = next

		prices[symbol] = next
		watchlist = append(watchlist, *inst)
	}

	tracked := me.candles.Tracked()
	var history []models.Candle
	if price, ok := prices[tracked]; ok {
		history = me.candles.Ingest(tracked, price, timeLabel)
	}

	me.cycles++
	me.mu.Unlock()

	exits := me.monitor.CheckExits(prices)
	me.broadcastCycle(watchlist, tracked, history, exits)
}

func (me *MarketEngine) broadcastCycle(watchlist []models.Instrument, tracked string, history []models.Candle, exits []trading.AutoExit) {
	if me.hub == nil {
		return
	}

	now := time.Now().UnixMilli()
	me.hub.Broadcast(types.WatchlistUpdate, types.WatchlistUpdateData{
		Instruments: watchlist,
		Timestamp:   now,
	})

	if len(history) > 0 {
		update := types.CandleUpdateData{
			Symbol:    tracked,
			Latest:    history[len(history)-1],
			Count:     len(history),
			Timestamp: now,
		}
		// A zero tick count on the newest candle means the previous one
		// just sealed; ship it so charts can finalize the bar.
		if update.Latest.TickCount == 0 && len(history) > 1 {
			update.Sealed = &history[len(history)-2]
		}
		me.hub.Broadcast(types.CandleUpdate, update)
	}

	for _, exit := range exits {
		me.hub.Broadcast(types.AutoExitAlert, exit)
	}

	if me.portfolio != nil {
		me.hub.Broadcast(types.PortfolioUpdate, me.portfolio.Summary())
	}
}

func (me *MarketEngine) Pause() error {
	me.mu.Lock()
	defer me.mu.Unlock()

	if me.state != StatePlaying {
		return fmt.Errorf("simulation not playing")
	}

	me.state = StatePaused
	log.Printf("Market engine paused after %d cycles", me.cycles)
	me.broadcastStatusUnsafe("Simulation paused")
	return nil
}

func (me *MarketEngine) Resume() error {
	me.mu.Lock()
	defer me.mu.Unlock()

	if me.state != StatePaused {
		return fmt.Errorf("simulation not paused")
	}

	me.state = StatePlaying
	log.Printf("Market engine resumed")
	me.broadcastStatusUnsafe("Simulation resumed")
	return nil
}

func (me *MarketEngine) Stop() error {
	me.mu.Lock()
	defer me.mu.Unlock()

	if me.state == StateStopped {
		return nil // Already stopped
	}

	me.state = StateStopped

	select {
	case me.stopChan <- struct{}{}:
	default:
	}

	log.Printf("Market engine stopped after %d cycles", me.cycles)
	me.broadcastStatusUnsafe("Simulation stopped")
	return nil
}

// SetSpeed changes the playback multiplier. While the run loop is alive
// (playing or paused) the change is handed to the loop so the ticker
// re-arms between cycles, never in the middle of one; a stopped engine
// takes it directly and the next Start picks it up.
func (me *MarketEngine) SetSpeed(speed int) error {
	me.mu.Lock()
	defer me.mu.Unlock()

	if !allowedSpeeds[speed] {
		return fmt.Errorf("invalid speed: %d, must be one of 1, 2, 5, 10", speed)
	}

	if me.state != StateStopped {
		select {
		case me.speedChangeChan <- speed:
			log.Printf("Speed change request sent: %dx", speed)
		default:
			// Channel full, replace with new value
			select {
			case <-me.speedChangeChan:
			default:
			}
			me.speedChangeChan <- speed
			log.Printf("Speed change request replaced: %dx", speed)
		}
	} else {
		me.speed = speed
		log.Printf("Speed updated directly to %dx (engine stopped)", speed)
		me.broadcastStatusUnsafe(fmt.Sprintf("Speed updated to %dx", speed))
	}

	return nil
}

// SetTrackedSymbol switches which instrument feeds the candle chart.
// The symbol's series restarts from the next tick.
func (me *MarketEngine) SetTrackedSymbol(symbol string) error {
	me.mu.Lock()
	defer me.mu.Unlock()

	if _, ok := me.instruments[symbol]; !ok {
		return fmt.Errorf("unknown symbol: %s", symbol)
	}

	if me.state == StatePlaying {
		select {
		case me.trackChangeChan <- symbol:
			log.Printf("Track change request sent: %s", symbol)
		default:
			select {
			case <-me.trackChangeChan:
			default:
			}
			me.trackChangeChan <- symbol
			log.Printf("Track change request replaced: %s", symbol)
		}
	} else {
		me.candles.Track(symbol)
		log.Printf("Tracked symbol updated directly to %s (engine not playing)", symbol)
		me.broadcastStatusUnsafe(fmt.Sprintf("Tracking %s", symbol))
	}

	return nil
}

func (me *MarketEngine) Status() EngineStatus {
	me.mu.RLock()
	defer me.mu.RUnlock()
	return me.statusUnsafe()
}

// statusUnsafe builds the status without acquiring locks (caller must
// hold the lock).
func (me *MarketEngine) statusUnsafe() EngineStatus {
	return EngineStatus{
		State:     string(me.state),
		Speed:     me.speed,
		Tracked:   me.candles.Tracked(),
		Cycles:    me.cycles,
		IsRunning: me.state == StatePlaying || me.state == StatePaused,
	}
}

func (me *MarketEngine) broadcastStatusUnsafe(message string) {
	if me.hub == nil {
		return
	}
	status := me.statusUnsafe()
	status.Message = message
	me.hub.Broadcast(types.EngineStatus, status)
}

func (me *MarketEngine) effectiveInterval() time.Duration {
	return me.baseInterval / time.Duration(me.speed)
}

func (me *MarketEngine) Cycles() int64 {
	me.mu.RLock()
	defer me.mu.RUnlock()
	return me.cycles
}

// LatestPrices returns the current price of every instrument.
func (me *MarketEngine) LatestPrices() map[string]float64 {
	me.mu.RLock()
	defer me.mu.RUnlock()
	prices := make(map[string]float64, len(me.symbols))
	for symbol, inst := range me.instruments {
		prices[symbol] = inst.LastPrice
	}
	return prices
}

// LatestPrice returns the current price of one instrument.
func (me *MarketEngine) LatestPrice(symbol string) (float64, bool) {
	me.mu.RLock()
	defer me.mu.RUnlock()
	inst, ok := me.instruments[symbol]
	if !ok {
		return 0, false
	}
	return inst.LastPrice, true
}

// Watchlist returns a copy of every instrument for REST responses.
func (me *MarketEngine) Watchlist() []models.Instrument {
	me.mu.RLock()
	defer me.mu.RUnlock()
	out := make([]models.Instrument, 0, len(me.symbols))
	for _, symbol := range me.symbols {
		out = append(out, *me.instruments[symbol])
	}
	return out
}

func (me *MarketEngine) Cleanup() {
	me.mu.Lock()
	defer me.mu.Unlock()

	me.state = StateStopped
	me.cancel()

	select {
	case me.stopChan <- struct{}{}:
	default:
	}

	log.Printf("Market engine cleanup completed")
}
