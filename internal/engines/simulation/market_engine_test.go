package simulation

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivekxkt/trading-app/internal/engines/pricing"
	"github.com/vivekxkt/trading-app/internal/engines/trading"
	"github.com/vivekxkt/trading-app/internal/interfaces"
	"github.com/vivekxkt/trading-app/internal/models"
	"github.com/vivekxkt/trading-app/internal/services"
	"github.com/vivekxkt/trading-app/internal/services/market"
	"github.com/vivekxkt/trading-app/internal/types"
)

// fakeHub records broadcast message types for assertions.
type fakeHub struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeHub) Broadcast(msgType types.MessageType, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, string(msgType))
}

func (f *fakeHub) seen(msgType types.MessageType) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e == string(msgType) {
			return true
		}
	}
	return false
}

func testInstruments() []*models.Instrument {
	return []*models.Instrument{
		{Symbol: "INFY", Name: "Infosys", LastPrice: 1815.75},
		{Symbol: "RELIANCE", Name: "Reliance Industries", LastPrice: 2975.40},
		{Symbol: "TCS", Name: "Tata Consultancy Services", LastPrice: 4012.55},
	}
}

// newTestEngine builds an engine with a base interval so long that the
// run loop's ticker never fires; tests step it with RunCycle directly.
func newTestEngine(t *testing.T, hub *fakeHub) (*MarketEngine, *trading.Ledger, *market.CandleService) {
	t.Helper()

	generator := pricing.NewGenerator(7)
	candles := market.NewCandleService()
	ledger := trading.NewLedger(100000)
	monitor := trading.NewMonitor(ledger)

	var hubIface interfaces.Hub
	if hub != nil {
		hubIface = hub
	}
	engine := NewMarketEngine(testInstruments(), generator, candles, ledger, monitor, hubIface, time.Hour)
	t.Cleanup(engine.Cleanup)
	return engine, ledger, candles
}

func TestNewEngineTracksFirstSymbol(t *testing.T) {
	t.Parallel()
	engine, _, candles := newTestEngine(t, nil)

	status := engine.Status()
	assert.Equal(t, string(StateStopped), status.State)
	assert.Equal(t, 1, status.Speed)
	assert.Equal(t, "INFY", status.Tracked)
	assert.Equal(t, "INFY", candles.Tracked())
	assert.False(t, status.IsRunning)
	assert.Zero(t, status.Cycles)
}

func TestStartRejectsDoubleStart(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(t, nil)

	require.NoError(t, engine.Start())
	status := engine.Status()
	assert.Equal(t, string(StatePlaying), status.State)
	assert.True(t, status.IsRunning)

	assert.Error(t, engine.Start())
	require.NoError(t, engine.Stop())
}

func TestStartRequiresInstruments(t *testing.T) {
	t.Parallel()
	generator := pricing.NewGenerator(7)
	candles := market.NewCandleService()
	ledger := trading.NewLedger(100000)
	monitor := trading.NewMonitor(ledger)
	engine := NewMarketEngine(nil, generator, candles, ledger, monitor, nil, time.Hour)
	t.Cleanup(engine.Cleanup)

	assert.Error(t, engine.Start())
}

func TestRunCycleAdvancesPricesAndCandles(t *testing.T) {
	t.Parallel()
	engine, _, candles := newTestEngine(t, nil)
	require.NoError(t, engine.Start())

	for i := 0; i < 7; i++ {
		engine.RunCycle()
	}
	assert.Equal(t, int64(7), engine.Cycles())

	for _, inst := range engine.Watchlist() {
		assert.Greater(t, inst.LastPrice, 0.0)
		assert.Equal(t, models.Round2(inst.LastPrice), inst.LastPrice, "price should be rounded to 2dp")
		assert.Equal(t, models.Round2(inst.ChangeAbs), inst.ChangeAbs)
		assert.Equal(t, models.Round2(inst.ChangePct), inst.ChangePct)
	}

	// Six ticks seal the first candle and open a second at its close;
	// the seventh lands in the new open candle.
	history := candles.History("INFY")
	require.Len(t, history, 2)
	sealed, open := history[0], history[1]
	assert.Equal(t, models.CandleTicks, sealed.TickCount)
	assert.Equal(t, 1, open.TickCount)
	assert.Equal(t, sealed.Close, open.Open)
	assert.GreaterOrEqual(t, sealed.High, sealed.Low)

	// Untracked symbols accumulate no candles.
	assert.Nil(t, candles.History("RELIANCE"))
}

func TestRunCycleNoOpUnlessPlaying(t *testing.T) {
	t.Parallel()
	engine, _, candles := newTestEngine(t, nil)

	before := engine.LatestPrices()
	engine.RunCycle()
	assert.Zero(t, engine.Cycles())
	assert.Equal(t, before, engine.LatestPrices())
	assert.Nil(t, candles.History("INFY"))
}

func TestPauseAndResumeGateCycles(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(t, nil)

	assert.Error(t, engine.Pause(), "pause before start should fail")

	require.NoError(t, engine.Start())
	engine.RunCycle()
	require.Equal(t, int64(1), engine.Cycles())

	require.NoError(t, engine.Pause())
	assert.Equal(t, string(StatePaused), engine.Status().State)
	assert.Error(t, engine.Pause())

	engine.RunCycle()
	assert.Equal(t, int64(1), engine.Cycles(), "paused engine must not advance")

	require.NoError(t, engine.Resume())
	assert.Error(t, engine.Resume())
	engine.RunCycle()
	assert.Equal(t, int64(2), engine.Cycles())
}

func TestStopIsIdempotent(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(t, nil)

	require.NoError(t, engine.Start())
	engine.RunCycle()

	require.NoError(t, engine.Stop())
	assert.Equal(t, string(StateStopped), engine.Status().State)
	require.NoError(t, engine.Stop())

	engine.RunCycle()
	assert.Equal(t, int64(1), engine.Cycles(), "stopped engine must not advance")
}

func TestSetSpeedValidatesMultiplier(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(t, nil)

	for _, speed := range []int{0, -1, 3, 4, 100} {
		assert.Error(t, engine.SetSpeed(speed), "speed %d should be rejected", speed)
	}
	for _, speed := range []int{1, 2, 5, 10} {
		require.NoError(t, engine.SetSpeed(speed))
	}
	assert.Equal(t, 10, engine.Status().Speed)
}

func TestSetSpeedWhilePlayingReachesRunLoop(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(t, nil)
	require.NoError(t, engine.Start())

	require.NoError(t, engine.SetSpeed(5))
	require.Eventually(t, func() bool {
		return engine.Status().Speed == 5
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSetSpeedWhilePausedReArmsTicker(t *testing.T) {
	t.Parallel()

	generator := pricing.NewGenerator(7)
	candles := market.NewCandleService()
	ledger := trading.NewLedger(100000)
	monitor := trading.NewMonitor(ledger)

	// A real, short interval: the ticker cadence is the subject here.
	engine := NewMarketEngine(testInstruments(), generator, candles, ledger, monitor, nil, 400*time.Millisecond)
	t.Cleanup(engine.Cleanup)

	require.NoError(t, engine.Start())
	require.NoError(t, engine.Pause())
	require.NoError(t, engine.SetSpeed(10))

	// The run loop applies the change while still paused.
	require.Eventually(t, func() bool {
		return engine.Status().Speed == 10
	}, 2*time.Second, 10*time.Millisecond)

	start := engine.Cycles()
	require.NoError(t, engine.Resume())

	// At 10x the cadence is 40ms. The pre-change 400ms cadence could not
	// deliver a single cycle inside this window.
	require.Eventually(t, func() bool {
		return engine.Cycles() >= start+2
	}, 250*time.Millisecond, 10*time.Millisecond)
}

func TestSetTrackedSymbolValidatesAndSwitches(t *testing.T) {
	t.Parallel()
	engine, _, candles := newTestEngine(t, nil)

	assert.Error(t, engine.SetTrackedSymbol("NOPE"))
	assert.Equal(t, "INFY", candles.Tracked())

	require.NoError(t, engine.SetTrackedSymbol("TCS"))
	assert.Equal(t, "TCS", candles.Tracked())
}

func TestSetTrackedSymbolWhilePlaying(t *testing.T) {
	t.Parallel()
	engine, _, candles := newTestEngine(t, nil)
	require.NoError(t, engine.Start())

	require.NoError(t, engine.SetTrackedSymbol("RELIANCE"))
	require.Eventually(t, func() bool {
		return candles.Tracked() == "RELIANCE"
	}, 2*time.Second, 10*time.Millisecond)

	engine.RunCycle()
	assert.Len(t, candles.History("RELIANCE"), 1)
}

func TestCycleTriggersAutoExit(t *testing.T) {
	t.Parallel()
	engine, ledger, _ := newTestEngine(t, nil)
	require.NoError(t, engine.Start())

	price, ok := engine.LatestPrice("RELIANCE")
	require.True(t, ok)

	// Target far below the current price fires on the very next cycle.
	target := models.Round2(price * 0.5)
	_, err := ledger.Buy("RELIANCE", 2, price, nil, &target)
	require.NoError(t, err)

	engine.RunCycle()

	_, held := ledger.Holding("RELIANCE")
	assert.False(t, held, "position should be closed by the monitor")

	snapshot := ledger.Snapshot()
	require.Len(t, snapshot.Orders, 2)
	assert.Equal(t, models.SideSell, snapshot.Orders[0].Side)
	assert.Equal(t, "RELIANCE", snapshot.Orders[0].Symbol)
	assert.Equal(t, 2.0, snapshot.Orders[0].Quantity)
}

func TestCycleBroadcastsMarketData(t *testing.T) {
	t.Parallel()
	hub := &fakeHub{}
	engine, ledger, _ := newTestEngine(t, hub)

	require.NoError(t, engine.Start())
	assert.True(t, hub.seen(types.EngineStatus))

	engine.RunCycle()
	assert.True(t, hub.seen(types.WatchlistUpdate))
	assert.True(t, hub.seen(types.CandleUpdate))
	assert.False(t, hub.seen(types.PortfolioUpdate), "no portfolio service wired yet")

	engine.SetPortfolioService(services.NewPortfolioService(ledger, engine))
	engine.RunCycle()
	assert.True(t, hub.seen(types.PortfolioUpdate))
}

func TestWatchlistSortedAndDetached(t *testing.T) {
	t.Parallel()
	engine, _, _ := newTestEngine(t, nil)

	watchlist := engine.Watchlist()
	require.Len(t, watchlist, 3)
	assert.Equal(t, "INFY", watchlist[0].Symbol)
	assert.Equal(t, "RELIANCE", watchlist[1].Symbol)
	assert.Equal(t, "TCS", watchlist[2].Symbol)

	watchlist[0].LastPrice = -1
	price, ok := engine.LatestPrice("INFY")
	require.True(t, ok)
	assert.Equal(t, 1815.75, price)

	_, ok = engine.LatestPrice("NOPE")
	assert.False(t, ok)
}
