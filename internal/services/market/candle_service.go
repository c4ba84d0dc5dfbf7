package market

import (
	"sync"

	"github.com/vivekxkt/trading-app/internal/models"
)

const (
	minVisibleCandles = 20
	maxVisibleCandles = 120
)

// series is the per-symbol candle state: the closed history plus the one
// candle currently being built at the tail.
type series struct {
	candles []models.Candle
	nextID  int64
	hasOpen bool
}

// CandleService folds ticks into fixed-size candles, one independent
// series per symbol. Every models.CandleTicks ticks the open candle
// seals and a new one opens at the sealed close, and the combined
// history is capped at models.CandleHistoryLimit candles.
type CandleService struct {
	mu      sync.RWMutex
	series  map[string]*series
	tracked string
}

func NewCandleService() *CandleService {
	return &CandleService{series: make(map[string]*series)}
}

// Ingest applies one tick to a symbol's series and returns a copy of the
// full candle history including the open candle.
func (s *CandleService) Ingest(symbol string, price float64, timeLabel string) []models.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()

	sr := s.series[symbol]
	if sr == nil {
		sr = &series{}
		s.series[symbol] = sr
	}

	if !sr.hasOpen {
		sr.candles = append(sr.candles, models.Candle{
			ID:        sr.nextID,
			TimeLabel: timeLabel,
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			TickCount: 1,
		})
		sr.nextID++
		sr.hasOpen = true
	} else {
		open := &sr.candles[len(sr.candles)-1]
		if price > open.High {
			open.High = price
		}
		if price < open.Low {
			open.Low = price
		}
		open.Close = price
		open.TickCount++
		open.TimeLabel = timeLabel
	}

	if sealed := &sr.candles[len(sr.candles)-1]; sealed.TickCount >= models.CandleTicks {
		sr.candles = append(sr.candles, models.Candle{
			ID:        sr.nextID,
			TimeLabel: timeLabel,
			Open:      sealed.Close,
			High:      sealed.Close,
			Low:       sealed.Close,
			Close:     sealed.Close,
			TickCount: 0,
		})
		sr.nextID++
	}

	if over := len(sr.candles) - models.CandleHistoryLimit; over > 0 {
		sr.candles = sr.candles[over:]
	}

	out := make([]models.Candle, len(sr.candles))
	copy(out, sr.candles)
	return out
}

// Track switches the actively charted symbol and resets that symbol's
// series so the chart rebuilds from the next tick. Other symbols keep
// their history.
func (s *CandleService) Track(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.series, symbol)
	s.tracked = symbol
}

func (s *CandleService) Tracked() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracked
}

// History returns a copy of a symbol's candles, oldest first.
func (s *CandleService) History(symbol string) []models.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sr := s.series[symbol]
	if sr == nil {
		return nil
	}
	out := make([]models.Candle, len(sr.candles))
	copy(out, sr.candles)
	return out
}

// Window returns the visible slice of a symbol's history for a chart
// viewport. visibleCount is clamped to [minVisibleCandles,
// maxVisibleCandles] and panOffset counts candles back from the newest
// edge, clamped so at least minVisibleCandles stay reachable.
func (s *CandleService) Window(symbol string, visibleCount, panOffset int) []models.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sr := s.series[symbol]
	if sr == nil {
		return nil
	}
	return windowOf(sr.candles, visibleCount, panOffset)
}

func windowOf(candles []models.Candle, visibleCount, panOffset int) []models.Candle {
	if visibleCount < minVisibleCandles {
		visibleCount = minVisibleCandles
	}
	if visibleCount > maxVisibleCandles {
		visibleCount = maxVisibleCandles
	}

	maxPan := len(candles) - minVisibleCandles
	if maxPan < 0 {
		maxPan = 0
	}
	if panOffset < 0 {
		panOffset = 0
	}
	if panOffset > maxPan {
		panOffset = maxPan
	}

	end := len(candles) - panOffset
	if end < 0 {
		end = 0
	}
	start := end - visibleCount
	if start < 0 {
		start = 0
	}

	out := make([]models.Candle, end-start)
	copy(out, candles[start:end])
	return out
}
