package models

import (
	"math"
)

const (
	// CandleTicks is the number of price ticks folded into one candle.
	CandleTicks = 6
	// CandleHistoryLimit caps per-symbol candle history, open candle included.
	CandleHistoryLimit = 300
)

// Instrument represents one simulated stock in the watchlist universe.
// The engine mutates price, drift and change fields on every cycle.
type Instrument struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	LastPrice float64 `json:"lastPrice"`
	Drift     float64 `json:"drift"`
	ChangeAbs float64 `json:"changeAbs"`
	ChangePct float64 `json:"changePct"`
}

// Candle is a fixed-tick OHLC aggregate for one instrument. Exactly one
// open candle exists per tracked symbol; sealed candles are immutable.
type Candle struct {
	ID        int64   `json:"id"`
	TimeLabel string  `json:"time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	TickCount int     `json:"tickCount"`
}

// Round2 rounds a price or money value to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DefaultInstruments returns the fixed simulated universe. Prices are seed
// values only; each run walks them independently from there.
func DefaultInstruments() []*Instrument {
	return []*Instrument{
		{Symbol: "ASIANPAINT", Name: "Asian Paints", LastPrice: 2860.10},
		{Symbol: "BHARTIARTL", Name: "Bharti Airtel", LastPrice: 1542.90},
		{Symbol: "HDFCBANK", Name: "HDFC Bank", LastPrice: 1648.20},
		{Symbol: "ICICIBANK", Name: "ICICI Bank", LastPrice: 1210.35},
		{Symbol: "INFY", Name: "Infosys", LastPrice: 1815.75},
		{Symbol: "ITC", Name: "ITC", LastPrice: 495.25},
		{Symbol: "LT", Name: "Larsen & Toubro", LastPrice: 3612.80},
		{Symbol: "RELIANCE", Name: "Reliance Industries", LastPrice: 2975.40},
		{Symbol: "SBIN", Name: "State Bank of India", LastPrice: 818.60},
		{Symbol: "TATAMOTORS", Name: "Tata Motors", LastPrice: 1075.45},
		{Symbol: "TCS", Name: "Tata Consultancy Services", LastPrice: 4012.55},
		{Symbol: "WIPRO", Name: "Wipro", LastPrice: 528.30},
	}
}
