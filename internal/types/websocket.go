package types

import "github.com/vivekxkt/trading-app/internal/models"

// MessageType defines the type of WebSocket message
type MessageType string

const (
	ConnectionStatus MessageType = "connection_status"
	EngineStatus     MessageType = "engine_status"
	WatchlistUpdate  MessageType = "watchlist_update"
	CandleUpdate     MessageType = "candle_update"
	PortfolioUpdate  MessageType = "portfolio_update"
	OrderUpdate      MessageType = "order_update"
	AutoExitAlert    MessageType = "auto_exit"
	Error            MessageType = "error"
	// Client control messages
	TrackSymbol     MessageType = "track_symbol"
	EngineGetStatus MessageType = "engine_get_status"
)

// WebSocketMessage represents a WebSocket message
type WebSocketMessage struct {
	Type MessageType `json:"type"`
	Data interface{} `json:"data"`
}

// ConnectionStatusData represents connection status message data
type ConnectionStatusData struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// WatchlistUpdateData carries every instrument's latest tick.
type WatchlistUpdateData struct {
	Instruments []models.Instrument `json:"instruments"`
	Timestamp   int64               `json:"timestamp"`
}

// CandleUpdateData carries the tracked symbol's newest candle. Sealed is
// set on the tick a candle completes so charts can finalize the bar.
type CandleUpdateData struct {
	Symbol    string         `json:"symbol"`
	Latest    models.Candle  `json:"latest"`
	Sealed    *models.Candle `json:"sealed,omitempty"`
	Count     int            `json:"count"`
	Timestamp int64          `json:"timestamp"`
}
