package websocket

import (
	"encoding/json"

	"github.com/vivekxkt/trading-app/internal/engines/simulation"
	"github.com/vivekxkt/trading-app/internal/types"
)

// Market control message structures
type TrackSymbolData struct {
	Symbol string `json:"symbol"`
}

type ControlResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// MarketEventHandler handles market control messages from clients
type MarketEventHandler struct {
	engine *simulation.MarketEngine
}

// NewMarketEventHandler creates a new market event handler
func NewMarketEventHandler(engine *simulation.MarketEngine) *MarketEventHandler {
	return &MarketEventHandler{engine: engine}
}

// HandleMessage handles market control messages
func (h *MarketEventHandler) HandleMessage(client *Client, message types.WebSocketMessage) error {
	switch message.Type {
	case types.TrackSymbol:
		return h.handleTrackSymbol(client, message.Data)
	case types.EngineGetStatus:
		return h.handleGetStatus(client)
	default:
		client.SendError("Unknown market message", string(message.Type))
		return nil
	}
}

// handleTrackSymbol switches the charted symbol for all viewers
func (h *MarketEventHandler) handleTrackSymbol(client *Client, data interface{}) error {
	dataBytes, _ := json.Marshal(data)
	var trackData TrackSymbolData
	if err := json.Unmarshal(dataBytes, &trackData); err != nil {
		client.SendError("Invalid track symbol data", err.Error())
		return nil
	}

	if err := h.engine.SetTrackedSymbol(trackData.Symbol); err != nil {
		client.SendError("Failed to track symbol", err.Error())
		return nil
	}

	client.SendMessage(types.WebSocketMessage{
		Type: types.EngineStatus,
		Data: ControlResponse{
			Success: true,
			Message: "Tracking " + trackData.Symbol,
			Data:    h.engine.Status(),
		},
	})
	return nil
}

// handleGetStatus sends the engine status to the requesting client
func (h *MarketEventHandler) handleGetStatus(client *Client) error {
	client.SendMessage(types.WebSocketMessage{
		Type: types.EngineStatus,
		Data: h.engine.Status(),
	})
	return nil
}
