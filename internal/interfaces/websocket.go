package interfaces

import "github.com/vivekxkt/trading-app/internal/types"

// Hub interface to avoid import cycles: engines and services push events
// through it without importing the handler packages.
type Hub interface {
	Broadcast(msgType types.MessageType, data interface{})
}
