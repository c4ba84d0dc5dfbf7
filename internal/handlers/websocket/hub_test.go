package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivekxkt/trading-app/internal/types"
)

func TestLateSendAfterCloseIsDropped(t *testing.T) {
	t.Parallel()

	client := &Client{Send: make(chan []byte, 4), ID: "client_gone"}
	client.closeSend()
	client.closeSend() // second close is a no-op

	// A control reply arriving after the hub dropped the client must be
	// discarded, not sent on the closed channel.
	require.NotPanics(t, func() {
		client.SendMessage(types.WebSocketMessage{Type: types.EngineStatus, Data: "late reply"})
		client.SendError("Control handler not available", "late reply")
	})

	_, ok := <-client.Send
	assert.False(t, ok)
}

func TestHubEvictsUnresponsiveClientsAndKeepsServing(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	go hub.Run()

	healthy := &Client{Send: make(chan []byte, 8), Hub: hub, ID: "client_ok"}
	slow := &Client{Send: make(chan []byte, 1), Hub: hub, ID: "client_slow"}
	stuck := &Client{Send: make(chan []byte, 1), Hub: hub, ID: "client_stuck"}
	stuck.Send <- []byte("{}") // no room left, not even for the greeting

	hub.RegisterClient(healthy)
	hub.RegisterClient(slow)
	hub.RegisterClient(stuck)

	// The stuck client cannot take the connection greeting and is
	// dropped at registration; healthy and slow stay.
	require.Eventually(t, func() bool {
		return hub.GetClientCount() == 2
	}, 2*time.Second, 10*time.Millisecond)

	// The greeting filled slow's buffer, so this broadcast evicts it
	// while healthy keeps receiving.
	hub.Broadcast(types.WatchlistUpdate, map[string]int{"instruments": 3})
	require.Eventually(t, func() bool {
		return hub.GetClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, healthy.Send, 2)

	// Late replies to evicted clients are discarded.
	require.NotPanics(t, func() {
		slow.SendMessage(types.WebSocketMessage{Type: types.EngineStatus, Data: "late"})
		stuck.SendError("Control handler not available", "late")
	})

	// The evicted client's read pump still unregisters on its way out;
	// that must not close the channel a second time.
	hub.UnregisterClient(stuck)
	assert.Equal(t, 1, hub.GetClientCount())
}
