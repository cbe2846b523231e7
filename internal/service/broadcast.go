package service

import "github.com/freeeve/hexwar/pkg/hexwar"

// Broadcast event types.
const (
	EventGameStateUpdate = "gameStateUpdate"
	EventPlayerJoined    = "playerJoined"
	EventGameEnded       = "gameEnded"
)

// Broadcaster sends real-time events to connected clients.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastGameEvent(gameID string, eventType string, data any)
	// BroadcastStateUpdate publishes the state produced by an accepted event.
	BroadcastStateUpdate(gameID string, action hexwar.EventType, state *hexwar.GameState)
}

// NoopBroadcaster is a no-op implementation for testing or when WS is disabled.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastGameEvent(string, string, any) {}

func (NoopBroadcaster) BroadcastStateUpdate(string, hexwar.EventType, *hexwar.GameState) {}
