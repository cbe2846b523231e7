package handler

import (
	"time"

	"github.com/freeeve/hexwar/internal/service"
	"github.com/freeeve/hexwar/pkg/hexwar"
)

var _ service.Broadcaster = (*Hub)(nil)

// BroadcastGameEvent sends a lifecycle event (player joined, game ended) to
// the game's subscribers.
func (h *Hub) BroadcastGameEvent(gameID string, eventType string, data any) {
	h.BroadcastToGame(gameID, WSEvent{
		Type:      eventType,
		GameID:    gameID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// BroadcastStateUpdate sends the state produced by an accepted input event.
func (h *Hub) BroadcastStateUpdate(gameID string, action hexwar.EventType, state *hexwar.GameState) {
	h.BroadcastToGame(gameID, WSEvent{
		Type:      service.EventGameStateUpdate,
		GameID:    gameID,
		Action:    action,
		GameState: state,
		Timestamp: time.Now().UTC(),
	})
}
