package model

import (
	"time"

	"github.com/freeeve/hexwar/pkg/hexwar"
)

// Game statuses.
const (
	GameWaiting  = "waiting"
	GameActive   = "active"
	GameFinished = "finished"
)

// Scenario is a stored, editable map and initial unit layout.
type Scenario struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatorID   string    `json:"creatorId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	hexwar.Scenario
}

// Game is a match between two users on a snapshot of a scenario.
type Game struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	ScenarioID string            `json:"scenarioId"`
	CreatorID  string            `json:"creatorId"`
	Player1ID  string            `json:"player1Id"`
	Player2ID  string            `json:"player2Id,omitempty"`
	Status     string            `json:"status"` // waiting, active, finished
	Winner     hexwar.Player     `json:"winner,omitempty"`
	Scenario   *hexwar.Scenario  `json:"scenario"`
	State      *hexwar.GameState `json:"gameState"`
	Version    int64             `json:"version"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// PlayerFor maps a user to their side of the game, or NoPlayer.
func (g *Game) PlayerFor(userID string) hexwar.Player {
	switch {
	case userID == "":
		return hexwar.NoPlayer
	case userID == g.Player1ID:
		return hexwar.Player1
	case userID == g.Player2ID:
		return hexwar.Player2
	}
	return hexwar.NoPlayer
}

// HasPlayer reports whether userID is seated in the game.
func (g *Game) HasPlayer(userID string) bool {
	return g.PlayerFor(userID) != hexwar.NoPlayer
}

// Clone returns a deep copy so callers can mutate without touching cached
// or stored values.
func (g *Game) Clone() *Game {
	c := *g
	if g.Scenario != nil {
		c.Scenario = g.Scenario.Clone()
	}
	if g.State != nil {
		c.State = g.State.Clone()
	}
	return &c
}
