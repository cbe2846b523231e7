package hexwar

import (
	"encoding/json"
	"fmt"
)

// Phase is the coarse part of a turn.
type Phase string

const (
	PhaseMovement Phase = "movement"
	PhaseCombat   Phase = "combat"
)

// Action is the finer-grained input a phase is waiting for.
type Action string

const (
	ActionSelectUnit           Action = "selectUnit"
	ActionSelectDestinationHex Action = "selectDestinationHex"
	ActionSelectTarget         Action = "selectTarget"
	ActionSelectAttacker       Action = "selectAttacker"
)

// Step is the combined phase and action. Only the four legal pairings exist.
type Step int

const (
	MovementSelectUnit Step = iota
	MovementSelectDestination
	CombatSelectTarget
	CombatSelectAttacker
)

// Phase returns the phase the step belongs to.
func (s Step) Phase() Phase {
	if s == CombatSelectTarget || s == CombatSelectAttacker {
		return PhaseCombat
	}
	return PhaseMovement
}

// Action returns the input the step is waiting for.
func (s Step) Action() Action {
	switch s {
	case MovementSelectDestination:
		return ActionSelectDestinationHex
	case CombatSelectTarget:
		return ActionSelectTarget
	case CombatSelectAttacker:
		return ActionSelectAttacker
	}
	return ActionSelectUnit
}

func (s Step) String() string {
	return string(s.Phase()) + "/" + string(s.Action())
}

// StepFor maps a phase/action pair to its Step, rejecting illegal pairings.
func StepFor(p Phase, a Action) (Step, error) {
	switch {
	case p == PhaseMovement && a == ActionSelectUnit:
		return MovementSelectUnit, nil
	case p == PhaseMovement && a == ActionSelectDestinationHex:
		return MovementSelectDestination, nil
	case p == PhaseCombat && a == ActionSelectTarget:
		return CombatSelectTarget, nil
	case p == PhaseCombat && a == ActionSelectAttacker:
		return CombatSelectAttacker, nil
	}
	return 0, fmt.Errorf("action %q is not valid in phase %q", a, p)
}

// GameState is the mutable per-game turn state.
type GameState struct {
	TurnNumber     int
	ActivePlayer   Player
	Step           Step
	Units          []Unit
	SelectedUnitID string
	SelectedHex    *Coord
}

// NewGameState returns the opening state for a scenario: turn 1, Player 1 to
// move, Player 1's units available and Player 2's unavailable.
func NewGameState(s *Scenario) *GameState {
	gs := &GameState{
		TurnNumber:   1,
		ActivePlayer: Player1,
		Step:         MovementSelectUnit,
		Units:        make([]Unit, len(s.Units)),
	}
	copy(gs.Units, s.Units)
	for i := range gs.Units {
		u := &gs.Units[i]
		u.markStart()
		if u.Player == Player1 {
			u.Status = StatusAvailable
		} else {
			u.Status = StatusUnavailable
		}
	}
	return gs
}

// Clone returns a deep copy. Mutations to the clone never reach the original.
func (gs *GameState) Clone() *GameState {
	c := &GameState{
		TurnNumber:     gs.TurnNumber,
		ActivePlayer:   gs.ActivePlayer,
		Step:           gs.Step,
		SelectedUnitID: gs.SelectedUnitID,
	}
	if gs.Units != nil {
		c.Units = make([]Unit, len(gs.Units))
		copy(c.Units, gs.Units)
	}
	if gs.SelectedHex != nil {
		h := *gs.SelectedHex
		c.SelectedHex = &h
	}
	return c
}

// UnitByID returns a pointer into gs.Units, or nil.
func (gs *GameState) UnitByID(id string) *Unit {
	for i := range gs.Units {
		if gs.Units[i].ID == id {
			return &gs.Units[i]
		}
	}
	return nil
}

// UnitsAt returns the units stacked on c in list order.
func (gs *GameState) UnitsAt(c Coord) []Unit {
	var units []Unit
	for _, u := range gs.Units {
		if u.Column == c.Column && u.Row == c.Row {
			units = append(units, u)
		}
	}
	return units
}

// UnitsOf returns every unit belonging to player.
func (gs *GameState) UnitsOf(player Player) []Unit {
	var units []Unit
	for _, u := range gs.Units {
		if u.Player == player {
			units = append(units, u)
		}
	}
	return units
}

type gameStateJSON struct {
	TurnNumber     int    `json:"turnNumber"`
	ActivePlayer   Player `json:"activePlayer"`
	Phase          Phase  `json:"phase"`
	Action         Action `json:"action"`
	Units          []Unit `json:"units"`
	SelectedUnitID string `json:"selectedUnitId,omitempty"`
	SelectedHex    *Coord `json:"selectedHex,omitempty"`
}

// MarshalJSON writes the step as separate phase and action fields.
func (gs GameState) MarshalJSON() ([]byte, error) {
	units := gs.Units
	if units == nil {
		units = []Unit{}
	}
	return json.Marshal(gameStateJSON{
		TurnNumber:     gs.TurnNumber,
		ActivePlayer:   gs.ActivePlayer,
		Phase:          gs.Step.Phase(),
		Action:         gs.Step.Action(),
		Units:          units,
		SelectedUnitID: gs.SelectedUnitID,
		SelectedHex:    gs.SelectedHex,
	})
}

// UnmarshalJSON rejects phase/action pairs that do not form a Step.
func (gs *GameState) UnmarshalJSON(data []byte) error {
	var raw gameStateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	step, err := StepFor(raw.Phase, raw.Action)
	if err != nil {
		return err
	}
	if raw.TurnNumber < 1 {
		return fmt.Errorf("turn number must be at least 1, got %d", raw.TurnNumber)
	}
	if !raw.ActivePlayer.Valid() {
		return fmt.Errorf("invalid active player %d", raw.ActivePlayer)
	}
	*gs = GameState{
		TurnNumber:     raw.TurnNumber,
		ActivePlayer:   raw.ActivePlayer,
		Step:           step,
		Units:          raw.Units,
		SelectedUnitID: raw.SelectedUnitID,
		SelectedHex:    raw.SelectedHex,
	}
	return nil
}
