package hexwar

import "fmt"

// EventType names a player input.
type EventType string

const (
	EventMapClick   EventType = "mapClick"
	EventSelectUnit EventType = "selectUnit"
	EventEndPhase   EventType = "endPhase"
)

// Event is a single player input.
type Event struct {
	Type   EventType `json:"eventType"`
	Hex    *Coord    `json:"hex,omitempty"`
	UnitID string    `json:"unitId,omitempty"`
}

// Validate checks the event's shape without looking at any game state.
func (e Event) Validate() error {
	switch e.Type {
	case EventMapClick:
		if e.Hex == nil {
			return ErrMissingHex
		}
		if e.Hex.Column < 0 || e.Hex.Row < 0 {
			return fmt.Errorf("%w: %s", ErrHexOutOfBounds, e.Hex)
		}
	case EventSelectUnit:
		if e.UnitID == "" {
			return ErrMissingUnitID
		}
	case EventEndPhase:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
	return nil
}

// Apply validates ev against gs and returns the resulting state. gs is never
// modified; on error the caller keeps its current state.
func Apply(gs *GameState, g *Grid, player Player, ev Event) (*GameState, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	if gs == nil || g == nil {
		return nil, ErrStateMissing
	}
	if ev.Hex != nil && !g.InBounds(*ev.Hex) {
		return nil, fmt.Errorf("%w: %s", ErrHexOutOfBounds, ev.Hex)
	}
	if player != gs.ActivePlayer {
		return nil, ErrNotYourTurn
	}

	next := gs.Clone()
	var err error
	switch ev.Type {
	case EventMapClick:
		err = next.mapClick(g, *ev.Hex)
	case EventSelectUnit:
		err = next.selectUnit(ev.UnitID)
	case EventEndPhase:
		next.endPhase()
	}
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (gs *GameState) mapClick(g *Grid, c Coord) error {
	switch gs.Step {
	case MovementSelectUnit:
		gs.pickUnitAt(c)
		return nil
	case MovementSelectDestination:
		return gs.moveSelected(g, c)
	}
	return fmt.Errorf("%w: map click during %s", ErrWrongAction, gs.Step)
}

// pickUnitAt selects the topmost (last in list order) available unit of the
// active player on c. With no such unit only the clicked hex is recorded.
func (gs *GameState) pickUnitAt(c Coord) {
	hex := c
	gs.SelectedHex = &hex
	pick := -1
	for i, u := range gs.Units {
		if u.Player == gs.ActivePlayer && u.Status == StatusAvailable && u.Coord() == c {
			pick = i
		}
	}
	if pick < 0 {
		return
	}
	gs.selectIndex(pick)
}

func (gs *GameState) selectIndex(i int) {
	for j := range gs.Units {
		if gs.Units[j].Player == gs.ActivePlayer && gs.Units[j].Status == StatusSelected {
			gs.Units[j].Status = StatusAvailable
		}
	}
	gs.Units[i].Status = StatusSelected
	gs.SelectedUnitID = gs.Units[i].ID
	gs.Step = MovementSelectDestination
}

func (gs *GameState) selectUnit(id string) error {
	if gs.Step != MovementSelectUnit {
		return fmt.Errorf("%w: unit selection during %s", ErrWrongAction, gs.Step)
	}
	idx := -1
	for i := range gs.Units {
		if gs.Units[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnitNotFound, id)
	}
	u := &gs.Units[idx]
	if u.Player != gs.ActivePlayer {
		return fmt.Errorf("%w: %s", ErrUnitNotOwned, id)
	}
	switch u.Status {
	case StatusMoved:
		// Reselecting a moved unit takes the move back.
		u.Column = u.StartingColumn
		u.Row = u.StartingRow
		u.Status = StatusAvailable
		gs.SelectedUnitID = ""
		gs.SelectedHex = nil
		return nil
	case StatusAvailable:
		gs.selectIndex(idx)
		start := u.Coord()
		gs.SelectedHex = &start
		return nil
	}
	return fmt.Errorf("%w: %s is %s", ErrUnitNotSelectable, id, u.Status)
}

func (gs *GameState) moveSelected(g *Grid, dest Coord) error {
	if gs.SelectedUnitID == "" {
		return ErrNoSelectedUnit
	}
	u := gs.UnitByID(gs.SelectedUnitID)
	if u == nil {
		return fmt.Errorf("%w: %s", ErrSelectedUnitMissing, gs.SelectedUnitID)
	}
	if EnemyAt(gs.Units, dest, u.Player) {
		return fmt.Errorf("%w: %s", ErrEnemyOccupied, dest)
	}
	if g.At(dest).Terrain == Water {
		return fmt.Errorf("%w: %s", ErrWaterHex, dest)
	}
	reach := ComputeRange(g, gs.Units, u.Coord(), u.MovementAllowance, u.Player, u.Arm)
	if !reach.Contains(dest) {
		return fmt.Errorf("%w: %s from %s", ErrNotInRange, dest, u.Coord())
	}
	u.Column = dest.Column
	u.Row = dest.Row
	u.Status = StatusMoved
	gs.SelectedUnitID = ""
	gs.SelectedHex = nil
	gs.Step = MovementSelectUnit
	return nil
}

// endPhase advances Movement to Combat, and Combat to the other player's
// Movement. Combat resolution is not implemented; ending the combat phase
// simply hands the turn over.
func (gs *GameState) endPhase() {
	gs.SelectedUnitID = ""
	gs.SelectedHex = nil
	if gs.Step.Phase() == PhaseMovement {
		for i := range gs.Units {
			gs.Units[i].Status = StatusAvailable
			gs.Units[i].markStart()
		}
		gs.Step = CombatSelectTarget
		return
	}

	next := gs.ActivePlayer.Other()
	if gs.ActivePlayer == Player2 {
		gs.TurnNumber++
	}
	for i := range gs.Units {
		u := &gs.Units[i]
		if u.Player == next {
			u.Status = StatusAvailable
			u.markStart()
		} else {
			u.Status = StatusUnavailable
		}
	}
	gs.ActivePlayer = next
	gs.Step = MovementSelectUnit
}
