package hexwar

import "fmt"

// Scenario is a map plus its initial unit layout. Games embed an immutable
// Clone of the scenario taken at creation time.
type Scenario struct {
	Columns int    `json:"columns"`
	Rows    int    `json:"rows"`
	Hexes   []Hex  `json:"hexes"`
	Units   []Unit `json:"units"`
}

// ScenarioError describes why a scenario is invalid.
type ScenarioError struct {
	Message string
}

func (e *ScenarioError) Error() string {
	return "invalid scenario: " + e.Message
}

// Grid builds the dense grid for the scenario's map.
func (s *Scenario) Grid() (*Grid, error) {
	g, err := NewGrid(s.Columns, s.Rows, s.Hexes)
	if err != nil {
		return nil, &ScenarioError{err.Error()}
	}
	return g, nil
}

// Validate checks the map and every unit against the grid invariants.
func (s *Scenario) Validate() error {
	g, err := s.Grid()
	if err != nil {
		return err
	}
	ids := make(map[string]bool, len(s.Units))
	for _, u := range s.Units {
		if u.ID == "" {
			return &ScenarioError{"unit without id"}
		}
		if ids[u.ID] {
			return &ScenarioError{"duplicate unit id " + u.ID}
		}
		ids[u.ID] = true
		if !u.Player.Valid() {
			return &ScenarioError{fmt.Sprintf("unit %s has invalid player %d", u.ID, u.Player)}
		}
		if !u.Arm.Valid() {
			return &ScenarioError{fmt.Sprintf("unit %s has unknown arm %q", u.ID, u.Arm)}
		}
		if u.CombatStrength < 0 || u.CombatStrength > MaxRating {
			return &ScenarioError{fmt.Sprintf("unit %s combat strength %d not in 0-%d", u.ID, u.CombatStrength, MaxRating)}
		}
		if u.MovementAllowance < 0 || u.MovementAllowance > MaxRating {
			return &ScenarioError{fmt.Sprintf("unit %s movement allowance %d not in 0-%d", u.ID, u.MovementAllowance, MaxRating)}
		}
		if !g.InBounds(u.Coord()) {
			return &ScenarioError{fmt.Sprintf("unit %s at %s is off the map", u.ID, u.Coord())}
		}
		if g.At(u.Coord()).Terrain == Water {
			return &ScenarioError{fmt.Sprintf("unit %s placed on water at %s", u.ID, u.Coord())}
		}
	}
	return nil
}

// Normalize replaces the hex list with the full row-major grid so every cell
// has exactly one record, and defaults missing unit statuses.
func (s *Scenario) Normalize() error {
	g, err := s.Grid()
	if err != nil {
		return err
	}
	s.Hexes = g.Hexes()
	for i := range s.Units {
		if s.Units[i].Status == "" {
			s.Units[i].Status = StatusAvailable
		}
		s.Units[i].markStart()
	}
	return nil
}

// Clone returns a deep copy.
func (s *Scenario) Clone() *Scenario {
	c := &Scenario{Columns: s.Columns, Rows: s.Rows}
	if s.Hexes != nil {
		c.Hexes = make([]Hex, len(s.Hexes))
		copy(c.Hexes, s.Hexes)
	}
	if s.Units != nil {
		c.Units = make([]Unit, len(s.Units))
		copy(c.Units, s.Units)
	}
	return c
}

// NewScenario returns an all-Clear map of the given size with no units.
func NewScenario(columns, rows int) *Scenario {
	s := &Scenario{Columns: columns, Rows: rows}
	for r := 0; r < rows; r++ {
		for c := 0; c < columns; c++ {
			s.Hexes = append(s.Hexes, Hex{Column: c, Row: r, Terrain: Clear})
		}
	}
	return s
}
