package hexwar

// Player identifies one side of the game.
type Player int

const (
	NoPlayer Player = 0
	Player1  Player = 1
	Player2  Player = 2
)

// Other returns the opposing player.
func (p Player) Other() Player {
	if p == Player1 {
		return Player2
	}
	return Player1
}

// Valid reports whether p is Player1 or Player2.
func (p Player) Valid() bool {
	return p == Player1 || p == Player2
}

// Arm is a unit's branch, which drives its terrain costs.
type Arm string

const (
	Infantry  Arm = "infantry"
	Cavalry   Arm = "cavalry"
	Artillery Arm = "artillery"
)

// Valid reports whether a is a known arm.
func (a Arm) Valid() bool {
	return a == Infantry || a == Cavalry || a == Artillery
}

// UnitStatus tracks what a unit may do in the current phase.
type UnitStatus string

const (
	StatusAvailable   UnitStatus = "available"
	StatusSelected    UnitStatus = "selected"
	StatusMoved       UnitStatus = "moved"
	StatusUnavailable UnitStatus = "unavailable"
)

// MaxRating is the upper bound for combat strength and movement allowance.
const MaxRating = 9

// Unit is a counter on the map. Several units may share a hex.
type Unit struct {
	ID                string     `json:"id"`
	Player            Player     `json:"player"`
	CombatStrength    int        `json:"combatStrength"`
	MovementAllowance int        `json:"movementAllowance"`
	Arm               Arm        `json:"arm"`
	Column            int        `json:"column"`
	Row               int        `json:"row"`
	Status            UnitStatus `json:"status"`
	StartingColumn    int        `json:"startingColumn"`
	StartingRow       int        `json:"startingRow"`
}

// Coord returns the unit's current hex.
func (u Unit) Coord() Coord {
	return Coord{Column: u.Column, Row: u.Row}
}

// StartingCoord returns the hex the unit occupied when the phase began.
func (u Unit) StartingCoord() Coord {
	return Coord{Column: u.StartingColumn, Row: u.StartingRow}
}

// markStart records the current position as the phase starting position.
func (u *Unit) markStart() {
	u.StartingColumn = u.Column
	u.StartingRow = u.Row
}

// EnemyAt reports whether any unit not belonging to player occupies c.
func EnemyAt(units []Unit, c Coord, player Player) bool {
	for _, u := range units {
		if u.Player != player && u.Column == c.Column && u.Row == c.Row {
			return true
		}
	}
	return false
}
