// Package hexwar implements the rules of a two-player hex wargame: the hex
// grid and terrain model, the movement range calculator and the turn/phase
// state machine. It performs no I/O.
package hexwar

import (
	"fmt"
	"strconv"
	"strings"
)

// Terrain classifies a hex.
type Terrain string

const (
	Clear    Terrain = "clear"
	Mountain Terrain = "mountain"
	Forest   Terrain = "forest"
	Water    Terrain = "water" // impassable for every arm
	Desert   Terrain = "desert"
	Swamp    Terrain = "swamp"
	Town     Terrain = "town"
)

// AllTerrains returns every terrain type in declaration order.
func AllTerrains() []Terrain {
	return []Terrain{Clear, Mountain, Forest, Water, Desert, Swamp, Town}
}

// Valid reports whether t is a known terrain.
func (t Terrain) Valid() bool {
	switch t {
	case Clear, Mountain, Forest, Water, Desert, Swamp, Town:
		return true
	}
	return false
}

// Side is one of the six edges of a flat-topped hex.
type Side int

const (
	North Side = iota
	NorthEast
	SouthEast
	South
	SouthWest
	NorthWest
)

// SideCount is the number of edges of a hex.
const SideCount = 6

// AllSides returns the six sides clockwise from north.
func AllSides() [SideCount]Side {
	return [SideCount]Side{North, NorthEast, SouthEast, South, SouthWest, NorthWest}
}

// Opposite returns the side facing s across the shared edge.
func (s Side) Opposite() Side {
	return (s + 3) % SideCount
}

func (s Side) String() string {
	switch s {
	case North:
		return "N"
	case NorthEast:
		return "NE"
	case SouthEast:
		return "SE"
	case South:
		return "S"
	case SouthWest:
		return "SW"
	case NorthWest:
		return "NW"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// EdgeMask holds one bit per hex side (bit 0 = N ... bit 5 = NW).
type EdgeMask uint8

// AllEdges has every side set.
const AllEdges EdgeMask = 1<<SideCount - 1

// Has reports whether side s is set.
func (m EdgeMask) Has(s Side) bool {
	return m&(1<<uint(s)) != 0
}

// With returns m with side s set.
func (m EdgeMask) With(s Side) EdgeMask {
	return m | 1<<uint(s)
}

// Coord addresses a hex by column and row.
type Coord struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// String returns the "column,row" form used as a map key on the wire.
func (c Coord) String() string {
	return strconv.Itoa(c.Column) + "," + strconv.Itoa(c.Row)
}

// ParseCoord parses the "column,row" form.
func ParseCoord(s string) (Coord, error) {
	col, row, ok := strings.Cut(s, ",")
	if !ok {
		return Coord{}, fmt.Errorf("invalid coord %q", s)
	}
	c, err := strconv.Atoi(strings.TrimSpace(col))
	if err != nil {
		return Coord{}, fmt.Errorf("invalid coord column %q: %w", s, err)
	}
	r, err := strconv.Atoi(strings.TrimSpace(row))
	if err != nil {
		return Coord{}, fmt.Errorf("invalid coord row %q: %w", s, err)
	}
	return Coord{Column: c, Row: r}, nil
}

// Neighbor returns the coordinate across side s. The grid uses flat-topped
// hexes in "odd-q" layout: odd columns sit half a hex lower than even ones.
// The result may lie outside the grid.
func (c Coord) Neighbor(s Side) Coord {
	odd := c.Column&1 == 1
	switch s {
	case North:
		return Coord{c.Column, c.Row - 1}
	case South:
		return Coord{c.Column, c.Row + 1}
	case NorthEast:
		if odd {
			return Coord{c.Column + 1, c.Row}
		}
		return Coord{c.Column + 1, c.Row - 1}
	case SouthEast:
		if odd {
			return Coord{c.Column + 1, c.Row + 1}
		}
		return Coord{c.Column + 1, c.Row}
	case SouthWest:
		if odd {
			return Coord{c.Column - 1, c.Row + 1}
		}
		return Coord{c.Column - 1, c.Row}
	case NorthWest:
		if odd {
			return Coord{c.Column - 1, c.Row}
		}
		return Coord{c.Column - 1, c.Row - 1}
	}
	return c
}

// Neighbors returns the six adjacent coordinates indexed by Side.
func (c Coord) Neighbors() [SideCount]Coord {
	var result [SideCount]Coord
	for _, s := range AllSides() {
		result[s] = c.Neighbor(s)
	}
	return result
}

// Hex is a single map cell.
type Hex struct {
	Column  int      `json:"column"`
	Row     int      `json:"row"`
	Terrain Terrain  `json:"terrain"`
	Rivers  EdgeMask `json:"rivers"` // sides carrying a river
	Roads   EdgeMask `json:"roads"`  // sides a road leaves through
}

// Coord returns the hex's position.
func (h Hex) Coord() Coord {
	return Coord{Column: h.Column, Row: h.Row}
}
