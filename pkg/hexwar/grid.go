package hexwar

import "fmt"

// MaxGridSize bounds the number of columns and rows of a scenario.
const MaxGridSize = 100

// Grid is a dense, row-major columns×rows rectangle of hexes.
type Grid struct {
	Columns int
	Rows    int
	cells   []Hex
}

// NewGrid builds a grid from a possibly sparse hex list. Cells without a
// record become Clear hexes with no rivers or roads. Records outside the
// rectangle, duplicates and unknown terrain are rejected.
func NewGrid(columns, rows int, hexes []Hex) (*Grid, error) {
	if columns <= 0 || rows <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", columns, rows)
	}
	if columns > MaxGridSize || rows > MaxGridSize {
		return nil, fmt.Errorf("grid dimensions %dx%d exceed %d", columns, rows, MaxGridSize)
	}
	g := &Grid{Columns: columns, Rows: rows, cells: make([]Hex, columns*rows)}
	seen := make([]bool, columns*rows)
	for _, h := range hexes {
		if !g.InBounds(h.Coord()) {
			return nil, fmt.Errorf("hex %s outside %dx%d grid", h.Coord(), columns, rows)
		}
		if h.Terrain == "" {
			h.Terrain = Clear
		}
		if !h.Terrain.Valid() {
			return nil, fmt.Errorf("hex %s has unknown terrain %q", h.Coord(), h.Terrain)
		}
		i := g.index(h.Coord())
		if seen[i] {
			return nil, fmt.Errorf("duplicate hex %s", h.Coord())
		}
		seen[i] = true
		h.Rivers &= AllEdges
		h.Roads &= AllEdges
		g.cells[i] = h
	}
	for i := range g.cells {
		if !seen[i] {
			g.cells[i] = Hex{Column: i % columns, Row: i / columns, Terrain: Clear}
		}
	}
	return g, nil
}

func (g *Grid) index(c Coord) int {
	return c.Row*g.Columns + c.Column
}

// InBounds reports whether c lies in [0,Columns)×[0,Rows).
func (g *Grid) InBounds(c Coord) bool {
	return c.Column >= 0 && c.Column < g.Columns && c.Row >= 0 && c.Row < g.Rows
}

// At returns the hex at c, or nil when c is out of bounds.
func (g *Grid) At(c Coord) *Hex {
	if !g.InBounds(c) {
		return nil
	}
	return &g.cells[g.index(c)]
}

// Hexes returns a copy of every cell in row-major order.
func (g *Grid) Hexes() []Hex {
	out := make([]Hex, len(g.cells))
	copy(out, g.cells)
	return out
}
