package hexwar

import (
	"container/heap"
	"encoding/json"
	"sort"
)

// Impassable marks a move no arm can make.
const Impassable = -1

// RoadCost is the cost of crossing an edge joined by road on both sides.
const RoadCost = 1

// RiverPenalty is added when a river is crossed without a road.
const RiverPenalty = 1

// terrainCosts holds the cost to enter each terrain, indexed by arm.
var terrainCosts = map[Terrain]map[Arm]int{
	Clear:    {Infantry: 1, Cavalry: 1, Artillery: 1},
	Town:     {Infantry: 1, Cavalry: 1, Artillery: 1},
	Desert:   {Infantry: 2, Cavalry: 2, Artillery: 2},
	Forest:   {Infantry: 2, Cavalry: 3, Artillery: 3},
	Swamp:    {Infantry: 2, Cavalry: 3, Artillery: 3},
	Mountain: {Infantry: 3, Cavalry: 4, Artillery: 4},
	Water:    {Infantry: Impassable, Cavalry: Impassable, Artillery: Impassable},
}

// TerrainCost returns the cost for arm to enter terrain t, or Impassable.
func TerrainCost(t Terrain, arm Arm) int {
	costs, ok := terrainCosts[t]
	if !ok {
		return Impassable
	}
	c, ok := costs[arm]
	if !ok {
		return Impassable
	}
	return c
}

// EdgeCost returns the cost for arm to step from src across side s into dst.
// A road joining both hexes on the shared edge overrides terrain and rivers,
// though never makes water enterable. A river on either side of the edge
// adds RiverPenalty, and artillery cannot cross it at all.
func EdgeCost(src, dst *Hex, s Side, arm Arm) int {
	base := TerrainCost(dst.Terrain, arm)
	if base == Impassable {
		return Impassable
	}
	if src.Roads.Has(s) && dst.Roads.Has(s.Opposite()) {
		return RoadCost
	}
	if src.Rivers.Has(s) || dst.Rivers.Has(s.Opposite()) {
		if arm == Artillery {
			return Impassable
		}
		return base + RiverPenalty
	}
	return base
}

// Range maps each reachable hex to the minimum cost of reaching it.
type Range map[Coord]int

// Contains reports whether c is reachable.
func (r Range) Contains(c Coord) bool {
	_, ok := r[c]
	return ok
}

// Coords returns the reachable hexes sorted by column then row.
func (r Range) Coords() []Coord {
	out := make([]Coord, 0, len(r))
	for c := range r {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Column != out[j].Column {
			return out[i].Column < out[j].Column
		}
		return out[i].Row < out[j].Row
	})
	return out
}

// MarshalJSON writes the range as an object keyed by "column,row".
func (r Range) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, len(r))
	for c, cost := range r {
		m[c.String()] = cost
	}
	return json.Marshal(m)
}

// UnmarshalJSON reads the "column,row" keyed form.
func (r *Range) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(Range, len(m))
	for k, cost := range m {
		c, err := ParseCoord(k)
		if err != nil {
			return err
		}
		out[c] = cost
	}
	*r = out
	return nil
}

// ComputeRange returns every hex a unit of the given arm and player can reach
// from origin while spending at most allowance movement points. Hexes holding
// an enemy unit are neither entered nor passed through; friendly units never
// block. Water is never reachable. The origin itself is not part of the range.
func ComputeRange(g *Grid, units []Unit, origin Coord, allowance int, player Player, arm Arm) Range {
	result := make(Range)
	if allowance <= 0 || !g.InBounds(origin) {
		return result
	}

	enemy := make(map[Coord]bool)
	for _, u := range units {
		if u.Player != player {
			enemy[u.Coord()] = true
		}
	}

	best := map[Coord]int{origin: 0}
	pq := &frontier{{coord: origin, cost: 0}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(node)
		if cur.cost > best[cur.coord] {
			continue
		}
		src := g.At(cur.coord)
		for _, s := range AllSides() {
			next := cur.coord.Neighbor(s)
			dst := g.At(next)
			if dst == nil || enemy[next] {
				continue
			}
			step := EdgeCost(src, dst, s, arm)
			if step == Impassable {
				continue
			}
			cost := cur.cost + step
			if cost > allowance {
				continue
			}
			if prev, seen := best[next]; seen && prev <= cost {
				continue
			}
			best[next] = cost
			if next != origin {
				result[next] = cost
			}
			heap.Push(pq, node{coord: next, cost: cost})
		}
	}
	return result
}

type node struct {
	coord Coord
	cost  int
}

// frontier is a min-heap of nodes ordered by cost.
type frontier []node

func (f frontier) Len() int           { return len(f) }
func (f frontier) Less(i, j int) bool { return f[i].cost < f[j].cost }
func (f frontier) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)        { *f = append(*f, x.(node)) }
func (f *frontier) Pop() any {
	old := *f
	n := old[len(old)-1]
	*f = old[:len(old)-1]
	return n
}
