package physics

import (
	"math"
	"sort"

	"github.com/san-kum/bouncesim/internal/dynamo"
)

// Pair is a candidate body-body contact. A precedes B in world order.
type Pair struct {
	A, B *dynamo.Body
}

// BroadPhase proposes candidate pairs. Implementations must return every
// overlapping pair exactly once, ordered as AllPairs would order them.
type BroadPhase interface {
	Name() string
	Pairs(bodies []*dynamo.Body) []Pair
}

// AllPairs enumerates every unordered pair, i < j.
type AllPairs struct {
	buf []Pair
}

func NewAllPairs() *AllPairs { return &AllPairs{} }

func (a *AllPairs) Name() string { return "allpairs" }

func (a *AllPairs) Pairs(bodies []*dynamo.Body) []Pair {
	a.buf = a.buf[:0]
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a.buf = append(a.buf, Pair{A: bodies[i], B: bodies[j]})
		}
	}
	return a.buf
}

type cell struct {
	X, Y int
}

// Grid is a uniform spatial hash. Each body is inserted into every cell its
// bounding square touches, so pairs are found if they share any cell.
type Grid struct {
	cellSize float64
	cells    map[cell][]int
}

func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 32
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cell][]int),
	}
}

func (g *Grid) Name() string { return "grid" }

func (g *Grid) cellOf(x, y float64) cell {
	return cell{
		X: int(math.Floor(x / g.cellSize)),
		Y: int(math.Floor(y / g.cellSize)),
	}
}

func (g *Grid) Pairs(bodies []*dynamo.Body) []Pair {
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}

	for i, b := range bodies {
		lo := g.cellOf(b.Pos.X-b.Radius, b.Pos.Y-b.Radius)
		hi := g.cellOf(b.Pos.X+b.Radius, b.Pos.Y+b.Radius)
		for x := lo.X; x <= hi.X; x++ {
			for y := lo.Y; y <= hi.Y; y++ {
				c := cell{X: x, Y: y}
				g.cells[c] = append(g.cells[c], i)
			}
		}
	}

	seen := make(map[[2]int]struct{})
	idx := make([][2]int, 0)
	for _, members := range g.cells {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				key := [2]int{members[i], members[j]}
				if key[0] > key[1] {
					key[0], key[1] = key[1], key[0]
				}
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				idx = append(idx, key)
			}
		}
	}

	sort.Slice(idx, func(i, j int) bool {
		if idx[i][0] != idx[j][0] {
			return idx[i][0] < idx[j][0]
		}
		return idx[i][1] < idx[j][1]
	})

	pairs := make([]Pair, len(idx))
	for i, k := range idx {
		pairs[i] = Pair{A: bodies[k[0]], B: bodies[k[1]]}
	}
	return pairs
}
