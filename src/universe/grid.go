package universe

import (
	"math/rand/v2"

	"github.com/pkg/errors"

	"automata/src/rules"
)

var (
	ErrOutOfBounds = errors.New("cell out of bounds")
	ErrInvalidSize = errors.New("grid dimensions must be positive")
)

//mooreOffsets are the eight neighbour positions around a cell
var mooreOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

//Grid owns a fixed width*height arena of cells addressed by width*y+x
//There is no wraparound: positions outside the grid are simply not neighbours
//Grid is not safe for concurrent use, the Simulation serializes access to it
type Grid struct {
	width  int
	height int
	cells  []Cell
	rng    *rand.Rand
}

//NewGrid allocates the grid and gives every cell a random initial state
//the seed makes the initial state and every Fill reproducible
func NewGrid(width, height int, seed int64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "[NewGrid] %dx%d", width, height)
	}
	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
		rng:    rand.New(rand.NewPCG(uint64(seed), 0)),
	}
	for i := range g.cells {
		g.cells[i].X = i % width
		g.cells[i].Y = i / width
		g.cells[i].State = g.randomState()
	}
	return g, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

//Cell returns a copy of the cell at x, y
func (g *Grid) Cell(x, y int) (Cell, error) {
	i, ok := g.index(x, y)
	if !ok {
		return Cell{}, errors.Wrapf(ErrOutOfBounds, "[Cell] (%d,%d) in %dx%d", x, y, g.width, g.height)
	}
	return g.cells[i], nil
}

//SetCell forces the state of one cell and commits it immediately
//a cell forced dead loses its age, a cell forced alive keeps it
func (g *Grid) SetCell(x, y int, s State) error {
	i, ok := g.index(x, y)
	if !ok {
		return errors.Wrapf(ErrOutOfBounds, "[SetCell] (%d,%d) in %dx%d", x, y, g.width, g.height)
	}
	g.cells[i].force(s)
	return nil
}

//Neighbors returns copies of the up to eight in-bounds neighbours of x, y
func (g *Grid) Neighbors(x, y int) []Cell {
	neighbors := make([]Cell, 0, len(mooreOffsets))
	for _, o := range mooreOffsets {
		if i, ok := g.index(x+o[0], y+o[1]); ok {
			neighbors = append(neighbors, g.cells[i])
		}
	}
	return neighbors
}

//CountNeighbors counts the neighbours of x, y whose committed state is s
func (g *Grid) CountNeighbors(x, y int, s State) int {
	count := 0
	for _, o := range mooreOffsets {
		if i, ok := g.index(x+o[0], y+o[1]); ok && g.cells[i].State == s {
			count++
		}
	}
	return count
}

//Step advances the grid one generation under rs
//every cell decides against the committed states first, only then all cells commit
//it returns the number of live cells afterwards and whether any cell changed state
func (g *Grid) Step(rs rules.RuleSet) (liveCells int, changed bool) {
	for i := range g.cells {
		g.decide(i, rs)
	}
	for i := range g.cells {
		if g.cells[i].commit() {
			changed = true
		}
		if g.cells[i].State == Alive {
			liveCells++
		}
	}
	return
}

//Fill gives every cell a uniformly random state and resets all ages
func (g *Grid) Fill() {
	for i := range g.cells {
		g.cells[i].force(g.randomState())
		g.cells[i].Age = 0
	}
}

//Clear kills every cell
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i].force(Dead)
	}
}

//LiveCells counts the cells currently alive
func (g *Grid) LiveCells() int {
	live := 0
	for i := range g.cells {
		if g.cells[i].State == Alive {
			live++
		}
	}
	return live
}

//Area returns a copy of the grid for renderers
func (g *Grid) Area() Area {
	a := Area{Width: g.width, Height: g.height, Cells: make([]Cell, len(g.cells))}
	copy(a.Cells, g.cells)
	return a
}

//decide runs the transition of cell i, it reads neighbour states and writes only cell i
func (g *Grid) decide(i int, rs rules.RuleSet) {
	c := &g.cells[i]
	c.decide(g.CountNeighbors(c.X, c.Y, Alive), rs)
}

func (g *Grid) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return 0, false
	}
	return g.width*y + x, true
}

func (g *Grid) randomState() State {
	if g.rng.IntN(2) == 1 {
		return Alive
	}
	return Dead
}

//Area is a detached snapshot of the grid
type Area struct {
	Width  int
	Height int
	Cells  []Cell
}

//At returns the cell at x, y, the caller must keep x, y in bounds
func (a Area) At(x, y int) Cell {
	return a.Cells[a.Width*y+x]
}
