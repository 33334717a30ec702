package course

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds reports a coordinate outside the course grid. It marks a
// malformed request and is never used for rule rejections.
var ErrOutOfBounds = errors.New("coordinate outside course grid")

// Coord identifies a cell by column (X) and row (Y). Row 0 is the top edge.
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add offsets c by d.
func (c Coord) Add(d Coord) Coord {
	return Coord{X: c.X + d.X, Y: c.Y + d.Y}
}

// Sub returns the displacement from o to c.
func (c Coord) Sub(o Coord) Coord {
	return Coord{X: c.X - o.X, Y: c.Y - o.Y}
}

// Cell is one grid position.
type Cell struct {
	Coord
	Terrain   Terrain     `json:"terrain"`
	Variant   Orientation `json:"variant"`
	Tile      int         `json:"tile"`
	Elevation float64     `json:"elevation"`
}

// Neighbors holds the orthogonal neighbours of a cell. A nil entry is an
// out-of-bounds neighbour.
type Neighbors struct {
	Top    *Cell
	Left   *Cell
	Right  *Cell
	Bottom *Cell
}

// Grid is a fixed-size row-major array of cells.
type Grid struct {
	width  int
	height int
	cells  []Cell
}

// NewGrid allocates a width x height grid of rough cells.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}
	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.cells[g.index(x, y)] = Cell{Coord: Coord{X: x, Y: y}, Terrain: Rough, Tile: TileRough}
		}
	}
	return g, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) index(x, y int) int {
	return y*g.width + x
}

// InBounds reports whether c lies on the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.width && c.Y < g.height
}

// Cell returns the cell at c.
func (g *Grid) Cell(c Coord) (Cell, error) {
	if !g.InBounds(c) {
		return Cell{}, fmt.Errorf("cell %v on %dx%d grid: %w", c, g.width, g.height, ErrOutOfBounds)
	}
	return g.cells[g.index(c.X, c.Y)], nil
}

// Terrain returns the terrain category at c.
func (g *Grid) Terrain(c Coord) (Terrain, error) {
	cell, err := g.Cell(c)
	if err != nil {
		return 0, err
	}
	return cell.Terrain, nil
}

// Set overwrites the cell stored at cell.Coord. Generation uses it while the
// grid is still exclusively owned; rule code only reads.
func (g *Grid) Set(cell Cell) error {
	if !g.InBounds(cell.Coord) {
		return fmt.Errorf("set cell %v: %w", cell.Coord, ErrOutOfBounds)
	}
	g.cells[g.index(cell.X, cell.Y)] = cell
	return nil
}

// Neighbors returns the orthogonal neighbours of c. Out-of-bounds neighbours are nil.
func (g *Grid) Neighbors(c Coord) Neighbors {
	at := func(x, y int) *Cell {
		if !g.InBounds(Coord{X: x, Y: y}) {
			return nil
		}
		cell := g.cells[g.index(x, y)]
		return &cell
	}
	return Neighbors{
		Top:    at(c.X, c.Y-1),
		Left:   at(c.X-1, c.Y),
		Right:  at(c.X+1, c.Y),
		Bottom: at(c.X, c.Y+1),
	}
}

// Counts tallies cells per terrain category.
func (g *Grid) Counts() map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, cell := range g.cells {
		counts[cell.Terrain]++
	}
	return counts
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	dup := &Grid{width: g.width, height: g.height, cells: make([]Cell, len(g.cells))}
	copy(dup.cells, g.cells)
	return dup
}
