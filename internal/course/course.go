package course

import (
	"errors"
	"fmt"
)

var (
	// ErrNoHole reports that no fairway cell qualified for the hole.
	ErrNoHole = errors.New("no qualifying fairway cell for the hole")
	// ErrNoBall reports that no fairway cell qualified for the tee.
	ErrNoBall = errors.New("no qualifying fairway cell for the ball")
)

// Course is one generated grid plus its designated hole and tee cells.
type Course struct {
	ID      string
	Seed    int64
	Par     int
	Grid    *Grid
	Hole    Coord
	Ball    Coord
	HasHole bool
	HasBall bool
}

// Validate reports the generation failures of c, if any. Both sentinels are
// joined when neither marker was placed.
func (c *Course) Validate() error {
	if c == nil || c.Grid == nil {
		return errors.New("course has no grid")
	}
	var errs []error
	if !c.HasHole {
		errs = append(errs, ErrNoHole)
	}
	if !c.HasBall {
		errs = append(errs, ErrNoBall)
	}
	return errors.Join(errs...)
}

// IsHole reports whether c is the hole cell.
func (c *Course) IsHole(at Coord) bool {
	return c.HasHole && c.Hole == at
}

// Snapshot is the serialisable form of a course used by storage and the API.
type Snapshot struct {
	ID        string          `json:"id"`
	Seed      int64           `json:"seed"`
	Par       int             `json:"par"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Terrain   [][]Terrain     `json:"terrain"`
	Variants  [][]Orientation `json:"variants"`
	Tiles     [][]int         `json:"tiles"`
	Elevation [][]float64     `json:"elevation,omitempty"`
	Hole      *Coord          `json:"hole,omitempty"`
	Ball      *Coord          `json:"ball,omitempty"`
}

// Snapshot copies c into row-major nested slices.
func (c *Course) Snapshot() Snapshot {
	g := c.Grid
	s := Snapshot{
		ID:        c.ID,
		Seed:      c.Seed,
		Par:       c.Par,
		Width:     g.width,
		Height:    g.height,
		Terrain:   make([][]Terrain, g.height),
		Variants:  make([][]Orientation, g.height),
		Tiles:     make([][]int, g.height),
		Elevation: make([][]float64, g.height),
	}
	for y := 0; y < g.height; y++ {
		s.Terrain[y] = make([]Terrain, g.width)
		s.Variants[y] = make([]Orientation, g.width)
		s.Tiles[y] = make([]int, g.width)
		s.Elevation[y] = make([]float64, g.width)
		for x := 0; x < g.width; x++ {
			cell := g.cells[g.index(x, y)]
			s.Terrain[y][x] = cell.Terrain
			s.Variants[y][x] = cell.Variant
			s.Tiles[y][x] = cell.Tile
			s.Elevation[y][x] = cell.Elevation
		}
	}
	if c.HasHole {
		hole := c.Hole
		s.Hole = &hole
	}
	if c.HasBall {
		ball := c.Ball
		s.Ball = &ball
	}
	return s
}

// FromSnapshot rebuilds a course from s.
func FromSnapshot(s Snapshot) (*Course, error) {
	g, err := NewGrid(s.Width, s.Height)
	if err != nil {
		return nil, err
	}
	if len(s.Terrain) != s.Height {
		return nil, fmt.Errorf("snapshot has %d terrain rows, want %d", len(s.Terrain), s.Height)
	}
	for y := 0; y < s.Height; y++ {
		if len(s.Terrain[y]) != s.Width {
			return nil, fmt.Errorf("snapshot row %d has %d cells, want %d", y, len(s.Terrain[y]), s.Width)
		}
		for x := 0; x < s.Width; x++ {
			cell := Cell{Coord: Coord{X: x, Y: y}, Terrain: s.Terrain[y][x]}
			if !cell.Terrain.Valid() {
				return nil, fmt.Errorf("snapshot cell %v: unknown terrain %d", cell.Coord, uint8(cell.Terrain))
			}
			if y < len(s.Variants) && x < len(s.Variants[y]) {
				cell.Variant = s.Variants[y][x]
			}
			if y < len(s.Elevation) && x < len(s.Elevation[y]) {
				cell.Elevation = s.Elevation[y][x]
			}
			cell.Tile = TileIndex(cell.Terrain, cell.Variant)
			g.cells[g.index(x, y)] = cell
		}
	}
	c := &Course{ID: s.ID, Seed: s.Seed, Par: s.Par, Grid: g}
	if s.Hole != nil {
		if !g.InBounds(*s.Hole) {
			return nil, fmt.Errorf("snapshot hole %v: %w", *s.Hole, ErrOutOfBounds)
		}
		c.Hole, c.HasHole = *s.Hole, true
	}
	if s.Ball != nil {
		if !g.InBounds(*s.Ball) {
			return nil, fmt.Errorf("snapshot ball %v: %w", *s.Ball, ErrOutOfBounds)
		}
		c.Ball, c.HasBall = *s.Ball, true
	}
	return c, nil
}
