package terrain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"minigolf/internal/config"
	"minigolf/internal/course"
)

// Placement regions, as fractions of the grid.
const (
	holeMaxRow = 0.5  // hole: y < height*0.5
	holeMinCol = 0.5  // hole: x > width/2
	ballMinRow = 0.85 // ball: y > height*0.85, x > 0
)

// Generator builds courses from noise. It is not safe for concurrent use;
// each session owns its own generator.
type Generator struct {
	cfg      config.TerrainConfig
	field    *Field
	par      int
	profiler Profiler
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(cfg config.TerrainConfig, seed int64) (*Generator, error) {
	field, err := NewField(cfg, seed)
	if err != nil {
		return nil, err
	}
	if cfg.TerrainScale <= 0 {
		cfg.TerrainScale = DefaultTerrainScale
	}
	if cfg.HeightScale <= 0 {
		cfg.HeightScale = DefaultHeightScale
	}
	return &Generator{cfg: cfg, field: field}, nil
}

// SetPar sets the par recorded on generated courses.
func (g *Generator) SetPar(par int) {
	g.par = par
}

// SetProfiler attaches instrumentation. A nil profiler disables it.
func (g *Generator) SetProfiler(p Profiler) {
	g.profiler = p
}

// Seed returns the seed the next course will be generated from.
func (g *Generator) Seed() int64 {
	return g.field.Seed()
}

// Reseed changes the noise seed for subsequent courses.
func (g *Generator) Reseed(seed int64) {
	g.field.Reseed(seed)
}

// Generate builds a width x height course. Every cell is classified first;
// a second row-major pass then resolves autotile variants against the
// classified grid and places the hole and ball on the first qualifying
// fairway cells. A course missing
// either marker is returned as an error wrapping course.ErrNoHole and/or
// course.ErrNoBall.
func (g *Generator) Generate(width, height int) (*course.Course, error) {
	start := time.Now()
	grid, err := course.NewGrid(width, height)
	if err != nil {
		return nil, err
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t := Classify(g.field.Sample(x, y, g.cfg.TerrainScale))
			cell := course.Cell{
				Coord:     course.Coord{X: x, Y: y},
				Terrain:   t,
				Elevation: g.field.Sample(x, y, g.cfg.HeightScale),
			}
			if err := grid.Set(cell); err != nil {
				return nil, err
			}
		}
	}

	c := &course.Course{
		ID:   uuid.NewString(),
		Seed: g.field.Seed(),
		Par:  g.par,
		Grid: grid,
	}

	// Variants see the classified terrain; markers placed below only
	// replace the tile of their own cell.
	classified := grid.Clone()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			at := course.Coord{X: x, Y: y}
			cell, err := grid.Cell(at)
			if err != nil {
				return nil, err
			}
			t := cell.Terrain
			cell.Variant = Resolve(t, classified.Neighbors(at))
			cell.Tile = course.TileIndex(t, cell.Variant)

			switch {
			case !c.HasHole && qualifiesForHole(at, t, width, height):
				cell.Terrain = course.Hole
				cell.Tile = course.TileHole
				c.Hole, c.HasHole = at, true
			case !c.HasBall && qualifiesForBall(at, t, height):
				cell.Terrain = course.Ball
				cell.Tile = course.TileBall
				c.Ball, c.HasBall = at, true
			}

			if err := grid.Set(cell); err != nil {
				return nil, err
			}
		}
	}

	if err := c.Validate(); err != nil {
		if g.profiler != nil {
			g.profiler.RecordPlacementFailure(!c.HasHole, !c.HasBall)
		}
		return nil, fmt.Errorf("generate course with seed %d: %w", c.Seed, err)
	}
	if g.profiler != nil {
		g.profiler.RecordCourse(time.Since(start), grid.Counts())
	}
	return c, nil
}

func qualifiesForHole(at course.Coord, t course.Terrain, width, height int) bool {
	return t == course.Fairway &&
		float64(at.Y) < float64(height)*holeMaxRow &&
		float64(at.X) > float64(width)*holeMinCol
}

func qualifiesForBall(at course.Coord, t course.Terrain, height int) bool {
	return t == course.Fairway &&
		float64(at.Y) > float64(height)*ballMinRow &&
		at.X > 0
}
