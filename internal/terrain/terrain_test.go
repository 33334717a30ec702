package terrain

import (
	"errors"
	"math"
	"testing"

	"minigolf/internal/config"
	"minigolf/internal/course"
)

type constantSource float64

func (c constantSource) Eval2(x, y float64) float64 { return float64(c) }

func constantGenerator(t *testing.T, value float64) *Generator {
	t.Helper()
	cfg := config.Default().Terrain
	factory := func(int64) Source { return constantSource(value) }
	return &Generator{cfg: cfg, field: newField(factory, cfg, 1)}
}

func TestClassifyBands(t *testing.T) {
	tests := []struct {
		height float64
		want   course.Terrain
	}{
		{-0.8, course.Rough},
		{-0.0001, course.Rough},
		{0, course.Fairway},
		{0.19, course.Fairway},
		{0.2, course.Sand},
		{0.29, course.Sand},
		{0.3, course.Water},
		{0.39, course.Water},
		{0.4, course.Trees},
		{0.5, course.Trees},
		{0.99, course.Trees},
	}
	for _, tt := range tests {
		if got := Classify(tt.height); got != tt.want {
			t.Fatalf("Classify(%v) = %v, want %v", tt.height, got, tt.want)
		}
	}
}

func TestBitmaskWeights(t *testing.T) {
	fairway := &course.Cell{Terrain: course.Fairway}
	sand := &course.Cell{Terrain: course.Sand}

	tests := []struct {
		name string
		n    course.Neighbors
		want int
		o    course.Orientation
	}{
		{"isolated", course.Neighbors{}, 0, course.Single},
		{"top only", course.Neighbors{Top: fairway}, 2, course.BottomCenter},
		{"left only", course.Neighbors{Left: fairway, Right: sand}, 8, course.MiddleRight},
		{"right only", course.Neighbors{Right: fairway}, 16, course.MiddleLeft},
		{"bottom only", course.Neighbors{Bottom: fairway, Top: sand}, 64, course.TopCenter},
		{"top left", course.Neighbors{Top: fairway, Left: fairway}, 10, course.BottomRight},
		{"top right", course.Neighbors{Top: fairway, Right: fairway}, 18, course.BottomLeft},
		{"bottom left", course.Neighbors{Bottom: fairway, Left: fairway}, 72, course.TopRight},
		{"bottom right", course.Neighbors{Bottom: fairway, Right: fairway}, 80, course.TopLeft},
		{"all four", course.Neighbors{Top: fairway, Left: fairway, Right: fairway, Bottom: fairway}, 90, course.MiddleCenter},
		{"vertical strip", course.Neighbors{Top: fairway, Bottom: fairway}, 66, course.MiddleCenter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bitmask(course.Fairway, tt.n); got != tt.want {
				t.Fatalf("Bitmask = %d, want %d", got, tt.want)
			}
			if got := Resolve(course.Fairway, tt.n); got != tt.o {
				t.Fatalf("Resolve = %v, want %v", got, tt.o)
			}
		})
	}
}

func TestBitmaskIgnoresOtherTerrain(t *testing.T) {
	water := &course.Cell{Terrain: course.Water}
	n := course.Neighbors{Top: water, Left: water, Right: water, Bottom: water}
	if got := Bitmask(course.Sand, n); got != 0 {
		t.Fatalf("Bitmask = %d, want 0", got)
	}
	if got := Resolve(course.Sand, n); got != course.Single {
		t.Fatalf("Resolve = %v, want single", got)
	}
}

func TestFieldDeterministic(t *testing.T) {
	cfg := config.Default().Terrain
	a, err := NewField(cfg, 42)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	b, err := NewField(cfg, 42)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			va, vb := a.Sample(x, y, 15), b.Sample(x, y, 15)
			if va != vb {
				t.Fatalf("sample (%d,%d) differs: %v vs %v", x, y, va, vb)
			}
			if va < -1 || va > 1 {
				t.Fatalf("sample (%d,%d) = %v out of range", x, y, va)
			}
		}
	}
}

func TestSourceForUnknownBackend(t *testing.T) {
	if _, err := SourceFor("worley"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	for _, name := range []string{"", "simplex", "Perlin"} {
		if _, err := SourceFor(name); err != nil {
			t.Fatalf("SourceFor(%q): %v", name, err)
		}
	}
}

func TestGenerateUniformFairwayPlacesMarkersInScanOrder(t *testing.T) {
	gen := constantGenerator(t, 0.1)
	gen.SetPar(6)

	c, err := gen.Generate(16, 26)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if want := (course.Coord{X: 9, Y: 0}); c.Hole != want {
		t.Fatalf("hole = %v, want %v", c.Hole, want)
	}
	if want := (course.Coord{X: 1, Y: 23}); c.Ball != want {
		t.Fatalf("ball = %v, want %v", c.Ball, want)
	}
	if c.Par != 6 || c.ID == "" {
		t.Fatalf("unexpected course metadata: par=%d id=%q", c.Par, c.ID)
	}

	hole, _ := c.Grid.Cell(c.Hole)
	if hole.Terrain != course.Hole || hole.Tile != course.TileHole {
		t.Fatalf("hole cell = %+v", hole)
	}
	ball, _ := c.Grid.Cell(c.Ball)
	if ball.Terrain != course.Ball || ball.Tile != course.TileBall {
		t.Fatalf("ball cell = %+v", ball)
	}

	// Neighbours of the markers tile as if the markers were still fairway,
	// whichever side of the scan they fall on.
	for _, at := range []course.Coord{{X: 8, Y: 0}, {X: 10, Y: 0}, {X: 9, Y: 1}, {X: 0, Y: 23}, {X: 2, Y: 23}, {X: 1, Y: 22}} {
		cell, _ := c.Grid.Cell(at)
		if cell.Variant != course.MiddleCenter {
			t.Fatalf("variant at %v = %v, want middle-center", at, cell.Variant)
		}
	}
	interior, _ := c.Grid.Cell(course.Coord{X: 5, Y: 5})
	if interior.Variant != course.MiddleCenter || interior.Tile != course.TileIndex(course.Fairway, course.MiddleCenter) {
		t.Fatalf("interior cell = %+v", interior)
	}
	if math.Abs(interior.Elevation-0.1) > 1e-9 {
		t.Fatalf("elevation = %v, want 0.1", interior.Elevation)
	}
}

func TestGenerateFailsWithoutFairway(t *testing.T) {
	metrics := &GenerationMetrics{}
	gen := constantGenerator(t, -0.5)
	gen.SetProfiler(metrics.Profiler())

	c, err := gen.Generate(16, 26)
	if c != nil {
		t.Fatalf("expected nil course on failure")
	}
	if !errors.Is(err, course.ErrNoHole) || !errors.Is(err, course.ErrNoBall) {
		t.Fatalf("error = %v, want both placement sentinels", err)
	}
	snap := metrics.Snapshot()
	if snap.Failures != 1 || snap.MissingHoles != 1 || snap.MissingBalls != 1 {
		t.Fatalf("metrics = %+v", snap)
	}
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	cfg := config.Default().Terrain
	var found bool
	for seed := int64(1); seed <= 64 && !found; seed++ {
		a, err := NewGenerator(cfg, seed)
		if err != nil {
			t.Fatalf("NewGenerator: %v", err)
		}
		ca, errA := a.Generate(16, 26)

		b, _ := NewGenerator(cfg, seed)
		cb, errB := b.Generate(16, 26)

		if (errA == nil) != (errB == nil) {
			t.Fatalf("seed %d: outcomes differ: %v vs %v", seed, errA, errB)
		}
		if errA != nil {
			continue
		}
		found = true

		sa, sb := ca.Snapshot(), cb.Snapshot()
		for y := range sa.Terrain {
			for x := range sa.Terrain[y] {
				if sa.Terrain[y][x] != sb.Terrain[y][x] || sa.Tiles[y][x] != sb.Tiles[y][x] {
					t.Fatalf("seed %d: cell (%d,%d) differs", seed, x, y)
				}
			}
		}
		checkPlacement(t, ca)
	}
	if !found {
		t.Fatalf("no seed in 1..64 produced a playable course")
	}
}

func checkPlacement(t *testing.T, c *course.Course) {
	t.Helper()
	if c.Hole == c.Ball {
		t.Fatalf("hole and ball share %v", c.Hole)
	}
	w, h := c.Grid.Width(), c.Grid.Height()
	if !(float64(c.Hole.Y) < float64(h)*0.5 && float64(c.Hole.X) > float64(w)/2) {
		t.Fatalf("hole %v outside its region", c.Hole)
	}
	if !(float64(c.Ball.Y) > float64(h)*0.85 && c.Ball.X > 0) {
		t.Fatalf("ball %v outside its region", c.Ball)
	}
	counts := c.Grid.Counts()
	if counts[course.Hole] != 1 || counts[course.Ball] != 1 {
		t.Fatalf("marker counts = %d holes, %d balls", counts[course.Hole], counts[course.Ball])
	}
}

func TestGeneratorReseedChangesSeed(t *testing.T) {
	gen, err := NewGenerator(config.Default().Terrain, 7)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	gen.Reseed(8)
	if gen.Seed() != 8 {
		t.Fatalf("seed = %d, want 8", gen.Seed())
	}
}

func TestMetricsRecordCourse(t *testing.T) {
	metrics := &GenerationMetrics{}
	gen := constantGenerator(t, 0.1)
	gen.SetProfiler(metrics.Profiler())
	if _, err := gen.Generate(4, 20); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	snap := metrics.Snapshot()
	if snap.Courses != 1 {
		t.Fatalf("courses = %d", snap.Courses)
	}
	if snap.Cells[course.Hole] != 1 || snap.Cells[course.Ball] != 1 || snap.Cells[course.Fairway] != 78 {
		t.Fatalf("cells = %v", snap.Cells)
	}
	metrics.Reset()
	if snap := metrics.Snapshot(); snap.Courses != 0 || len(snap.Cells) != 0 {
		t.Fatalf("reset snapshot = %+v", snap)
	}
}
