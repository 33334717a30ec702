package rules

import (
	"errors"
	"reflect"
	"testing"

	"minigolf/internal/course"
)

func newGrid(t *testing.T, w, h int, fill course.Terrain) *course.Grid {
	t.Helper()
	g, err := course.NewGrid(w, h)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			setTerrain(t, g, course.Coord{X: x, Y: y}, fill)
		}
	}
	return g
}

func setTerrain(t *testing.T, g *course.Grid, c course.Coord, terrain course.Terrain) {
	t.Helper()
	if err := g.Set(course.Cell{Coord: c, Terrain: terrain}); err != nil {
		t.Fatalf("Set %v: %v", c, err)
	}
}

func TestSelfMoveNeverLegal(t *testing.T) {
	g := newGrid(t, 10, 10, course.Fairway)
	p := course.Coord{X: 4, Y: 4}
	for d := -2; d <= 8; d++ {
		v, err := Check(p, p, d, g)
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if v.Legal || v.Reason != ReasonSelf {
			t.Fatalf("distance %d: verdict = %+v", d, v)
		}
	}
}

func TestOnlyExactShapesAreLegal(t *testing.T) {
	g := newGrid(t, 21, 21, course.Fairway)
	from := course.Coord{X: 10, Y: 10}

	for allowed := 1; allowed <= 7; allowed++ {
		for dy := -3; dy <= 3; dy++ {
			for dx := -3; dx <= 3; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				ax, ay := abs(dx), abs(dy)
				exact := (ax == allowed && dy == 0) ||
					(dx == 0 && ay == allowed) ||
					(ax == allowed && ay == allowed)

				to := from.Add(course.Coord{X: dx, Y: dy})
				ok, err := IsLegal(from, to, allowed, g)
				if err != nil {
					t.Fatalf("IsLegal: %v", err)
				}
				if ok != exact {
					t.Fatalf("allowed %d offset (%d,%d): legal = %v, want %v", allowed, dx, dy, ok, exact)
				}
			}
		}
	}
}

func TestNonPositiveDistanceHasNoMoves(t *testing.T) {
	g := newGrid(t, 10, 10, course.Fairway)
	from := course.Coord{X: 5, Y: 5}
	for _, allowed := range []int{0, -1} {
		if targets := LegalTargets(from, allowed, g); len(targets) != 0 {
			t.Fatalf("allowed %d: targets = %v", allowed, targets)
		}
		v, err := Check(from, course.Coord{X: 5, Y: 4}, allowed, g)
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if v.Legal || v.Reason != ReasonDistance {
			t.Fatalf("allowed %d: verdict = %+v", allowed, v)
		}
	}
}

func TestWaterDestinationRejected(t *testing.T) {
	g := newGrid(t, 10, 10, course.Fairway)
	from := course.Coord{X: 5, Y: 5}
	for _, dir := range Directions {
		to := course.Coord{X: from.X + 2*dir.X, Y: from.Y + 2*dir.Y}
		setTerrain(t, g, to, course.Water)
	}
	for _, dir := range Directions {
		to := course.Coord{X: from.X + 2*dir.X, Y: from.Y + 2*dir.Y}
		v, err := Check(from, to, 2, g)
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if v.Legal || v.Reason != ReasonWater {
			t.Fatalf("to %v: verdict = %+v", to, v)
		}
	}
}

func TestTreesDestinationRejectedEvenFromFairway(t *testing.T) {
	g := newGrid(t, 10, 10, course.Fairway)
	from := course.Coord{X: 2, Y: 8}
	to := course.Coord{X: 2, Y: 5}
	setTerrain(t, g, to, course.Trees)

	v, err := Check(from, to, 3, g)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if v.Legal || v.Reason != ReasonTrees {
		t.Fatalf("verdict = %+v", v)
	}
}

func TestFairwayCarriesOverTrees(t *testing.T) {
	tests := []struct {
		name   string
		origin course.Terrain
		want   Verdict
	}{
		{"fairway", course.Fairway, Verdict{Legal: true, Reason: ReasonLegal}},
		{"rough", course.Rough, Verdict{Reason: ReasonObstructed}},
		{"sand", course.Sand, Verdict{Reason: ReasonObstructed}},
		{"tee", course.Ball, Verdict{Legal: true, Reason: ReasonLegal}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGrid(t, 6, 12, course.Fairway)
			from := course.Coord{X: 2, Y: 9}
			to := course.Coord{X: 2, Y: 5}
			setTerrain(t, g, from, tt.origin)
			setTerrain(t, g, course.Coord{X: 2, Y: 7}, course.Trees)

			v, err := Check(from, to, 4, g)
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if v != tt.want {
				t.Fatalf("verdict = %+v, want %+v", v, tt.want)
			}
		})
	}
}

func TestDiagonalObstructedByCornerCell(t *testing.T) {
	g := newGrid(t, 8, 8, course.Rough)
	from := course.Coord{X: 1, Y: 6}
	to := course.Coord{X: 3, Y: 4}
	// Beside the diagonal, sharing a corner with the path.
	setTerrain(t, g, course.Coord{X: 2, Y: 6}, course.Trees)

	v, err := Check(from, to, 2, g)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if v.Reason != ReasonObstructed {
		t.Fatalf("verdict = %+v, want obstructed", v)
	}
}

func TestOutOfBoundsIsAnError(t *testing.T) {
	g := newGrid(t, 5, 5, course.Fairway)
	cases := []struct {
		from, to course.Coord
	}{
		{course.Coord{X: 2, Y: 2}, course.Coord{X: 2, Y: 7}},
		{course.Coord{X: -1, Y: 2}, course.Coord{X: 2, Y: 2}},
		{course.Coord{X: 2, Y: 2}, course.Coord{X: 5, Y: 2}},
	}
	for _, tc := range cases {
		if _, err := Check(tc.from, tc.to, 3, g); !errors.Is(err, course.ErrOutOfBounds) {
			t.Fatalf("%v -> %v: err = %v, want ErrOutOfBounds", tc.from, tc.to, err)
		}
	}
}

func TestFlightPath(t *testing.T) {
	tests := []struct {
		name     string
		from, to course.Coord
		want     []course.Coord
	}{
		{
			name: "vertical",
			from: course.Coord{X: 5, Y: 10},
			to:   course.Coord{X: 5, Y: 7},
			want: []course.Coord{{X: 5, Y: 9}, {X: 5, Y: 8}, {X: 5, Y: 7}},
		},
		{
			name: "horizontal",
			from: course.Coord{X: 1, Y: 1},
			to:   course.Coord{X: 3, Y: 1},
			want: []course.Coord{{X: 2, Y: 1}, {X: 3, Y: 1}},
		},
		{
			name: "diagonal",
			from: course.Coord{X: 0, Y: 0},
			to:   course.Coord{X: 2, Y: 2},
			want: []course.Coord{
				{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1},
				{X: 2, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2},
			},
		},
		{
			name: "self",
			from: course.Coord{X: 3, Y: 3},
			to:   course.Coord{X: 3, Y: 3},
			want: []course.Coord{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FlightPath(tt.from, tt.to); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FlightPath = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProjectedTarget(t *testing.T) {
	from := course.Coord{X: 4, Y: 4}
	got := ProjectedTarget(from, course.Coord{X: 5, Y: 3}, 3)
	if want := (course.Coord{X: 7, Y: 1}); got != want {
		t.Fatalf("ProjectedTarget = %v, want %v", got, want)
	}
}

func TestLegalTargets(t *testing.T) {
	g := newGrid(t, 5, 5, course.Fairway)
	from := course.Coord{X: 0, Y: 4}
	setTerrain(t, g, course.Coord{X: 2, Y: 2}, course.Water)

	got := LegalTargets(from, 2, g)
	want := []course.Coord{{X: 0, Y: 2}, {X: 2, Y: 4}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LegalTargets = %v, want %v", got, want)
	}
}
