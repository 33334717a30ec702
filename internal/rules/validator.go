package rules

import (
	"fmt"

	"minigolf/internal/course"
)

// Reason explains a verdict.
type Reason string

const (
	ReasonLegal      Reason = "legal"
	ReasonSelf       Reason = "self"
	ReasonDistance   Reason = "distance"
	ReasonWater      Reason = "water"
	ReasonTrees      Reason = "trees"
	ReasonObstructed Reason = "obstructed"
)

// Verdict is the outcome of a legality check. An illegal move is a normal
// result, not an error.
type Verdict struct {
	Legal  bool   `json:"legal"`
	Reason Reason `json:"reason"`
}

// Directions lists the eight unit steps a shot may follow.
var Directions = [8]course.Coord{
	{X: 0, Y: -1},
	{X: 1, Y: -1},
	{X: 1, Y: 0},
	{X: 1, Y: 1},
	{X: 0, Y: 1},
	{X: -1, Y: 1},
	{X: -1, Y: 0},
	{X: -1, Y: -1},
}

// Check decides whether the ball may travel from from to to when the current
// roll allows exactly allowed cells. Coordinates outside the grid return an
// error wrapping course.ErrOutOfBounds.
//
// The displacement must be exactly allowed cells horizontally, vertically or
// along a diagonal. Water and trees destinations are rejected. A trees cell
// anywhere on the flight path rejects the shot unless it is played from
// fairway. The tee counts as fairway.
func Check(from, to course.Coord, allowed int, grid *course.Grid) (Verdict, error) {
	if grid == nil {
		return Verdict{}, fmt.Errorf("check move %v -> %v: nil grid", from, to)
	}
	origin, err := grid.Terrain(from)
	if err != nil {
		return Verdict{}, fmt.Errorf("check move origin: %w", err)
	}
	dest, err := grid.Terrain(to)
	if err != nil {
		return Verdict{}, fmt.Errorf("check move destination: %w", err)
	}

	if from == to {
		return Verdict{Reason: ReasonSelf}, nil
	}
	if !shapeMatches(to.Sub(from), allowed) {
		return Verdict{Reason: ReasonDistance}, nil
	}
	switch dest {
	case course.Water:
		return Verdict{Reason: ReasonWater}, nil
	case course.Trees:
		return Verdict{Reason: ReasonTrees}, nil
	}
	if origin.Lie() != course.Fairway && pathCrossesTrees(from, ProjectedTarget(from, to, allowed), grid) {
		return Verdict{Reason: ReasonObstructed}, nil
	}
	return Verdict{Legal: true, Reason: ReasonLegal}, nil
}

// IsLegal is Check reduced to its boolean.
func IsLegal(from, to course.Coord, allowed int, grid *course.Grid) (bool, error) {
	v, err := Check(from, to, allowed, grid)
	if err != nil {
		return false, err
	}
	return v.Legal, nil
}

// LegalTargets returns every destination reachable from from at allowed, in
// Directions order.
func LegalTargets(from course.Coord, allowed int, grid *course.Grid) []course.Coord {
	if allowed <= 0 || grid == nil || !grid.InBounds(from) {
		return nil
	}
	var targets []course.Coord
	for _, dir := range Directions {
		to := from.Add(course.Coord{X: dir.X * allowed, Y: dir.Y * allowed})
		if !grid.InBounds(to) {
			continue
		}
		if ok, err := IsLegal(from, to, allowed, grid); err == nil && ok {
			targets = append(targets, to)
		}
	}
	return targets
}

func shapeMatches(d course.Coord, allowed int) bool {
	if allowed <= 0 {
		return false
	}
	ax, ay := abs(d.X), abs(d.Y)
	switch {
	case ay == 0:
		return ax == allowed
	case ax == 0:
		return ay == allowed
	default:
		return ax == allowed && ay == allowed
	}
}

func pathCrossesTrees(from, target course.Coord, grid *course.Grid) bool {
	for _, c := range FlightPath(from, target) {
		if t, err := grid.Terrain(c); err == nil && t == course.Trees {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
