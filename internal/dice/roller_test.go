package dice

import (
	"testing"

	"minigolf/internal/config"
	"minigolf/internal/course"
)

func TestApplyModifiers(t *testing.T) {
	r := NewRoller(config.Default().Dice, 1)
	tests := []struct {
		base    int
		terrain course.Terrain
		want    Roll
	}{
		{3, course.Fairway, Roll{Base: 3, Modifier: 1, Final: 4}},
		{3, course.Sand, Roll{Base: 3, Modifier: -1, Final: 2}},
		{1, course.Sand, Roll{Base: 1, Modifier: -1, Final: 0}},
		{5, course.Rough, Roll{Base: 5, Final: 5}},
		{2, course.Ball, Roll{Base: 2, Final: 2}},
		{6, course.Water, Roll{Base: 6, Final: 6}},
	}
	for _, tt := range tests {
		got := r.Apply(tt.base, tt.terrain)
		if got != tt.want {
			t.Fatalf("Apply(%d, %v) = %+v, want %+v", tt.base, tt.terrain, got, tt.want)
		}
		if r.Current() != got {
			t.Fatalf("Current = %+v, want %+v", r.Current(), got)
		}
	}
}

func TestZeroRollIsStuck(t *testing.T) {
	r := NewRoller(config.Default().Dice, 1)
	if roll := r.Apply(1, course.Sand); !roll.Stuck() {
		t.Fatalf("roll %+v should be stuck", roll)
	}
	if roll := r.Apply(2, course.Sand); roll.Stuck() {
		t.Fatalf("roll %+v should not be stuck", roll)
	}
}

func TestRollRange(t *testing.T) {
	r := NewRoller(config.Default().Dice, 99)
	seen := make(map[int]bool)
	for i := 0; i < 600; i++ {
		roll := r.Roll(course.Rough)
		if roll.Base < 1 || roll.Base > 6 {
			t.Fatalf("base %d out of range", roll.Base)
		}
		if roll.Final != roll.Base {
			t.Fatalf("rough roll %+v has modifier", roll)
		}
		seen[roll.Base] = true
	}
	if len(seen) != 6 {
		t.Fatalf("saw faces %v, want all six", seen)
	}
}

func TestRollDeterministicForSeed(t *testing.T) {
	a := NewRoller(config.Default().Dice, 7)
	b := NewRoller(config.Default().Dice, 7)
	for i := 0; i < 20; i++ {
		if ra, rb := a.Roll(course.Fairway), b.Roll(course.Fairway); ra != rb {
			t.Fatalf("roll %d differs: %+v vs %+v", i, ra, rb)
		}
	}

	a.Reseed(3)
	b.Reseed(3)
	if ra, rb := a.Roll(course.Sand), b.Roll(course.Sand); ra != rb {
		t.Fatalf("rolls after reseed differ: %+v vs %+v", ra, rb)
	}
}

func TestForcePutter(t *testing.T) {
	r := NewRoller(config.Default().Dice, 1)
	r.Apply(1, course.Sand)
	got := r.ForcePutter()
	if got.Final != 1 || !got.Putter {
		t.Fatalf("ForcePutter = %+v", got)
	}
	if r.Current() != got {
		t.Fatalf("Current = %+v, want %+v", r.Current(), got)
	}
}

func TestZeroConfigFallsBack(t *testing.T) {
	r := NewRoller(config.DiceConfig{}, 1)
	if r.PutterDistance() != 1 {
		t.Fatalf("putter distance = %d", r.PutterDistance())
	}
	for i := 0; i < 50; i++ {
		if roll := r.Roll(course.Fairway); roll.Base < 1 || roll.Base > 6 || roll.Modifier != 0 {
			t.Fatalf("roll %+v", roll)
		}
	}
}
