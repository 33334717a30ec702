package dice

import (
	"math/rand"

	"minigolf/internal/config"
	"minigolf/internal/course"
)

// Roll is one allowed-distance result. Final may be zero or negative on a
// poor sand roll; callers decide whether to reroll.
type Roll struct {
	Base     int  `json:"base"`
	Modifier int  `json:"modifier"`
	Final    int  `json:"final"`
	Putter   bool `json:"putter,omitempty"`
}

// Stuck reports whether the roll permits no move at all.
func (r Roll) Stuck() bool {
	return r.Final <= 0
}

// Roller produces allowed distances. It is owned by a single session and is
// not safe for concurrent use.
type Roller struct {
	rng             *rand.Rand
	sides           int
	fairwayModifier int
	sandModifier    int
	putterDistance  int
	current         Roll
}

// NewRoller builds a roller from dice configuration, seeded with seed.
func NewRoller(cfg config.DiceConfig, seed int64) *Roller {
	r := &Roller{
		rng:             rand.New(rand.NewSource(seed)),
		sides:           cfg.Sides,
		fairwayModifier: cfg.FairwayModifier,
		sandModifier:    cfg.SandModifier,
		putterDistance:  cfg.PutterDistance,
	}
	if r.sides <= 0 {
		r.sides = 6
	}
	if r.putterDistance <= 0 {
		r.putterDistance = 1
	}
	return r
}

// Reseed restarts the random sequence.
func (r *Roller) Reseed(seed int64) {
	r.rng.Seed(seed)
}

// Modifier returns the distance adjustment for a lie on terrain t.
func (r *Roller) Modifier(t course.Terrain) int {
	switch t {
	case course.Fairway:
		return r.fairwayModifier
	case course.Sand:
		return r.sandModifier
	default:
		return 0
	}
}

// Roll draws a base value in [1, sides] and applies the lie modifier. The
// result becomes the current roll.
func (r *Roller) Roll(t course.Terrain) Roll {
	return r.Apply(1+r.rng.Intn(r.sides), t)
}

// Apply records a roll with a known base value.
func (r *Roller) Apply(base int, t course.Terrain) Roll {
	mod := r.Modifier(t)
	r.current = Roll{Base: base, Modifier: mod, Final: base + mod}
	return r.current
}

// ForcePutter replaces the current roll with the putter distance.
func (r *Roller) ForcePutter() Roll {
	r.current = Roll{Final: r.putterDistance, Putter: true}
	return r.current
}

// Current returns the last roll.
func (r *Roller) Current() Roll {
	return r.current
}

// PutterDistance returns the configured putter distance.
func (r *Roller) PutterDistance() int {
	return r.putterDistance
}
