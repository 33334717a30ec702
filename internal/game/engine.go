package game

import (
	"errors"
	"fmt"

	"minigolf/internal/course"
	"minigolf/internal/dice"
	"minigolf/internal/rules"
)

var (
	// ErrInvalidCourse reports a course missing its hole or ball placement.
	ErrInvalidCourse = errors.New("course is not playable")
	// ErrHoleComplete reports a hit after the hole was finished.
	ErrHoleComplete = errors.New("hole already complete")
)

// State is the turn engine state. MoveApplied is transient inside AttemptHit
// and never observed by callers.
type State int

const (
	AwaitingInput State = iota
	MoveApplied
	HoleComplete
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting-input"
	case MoveApplied:
		return "move-applied"
	case HoleComplete:
		return "hole-complete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Reaction is the sound category the presentation layer plays for a shot.
type Reaction string

const (
	ReactionNone    Reaction = "none"
	ReactionPutt    Reaction = "putt"
	ReactionFairway Reaction = "fairway"
	ReactionRough   Reaction = "rough"
	ReactionSand    Reaction = "sand"
)

// HitResult describes the outcome of AttemptHit. A rejected hit leaves
// Position at the unchanged ball position.
type HitResult struct {
	Accepted bool           `json:"accepted"`
	Reason   rules.Reason   `json:"reason"`
	From     course.Coord   `json:"from"`
	Position course.Coord   `json:"position"`
	Strokes  int            `json:"strokes"`
	Win      bool           `json:"win"`
	Reaction Reaction       `json:"reaction,omitempty"`
	Roll     dice.Roll      `json:"roll"`
	Terrain  course.Terrain `json:"terrain"`
}

// Engine runs the turns of one course. Callers own it explicitly; it holds no
// package-level state and is not safe for concurrent use.
type Engine struct {
	course   *course.Course
	roller   *dice.Roller
	position course.Coord
	history  []course.Coord
	state    State
}

// NewEngine starts play on c, rolling the first distance from the tee.
func NewEngine(c *course.Course, roller *dice.Roller) (*Engine, error) {
	if roller == nil {
		return nil, errors.New("engine requires a dice roller")
	}
	e := &Engine{roller: roller}
	if err := e.StartCourse(c); err != nil {
		return nil, err
	}
	return e, nil
}

// StartCourse replaces the course, resets the stroke history to the tee and
// rolls a fresh distance.
func (e *Engine) StartCourse(c *course.Course) error {
	if c == nil {
		return ErrInvalidCourse
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCourse, err)
	}
	e.course = c
	e.position = c.Ball
	e.history = []course.Coord{c.Ball}
	e.state = AwaitingInput
	e.roller.Roll(e.lie())
	return nil
}

func (e *Engine) terrain() course.Terrain {
	t, err := e.course.Grid.Terrain(e.position)
	if err != nil {
		return course.Rough
	}
	return t
}

func (e *Engine) lie() course.Terrain {
	return e.terrain().Lie()
}

// Course returns the course in play.
func (e *Engine) Course() *course.Course { return e.course }

// Position returns the ball position.
func (e *Engine) Position() course.Coord { return e.position }

// State returns the engine state.
func (e *Engine) State() State { return e.state }

// Lie returns the terrain the ball is played from; the tee plays as fairway.
func (e *Engine) Lie() course.Terrain { return e.lie() }

// Strokes returns the number of accepted hits on this course.
func (e *Engine) Strokes() int { return len(e.history) - 1 }

// StrokeHistory returns a copy of the ball positions, starting at the tee.
func (e *Engine) StrokeHistory() []course.Coord {
	out := make([]course.Coord, len(e.history))
	copy(out, e.history)
	return out
}

// CurrentRoll returns the roll governing the next hit.
func (e *Engine) CurrentRoll() dice.Roll { return e.roller.Current() }

// AllowedDistance returns the exact distance the next hit must travel.
func (e *Engine) AllowedDistance() int { return e.roller.Current().Final }

// CheckMove validates target against the current position and roll.
func (e *Engine) CheckMove(target course.Coord) (rules.Verdict, error) {
	return rules.Check(e.position, target, e.AllowedDistance(), e.course.Grid)
}

// IsLegalMove reports whether target is a legal destination for the next hit.
func (e *Engine) IsLegalMove(target course.Coord) (bool, error) {
	v, err := e.CheckMove(target)
	if err != nil {
		return false, err
	}
	return v.Legal, nil
}

// LegalMoves lists every legal destination for the next hit.
func (e *Engine) LegalMoves() []course.Coord {
	return rules.LegalTargets(e.position, e.AllowedDistance(), e.course.Grid)
}

// HasLegalMove reports whether the current roll permits any hit.
func (e *Engine) HasLegalMove() bool {
	return len(e.LegalMoves()) > 0
}

// Reroll draws a new distance for the current lie.
func (e *Engine) Reroll() (dice.Roll, error) {
	if e.state == HoleComplete {
		return dice.Roll{}, ErrHoleComplete
	}
	return e.roller.Roll(e.lie()), nil
}

// ForcePutter switches the next hit to the putter distance.
func (e *Engine) ForcePutter() (dice.Roll, error) {
	if e.state == HoleComplete {
		return dice.Roll{}, ErrHoleComplete
	}
	return e.roller.ForcePutter(), nil
}

// AttemptHit plays the ball to target. An illegal target is reported through
// HitResult.Accepted; errors are reserved for out-of-bounds targets and hits
// after the hole is complete.
func (e *Engine) AttemptHit(target course.Coord) (HitResult, error) {
	if e.state == HoleComplete {
		return HitResult{}, ErrHoleComplete
	}
	verdict, err := e.CheckMove(target)
	if err != nil {
		return HitResult{}, err
	}
	roll := e.roller.Current()
	from := e.position
	if !verdict.Legal {
		return HitResult{
			Reason:   verdict.Reason,
			From:     from,
			Position: from,
			Strokes:  e.Strokes(),
			Roll:     roll,
			Terrain:  e.terrain(),
		}, nil
	}

	reaction := reactionFor(e.lie(), roll.Final, e.roller.PutterDistance())

	e.state = MoveApplied
	e.position = target
	e.history = append(e.history, target)

	res := HitResult{
		Accepted: true,
		Reason:   verdict.Reason,
		From:     from,
		Position: target,
		Strokes:  e.Strokes(),
		Reaction: reaction,
		Terrain:  e.terrain(),
	}
	if e.course.IsHole(target) {
		e.state = HoleComplete
		res.Win = true
		res.Roll = roll
		return res, nil
	}
	res.Roll = e.roller.Roll(e.lie())
	e.state = AwaitingInput
	return res, nil
}

func reactionFor(origin course.Terrain, allowed, putter int) Reaction {
	if allowed == putter {
		return ReactionPutt
	}
	switch origin {
	case course.Fairway:
		return ReactionFairway
	case course.Rough:
		return ReactionRough
	case course.Sand:
		return ReactionSand
	default:
		return ReactionNone
	}
}
