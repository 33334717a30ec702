package session

import (
	"math/rand"
	"sync"
	"time"

	"minigolf/internal/course"
	"minigolf/internal/dice"
	"minigolf/internal/game"
	"minigolf/internal/terrain"
)

// HoleScore records one completed hole on a session's scorecard.
type HoleScore struct {
	CourseID    string         `json:"courseId"`
	Seed        int64          `json:"seed"`
	Par         int            `json:"par"`
	Strokes     int            `json:"strokes"`
	Path        []course.Coord `json:"path"`
	CompletedAt time.Time      `json:"completedAt"`
}

// State is a read-only view of a session.
type State struct {
	ID          string         `json:"id"`
	CourseID    string         `json:"courseId"`
	Seed        int64          `json:"seed"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	TileSize    int            `json:"tileSize"`
	Par         int            `json:"par"`
	Hole        course.Coord   `json:"hole"`
	Ball        course.Coord   `json:"ball"`
	Position    course.Coord   `json:"position"`
	Lie         course.Terrain `json:"lie"`
	Strokes     int            `json:"strokes"`
	State       game.State     `json:"state"`
	Roll        dice.Roll      `json:"roll"`
	HolesPlayed int            `json:"holesPlayed"`
	CreatedAt   time.Time      `json:"createdAt"`
	LastActive  time.Time      `json:"lastActive"`
}

// HitOutcome extends the engine result with session bookkeeping.
type HitOutcome struct {
	game.HitResult
	// Rerolls counts automatic rerolls of stuck distances after the hit.
	Rerolls     int            `json:"rerolls,omitempty"`
	NextCourse  *course.Course `json:"-"`
	HolesPlayed int            `json:"holesPlayed"`
}

// Session owns one engine, roller and generator. All access goes through the
// session mutex.
type Session struct {
	id string

	mu         sync.Mutex
	generator  *terrain.Generator
	roller     *dice.Roller
	engine     *game.Engine
	seeds      *rand.Rand
	courses    []string // stored course ids, evicted when the session ends
	scorecard  []HoleScore
	createdAt  time.Time
	lastActive time.Time
}

func (s *Session) touch(now time.Time) {
	s.lastActive = now
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) state(tileSize int) State {
	c := s.engine.Course()
	return State{
		ID:          s.id,
		CourseID:    c.ID,
		Seed:        c.Seed,
		Width:       c.Grid.Width(),
		Height:      c.Grid.Height(),
		TileSize:    tileSize,
		Par:         c.Par,
		Hole:        c.Hole,
		Ball:        c.Ball,
		Position:    s.engine.Position(),
		Lie:         s.engine.Lie(),
		Strokes:     s.engine.Strokes(),
		State:       s.engine.State(),
		Roll:        s.engine.CurrentRoll(),
		HolesPlayed: len(s.scorecard),
		CreatedAt:   s.createdAt,
		LastActive:  s.lastActive,
	}
}
