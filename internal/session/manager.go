package session

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"minigolf/internal/config"
	"minigolf/internal/course"
	"minigolf/internal/dice"
	"minigolf/internal/game"
	"minigolf/internal/rules"
	"minigolf/internal/storage"
	"minigolf/internal/terrain"
)

var (
	// ErrNotFound reports an unknown session id.
	ErrNotFound = errors.New("session not found")
	// ErrTooManySessions reports that sessions.max_sessions is reached.
	ErrTooManySessions = errors.New("session limit reached")
	// ErrGenerationExhausted reports that no playable course was produced
	// within course.max_attempts seeds.
	ErrGenerationExhausted = errors.New("no playable course generated")
	// ErrHoleInProgress reports a request for the next course before the
	// current hole is complete.
	ErrHoleInProgress = errors.New("hole still in progress")
)

// maxAutoRerolls bounds automatic rerolling of stuck distances.
const maxAutoRerolls = 32

// CourseListener is notified whenever a session starts a new course.
type CourseListener func(sessionID string, c *course.Course)

type timeSource func() time.Time

// Manager hosts independent game sessions. Sessions share nothing but the
// course store and generation metrics.
type Manager struct {
	cfg     *config.Config
	store   storage.CourseStore
	logger  *log.Logger
	metrics *terrain.GenerationMetrics
	now     timeSource

	mu       sync.RWMutex
	sessions map[string]*Session

	listenerMu sync.RWMutex
	listener   CourseListener
}

// NewManager builds a manager. A nil store keeps courses in memory and a nil
// logger uses the standard logger's writer.
func NewManager(cfg *config.Config, store storage.CourseStore, logger *log.Logger, metrics *terrain.GenerationMetrics) *Manager {
	if cfg == nil {
		cfg = config.Default()
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}
	if logger == nil {
		logger = log.New(log.Writer(), "sessions ", log.LstdFlags|log.Lmicroseconds)
	}
	if metrics == nil {
		metrics = &terrain.GenerationMetrics{}
	}
	return &Manager{
		cfg:      cfg,
		store:    store,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Metrics returns the shared generation counters.
func (m *Manager) Metrics() *terrain.GenerationMetrics {
	return m.metrics
}

// Store returns the course store.
func (m *Manager) Store() storage.CourseStore {
	return m.store
}

// SetCourseListener installs fn as the course-start observer.
func (m *Manager) SetCourseListener(fn CourseListener) {
	m.listenerMu.Lock()
	m.listener = fn
	m.listenerMu.Unlock()
}

func (m *Manager) notifyCourse(sessionID string, c *course.Course) {
	m.listenerMu.RLock()
	fn := m.listener
	m.listenerMu.RUnlock()
	if fn != nil {
		fn(sessionID, c)
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs returns live session ids in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Create starts a session on a freshly generated course. A nil seed uses
// course.seed from configuration, or the clock when that is zero.
func (m *Manager) Create(seed *int64) (State, error) {
	if limit := m.cfg.Sessions.MaxSessions; limit > 0 && m.Len() >= limit {
		return State{}, ErrTooManySessions
	}

	base := m.cfg.Course.Seed
	if seed != nil {
		base = *seed
	}
	if base == 0 {
		base = m.now().UnixNano()
	}

	generator, err := terrain.NewGenerator(m.cfg.Terrain, base)
	if err != nil {
		return State{}, fmt.Errorf("create generator: %w", err)
	}
	generator.SetPar(m.cfg.Rules.Par)
	generator.SetProfiler(m.metrics.Profiler())

	now := m.now()
	sess := &Session{
		id:         uuid.NewString(),
		generator:  generator,
		roller:     dice.NewRoller(m.cfg.Dice, base),
		seeds:      rand.New(rand.NewSource(base)),
		createdAt:  now,
		lastActive: now,
	}

	c, err := m.generate(sess, base)
	if err != nil {
		return State{}, err
	}
	engine, err := game.NewEngine(c, sess.roller)
	if err != nil {
		m.evict(sess)
		return State{}, err
	}
	sess.engine = engine
	m.settle(sess)

	m.mu.Lock()
	if limit := m.cfg.Sessions.MaxSessions; limit > 0 && len(m.sessions) >= limit {
		m.mu.Unlock()
		m.evict(sess)
		return State{}, ErrTooManySessions
	}
	m.sessions[sess.id] = sess
	m.mu.Unlock()

	m.logger.Printf("session %s started course %s (seed %d)", sess.id, c.ID, c.Seed)
	m.notifyCourse(sess.id, c)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state(m.cfg.Course.TileSize), nil
}

// generate produces a playable course, starting from seed and drawing
// further seeds from the session's sequence on placement failure. The course
// is saved to the store before it is returned.
func (m *Manager) generate(sess *Session, seed int64) (*course.Course, error) {
	attempts := m.cfg.Course.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if sess.generator.Seed() != seed {
			sess.generator.Reseed(seed)
		}
		c, err := sess.generator.Generate(m.cfg.Course.Width, m.cfg.Course.Height)
		if err == nil {
			if err := m.store.Save(c.Snapshot()); err != nil {
				m.logger.Printf("session %s: store course %s: %v", sess.id, c.ID, err)
			} else {
				sess.courses = append(sess.courses, c.ID)
			}
			sess.roller.Reseed(c.Seed)
			return c, nil
		}
		if !errors.Is(err, course.ErrNoHole) && !errors.Is(err, course.ErrNoBall) {
			return nil, err
		}
		lastErr = err
		m.logger.Printf("session %s: course attempt %d/%d: %v", sess.id, attempt, attempts, err)
		seed = sess.seeds.Int63()
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrGenerationExhausted, attempts, lastErr)
}

// advance generates the course following a completed hole and starts play on
// it. On failure the engine stays on the completed hole so a later request can
// retry.
func (m *Manager) advance(sess *Session) (*course.Course, error) {
	next, err := m.generate(sess, sess.seeds.Int63())
	if err != nil {
		return nil, err
	}
	if err := sess.engine.StartCourse(next); err != nil {
		return nil, err
	}
	m.settle(sess)
	return next, nil
}

// resume advances sess when its hole is complete and returns the course that
// was started, if any.
func (m *Manager) resume(sess *Session) (*course.Course, error) {
	if sess.engine.State() != game.HoleComplete {
		return nil, nil
	}
	return m.advance(sess)
}

// settle rerolls while the current distance allows no move, when configured.
func (m *Manager) settle(sess *Session) int {
	if !m.cfg.Rules.AutoRerollStuck {
		return 0
	}
	rerolls := 0
	for rerolls < maxAutoRerolls && sess.engine.State() == game.AwaitingInput && !sess.engine.HasLegalMove() {
		if _, err := sess.engine.Reroll(); err != nil {
			break
		}
		rerolls++
	}
	return rerolls
}

func (m *Manager) lookup(id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	return sess, nil
}

// with runs fn under the session lock and marks the session active.
func (m *Manager) with(id string, fn func(sess *Session) error) error {
	sess, err := m.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch(m.now())
	return fn(sess)
}

// State returns the current view of session id.
func (m *Manager) State(id string) (State, error) {
	var st State
	err := m.with(id, func(sess *Session) error {
		st = sess.state(m.cfg.Course.TileSize)
		return nil
	})
	return st, err
}

// Course returns the course currently in play for session id.
func (m *Manager) Course(id string) (*course.Course, error) {
	var c *course.Course
	err := m.with(id, func(sess *Session) error {
		c = sess.engine.Course()
		return nil
	})
	return c, err
}

// Hit attempts a shot to target. Completing the hole records a scorecard
// entry and starts the next course immediately. When no playable course can
// be generated the winning outcome is returned alongside the error and the
// session stays on the completed hole; the next Hit, Reroll, Putter or
// NextCourse retries generation.
func (m *Manager) Hit(id string, target course.Coord) (HitOutcome, error) {
	var (
		out     HitOutcome
		started []*course.Course
	)
	err := m.with(id, func(sess *Session) error {
		resumed, err := m.resume(sess)
		if err != nil {
			return err
		}
		if resumed != nil {
			started = append(started, resumed)
			out.NextCourse = resumed
		}

		res, err := sess.engine.AttemptHit(target)
		if err != nil {
			return err
		}
		out.HitResult = res
		out.HolesPlayed = len(sess.scorecard)
		if !res.Accepted {
			return nil
		}
		if !res.Win {
			out.Rerolls = m.settle(sess)
			out.Roll = sess.engine.CurrentRoll()
			return nil
		}

		finished := sess.engine.Course()
		sess.scorecard = append(sess.scorecard, HoleScore{
			CourseID:    finished.ID,
			Seed:        finished.Seed,
			Par:         finished.Par,
			Strokes:     res.Strokes,
			Path:        sess.engine.StrokeHistory(),
			CompletedAt: m.now().UTC(),
		})
		out.HolesPlayed = len(sess.scorecard)
		m.logger.Printf("session %s holed course %s in %d (par %d)", sess.id, finished.ID, res.Strokes, finished.Par)

		next, err := m.advance(sess)
		if err != nil {
			return err
		}
		started = append(started, next)
		out.NextCourse = next
		return nil
	})
	for _, c := range started {
		m.notifyCourse(id, c)
	}
	return out, err
}

// NextCourse starts the course following a completed hole whose successor
// could not be generated at the time of the win.
func (m *Manager) NextCourse(id string) (State, error) {
	var (
		st      State
		started *course.Course
	)
	err := m.with(id, func(sess *Session) error {
		if sess.engine.State() != game.HoleComplete {
			return ErrHoleInProgress
		}
		next, err := m.advance(sess)
		if err != nil {
			return err
		}
		started = next
		st = sess.state(m.cfg.Course.TileSize)
		return nil
	})
	if started != nil {
		m.notifyCourse(id, started)
	}
	return st, err
}

// Legal reports whether target is a legal destination for session id, along
// with the distance the verdict was taken at.
func (m *Manager) Legal(id string, target course.Coord) (rules.Verdict, int, error) {
	var (
		v       rules.Verdict
		allowed int
	)
	err := m.with(id, func(sess *Session) error {
		var err error
		allowed = sess.engine.AllowedDistance()
		v, err = sess.engine.CheckMove(target)
		return err
	})
	return v, allowed, err
}

// LegalMoves lists the legal destinations for session id.
func (m *Manager) LegalMoves(id string) ([]course.Coord, error) {
	var moves []course.Coord
	err := m.with(id, func(sess *Session) error {
		moves = sess.engine.LegalMoves()
		return nil
	})
	return moves, err
}

// Putter switches session id to the putter distance.
func (m *Manager) Putter(id string) (dice.Roll, error) {
	var (
		roll    dice.Roll
		started *course.Course
	)
	err := m.with(id, func(sess *Session) error {
		var err error
		if started, err = m.resume(sess); err != nil {
			return err
		}
		roll, err = sess.engine.ForcePutter()
		return err
	})
	if started != nil {
		m.notifyCourse(id, started)
	}
	return roll, err
}

// Reroll draws a new distance for session id and reports whether it permits
// any move.
func (m *Manager) Reroll(id string) (dice.Roll, bool, error) {
	var (
		roll    dice.Roll
		stuck   bool
		started *course.Course
	)
	err := m.with(id, func(sess *Session) error {
		var err error
		if started, err = m.resume(sess); err != nil {
			return err
		}
		if roll, err = sess.engine.Reroll(); err != nil {
			return err
		}
		stuck = !sess.engine.HasLegalMove()
		return nil
	})
	if started != nil {
		m.notifyCourse(id, started)
	}
	return roll, stuck, err
}

// Strokes returns the stroke history of the current course.
func (m *Manager) Strokes(id string) ([]course.Coord, error) {
	var history []course.Coord
	err := m.with(id, func(sess *Session) error {
		history = sess.engine.StrokeHistory()
		return nil
	})
	return history, err
}

// Scorecard returns the completed holes of session id.
func (m *Manager) Scorecard(id string) ([]HoleScore, error) {
	var card []HoleScore
	err := m.with(id, func(sess *Session) error {
		card = append([]HoleScore(nil), sess.scorecard...)
		return nil
	})
	return card, err
}

// Delete ends session id and drops its stored courses.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	m.evict(sess)
	return nil
}

// evict removes the courses sess generated from the store.
func (m *Manager) evict(sess *Session) {
	sess.mu.Lock()
	ids := sess.courses
	sess.courses = nil
	sess.mu.Unlock()
	for _, id := range ids {
		if err := m.store.Delete(id); err != nil {
			m.logger.Printf("session %s: evict course %s: %v", sess.id, id, err)
		}
	}
}

// PruneOrphans deletes stored courses that no live session generated, such as
// those left by a previous process, and returns how many were removed.
func (m *Manager) PruneOrphans() (int, error) {
	m.mu.RLock()
	live := make(map[string]struct{})
	for _, sess := range m.sessions {
		sess.mu.Lock()
		for _, id := range sess.courses {
			live[id] = struct{}{}
		}
		sess.mu.Unlock()
	}
	m.mu.RUnlock()

	var orphans []string
	err := m.store.ForEach(func(s course.Snapshot) bool {
		if _, ok := live[s.ID]; !ok {
			orphans = append(orphans, s.ID)
		}
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("scan course store: %w", err)
	}
	for _, id := range orphans {
		if err := m.store.Delete(id); err != nil {
			return 0, fmt.Errorf("delete course %s: %w", id, err)
		}
	}
	return len(orphans), nil
}

// Reap removes sessions idle for longer than timeout as of now and returns
// their ids.
func (m *Manager) Reap(now time.Time, timeout time.Duration) []string {
	if timeout <= 0 {
		return nil
	}
	m.mu.RLock()
	candidates := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		candidates = append(candidates, sess)
	}
	m.mu.RUnlock()

	var reaped []string
	for _, sess := range candidates {
		if now.Sub(sess.idleSince()) <= timeout {
			continue
		}
		m.mu.Lock()
		_, ok := m.sessions[sess.id]
		if ok {
			delete(m.sessions, sess.id)
		}
		m.mu.Unlock()
		if ok {
			m.evict(sess)
			reaped = append(reaped, sess.id)
		}
	}
	sort.Strings(reaped)
	for _, id := range reaped {
		m.logger.Printf("session %s reaped after %s idle", id, timeout)
	}
	return reaped
}
