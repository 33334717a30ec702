package terrain

import (
	"sync/atomic"
	"time"

	"minigolf/internal/course"
)

// Profiler receives instrumentation hooks from Generator.
type Profiler interface {
	RecordCourse(duration time.Duration, counts map[course.Terrain]int)
	RecordPlacementFailure(missingHole, missingBall bool)
}

const terrainKinds = int(course.Ball) + 1

// GenerationMetrics accumulates generation counters. The zero value is ready to use.
type GenerationMetrics struct {
	courses      atomic.Int64
	failures     atomic.Int64
	missingHoles atomic.Int64
	missingBalls atomic.Int64
	totalTime    atomic.Int64
	cells        [terrainKinds]atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of GenerationMetrics.
type MetricsSnapshot struct {
	Courses      int64                    `json:"courses"`
	Failures     int64                    `json:"failures"`
	MissingHoles int64                    `json:"missingHoles"`
	MissingBalls int64                    `json:"missingBalls"`
	TotalTime    time.Duration            `json:"totalTime"`
	Cells        map[course.Terrain]int64 `json:"cells"`
}

// Profiler returns a Profiler backed by m.
func (m *GenerationMetrics) Profiler() Profiler {
	if m == nil {
		return nil
	}
	return (*metricsProfiler)(m)
}

// Reset zeroes all counters.
func (m *GenerationMetrics) Reset() {
	if m == nil {
		return
	}
	m.courses.Store(0)
	m.failures.Store(0)
	m.missingHoles.Store(0)
	m.missingBalls.Store(0)
	m.totalTime.Store(0)
	for i := range m.cells {
		m.cells[i].Store(0)
	}
}

// Snapshot captures the current counter values.
func (m *GenerationMetrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	snap := MetricsSnapshot{
		Courses:      m.courses.Load(),
		Failures:     m.failures.Load(),
		MissingHoles: m.missingHoles.Load(),
		MissingBalls: m.missingBalls.Load(),
		TotalTime:    time.Duration(m.totalTime.Load()),
		Cells:        make(map[course.Terrain]int64, terrainKinds),
	}
	for i := range m.cells {
		if n := m.cells[i].Load(); n > 0 {
			snap.Cells[course.Terrain(i)] = n
		}
	}
	return snap
}

type metricsProfiler GenerationMetrics

func (m *metricsProfiler) RecordCourse(duration time.Duration, counts map[course.Terrain]int) {
	metrics := (*GenerationMetrics)(m)
	metrics.courses.Add(1)
	metrics.totalTime.Add(duration.Nanoseconds())
	for t, n := range counts {
		if int(t) < terrainKinds {
			metrics.cells[t].Add(int64(n))
		}
	}
}

func (m *metricsProfiler) RecordPlacementFailure(missingHole, missingBall bool) {
	metrics := (*GenerationMetrics)(m)
	metrics.failures.Add(1)
	if missingHole {
		metrics.missingHoles.Add(1)
	}
	if missingBall {
		metrics.missingBalls.Add(1)
	}
}
