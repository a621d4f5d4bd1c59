package forkwork

import (
	"sort"
	"sync"
	"time"
)

// StatsSnapshot is a point-in-time view of an orchestrator's run statistics.
type StatsSnapshot struct {
	// Counters
	RunsLaunched  int `json:"runs_launched"`
	RunsSucceeded int `json:"runs_succeeded"`
	RunsFailed    int `json:"runs_failed"`

	// Worker process lifetime, launch to reap (milliseconds)
	LifetimeAvgMs float64 `json:"lifetime_avg_ms"`
	LifetimeP50Ms float64 `json:"lifetime_p50_ms"`
	LifetimeP95Ms float64 `json:"lifetime_p95_ms"`
	LifetimeP99Ms float64 `json:"lifetime_p99_ms"`
	LifetimeMinMs float64 `json:"lifetime_min_ms"`
	LifetimeMaxMs float64 `json:"lifetime_max_ms"`

	Timestamp time.Time `json:"timestamp"`
}

// Stats is a thread-safe run-statistics collector for an Orchestrator.
type Stats struct {
	mu sync.RWMutex

	maxSamples int

	runsLaunched  int
	runsSucceeded int
	runsFailed    int

	// Lifetime samples (bounded, oldest dropped first)
	lifetimes []float64
}

// NewStats creates a Stats collector keeping at most maxSamples lifetime
// samples; non-positive values select the default of 1000.
func NewStats(maxSamples int) *Stats {
	if maxSamples <= 0 {
		maxSamples = 1000
	}
	return &Stats{
		maxSamples: maxSamples,
		lifetimes:  make([]float64, 0, maxSamples),
	}
}

// RecordLaunch counts one spawned worker.
func (s *Stats) RecordLaunch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runsLaunched++
}

// RecordExit counts one reaped worker and stores its lifetime sample.
func (s *Stats) RecordExit(success bool, lifetime time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if success {
		s.runsSucceeded++
	} else {
		s.runsFailed++
	}

	if len(s.lifetimes) >= s.maxSamples {
		s.lifetimes = s.lifetimes[1:]
	}
	s.lifetimes = append(s.lifetimes, float64(lifetime.Milliseconds()))
}

// Snapshot returns a point-in-time snapshot of all statistics.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := StatsSnapshot{
		RunsLaunched:  s.runsLaunched,
		RunsSucceeded: s.runsSucceeded,
		RunsFailed:    s.runsFailed,
		Timestamp:     time.Now(),
	}

	if len(s.lifetimes) > 0 {
		lifetimes := make([]float64, len(s.lifetimes))
		copy(lifetimes, s.lifetimes)
		sort.Float64s(lifetimes)

		n := len(lifetimes)
		snapshot.LifetimeMinMs = lifetimes[0]
		snapshot.LifetimeMaxMs = lifetimes[n-1]

		sum := 0.0
		for _, v := range lifetimes {
			sum += v
		}
		snapshot.LifetimeAvgMs = sum / float64(n)

		snapshot.LifetimeP50Ms = lifetimes[n*50/100]
		snapshot.LifetimeP95Ms = lifetimes[n*95/100]
		snapshot.LifetimeP99Ms = lifetimes[n*99/100]
	}

	return snapshot
}

// Reset resets all statistics.
func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runsLaunched = 0
	s.runsSucceeded = 0
	s.runsFailed = 0
	s.lifetimes = make([]float64, 0, s.maxSamples)
}
