package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates per-task counters for calendar requests.
type Metrics struct {
	mu    sync.Mutex
	tasks map[string]*TaskMetrics

	requestTotal  atomic.Int64
	requestFailed atomic.Int64
}

// TaskMetrics holds the counters for one task type.
type TaskMetrics struct {
	requests      atomic.Int64
	failures      atomic.Int64
	noConsensus   atomic.Int64
	oracleCalls   atomic.Int64
	totalDuration atomic.Int64 // milliseconds
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{tasks: make(map[string]*TaskMetrics)}
}

// RecordRequest records a finished request with its oracle call count.
func (m *Metrics) RecordRequest(task string, attempts int, duration time.Duration) {
	m.requestTotal.Add(1)
	tm := m.task(task)
	tm.requests.Add(1)
	tm.oracleCalls.Add(int64(attempts))
	tm.totalDuration.Add(duration.Milliseconds())
}

// RecordFailure records a request that ended in an error.
func (m *Metrics) RecordFailure(task string) {
	m.requestFailed.Add(1)
	m.task(task).failures.Add(1)
}

// RecordNoConsensus records a request whose sampling ended without a quorum.
func (m *Metrics) RecordNoConsensus(task string) {
	m.task(task).noConsensus.Add(1)
}

func (m *Metrics) task(name string) *TaskMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	tm, ok := m.tasks[name]
	if !ok {
		tm = &TaskMetrics{}
		m.tasks[name] = tm
	}
	return tm
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		Tasks:         make([]TaskSnapshot, 0, len(m.tasks)),
	}
	for name, tm := range m.tasks {
		ts := TaskSnapshot{
			Task:        name,
			Requests:    tm.requests.Load(),
			Failures:    tm.failures.Load(),
			NoConsensus: tm.noConsensus.Load(),
			OracleCalls: tm.oracleCalls.Load(),
		}
		if ts.Requests > 0 {
			ts.AverageDurationMs = tm.totalDuration.Load() / ts.Requests
		}
		snap.Tasks = append(snap.Tasks, ts)
	}
	sort.Slice(snap.Tasks, func(i, j int) bool { return snap.Tasks[i].Task < snap.Tasks[j].Task })
	return snap
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestTotal  int64          `json:"request_total"`
	RequestFailed int64          `json:"request_failed"`
	Tasks         []TaskSnapshot `json:"tasks"`
}

// TaskSnapshot represents metrics for a single task type.
type TaskSnapshot struct {
	Task              string `json:"task"`
	Requests          int64  `json:"requests"`
	Failures          int64  `json:"failures"`
	NoConsensus       int64  `json:"no_consensus"`
	OracleCalls       int64  `json:"oracle_calls"`
	AverageDurationMs int64  `json:"average_duration_ms"`
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}
