// Package metrics provides lightweight, lock-free counters for tracking
// the runtime statistics of one attach session.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Stage names a timed step of the attach pipeline.
type Stage string

const (
	StageResolve   Stage = "resolve"
	StageDial      Stage = "dial"
	StageHandshake Stage = "handshake"
	StageRelay     Stage = "relay"
)

// Collector tracks runtime metrics for a session.
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	bytesUp       atomic.Int64 // local input → channel
	bytesDown     atomic.Int64 // channel → local output
	idlePolls     atomic.Int64
	transientErrs atomic.Int64

	mu        sync.RWMutex
	startTime time.Time
	stages    map[Stage]time.Duration
	outcome   string
	lastError string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now(), stages: make(map[Stage]time.Duration)}
}

// ── I/O metrics ──────────────────────────────────────────────────────

// Upstream records n bytes written to the channel.
func (c *Collector) Upstream(n int) {
	if c == nil {
		return
	}
	c.bytesUp.Add(int64(n))
}

// Downstream records n bytes written to local output.
func (c *Collector) Downstream(n int) {
	if c == nil {
		return
	}
	c.bytesDown.Add(int64(n))
}

// BytesUp returns total bytes sent to the channel.
func (c *Collector) BytesUp() int64 {
	if c == nil {
		return 0
	}
	return c.bytesUp.Load()
}

// BytesDown returns total bytes delivered to local output.
func (c *Collector) BytesDown() int64 {
	if c == nil {
		return 0
	}
	return c.bytesDown.Load()
}

// IdlePoll records a poll window that elapsed with no data.
func (c *Collector) IdlePoll() {
	if c == nil {
		return
	}
	c.idlePolls.Add(1)
}

// TransientError records a would-block or interrupted read that was
// retried in place.
func (c *Collector) TransientError() {
	if c == nil {
		return
	}
	c.transientErrs.Add(1)
}

// ── Stage timing ─────────────────────────────────────────────────────

// Time returns a func that records the elapsed time for stage when
// called.  Typical use: defer c.Time(metrics.StageDial)().
func (c *Collector) Time(stage Stage) func() {
	if c == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		d := time.Since(start)
		c.mu.Lock()
		c.stages[stage] = d
		c.mu.Unlock()
	}
}

// ── Outcome ──────────────────────────────────────────────────────────

// RecordOutcome stores how the session ended.
func (c *Collector) RecordOutcome(outcome string, err error) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.outcome = outcome
	if err != nil {
		c.lastError = err.Error()
	}
	c.mu.Unlock()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Duration        string            `json:"duration"`
	BytesUp         int64             `json:"bytes_up"`
	BytesDown       int64             `json:"bytes_down"`
	IdlePolls       int64             `json:"idle_polls"`
	TransientErrors int64             `json:"transient_errors"`
	Stages          map[string]string `json:"stages,omitempty"`
	Outcome         string            `json:"outcome,omitempty"`
	LastError       string            `json:"last_error,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Duration:        time.Since(c.startTime).Truncate(time.Millisecond).String(),
		BytesUp:         c.bytesUp.Load(),
		BytesDown:       c.bytesDown.Load(),
		IdlePolls:       c.idlePolls.Load(),
		TransientErrors: c.transientErrs.Load(),
		Outcome:         c.outcome,
		LastError:       c.lastError,
	}
	if len(c.stages) > 0 {
		s.Stages = make(map[string]string, len(c.stages))
		for k, v := range c.stages {
			s.Stages[string(k)] = v.Truncate(time.Microsecond).String()
		}
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
