package metrics

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCollector_Bytes(t *testing.T) {
	c := New()

	c.Upstream(13)
	c.Downstream(4096)
	c.Downstream(100)

	if c.BytesUp() != 13 {
		t.Errorf("bytes up = %d, want 13", c.BytesUp())
	}
	if c.BytesDown() != 4196 {
		t.Errorf("bytes down = %d, want 4196", c.BytesDown())
	}
}

func TestCollector_Concurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); c.Upstream(1) }()
		go func() { defer wg.Done(); c.Downstream(2) }()
	}
	wg.Wait()
	if c.BytesUp() != 50 || c.BytesDown() != 100 {
		t.Errorf("up=%d down=%d, want 50/100", c.BytesUp(), c.BytesDown())
	}
}

func TestCollector_StageTiming(t *testing.T) {
	c := New()
	done := c.Time(StageHandshake)
	time.Sleep(2 * time.Millisecond)
	done()

	s := c.Snapshot()
	if _, ok := s.Stages["handshake"]; !ok {
		t.Fatalf("handshake stage missing: %+v", s.Stages)
	}
	if _, ok := s.Stages["relay"]; ok {
		t.Error("relay stage should not be recorded")
	}
}

func TestCollector_Outcome(t *testing.T) {
	c := New()
	c.RecordOutcome("failed", errors.New("write stdout failed"))
	s := c.Snapshot()
	if s.Outcome != "failed" || s.LastError != "write stdout failed" {
		t.Errorf("snapshot = %+v", s)
	}
}

func TestCollector_JSON(t *testing.T) {
	c := New()
	c.Upstream(5)
	c.IdlePoll()
	c.TransientError()

	var s Snapshot
	if err := json.Unmarshal([]byte(c.JSON()), &s); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if s.BytesUp != 5 || s.IdlePolls != 1 || s.TransientErrors != 1 {
		t.Errorf("decoded = %+v", s)
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	c.Upstream(1)
	c.Downstream(1)
	c.IdlePoll()
	c.TransientError()
	c.Time(StageDial)()
	c.RecordOutcome("completed", nil)
	if c.BytesUp() != 0 || c.BytesDown() != 0 {
		t.Error("nil collector should report zero")
	}
	if s := c.Snapshot(); s.Outcome != "" {
		t.Errorf("nil snapshot = %+v", s)
	}
}
