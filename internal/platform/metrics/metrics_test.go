package metrics

import (
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(503, 30*time.Millisecond)
	c.Record(429, 0)
	c.Validation(true)
	c.Validation(false)
	c.Validation(true)
	c.RequestCreated()
	c.StaleWrite()

	snap := c.Snapshot()
	if snap["requestsTotal"] != uint64(3) || snap["errorsTotal"] != uint64(1) || snap["rateLimitedTotal"] != uint64(1) {
		t.Fatalf("unexpected request counters %v", snap)
	}
	if snap["avgDurationMs"] != float64(40)/3 {
		t.Fatalf("unexpected average %v", snap["avgDurationMs"])
	}
	if snap["approvalsTotal"] != uint64(2) || snap["resubmissionsTotal"] != uint64(1) {
		t.Fatalf("unexpected validation counters %v", snap)
	}
	if snap["hrRequestsCreatedTotal"] != uint64(1) || snap["staleWritesTotal"] != uint64(1) || snap["duplicateRejectedTotal"] != uint64(0) {
		t.Fatalf("unexpected domain counters %v", snap)
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.Record(200, time.Second)
	c.Validation(true)
	c.RequestCreated()
	c.DuplicateRejected()
	c.StaleWrite()
}
