package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	approvals       uint64
	resubmissions   uint64
	requestsCreated uint64
	duplicates      uint64
	staleWrites     uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// Validation counts one accepted HR decision.
func (c *Collector) Validation(approved bool) {
	if c == nil {
		return
	}
	if approved {
		atomic.AddUint64(&c.approvals, 1)
		return
	}
	atomic.AddUint64(&c.resubmissions, 1)
}

func (c *Collector) RequestCreated() {
	if c != nil {
		atomic.AddUint64(&c.requestsCreated, 1)
	}
}

func (c *Collector) DuplicateRejected() {
	if c != nil {
		atomic.AddUint64(&c.duplicates, 1)
	}
}

func (c *Collector) StaleWrite() {
	if c != nil {
		atomic.AddUint64(&c.staleWrites, 1)
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":          total,
		"errorsTotal":            atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal":       atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":          avg,
		"totalDurationMs":        totalMs,
		"approvalsTotal":         atomic.LoadUint64(&c.approvals),
		"resubmissionsTotal":     atomic.LoadUint64(&c.resubmissions),
		"hrRequestsCreatedTotal": atomic.LoadUint64(&c.requestsCreated),
		"duplicateRejectedTotal": atomic.LoadUint64(&c.duplicates),
		"staleWritesTotal":       atomic.LoadUint64(&c.staleWrites),
	}
}
