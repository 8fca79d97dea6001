package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Collector accumulates request counters without locks so the logging
// middleware can record on the hot path.
type Collector struct {
	started time.Time

	requests    atomic.Uint64
	clientErrs  atomic.Uint64
	serverErrs  atomic.Uint64
	rateLimited atomic.Uint64
	conflicts   atomic.Uint64
	durationMs  atomic.Uint64
}

func New() *Collector {
	return &Collector{started: time.Now().UTC()}
}

func (c *Collector) Record(status int, duration time.Duration) {
	c.requests.Add(1)
	switch {
	case status == 429:
		c.rateLimited.Add(1)
		c.clientErrs.Add(1)
	case status == 409:
		c.conflicts.Add(1)
		c.clientErrs.Add(1)
	case status >= 500:
		c.serverErrs.Add(1)
	case status >= 400:
		c.clientErrs.Add(1)
	}
	c.durationMs.Add(uint64(duration.Milliseconds()))
}

func (c *Collector) Snapshot() map[string]any {
	total := c.requests.Load()
	totalMs := c.durationMs.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"uptimeSeconds":     int64(time.Since(c.started).Seconds()),
		"requestsTotal":     total,
		"clientErrorsTotal": c.clientErrs.Load(),
		"serverErrorsTotal": c.serverErrs.Load(),
		"rateLimitedTotal":  c.rateLimited.Load(),
		"versionConflicts":  c.conflicts.Load(),
		"avgDurationMs":     avg,
	}
}

func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(c.Snapshot())
	}
}
