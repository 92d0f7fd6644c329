package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type CheckResult struct {
	Name       string `json:"name"`
	Healthy    bool   `json:"healthy"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

type Checker interface {
	Check(ctx context.Context) CheckResult
}

// ProbeRunner runs every checker in parallel under a shared timeout. Results
// are cached for cacheTTL so frequent readiness polls do not hammer backends.
type ProbeRunner struct {
	timeout  time.Duration
	cacheTTL time.Duration
	checkers []Checker
	now      func() time.Time

	mu       sync.Mutex
	cachedAt time.Time
	ready    bool
	results  []CheckResult
}

func NewProbeRunner(timeout, cacheTTL time.Duration, checkers ...Checker) *ProbeRunner {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ProbeRunner{timeout: timeout, cacheTTL: cacheTTL, checkers: checkers, now: time.Now}
}

func (p *ProbeRunner) Ready(ctx context.Context) (bool, []CheckResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cacheTTL > 0 && !p.cachedAt.IsZero() && p.now().Sub(p.cachedAt) < p.cacheTTL {
		return p.ready, append([]CheckResult(nil), p.results...)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	results := make([]CheckResult, len(p.checkers))
	var g errgroup.Group
	for i, c := range p.checkers {
		g.Go(func() error {
			start := time.Now()
			res := c.Check(ctx)
			res.DurationMS = time.Since(start).Milliseconds()
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	ready := true
	for _, r := range results {
		if !r.Healthy {
			ready = false
			break
		}
	}
	p.ready, p.results, p.cachedAt = ready, results, p.now()
	return ready, append([]CheckResult{}, results...)
}
