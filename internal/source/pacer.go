// Package source holds shared plumbing for the upstream data-source clients.
package source

import (
	"net/http"
	"time"
)

// HTTPClient allows injecting mock HTTP clients for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Pacer enforces a minimum spacing between requests to one upstream
// endpoint, measured from the start of the previous request. Providers such
// as SCB throttle aggressively; correctness never depends on pacing, only
// throughput does.
type Pacer struct {
	minInterval time.Duration
	last        time.Time
	now         func() time.Time
	sleep       func(time.Duration)
}

func NewPacer(minInterval time.Duration) *Pacer {
	return &Pacer{
		minInterval: minInterval,
		now:         time.Now,
		sleep:       time.Sleep,
	}
}

// Wait blocks until at least the configured interval has passed since the
// previous call, then marks the start of the new request.
func (p *Pacer) Wait() {
	if p == nil || p.minInterval <= 0 {
		return
	}
	if !p.last.IsZero() {
		if elapsed := p.now().Sub(p.last); elapsed < p.minInterval {
			p.sleep(p.minInterval - elapsed)
		}
	}
	p.last = p.now()
}
