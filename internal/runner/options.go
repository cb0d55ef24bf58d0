package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Requester executes a single request attempt. Implementations return an
// error for failed attempts; the error is absorbed into statistics and never
// stops a worker.
type Requester interface {
	Do(ctx context.Context) error
}

// Unlimited disables the dispatch-count stop condition; the run ends on its
// duration limit or context cancellation instead.
const Unlimited = -1

// Options configure the Runner.
type Options struct {
	Concurrency    int           // number of worker goroutines
	TotalRequests  int           // total dispatch attempts; 0 dispatches nothing, Unlimited removes the cap
	Duration       time.Duration // wall-clock limit on new dispatches (0 means no limit)
	RatePerSecond  int           // open-loop pacing cap (0 means unlimited)
	Requester      Requester     // request executor (required)
	OnStop         func()        // invoked once when no further dispatches will start
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.TotalRequests < 0 {
		o.TotalRequests = Unlimited
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}
