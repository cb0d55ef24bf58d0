package runner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Result captures execution totals for one pool run.
type Result struct {
	Dispatched int64 // request attempts actually started
	Errors     int64 // attempts that returned an error
	Duration   time.Duration
}

// Runner drives a fixed pool of workers against a Requester until the stop
// condition fires.
//
// Dispatch slots are allocated by a single scheduler goroutine: it atomically
// claims a slot, then hands a permit to an idle worker. Under a count-based
// stop exactly TotalRequests slots are claimed across all workers, with no
// slot claimed twice and no overshoot regardless of concurrency.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// Run executes the pool until the stop condition fires, then waits for every
// in-flight attempt to finish. The duration limit stops new dispatches only;
// attempts already in flight run to completion under their own per-request
// timeout. Cancelling ctx aborts in-flight attempts as well.
func (r *Runner) Run(ctx context.Context) Result {
	start := time.Now()
	var scheduled int64
	var dispatched int64
	var errs int64

	// reqCtx deliberately carries no deadline: the stop condition must not
	// cut off requests that have already been sent.
	reqCtx := ctx

	var stopCtx context.Context
	var cancel context.CancelFunc
	if r.opt.Duration > 0 {
		stopCtx, cancel = context.WithTimeout(ctx, r.opt.Duration)
	} else {
		stopCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	limiter := r.opt.LimiterFactory(r.opt.RatePerSecond)

	permits := make(chan struct{}, r.opt.Concurrency)

	// Scheduler: serializes slot allocation and pacing so workers only
	// execute claimed slots.
	go func() {
		defer close(permits)
		if r.opt.OnStop != nil {
			defer r.opt.OnStop()
		}
		for {
			if stopCtx.Err() != nil {
				return
			}
			if r.opt.TotalRequests != Unlimited && atomic.LoadInt64(&scheduled) >= int64(r.opt.TotalRequests) {
				return
			}
			if limiter != nil {
				if err := limiter.Wait(stopCtx); err != nil {
					return
				}
			}
			atomic.AddInt64(&scheduled, 1)
			select {
			case permits <- struct{}{}:
			case <-stopCtx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(r.opt.Concurrency)
	for i := 0; i < r.opt.Concurrency; i++ {
		go func() {
			defer wg.Done()
			for range permits {
				// A permit left over after the stop signal is discarded;
				// no worker starts a new attempt once stopped.
				if stopCtx.Err() != nil {
					continue
				}
				atomic.AddInt64(&dispatched, 1)
				if r.opt.Requester != nil {
					if err := r.opt.Requester.Do(reqCtx); err != nil {
						atomic.AddInt64(&errs, 1)
					}
				}
			}
		}()
	}
	wg.Wait()

	return Result{
		Dispatched: atomic.LoadInt64(&dispatched),
		Errors:     atomic.LoadInt64(&errs),
		Duration:   time.Since(start),
	}
}
