// Package runner provides the worker pool at the core of faasbench.
//
// The runner executes requests through a fixed number of concurrent workers
// until a stop condition fires: a total dispatch count, a wall-clock
// duration, or cancellation of the caller's context.
//
// # Basic Usage
//
//	opts := runner.Options{
//		Concurrency:   10,
//		TotalRequests: 1000,
//		Requester:     myRequester,
//	}
//	r := runner.New(opts)
//	result := r.Run(ctx)
//
// # Requester Interface
//
// The [Requester] interface defines what a runner executes:
//
//	type Requester interface {
//		Do(ctx context.Context) error
//	}
//
// A returned error marks one failed attempt; it never stops the pool.
//
// # Dispatch accounting
//
// A single scheduler goroutine claims dispatch slots atomically and feeds
// permits to workers, so a count-based run performs exactly the configured
// number of attempts regardless of concurrency. A duration-based run stops
// claiming new slots when the clock expires while in-flight attempts finish
// under their own per-request timeout.
//
// # Middleware
//
// [WithLogging] wraps a Requester to report failures to a [FailureLogger].
package runner
