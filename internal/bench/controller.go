// Package bench coordinates a full benchmark run: configuration validation,
// warmup, worker pool execution, sample aggregation, and report rendering.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"faasbench/internal/config"
	"faasbench/internal/httpclient"
	"faasbench/internal/metrics"
	"faasbench/internal/output"
	"faasbench/internal/payload"
	"faasbench/internal/runner"
	"faasbench/internal/tracing"
)

const progressInterval = time.Second

// State tracks the controller through its lifecycle. Transitions move
// forward only; Done and Failed are terminal.
type State int32

const (
	StateConfiguring State = iota
	StateRunning
	StateDraining
	StateReporting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConfiguring:
		return "configuring"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateReporting:
		return "reporting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Controller owns one run end to end. Construction validates the config and
// builds the shared payload artifact; Run drives the pool and produces the
// final report. A Controller is single-use.
type Controller struct {
	cfg      *config.Config
	artifact *payload.Builder
	out      io.Writer
	errOut   io.Writer
	state    int32

	// overridable in tests
	newRequester func(collector *metrics.Collector, provider *tracing.Provider) (runner.Requester, error)
}

// New validates cfg and prepares a run. Any returned error is a
// configuration error: nothing has been dispatched yet.
func New(cfg *config.Config, out, errOut io.Writer) (*Controller, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	c := &Controller{cfg: cfg, out: out, errOut: errOut, state: int32(StateConfiguring)}

	if err := cfg.Validate(); err != nil {
		c.setState(StateFailed)
		return nil, err
	}

	artifact, err := payload.New(cfg)
	if err != nil {
		c.setState(StateFailed)
		return nil, err
	}
	c.artifact = artifact

	c.newRequester = func(collector *metrics.Collector, provider *tracing.Provider) (runner.Requester, error) {
		builder, err := httpclient.NewRequestBuilder(cfg, artifact)
		if err != nil {
			return nil, err
		}
		var req runner.Requester = &inferenceRequester{
			client:    httpclient.NewClient(cfg.Timeout),
			builder:   builder,
			collector: collector,
			mode:      cfg.Mode,
			function:  cfg.Function,
			provider:  provider,
		}
		if cfg.LogErrors {
			req = runner.WithLogging(req, &stderrFailureLogger{w: errOut})
		}
		return req, nil
	}

	return c, nil
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	return State(atomic.LoadInt32(&c.state))
}

func (c *Controller) setState(s State) {
	atomic.StoreInt32(&c.state, int32(s))
}

// Run executes the benchmark and renders the report. The returned Result is
// frozen; per-attempt failures are part of it, not part of err. A non-nil
// err means the run could not start or could not export its telemetry.
func (c *Controller) Run(ctx context.Context) (*metrics.Result, error) {
	if c.State() != StateConfiguring {
		return nil, fmt.Errorf("controller cannot run in state %q", c.State())
	}

	provider, err := tracing.Init(ctx, c.cfg.Tracing)
	if err != nil {
		c.setState(StateFailed)
		return nil, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	collector := metrics.NewCollector()
	requester, err := c.newRequester(collector, provider)
	if err != nil {
		c.setState(StateFailed)
		return nil, err
	}

	if c.cfg.Output == config.OutputText {
		output.PrintHeader(c.out, c.cfg)
	}

	if err := c.warmup(ctx, provider); err != nil {
		c.setState(StateFailed)
		return nil, err
	}

	var target int64
	if !c.cfg.StopByDuration() {
		target = int64(c.cfg.Requests)
	}

	var progress *output.ProgressReporter
	if c.cfg.Verbose {
		progress = output.NewProgressReporter(collector, progressInterval, target, c.errOut)
	}

	pool := runner.New(runner.Options{
		Concurrency:   c.cfg.Concurrency,
		TotalRequests: requestBudget(c.cfg),
		Duration:      c.cfg.Duration,
		RatePerSecond: c.cfg.Rate,
		Requester:     requester,
		OnStop:        func() { c.setState(StateDraining) },
	})

	c.setState(StateRunning)
	if progress != nil {
		progress.Start()
	}

	// Mark the actual start so progress RPS is measured from first dispatch.
	collector.Start()
	poolResult := pool.Run(ctx)

	if progress != nil {
		progress.Stop()
		fmt.Fprintln(c.errOut)
	}

	c.setState(StateReporting)
	result := collector.Finalize(poolResult.Duration)

	if c.cfg.Output == config.OutputJSON {
		if err := output.PrintJSONReport(c.out, c.cfg, result); err != nil {
			c.setState(StateFailed)
			return result, err
		}
	} else {
		output.PrintReport(c.out, result)
	}

	c.setState(StateDone)
	return result, nil
}

// requestBudget returns the dispatch cap for the pool: duration-based runs
// are uncapped, count-based runs dispatch exactly the configured total,
// including a total of zero.
func requestBudget(cfg *config.Config) int {
	if cfg.StopByDuration() {
		return runner.Unlimited
	}
	return cfg.Requests
}

// warmup issues sequential untimed requests whose samples are discarded.
// Warmup failures are not fatal; the target may simply be cold.
func (c *Controller) warmup(ctx context.Context, provider *tracing.Provider) error {
	if c.cfg.Warmup <= 0 {
		return nil
	}

	discard := metrics.NewCollector()
	requester, err := c.newRequester(discard, provider)
	if err != nil {
		return err
	}

	if c.cfg.Output == config.OutputText {
		fmt.Fprintf(c.out, "Warming up (%d requests)...\n", c.cfg.Warmup)
	}
	for i := 0; i < c.cfg.Warmup; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_ = requester.Do(ctx)
	}
	return nil
}

type stderrFailureLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *stderrFailureLogger) LogFailure(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "[faasbench] request failed: %v\n", err)
}
