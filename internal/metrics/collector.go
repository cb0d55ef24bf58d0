package metrics

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Raw latencies retained for the exact percentile sort. Once a long duration
// run exceeds this, the oldest entries are overwritten; min, max, and mean
// stay exact over every sample via the running fields below.
const maxRetainedLatencies = 100_000

// Collector accumulates Samples from all workers in a thread-safe manner.
//
// Two latency stores are kept: an HdrHistogram serving cheap quantile reads
// for live progress snapshots, and the raw per-attempt durations which are
// sorted once at finalize time for exact report percentiles.
type Collector struct {
	mu         sync.Mutex
	hist       *hdrhistogram.Histogram
	latencies  []time.Duration
	evict      int
	successes  int64
	failures   int64
	sumLatency time.Duration
	minLatency time.Duration
	maxLatency time.Duration
	breakdown  map[string]int64
	start      time.Time
	finalized  bool
}

// Progress is a cheap point-in-time view used for periodic telemetry. Its
// quantiles come from the histogram and are approximate.
type Progress struct {
	Total     int64
	Successes int64
	Failures  int64
	Elapsed   time.Duration
	RPS       float64
	P50       time.Duration
	P99       time.Duration
}

func NewCollector() *Collector {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, 60_000_000, 3)
	return &Collector{
		hist:      h,
		breakdown: make(map[string]int64),
		start:     time.Now(),
	}
}

// Start marks the beginning of the measured run. Samples recorded before
// Start (e.g. warmup) should be avoided by the caller; Start also resets the
// elapsed-time origin used by Snapshot.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = time.Now()
}

// Record appends one sample. Safe for concurrent use.
func (c *Collector) Record(s Sample) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finalized {
		return
	}

	if s.Latency > 0 {
		us := s.Latency.Microseconds()
		if us < c.hist.LowestTrackableValue() {
			us = c.hist.LowestTrackableValue()
		}
		if us > c.hist.HighestTrackableValue() {
			us = c.hist.HighestTrackableValue()
		}
		_ = c.hist.RecordValue(us)
	}
	if len(c.latencies) < maxRetainedLatencies {
		c.latencies = append(c.latencies, s.Latency)
	} else {
		c.latencies[c.evict] = s.Latency
		c.evict = (c.evict + 1) % maxRetainedLatencies
	}
	c.sumLatency += s.Latency

	if c.successes+c.failures == 0 {
		c.minLatency, c.maxLatency = s.Latency, s.Latency
	} else {
		if s.Latency < c.minLatency {
			c.minLatency = s.Latency
		}
		if s.Latency > c.maxLatency {
			c.maxLatency = s.Latency
		}
	}

	if s.Success() {
		c.successes++
	} else {
		c.failures++
		label := s.Detail
		if label == "" {
			label = string(s.Kind)
		}
		c.breakdown[label]++
	}
}

// Count returns the number of samples recorded so far.
func (c *Collector) Count() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.successes + c.failures
}

// Snapshot returns running counters for progress reporting.
func (c *Collector) Snapshot() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.start)
	p := Progress{
		Total:     c.successes + c.failures,
		Successes: c.successes,
		Failures:  c.failures,
		Elapsed:   elapsed,
	}
	if elapsed > 0 && p.Total > 0 {
		p.RPS = float64(p.Total) / elapsed.Seconds()
	}
	if c.hist.TotalCount() > 0 {
		p.P50 = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		p.P99 = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}
	return p
}

// Finalize freezes the collector and computes the run result. It must be
// called exactly once, after every worker has exited. Further Record calls
// are ignored.
func (c *Collector) Finalize(wallClock time.Duration) *Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.finalized = true

	total := c.successes + c.failures
	result := &Result{
		Total:       total,
		Successes:   c.successes,
		Failures:    c.failures,
		Duration:    wallClock,
		DurationSec: wallClock.Seconds(),
		Errors:      make(map[string]int64, len(c.breakdown)),
		EndedAt:     time.Now(),
	}
	for k, v := range c.breakdown {
		result.Errors[k] = v
	}

	if total > 0 {
		result.SuccessRate = float64(c.successes) / float64(total) * 100
	}
	if wallClock > 0 && c.successes > 0 {
		result.Throughput = float64(c.successes) / wallClock.Seconds()
	}

	if len(c.latencies) == 0 {
		return result
	}

	sorted := make([]time.Duration, len(c.latencies))
	copy(sorted, c.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	result.Latency = LatencySummary{
		Min:    c.minLatency,
		Max:    c.maxLatency,
		Mean:   time.Duration(int64(c.sumLatency) / total),
		Median: percentile(sorted, 50),
		P95:    percentile(sorted, 95),
		P99:    percentile(sorted, 99),
	}
	result.fillMillis()
	return result
}

// percentile returns the value at percentile p over ascending-sorted
// latencies: index ceil(p/100 * count) - 1, clamped to the valid range.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
