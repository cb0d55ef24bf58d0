package metrics

import "time"

// Result is the frozen summary of one run, produced once by Finalize.
// Formatters read it; nothing mutates it afterwards.
type Result struct {
	Total       int64            `json:"total_requests"`
	Successes   int64            `json:"successful_requests"`
	Failures    int64            `json:"failed_requests"`
	SuccessRate float64          `json:"success_rate_percent"`
	Duration    time.Duration    `json:"-"`
	DurationSec float64          `json:"duration_seconds"`
	Throughput  float64          `json:"throughput_rps"`
	Latency     LatencySummary   `json:"latency"`
	Errors      map[string]int64 `json:"errors,omitempty"`
	EndedAt     time.Time        `json:"timestamp"`
}

// LatencySummary holds the exact percentile table for a run. All failed
// attempts contribute their measured elapsed time, including timeouts.
type LatencySummary struct {
	Min    time.Duration `json:"-"`
	Mean   time.Duration `json:"-"`
	Median time.Duration `json:"-"`
	P95    time.Duration `json:"-"`
	P99    time.Duration `json:"-"`
	Max    time.Duration `json:"-"`

	// JSON-friendly millisecond fields.
	MinMs    float64 `json:"min_ms"`
	MeanMs   float64 `json:"mean_ms"`
	MedianMs float64 `json:"median_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
	MaxMs    float64 `json:"max_ms"`
}

// Empty reports whether the run completed with no recorded samples.
func (r *Result) Empty() bool {
	return r.Total == 0
}

func (r *Result) fillMillis() {
	ms := func(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
	r.Latency.MinMs = ms(r.Latency.Min)
	r.Latency.MeanMs = ms(r.Latency.Mean)
	r.Latency.MedianMs = ms(r.Latency.Median)
	r.Latency.P95Ms = ms(r.Latency.P95)
	r.Latency.P99Ms = ms(r.Latency.P99)
	r.Latency.MaxMs = ms(r.Latency.Max)
}
