package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"faasbench/internal/metrics"
)

// ProgressReporter displays real-time progress updates while a run is active.
type ProgressReporter struct {
	collector *metrics.Collector
	ticker    *time.Ticker
	done      chan struct{}
	finished  chan struct{}
	writer    io.Writer
	active    int32
	target    int64
}

// NewProgressReporter creates a progress reporter that updates at the given
// interval. target is the total dispatch count for count-based runs, 0 for
// duration-based runs.
func NewProgressReporter(collector *metrics.Collector, interval time.Duration, target int64, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		collector: collector,
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
		writer:    writer,
		target:    target,
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			snap := p.collector.Snapshot()
			line := fmt.Sprintf("\rRequests: %d", snap.Total)
			if p.target > 0 {
				line = fmt.Sprintf("\rRequests: %d/%d (%.1f%%)",
					snap.Total, p.target, float64(snap.Total)/float64(p.target)*100)
			}
			line += fmt.Sprintf(" | Failures: %d | RPS: %.1f", snap.Failures, snap.RPS)
			if snap.P50 > 0 {
				line += fmt.Sprintf(" | P50: %s | P99: %s",
					snap.P50.Round(time.Millisecond), snap.P99.Round(time.Millisecond))
			}
			fmt.Fprint(p.writer, line)
		case <-p.done:
			return
		}
	}
}
