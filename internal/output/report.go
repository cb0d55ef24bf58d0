// Package output renders run reports and progress telemetry.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"faasbench/internal/config"
	"faasbench/internal/metrics"
)

// PrintHeader writes the run parameters before the test starts.
func PrintHeader(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "--- faasbench ---")
	fmt.Fprintf(w, "Server:        %s\n", cfg.Server)
	fmt.Fprintf(w, "Function:      %s\n", cfg.Function)
	fmt.Fprintf(w, "Concurrency:   %d\n", cfg.Concurrency)
	if cfg.StopByDuration() {
		fmt.Fprintf(w, "Duration:      %s\n", cfg.Duration)
	} else {
		fmt.Fprintf(w, "Requests:      %d\n", cfg.Requests)
	}
	fmt.Fprintf(w, "Mode:          %s\n", cfg.Mode)
	fmt.Fprintln(w)
}

// PrintReport outputs a human-readable summary report. Rendering the same
// frozen result twice produces identical output.
func PrintReport(w io.Writer, result *metrics.Result) {
	fmt.Fprintln(w, "\n--- Load Test Results ---")
	fmt.Fprintf(w, "Total Requests:    %d\n", result.Total)
	fmt.Fprintf(w, "Successful:        %d (%.2f%%)\n", result.Successes, result.SuccessRate)
	fmt.Fprintf(w, "Failed:            %d\n", result.Failures)
	fmt.Fprintf(w, "Duration:          %s\n", result.Duration)
	fmt.Fprintf(w, "Throughput:        %.2f req/s\n", result.Throughput)

	if result.Empty() {
		fmt.Fprintln(w, "\nNo samples recorded; latency statistics are unavailable.")
	} else {
		fmt.Fprintln(w, "\nLatency:")
		fmt.Fprintf(w, "  Min:             %s\n", result.Latency.Min)
		fmt.Fprintf(w, "  Mean:            %s\n", result.Latency.Mean)
		fmt.Fprintf(w, "  Median:          %s\n", result.Latency.Median)
		fmt.Fprintf(w, "  P95:             %s\n", result.Latency.P95)
		fmt.Fprintf(w, "  P99:             %s\n", result.Latency.P99)
		fmt.Fprintf(w, "  Max:             %s\n", result.Latency.Max)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		for _, row := range sortedErrors(result.Errors) {
			fmt.Fprintf(w, "  %s: %d\n", row.label, row.count)
		}
	}
}

// jsonReport wraps the result with a config echo for machine consumers.
type jsonReport struct {
	Config jsonConfig `json:"config"`
	*metrics.Result
}

type jsonConfig struct {
	Server      string `json:"server"`
	Function    string `json:"function"`
	Concurrency int    `json:"concurrency"`
	Mode        string `json:"mode"`
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, cfg *config.Config, result *metrics.Result) error {
	doc := jsonReport{
		Config: jsonConfig{
			Server:      cfg.Server,
			Function:    cfg.Function,
			Concurrency: cfg.Concurrency,
			Mode:        string(cfg.Mode),
		},
		Result: result,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

type errorRow struct {
	label string
	count int64
}

// sortedErrors orders the breakdown by descending count, then label.
func sortedErrors(errs map[string]int64) []errorRow {
	rows := make([]errorRow, 0, len(errs))
	for label, count := range errs {
		rows = append(rows, errorRow{label: label, count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count == rows[j].count {
			return rows[i].label < rows[j].label
		}
		return rows[i].count > rows[j].count
	})
	return rows
}
