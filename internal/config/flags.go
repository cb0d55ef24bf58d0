package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "faasbench",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Target flags
	flags.StringP("server", "s", "", "Base URL of the inference service under test")
	flags.StringP("function", "f", "nsfw-detector", "Name of the function under test")

	// Load control flags
	flags.IntP("concurrency", "c", 10, "Number of concurrent workers")
	flags.IntP("requests", "n", 100, "Total number of requests to dispatch (mutually exclusive with --duration)")
	flags.DurationP("duration", "d", 0, "How long to run the test (e.g. 30s, 1m; mutually exclusive with --requests)")
	flags.IntP("rate", "r", 0, "Requests per second limit (0 means unlimited)")
	flags.Duration("timeout", 30*time.Second, "Per-request timeout")
	flags.Int("warmup", 5, "Number of untimed warmup requests before the run")

	// Payload mode flags
	flags.StringP("mode", "m", string(ModeURL), "Payload mode: 'url', 'image', or 'health'")
	flags.String("image-url", DefaultImageURL, "Remote image URL sent in url mode")
	flags.String("image-path", "", "Path to a local image file sent in image mode")

	// Output flags
	flags.StringP("output", "o", string(OutputText), "Report format: 'text' or 'json'")
	flags.BoolP("verbose", "v", false, "Show periodic progress while the test runs")
	flags.Bool("log-errors", false, "Log each failed request to stderr")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("trace-endpoint", "", "OTLP endpoint for request span export (empty disables tracing)")
	flags.String("trace-protocol", "grpc", "OTLP transport: 'grpc' or 'http'")
	flags.Bool("trace-insecure", false, "Skip TLS verification when exporting spans")
	flags.Float64("trace-sample-rate", 1.0, "Fraction of request spans to sample (0.0-1.0)")
	flags.String("trace-service-name", "faasbench", "Service name reported on exported spans")
	flags.Bool("trace-propagate", false, "Inject W3C trace context headers into requests")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("server") {
		val, err := fs.GetString("server")
		if err != nil {
			return err
		}
		cfg.Server = strings.TrimRight(strings.TrimSpace(val), "/")
	}
	if fs.Changed("function") {
		val, err := fs.GetString("function")
		if err != nil {
			return err
		}
		cfg.Function = strings.TrimSpace(val)
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("requests") {
		val, err := fs.GetInt("requests")
		if err != nil {
			return err
		}
		cfg.Requests = val
		cfg.RequestsSet = true
	}
	if fs.Changed("duration") {
		val, err := fs.GetDuration("duration")
		if err != nil {
			return err
		}
		cfg.Duration = val
		cfg.DurationSet = true
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("warmup") {
		val, err := fs.GetInt("warmup")
		if err != nil {
			return err
		}
		cfg.Warmup = val
	}
	if fs.Changed("mode") {
		val, err := fs.GetString("mode")
		if err != nil {
			return err
		}
		cfg.Mode = Mode(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("image-url") {
		val, err := fs.GetString("image-url")
		if err != nil {
			return err
		}
		cfg.ImageURL = strings.TrimSpace(val)
	}
	if fs.Changed("image-path") {
		val, err := fs.GetString("image-path")
		if err != nil {
			return err
		}
		cfg.ImagePath = strings.TrimSpace(val)
	}
	if fs.Changed("output") {
		val, err := fs.GetString("output")
		if err != nil {
			return err
		}
		cfg.Output = OutputFormat(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("verbose") {
		val, err := fs.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = val
	}
	if fs.Changed("log-errors") {
		val, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = val
	}
	if fs.Changed("trace-endpoint") {
		val, err := fs.GetString("trace-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("trace-protocol") {
		val, err := fs.GetString("trace-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("trace-insecure") {
		val, err := fs.GetBool("trace-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("trace-service-name") {
		val, err := fs.GetString("trace-service-name")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("trace-propagate") {
		val, err := fs.GetBool("trace-propagate")
		if err != nil {
			return err
		}
		cfg.Tracing.Propagate = val
	}
	return nil
}
