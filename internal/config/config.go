package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Mode selects how the request payload is constructed.
type Mode string

const (
	ModeURL    Mode = "url"    // body references a remote image URL
	ModeImage  Mode = "image"  // body embeds a base64-encoded local image
	ModeHealth Mode = "health" // empty body, measures request overhead only
)

// OutputFormat selects the final report rendering.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

const DefaultImageURL = "https://picsum.photos/400/300"

type Config struct {
	Server      string        `mapstructure:"server"`
	Function    string        `mapstructure:"function"`
	Concurrency int           `mapstructure:"concurrency"`
	Requests    int           `mapstructure:"requests"`
	Duration    time.Duration `mapstructure:"duration"`
	Mode        Mode          `mapstructure:"mode"`
	ImageURL    string        `mapstructure:"image_url"`
	ImagePath   string        `mapstructure:"image_path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Warmup      int           `mapstructure:"warmup"`
	Rate        int           `mapstructure:"rate"`
	Output      OutputFormat  `mapstructure:"output"`
	Verbose     bool          `mapstructure:"verbose"`
	LogErrors   bool          `mapstructure:"log_errors"`
	ConfigFile  string        `mapstructure:"-"`
	Tracing     TracingConfig `mapstructure:"tracing"`

	// RequestsSet/DurationSet record whether the value was explicitly
	// provided (flag or config file) rather than defaulted. Both set at
	// once is a configuration error.
	RequestsSet bool `mapstructure:"-"`
	DurationSet bool `mapstructure:"-"`
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	ServiceName string  `mapstructure:"service_name"`
	Propagate   bool    `mapstructure:"propagate"`
}

// Enabled reports whether an exporter endpoint has been configured.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

func (t TracingConfig) ShouldPropagate() bool {
	return t.Propagate
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	server := strings.TrimSpace(c.Server)
	if server == "" {
		issues = append(issues, "server is required (use --help for usage information)")
	} else if u, err := url.Parse(server); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, fmt.Sprintf("server %q is not a valid URL", c.Server))
	}

	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Requests < 0 {
		issues = append(issues, "requests must be >= 0")
	}
	if c.Duration < 0 {
		issues = append(issues, "duration must be >= 0")
	}
	if c.RequestsSet && c.DurationSet {
		issues = append(issues, "requests and duration are mutually exclusive; specify only one stop condition")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.Warmup < 0 {
		issues = append(issues, "warmup must be >= 0")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}

	switch c.Mode {
	case ModeURL, ModeImage, ModeHealth:
	default:
		issues = append(issues, fmt.Sprintf("mode %q is not valid: use url, image, or health", c.Mode))
	}
	if c.Mode == ModeImage && strings.TrimSpace(c.ImagePath) == "" {
		issues = append(issues, "image-path is required when mode is image")
	}

	switch c.Output {
	case OutputText, OutputJSON:
	default:
		issues = append(issues, fmt.Sprintf("output %q is not valid: use text or json", c.Output))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		issues = append(issues, "tracing sample rate must be between 0.0 and 1.0")
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// StopByDuration reports whether the run ends on elapsed wall clock rather
// than on a dispatched-request count.
func (c Config) StopByDuration() bool {
	return c.Duration > 0
}
