// Package config provides configuration loading and validation for faasbench.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and an optional configuration file to
// produce a Config. Flag values override file values.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Function:    "nsfw-detector",
		Concurrency: 10,
		Requests:    100,
		Mode:        ModeURL,
		ImageURL:    DefaultImageURL,
		Timeout:     30 * time.Second,
		Warmup:      5,
		Output:      OutputText,
		ConfigFile:  configPath,
		Tracing: TracingConfig{
			Protocol:    "grpc",
			SampleRate:  1.0,
			ServiceName: "faasbench",
		},
	}

	if err := applyFileSettings(cfg, cfgViper.AllSettings()); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.Server = strings.TrimRight(strings.TrimSpace(cfg.Server), "/")

	return cfg, nil
}

// applyFileSettings applies settings from a config file to the Config struct.
func applyFileSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	strFields := []struct {
		keys []string
		dst  *string
	}{
		{[]string{"server"}, &cfg.Server},
		{[]string{"function"}, &cfg.Function},
		{[]string{"imageurl", "image_url", "image-url"}, &cfg.ImageURL},
		{[]string{"imagepath", "image_path", "image-path"}, &cfg.ImagePath},
	}
	for _, f := range strFields {
		if raw, ok := lookupSetting(settings, f.keys...); ok {
			val, err := asString(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", f.keys[0], err)
			}
			*f.dst = strings.TrimSpace(val)
		}
	}

	if raw, ok := lookupSetting(settings, "concurrency"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("concurrency: %w", err)
		}
		cfg.Concurrency = val
	}
	if raw, ok := lookupSetting(settings, "requests"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("requests: %w", err)
		}
		cfg.Requests = val
		cfg.RequestsSet = true
	}
	if raw, ok := lookupSetting(settings, "duration"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		cfg.Duration = dur
		cfg.DurationSet = true
	}
	if raw, ok := lookupSetting(settings, "rate"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("rate: %w", err)
		}
		cfg.Rate = val
	}
	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}
	if raw, ok := lookupSetting(settings, "warmup"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("warmup: %w", err)
		}
		cfg.Warmup = val
	}
	if raw, ok := lookupSetting(settings, "mode"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("mode: %w", err)
		}
		cfg.Mode = Mode(strings.ToLower(strings.TrimSpace(val)))
	}
	if raw, ok := lookupSetting(settings, "output"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("output: %w", err)
		}
		cfg.Output = OutputFormat(strings.ToLower(strings.TrimSpace(val)))
	}
	if raw, ok := lookupSetting(settings, "verbose"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("verbose: %w", err)
		}
		cfg.Verbose = val
	}
	if raw, ok := lookupSetting(settings, "logerrors", "log_errors", "log-errors"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("logErrors: %w", err)
		}
		cfg.LogErrors = val
	}
	if raw, ok := lookupSetting(settings, "tracing"); ok {
		if err := applyTracingSettings(&cfg.Tracing, raw); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
	}

	return nil
}

func applyTracingSettings(tc *TracingConfig, value interface{}) error {
	entry, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("expected a mapping, got %T", value)
	}
	if raw, ok := lookupSetting(entry, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("endpoint: %w", err)
		}
		tc.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("protocol: %w", err)
		}
		tc.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(entry, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("insecure: %w", err)
		}
		tc.Insecure = val
	}
	if raw, ok := lookupSetting(entry, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("sample_rate: %w", err)
		}
		tc.SampleRate = val
	}
	if raw, ok := lookupSetting(entry, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("service_name: %w", err)
		}
		tc.ServiceName = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "propagate"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("propagate: %w", err)
		}
		tc.Propagate = val
	}
	return nil
}

// lookupSetting searches for a value in settings under any of the candidate
// keys, also trying lowercase forms.
func lookupSetting(settings map[string]interface{}, candidates ...string) (interface{}, bool) {
	for _, key := range candidates {
		if val, ok := settings[key]; ok {
			return val, true
		}
		if val, ok := settings[strings.ToLower(key)]; ok {
			return val, true
		}
	}
	return nil, false
}

func asString(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return fmt.Sprint(v), nil
	}
}

func asInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, nil
		}
		return strconv.Atoi(trimmed)
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", value)
	}
}

func asFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, nil
		}
		return strconv.ParseFloat(trimmed, 64)
	default:
		return 0, fmt.Errorf("unsupported float type %T", value)
	}
}

func asBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false, nil
		}
		return strconv.ParseBool(trimmed)
	default:
		return false, fmt.Errorf("unsupported boolean type %T", value)
	}
}

// asDuration accepts time.Duration, duration strings, and bare numbers,
// which are interpreted as seconds.
func asDuration(value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, nil
		}
		if secs, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
		return time.ParseDuration(trimmed)
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("unsupported duration type %T", value)
	}
}
