package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load([]string{"--server", "http://localhost:8080"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server != "http://localhost:8080" {
		t.Errorf("server = %q", cfg.Server)
	}
	if cfg.Function != "nsfw-detector" {
		t.Errorf("function = %q", cfg.Function)
	}
	if cfg.Concurrency != 10 {
		t.Errorf("concurrency = %d, want 10", cfg.Concurrency)
	}
	if cfg.Requests != 100 {
		t.Errorf("requests = %d, want 100", cfg.Requests)
	}
	if cfg.RequestsSet || cfg.DurationSet {
		t.Error("defaulted stop conditions must not be marked as explicitly set")
	}
	if cfg.Mode != ModeURL {
		t.Errorf("mode = %q, want url", cfg.Mode)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("timeout = %s, want 30s", cfg.Timeout)
	}
	if cfg.Warmup != 5 {
		t.Errorf("warmup = %d, want 5", cfg.Warmup)
	}
	if cfg.Output != OutputText {
		t.Errorf("output = %q, want text", cfg.Output)
	}
}

func TestLoadTrimsTrailingSlash(t *testing.T) {
	cfg, err := NewLoader().Load([]string{"--server", "http://localhost:8080/"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server != "http://localhost:8080" {
		t.Errorf("server = %q, want trailing slash removed", cfg.Server)
	}
}

func TestLoadMarksExplicitStopConditions(t *testing.T) {
	cfg, err := NewLoader().Load([]string{"-s", "http://localhost:8080", "-n", "500"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.RequestsSet {
		t.Error("explicit --requests not marked as set")
	}
	if cfg.Requests != 500 {
		t.Errorf("requests = %d, want 500", cfg.Requests)
	}

	cfg, err = NewLoader().Load([]string{"-s", "http://localhost:8080", "-d", "30s"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.DurationSet {
		t.Error("explicit --duration not marked as set")
	}
	if cfg.Duration != 30*time.Second {
		t.Errorf("duration = %s, want 30s", cfg.Duration)
	}
}

func TestLoadConflictingStopConditionsFailValidation(t *testing.T) {
	cfg, err := NewLoader().Load([]string{
		"-s", "http://localhost:8080", "-n", "200", "-d", "10s",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for --requests with --duration")
	}
}

func TestLoadHelpRequested(t *testing.T) {
	_, err := NewLoader().Load([]string{"--help"})
	if !errors.Is(err, ErrHelpRequested) {
		t.Fatalf("expected ErrHelpRequested, got %v", err)
	}

	_, err = NewLoader().Load(nil)
	if !errors.Is(err, ErrHelpRequested) {
		t.Fatalf("expected ErrHelpRequested for empty args, got %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	content := `server: http://config-file:9000
concurrency: 25
duration: 45s
mode: health
output: json
tracing:
  endpoint: localhost:4317
  sample_rate: 0.5
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server != "http://config-file:9000" {
		t.Errorf("server = %q", cfg.Server)
	}
	if cfg.Concurrency != 25 {
		t.Errorf("concurrency = %d, want 25", cfg.Concurrency)
	}
	if cfg.Duration != 45*time.Second || !cfg.DurationSet {
		t.Errorf("duration = %s set=%v, want 45s set", cfg.Duration, cfg.DurationSet)
	}
	if cfg.Mode != ModeHealth {
		t.Errorf("mode = %q, want health", cfg.Mode)
	}
	if cfg.Output != OutputJSON {
		t.Errorf("output = %q, want json", cfg.Output)
	}
	if cfg.Tracing.Endpoint != "localhost:4317" {
		t.Errorf("tracing endpoint = %q", cfg.Tracing.Endpoint)
	}
	if cfg.Tracing.SampleRate != 0.5 {
		t.Errorf("tracing sample rate = %v, want 0.5", cfg.Tracing.SampleRate)
	}
}

func TestLoadFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	if err := os.WriteFile(path, []byte("server: http://from-file:9000\nconcurrency: 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader().Load([]string{
		"--config", path, "--server", "http://from-flag:8080",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server != "http://from-flag:8080" {
		t.Errorf("server = %q, flag should win over file", cfg.Server)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("concurrency = %d, file value should survive", cfg.Concurrency)
	}
}

func TestAsDurationAcceptsBareSeconds(t *testing.T) {
	tests := []struct {
		in   interface{}
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"60", 60 * time.Second},
		{60, 60 * time.Second},
		{1.5, 1500 * time.Millisecond},
		{nil, 0},
	}
	for _, tt := range tests {
		got, err := asDuration(tt.in)
		if err != nil {
			t.Errorf("asDuration(%v): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("asDuration(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
