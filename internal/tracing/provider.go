// Package tracing emits one OpenTelemetry client span per request attempt and
// optionally propagates W3C trace context to the service under test.
package tracing

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"faasbench/internal/config"
)

const defaultServiceName = "faasbench"

// Provider owns the span pipeline for one run. Without an exporter endpoint
// it degrades to no-op spans, so call sites never branch on whether tracing
// is on.
type Provider struct {
	tp        *sdktrace.TracerProvider
	tracer    trace.Tracer
	propagate bool
}

// Init builds the provider. A config without an endpoint yields a no-op
// provider and no error.
func Init(ctx context.Context, cfg config.TracingConfig) (*Provider, error) {
	p := &Provider{propagate: cfg.ShouldPropagate()}
	if !cfg.Enabled() {
		return p, nil
	}

	if cfg.SampleRate < 0 || cfg.SampleRate > 1.0 {
		return nil, fmt.Errorf("tracing sample_rate must be between 0.0 and 1.0, got %g", cfg.SampleRate)
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("tracing exporter: %w", err)
	}

	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = defaultServiceName
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(name)))
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.SampleRate))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	p.tp = tp
	p.tracer = tp.Tracer(defaultServiceName)
	return p, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate == 0:
		return sdktrace.NeverSample()
	case rate < 1.0:
		return sdktrace.TraceIDRatioBased(rate)
	default:
		return sdktrace.AlwaysSample()
	}
}

func newExporter(ctx context.Context, cfg config.TracingConfig) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(cfg.Protocol) {
	case "", "grpc":
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts,
				otlptracegrpc.WithInsecure(),
				otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
			)
		}
		return otlptracegrpc.New(ctx, opts...)
	case "http":
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q: use \"grpc\" or \"http\"", cfg.Protocol)
	}
}

// Tracer returns the run's tracer, or a no-op tracer when tracing is off.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil || p.tracer == nil {
		return noop.NewTracerProvider().Tracer(defaultServiceName)
	}
	return p.tracer
}

// ShouldPropagate reports whether trace headers are injected into requests.
func (p *Provider) ShouldPropagate() bool {
	return p != nil && p.propagate
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}
