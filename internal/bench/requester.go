package bench

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"faasbench/internal/config"
	"faasbench/internal/httpclient"
	"faasbench/internal/metrics"
	"faasbench/internal/tracing"
)

// Response bodies larger than this are read and discarded without buffering.
const maxBodyBytes = 1 << 20

// inferenceRequester executes one POST against the inference endpoint and
// records the attempt as a Sample. All shared state (payload artifact,
// client transport, collector) is concurrency-safe; the requester itself
// holds nothing mutable.
type inferenceRequester struct {
	client    *http.Client
	builder   *httpclient.RequestBuilder
	collector *metrics.Collector
	mode      config.Mode
	function  string
	provider  *tracing.Provider
}

func (r *inferenceRequester) Do(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	spanCtx, span := tracing.StartRequestSpan(ctx, r.provider.Tracer(), r.function)

	start := time.Now()
	req, err := r.builder.Build(spanCtx)
	if err != nil {
		r.record(start, time.Since(start), err)
		tracing.EndSpan(span, err)
		return err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.record(start, time.Since(start), err)
		tracing.EndSpan(span, err)
		return err
	}

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	// Latency covers dispatch through final body byte.
	latency := time.Since(start)

	resultErr := readErr
	if resultErr == nil {
		resultErr = httpclient.ValidateResponse(resp.StatusCode, body, r.mode)
	}

	r.record(start, latency, resultErr)
	tracing.EndSpan(span, resultErr, attribute.Int("http.response.status_code", resp.StatusCode))
	return resultErr
}

func (r *inferenceRequester) record(start time.Time, latency time.Duration, err error) {
	r.collector.Record(metrics.NewSample(start, latency, err))
}
