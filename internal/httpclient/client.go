// Package httpclient builds and validates the HTTP requests faasbench sends
// to the inference service under test.
package httpclient

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"faasbench/internal/config"
	"faasbench/internal/metrics"
	"faasbench/internal/payload"
	"faasbench/internal/tracing"
)

// RequestBuilder produces POST requests from the shared payload artifact.
// The artifact is built once; Build only stamps a fresh reader onto a new
// request, so no per-request file or encoding work happens.
type RequestBuilder struct {
	target    string
	artifact  *payload.Builder
	propagate bool
}

func NewRequestBuilder(cfg *config.Config, artifact *payload.Builder) (*RequestBuilder, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if artifact == nil {
		return nil, errors.New("payload artifact cannot be nil")
	}
	return &RequestBuilder{
		target:    cfg.Server,
		artifact:  artifact,
		propagate: cfg.Tracing.ShouldPropagate(),
	}, nil
}

func (b *RequestBuilder) Build(ctx context.Context) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.target, b.artifact.NewReader())
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", b.artifact.ContentType())
	req.ContentLength = b.artifact.ContentLength()
	artifact := b.artifact
	req.GetBody = func() (io.ReadCloser, error) {
		return artifact.NewReader(), nil
	}

	if b.propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	return req, nil
}

// ValidateResponse applies the service contract to a completed response:
// non-2xx is an HTTP error; a 2xx body must carry {"success": true} unless
// the run is in health mode, whose endpoint returns no envelope.
func ValidateResponse(statusCode int, body []byte, mode config.Mode) error {
	if statusCode < 200 || statusCode > 299 {
		return &metrics.HTTPError{StatusCode: statusCode}
	}
	if mode == config.ModeHealth {
		return nil
	}
	if !gjson.ValidBytes(body) {
		return &metrics.InvalidResponseError{Reason: "body is not valid JSON"}
	}
	if !gjson.GetBytes(body, "success").Bool() {
		return &metrics.InvalidResponseError{Reason: "success field missing or false"}
	}
	return nil
}

// NewClient returns an http.Client tuned for sustained concurrent load.
// The client timeout is the per-request timeout: it covers the full exchange
// from dial to last body byte.
func NewClient(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
