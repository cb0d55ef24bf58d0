package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
	"time"
)

// OutcomeKind classifies the result of one request attempt.
type OutcomeKind string

const (
	OutcomeSuccess         OutcomeKind = "success"
	OutcomeHTTPError       OutcomeKind = "http_error"
	OutcomeTransportError  OutcomeKind = "transport_error"
	OutcomeTimeout         OutcomeKind = "timeout"
	OutcomeInvalidResponse OutcomeKind = "invalid_response"
)

// Sample is the immutable record of one completed request attempt.
type Sample struct {
	StartedAt  time.Time
	Latency    time.Duration
	Kind       OutcomeKind
	StatusCode int    // set when Kind is OutcomeHTTPError
	Detail     string // breakdown label for failed attempts
}

// Success reports whether the attempt completed with a valid response.
func (s Sample) Success() bool {
	return s.Kind == OutcomeSuccess
}

// HTTPError is a response with a non-2xx status. The attempt itself
// completed at the transport level.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// InvalidResponseError is a 2xx response whose body does not carry the
// expected success envelope.
type InvalidResponseError struct {
	Reason string
}

func (e *InvalidResponseError) Error() string {
	return "invalid response: " + e.Reason
}

// NewSample classifies an attempt's error into a Sample. A nil err yields a
// success sample.
func NewSample(startedAt time.Time, latency time.Duration, err error) Sample {
	if latency < 0 {
		latency = 0
	}
	s := Sample{StartedAt: startedAt, Latency: latency}

	if err == nil {
		s.Kind = OutcomeSuccess
		return s
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		s.Kind = OutcomeHTTPError
		s.StatusCode = httpErr.StatusCode
		s.Detail = httpErr.Error()
		return s
	}

	var invalidErr *InvalidResponseError
	if errors.As(err, &invalidErr) {
		s.Kind = OutcomeInvalidResponse
		s.Detail = "Invalid response body"
		return s
	}

	if isTimeout(err) {
		s.Kind = OutcomeTimeout
		s.Detail = "Timeout"
		return s
	}

	s.Kind = OutcomeTransportError
	s.Detail = transportLabel(err)
	return s
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// transportLabel maps a transport-level failure to a stable human-readable
// label for the error breakdown. The breakdown groups by failure class, not
// by the full error text, so labels stay coarse.
func transportLabel(err error) string {
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return "Connection refused"
	case errors.Is(err, syscall.ECONNRESET):
		return "Connection reset"
	case errors.Is(err, syscall.EPIPE):
		return "Broken pipe"
	case errors.Is(err, context.Canceled):
		return "Request canceled"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "DNS lookup failed"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return "Request URL error"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "Network error"
	}

	return "Transport error"
}
