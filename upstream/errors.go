package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// HTTPError is a non-2xx response from an upstream.
type HTTPError struct {
	Status int
	URL    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream %s returned HTTP %d", e.URL, e.Status)
}

// Retryable reports whether the status is worth another attempt:
// 429 (rate limited) and the 5xx class. Everything else is the caller's
// fault or a permanent condition and fails immediately.
func (e *HTTPError) Retryable() bool {
	return e.Status == 429 || (e.Status >= 500 && e.Status <= 599)
}

// NetworkError is a transport-level failure (timeout, reset, DNS).
type NetworkError struct {
	URL   string
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("upstream %s unreachable: %v", e.URL, e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// transientPatterns match error messages from the net stack that indicate
// a condition likely to clear on retry. Message matching is deliberate:
// not every transport wraps a typed error.
var transientPatterns = []string{
	"timeout",
	"deadline exceeded",
	"connection reset",
	"connection refused",
	"request canceled",
	"aborted",
	"no such host",
	"EOF",
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// retryable decides whether the fetcher may try again after err.
func retryable(err error) bool {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Retryable()
	}
	var nwe *NetworkError
	if errors.As(err, &nwe) {
		return true
	}
	return false
}
