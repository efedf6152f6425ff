// Package upstream contains the HTTP client used to call the external
// transit providers: bounded retries, linear backoff with jitter,
// per-attempt timeout cancellation, and classification of retryable
// versus fatal failures.
package upstream
