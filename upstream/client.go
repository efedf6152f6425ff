package upstream

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"time"
)

const (
	// DefaultAttempts bounds how often a single logical fetch hits the wire.
	DefaultAttempts = 3
	// DefaultTimeout cancels an in-flight attempt; the next retry starts fresh.
	DefaultTimeout = 8 * time.Second

	backoffStep   = 200 * time.Millisecond
	backoffJitter = 200 * time.Millisecond

	userAgent = "transit-aggregator/1.0 (+https://github.com/theoremus-urban-solutions/transit-aggregator)"
)

// Fetcher performs GET requests against upstream feeds with retry and
// backoff. It holds no per-request state and is safe to share across
// concurrent callers.
type Fetcher struct {
	Client   *http.Client
	Attempts int
	Timeout  time.Duration

	// sleep is swapped for a recorder in tests.
	sleep func(time.Duration)
}

// NewFetcher returns a Fetcher with the default retry policy.
func NewFetcher() *Fetcher {
	return &Fetcher{
		Client:   &http.Client{},
		Attempts: DefaultAttempts,
		Timeout:  DefaultTimeout,
		sleep:    time.Sleep,
	}
}

// Fetch GETs url and returns the response body. It retries on 429/5xx and
// on transport failures, waiting 200ms*attempt plus up to 200ms of jitter
// between attempts so concurrent callers hitting the same rate-limited
// upstream do not retry in lockstep. Any other failure is returned
// immediately. After the attempt budget is spent, the last error observed
// is returned.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	attempts := f.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	sleep := f.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := f.once(ctx, url, timeout)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
		if attempt < attempts {
			sleep(backoffStep*time.Duration(attempt) + time.Duration(rand.Int63n(int64(backoffJitter))))
		}
	}
	return nil, lastErr
}

func (f *Fetcher) once(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if isTransient(err) {
			return nil, &NetworkError{URL: url, Cause: err}
		}
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTransient(err) {
			return nil, &NetworkError{URL: url, Cause: err}
		}
		return nil, err
	}
	return body, nil
}
