package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestFetcher() (*Fetcher, *[]time.Duration) {
	var slept []time.Duration
	f := NewFetcher()
	f.sleep = func(d time.Duration) { slept = append(slept, d) }
	return f, &slept
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	f, _ := newTestFetcher()
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestFetchExhaustsAttemptsOn503(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f, slept := newTestFetcher()
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != DefaultAttempts {
		t.Errorf("expected exactly %d attempts, got %d", DefaultAttempts, calls)
	}

	var he *HTTPError
	if !errors.As(err, &he) || he.Status != 503 {
		t.Errorf("expected HTTPError with status 503, got %v", err)
	}

	// Linear backoff: each inter-attempt delay grows by at least the step.
	if len(*slept) != DefaultAttempts-1 {
		t.Fatalf("expected %d sleeps, got %d", DefaultAttempts-1, len(*slept))
	}
	for i, d := range *slept {
		base := 200 * time.Millisecond * time.Duration(i+1)
		if d < base || d >= base+200*time.Millisecond {
			t.Errorf("sleep %d = %v, want [%v, %v)", i, d, base, base+200*time.Millisecond)
		}
	}
}

func TestFetchFatalOn404(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f, slept := newTestFetcher()
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if calls != 1 {
		t.Errorf("404 must not be retried: got %d attempts", calls)
	}
	if len(*slept) != 0 {
		t.Errorf("no backoff expected for fatal status, got %v", *slept)
	}
	var he *HTTPError
	if !errors.As(err, &he) || he.Status != 404 {
		t.Errorf("expected HTTPError with status 404, got %v", err)
	}
	if he.Retryable() {
		t.Error("404 must classify as fatal")
	}
}

func TestFetchRecoversAfterTransientFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	f, _ := newTestFetcher()
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("expected recovery on third attempt, got %v", err)
	}
	if string(body) != `[]` {
		t.Errorf("unexpected body: %s", body)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestFetchTimeoutIsRetryable(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	f, _ := newTestFetcher()
	f.Timeout = 20 * time.Millisecond
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var nwe *NetworkError
	if !errors.As(err, &nwe) {
		t.Errorf("expected NetworkError, got %T: %v", err, err)
	}
	if calls != DefaultAttempts {
		t.Errorf("timeouts should be retried: expected %d attempts, got %d", DefaultAttempts, calls)
	}
}

func TestHTTPErrorClassification(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{429, true},
		{500, true},
		{503, true},
		{599, true},
		{400, false},
		{401, false},
		{404, false},
		{418, false},
	}
	for _, tt := range tests {
		e := &HTTPError{Status: tt.status, URL: "http://example.test"}
		if got := e.Retryable(); got != tt.retryable {
			t.Errorf("status %d: Retryable = %v, want %v", tt.status, got, tt.retryable)
		}
	}
}
