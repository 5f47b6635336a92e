package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/i474232898/weather-assistant/internal/apperrors"
)

// flakyTransport fails the first `failures` round trips with a connection error.
type flakyTransport struct {
	failures int32
	calls    atomic.Int32
	next     http.RoundTripper
}

func (t *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	n := t.calls.Add(1)
	if n <= t.failures {
		return nil, errors.New("connection refused")
	}
	return t.next.RoundTrip(req)
}

type recordedSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordedSleep) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func newTestFetcher(t *testing.T, transport http.RoundTripper, threshold uint32) (*Fetcher, *recordedSleep) {
	t.Helper()
	f, err := NewFetcher(HTTPClientConfig{
		Client:           &http.Client{Transport: transport},
		Timeout:          time.Second,
		Backoff:          DefaultBackoff,
		BreakerThreshold: threshold,
	}, zap.NewNop())
	require.NoError(t, err)

	rec := &recordedSleep{}
	f.sleep = rec.sleep
	return f, rec
}

func statusServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetchRetriesTransportFailuresUntilSuccess(t *testing.T) {
	srv, hits := statusServer(t, http.StatusOK, `{"ok":true}`)
	transport := &flakyTransport{failures: 2, next: http.DefaultTransport}
	f, rec := newTestFetcher(t, transport, 0)

	o := f.Fetch(context.Background(), srv.URL+"/weather")

	require.Equal(t, OutcomeSuccess, o.Kind)
	require.JSONEq(t, `{"ok":true}`, string(o.Body))
	require.Empty(t, o.Detail)
	require.EqualValues(t, 3, transport.calls.Load())
	require.EqualValues(t, 1, hits.Load())
	require.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.delays)
}

func TestFetchExhaustedRetriesIsTransient(t *testing.T) {
	srv, hits := statusServer(t, http.StatusOK, `{}`)
	transport := &flakyTransport{failures: 10, next: http.DefaultTransport}
	f, rec := newTestFetcher(t, transport, 0)

	o := f.Fetch(context.Background(), srv.URL)

	require.Equal(t, OutcomeTransient, o.Kind)
	require.Contains(t, o.Detail, "connection refused")
	require.EqualValues(t, 3, transport.calls.Load())
	require.Zero(t, hits.Load())
	require.Len(t, rec.delays, 2)

	err := o.Err("forecast")
	require.True(t, apperrors.IsCode(err, apperrors.CodeTransientFailure))
}

func TestFetchDoesNotRetryReceivedResponses(t *testing.T) {
	cases := []struct {
		status int
		kind   OutcomeKind
	}{
		{http.StatusNotFound, OutcomeNotFound},
		{http.StatusInternalServerError, OutcomePermanent},
		{http.StatusUnauthorized, OutcomePermanent},
		{http.StatusTooManyRequests, OutcomePermanent},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv, hits := statusServer(t, tc.status, `{"message":"nope"}`)
			f, rec := newTestFetcher(t, http.DefaultTransport, 0)

			o := f.Fetch(context.Background(), srv.URL)

			require.Equal(t, tc.kind, o.Kind)
			require.Equal(t, tc.status, o.StatusCode)
			require.EqualValues(t, 1, hits.Load())
			require.Empty(t, rec.delays)
		})
	}
}

func TestFetchStopsWhenContextIsDone(t *testing.T) {
	transport := &flakyTransport{failures: 10, next: http.DefaultTransport}
	f, _ := newTestFetcher(t, transport, 0)
	f.sleep = sleepContext

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := f.Fetch(ctx, "http://example.invalid/")
	require.Equal(t, OutcomeTransient, o.Kind)
	require.Zero(t, transport.calls.Load())
}

// pathTransport fails round trips per URL path: paths in down always fail, other
// paths fail their first `failures` round trips.
type pathTransport struct {
	down     map[string]bool
	failures int32

	mu    sync.Mutex
	calls map[string]int32
	next  http.RoundTripper
}

func (t *pathTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.calls[req.URL.Path]++
	n := t.calls[req.URL.Path]
	t.mu.Unlock()

	if t.down[req.URL.Path] || n <= t.failures {
		return nil, errors.New("connection refused")
	}
	return t.next.RoundTrip(req)
}

func (t *pathTransport) callsTo(path string) int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[path]
}

func TestScopedBreakerIsolatesEndpoints(t *testing.T) {
	srv, hits := statusServer(t, http.StatusOK, `{"list":[]}`)
	transport := &pathTransport{
		down:  map[string]bool{"/uvi/forecast": true, "/air_pollution/forecast": true},
		calls: map[string]int32{},
		next:  http.DefaultTransport,
	}
	f, _ := newTestFetcher(t, transport, 2)
	scoped := f.Scoped("request")
	ctx := context.Background()

	require.Equal(t, OutcomeTransient, scoped.Fetch(ctx, srv.URL+"/uvi/forecast").Kind)
	require.Equal(t, OutcomeTransient, scoped.Fetch(ctx, srv.URL+"/air_pollution/forecast").Kind)
	require.EqualValues(t, 3, transport.callsTo("/uvi/forecast"))
	require.EqualValues(t, 3, transport.callsTo("/air_pollution/forecast"))

	o := scoped.Fetch(ctx, srv.URL+"/forecast")
	require.Equal(t, OutcomeSuccess, o.Kind, o.Detail)
	require.EqualValues(t, 1, hits.Load())
}

func TestScopedFetchesRetryIndependentlyWhenConcurrent(t *testing.T) {
	srv, hits := statusServer(t, http.StatusOK, `{}`)
	transport := &pathTransport{failures: 2, calls: map[string]int32{}, next: http.DefaultTransport}
	f, _ := newTestFetcher(t, transport, 2)
	scoped := f.Scoped("request")

	paths := []string{"/forecast", "/uvi/forecast", "/air_pollution/forecast"}
	outcomes := make([]Outcome, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			outcomes[i] = scoped.Fetch(context.Background(), srv.URL+path)
		}(i, path)
	}
	wg.Wait()

	for i, path := range paths {
		require.Equal(t, OutcomeSuccess, outcomes[i].Kind, path)
		require.EqualValues(t, 3, transport.callsTo(path), path)
	}
	require.EqualValues(t, 3, hits.Load())
}

func TestScopedBreakerOpensForRepeatedlyFailingEndpoint(t *testing.T) {
	transport := &pathTransport{down: map[string]bool{"/a": true}, calls: map[string]int32{}, next: http.DefaultTransport}
	f, _ := newTestFetcher(t, transport, 2)
	scoped := f.Scoped("request")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.Equal(t, OutcomeTransient, scoped.Fetch(ctx, "http://example.invalid/a").Kind)
	}
	require.EqualValues(t, 6, transport.callsTo("/a"))

	o := scoped.Fetch(ctx, "http://example.invalid/a")
	require.Equal(t, OutcomeTransient, o.Kind)
	require.Contains(t, o.Detail, "circuit breaker is open")
	require.EqualValues(t, 6, transport.callsTo("/a"), "open breaker must not reach the transport")

	// A new scope starts with a closed breaker.
	require.Equal(t, OutcomeTransient, f.Scoped("next-request").Fetch(ctx, "http://example.invalid/a").Kind)
	require.EqualValues(t, 9, transport.callsTo("/a"))
}

func TestBackoffDelay(t *testing.T) {
	b := DefaultBackoff
	require.Equal(t, 2*time.Second, b.Delay(1))
	require.Equal(t, 4*time.Second, b.Delay(2))
	require.Equal(t, 8*time.Second, b.Delay(3))
	require.Equal(t, 10*time.Second, b.Delay(4))

	b = BackoffConfig{MaxAttempts: 3, InitialInterval: 500 * time.Millisecond, MaxInterval: time.Minute}
	require.Equal(t, time.Second, b.Delay(1))
	require.Equal(t, 2*time.Second, b.Delay(2))
	require.Equal(t, 4*time.Second, b.Delay(3))
}

func TestNewFetcherRejectsInvalidConfig(t *testing.T) {
	_, err := NewFetcher(HTTPClientConfig{Backoff: DefaultBackoff}, nil)
	require.ErrorIs(t, err, errNoHTTPClient)

	_, err = NewFetcher(HTTPClientConfig{Client: http.DefaultClient}, nil)
	require.ErrorIs(t, err, errInvalidConfig)
}

func TestRedactHidesKeys(t *testing.T) {
	got := redact("https://api.example.com/weather?q=Paris&appid=secret")
	require.NotContains(t, got, "secret")
	require.True(t, strings.Contains(got, "q=Paris"))

	got = redact("http://tz.example.com/get-time-zone?key=abc&lat=1")
	require.NotContains(t, got, "abc")
}
