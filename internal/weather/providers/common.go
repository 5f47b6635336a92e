package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-assistant/internal/apperrors"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultBackoff allows three attempts. The wait after attempt n is
// InitialInterval * 2^n capped at MaxInterval, so 2s then 4s.
var DefaultBackoff = BackoffConfig{
	MaxAttempts:     3,
	InitialInterval: time.Second,
	MaxInterval:     10 * time.Second,
}

// Delay returns the wait after the given attempt (numbered from 1).
func (b BackoffConfig) Delay(attempt int) time.Duration {
	delay := b.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
	if b.MaxInterval > 0 && delay > b.MaxInterval {
		delay = b.MaxInterval
	}
	return delay
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Timeout time.Duration
	Backoff BackoffConfig
	// BreakerThreshold is the number of consecutive fetches to one endpoint within
	// a request that may exhaust their attempts before further fetches to that
	// endpoint are skipped. Zero disables the breaker.
	BreakerThreshold uint32
}

// OutcomeKind tags an Outcome.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeNotFound
	OutcomeTransient
	OutcomePermanent
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeTransient:
		return "transient"
	case OutcomePermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// Outcome is the result of a single logical fetch.
type Outcome struct {
	Kind       OutcomeKind
	Body       []byte
	StatusCode int
	Detail     string
}

// Err converts a non-success outcome into a coded error for source.
func (o Outcome) Err(source string) error {
	switch o.Kind {
	case OutcomeSuccess:
		return nil
	case OutcomeTransient:
		return apperrors.Wrap(apperrors.CodeTransientFailure, source+" unreachable", errors.New(o.Detail))
	default:
		return apperrors.Wrap(apperrors.CodePermanentFailure, fmt.Sprintf("%s returned status %d", source, o.StatusCode), nil)
	}
}

var (
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// Fetcher performs HTTP GETs with bounded retries on transport failures.
// A received response is never retried.
type Fetcher struct {
	client    *resty.Client
	backoff   BackoffConfig
	threshold uint32
	logger    *zap.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewFetcher builds a Fetcher around cfg.Client.
func NewFetcher(cfg HTTPClientConfig, logger *zap.Logger) (*Fetcher, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxAttempts < 1 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.NewWithClient(cfg.Client)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Fetcher{
		client:    client,
		backoff:   cfg.Backoff,
		threshold: cfg.BreakerThreshold,
		logger:    logger.With(zap.String("component", "fetcher")),
		sleep:     sleepContext,
	}, nil
}

// Scoped returns a view of the fetcher with request-scoped circuit breakers, one
// per endpoint path. Use one per user request so breaker state never leaks
// between requests.
func (f *Fetcher) Scoped(name string) *ScopedFetcher {
	return &ScopedFetcher{f: f, name: name, breakers: make(map[string]*gobreaker.TwoStepCircuitBreaker)}
}

// Fetch is a one-off fetch with a private breaker.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) Outcome {
	return f.Scoped("fetch").Fetch(ctx, rawURL)
}

// ScopedFetcher is a Fetcher bound to one request. A breaker only counts whole
// fetches that ended Transient against the same endpoint; it is consulted before
// a fetch starts and never interrupts a fetch's own attempts.
type ScopedFetcher struct {
	f    *Fetcher
	name string

	mu       sync.Mutex
	breakers map[string]*gobreaker.TwoStepCircuitBreaker
}

func (s *ScopedFetcher) breaker(rawURL string) *gobreaker.TwoStepCircuitBreaker {
	if s.f.threshold == 0 {
		return nil
	}
	key := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		key = u.Host + u.Path
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cb, ok := s.breakers[key]; ok {
		return cb
	}

	threshold := s.f.threshold
	logger := s.f.logger
	cb := gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
		Name:        s.name + " " + key,
		MaxRequests: 1,
		Timeout:     time.Hour,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	s.breakers[key] = cb
	return cb
}

// Fetch GETs rawURL. Transport failures are retried up to the configured number of
// attempts; 2xx is Success, 404 is NotFound, any other status is Permanent.
func (s *ScopedFetcher) Fetch(ctx context.Context, rawURL string) Outcome {
	cb := s.breaker(rawURL)
	if cb == nil {
		return s.attempt(ctx, rawURL)
	}

	done, err := cb.Allow()
	if err != nil {
		s.f.logger.Error("fetch short-circuited",
			zap.String("url", redact(rawURL)),
			zap.String("breaker", cb.Name()),
			zap.Error(err),
		)
		return Outcome{Kind: OutcomeTransient, Detail: err.Error()}
	}

	outcome := s.attempt(ctx, rawURL)
	done(outcome.Kind != OutcomeTransient)
	return outcome
}

func (s *ScopedFetcher) attempt(ctx context.Context, rawURL string) Outcome {
	log := s.f.logger.With(zap.String("url", redact(rawURL)))
	var lastErr error

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			log.Error("fetch abandoned", zap.Int("attempt", attempt), zap.Error(lastErr))
			return Outcome{Kind: OutcomeTransient, Detail: lastErr.Error()}
		}

		log.Info("fetching", zap.Int("attempt", attempt), zap.Int("max_attempts", s.f.backoff.MaxAttempts))
		resp, err := s.f.client.R().SetContext(ctx).Get(rawURL)
		if err == nil {
			return classify(resp)
		}

		lastErr = err
		if attempt >= s.f.backoff.MaxAttempts {
			log.Error("fetch failed", zap.Int("attempts", attempt), zap.Error(err))
			return Outcome{Kind: OutcomeTransient, Detail: err.Error()}
		}

		if err := s.f.sleep(ctx, s.f.backoff.Delay(attempt)); err != nil {
			log.Error("fetch abandoned during backoff", zap.Int("attempt", attempt), zap.Error(err))
			return Outcome{Kind: OutcomeTransient, Detail: lastErr.Error()}
		}
	}
}

func classify(resp *resty.Response) Outcome {
	code := resp.StatusCode()
	switch {
	case code >= 200 && code < 300:
		return Outcome{Kind: OutcomeSuccess, Body: resp.Body(), StatusCode: code}
	case code == http.StatusNotFound:
		return Outcome{Kind: OutcomeNotFound, StatusCode: code, Detail: resp.Status()}
	default:
		return Outcome{Kind: OutcomePermanent, StatusCode: code, Detail: resp.Status()}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var secretParams = []string{"appid", "key"}

// redact hides API keys in URLs before they reach the logs.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<unparseable url>"
	}
	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
