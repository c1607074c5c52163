package transfermarkt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
	"github.com/riskibarqy/market-value-crawler/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/time/rate"
)

const (
	defaultMaxRetries     = 3
	defaultBaseDelay      = time.Second
	defaultRequestTimeout = 30 * time.Second
	maxBodyBytes          = 6 << 20
)

var (
	// ErrTransient marks transport failures and non-2xx responses. Only these
	// are retried.
	ErrTransient = crerr.New("transfermarkt transient failure")
	// ErrDecode marks a response body that is not valid JSON.
	ErrDecode = crerr.New("transfermarkt decode failure")
	// ErrCircuitOpen is returned without any request when the breaker is open.
	ErrCircuitOpen = resilience.ErrCircuitOpen
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type FetcherConfig struct {
	HTTPClient     *http.Client
	UserAgent      string
	MaxRetries     int
	BaseDelay      time.Duration
	MaxRPS         float64
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
	Sleep          SleepFunc
}

// Request is one logical GET. Timeout bounds every attempt separately.
type Request struct {
	URL     string
	Timeout time.Duration
}

// Result is the outcome of a logical fetch after all attempts.
type Result struct {
	Body       []byte
	StatusCode int
	Attempts   int
	Err        error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Fetcher issues GET requests with bounded linear-backoff retries.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration
	logger     *logging.Logger
	sleep      SleepFunc
	limiter    *rate.Limiter
	guard      *resilience.Guard
	flight     resilience.SingleFlight
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = defaultMaxRetries
	}
	baseDelay := cfg.BaseDelay
	if baseDelay < 0 {
		baseDelay = defaultBaseDelay
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var limiter *rate.Limiter
	if cfg.MaxRPS > 0 {
		burst := int(cfg.MaxRPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.MaxRPS), burst)
	}

	guard := resilience.NewGuard(cfg.CircuitBreaker)
	if guard.Enabled() {
		guard.Breaker().OnStateChange(func(from, to resilience.CircuitState) {
			logger.Warn("transfermarkt circuit breaker state changed", "from", from, "to", to)
		})
	}

	return &Fetcher{
		httpClient: httpClient,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
		sleep:      sleep,
		limiter:    limiter,
		guard:      guard,
	}
}

// Fetch runs up to maxRetries attempts, sleeping baseDelay*n after the n-th
// failure. The returned Result carries the last error when every attempt
// failed. Identical URLs requested concurrently share one logical fetch.
func (f *Fetcher) Fetch(ctx context.Context, req Request) Result {
	if err := f.guard.Allow(); err != nil {
		f.logger.WarnContext(ctx, "transfermarkt circuit breaker rejected request", "url", req.URL, "state", f.guard.State())
		return Result{Err: crerr.Wrapf(err, "fetch %s", req.URL)}
	}

	out, _, _ := f.flight.Do(req.URL, func() (any, error) {
		res := f.fetchWithRetry(ctx, req)
		f.guard.Record(res.Err, isCircuitFailure)
		return res, nil
	})
	return out.(Result)
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, req Request) Result {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	var last Result
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				last.Err = crerr.Wrap(err, "wait for rate limiter")
				return last
			}
		}

		f.logger.DebugContext(ctx, "transfermarkt request attempt", "url", req.URL, "attempt", attempt, "max_attempts", f.maxRetries)
		body, status, err := f.attempt(ctx, req.URL, timeout)
		last = Result{Body: body, StatusCode: status, Attempts: attempt, Err: err}
		if err == nil {
			return last
		}

		f.logger.WarnContext(ctx, "transfermarkt request attempt failed",
			"url", req.URL,
			"attempt", attempt,
			"max_attempts", f.maxRetries,
			"status", status,
			"error", err,
		)
		if attempt == f.maxRetries {
			break
		}
		if sleepErr := f.sleep(ctx, f.baseDelay*time.Duration(attempt)); sleepErr != nil {
			last.Err = crerr.WithSecondaryError(err, sleepErr)
			return last
		}
	}

	f.logger.ErrorContext(ctx, "transfermarkt request exhausted retries",
		"url", req.URL,
		"attempts", last.Attempts,
		"error", last.Err,
	)
	return last
}

func (f *Fetcher) attempt(ctx context.Context, url string, timeout time.Duration) ([]byte, int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, crerr.Wrap(err, "build request")
	}
	if f.userAgent != "" {
		httpReq.Header.Set("User-Agent", f.userAgent)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: send request: %w", ErrTransient, err)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response body: %w", ErrTransient, err)
	}
	body := append([]byte(nil), buf.B...)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, resp.StatusCode, fmt.Errorf("%w: status=%d body=%s", ErrTransient, resp.StatusCode, sample(body, 240))
	}
	return body, resp.StatusCode, nil
}

// SleepContext blocks for d unless ctx finishes first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isCircuitFailure(err error) bool {
	return errors.Is(err, ErrTransient)
}

// sample returns at most n runes of body for log lines.
func sample(body []byte, n int) string {
	text := strings.TrimSpace(string(body))
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
