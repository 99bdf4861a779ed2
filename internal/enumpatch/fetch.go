package enumpatch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mark3labs/swagger2ts/internal/errs"
)

// Settings configures a Fetcher.
type Settings struct {
	// MaxRetries is the total number of attempts per request.
	MaxRetries int
	// Timeout bounds each attempt.
	Timeout time.Duration
	// Backoff is the first delay between attempts; it doubles after each.
	Backoff time.Duration
	// RequestsPerSecond paces requests across all targets. Zero disables pacing.
	RequestsPerSecond float64
	Token             string
	Client            *http.Client
	Logger            *zap.SugaredLogger
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxRetries:        3,
		Timeout:           10 * time.Second,
		Backoff:           500 * time.Millisecond,
		RequestsPerSecond: 5,
		Logger:            zap.NewNop().Sugar(),
	}
}

type Option func(*Settings)

func WithMaxRetries(n int) Option          { return func(s *Settings) { s.MaxRetries = n } }
func WithTimeout(d time.Duration) Option   { return func(s *Settings) { s.Timeout = d } }
func WithBackoff(d time.Duration) Option   { return func(s *Settings) { s.Backoff = d } }
func WithRate(perSecond float64) Option    { return func(s *Settings) { s.RequestsPerSecond = perSecond } }
func WithToken(token string) Option        { return func(s *Settings) { s.Token = token } }
func WithHTTPClient(c *http.Client) Option { return func(s *Settings) { s.Client = c } }
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Settings) {
		if l != nil {
			s.Logger = l
		}
	}
}

// Fetcher issues paced, retried GET requests against one base URL. Requests
// are sequential.
type Fetcher struct {
	baseURL  string
	settings Settings
	limiter  *rate.Limiter
}

// NewFetcher returns a fetcher for baseURL.
func NewFetcher(baseURL string, opts ...Option) *Fetcher {
	s := DefaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if s.Client == nil {
		s.Client = &http.Client{}
	}
	limit := rate.Inf
	if s.RequestsPerSecond > 0 {
		limit = rate.Limit(s.RequestsPerSecond)
	}
	return &Fetcher{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		settings: s,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// URL joins the base URL and an API path.
func (f *Fetcher) URL(path string) string {
	return f.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Fetch GETs path. Transient failures are retried with backoff between
// attempts; a client error other than 429 fails at once. The returned error
// is a NetworkError carrying the URL and the last attempt's cause.
func (f *Fetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	u := f.URL(path)
	log := f.settings.Logger
	backoff := f.settings.Backoff
	attempts := max(f.settings.MaxRetries, 1)

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, errs.Wrap(errs.NetworkError, ctx.Err(), u, "enum fetch: cancelled")
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, errs.Wrap(errs.NetworkError, err, u, "enum fetch: cancelled")
		}
		start := time.Now()
		body, retry, err := f.once(ctx, u)
		if err == nil {
			log.Debugw("enum fetched", "url", u, "attempt", i+1, "duration_ms", time.Since(start).Milliseconds())
			return body, nil
		}
		lastErr = err
		if !retry {
			break
		}
		log.Debugw("enum fetch failed", "url", u, "attempt", i+1, "error", err)
	}
	return nil, errs.Wrap(errs.NetworkError, lastErr, u, "enum fetch: giving up")
}

func (f *Fetcher) once(ctx context.Context, u string) ([]byte, bool, error) {
	if f.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.settings.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")
	if f.settings.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.settings.Token)
	}
	resp, err := f.settings.Client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		transient := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, transient, errors.Newf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errors.Wrap(err, "read body")
	}
	return body, false, nil
}
