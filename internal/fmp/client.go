// Package fmp is a client for the Financial Modeling Prep stable API.
package fmp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
	"toppharma/internal/cache"
)

const (
	DefaultBaseURL  = "https://financialmodelingprep.com/stable"
	DefaultMinDelay = 250 * time.Millisecond
	MaxAttempts     = 3

	// free tier quota, used until the first response reports the real one
	defaultQuota = 250
)

// ErrMissingAPIKey is returned when the client is built without a key.
var ErrMissingAPIKey = errors.New("FMP API key is required")

// StatusError is a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("FMP API error (%d): %s", e.StatusCode, e.Body)
}

// Client calls FMP with a minimum spacing between requests, honors the
// advertised quota, and retries 403 (rate limited) responses with
// exponential backoff.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retryBase  time.Duration
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *slog.Logger
	now        func() time.Time

	mu        sync.Mutex
	rateLimit RateLimit

	requests atomic.Int64
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithMinDelay sets the minimum spacing between requests.
func WithMinDelay(d time.Duration) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Every(d), 1) }
}

// WithRetryBase sets the first backoff interval after a 403.
func WithRetryBase(d time.Duration) Option {
	return func(c *Client) { c.retryBase = d }
}

// WithCache caches successful GET bodies for ttl.
func WithCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// CallOptions adjust the requests made with one context.
type CallOptions struct {
	// BypassCache skips cached bodies. Fresh responses still refresh the cache.
	BypassCache bool
	// RetryBase overrides the client's first backoff interval when positive.
	RetryBase time.Duration
}

type callOptionsKey struct{}

// WithCallOptions returns a context whose requests use opts.
func WithCallOptions(ctx context.Context, opts CallOptions) context.Context {
	return context.WithValue(ctx, callOptionsKey{}, opts)
}

// CallOptionsFrom returns the options attached to ctx, zero when none are.
func CallOptionsFrom(ctx context.Context) CallOptions {
	opts, _ := ctx.Value(callOptionsKey{}).(CallOptions)
	return opts
}

// NewClient creates a client. An empty apiKey is an error.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(DefaultMinDelay), 1),
		retryBase:  time.Second,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.rateLimit = RateLimit{
		Remaining: defaultQuota,
		Reset:     c.now().Add(24 * time.Hour).Unix(),
		Total:     defaultQuota,
	}
	return c, nil
}

// RateLimitStatus returns the last quota reported by the API.
func (c *Client) RateLimitStatus() RateLimit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLimit
}

// RequestCount is the number of HTTP requests sent, retries included.
func (c *Client) RequestCount() int {
	return int(c.requests.Load())
}

// Screener lists actively trading healthcare companies in one industry.
func (c *Client) Screener(ctx context.Context, industry string, includeInactive bool) ([]ScreenerResult, error) {
	industry = NormalizeIndustry(industry)
	params := url.Values{}
	params.Set("sector", "Healthcare")
	params.Set("industry", industry)
	if !includeInactive {
		params.Set("isActivelyTrading", "true")
	}

	var results []ScreenerResult
	if err := c.get(ctx, "/company-screener", params, &results); err != nil {
		return nil, fmt.Errorf("screen %s: %w", industry, err)
	}
	return results, nil
}

// ScreenIndustries screens each industry in turn, pausing delay between
// industries, and truncates to maxCompanies when it is positive. A failing
// industry is logged and skipped.
func (c *Client) ScreenIndustries(ctx context.Context, industries []string, includeInactive bool, maxCompanies int, delay time.Duration) (*ScreenResult, error) {
	if len(industries) == 0 {
		industries = DefaultIndustries
	}

	result := &ScreenResult{Industries: map[string]int{}}
	for i, industry := range industries {
		hits, err := c.Screener(ctx, industry, includeInactive)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("industry screen failed", "industry", industry, "error", err)
			continue
		}
		result.Industries[industry] = len(hits)
		result.Companies = append(result.Companies, hits...)

		if i < len(industries)-1 && delay > 0 {
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	if maxCompanies > 0 && len(result.Companies) > maxCompanies {
		result.Companies = result.Companies[:maxCompanies]
	}
	result.TotalFound = len(result.Companies)
	return result, nil
}

// Profiles fetches profiles for a comma-joined batch of symbols.
func (c *Client) Profiles(ctx context.Context, symbols []string) ([]Profile, error) {
	if len(symbols) == 0 {
		return []Profile{}, nil
	}

	var profiles []Profile
	escaped := make([]string, len(symbols))
	for i, s := range symbols {
		escaped[i] = url.PathEscape(s)
	}
	path := "/profile/" + strings.Join(escaped, ",")
	if err := c.get(ctx, path, nil, &profiles); err != nil {
		return nil, fmt.Errorf("profiles %s: %w", strings.Join(symbols, ","), err)
	}
	return profiles, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	cacheKey := "fmp:" + path + "?" + params.Encode()
	opts := CallOptionsFrom(ctx)

	if c.cache != nil && !opts.BypassCache {
		if body, err := c.cache.Get(ctx, cacheKey); err == nil {
			return json.Unmarshal(body, out)
		}
	}

	params.Set("apikey", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryBase
	if opts.RetryBase > 0 {
		bo.InitialInterval = opts.RetryBase
	}
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		return c.do(ctx, reqURL)
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(MaxAttempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Warn("FMP rate limited, retrying", "path", path, "wait", wait, "error", err)
		}),
	)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, body, c.cacheTTL); err != nil {
			c.logger.Warn("cache FMP response", "error", err)
		}
	}
	return nil
}

// do sends one request. Only 403 responses are retryable.
func (c *Client) do(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.waitForQuota(ctx); err != nil {
		return nil, backoff.Permanent(err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	c.requests.Add(1)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("request: %w", err))
	}
	defer resp.Body.Close()

	c.updateRateLimit(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode == http.StatusForbidden {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, backoff.Permanent(&StatusError{StatusCode: resp.StatusCode, Body: string(body)})
	}
	return body, nil
}

func (c *Client) updateRateLimit(h http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, err := strconv.Atoi(h.Get("X-Rate-Limit-Remaining")); err == nil {
		c.rateLimit.Remaining = v
	}
	if v, err := strconv.ParseInt(h.Get("X-Rate-Limit-Reset"), 10, 64); err == nil {
		c.rateLimit.Reset = v
	}
	if v, err := strconv.Atoi(h.Get("X-Rate-Limit-Total")); err == nil {
		c.rateLimit.Total = v
	}
}

// waitForQuota blocks until the reset time when the quota is nearly spent.
func (c *Client) waitForQuota(ctx context.Context) error {
	rl := c.RateLimitStatus()
	if rl.Remaining > 1 {
		return nil
	}
	wait := time.Unix(rl.Reset, 0).Sub(c.now())
	if wait <= 0 {
		return nil
	}
	c.logger.Warn("FMP quota reached, waiting for reset", "wait", wait)
	return sleep(ctx, wait)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
