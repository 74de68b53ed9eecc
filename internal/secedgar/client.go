// Package secedgar reads company submissions and XBRL facts from SEC EDGAR
// and folds the latest annual figures into the company directory.
package secedgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

const (
	DefaultDataURL = "https://data.sec.gov"
	DefaultWWWURL  = "https://www.sec.gov"

	// SEC asks clients to stay at or below ten requests per second
	DefaultRatePerSecond = 10
	MaxAttempts          = 3
)

// ErrMissingUserAgent is returned when the client is built without a
// User-Agent. EDGAR rejects anonymous requests.
var ErrMissingUserAgent = errors.New("SEC EDGAR requires a User-Agent with contact details")

// ErrUnknownTicker is returned when no CIK is registered for a ticker.
var ErrUnknownTicker = errors.New("no CIK registered for ticker")

// StatusError is a non-2xx EDGAR response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("SEC EDGAR error (%d): %s", e.StatusCode, e.URL)
}

// Client calls EDGAR under a shared rate limit and retries 429 and 5xx
// responses with exponential backoff.
type Client struct {
	userAgent  string
	dataURL    string
	wwwURL     string
	httpClient *http.Client
	limiter    *rate.Limiter
	retryBase  time.Duration
	logger     *slog.Logger

	tickersMu sync.Mutex
	tickers   map[string]string // upper-case ticker -> padded CIK

	requests atomic.Int64
}

type Option func(*Client)

// WithBaseURLs points the client at other hosts for data.sec.gov and www.sec.gov.
func WithBaseURLs(dataURL, wwwURL string) Option {
	return func(c *Client) {
		c.dataURL = strings.TrimRight(dataURL, "/")
		c.wwwURL = strings.TrimRight(wwwURL, "/")
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRateLimit caps requests per second. Values <= 0 keep the default.
func WithRateLimit(perSecond int) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithRetryBase sets the first backoff interval after a 429 or 5xx.
func WithRetryBase(d time.Duration) Option {
	return func(c *Client) { c.retryBase = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client identifying itself with userAgent.
func NewClient(userAgent string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(userAgent) == "" {
		return nil, ErrMissingUserAgent
	}
	c := &Client{
		userAgent:  userAgent,
		dataURL:    DefaultDataURL,
		wwwURL:     DefaultWWWURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRatePerSecond), 1),
		retryBase:  time.Second,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// RequestCount is the number of HTTP requests sent, retries included.
func (c *Client) RequestCount() int {
	return int(c.requests.Load())
}

// PadCIK left-pads a CIK to the ten digits EDGAR paths use.
func PadCIK(cik string) string {
	cik = strings.TrimLeft(strings.TrimSpace(cik), "0")
	if len(cik) >= 10 {
		return cik
	}
	return strings.Repeat("0", 10-len(cik)) + cik
}

// LookupCIK resolves a ticker, checking the built-in list of large pharma
// filers before downloading the SEC ticker file. The file is fetched once
// per client.
func (c *Client) LookupCIK(ctx context.Context, ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if cik, ok := KnownCIKs[ticker]; ok {
		return cik, nil
	}

	c.tickersMu.Lock()
	defer c.tickersMu.Unlock()
	if c.tickers == nil {
		var raw map[string]struct {
			CIK    int64  `json:"cik_str"`
			Ticker string `json:"ticker"`
		}
		if err := c.get(ctx, c.wwwURL+"/files/company_tickers.json", &raw); err != nil {
			return "", fmt.Errorf("ticker list: %w", err)
		}
		c.tickers = make(map[string]string, len(raw))
		for _, t := range raw {
			c.tickers[strings.ToUpper(t.Ticker)] = PadCIK(strconv.FormatInt(t.CIK, 10))
		}
	}

	cik, ok := c.tickers[ticker]
	if !ok {
		return "", fmt.Errorf("%s: %w", ticker, ErrUnknownTicker)
	}
	return cik, nil
}

// Submissions fetches a filer's profile and recent filings.
func (c *Client) Submissions(ctx context.Context, cik string) (*Submissions, error) {
	var s Submissions
	if err := c.get(ctx, fmt.Sprintf("%s/submissions/CIK%s.json", c.dataURL, PadCIK(cik)), &s); err != nil {
		return nil, fmt.Errorf("submissions %s: %w", cik, err)
	}
	return &s, nil
}

// CompanyFacts fetches every XBRL fact a filer has reported.
func (c *Client) CompanyFacts(ctx context.Context, cik string) (*CompanyFacts, error) {
	var f CompanyFacts
	if err := c.get(ctx, fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%s.json", c.dataURL, PadCIK(cik)), &f); err != nil {
		return nil, fmt.Errorf("company facts %s: %w", cik, err)
	}
	return &f, nil
}

func (c *Client) get(ctx context.Context, reqURL string, out interface{}) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryBase
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		return c.do(ctx, reqURL)
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(MaxAttempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Warn("SEC EDGAR request failed, retrying", "url", reqURL, "wait", wait, "error", err)
		}),
	)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do sends one request. 429 and 5xx responses are retryable.
func (c *Client) do(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.requests.Add(1)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("read body: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: reqURL}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, backoff.Permanent(&StatusError{StatusCode: resp.StatusCode, URL: reqURL})
	}
	return body, nil
}
