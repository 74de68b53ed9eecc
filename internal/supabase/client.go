// Package supabase is a small PostgREST client for the hosted or local
// Supabase instance. It covers the calls the migration runner and the
// connection test need: RPC, exact counts, and filtered selects.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrMissingCredentials is returned when the URL or key is empty.
var ErrMissingCredentials = errors.New("supabase URL and key are required")

// APIError is a non-2xx PostgREST response.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("supabase error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("supabase error (%d)", e.StatusCode)
}

// Client talks to <url>/rest/v1 with the given API key.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
	maxTries   uint
	retryBase  time.Duration
}

// NewClient creates a client. Use the service role key for RPC calls that
// bypass row level security.
func NewClient(supabaseURL, key string) (*Client, error) {
	if supabaseURL == "" || key == "" {
		return nil, ErrMissingCredentials
	}
	return &Client{
		baseURL: strings.TrimRight(supabaseURL, "/"),
		key:     key,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxTries:  3,
		retryBase: 500 * time.Millisecond,
	}, nil
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// RPC calls a Postgres function through /rest/v1/rpc/<fn> and returns the raw body.
func (c *Client) RPC(ctx context.Context, fn string, args any) (json.RawMessage, error) {
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshal rpc args: %w", err)
	}

	body, _, err := c.send(ctx, http.MethodPost, "/rest/v1/rpc/"+url.PathEscape(fn), nil, payload, nil)
	if err != nil {
		return nil, fmt.Errorf("rpc %s: %w", fn, err)
	}
	return body, nil
}

// Count returns the exact row count of a table using a HEAD request with
// Prefer: count=exact.
func (c *Client) Count(ctx context.Context, table string) (int64, error) {
	query := url.Values{}
	query.Set("select", "*")

	_, header, err := c.send(ctx, http.MethodHead, "/rest/v1/"+url.PathEscape(table), query, nil,
		map[string]string{"Prefer": "count=exact"})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}

	n, err := parseContentRange(header.Get("Content-Range"))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Select fetches rows of a table into out. query carries PostgREST
// parameters such as select, order, limit and column filters.
func (c *Client) Select(ctx context.Context, table string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	if query.Get("select") == "" {
		query.Set("select", "*")
	}

	body, _, err := c.send(ctx, http.MethodGet, "/rest/v1/"+url.PathEscape(table), query, nil, nil)
	if err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s rows: %w", table, err)
	}
	return nil
}

// send performs one request, retrying transport errors and 5xx responses.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, headers map[string]string) ([]byte, http.Header, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	type result struct {
		body   []byte
		header http.Header
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryBase

	res, err := backoff.Retry(ctx, func() (result, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return result{}, backoff.Permanent(err)
		}
		req.Header.Set("apikey", c.key)
		req.Header.Set("Authorization", "Bearer "+c.key)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return result{}, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return result{}, err
		}

		if resp.StatusCode >= 300 {
			apiErr := &APIError{StatusCode: resp.StatusCode}
			_ = json.Unmarshal(body, apiErr)
			if apiErr.Message == "" {
				apiErr.Message = strings.TrimSpace(string(body))
			}
			if resp.StatusCode >= 500 {
				return result{}, apiErr
			}
			return result{}, backoff.Permanent(apiErr)
		}
		return result{body: body, header: resp.Header}, nil
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(c.maxTries),
	)
	if err != nil {
		return nil, nil, err
	}
	return res.body, res.header, nil
}

// parseContentRange reads the total from "0-24/3573" or "*/0".
func parseContentRange(v string) (int64, error) {
	i := strings.LastIndex(v, "/")
	if i < 0 || i == len(v)-1 {
		return 0, fmt.Errorf("missing count in Content-Range %q", v)
	}
	total := v[i+1:]
	if total == "*" {
		return 0, fmt.Errorf("count not returned in Content-Range %q", v)
	}
	return strconv.ParseInt(total, 10, 64)
}
