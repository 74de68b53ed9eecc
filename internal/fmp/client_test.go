package fmp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"toppharma/internal/cache"
)

func testClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	base := []Option{
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithMinDelay(time.Millisecond),
		WithRetryBase(time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	c, err := NewClient("test-key", append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestScreenerSendsParamsAndTracksRateLimit(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company-screener", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("apikey"))
		assert.Equal(t, "Healthcare", q.Get("sector"))
		assert.Equal(t, "Biotechnology", q.Get("industry"))
		assert.Equal(t, "true", q.Get("isActivelyTrading"))

		w.Header().Set("X-Rate-Limit-Remaining", "42")
		w.Header().Set("X-Rate-Limit-Reset", "1700000000")
		w.Header().Set("X-Rate-Limit-Total", "300")
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"symbol": "VRTX", "companyName": "Vertex Pharmaceuticals", "marketCap": "105000000000", "industry": "Biotechnology"},
		})
	}))

	hits, err := c.Screener(context.Background(), "Biotechnology", false)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "VRTX", hits[0].Symbol)
	assert.True(t, hits[0].MarketCap.Valid)
	assert.Equal(t, 105e9, hits[0].MarketCap.Value)

	assert.Equal(t, RateLimit{Remaining: 42, Reset: 1700000000, Total: 300}, c.RateLimitStatus())
	assert.Equal(t, 1, c.RequestCount())
}

func TestProfilesRetriesForbidden(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/profile/PFE,MRK", r.URL.Path)
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("Limit Reach"))
			return
		}
		_, _ = w.Write([]byte(`[{"symbol":"PFE","companyName":"Pfizer Inc."},{"symbol":"MRK","companyName":"Merck & Co., Inc."}]`))
	}))

	profiles, err := c.Profiles(context.Background(), []string{"PFE", "MRK"})
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 3, c.RequestCount())
}

func TestProfilesGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := c.Profiles(context.Background(), []string{"PFE"})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, int32(MaxAttempts), calls.Load())
}

func TestNonForbiddenErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := c.Screener(context.Background(), "Biotechnology", true)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestScreenerNormalizesIndustryDash(t *testing.T) {
	var got []string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.URL.Query().Get("industry"))
		_, _ = w.Write([]byte(`[]`))
	}))

	for _, industry := range []string{
		"Drug Manufacturers\u2014Specialty & Generic",
		"Drug Manufacturers \u2013 General",
		"Biotechnology",
	} {
		_, err := c.Screener(context.Background(), industry, false)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{
		"Drug Manufacturers - Specialty & Generic",
		"Drug Manufacturers - General",
		"Biotechnology",
	}, got)
}

func TestScreenIndustriesAggregates(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("industry") {
		case "Biotechnology":
			_, _ = w.Write([]byte(`[{"symbol":"A"},{"symbol":"B"}]`))
		case "Drug Manufacturers - General":
			_, _ = w.Write([]byte(`[{"symbol":"C"}]`))
		default:
			http.Error(w, "nope", http.StatusBadRequest)
		}
	}))

	res, err := c.ScreenIndustries(context.Background(),
		[]string{"Biotechnology", "Broken", "Drug Manufacturers - General"}, false, 2, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, res.TotalFound)
	assert.Len(t, res.Companies, 2)
	assert.Equal(t, map[string]int{"Biotechnology": 2, "Drug Manufacturers - General": 1}, res.Industries)
}

func TestResponsesAreCached(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[{"symbol":"LLY"}]`))
	}), WithCache(cache.NewMemory(), time.Hour))

	for i := 0; i < 3; i++ {
		hits, err := c.Screener(context.Background(), "Biotechnology", false)
		require.NoError(t, err)
		require.Len(t, hits, 1)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestBypassCacheFetchesLiveProfiles(t *testing.T) {
	var hits atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"symbol": "PFE", "companyName": "Pfizer Inc.", "fullTimeEmployees": n * 1000},
		})
	}), WithCache(cache.NewMemory(), time.Hour))

	ctx := context.Background()
	first, err := c.Profiles(ctx, []string{"PFE"})
	require.NoError(t, err)
	cached, err := c.Profiles(ctx, []string{"PFE"})
	require.NoError(t, err)
	assert.Equal(t, first[0].FullTimeEmployees, cached[0].FullTimeEmployees)
	assert.Equal(t, 1, c.RequestCount())

	live, err := c.Profiles(WithCallOptions(ctx, CallOptions{BypassCache: true}), []string{"PFE"})
	require.NoError(t, err)
	assert.Equal(t, 2000.0, live[0].FullTimeEmployees.Value)
	assert.Equal(t, 2, c.RequestCount())

	refreshed, err := c.Profiles(ctx, []string{"PFE"})
	require.NoError(t, err)
	assert.Equal(t, 2000.0, refreshed[0].FullTimeEmployees.Value, "live response refreshes the cache")
	assert.Equal(t, int32(2), hits.Load())
}

func TestCallRetryBaseOverridesClient(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`[{"symbol":"MRK"}]`))
	}), WithRetryBase(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := c.Profiles(WithCallOptions(ctx, CallOptions{RetryBase: time.Millisecond}), []string{"MRK"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNumericDecoding(t *testing.T) {
	var v struct {
		A Numeric `json:"a"`
		B Numeric `json:"b"`
		C Numeric `json:"c"`
		D Numeric `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12.5, "b": "83,000", "c": null, "d": ""}`), &v))

	assert.Equal(t, Numeric{Value: 12.5, Valid: true}, v.A)
	assert.Equal(t, Numeric{Value: 83000, Valid: true}, v.B)
	assert.False(t, v.C.Valid)
	assert.False(t, v.D.Valid)
}
