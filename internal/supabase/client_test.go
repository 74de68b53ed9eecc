package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/", "service-key")
	require.NoError(t, err)
	c.retryBase = time.Millisecond
	return c.WithHTTPClient(srv.Client())
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient("", "key")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = NewClient("http://localhost", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestRPCSendsHeadersAndArgs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/rpc/exec_sql", r.URL.Path)
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var args map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&args))
		assert.Equal(t, "select 1", args["sql"])
		_, _ = w.Write([]byte(`null`))
	})

	body, err := c.RPC(context.Background(), "exec_sql", map[string]string{"sql": "select 1"})
	require.NoError(t, err)
	assert.JSONEq(t, `null`, string(body))
}

func TestRPCMissingFunctionIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"PGRST202","message":"Could not find the function public.exec_sql"}`))
	})

	_, err := c.RPC(context.Background(), "exec_sql", map[string]string{"sql": "x"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "PGRST202", apiErr.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestServerErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	var rows []map[string]any
	require.NoError(t, c.Select(context.Background(), "companies", nil, &rows))
	assert.Empty(t, rows)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCountReadsContentRange(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, "/rest/v1/companies", r.URL.Path)
		assert.Equal(t, "count=exact", r.Header.Get("Prefer"))
		w.Header().Set("Content-Range", "0-24/3573")
	})

	n, err := c.Count(context.Background(), "companies")
	require.NoError(t, err)
	assert.Equal(t, int64(3573), n)
}

func TestSelectPassesQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "id,name", r.URL.Query().Get("select"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, `[{"id":1,"name":"Pfizer"}]`)
	})

	var rows []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	err := c.Select(context.Background(), "companies", url.Values{"select": {"id,name"}, "limit": {"5"}}, &rows)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Pfizer", rows[0].Name)
}

func TestParseContentRange(t *testing.T) {
	n, err := parseContentRange("*/0")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = parseContentRange("0-9/*")
	assert.Error(t, err)
	_, err = parseContentRange("")
	assert.Error(t, err)
}
