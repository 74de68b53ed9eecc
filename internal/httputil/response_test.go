package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorWithExtras(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithExtras(rec, http.StatusConflict, "already following", map[string]interface{}{"resource_id": "abc"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Conflict", body["title"])
	assert.Equal(t, "already following", body["detail"])
	assert.Equal(t, "abc", body["resource_id"])
}

func TestParseJSON(t *testing.T) {
	var dest struct {
		Flag string `json:"flag"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"flag":"enable_dark_mode"}`))
	require.NoError(t, ParseJSON(httptest.NewRecorder(), req, &dest))
	assert.Equal(t, "enable_dark_mode", dest.Flag)

	empty := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.NoError(t, ParseJSON(httptest.NewRecorder(), empty, &dest))

	bad := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"flag":`))
	assert.Error(t, ParseJSON(httptest.NewRecorder(), bad, &dest))
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=25&offset=x", nil)
	assert.Equal(t, 25, QueryInt(req, "limit", 100))
	assert.Equal(t, 0, QueryInt(req, "offset", 0))
	assert.Equal(t, 7, QueryInt(req, "missing", 7))
}

func TestUserContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetUserID(req)
	assert.False(t, ok)

	id := uuid.New()
	req = WithUser(req, id, "a@example.com")
	got, ok := GetUserID(req)
	require.True(t, ok)
	assert.Equal(t, id, got)
	assert.Equal(t, "a@example.com", GetEmail(req))
}
