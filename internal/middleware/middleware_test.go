package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"toppharma/internal/database"
	"toppharma/internal/domain"
	"toppharma/internal/domain/models"
	"toppharma/internal/httputil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubVerifier struct {
	tokens map[string]*models.SupabaseClaims
}

func (s stubVerifier) VerifyToken(token string) (*models.SupabaseClaims, error) {
	if c, ok := s.tokens[token]; ok {
		return c, nil
	}
	return nil, domain.ErrUnauthorized
}

func (stubVerifier) Close() error { return nil }

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	verifier := stubVerifier{tokens: map[string]*models.SupabaseClaims{
		"good": {RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()}, Email: "a@b.c", Role: "authenticated"},
		"odd":  {RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid"}, Role: "authenticated"},
	}}

	var seen uuid.UUID
	var authed bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, authed = httputil.GetUserID(r)
		w.WriteHeader(http.StatusNoContent)
	})
	h := AuthMiddleware(verifier, discardLogger())(next)

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
		wantAuthed bool
	}{
		{"public without token", "/api/companies", "", http.StatusNoContent, false},
		{"public with bad token", "/api/companies", "bad", http.StatusNoContent, false},
		{"public with good token", "/api/companies", "good", http.StatusNoContent, true},
		{"user route without token", "/api/users/me/follows", "", http.StatusUnauthorized, false},
		{"user route with bad token", "/api/users/me/follows", "bad", http.StatusUnauthorized, false},
		{"user route with good token", "/api/users/me/follows", "good", http.StatusNoContent, true},
		{"non-uuid subject", "/api/users/me/follows", "odd", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen, authed = uuid.Nil, false
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantAuthed, authed)
			if tt.wantAuthed {
				assert.Equal(t, userID, seen)
			}
		})
	}
}

func TestAuthMiddlewareWithoutVerifier(t *testing.T) {
	h := AuthMiddleware(nil, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users/me/preferences", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDatabaseTarget(t *testing.T) {
	var got database.Target
	var ok bool
	h := DatabaseTarget(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = database.TargetFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, ok)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "use_local_database", Value: "true"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, ok)
	assert.Equal(t, database.TargetLocal, got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "use_local_database", Value: "false"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, database.TargetRemote, got)
}

func TestRecoveryAndRequestLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	h := RequestLogger(discardLogger())(Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	req.AddCookie(&http.Cookie{Name: "use_local_database", Value: "true"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["detail"])
	assert.Equal(t, "req-1", body["request_id"])

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "panic recovered", entry["msg"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "local", entry["db_target"])
	assert.Equal(t, false, entry["response_started"])
}

func TestRecoveryAfterResponseStarted(t *testing.T) {
	h := Recovery(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"companies":[`))
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/companies", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"companies":[`, rec.Body.String())
}

func TestRecoveryReraisesAbortHandler(t *testing.T) {
	h := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
