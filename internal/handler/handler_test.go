package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"toppharma/internal/config"
	"toppharma/internal/domain"
	"toppharma/internal/domain/models"
	"toppharma/internal/domain/services"
	"toppharma/internal/featureflags"
	"toppharma/internal/httputil"
	"toppharma/internal/service"
	"toppharma/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest))
}

func newFlagHandler(env string) *FeatureFlagHandler {
	cfg := &config.Config{Environment: env}
	h := NewFeatureFlagHandler(featureflags.NewRegistry(featureflags.Defaults(false, true)), cfg, discardLogger())
	h.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	return h
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestToggleFeatureFlag(t *testing.T) {
	h := newFlagHandler("dev")

	body := `{"flag":"useDbCompanies","value":true,"redirectUrl":"/companies?ff_usedbcompanies=false&page=2"}`
	req := httptest.NewRequest(http.MethodPost, "/api/toggle-feature-flag", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ToggleFeatureFlag(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://example.com/companies?ff_usedbcompanies=true&page=2", rec.Header().Get("Location"))

	c := findCookie(rec, "ff_usedbcompanies")
	require.NotNil(t, c)
	assert.Equal(t, "true", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, h.flags.Current()[featureflags.UseDBCompanies])
}

func TestToggleFeatureFlagAcceptsEveryFrontendFlag(t *testing.T) {
	flags := []string{
		"useDbCompanies", "useDbProducts", "useDbWebsites", "useDbTherapeuticAreas",
		"useDbCompanyFinancials", "useDbCompanyMetrics", "useDbCompanyStockData",
		"useLocalDatabase", "enableDataSourceToggle",
	}
	for _, flag := range flags {
		t.Run(flag, func(t *testing.T) {
			h := newFlagHandler("dev")
			body := `{"flag":"` + flag + `","value":true,"redirectUrl":"/admin/audit/feature-flags"}`
			rec := httptest.NewRecorder()
			h.ToggleFeatureFlag(rec, httptest.NewRequest(http.MethodPost, "/api/toggle-feature-flag", strings.NewReader(body)))

			require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
			param := "ff_" + strings.ToLower(flag)
			assert.Contains(t, rec.Header().Get("Location"), param+"=true")
			assert.NotNil(t, findCookie(rec, param))
		})
	}
}

func TestToggleFeatureFlagDefaultsRedirect(t *testing.T) {
	h := newFlagHandler("dev")

	req := httptest.NewRequest(http.MethodPost, "/api/toggle-feature-flag", strings.NewReader(`{"flag":"useDbProducts","value":0}`))
	rec := httptest.NewRecorder()
	h.ToggleFeatureFlag(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://example.com/admin/audit/feature-flags?ff_usedbproducts=false", rec.Header().Get("Location"))
}

func TestToggleFeatureFlagErrors(t *testing.T) {
	h := newFlagHandler("dev")

	rec := httptest.NewRecorder()
	h.ToggleFeatureFlag(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"flag":"nope","value":true}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid feature flag"}`, rec.Body.String())

	// Only the canonical camelCase name is accepted in the body
	rec = httptest.NewRecorder()
	h.ToggleFeatureFlag(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"flag":"usedbcompanies","value":true}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ToggleFeatureFlag(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"flag":`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to toggle feature flag"}`, rec.Body.String())
}

func TestResetFeatureFlags(t *testing.T) {
	h := newFlagHandler("dev")
	h.flags.Set(featureflags.UseDBWebsites, true)

	body := `{"redirectUrl":"/admin?ff_usedbwebsites=true&ff_enabledatasourcetoggle=false&tab=flags"}`
	rec := httptest.NewRecorder()
	h.ResetFeatureFlags(rec, httptest.NewRequest(http.MethodPost, "/api/reset-feature-flags", strings.NewReader(body)))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://example.com/admin?tab=flags", rec.Header().Get("Location"))
	assert.False(t, h.flags.Current()[featureflags.UseDBWebsites])

	cleared := 0
	for _, c := range rec.Result().Cookies() {
		if strings.HasPrefix(c.Name, featureflags.CookiePrefix) {
			cleared++
			assert.Equal(t, strings.ToLower(c.Name), c.Name)
			assert.True(t, c.Expires.Before(time.Now()))
		}
	}
	assert.Equal(t, 9, cleared)
}

func TestResetFeatureFlagsRefusedInProduction(t *testing.T) {
	h := newFlagHandler("prod")

	rec := httptest.NewRecorder()
	h.ResetFeatureFlags(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Feature flag resetting is not allowed in production"}`, rec.Body.String())
}

func TestGetFeatureFlags(t *testing.T) {
	h := newFlagHandler("dev")
	req := httptest.NewRequest(http.MethodGet, "/api/feature-flags?ff_usedbproducts=true", nil)
	req.AddCookie(&http.Cookie{Name: "ff_usedbcompanies", Value: "true"})
	rec := httptest.NewRecorder()
	h.GetFeatureFlags(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var flags map[string]bool
	decode(t, rec, &flags)
	assert.True(t, flags[featureflags.UseDBCompanies])
	assert.True(t, flags[featureflags.UseDBProducts])
	assert.True(t, flags[featureflags.EnableDataSourceToggle])
	assert.False(t, flags[featureflags.UseLocalDatabase])
}

func TestToggleSupabaseEnv(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		cookie    string
		referer   string
		wantValue string
		wantLoc   string
	}{
		{"no cookie uses env default", "dev", "", "", "true", "/"},
		{"local flips to remote", "dev", "true", "http://example.com/companies", "false", "http://example.com/companies"},
		{"remote flips to local in prod", "prod", "false", "", "true", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newFlagHandler(tt.env)
			req := httptest.NewRequest(http.MethodPost, "/api/toggle-supabase-env", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "use_local_database", Value: tt.cookie})
			}
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			rec := httptest.NewRecorder()
			h.ToggleSupabaseEnv(rec, req)

			require.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))

			c := findCookie(rec, "use_local_database")
			require.NotNil(t, c)
			assert.Equal(t, tt.wantValue, c.Value)
			assert.Equal(t, 30*24*60*60, c.MaxAge)
			assert.False(t, c.HttpOnly)
			assert.Equal(t, tt.env == "prod", c.Secure)
			assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		})
	}
}

type stubFeed struct {
	feed *services.CompanyFeed
	err  error
}

func (s stubFeed) Companies(context.Context) (*services.CompanyFeed, error) { return s.feed, s.err }

func newCatalog(t *testing.T) (services.CatalogService, *testutil.Companies) {
	t.Helper()
	companies := &testutil.Companies{}
	require.NoError(t, companies.Insert(context.Background(), &models.Company{Name: "Pfizer", Slug: "pfizer", Active: true}))
	products := &testutil.Products{}
	require.NoError(t, products.UpsertBySlug(context.Background(), &models.Product{Name: "Ibrance", Slug: "ibrance", CompanyID: 1, Stage: models.StageMarketed}))
	catalog := service.NewCatalogService(companies, products, &testutil.TherapeuticAreas{}, &testutil.Websites{}, &testutil.Phases{}, discardLogger())
	return catalog, companies
}

func TestListCompaniesFeedErrors(t *testing.T) {
	catalog, _ := newCatalog(t)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"missing key", services.ErrFMPNotConfigured, http.StatusInternalServerError, `{"error":"Missing FMP API key"}`},
		{"nothing found", &domain.NotFoundError{Message: "No companies found"}, http.StatusNotFound, `{"error":"No companies found"}`},
		{"upstream failure", assert.AnError, http.StatusInternalServerError, `{"error":"Failed to fetch companies"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCatalogHandler(catalog, stubFeed{err: tt.err}, discardLogger())
			rec := httptest.NewRecorder()
			h.ListCompanies(rec, httptest.NewRequest(http.MethodGet, "/api/companies", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestListCompaniesSources(t *testing.T) {
	catalog, _ := newCatalog(t)
	feed := &services.CompanyFeed{Companies: []models.Company{{Name: "Live"}}, Source: "fmp", RateLimit: &services.QuotaStatus{Remaining: 3}}
	h := NewCatalogHandler(catalog, stubFeed{feed: feed}, discardLogger())

	rec := httptest.NewRecorder()
	h.ListCompanies(rec, httptest.NewRequest(http.MethodGet, "/api/companies", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var live services.CompanyFeed
	decode(t, rec, &live)
	assert.Equal(t, "fmp", live.Source)
	require.NotNil(t, live.RateLimit)
	assert.Equal(t, 3, live.RateLimit.Remaining)

	rec = httptest.NewRecorder()
	h.ListCompanies(rec, httptest.NewRequest(http.MethodGet, "/api/companies?search=pfi", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed services.CompanyFeed
	decode(t, rec, &listed)
	assert.Equal(t, "database", listed.Source)
	require.Len(t, listed.Companies, 1)
	assert.Equal(t, "Pfizer", listed.Companies[0].Name)
}

func TestCatalogLookups(t *testing.T) {
	catalog, _ := newCatalog(t)
	h := NewCatalogHandler(catalog, stubFeed{}, discardLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/companies/{slug}", h.GetCompany)
	mux.HandleFunc("GET /api/companies/{slug}/products", h.ListCompanyProducts)
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/websites", h.ListWebsites)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/companies/pfizer/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var products []models.Product
	decode(t, rec, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Ibrance", products[0].Name)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/companies/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products?stage=phase9", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/websites", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/websites?company_id=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubDiagnostics struct{ report *services.ConnectionReport }

func (s stubDiagnostics) TestConnection(context.Context) *services.ConnectionReport { return s.report }

func TestTestDBConnectionStatus(t *testing.T) {
	ok := NewDiagnosticsHandler(stubDiagnostics{&services.ConnectionReport{Success: true}}, discardLogger())
	rec := httptest.NewRecorder()
	ok.TestDBConnection(rec, httptest.NewRequest(http.MethodGet, "/api/test-db-connection", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	failed := NewDiagnosticsHandler(stubDiagnostics{&services.ConnectionReport{Success: false, Message: "down"}}, discardLogger())
	rec = httptest.NewRecorder()
	failed.TestDBConnection(rec, httptest.NewRequest(http.MethodGet, "/api/test-db-connection", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]interface{}
	decode(t, rec, &body)
	assert.Equal(t, false, body["success"])
}

type fakeImporter struct {
	mu       sync.Mutex
	started  *models.ImportHistoryEntry
	executed chan context.Context
	entries  []models.ImportHistoryEntry
}

func (f *fakeImporter) Start(_ context.Context, cfg models.ImportConfig) (*models.ImportHistoryEntry, error) {
	if cfg.BatchSize < 0 {
		return nil, &domain.ValidationError{Message: "batchSize must be positive"}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = &models.ImportHistoryEntry{ID: uuid.New(), Status: models.ImportProcessing, Config: cfg}
	return f.started, nil
}

func (f *fakeImporter) Execute(ctx context.Context, entry *models.ImportHistoryEntry) error {
	entry.Status = models.ImportCompleted
	f.executed <- ctx
	return nil
}

func (f *fakeImporter) History(context.Context, int) ([]models.ImportHistoryEntry, error) {
	return f.entries, nil
}

func (f *fakeImporter) Get(_ context.Context, id uuid.UUID) (*models.ImportHistoryEntry, error) {
	for _, e := range f.entries {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, &domain.NotFoundError{Message: "import not found"}
}

func TestStartImportRunsInBackground(t *testing.T) {
	imp := &fakeImporter{executed: make(chan context.Context, 1)}
	h := NewImportHandler(imp, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/api/import-fmp-companies", strings.NewReader(`{"batchSize":3}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.StartImport(rec, req)
	cancel()

	require.Equal(t, http.StatusAccepted, rec.Code)
	var body struct {
		Success bool                      `json:"success"`
		Data    models.ImportHistoryEntry `json:"data"`
	}
	decode(t, rec, &body)
	assert.True(t, body.Success)
	assert.Equal(t, models.ImportProcessing, body.Data.Status)
	assert.Equal(t, 3, body.Data.Config.BatchSize)

	select {
	case runCtx := <-imp.executed:
		assert.NoError(t, runCtx.Err())
	case <-time.After(2 * time.Second):
		t.Fatal("import was not executed")
	}
}

func TestImportErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	NewImportHandler(nil, discardLogger()).StartImport(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Missing FMP API key"}`, rec.Body.String())

	h := NewImportHandler(&fakeImporter{executed: make(chan context.Context, 1)}, discardLogger())
	rec = httptest.NewRecorder()
	h.StartImport(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"batchSize":-1}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportHistory(t *testing.T) {
	entry := models.ImportHistoryEntry{ID: uuid.New(), Status: models.ImportCompleted, RecordsAdded: 4}
	h := NewImportHandler(&fakeImporter{entries: []models.ImportHistoryEntry{entry}}, discardLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/import-history", h.ListHistory)
	mux.HandleFunc("GET /api/import-history/{id}", h.GetHistory)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/import-history", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Success bool                        `json:"success"`
		Data    []models.ImportHistoryEntry `json:"data"`
	}
	decode(t, rec, &list)
	assert.True(t, list.Success)
	require.Len(t, list.Data, 1)
	assert.Equal(t, 4, list.Data[0].RecordsAdded)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/import-history/"+entry.ID.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/import-history/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/import-history/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func newUserMux(t *testing.T) (*http.ServeMux, *testutil.Notifications) {
	t.Helper()
	companies := &testutil.Companies{}
	require.NoError(t, companies.Insert(context.Background(), &models.Company{Name: "Pfizer", Slug: "pfizer"}))
	follows := &testutil.Follows{}
	notifications := &testutil.Notifications{}

	followSvc := service.NewFollowService(follows, companies, &testutil.Products{}, &testutil.TherapeuticAreas{}, &testutil.Websites{}, discardLogger())
	notifySvc := service.NewNotificationService(notifications, follows, discardLogger())
	prefsSvc := service.NewUserPreferencesService(&testutil.Preferences{}, discardLogger())

	fh := NewFollowHandler(followSvc, notifySvc, discardLogger())
	ph := NewUserPreferencesHandler(prefsSvc, discardLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/me/preferences", ph.GetPreferences)
	mux.HandleFunc("PATCH /api/users/me/preferences", ph.UpdatePreferences)
	mux.HandleFunc("GET /api/users/me/follows", fh.ListFollows)
	mux.HandleFunc("POST /api/users/me/follows", fh.Follow)
	mux.HandleFunc("DELETE /api/users/me/follows/{type}/{id}", fh.Unfollow)
	mux.HandleFunc("GET /api/users/me/notifications", fh.ListNotifications)
	mux.HandleFunc("POST /api/users/me/notifications/read-all", fh.MarkAllNotificationsRead)
	mux.HandleFunc("POST /api/users/me/notifications/{id}/read", fh.MarkNotificationRead)
	mux.HandleFunc("DELETE /api/users/me/notifications/{id}", fh.DeleteNotification)
	return mux, notifications
}

func asUser(req *http.Request, userID uuid.UUID) *http.Request {
	return httputil.WithUser(req, userID, "analyst@example.com")
}

func TestFollowLifecycle(t *testing.T) {
	mux, _ := newUserMux(t)
	user := uuid.New()

	follow := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/users/me/follows", strings.NewReader(`{"entity_type":"company","entity_id":"pfizer"}`))
		mux.ServeHTTP(rec, asUser(req, user))
		return rec
	}

	rec := follow()
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.UserFollowedEntity
	decode(t, rec, &created)
	assert.Equal(t, "1", created.EntityID)

	rec = follow()
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/users/me/follows", nil), user))
	var list []models.UserFollowedEntity
	decode(t, rec, &list)
	assert.Len(t, list, 1)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodDelete, "/api/users/me/follows/company/pfizer", nil), user))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodDelete, "/api/users/me/follows/company/pfizer", nil), user))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/users/me/follows", strings.NewReader(`{"entity_type":"planet","entity_id":"x"}`))
	mux.ServeHTTP(rec, asUser(req, user))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserRoutesRequireUser(t *testing.T) {
	mux, _ := newUserMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/me/preferences", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotificationsEndpoints(t *testing.T) {
	mux, notifications := newUserMux(t)
	user := uuid.New()
	first, second := uuid.New(), uuid.New()
	notifications.Rows = []models.UserNotification{
		{ID: first, UserID: user, Type: models.NotificationCompany, Title: "Pfizer updated"},
		{ID: second, UserID: user, Type: models.NotificationProduct, Title: "Ibrance approved"},
		{ID: uuid.New(), UserID: uuid.New(), Title: "someone else"},
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/users/me/notifications?unread=true", nil), user))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Notifications []models.UserNotification `json:"notifications"`
		UnreadCount   int64                     `json:"unread_count"`
	}
	decode(t, rec, &body)
	assert.Len(t, body.Notifications, 2)
	assert.Equal(t, int64(2), body.UnreadCount)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodPost, "/api/users/me/notifications/"+first.String()+"/read", nil), user))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodPost, "/api/users/me/notifications/read-all", nil), user))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":1}`, rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodDelete, "/api/users/me/notifications/"+second.String(), nil), user))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodDelete, "/api/users/me/notifications/bogus", nil), user))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreferencesEndpoints(t *testing.T) {
	mux, _ := newUserMux(t)
	user := uuid.New()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/users/me/preferences", strings.NewReader(`{"display":{"theme":"dark","density":"compact","font_size":"small"}}`))
	mux.ServeHTTP(rec, asUser(req, user))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/users/me/preferences", nil), user))
	require.Equal(t, http.StatusOK, rec.Code)
	var prefs models.UserPreferences
	decode(t, rec, &prefs)
	display, err := prefs.GetDisplay()
	require.NoError(t, err)
	assert.Equal(t, "dark", display.Theme)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/api/users/me/preferences", strings.NewReader(`{"display":{"theme":"neon"}}`))
	mux.ServeHTTP(rec, asUser(req, user))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
