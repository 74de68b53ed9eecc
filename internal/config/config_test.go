package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("USE_LOCAL_DATABASE", "")
	t.Setenv("ASSETS_BASE_URL", "")

	cfg := Load()

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/assets", cfg.AssetsBaseURL)
	assert.Empty(t, cfg.SupabaseJWKSURL, "no JWKS URL without a Supabase URL")
	assert.False(t, cfg.UseLocalDatabase)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_JWKSAndLocalToggle(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co")
	t.Setenv("USE_LOCAL_DATABASE", "true")
	t.Setenv("ENVIRONMENT", "prod")

	cfg := Load()

	assert.Equal(t, "https://abc.supabase.co/auth/v1/.well-known/jwks.json", cfg.SupabaseJWKSURL)
	assert.True(t, cfg.UseLocalDatabase)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_InvalidBoolFallsBack(t *testing.T) {
	t.Setenv("USE_LOCAL_DATABASE", "yes please")
	assert.False(t, Load().UseLocalDatabase)
}

func TestLoad_SECRateLimit(t *testing.T) {
	t.Setenv("SEC_EDGAR_RATE_LIMIT", "")
	assert.Equal(t, 10, Load().SECRateLimit)

	t.Setenv("SEC_EDGAR_RATE_LIMIT", "4")
	assert.Equal(t, 4, Load().SECRateLimit)

	t.Setenv("SEC_EDGAR_RATE_LIMIT", "-1")
	assert.Equal(t, 10, Load().SECRateLimit)
}

func TestConfig_Target(t *testing.T) {
	cfg := &Config{
		SupabaseURL:          "https://remote.example",
		SupabaseAnonKey:      "remote-anon",
		SupabaseDBURL:        "postgres://remote",
		LocalSupabaseURL:     "http://127.0.0.1:54321",
		LocalSupabaseAnonKey: "local-anon",
		LocalDBURL:           "postgres://local",
	}

	local := cfg.Target(true)
	assert.Equal(t, "local", local.Name)
	assert.Equal(t, "local-anon", local.AnonKey)
	assert.Equal(t, "postgres://local", local.DBURL)

	remote := cfg.Target(false)
	assert.Equal(t, "remote", remote.Name)
	assert.Equal(t, "https://remote.example", remote.URL)
	assert.Equal(t, "postgres://remote", remote.DBURL)
}

func TestSetupLogFile_RemovesOldest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"server-2024-01-01T00-00-00.log",
		"server-2024-01-02T00-00-00.log",
		"server-2024-01-03T00-00-00.log",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	f, err := SetupLogFile(dir, "server", 2)
	require.NoError(t, err)
	defer f.Close()

	files, err := filepath.Glob(filepath.Join(dir, "server-*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.NotContains(t, files, filepath.Join(dir, "server-2024-01-01T00-00-00.log"))
}
