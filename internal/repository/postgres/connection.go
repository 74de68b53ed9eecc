package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"toppharma/internal/domain/repositories"
)

// PoolProvider resolves the pool for a request. *database.Targets picks the
// local or remote database from the context; StaticPool always returns one.
type PoolProvider interface {
	Pool(ctx context.Context) (*pgxpool.Pool, error)
}

// StaticPool is a PoolProvider over a single pool, used by CLI commands.
type StaticPool struct {
	P *pgxpool.Pool
}

func (s StaticPool) Pool(context.Context) (*pgxpool.Pool, error) {
	return s.P, nil
}

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pools  PoolProvider
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds table names, optionally prefixed (e.g. "test_" for
// integration runs against a shared database)
type TableNames struct {
	Companies         string
	Products          string
	TherapeuticAreas  string
	Websites          string
	DevelopmentPhases string
	UserPreferences   string
	UserFollows       string
	UserNotifications string
	ImportHistory     string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Companies:         fmt.Sprintf("%scompanies", prefix),
		Products:          fmt.Sprintf("%sproducts", prefix),
		TherapeuticAreas:  fmt.Sprintf("%stherapeutic_areas", prefix),
		Websites:          fmt.Sprintf("%swebsites", prefix),
		DevelopmentPhases: fmt.Sprintf("%sdevelopment_phases", prefix),
		UserPreferences:   fmt.Sprintf("%suser_preferences", prefix),
		UserFollows:       fmt.Sprintf("%suser_followed_entities", prefix),
		UserNotifications: fmt.Sprintf("%suser_notifications", prefix),
		ImportHistory:     fmt.Sprintf("%simport_history", prefix),
	}
}

// All returns every table in dependency order (parents first).
func (t *TableNames) All() []string {
	return []string{
		t.TherapeuticAreas,
		t.DevelopmentPhases,
		t.Companies,
		t.Products,
		t.Websites,
		t.UserPreferences,
		t.UserFollows,
		t.UserNotifications,
		t.ImportHistory,
	}
}

// CreateConnectionPool creates a new pgx connection pool with automatic PgBouncer compatibility.
//
// Supabase's transaction pooler (port 6543) does not support prepared
// statements, so on that port the pool switches to QueryExecModeCacheDescribe.
// It keeps the extended protocol (needed to encode map[string]interface{} as
// JSONB) while caching only statement descriptions. An explicit
// default_query_exec_mode in the connection string takes precedence.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 2

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the pool the provider resolves for the context.
func GetExecutor(ctx context.Context, pools PoolProvider) (repositories.DBTX, error) {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx, nil
	}
	pool, err := pools.Pool(ctx)
	if err != nil {
		return nil, err
	}
	return pool, nil
}
