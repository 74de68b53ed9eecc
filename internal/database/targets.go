package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"toppharma/internal/config"
)

// Target names the database a request talks to.
type Target string

const (
	TargetLocal  Target = "local"
	TargetRemote Target = "remote"
)

// ConnectionType describes what a client is actually connected to. A client
// built from missing or placeholder credentials reports ConnectionMock.
type ConnectionType string

const (
	ConnectionLocal  ConnectionType = "local"
	ConnectionRemote ConnectionType = "remote"
	ConnectionMock   ConnectionType = "mock"
)

// ErrNotConfigured is returned by a target whose credentials are missing.
var ErrNotConfigured = errors.New("invalid database credentials")

// Opener creates a connection pool for a database URL.
type Opener func(ctx context.Context, databaseURL string) (*pgxpool.Pool, error)

type targetKey struct{}

// WithTarget records the database target in the context.
func WithTarget(ctx context.Context, target Target) context.Context {
	return context.WithValue(ctx, targetKey{}, target)
}

// TargetFrom returns the target recorded in the context.
func TargetFrom(ctx context.Context) (Target, bool) {
	t, ok := ctx.Value(targetKey{}).(Target)
	return t, ok
}

// Targets owns one lazily opened pool per database target. It is always
// constructed, even with no credentials at all; a target without a valid URL
// logs an error once and then fails every Pool call with ErrNotConfigured.
type Targets struct {
	urls          map[Target]string
	defaultTarget Target
	open          Opener
	logger        *slog.Logger

	mu    sync.Mutex
	pools map[Target]*pgxpool.Pool
}

// NewTargets builds the local/remote pool set from configuration.
func NewTargets(cfg *config.Config, open Opener, logger *slog.Logger) *Targets {
	t := &Targets{
		urls: map[Target]string{
			TargetLocal:  cfg.LocalDBURL,
			TargetRemote: cfg.SupabaseDBURL,
		},
		defaultTarget: TargetRemote,
		open:          open,
		logger:        logger,
		pools:         make(map[Target]*pgxpool.Pool),
	}
	if cfg.UseLocalDatabase {
		t.defaultTarget = TargetLocal
	}

	// The URL itself is never logged; it carries the password
	for target, dbURL := range t.urls {
		switch {
		case dbURL == "":
			logger.Error("database URL not configured, queries will fail", "target", target)
		case !IsValidDatabaseURL(dbURL):
			logger.Error("invalid database URL, queries will fail", "target", target)
		}
	}

	return t
}

// Default returns the target used when a context carries none.
func (t *Targets) Default() Target {
	return t.defaultTarget
}

// Resolve returns the target for the context.
func (t *Targets) Resolve(ctx context.Context) Target {
	if target, ok := TargetFrom(ctx); ok {
		return target
	}
	return t.defaultTarget
}

// ConnectionType reports local, remote, or mock for the context's target.
func (t *Targets) ConnectionType(ctx context.Context) ConnectionType {
	target := t.Resolve(ctx)
	if !IsValidDatabaseURL(t.urls[target]) {
		return ConnectionMock
	}
	if target == TargetLocal {
		return ConnectionLocal
	}
	return ConnectionRemote
}

// Pool returns the pool for the context's target, opening it on first use.
func (t *Targets) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	target := t.Resolve(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()

	if pool, ok := t.pools[target]; ok {
		return pool, nil
	}

	dbURL := t.urls[target]
	if !IsValidDatabaseURL(dbURL) {
		return nil, fmt.Errorf("%s database: %w", target, ErrNotConfigured)
	}

	pool, err := t.open(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", target, err)
	}

	t.logger.Info("database connected", "target", target)
	t.pools[target] = pool
	return pool, nil
}

// Close closes every opened pool.
func (t *Targets) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for target, pool := range t.pools {
		pool.Close()
		delete(t.pools, target)
	}
}

// IsValidDatabaseURL rejects empty URLs, unparsable URLs and the
// placeholder values shipped in example .env files.
func IsValidDatabaseURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	lower := strings.ToLower(raw)
	return !strings.Contains(lower, "your-supabase-project") && !strings.Contains(lower, "your_password")
}
