package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"toppharma/internal/config"
	"toppharma/internal/database"
	"toppharma/internal/domain/services"
	"toppharma/internal/supabase"
)

// RowCounter counts rows through the REST API.
type RowCounter interface {
	Count(ctx context.Context, table string) (int64, error)
}

// RESTFactory builds a REST client for a project URL and key.
type RESTFactory func(url, key string) (RowCounter, error)

// QuerierFactory returns a direct SQL querier for the context's target.
type QuerierFactory func(ctx context.Context) (database.Querier, error)

// SupabaseREST is the production RESTFactory.
func SupabaseREST(url, key string) (RowCounter, error) {
	return supabase.NewClient(url, key)
}

// PoolQueriers is the production QuerierFactory over database.Targets.
func PoolQueriers(targets *database.Targets) QuerierFactory {
	return func(ctx context.Context) (database.Querier, error) {
		pool, err := targets.Pool(ctx)
		if err != nil {
			return nil, err
		}
		return &database.PoolQuerier{Pool: pool}, nil
	}
}

const schemaTablesQuery = `SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename LIMIT 20`

// DiagnosticsService implements services.DiagnosticsService
type DiagnosticsService struct {
	cfg     *config.Config
	targets *database.Targets
	rest    RESTFactory
	querier QuerierFactory
	logger  *slog.Logger
	timeout time.Duration
}

// NewDiagnosticsService creates the connection tester
func NewDiagnosticsService(cfg *config.Config, targets *database.Targets, rest RESTFactory, querier QuerierFactory, logger *slog.Logger) services.DiagnosticsService {
	return &DiagnosticsService{
		cfg:     cfg,
		targets: targets,
		rest:    rest,
		querier: querier,
		logger:  logger,
		timeout: 10 * time.Second,
	}
}

// TestConnection runs the anon REST, service REST, and direct database
// checks concurrently. The report succeeds when any companies count succeeds.
func (s *DiagnosticsService) TestConnection(ctx context.Context) *services.ConnectionReport {
	target := s.targets.Resolve(ctx)
	creds := s.cfg.Target(target == database.TargetLocal)

	report := &services.ConnectionReport{
		Timestamp:      time.Now().UTC(),
		Target:         string(target),
		ConnectionType: string(s.targets.ConnectionType(ctx)),
		Credentials:    credentialStatus(creds),
		Schema:         services.SchemaStatus{Tables: []string{}},
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Each check records its own failure, so the group never returns an error
	var g errgroup.Group
	g.Go(func() error {
		report.Companies = s.countVia(ctx, creds.URL, creds.AnonKey)
		return nil
	})
	g.Go(func() error {
		report.Admin = s.countVia(ctx, creds.URL, creds.ServiceRoleKey)
		return nil
	})
	g.Go(func() error {
		report.Database, report.Schema = s.checkDirect(ctx)
		return nil
	})
	_ = g.Wait()

	report.Success = report.Companies.Success || report.Admin.Success || report.Database.Success
	if report.Success {
		report.Message = "Database connection successful"
	} else {
		report.Message = "Database connection failed with both regular and admin clients"
		s.logger.Warn("database connection test failed",
			"target", report.Target,
			"anon_error", report.Companies.Error,
			"admin_error", report.Admin.Error,
			"direct_error", report.Database.Error,
		)
	}
	return report
}

func (s *DiagnosticsService) countVia(ctx context.Context, url, key string) services.CheckStatus {
	if url == "" || key == "" {
		return services.CheckStatus{Error: "credentials not provided"}
	}
	client, err := s.rest(url, key)
	if err != nil {
		return services.CheckStatus{Tested: true, Error: err.Error()}
	}
	n, err := client.Count(ctx, "companies")
	if err != nil {
		return services.CheckStatus{Tested: true, Error: err.Error()}
	}
	return services.CheckStatus{Success: true, Tested: true, Count: n}
}

func (s *DiagnosticsService) checkDirect(ctx context.Context) (services.CheckStatus, services.SchemaStatus) {
	schema := services.SchemaStatus{Tables: []string{}}

	q, err := s.querier(ctx)
	if err != nil {
		schema.Error = err.Error()
		return services.CheckStatus{Error: err.Error()}, schema
	}

	rows, err := q.Query(ctx, "SELECT COUNT(*) AS count FROM companies")
	if err != nil {
		schema.Error = err.Error()
		return services.CheckStatus{Tested: true, Error: err.Error()}, schema
	}
	status := services.CheckStatus{Success: true, Tested: true}
	if len(rows) > 0 {
		status.Count = toInt64(rows[0]["count"])
	}

	tables, err := q.Query(ctx, schemaTablesQuery)
	if err != nil {
		schema.Error = err.Error()
		return status, schema
	}
	for _, row := range tables {
		if name, ok := row["tablename"]; ok {
			schema.Tables = append(schema.Tables, fmt.Sprint(name))
		}
	}
	schema.Success = true
	return status, schema
}

func credentialStatus(t config.DatabaseTarget) services.CredentialStatus {
	var c services.CredentialStatus
	c.URL.Provided = t.URL != ""
	if len(t.URL) > 8 {
		sample := t.URL[:8] + "..."
		c.URL.Sample = &sample
	} else if t.URL != "" {
		sample := t.URL + "..."
		c.URL.Sample = &sample
	}
	c.Key.Provided = t.AnonKey != ""
	c.Key.Length = len(t.AnonKey)
	c.ServiceRole.Provided = t.ServiceRoleKey != ""
	c.ServiceRole.Length = len(t.ServiceRoleKey)
	return c
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
