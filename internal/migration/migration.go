// Package migration creates, lists and applies SQL migration files.
package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"toppharma/internal/domain/repositories"
)

// ErrExists is returned when Create would overwrite a migration.
var ErrExists = errors.New("migration file already exists")

var whitespace = regexp.MustCompile(`\s+`)

// basicTemplate leaves transaction control to the runner; direct runs wrap
// the whole file in one transaction.
const basicTemplate = `-- Migration: %s
-- Created at: %s

-- Write your migration SQL here

-- Rollback SQL
-- Add your rollback SQL here
`

// managesTransaction matches a script that opens its own transaction.
var managesTransaction = regexp.MustCompile(`(?im)^\s*(BEGIN|START\s+TRANSACTION)\s*;`)

// TemplatePath is the template Create uses for a migrations directory.
func TemplatePath(dir string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(dir)), "templates", "migration_template.sql")
}

// FormatName lowercases a migration name and replaces whitespace runs with
// underscores.
func FormatName(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
}

// Create writes <dir>/YYYYMMDD_<name>.sql from the template next to the
// migrations directory, or from a basic template when there is none.
func Create(dir, name string, now time.Time, author string) (string, error) {
	formatted := FormatName(name)
	if formatted == "" {
		return "", errors.New("migration name is required")
	}
	if author == "" {
		author = "database admin"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create migrations dir: %w", err)
	}

	path := filepath.Join(dir, now.Format("20060102")+"_"+formatted+".sql")
	created := now.UTC().Format("2006-01-02T15:04:05.000Z")
	var body string
	tmpl, err := os.ReadFile(TemplatePath(dir))
	switch {
	case err == nil:
		body = strings.NewReplacer(
			"{{MIGRATION_NAME}}", formatted,
			"{{MIGRATION_DATE}}", created,
			"{{AUTHOR}}", author,
		).Replace(string(tmpl))
	case errors.Is(err, fs.ErrNotExist):
		body = fmt.Sprintf(basicTemplate, formatted, created)
	default:
		return "", fmt.Errorf("read template: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrExists, path)
		}
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(body); err != nil {
		return "", err
	}
	return path, nil
}

// File is a migration on disk.
type File struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// List returns the .sql files of dir sorted by name.
func List(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("migrations directory: %w", err)
	}

	files := []File{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".sql" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		files = append(files, File{Name: e.Name(), Path: filepath.Join(dir, e.Name()), Size: info.Size()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// RPCCaller calls Postgres functions through the REST API.
type RPCCaller interface {
	RPC(ctx context.Context, fn string, args any) (json.RawMessage, error)
}

// ScriptExecutor runs a SQL script directly against the database.
type ScriptExecutor interface {
	ExecScript(ctx context.Context, sql string) error
}

// TxExecutor runs scripts inside a single transaction. A script that
// issues its own BEGIN runs on Direct as written instead, since its COMMIT
// would end the wrapping transaction early.
type TxExecutor struct {
	Tx     repositories.TransactionManager
	Direct repositories.DBTX
}

func (e TxExecutor) ExecScript(ctx context.Context, sql string) error {
	if managesTransaction.MatchString(sql) {
		if e.Direct == nil {
			return errors.New("script manages its own transaction but no direct connection is configured")
		}
		_, err := e.Direct.Exec(ctx, sql)
		return err
	}
	return e.Tx.ExecTx(ctx, func(ctx context.Context) error {
		tx := repositories.GetTx(ctx)
		if tx == nil {
			return errors.New("no transaction in context")
		}
		_, err := tx.Exec(ctx, sql)
		return err
	})
}

// Method names how a migration was applied.
type Method string

const (
	MethodExecSQL Method = "exec_sql"
	MethodPgQuery Method = "pg_query"
	MethodDirect  Method = "direct"
)

// Result describes an applied migration.
type Result struct {
	File   string `json:"file"`
	Method Method `json:"method"`
}

// Runner applies migration files.
type Runner struct {
	rpc    RPCCaller
	direct ScriptExecutor
	logger *slog.Logger
}

// NewRunner creates a runner. Either rpc or direct may be nil when that
// path is not configured.
func NewRunner(rpc RPCCaller, direct ScriptExecutor, logger *slog.Logger) *Runner {
	return &Runner{rpc: rpc, direct: direct, logger: logger}
}

// Run applies one file. Through the REST API it calls exec_sql and, if
// that fails, pg_query once. With direct it runs the file in a transaction.
func (r *Runner) Run(ctx context.Context, file string, direct bool) (*Result, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read migration: %w", err)
	}
	sql := string(raw)
	res := &Result{File: filepath.Base(file)}

	if direct {
		if r.direct == nil {
			return nil, errors.New("direct database connection not configured")
		}
		if err := r.direct.ExecScript(ctx, sql); err != nil {
			return nil, fmt.Errorf("apply %s: %w", res.File, err)
		}
		res.Method = MethodDirect
		r.logger.Info("migration applied", "file", res.File, "method", res.Method)
		return res, nil
	}

	if r.rpc == nil {
		return nil, errors.New("supabase credentials not configured")
	}

	if _, err := r.rpc.RPC(ctx, string(MethodExecSQL), map[string]string{"sql": sql}); err != nil {
		r.logger.Warn("exec_sql failed, trying pg_query", "file", res.File, "error", err)
		if _, err2 := r.rpc.RPC(ctx, string(MethodPgQuery), map[string]string{"query": sql}); err2 != nil {
			return nil, fmt.Errorf("apply %s: exec_sql: %v; pg_query: %w", res.File, err, err2)
		}
		res.Method = MethodPgQuery
	} else {
		res.Method = MethodExecSQL
	}

	r.logger.Info("migration applied", "file", res.File, "method", res.Method)
	return res, nil
}
