package database

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Row is a loosely typed result record keyed by column name.
type Row map[string]any

// Querier runs ad-hoc SQL and returns loosely typed rows.
type Querier interface {
	Query(ctx context.Context, sql string) ([]Row, error)
}

// PoolQuerier runs ad-hoc SQL over a connection pool.
type PoolQuerier struct {
	Pool *pgxpool.Pool
}

func (q *PoolQuerier) Query(ctx context.Context, sql string) ([]Row, error) {
	rows, err := q.Pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return CollectRows(rows)
}

// CollectRows converts pgx rows into column-keyed records.
func CollectRows(rows pgx.Rows) ([]Row, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := []Row{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(Row, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}

// CommandRunner executes an external command and returns stdout/stderr.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// DockerQuerier runs SQL through psql inside the database container. It
// exists for hosts that cannot reach the container's port directly.
type DockerQuerier struct {
	Container string
	User      string
	Database  string
	Run       CommandRunner
}

// NewDockerQuerier returns a querier using os/exec.
func NewDockerQuerier(container, user, dbName string) *DockerQuerier {
	return &DockerQuerier{Container: container, User: user, Database: dbName, Run: ExecRunner}
}

var selectColumns = regexp.MustCompile(`(?is)^\s*SELECT\s+(.*?)\s+FROM\s`)

// Query runs psql in unaligned tuples-only mode (-t -A) and splits the
// pipe-delimited output. Column names come from the SELECT list; for
// SELECT * or anything unparsable rows are keyed by position ("0", "1", ...).
// A leading "select count" query yields a single {"count": n} row.
func (q *DockerQuerier) Query(ctx context.Context, sql string) ([]Row, error) {
	args := []string{
		"exec", q.Container,
		"psql", "-U", q.User, "-d", q.Database,
		"-t", "-A", "-c", sql,
	}

	stdout, stderr, err := q.Run(ctx, "docker", args...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) || len(stderr) > 0 {
			return nil, fmt.Errorf("docker psql: %w: %s", err, strings.TrimSpace(string(stderr)))
		}
		return nil, fmt.Errorf("docker psql: %w", err)
	}

	return ParsePsqlOutput(sql, string(stdout)), nil
}

// ParsePsqlOutput turns `psql -t -A` output into rows.
func ParsePsqlOutput(sql, output string) []Row {
	output = strings.TrimSpace(output)

	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(sql)), "select count") {
		if n, err := strconv.ParseInt(output, 10, 64); err == nil {
			return []Row{{"count": n}}
		}
	}

	columns := selectedColumns(sql)
	rows := []Row{}
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		values := strings.Split(line, "|")
		row := make(Row, len(values))
		if len(columns) == 0 {
			for i, v := range values {
				row[strconv.Itoa(i)] = v
			}
		} else {
			for i, col := range columns {
				if i < len(values) {
					row[col] = values[i]
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func selectedColumns(sql string) []string {
	m := selectColumns.FindStringSubmatch(sql)
	if m == nil {
		return nil
	}
	list := strings.TrimSpace(m[1])
	if list == "*" {
		return nil
	}
	var columns []string
	for _, col := range strings.Split(list, ",") {
		columns = append(columns, strings.TrimSpace(col))
	}
	return columns
}
