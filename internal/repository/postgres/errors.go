package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"toppharma/internal/domain"
)

// SQLSTATE codes the repositories translate
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// record names the row an operation touched, e.g. {"company", "pfizer"}.
type record struct {
	kind string
	key  string
}

// translate maps a pgx error onto the domain error types: no rows becomes
// NotFoundError, a unique violation ConflictError and a foreign key
// violation ValidationError. Anything else is wrapped with op.
func translate(err error, op string, rec record) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.NotFoundError{Message: fmt.Sprintf("%s not found: %s", rec.kind, rec.key)}
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		msg := fmt.Sprintf("%s '%s' already exists", rec.kind, rec.key)
		if col := constraintColumn(pgErr, "_key"); col != "" {
			msg = fmt.Sprintf("%s with this %s already exists: %s", rec.kind, col, rec.key)
		}
		return &domain.ConflictError{Message: msg, ResourceType: rec.kind, ResourceID: rec.key}
	case pgForeignKeyViolation:
		ref := "a missing record"
		if col := constraintColumn(pgErr, "_fkey"); col != "" {
			ref = "an unknown " + strings.TrimSuffix(col, " id")
		}
		return &domain.ValidationError{Message: fmt.Sprintf("%s %s references %s", rec.kind, rec.key, ref)}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// constraintColumn recovers the column from a default constraint name such
// as companies_stock_symbol_key. Custom names yield "".
func constraintColumn(pgErr *pgconn.PgError, suffix string) string {
	name := pgErr.ConstraintName
	prefix := pgErr.TableName + "_"
	if pgErr.TableName == "" || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return ""
	}
	col := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
	return strings.ReplaceAll(col, "_", " ")
}

// IsPgDuplicateError reports a unique constraint violation
func IsPgDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// IsPgNoRowsError reports an empty single-row result
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
