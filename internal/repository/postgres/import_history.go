package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"toppharma/internal/domain"
	"toppharma/internal/domain/models"
	"toppharma/internal/domain/repositories"
)

const importHistoryColumns = `id, data_source, start_time, end_time, status, records_found, records_added,
	records_updated, records_skipped, api_calls_made, error_message, config, imported_industries`

// PostgresImportHistoryRepository implements repositories.ImportHistoryRepository.
// config and imported_industries are JSONB columns.
type PostgresImportHistoryRepository struct {
	pools  PoolProvider
	tables *TableNames
	logger *slog.Logger
}

func NewImportHistoryRepository(config *RepositoryConfig) repositories.ImportHistoryRepository {
	return &PostgresImportHistoryRepository{
		pools:  config.Pools,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanImportHistory(row pgx.Row, e *models.ImportHistoryEntry) error {
	return row.Scan(&e.ID, &e.DataSource, &e.StartTime, &e.EndTime, &e.Status, &e.RecordsFound,
		&e.RecordsAdded, &e.RecordsUpdated, &e.RecordsSkipped, &e.APICallsMade, &e.ErrorMessage,
		&e.Config, &e.ImportedIndustries)
}

func (r *PostgresImportHistoryRepository) Create(ctx context.Context, e *models.ImportHistoryEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, r.tables.ImportHistory, importHistoryColumns)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return err
	}

	if _, err := executor.Exec(ctx, query,
		e.ID, e.DataSource, e.StartTime, e.EndTime, e.Status, e.RecordsFound, e.RecordsAdded,
		e.RecordsUpdated, e.RecordsSkipped, e.APICallsMade, e.ErrorMessage, e.Config, e.ImportedIndustries,
	); err != nil {
		return fmt.Errorf("create import history: %w", err)
	}
	return nil
}

func (r *PostgresImportHistoryRepository) Update(ctx context.Context, e *models.ImportHistoryEntry) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			end_time = $2, status = $3, records_found = $4, records_added = $5,
			records_updated = $6, records_skipped = $7, api_calls_made = $8,
			error_message = $9, imported_industries = $10
		WHERE id = $1
	`, r.tables.ImportHistory)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return err
	}

	tag, err := executor.Exec(ctx, query,
		e.ID, e.EndTime, e.Status, e.RecordsFound, e.RecordsAdded, e.RecordsUpdated,
		e.RecordsSkipped, e.APICallsMade, e.ErrorMessage, e.ImportedIndustries,
	)
	if err != nil {
		return fmt.Errorf("update import history: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("import run not found: %s", e.ID)}
	}
	return nil
}

func (r *PostgresImportHistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ImportHistoryEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", importHistoryColumns, r.tables.ImportHistory)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return nil, err
	}

	var e models.ImportHistoryEntry
	if err := scanImportHistory(executor.QueryRow(ctx, query, id), &e); err != nil {
		return nil, translate(err, "get import history", record{"import run", id.String()})
	}
	return &e, nil
}

// List returns the most recent runs first
func (r *PostgresImportHistoryRepository) List(ctx context.Context, limit int) ([]models.ImportHistoryEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		ORDER BY start_time DESC
		LIMIT $1
	`, importHistoryColumns, r.tables.ImportHistory)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return nil, err
	}
	rows, err := executor.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list import history: %w", err)
	}
	defer rows.Close()

	entries := []models.ImportHistoryEntry{}
	for rows.Next() {
		var e models.ImportHistoryEntry
		if err := scanImportHistory(rows, &e); err != nil {
			return nil, fmt.Errorf("scan import history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
