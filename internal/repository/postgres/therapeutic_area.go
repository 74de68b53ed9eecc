package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"toppharma/internal/domain/models"
	"toppharma/internal/domain/repositories"
)

const therapeuticAreaColumns = `id, name, slug, description, icon, created_at, updated_at`

// PostgresTherapeuticAreaRepository implements repositories.TherapeuticAreaRepository
type PostgresTherapeuticAreaRepository struct {
	pools  PoolProvider
	tables *TableNames
	logger *slog.Logger
}

func NewTherapeuticAreaRepository(config *RepositoryConfig) repositories.TherapeuticAreaRepository {
	return &PostgresTherapeuticAreaRepository{
		pools:  config.Pools,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanTherapeuticArea(row pgx.Row, a *models.TherapeuticArea) error {
	return row.Scan(&a.ID, &a.Name, &a.Slug, &a.Description, &a.Icon, &a.CreatedAt, &a.UpdatedAt)
}

func (r *PostgresTherapeuticAreaRepository) List(ctx context.Context) ([]models.TherapeuticArea, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY name", therapeuticAreaColumns, r.tables.TherapeuticAreas)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return nil, err
	}
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list therapeutic areas: %w", err)
	}
	defer rows.Close()

	areas := []models.TherapeuticArea{}
	for rows.Next() {
		var a models.TherapeuticArea
		if err := scanTherapeuticArea(rows, &a); err != nil {
			return nil, fmt.Errorf("scan therapeutic area: %w", err)
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

func (r *PostgresTherapeuticAreaRepository) getOne(ctx context.Context, column, value string) (*models.TherapeuticArea, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", therapeuticAreaColumns, r.tables.TherapeuticAreas, column)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return nil, err
	}

	var a models.TherapeuticArea
	if err := scanTherapeuticArea(executor.QueryRow(ctx, query, value), &a); err != nil {
		return nil, translate(err, "get therapeutic area", record{"therapeutic area", value})
	}
	return &a, nil
}

func (r *PostgresTherapeuticAreaRepository) GetBySlug(ctx context.Context, slug string) (*models.TherapeuticArea, error) {
	return r.getOne(ctx, "slug", slug)
}

func (r *PostgresTherapeuticAreaRepository) GetByID(ctx context.Context, id string) (*models.TherapeuticArea, error) {
	return r.getOne(ctx, "id", id)
}

// Upsert inserts or replaces a therapeutic area keyed by id
func (r *PostgresTherapeuticAreaRepository) Upsert(ctx context.Context, a *models.TherapeuticArea) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, slug, description, icon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			slug = EXCLUDED.slug,
			description = EXCLUDED.description,
			icon = EXCLUDED.icon,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`, r.tables.TherapeuticAreas)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return err
	}

	err = executor.QueryRow(ctx, query,
		a.ID, a.Name, a.Slug, a.Description, a.Icon, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.CreatedAt)
	return translate(err, "upsert therapeutic area", record{"therapeutic area", a.Slug})
}
