package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"toppharma/internal/domain/models"
	"toppharma/internal/domain/repositories"
)

const websiteColumns = `id, company_id, product_id, url, title, category, region, description, created_at, updated_at`

// PostgresWebsiteRepository implements repositories.WebsiteRepository
type PostgresWebsiteRepository struct {
	pools  PoolProvider
	tables *TableNames
	logger *slog.Logger
}

func NewWebsiteRepository(config *RepositoryConfig) repositories.WebsiteRepository {
	return &PostgresWebsiteRepository{
		pools:  config.Pools,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanWebsite(row pgx.Row, w *models.Website) error {
	return row.Scan(&w.ID, &w.CompanyID, &w.ProductID, &w.URL, &w.Title, &w.Category, &w.Region,
		&w.Description, &w.CreatedAt, &w.UpdatedAt)
}

// List returns websites, optionally only those of one company
func (r *PostgresWebsiteRepository) List(ctx context.Context, companyID *int64) ([]models.Website, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", websiteColumns, r.tables.Websites)
	var args []interface{}
	if companyID != nil {
		query += " WHERE company_id = $1"
		args = append(args, *companyID)
	}
	query += " ORDER BY title"

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return nil, err
	}
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list websites: %w", err)
	}
	defer rows.Close()

	websites := []models.Website{}
	for rows.Next() {
		var w models.Website
		if err := scanWebsite(rows, &w); err != nil {
			return nil, fmt.Errorf("scan website: %w", err)
		}
		websites = append(websites, w)
	}
	return websites, rows.Err()
}

func (r *PostgresWebsiteRepository) GetByID(ctx context.Context, id int64) (*models.Website, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", websiteColumns, r.tables.Websites)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return nil, err
	}

	var w models.Website
	if err := scanWebsite(executor.QueryRow(ctx, query, id), &w); err != nil {
		return nil, translate(err, "get website", record{"website", fmt.Sprint(id)})
	}
	return &w, nil
}

// UpsertByURL inserts or replaces a website keyed by url
func (r *PostgresWebsiteRepository) UpsertByURL(ctx context.Context, w *models.Website) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (company_id, product_id, url, title, category, region, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (url) DO UPDATE SET
			company_id = EXCLUDED.company_id,
			product_id = EXCLUDED.product_id,
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			region = EXCLUDED.region,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`, r.tables.Websites)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return err
	}

	err = executor.QueryRow(ctx, query,
		w.CompanyID, w.ProductID, w.URL, w.Title, w.Category, w.Region, w.Description, w.CreatedAt, w.UpdatedAt,
	).Scan(&w.ID, &w.CreatedAt)
	return translate(err, "upsert website", record{"website", w.URL})
}
