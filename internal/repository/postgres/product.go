package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"toppharma/internal/domain/models"
	"toppharma/internal/domain/repositories"
)

const productColumns = `id, company_id, name, generic_name, slug, description, stage, development_phase_id,
	COALESCE(therapeutic_area_ids, '{}'), COALESCE(indications, '{}'), molecule_type, website,
	created_at, updated_at`

// PostgresProductRepository implements repositories.ProductRepository
type PostgresProductRepository struct {
	pools  PoolProvider
	tables *TableNames
	logger *slog.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(config *RepositoryConfig) repositories.ProductRepository {
	return &PostgresProductRepository{
		pools:  config.Pools,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanProduct(row pgx.Row, p *models.Product) error {
	return row.Scan(
		&p.ID, &p.CompanyID, &p.Name, &p.GenericName, &p.Slug, &p.Description, &p.Stage,
		&p.DevelopmentPhaseID, &p.TherapeuticAreaIDs, &p.Indications, &p.MoleculeType, &p.Website,
		&p.CreatedAt, &p.UpdatedAt,
	)
}

// List returns products ordered by name
func (r *PostgresProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	filter.ApplyDefaults()

	var (
		where []string
		args  []interface{}
	)
	if filter.CompanyID != 0 {
		args = append(args, filter.CompanyID)
		where = append(where, fmt.Sprintf("company_id = $%d", len(args)))
	}
	if filter.TherapeuticAreaID != "" {
		args = append(args, filter.TherapeuticAreaID)
		where = append(where, fmt.Sprintf("$%d = ANY(therapeutic_area_ids)", len(args)))
	}
	if filter.Stage != "" {
		args = append(args, filter.Stage)
		where = append(where, fmt.Sprintf("stage = $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM %s", productColumns, r.tables.Products)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY name LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return nil, err
	}
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetBySlug retrieves a product by slug
func (r *PostgresProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE slug = $1", productColumns, r.tables.Products)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return nil, err
	}

	var p models.Product
	if err := scanProduct(executor.QueryRow(ctx, query, slug), &p); err != nil {
		return nil, translate(err, "get product", record{"product", slug})
	}
	return &p, nil
}

// UpsertBySlug inserts or replaces a product keyed by slug. An unknown
// company_id is reported as a validation error.
func (r *PostgresProductRepository) UpsertBySlug(ctx context.Context, p *models.Product) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (company_id, name, generic_name, slug, description, stage, development_phase_id,
			therapeutic_area_ids, indications, molecule_type, website, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (slug) DO UPDATE SET
			company_id = EXCLUDED.company_id,
			name = EXCLUDED.name,
			generic_name = EXCLUDED.generic_name,
			description = EXCLUDED.description,
			stage = EXCLUDED.stage,
			development_phase_id = EXCLUDED.development_phase_id,
			therapeutic_area_ids = EXCLUDED.therapeutic_area_ids,
			indications = EXCLUDED.indications,
			molecule_type = EXCLUDED.molecule_type,
			website = EXCLUDED.website,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`, r.tables.Products)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return err
	}

	err = executor.QueryRow(ctx, query,
		p.CompanyID, p.Name, p.GenericName, p.Slug, p.Description, p.Stage, p.DevelopmentPhaseID,
		nonNilStrings(p.TherapeuticAreaIDs), nonNilStrings(p.Indications), p.MoleculeType, p.Website,
		p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt)
	return translate(err, "upsert product", record{"product", p.Slug})
}
