package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"toppharma/internal/domain"
	"toppharma/internal/domain/models"
	"toppharma/internal/domain/repositories"
)

const companyColumns = `id, name, slug, website, logo_url, description, founded_year, headquarters,
	employee_count, revenue_usd, market_cap, public_company, stock_symbol, stock_exchange, ticker,
	active, COALESCE(therapeutic_area_ids, '{}'), created_at, updated_at`

// PostgresCompanyRepository implements repositories.CompanyRepository
type PostgresCompanyRepository struct {
	pools  PoolProvider
	tables *TableNames
	logger *slog.Logger
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(config *RepositoryConfig) repositories.CompanyRepository {
	return &PostgresCompanyRepository{
		pools:  config.Pools,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanCompany(row pgx.Row, c *models.Company) error {
	return row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Website, &c.LogoURL, &c.Description, &c.FoundedYear,
		&c.Headquarters, &c.EmployeeCount, &c.RevenueUSD, &c.MarketCapBillions, &c.PublicCompany,
		&c.StockSymbol, &c.StockExchange, &c.Ticker, &c.Active, &c.TherapeuticAreaIDs,
		&c.CreatedAt, &c.UpdatedAt,
	)
}

// List returns companies ordered by name
func (r *PostgresCompanyRepository) List(ctx context.Context, filter models.CompanyFilter) ([]models.Company, error) {
	filter.ApplyDefaults()

	var (
		where []string
		args  []interface{}
	)
	if filter.ActiveOnly {
		where = append(where, "active = true")
	}
	if filter.TherapeuticAreaID != "" {
		args = append(args, filter.TherapeuticAreaID)
		where = append(where, fmt.Sprintf("$%d = ANY(therapeutic_area_ids)", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR ticker ILIKE $%d)", len(args), len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM %s", companyColumns, r.tables.Companies)
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
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	companies := []models.Company{}
	for rows.Next() {
		var c models.Company
		if err := scanCompany(rows, &c); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *PostgresCompanyRepository) getOne(ctx context.Context, column string, value interface{}) (*models.Company, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", companyColumns, r.tables.Companies, column)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return nil, err
	}

	var c models.Company
	if err := scanCompany(executor.QueryRow(ctx, query, value), &c); err != nil {
		return nil, translate(err, "get company", record{"company", fmt.Sprint(value)})
	}
	return &c, nil
}

// GetByID retrieves a company by ID
func (r *PostgresCompanyRepository) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	return r.getOne(ctx, "id", id)
}

// GetBySlug retrieves a company by slug
func (r *PostgresCompanyRepository) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	return r.getOne(ctx, "slug", slug)
}

// LastUpdatedBySymbol maps stock_symbol to updated_at for known symbols
func (r *PostgresCompanyRepository) LastUpdatedBySymbol(ctx context.Context, symbols []string) (map[string]time.Time, error) {
	result := make(map[string]time.Time, len(symbols))
	if len(symbols) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`
		SELECT stock_symbol, updated_at
		FROM %s
		WHERE stock_symbol = ANY($1)
	`, r.tables.Companies)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return nil, err
	}
	rows, err := executor.Query(ctx, query, symbols)
	if err != nil {
		return nil, fmt.Errorf("lookup company symbols: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			symbol    string
			updatedAt time.Time
		)
		if err := rows.Scan(&symbol, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan company symbol: %w", err)
		}
		result[symbol] = updatedAt
	}
	return result, rows.Err()
}

// LatestUpdate returns the newest updated_at, zero time when empty
func (r *PostgresCompanyRepository) LatestUpdate(ctx context.Context) (time.Time, error) {
	query := fmt.Sprintf("SELECT MAX(updated_at) FROM %s", r.tables.Companies)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return time.Time{}, err
	}

	var latest *time.Time
	if err := executor.QueryRow(ctx, query).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("latest company update: %w", err)
	}
	if latest == nil {
		return time.Time{}, nil
	}
	return *latest, nil
}

// Insert creates a company. Duplicate slug or ticker yields a ConflictError.
func (r *PostgresCompanyRepository) Insert(ctx context.Context, c *models.Company) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, slug, website, logo_url, description, founded_year, headquarters,
			employee_count, revenue_usd, market_cap, public_company, stock_symbol, stock_exchange,
			ticker, active, therapeutic_area_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`, r.tables.Companies)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return err
	}

	err = executor.QueryRow(ctx, query,
		c.Name, c.Slug, c.Website, c.LogoURL, c.Description, c.FoundedYear, c.Headquarters,
		c.EmployeeCount, c.RevenueUSD, c.MarketCapBillions, c.PublicCompany, c.StockSymbol,
		c.StockExchange, c.Ticker, c.Active, nonNilStrings(c.TherapeuticAreaIDs), c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	return translate(err, "insert company", record{"company", c.Slug})
}

// UpdateBySymbol refreshes the FMP-sourced columns of the company with the
// same stock_symbol. Slug and therapeutic areas are left untouched.
func (r *PostgresCompanyRepository) UpdateBySymbol(ctx context.Context, c *models.Company) error {
	if c.StockSymbol == nil {
		return &domain.ValidationError{Message: "stock symbol is required for update"}
	}

	query := fmt.Sprintf(`
		UPDATE %s SET
			name = $2, website = $3, logo_url = $4, description = $5, founded_year = $6,
			headquarters = $7, employee_count = $8, market_cap = $9, public_company = $10,
			stock_exchange = $11, ticker = $12, active = $13, updated_at = $14
		WHERE stock_symbol = $1
		RETURNING id, slug, created_at
	`, r.tables.Companies)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return err
	}

	err = executor.QueryRow(ctx, query,
		*c.StockSymbol, c.Name, c.Website, c.LogoURL, c.Description, c.FoundedYear,
		c.Headquarters, c.EmployeeCount, c.MarketCapBillions, c.PublicCompany,
		c.StockExchange, c.Ticker, c.Active, c.UpdatedAt,
	).Scan(&c.ID, &c.Slug, &c.CreatedAt)
	if err != nil {
		return translate(err, "update company", record{"company", *c.StockSymbol})
	}
	return nil
}

// UpdateFinancials overwrites revenue and headcount when the filing reported them.
func (r *PostgresCompanyRepository) UpdateFinancials(ctx context.Context, symbol string, f models.CompanyFinancials) error {
	query := fmt.Sprintf(`
		UPDATE %s SET
			revenue_usd = COALESCE($2, revenue_usd),
			employee_count = COALESCE($3, employee_count),
			updated_at = $4
		WHERE stock_symbol = $1
		RETURNING id
	`, r.tables.Companies)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return err
	}

	var id int64
	err = executor.QueryRow(ctx, query, symbol, f.RevenueUSD, f.EmployeeCount, f.UpdatedAt).Scan(&id)
	return translate(err, "update company financials", record{"company", symbol})
}

// UpsertBySlug inserts or replaces a company keyed by slug
func (r *PostgresCompanyRepository) UpsertBySlug(ctx context.Context, c *models.Company) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, slug, website, logo_url, description, founded_year, headquarters,
			employee_count, revenue_usd, market_cap, public_company, stock_symbol, stock_exchange,
			ticker, active, therapeutic_area_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			website = EXCLUDED.website,
			logo_url = EXCLUDED.logo_url,
			description = EXCLUDED.description,
			founded_year = EXCLUDED.founded_year,
			headquarters = EXCLUDED.headquarters,
			employee_count = EXCLUDED.employee_count,
			revenue_usd = EXCLUDED.revenue_usd,
			market_cap = EXCLUDED.market_cap,
			public_company = EXCLUDED.public_company,
			stock_symbol = EXCLUDED.stock_symbol,
			stock_exchange = EXCLUDED.stock_exchange,
			ticker = EXCLUDED.ticker,
			active = EXCLUDED.active,
			therapeutic_area_ids = EXCLUDED.therapeutic_area_ids,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`, r.tables.Companies)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return err
	}

	err = executor.QueryRow(ctx, query,
		c.Name, c.Slug, c.Website, c.LogoURL, c.Description, c.FoundedYear, c.Headquarters,
		c.EmployeeCount, c.RevenueUSD, c.MarketCapBillions, c.PublicCompany, c.StockSymbol,
		c.StockExchange, c.Ticker, c.Active, nonNilStrings(c.TherapeuticAreaIDs), c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID, &c.CreatedAt)
	return translate(err, "upsert company", record{"company", c.Slug})
}

// Count returns the number of companies
func (r *PostgresCompanyRepository) Count(ctx context.Context) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.tables.Companies)

	executor, err := GetExecutor(ctx, r.pools)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := executor.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count companies: %w", err)
	}
	return n, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
