package repositories

import (
	"context"
	"time"

	"toppharma/internal/domain/models"
)

// CompanyRepository defines data access for companies
type CompanyRepository interface {
	List(ctx context.Context, filter models.CompanyFilter) ([]models.Company, error)
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	GetBySlug(ctx context.Context, slug string) (*models.Company, error)
	// LastUpdatedBySymbol maps stock_symbol to updated_at for the given symbols
	LastUpdatedBySymbol(ctx context.Context, symbols []string) (map[string]time.Time, error)
	// LatestUpdate returns the newest updated_at, zero time when the table is empty
	LatestUpdate(ctx context.Context) (time.Time, error)
	Insert(ctx context.Context, company *models.Company) error
	UpdateBySymbol(ctx context.Context, company *models.Company) error
	// UpdateFinancials sets the non-nil filing figures on the company with symbol
	UpdateFinancials(ctx context.Context, symbol string, f models.CompanyFinancials) error
	UpsertBySlug(ctx context.Context, company *models.Company) error
	Count(ctx context.Context) (int64, error)
}

// ProductRepository defines data access for products
type ProductRepository interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	UpsertBySlug(ctx context.Context, product *models.Product) error
}

// TherapeuticAreaRepository defines data access for therapeutic areas
type TherapeuticAreaRepository interface {
	List(ctx context.Context) ([]models.TherapeuticArea, error)
	GetBySlug(ctx context.Context, slug string) (*models.TherapeuticArea, error)
	GetByID(ctx context.Context, id string) (*models.TherapeuticArea, error)
	Upsert(ctx context.Context, area *models.TherapeuticArea) error
}

// WebsiteRepository defines data access for websites
type WebsiteRepository interface {
	List(ctx context.Context, companyID *int64) ([]models.Website, error)
	GetByID(ctx context.Context, id int64) (*models.Website, error)
	UpsertByURL(ctx context.Context, website *models.Website) error
}

// DevelopmentPhaseRepository defines data access for development phases
type DevelopmentPhaseRepository interface {
	List(ctx context.Context) ([]models.DevelopmentPhase, error)
}
