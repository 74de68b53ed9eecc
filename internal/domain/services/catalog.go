package services

import (
	"context"
	"errors"

	"toppharma/internal/domain/models"
)

// CatalogService serves the read side of the directory
type CatalogService interface {
	ListCompanies(ctx context.Context, filter models.CompanyFilter) ([]models.Company, error)
	GetCompany(ctx context.Context, slug string) (*models.Company, error)
	// ListCompanyProducts returns the products of the company with the given slug
	ListCompanyProducts(ctx context.Context, slug string) ([]models.Product, error)

	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, slug string) (*models.Product, error)

	ListTherapeuticAreas(ctx context.Context) ([]models.TherapeuticArea, error)
	// GetTherapeuticArea returns the area with the companies and products tagged with it
	GetTherapeuticArea(ctx context.Context, slug string) (*models.TherapeuticAreaDetail, error)

	ListWebsites(ctx context.Context, companyID *int64) ([]models.Website, error)
	ListDevelopmentPhases(ctx context.Context) ([]models.DevelopmentPhase, error)
}

// CompanyFeed is the response of the companies endpoint. Source is "cache"
// when rows came from the database and "fmp" when they were fetched live.
type CompanyFeed struct {
	Companies []models.Company `json:"companies"`
	Source    string           `json:"source"`
	RateLimit *QuotaStatus     `json:"rateLimit,omitempty"`
}

// QuotaStatus is the upstream API quota after a live fetch. Reset is unix seconds.
type QuotaStatus struct {
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
	Total     int   `json:"total"`
}

// ErrFMPNotConfigured is returned by the company feed when no FMP key is set.
var ErrFMPNotConfigured = errors.New("missing FMP API key")

// CompanyFeedService returns database companies while they are fresh and
// falls back to Financial Modeling Prep otherwise
type CompanyFeedService interface {
	Companies(ctx context.Context) (*CompanyFeed, error)
}
