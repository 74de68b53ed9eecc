package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
	"toppharma/internal/domain"
	"toppharma/internal/domain/models"
	"toppharma/internal/domain/repositories"
	"toppharma/internal/domain/services"
)

// CatalogService implements services.CatalogService
type CatalogService struct {
	companies repositories.CompanyRepository
	products  repositories.ProductRepository
	areas     repositories.TherapeuticAreaRepository
	websites  repositories.WebsiteRepository
	phases    repositories.DevelopmentPhaseRepository
	logger    *slog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	companies repositories.CompanyRepository,
	products repositories.ProductRepository,
	areas repositories.TherapeuticAreaRepository,
	websites repositories.WebsiteRepository,
	phases repositories.DevelopmentPhaseRepository,
	logger *slog.Logger,
) services.CatalogService {
	return &CatalogService{
		companies: companies,
		products:  products,
		areas:     areas,
		websites:  websites,
		phases:    phases,
		logger:    logger,
	}
}

func (s *CatalogService) ListCompanies(ctx context.Context, filter models.CompanyFilter) ([]models.Company, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.ApplyDefaults()
	return s.companies.List(ctx, filter)
}

func (s *CatalogService) GetCompany(ctx context.Context, slug string) (*models.Company, error) {
	if err := requireSlug(slug); err != nil {
		return nil, err
	}
	return s.companies.GetBySlug(ctx, slug)
}

func (s *CatalogService) ListCompanyProducts(ctx context.Context, slug string) ([]models.Product, error) {
	company, err := s.GetCompany(ctx, slug)
	if err != nil {
		return nil, err
	}
	filter := models.ProductFilter{CompanyID: company.ID}
	filter.ApplyDefaults()
	return s.products.List(ctx, filter)
}

func (s *CatalogService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	if filter.Stage != "" && !filter.Stage.Valid() {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("unknown stage: %s", filter.Stage)}
	}
	filter.ApplyDefaults()
	return s.products.List(ctx, filter)
}

func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	if err := requireSlug(slug); err != nil {
		return nil, err
	}
	return s.products.GetBySlug(ctx, slug)
}

func (s *CatalogService) ListTherapeuticAreas(ctx context.Context) ([]models.TherapeuticArea, error) {
	return s.areas.List(ctx)
}

// GetTherapeuticArea loads the area, then its companies and products concurrently.
func (s *CatalogService) GetTherapeuticArea(ctx context.Context, slug string) (*models.TherapeuticAreaDetail, error) {
	if err := requireSlug(slug); err != nil {
		return nil, err
	}
	area, err := s.areas.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	detail := &models.TherapeuticAreaDetail{TherapeuticArea: *area}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		companies, err := s.companies.List(gctx, models.CompanyFilter{TherapeuticAreaID: area.ID, Limit: 500})
		if err != nil {
			return fmt.Errorf("list companies for %s: %w", area.ID, err)
		}
		detail.Companies = companies
		return nil
	})
	g.Go(func() error {
		products, err := s.products.List(gctx, models.ProductFilter{TherapeuticAreaID: area.ID, Limit: 500})
		if err != nil {
			return fmt.Errorf("list products for %s: %w", area.ID, err)
		}
		detail.Products = products
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if detail.Companies == nil {
		detail.Companies = []models.Company{}
	}
	if detail.Products == nil {
		detail.Products = []models.Product{}
	}
	return detail, nil
}

func (s *CatalogService) ListWebsites(ctx context.Context, companyID *int64) ([]models.Website, error) {
	return s.websites.List(ctx, companyID)
}

func (s *CatalogService) ListDevelopmentPhases(ctx context.Context) ([]models.DevelopmentPhase, error) {
	return s.phases.List(ctx)
}

func requireSlug(slug string) error {
	if strings.TrimSpace(slug) == "" {
		return &domain.ValidationError{Message: "slug is required"}
	}
	return nil
}
