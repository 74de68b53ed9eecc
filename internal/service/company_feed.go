package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"toppharma/internal/config"
	"toppharma/internal/domain"
	"toppharma/internal/domain/models"
	"toppharma/internal/domain/repositories"
	"toppharma/internal/domain/services"
	"toppharma/internal/fmp"
)

// CompanySource is the part of the FMP client the feed uses.
type CompanySource interface {
	ScreenIndustries(ctx context.Context, industries []string, includeInactive bool, maxCompanies int, delay time.Duration) (*fmp.ScreenResult, error)
	Profiles(ctx context.Context, symbols []string) ([]fmp.Profile, error)
	RateLimitStatus() fmp.RateLimit
}

// CompanyFeedService implements services.CompanyFeedService
type CompanyFeedService struct {
	companies repositories.CompanyRepository
	source    CompanySource
	logger    *slog.Logger
	now       func() time.Time
}

// NewCompanyFeedService creates the feed. source is nil when FMP is not configured.
func NewCompanyFeedService(companies repositories.CompanyRepository, source CompanySource, logger *slog.Logger) services.CompanyFeedService {
	return &CompanyFeedService{
		companies: companies,
		source:    source,
		logger:    logger,
		now:       time.Now,
	}
}

// Companies serves database rows when the newest one is younger than
// config.CompanyCacheTTL, otherwise screens FMP and expands the first
// config.CompanyProfileLimit hits into profiles.
func (s *CompanyFeedService) Companies(ctx context.Context) (*services.CompanyFeed, error) {
	if s.source == nil {
		return nil, services.ErrFMPNotConfigured
	}

	latest, err := s.companies.LatestUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest company update: %w", err)
	}

	if !latest.IsZero() && s.now().Sub(latest) < config.CompanyCacheTTL {
		cached, err := s.companies.List(ctx, models.CompanyFilter{Limit: 500})
		if err != nil {
			return nil, fmt.Errorf("list cached companies: %w", err)
		}
		if len(cached) > 0 {
			return &services.CompanyFeed{Companies: cached, Source: "cache"}, nil
		}
	}

	screen, err := s.source.ScreenIndustries(ctx, nil, false, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("screen companies: %w", err)
	}
	if len(screen.Companies) == 0 {
		return nil, &domain.NotFoundError{Message: "No companies found"}
	}

	hits := screen.Companies
	if len(hits) > config.CompanyProfileLimit {
		hits = hits[:config.CompanyProfileLimit]
	}
	symbols := make([]string, 0, len(hits))
	for _, h := range hits {
		symbols = append(symbols, h.Symbol)
	}

	profiles, err := s.source.Profiles(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("fetch profiles: %w", err)
	}

	now := s.now()
	companies := make([]models.Company, 0, len(profiles))
	for _, p := range profiles {
		companies = append(companies, fmp.MapProfile(p, now))
	}

	rl := s.source.RateLimitStatus()
	s.logger.Info("companies fetched from FMP", "count", len(companies), "remaining_quota", rl.Remaining)

	return &services.CompanyFeed{
		Companies: companies,
		Source:    "fmp",
		RateLimit: &services.QuotaStatus{Remaining: rl.Remaining, Reset: rl.Reset, Total: rl.Total},
	}, nil
}
