package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"toppharma/internal/domain/models"
	"toppharma/internal/domain/repositories"
	"toppharma/internal/present"
)

// Repos are the repositories Seed writes to.
type Repos struct {
	TherapeuticAreas repositories.TherapeuticAreaRepository
	Companies        repositories.CompanyRepository
	Products         repositories.ProductRepository
	Websites         repositories.WebsiteRepository
}

// SeedResult counts upserted and skipped entries per collection.
type SeedResult struct {
	TherapeuticAreas int `json:"therapeutic_areas"`
	Companies        int `json:"companies"`
	Products         int `json:"products"`
	Websites         int `json:"websites"`
	Skipped          int `json:"skipped"`
}

// stage aliases used by the data modules
var stageAliases = map[string]models.ProductStage{
	"discovery": models.StagePreclinical,
	"market":    models.StageMarketed,
	"phase 1":   models.StagePhase1,
	"phase 2":   models.StagePhase2,
	"phase 3":   models.StagePhase3,
}

// Seed upserts the content collections into the database. Companies are
// keyed by slug, so seeding twice updates rather than duplicates.
// Products and websites whose company cannot be resolved are skipped.
func Seed(ctx context.Context, repos Repos, contentDir string, logger *slog.Logger) (*SeedResult, error) {
	res := &SeedResult{}
	now := time.Now().UTC()

	load := func(name string) ([]Entry, error) {
		entries, err := LoadCollection(filepath.Join(contentDir, name))
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("collection not found", "collection", name)
			return nil, nil
		}
		return entries, err
	}

	areas, err := load("therapeutic-areas")
	if err != nil {
		return res, err
	}
	for _, e := range areas {
		area := therapeuticAreaFrom(e, now)
		if err := repos.TherapeuticAreas.Upsert(ctx, area); err != nil {
			return res, fmt.Errorf("upsert therapeutic area %s: %w", area.ID, err)
		}
		res.TherapeuticAreas++
	}

	companies, err := load("companies")
	if err != nil {
		return res, err
	}
	// content id -> database id
	companyIDs := make(map[string]int64, len(companies))
	for _, e := range companies {
		c := companyFrom(e, now)
		if err := repos.Companies.UpsertBySlug(ctx, c); err != nil {
			return res, fmt.Errorf("upsert company %s: %w", c.Slug, err)
		}
		companyIDs[c.Slug] = c.ID
		if id := str(e.Data, "id"); id != "" {
			companyIDs[id] = c.ID
		}
		res.Companies++
	}

	products, err := load("products")
	if err != nil {
		return res, err
	}
	for _, e := range products {
		p, ok := productFrom(e, companyIDs, now)
		if !ok {
			logger.Warn("skipping product", "slug", e.Slug, "company", str(e.Data, "companyId", "company_id"), "stage", str(e.Data, "stage"))
			res.Skipped++
			continue
		}
		if err := repos.Products.UpsertBySlug(ctx, p); err != nil {
			return res, fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
		res.Products++
	}

	websites, err := load("websites")
	if err != nil {
		return res, err
	}
	for _, e := range websites {
		w, ok := websiteFrom(e, companyIDs, now)
		if !ok {
			logger.Warn("skipping website", "slug", e.Slug)
			res.Skipped++
			continue
		}
		if err := repos.Websites.UpsertByURL(ctx, w); err != nil {
			return res, fmt.Errorf("upsert website %s: %w", w.URL, err)
		}
		res.Websites++
	}

	logger.Info("content seeded",
		"therapeutic_areas", res.TherapeuticAreas,
		"companies", res.Companies,
		"products", res.Products,
		"websites", res.Websites,
		"skipped", res.Skipped,
	)
	return res, nil
}

func therapeuticAreaFrom(e Entry, now time.Time) *models.TherapeuticArea {
	id := str(e.Data, "id")
	if id == "" {
		id = e.Slug
	}
	description := strPtr(e.Data, "description")
	if description == nil && strings.TrimSpace(e.Body) != "" {
		body := strings.TrimSpace(e.Body)
		description = &body
	}
	name := str(e.Data, "name")
	if name == "" {
		name = present.Title(strings.ReplaceAll(e.Slug, "-", " "))
	}
	return &models.TherapeuticArea{
		ID:          id,
		Name:        name,
		Slug:        e.Slug,
		Description: description,
		Icon:        strPtr(e.Data, "icon"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func companyFrom(e Entry, now time.Time) *models.Company {
	d := e.Data
	symbol := strPtr(d, "stockSymbol", "stock_symbol")
	return &models.Company{
		Name:               str(d, "name"),
		Slug:               e.Slug,
		Website:            strPtr(d, "website"),
		LogoURL:            strPtr(d, "logoUrl", "logo_url"),
		Description:        strPtr(d, "description"),
		FoundedYear:        intPtr(d, "founded", "founded_year"),
		Headquarters:       strPtr(d, "headquarters"),
		EmployeeCount:      intPtr(d, "employees", "employee_count"),
		MarketCapBillions:  floatPtr(d, "marketCap", "market_cap"),
		PublicCompany:      symbol != nil,
		StockSymbol:        symbol,
		StockExchange:      strPtr(d, "stockExchange", "stock_exchange"),
		Ticker:             symbol,
		Active:             true,
		TherapeuticAreaIDs: strList(d, "therapeuticAreas", "therapeutic_area_ids"),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func productFrom(e Entry, companyIDs map[string]int64, now time.Time) (*models.Product, bool) {
	d := e.Data
	companyID, ok := companyIDs[str(d, "companyId", "company_id")]
	if !ok {
		return nil, false
	}
	stage, ok := productStage(str(d, "stage"))
	if !ok {
		return nil, false
	}
	return &models.Product{
		CompanyID:          companyID,
		Name:               str(d, "name"),
		GenericName:        strPtr(d, "genericName", "generic_name"),
		Slug:               e.Slug,
		Description:        strPtr(d, "description"),
		Stage:              stage,
		TherapeuticAreaIDs: strList(d, "therapeuticAreas", "therapeutic_area_ids"),
		Indications:        strList(d, "indications"),
		MoleculeType:       strPtr(d, "moleculeType", "molecule_type"),
		Website:            strPtr(d, "website"),
		CreatedAt:          now,
		UpdatedAt:          now,
	}, true
}

func productStage(raw string) (models.ProductStage, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := stageAliases[key]; ok {
		return alias, true
	}
	stage := models.ProductStage(key)
	return stage, stage.Valid()
}

func websiteFrom(e Entry, companyIDs map[string]int64, now time.Time) (*models.Website, bool) {
	d := e.Data
	url := str(d, "url")
	if url == "" {
		if domain := str(d, "domain"); domain != "" {
			url = "https://" + domain
		}
	}
	if url == "" {
		return nil, false
	}

	w := &models.Website{
		URL:         url,
		Title:       str(d, "siteName", "title", "domain"),
		Category:    str(d, "category"),
		Region:      strPtr(d, "region"),
		Description: strPtr(d, "description"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if w.Title == "" {
		w.Title = url
	}
	if ref := str(d, "companyId", "company_id"); ref != "" {
		id, ok := companyIDs[ref]
		if !ok {
			return nil, false
		}
		w.CompanyID = &id
	}
	return w, true
}
