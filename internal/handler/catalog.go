package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"toppharma/internal/domain"
	"toppharma/internal/domain/models"
	"toppharma/internal/domain/services"
	"toppharma/internal/httputil"
)

// CatalogHandler serves the read-only directory endpoints.
type CatalogHandler struct {
	catalog services.CatalogService
	feed    services.CompanyFeedService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog services.CatalogService, feed services.CompanyFeedService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		feed:    feed,
		logger:  logger,
	}
}

// ListCompanies returns the company feed. Any filter parameter
// (search, therapeutic_area, active, limit, offset) switches to a plain
// database listing instead.
// GET /api/companies
func (h *CatalogHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Has("search") || q.Has("therapeutic_area") || q.Has("active") || q.Has("limit") || q.Has("offset") {
		filter := models.CompanyFilter{
			Search:            q.Get("search"),
			TherapeuticAreaID: q.Get("therapeutic_area"),
			ActiveOnly:        q.Get("active") == "true",
			Limit:             httputil.QueryInt(r, "limit", 0),
			Offset:            httputil.QueryInt(r, "offset", 0),
		}
		companies, err := h.catalog.ListCompanies(r.Context(), filter)
		if err != nil {
			handleError(w, err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, services.CompanyFeed{Companies: nonNil(companies), Source: "database"})
		return
	}

	feed, err := h.feed.Companies(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFMPNotConfigured):
			respondMessage(w, http.StatusInternalServerError, "Missing FMP API key")
		case errors.Is(err, domain.ErrNotFound):
			respondMessage(w, http.StatusNotFound, "No companies found")
		default:
			h.logger.Error("error fetching companies", "error", err)
			respondMessage(w, http.StatusInternalServerError, "Failed to fetch companies")
		}
		return
	}

	httputil.RespondJSON(w, http.StatusOK, feed)
}

// GetCompany returns one company by slug
// GET /api/companies/{slug}
func (h *CatalogHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.catalog.GetCompany(r.Context(), r.PathValue("slug"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, company)
}

// ListCompanyProducts returns a company's products
// GET /api/companies/{slug}/products
func (h *CatalogHandler) ListCompanyProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListCompanyProducts(r.Context(), r.PathValue("slug"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, nonNil(products))
}

// ListProducts lists products, optionally by therapeutic area and stage
// GET /api/products?therapeutic_area=&stage=&limit=&offset=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ProductFilter{
		TherapeuticAreaID: q.Get("therapeutic_area"),
		Stage:             models.ProductStage(q.Get("stage")),
		Limit:             httputil.QueryInt(r, "limit", 0),
		Offset:            httputil.QueryInt(r, "offset", 0),
	}
	products, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, nonNil(products))
}

// GetProduct returns one product by slug
// GET /api/products/{slug}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), r.PathValue("slug"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, product)
}

// GET /api/therapeutic-areas
func (h *CatalogHandler) ListTherapeuticAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.catalog.ListTherapeuticAreas(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, nonNil(areas))
}

// GetTherapeuticArea returns the area with its companies and products
// GET /api/therapeutic-areas/{slug}
func (h *CatalogHandler) GetTherapeuticArea(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalog.GetTherapeuticArea(r.Context(), r.PathValue("slug"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, detail)
}

// GET /api/websites?company_id=
func (h *CatalogHandler) ListWebsites(w http.ResponseWriter, r *http.Request) {
	var companyID *int64
	if raw := strings.TrimSpace(r.URL.Query().Get("company_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "company_id must be numeric")
			return
		}
		companyID = &id
	}

	websites, err := h.catalog.ListWebsites(r.Context(), companyID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, nonNil(websites))
}

// GET /api/development-phases
func (h *CatalogHandler) ListDevelopmentPhases(w http.ResponseWriter, r *http.Request) {
	phases, err := h.catalog.ListDevelopmentPhases(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, nonNil(phases))
}

// nonNil makes empty listings encode as [] rather than null.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
