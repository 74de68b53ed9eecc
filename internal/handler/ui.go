package handler

import (
	"net/http"
	"time"

	"toppharma/internal/config"
	"toppharma/internal/database"
	"toppharma/internal/httputil"
	"toppharma/internal/present"
)

// UIHandler serves static configuration consumed by the frontend.
type UIHandler struct {
	cfg     *config.Config
	targets *database.Targets
	assets  present.Assets
}

// NewUIHandler creates a new UI handler
func NewUIHandler(cfg *config.Config, targets *database.Targets) *UIHandler {
	return &UIHandler{
		cfg:     cfg,
		targets: targets,
		assets:  present.NewAssets(cfg.AssetsBaseURL),
	}
}

// Hydration returns the component to directive table, or the directive
// for a single component when ?component= is given.
// GET /api/ui/hydration
func (h *UIHandler) Hydration(w http.ResponseWriter, r *http.Request) {
	if component := r.URL.Query().Get("component"); component != "" {
		httputil.RespondJSON(w, http.StatusOK, map[string]string{
			"component": component,
			"directive": present.HydrationDirective(component),
		})
		return
	}
	httputil.RespondJSON(w, http.StatusOK, present.RecommendedHydration)
}

// AssetURLs returns the image URLs for one record. Records without
// published artwork get the placeholder for their kind.
// GET /api/ui/assets/{kind}/{id}
func (h *UIHandler) AssetURLs(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var urls map[string]string
	switch r.PathValue("kind") {
	case "companies":
		urls = map[string]string{
			"logo":        h.assets.CompanyLogo(id),
			"header":      h.assets.CompanyHeader(id),
			"placeholder": h.assets.Placeholder(present.PlaceholderCompany),
		}
	case "products":
		image, ok := h.assets.ProductImage(id)
		if !ok {
			image = h.assets.Placeholder(present.PlaceholderProduct)
		}
		urls = map[string]string{"image": image}
	case "websites":
		urls = map[string]string{
			"screenshot":  h.assets.WebsiteScreenshot(id),
			"placeholder": h.assets.Placeholder(present.PlaceholderWebsite),
		}
	case "therapeutic-areas":
		urls = map[string]string{"icon": h.assets.TherapeuticAreaIcon(id)}
	case "icons":
		urls = map[string]string{"icon": h.assets.Icon(id)}
	default:
		httputil.RespondError(w, http.StatusNotFound, "unknown asset kind")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, urls)
}

// HealthCheck is a simple health check endpoint
// GET /health
func (h *UIHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"time":        time.Now(),
		"environment": h.cfg.Environment,
		"database":    h.targets.ConnectionType(r.Context()),
	})
}
