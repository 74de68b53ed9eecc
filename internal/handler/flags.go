package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"toppharma/internal/config"
	"toppharma/internal/featureflags"
	"toppharma/internal/httputil"
)

const defaultFlagRedirect = "/admin/audit/feature-flags"

// FeatureFlagHandler serves the feature flag and database toggle endpoints.
type FeatureFlagHandler struct {
	flags  *featureflags.Registry
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
}

// NewFeatureFlagHandler creates a new feature flag handler
func NewFeatureFlagHandler(flags *featureflags.Registry, cfg *config.Config, logger *slog.Logger) *FeatureFlagHandler {
	return &FeatureFlagHandler{
		flags:  flags,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// GetFeatureFlags returns the flags as the request sees them, with ff_
// cookies and query parameters applied over the server-side values.
// GET /api/feature-flags
func (h *FeatureFlagHandler) GetFeatureFlags(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.flags.Resolve(r))
}

type toggleFlagRequest struct {
	Flag        string      `json:"flag"`
	Value       interface{} `json:"value"`
	RedirectURL string      `json:"redirectUrl"`
}

// ToggleFeatureFlag sets a flag server-side, persists it in a cookie and
// redirects with the ff_<flag> parameter so the next render sees it.
// POST /api/toggle-feature-flag
func (h *FeatureFlagHandler) ToggleFeatureFlag(w http.ResponseWriter, r *http.Request) {
	var req toggleFlagRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		h.logger.Error("error toggling feature flag", "error", err)
		respondMessage(w, http.StatusInternalServerError, "Failed to toggle feature flag")
		return
	}

	if req.Flag == "" || !h.flags.Known(req.Flag) {
		h.logger.Warn("invalid feature flag", "flag", req.Flag)
		respondMessage(w, http.StatusBadRequest, "Invalid feature flag")
		return
	}

	value := featureflags.Truthy(req.Value)
	h.flags.Set(req.Flag, value)

	target, err := resolveRedirect(r, req.RedirectURL)
	if err != nil {
		h.logger.Error("error toggling feature flag", "error", err, "redirect", req.RedirectURL)
		respondMessage(w, http.StatusInternalServerError, "Failed to toggle feature flag")
		return
	}
	q := target.Query()
	q.Set(featureflags.ParamName(req.Flag), strconv.FormatBool(value))
	target.RawQuery = q.Encode()

	http.SetCookie(w, featureflags.Cookie(req.Flag, value, h.now()))
	h.logger.Info("feature flag toggled", "flag", req.Flag, "value", value, "redirect", target.String())
	httputil.Redirect(w, target.String())
}

type resetFlagsRequest struct {
	RedirectURL string `json:"redirectUrl"`
}

// ResetFeatureFlags drops every override, expires every flag cookie and
// strips the flag parameters from the redirect target. Refused in prod.
// POST /api/reset-feature-flags
func (h *FeatureFlagHandler) ResetFeatureFlags(w http.ResponseWriter, r *http.Request) {
	if h.cfg.IsProduction() {
		httputil.RespondJSON(w, http.StatusForbidden, map[string]interface{}{
			"success": false,
			"message": "Feature flag resetting is not allowed in production",
		})
		return
	}

	var req resetFlagsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		h.logger.Error("error resetting feature flags", "error", err)
		respondMessage(w, http.StatusInternalServerError, "Failed to reset feature flags")
		return
	}

	target, err := resolveRedirect(r, req.RedirectURL)
	if err != nil {
		h.logger.Error("error resetting feature flags", "error", err, "redirect", req.RedirectURL)
		respondMessage(w, http.StatusInternalServerError, "Failed to reset feature flags")
		return
	}

	h.flags.Reset()

	names := h.flags.Names()
	q := target.Query()
	for _, name := range names {
		http.SetCookie(w, featureflags.ExpiredCookie(name))
		q.Del(featureflags.ParamName(name))
	}
	target.RawQuery = q.Encode()

	h.logger.Info("feature flags reset", "cleared_cookies", len(names), "redirect", target.String())
	httputil.Redirect(w, target.String())
}

// ToggleSupabaseEnv flips the use_local_database cookie. The cookie is
// readable from JavaScript so the admin bar can show the current target.
// POST /api/toggle-supabase-env
func (h *FeatureFlagHandler) ToggleSupabaseEnv(w http.ResponseWriter, r *http.Request) {
	current := strconv.FormatBool(h.cfg.UseLocalDatabase)
	if c, err := r.Cookie(featureflags.DatabaseCookie); err == nil && c.Value != "" {
		current = c.Value
	}

	next := "true"
	if current == "true" {
		next = "false"
	}

	http.SetCookie(w, &http.Cookie{
		Name:     featureflags.DatabaseCookie,
		Value:    next,
		Path:     "/",
		MaxAge:   int(config.PreferenceCookieMaxAge.Seconds()),
		HttpOnly: false,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	referer := r.Header.Get("Referer")
	if referer == "" {
		referer = "/"
	}

	h.logger.Info("database target toggled", "use_local_database", next)
	httputil.Redirect(w, referer)
}

// resolveRedirect resolves target (default defaultFlagRedirect) against the
// request URL, yielding an absolute URL.
func resolveRedirect(r *http.Request, target string) (*url.URL, error) {
	if target == "" {
		target = defaultFlagRedirect
	}
	ref, err := url.Parse(target)
	if err != nil {
		return nil, err
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	base := &url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path}
	return base.ResolveReference(ref), nil
}
