package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"toppharma/internal/auth"
	"toppharma/internal/cache"
	"toppharma/internal/config"
	"toppharma/internal/database"
	"toppharma/internal/featureflags"
	"toppharma/internal/fmp"
	"toppharma/internal/handler"
	"toppharma/internal/importer"
	"toppharma/internal/middleware"
	"toppharma/internal/repository/postgres"
	"toppharma/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg, "server")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"use_local_database", cfg.UseLocalDatabase,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Pools open lazily per target; a missing URL fails requests, not startup
	targets := database.NewTargets(cfg, postgres.CreateConnectionPool, logger)
	defer targets.Close()

	repoConfig := &postgres.RepositoryConfig{
		Pools:  targets,
		Tables: postgres.NewTableNames(""),
		Logger: logger,
	}
	companyRepo := postgres.NewCompanyRepository(repoConfig)
	productRepo := postgres.NewProductRepository(repoConfig)
	areaRepo := postgres.NewTherapeuticAreaRepository(repoConfig)
	websiteRepo := postgres.NewWebsiteRepository(repoConfig)
	phaseRepo := postgres.NewDevelopmentPhaseRepository(repoConfig)
	historyRepo := postgres.NewImportHistoryRepository(repoConfig)
	followRepo := postgres.NewFollowRepository(repoConfig)
	notificationRepo := postgres.NewNotificationRepository(repoConfig)
	userPrefsRepo := postgres.NewUserPreferencesRepository(repoConfig)

	store, err := cache.New(ctx, cfg.RedisURL, "toppharma:")
	if err != nil {
		logger.Warn("redis unavailable, using in-memory cache", "error", err)
	}
	defer store.Close()

	notificationService := service.NewNotificationService(notificationRepo, followRepo, logger)
	catalogService := service.NewCatalogService(companyRepo, productRepo, areaRepo, websiteRepo, phaseRepo, logger)
	followService := service.NewFollowService(followRepo, companyRepo, productRepo, areaRepo, websiteRepo, logger)
	userPrefsService := service.NewUserPreferencesService(userPrefsRepo, logger)
	diagnosticsService := service.NewDiagnosticsService(cfg, targets, service.SupabaseREST, service.PoolQueriers(targets), logger)

	// Without an FMP key the feed and importer report the missing key per request
	var source service.CompanySource
	var runner handler.ImportRunner
	feedClient, err := fmp.NewClient(cfg.FMPAPIKey,
		fmp.WithBaseURL(cfg.FMPBaseURL),
		fmp.WithRetryBase(config.FMPRetryBase),
		fmp.WithCache(store, config.CompanyCacheTTL),
		fmp.WithLogger(logger),
	)
	if err != nil {
		logger.Warn("FMP client disabled", "error", err)
	} else {
		source = feedClient
		// The importer gets its own uncached client so its API call count is its own
		importClient, _ := fmp.NewClient(cfg.FMPAPIKey,
			fmp.WithBaseURL(cfg.FMPBaseURL),
			fmp.WithRetryBase(config.FMPRetryBase),
			fmp.WithLogger(logger),
		)
		runner = importer.New(importClient, companyRepo, historyRepo, notificationService, logger)
	}
	feedService := service.NewCompanyFeedService(companyRepo, source, logger)

	jwtVerifier, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
	if err != nil {
		logger.Error("JWT verifier disabled, user routes will return 401", "error", err)
		jwtVerifier = nil
	} else {
		defer jwtVerifier.Close()
	}

	flags := featureflags.NewRegistry(featureflags.Defaults(cfg.UseLocalDatabase, cfg.Environment == "dev"))

	flagHandler := handler.NewFeatureFlagHandler(flags, cfg, logger)
	catalogHandler := handler.NewCatalogHandler(catalogService, feedService, logger)
	diagnosticsHandler := handler.NewDiagnosticsHandler(diagnosticsService, logger)
	importHandler := handler.NewImportHandler(runner, logger)
	followHandler := handler.NewFollowHandler(followService, notificationService, logger)
	userPrefsHandler := handler.NewUserPreferencesHandler(userPrefsService, logger)
	uiHandler := handler.NewUIHandler(cfg, targets)

	logger.Info("services initialized")

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", uiHandler.HealthCheck)

	// Feature flags and database target
	mux.HandleFunc("GET /api/feature-flags", flagHandler.GetFeatureFlags)
	mux.HandleFunc("POST /api/toggle-feature-flag", flagHandler.ToggleFeatureFlag)
	mux.HandleFunc("POST /api/reset-feature-flags", flagHandler.ResetFeatureFlags)
	mux.HandleFunc("POST /api/toggle-supabase-env", flagHandler.ToggleSupabaseEnv)
	mux.HandleFunc("GET /api/test-db-connection", diagnosticsHandler.TestDBConnection)

	// Catalog
	mux.HandleFunc("GET /api/companies", catalogHandler.ListCompanies)
	mux.HandleFunc("GET /api/companies/{slug}", catalogHandler.GetCompany)
	mux.HandleFunc("GET /api/companies/{slug}/products", catalogHandler.ListCompanyProducts)
	mux.HandleFunc("GET /api/products", catalogHandler.ListProducts)
	mux.HandleFunc("GET /api/products/{slug}", catalogHandler.GetProduct)
	mux.HandleFunc("GET /api/therapeutic-areas", catalogHandler.ListTherapeuticAreas)
	mux.HandleFunc("GET /api/therapeutic-areas/{slug}", catalogHandler.GetTherapeuticArea)
	mux.HandleFunc("GET /api/websites", catalogHandler.ListWebsites)
	mux.HandleFunc("GET /api/development-phases", catalogHandler.ListDevelopmentPhases)

	// FMP import
	mux.HandleFunc("POST /api/import-fmp-companies", importHandler.StartImport)
	mux.HandleFunc("GET /api/import-history", importHandler.ListHistory)
	mux.HandleFunc("GET /api/import-history/{id}", importHandler.GetHistory)

	// Current user
	mux.HandleFunc("GET /api/users/me/preferences", userPrefsHandler.GetPreferences)
	mux.HandleFunc("PATCH /api/users/me/preferences", userPrefsHandler.UpdatePreferences)
	mux.HandleFunc("GET /api/users/me/follows", followHandler.ListFollows)
	mux.HandleFunc("POST /api/users/me/follows", followHandler.Follow)
	mux.HandleFunc("DELETE /api/users/me/follows/{type}/{id}", followHandler.Unfollow)
	mux.HandleFunc("GET /api/users/me/notifications", followHandler.ListNotifications)
	mux.HandleFunc("POST /api/users/me/notifications/read-all", followHandler.MarkAllNotificationsRead)
	mux.HandleFunc("POST /api/users/me/notifications/{id}/read", followHandler.MarkNotificationRead)
	mux.HandleFunc("DELETE /api/users/me/notifications/{id}", followHandler.DeleteNotification)

	// UI helpers
	mux.HandleFunc("GET /api/ui/hydration", uiHandler.Hydration)
	mux.HandleFunc("GET /api/ui/assets/{kind}/{id}", uiHandler.AssetURLs)

	// Order: CORS → RequestLogger → Recovery → Auth → DatabaseTarget → Routes
	var h http.Handler = mux
	h = middleware.DatabaseTarget(h)
	h = middleware.AuthMiddleware(jwtVerifier, logger)(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
