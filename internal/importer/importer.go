// Package importer pulls healthcare companies from Financial Modeling Prep
// into the companies table and records each run in import_history.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"toppharma/internal/config"
	"toppharma/internal/domain"
	"toppharma/internal/domain/models"
	"toppharma/internal/domain/repositories"
	"toppharma/internal/fmp"
	"toppharma/internal/present"
)

// DataSource is recorded on every history entry written by this package.
const DataSource = "Financial Modeling Prep"

// Source is the subset of the FMP client the importer needs.
type Source interface {
	ScreenIndustries(ctx context.Context, industries []string, includeInactive bool, maxCompanies int, delay time.Duration) (*fmp.ScreenResult, error)
	Profiles(ctx context.Context, symbols []string) ([]fmp.Profile, error)
	RequestCount() int
}

// Notifier fans out a notification to everyone following an entity.
type Notifier interface {
	NotifyFollowers(ctx context.Context, entityType models.EntityType, entityID, title, message string, actionURL *string) (int, error)
}

type Importer struct {
	source    Source
	companies repositories.CompanyRepository
	history   repositories.ImportHistoryRepository
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// New creates an importer. notifier may be nil.
func New(
	source Source,
	companies repositories.CompanyRepository,
	history repositories.ImportHistoryRepository,
	notifier Notifier,
	logger *slog.Logger,
) *Importer {
	return &Importer{
		source:    source,
		companies: companies,
		history:   history,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Normalize fills unset fields with their defaults.
func Normalize(cfg models.ImportConfig) models.ImportConfig {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = config.DefaultImportBatchSize
	}
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = config.DefaultImportRequestDelay
	}
	if len(cfg.Industries) == 0 {
		cfg.Industries = append([]string(nil), fmp.DefaultIndustries...)
	}
	if cfg.UpdateIntervalDays == nil {
		days := config.DefaultUpdateIntervalDays
		cfg.UpdateIntervalDays = &days
	}
	return cfg
}

// Validate checks a normalized config.
func Validate(cfg models.ImportConfig) error {
	err := validation.ValidateStruct(&cfg,
		validation.Field(&cfg.BatchSize, validation.Required, validation.Min(1), validation.Max(config.MaxImportBatchSize)),
		validation.Field(&cfg.RequestDelay, validation.Min(0), validation.Max(config.MaxImportRequestDelay)),
		validation.Field(&cfg.MaxCompanies, validation.Min(1)),
		validation.Field(&cfg.UpdateIntervalDays, validation.Min(0)),
		validation.Field(&cfg.Industries, validation.Each(validation.Required)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// Start validates the config and records a processing history entry.
// The caller runs Execute with the returned entry, usually in the background.
func (i *Importer) Start(ctx context.Context, cfg models.ImportConfig) (*models.ImportHistoryEntry, error) {
	cfg = Normalize(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	entry := &models.ImportHistoryEntry{
		ID:                 uuid.New(),
		DataSource:         DataSource,
		StartTime:          i.now(),
		Status:             models.ImportProcessing,
		Config:             cfg,
		ImportedIndustries: map[string]int{},
	}
	if err := i.history.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create import history: %w", err)
	}

	i.logger.Info("import started", "id", entry.ID, "batch_size", cfg.BatchSize, "request_delay_ms", cfg.RequestDelay)
	return entry, nil
}

// Run starts and executes an import synchronously.
func (i *Importer) Run(ctx context.Context, cfg models.ImportConfig) (*models.ImportHistoryEntry, error) {
	entry, err := i.Start(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return entry, i.Execute(ctx, entry)
}

// Execute screens FMP, fetches profiles for new or stale symbols in batches,
// writes them, and finalizes the history entry. The entry is marked failed
// when the screen or lookup fails or when every profile batch fails.
func (i *Importer) Execute(ctx context.Context, entry *models.ImportHistoryEntry) error {
	cfg := entry.Config
	startCalls := i.source.RequestCount()

	// Imports always read live data; 403 retries back off from the run's delay
	ctx = fmp.WithCallOptions(ctx, fmp.CallOptions{
		BypassCache: true,
		RetryBase:   cfg.RequestDelayDuration(),
	})

	err := i.execute(ctx, entry, cfg)
	entry.APICallsMade = i.source.RequestCount() - startCalls

	if err != nil {
		msg := err.Error()
		entry.Status = models.ImportFailed
		entry.ErrorMessage = &msg
		i.logger.Error("import failed", "id", entry.ID, "error", err)
	} else {
		entry.Status = models.ImportCompleted
		i.logger.Info("import completed",
			"id", entry.ID,
			"found", entry.RecordsFound,
			"added", entry.RecordsAdded,
			"updated", entry.RecordsUpdated,
			"skipped", entry.RecordsSkipped,
			"api_calls", entry.APICallsMade,
		)
	}

	end := i.now()
	entry.EndTime = &end
	if updateErr := i.history.Update(context.WithoutCancel(ctx), entry); updateErr != nil {
		i.logger.Error("failed to finalize import history", "id", entry.ID, "error", updateErr)
		if err == nil {
			err = updateErr
		}
	}
	return err
}

// History returns the most recent import runs, newest first.
func (i *Importer) History(ctx context.Context, limit int) ([]models.ImportHistoryEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	entries, err := i.history.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.ImportHistoryEntry{}
	}
	return entries, nil
}

// Get returns one import run.
func (i *Importer) Get(ctx context.Context, id uuid.UUID) (*models.ImportHistoryEntry, error) {
	return i.history.GetByID(ctx, id)
}

func (i *Importer) execute(ctx context.Context, entry *models.ImportHistoryEntry, cfg models.ImportConfig) error {
	maxCompanies := 0
	if cfg.MaxCompanies != nil {
		maxCompanies = *cfg.MaxCompanies
	}

	screen, err := i.source.ScreenIndustries(ctx, cfg.Industries, cfg.IncludeInactive, maxCompanies, cfg.RequestDelayDuration())
	if err != nil {
		return fmt.Errorf("screen companies: %w", err)
	}
	entry.RecordsFound = screen.TotalFound
	entry.ImportedIndustries = screen.Industries

	symbols := uniqueSymbols(screen.Companies)
	existing, err := i.companies.LastUpdatedBySymbol(ctx, symbols)
	if err != nil {
		return fmt.Errorf("look up existing companies: %w", err)
	}

	interval := config.DefaultUpdateIntervalDays
	if cfg.UpdateIntervalDays != nil {
		interval = *cfg.UpdateIntervalDays
	}
	cutoff := i.now().AddDate(0, 0, -interval)

	var toFetch []string
	for _, s := range symbols {
		updated, ok := existing[s]
		if !ok || updated.Before(cutoff) {
			toFetch = append(toFetch, s)
		}
	}
	entry.RecordsSkipped = len(symbols) - len(toFetch)

	if len(toFetch) == 0 {
		i.logger.Info("no new or stale companies, skipping profile requests", "id", entry.ID)
		entry.RecordsSkipped = screen.TotalFound
		return nil
	}

	i.logger.Info("fetching profiles",
		"id", entry.ID,
		"symbols", len(toFetch),
		"skipped_recent", entry.RecordsSkipped,
		"cutoff", cutoff.Format("2006-01-02"),
	)

	fetched := i.fetchProfiles(ctx, toFetch, cfg)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if fetched.failedBatches == fetched.batches {
		return fmt.Errorf("all %d profile batches failed", fetched.batches)
	}

	for _, p := range fetched.profiles {
		if p.Symbol == "" {
			continue
		}
		company := fmp.MapProfile(p, i.now())
		if _, ok := existing[p.Symbol]; ok {
			if err := i.companies.UpdateBySymbol(ctx, &company); err != nil {
				i.logger.Warn("update company failed", "symbol", p.Symbol, "error", err)
				continue
			}
			entry.RecordsUpdated++
			i.notifyUpdated(ctx, &company)
			continue
		}
		i.insert(ctx, entry, &company)
	}

	i.insertFromScreener(ctx, entry, screen.Companies, fetched.failedSymbols, existing)
	return nil
}

// insertFromScreener adds companies whose profile batch failed using the
// screener row alone. Known companies keep their richer stored profile and
// count as skipped.
func (i *Importer) insertFromScreener(ctx context.Context, entry *models.ImportHistoryEntry, hits []fmp.ScreenerResult, failed []string, existing map[string]time.Time) {
	if len(failed) == 0 {
		return
	}
	bySymbol := make(map[string]fmp.ScreenerResult, len(hits))
	for _, h := range hits {
		if _, ok := bySymbol[h.Symbol]; !ok {
			bySymbol[h.Symbol] = h
		}
	}

	for _, symbol := range failed {
		hit, ok := bySymbol[symbol]
		if _, known := existing[symbol]; known || !ok || hit.CompanyName == "" {
			entry.RecordsSkipped++
			continue
		}
		company := fmp.MapScreenerResult(hit, i.now())
		i.logger.Debug("inserting company from screener data", "symbol", symbol)
		i.insert(ctx, entry, &company)
	}
}

func (i *Importer) insert(ctx context.Context, entry *models.ImportHistoryEntry, company *models.Company) {
	symbol := ""
	if company.StockSymbol != nil {
		symbol = *company.StockSymbol
	}
	if err := i.companies.Insert(ctx, company); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			entry.RecordsSkipped++
			i.logger.Debug("company already exists under another symbol", "symbol", symbol, "slug", company.Slug)
			return
		}
		i.logger.Warn("insert company failed", "symbol", symbol, "error", err)
		return
	}
	entry.RecordsAdded++
}

type profileFetch struct {
	profiles      []fmp.Profile
	failedSymbols []string
	failedBatches int
	batches       int
}

// fetchProfiles requests profiles batch by batch. A failing batch is logged
// and its symbols are reported back.
func (i *Importer) fetchProfiles(ctx context.Context, symbols []string, cfg models.ImportConfig) profileFetch {
	var res profileFetch

	for start := 0; start < len(symbols); start += cfg.BatchSize {
		end := min(start+cfg.BatchSize, len(symbols))
		batch := symbols[start:end]
		res.batches++

		got, err := i.source.Profiles(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return res
			}
			res.failedBatches++
			res.failedSymbols = append(res.failedSymbols, batch...)
			i.logger.Warn("profile batch failed", "batch", res.batches, "symbols", batch, "error", err)
		} else {
			res.profiles = append(res.profiles, got...)
		}

		if end < len(symbols) && cfg.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return res
			case <-time.After(cfg.RequestDelayDuration()):
			}
		}
	}
	return res
}

func (i *Importer) notifyUpdated(ctx context.Context, c *models.Company) {
	if i.notifier == nil || c.ID == 0 {
		return
	}
	actionURL := "/companies/" + c.Slug
	n, err := i.notifier.NotifyFollowers(ctx, models.EntityCompany, strconv.FormatInt(c.ID, 10),
		fmt.Sprintf("%s updated", c.Name),
		updateMessage(c),
		&actionURL,
	)
	if err != nil {
		i.logger.Warn("notify followers failed", "company_id", c.ID, "error", err)
		return
	}
	if n > 0 {
		i.logger.Debug("followers notified", "company_id", c.ID, "count", n)
	}
}

func updateMessage(c *models.Company) string {
	symbol := ""
	if c.StockSymbol != nil {
		symbol = *c.StockSymbol
	}
	msg := fmt.Sprintf("The profile of %s (%s) was refreshed with the latest market data.", c.Name, symbol)
	if c.MarketCapBillions != nil {
		msg += " Market cap: " + present.FormatCurrency(*c.MarketCapBillions*1e9) + "."
	}
	return msg
}

func uniqueSymbols(results []fmp.ScreenerResult) []string {
	seen := make(map[string]struct{}, len(results))
	symbols := make([]string, 0, len(results))
	for _, r := range results {
		if r.Symbol == "" {
			continue
		}
		if _, ok := seen[r.Symbol]; ok {
			continue
		}
		seen[r.Symbol] = struct{}{}
		symbols = append(symbols, r.Symbol)
	}
	return symbols
}
