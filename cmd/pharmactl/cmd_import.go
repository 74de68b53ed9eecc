package main

import (
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"toppharma/internal/domain/models"
	"toppharma/internal/fmp"
	"toppharma/internal/importer"
	"toppharma/internal/repository/postgres"
	"toppharma/internal/secedgar"
	"toppharma/internal/service"
)

var importConfigFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import data from external sources",
}

var importFMPCmd = &cobra.Command{
	Use:   "fmp",
	Short: "Import pharmaceutical companies from Financial Modeling Prep",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		importCfg := importer.Normalize(models.ImportConfig{})
		if importConfigFile != "" {
			var err error
			if importCfg, err = importer.LoadConfig(importConfigFile); err != nil {
				return err
			}
		}

		client, err := fmp.NewClient(cfg.FMPAPIKey,
			fmp.WithBaseURL(cfg.FMPBaseURL),
			fmp.WithRetryBase(importCfg.RequestDelayDuration()),
			fmp.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		rc := repoConfig(pool)
		companies := postgres.NewCompanyRepository(rc)
		notifications := service.NewNotificationService(
			postgres.NewNotificationRepository(rc),
			postgres.NewFollowRepository(rc),
			logger,
		)
		imp := importer.New(client, companies, postgres.NewImportHistoryRepository(rc), notifications, logger)

		log.Printf("📥 Importing %v (batch size %d)", importCfg.Industries, importCfg.BatchSize)
		entry, err := imp.Run(ctx, importCfg)
		if entry != nil {
			log.Printf("Import %s: %s", entry.ID, entry.Status)
			log.Printf("  found %d, added %d, updated %d, skipped %d, API calls %s",
				entry.RecordsFound, entry.RecordsAdded, entry.RecordsUpdated, entry.RecordsSkipped,
				humanize.Comma(int64(entry.APICallsMade)))
			for industry, n := range entry.ImportedIndustries {
				log.Printf("  %s: %d", industry, n)
			}
		}
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		rl := client.RateLimitStatus()
		log.Printf("✅ Import complete, %d of %d API calls remaining", rl.Remaining, rl.Total)
		return nil
	},
}

var (
	secTickers []string
	secDryRun  bool
)

var importSECCmd = &cobra.Command{
	Use:   "sec",
	Short: "Update companies with revenue and headcount from SEC EDGAR 10-K filings",
	Long: `Looks up each ticker on SEC EDGAR, keeps pharmaceutical and biotech filers
(SIC 2834, 2835, 2836) and writes the latest annual revenue and employee count.
Companies not yet in the directory are added. Without --tickers the built-in
list of large pharma filers is used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := secedgar.NewClient(cfg.SECUserAgent,
			secedgar.WithRateLimit(cfg.SECRateLimit),
			secedgar.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		syncer := secedgar.NewSyncer(client, postgres.NewCompanyRepository(repoConfig(pool)), logger)
		res, err := syncer.Run(ctx, secedgar.SyncOptions{Tickers: secTickers, DryRun: secDryRun})
		if err != nil {
			return fmt.Errorf("SEC sync failed: %w", err)
		}

		for _, c := range res.Companies {
			fmt.Fprintln(cmd.OutOrStdout(), formatSECReport(c))
		}
		log.Printf("✅ SEC sync: %d added, %d updated, %d skipped, %d failed (%s requests)",
			res.Added, res.Updated, res.Skipped, res.Failed, humanize.Comma(int64(client.RequestCount())))
		if secDryRun {
			log.Printf("Dry run, nothing was written")
		}
		return nil
	},
}

var historyLimit int

var importHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent import runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		entries, err := postgres.NewImportHistoryRepository(repoConfig(pool)).List(ctx, historyLimit)
		if err != nil {
			return fmt.Errorf("list import history: %w", err)
		}
		if len(entries) == 0 {
			log.Printf("No imports recorded yet")
			return nil
		}

		now := time.Now()
		for _, e := range entries {
			fmt.Fprintln(cmd.OutOrStdout(), formatHistoryEntry(e, now))
		}
		return nil
	},
}

func init() {
	importFMPCmd.Flags().StringVar(&importConfigFile, "config", "", "YAML or JSON import config file")
	importHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to show")
	importSECCmd.Flags().StringSliceVar(&secTickers, "tickers", nil, "comma-separated tickers to sync")
	importSECCmd.Flags().BoolVar(&secDryRun, "dry-run", false, "report what would change without writing")
	importCmd.AddCommand(importFMPCmd, importSECCmd, importHistoryCmd)
}
