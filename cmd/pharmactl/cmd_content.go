package main

import (
	"errors"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"
	"toppharma/internal/content"
	"toppharma/internal/repository/postgres"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage the per-record content collections",
}

func jsonDir() string { return filepath.Join(cfg.DataDir, "json") }

var contentMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Split the converted JSON files into one file per record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Printf("Starting migration to content collections from %s", jsonDir())
		results, err := content.MigrateCollections(jsonDir(), cfg.ContentDir, logger)
		for _, r := range results {
			if r.Missing {
				log.Printf("⚠️  %s: source file not found", r.Collection)
				continue
			}
			log.Printf("✅ Migrated %d %s", r.Migrated, r.Collection)
		}
		return err
	},
}

var errInvalidAreas = errors.New("invalid therapeutic area ids found")

var contentVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every therapeutic area id used by companies and products exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := content.VerifyTherapeuticAreas(jsonDir())
		if err != nil {
			return err
		}

		log.Printf("Found %d valid therapeutic area IDs", report.ValidIDs)
		for _, ref := range report.Companies {
			log.Printf("Warning: Company %q has invalid therapeutic area ID: %s", ref.Record, ref.ID)
		}
		for _, ref := range report.Products {
			log.Printf("Warning: Product %q has invalid therapeutic area ID: %s", ref.Record, ref.ID)
		}
		log.Printf("Found %d unique invalid IDs in companies.json", len(report.CompanyInvalidIDs))
		log.Printf("Found %d unique invalid IDs in products.json", len(report.ProductInvalidIDs))

		if report.Valid() {
			log.Println("All therapeutic area IDs are valid!")
			return nil
		}
		log.Println("Missing IDs that need to be added to therapeuticAreas.json:")
		for _, id := range report.Missing() {
			log.Printf("  - %s", id)
		}
		return errInvalidAreas
	},
}

var contentSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert the content collections into the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		rc := repoConfig(pool)
		repos := content.Repos{
			TherapeuticAreas: postgres.NewTherapeuticAreaRepository(rc),
			Companies:        postgres.NewCompanyRepository(rc),
			Products:         postgres.NewProductRepository(rc),
			Websites:         postgres.NewWebsiteRepository(rc),
		}

		log.Printf("🌱 Seeding database from %s", cfg.ContentDir)
		res, err := content.Seed(ctx, repos, cfg.ContentDir, logger)
		if err != nil {
			return err
		}
		log.Printf("✅ Seeded %d therapeutic areas, %d companies, %d products, %d websites (%d skipped)",
			res.TherapeuticAreas, res.Companies, res.Products, res.Websites, res.Skipped)
		return nil
	},
}

func init() {
	contentCmd.AddCommand(contentMigrateCmd, contentVerifyCmd, contentSeedCmd)
}
