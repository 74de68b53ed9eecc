package main

import (
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"toppharma/internal/migration"
	"toppharma/internal/repository/postgres"
	"toppharma/internal/supabase"
)

var migrateDirect bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create, list and apply SQL migrations",
}

var migrateNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a dated migration file from the template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := migration.Create(cfg.MigrationsDir, args[0], time.Now(), os.Getenv("USER"))
		if err != nil {
			return err
		}
		log.Printf("📝 Created new migration file: %s", path)
		return nil
	},
}

var migrateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List migration files in apply order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := migration.List(cfg.MigrationsDir)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			log.Println("No migration files found. Create one with: pharmactl migrate new <name>")
			return nil
		}
		log.Printf("Found %d migration files:", len(files))
		for _, f := range files {
			log.Printf("  - %s (%s)", f.Name, humanize.Bytes(uint64(f.Size)))
		}
		return nil
	},
}

var migrateRunCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Apply a migration through the REST API, or directly with --direct",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		target := cfg.Target(cfg.UseLocalDatabase)

		var runner *migration.Runner
		if migrateDirect {
			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			tx := postgres.NewTransactionManager(postgres.StaticPool{P: pool}, logger)
			runner = migration.NewRunner(nil, migration.TxExecutor{Tx: tx, Direct: pool}, logger)
		} else {
			key := target.ServiceRoleKey
			if key == "" {
				key = target.AnonKey
			}
			client, err := supabase.NewClient(target.URL, key)
			if err != nil {
				return err
			}
			runner = migration.NewRunner(client, nil, logger)
		}

		log.Printf("🚀 Running migration %s against the %s database...", args[0], target.Name)
		res, err := runner.Run(ctx, args[0], migrateDirect)
		if err != nil {
			return err
		}
		log.Printf("✅ Migration %s completed using %s", res.File, res.Method)
		return nil
	},
}

func init() {
	migrateRunCmd.Flags().BoolVar(&migrateDirect, "direct", false, "Run through a direct database connection in a transaction")
	migrateCmd.AddCommand(migrateNewCmd, migrateListCmd, migrateRunCmd)
}
