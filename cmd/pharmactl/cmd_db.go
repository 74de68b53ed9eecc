package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"toppharma/internal/database"
	"toppharma/internal/migration"
	"toppharma/internal/repository/postgres"
)

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run SQL through psql in the database container and print JSON rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := database.NewDockerQuerier(cfg.DockerContainer, cfg.DockerDBUser, cfg.DockerDBName)
		rows, err := q.Query(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(rows)
	},
}

var sqlCmd = &cobra.Command{
	Use:   "sql <file>",
	Short: "Run a SQL file directly against the database in one transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		tx := postgres.NewTransactionManager(postgres.StaticPool{P: pool}, logger)
		runner := migration.NewRunner(nil, migration.TxExecutor{Tx: tx, Direct: pool}, logger)
		if _, err := runner.Run(ctx, args[0], true); err != nil {
			return err
		}
		log.Printf("✅ Executed %s", args[0])
		return nil
	},
}

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Inspect tables",
}

var tableCheckCmd = &cobra.Command{
	Use:   "check <table> [limit]",
	Short: "Print the row count and the first rows of a table",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit := 5
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid limit %q", args[1])
			}
			limit = n
		}

		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		table := pgx.Identifier{args[0]}.Sanitize()
		q := &database.PoolQuerier{Pool: pool}

		count, err := q.Query(ctx, "SELECT COUNT(*) AS count FROM "+table)
		if err != nil {
			return fmt.Errorf("count %s: %w", args[0], err)
		}
		rows, err := q.Query(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, limit))
		if err != nil {
			return fmt.Errorf("select %s: %w", args[0], err)
		}

		log.Printf("📋 %s: %v rows", args[0], count[0]["count"])
		return printJSON(rows)
	},
}

var dropTables bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create missing tables, optionally dropping everything first",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.IsProduction() && dropTables {
			return fmt.Errorf("🚫 BLOCKED: cannot run --drop-tables in production")
		}

		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		pools := postgres.StaticPool{P: pool}
		tables := postgres.NewTableNames("")

		if dropTables {
			log.Println("🗑️  Dropping all tables...")
			if err := postgres.DropAllTables(ctx, pools, tables); err != nil {
				return fmt.Errorf("drop tables: %w", err)
			}
			log.Println("✅ Tables dropped")
		}

		log.Println("📋 Ensuring database schema is up to date...")
		if err := postgres.EnsureSchema(ctx, pools, tables); err != nil {
			return fmt.Errorf("run schema: %w", err)
		}
		log.Println("✅ Schema ready")
		return nil
	},
}

func init() {
	tableCmd.AddCommand(tableCheckCmd)
	schemaCmd.Flags().BoolVar(&dropTables, "drop-tables", false, "Drop all tables before creating them (fresh start)")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
