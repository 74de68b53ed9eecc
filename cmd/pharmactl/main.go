// Command pharmactl runs the data maintenance tasks: ad-hoc queries,
// migrations, data conversion, content collections and FMP imports.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"toppharma/internal/config"
	"toppharma/internal/repository/postgres"
)

var (
	useLocal bool
	verbose  bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "pharmactl",
	Short:         "Maintenance commands for the pharma directory",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load .env file (silently ignore if it doesn't exist)
		_ = godotenv.Load()
		cfg = config.Load()
		if cmd.Flags().Changed("local") {
			cfg.UseLocalDatabase = useLocal
		}

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		// stdout is reserved for command output
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&useLocal, "local", false, "Use the local database instead of the hosted one")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(queryCmd, sqlCmd, tableCmd, schemaCmd)
	rootCmd.AddCommand(migrateCmd, convertCmd, contentCmd, importCmd, notificationsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Printf("❌ %v", err)
		stop()
		os.Exit(1)
	}
}

// openPool connects to the database selected by --local or USE_LOCAL_DATABASE.
func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	target := cfg.Target(cfg.UseLocalDatabase)
	if target.DBURL == "" {
		return nil, fmt.Errorf("no database URL configured for the %s database", target.Name)
	}
	pool, err := postgres.CreateConnectionPool(ctx, target.DBURL)
	if err != nil {
		return nil, fmt.Errorf("connect to %s database: %w", target.Name, err)
	}
	log.Printf("🔌 Connected to %s database", target.Name)
	return pool, nil
}

func repoConfig(pool *pgxpool.Pool) *postgres.RepositoryConfig {
	return &postgres.RepositoryConfig{
		Pools:  postgres.StaticPool{P: pool},
		Tables: postgres.NewTableNames(""),
		Logger: logger,
	}
}
