package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"inventory/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	Long: `Apply every pending schema migration to the configured database.

Required environment variables:
  DATABASE_DRIVER - sqlite (default) or pgx
  DATABASE_URL    - SQLite file path or Postgres connection string`,
	Example: `  # Migrate the default SQLite database
  inventory migrate

  # Migrate a Postgres database
  DATABASE_DRIVER=pgx DATABASE_URL=postgres://localhost/inventory inventory migrate`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().Int("timeout", 60, "Timeout in seconds")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("migrate")

	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	log.Info().Int("version", version).Msg("Database schema is up to date")
	fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d\n", version)
	return nil
}
