package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"inventory/internal/config"
	"inventory/internal/logger"
)

var version = "1.0.0"

// appConfig is set by Execute. It is nil when the environment could not be
// loaded; commands that need it call requireConfig.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Inventory CLI - ingest Brazilian purchase invoices into stock",
	Long: `Inventory CLI reads purchase invoices, either NF-e XML documents or
photographed receipts that go through OCR, and records them against a company:
suppliers and products are matched or created and product stock is increased
by the invoiced quantities.

Configuration is read from the environment and from a .env file in the
working directory. Run "inventory migrate" once before the first ingestion.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(cfg *config.Config) {
	appConfig = cfg
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func requireConfig() (*config.Config, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("configuration could not be loaded, check the environment and .env file")
	}
	return appConfig, nil
}
