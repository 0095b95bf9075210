package cmd

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"inventory/internal/logger"
	"inventory/internal/report"
	"inventory/internal/storage"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Inspect the product stock of a company",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products with their current stock",
	Args:  cobra.NoArgs,
	RunE:  runProductsList,
}

var productsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the product stock as an Excel workbook",
	Example: `  inventory products export --company 6f1c... -o estoque.xlsx`,
	Args: cobra.NoArgs,
	RunE: runProductsExport,
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsListCmd, productsExportCmd)

	productsCmd.PersistentFlags().String("company", "", "Company id [REQUIRED]")
	_ = productsCmd.MarkPersistentFlagRequired("company")

	productsListCmd.Flags().Bool("json", false, "Output as JSON")
	productsExportCmd.Flags().StringP("output", "o", "stock.xlsx", "Output file path")
}

func loadStockRows(cmd *cobra.Command) ([]storage.StockRow, error) {
	log := logger.WithComponent("products")

	cfg, err := requireConfig()
	if err != nil {
		return nil, err
	}
	companyID, _ := cmd.Flags().GetString("company")

	ctx, cancel := createContextWithTimeout(60, log)
	defer cancel()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	company, err := store.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up company: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("company %s does not exist", companyID)
	}

	rows, err := store.ListProductsByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	log.Debug().Str("company_id", companyID).Int("products", len(rows)).Msg("Products loaded")
	return rows, nil
}

func runProductsList(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	rows, err := loadStockRows(cmd)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), rows)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "SUPPLIER\tPRODUCT\tBARCODE\tCOST\tSTOCK\t")
	for _, row := range rows {
		barcode, cost := "", ""
		if row.Barcode != nil {
			barcode = *row.Barcode
		}
		if row.CostPrice.Valid {
			cost = row.CostPrice.Decimal.StringFixed(2)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", row.SupplierName, row.Name, barcode, cost, row.CurrentStockQuantity.String())
	}
	return w.Flush()
}

func runProductsExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("products")
	outputPath, _ := cmd.Flags().GetString("output")

	rows, err := loadStockRows(cmd)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.WriteStockSheet(&buf, rows); err != nil {
		log.Error().Err(err).Msg("Failed to build stock workbook")
		return fmt.Errorf("failed to build stock workbook: %w", err)
	}
	if err := writeOutput(cmd, outputPath, buf.Bytes(), log); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d products to %s\n", len(rows), outputPath)
	return nil
}
