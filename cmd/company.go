package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"inventory/internal/logger"
	"inventory/internal/storage"
	"inventory/internal/taxid"
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Manage the companies that receive invoices",
	Long: `Companies are the tenants invoices are ingested for. Ingestion never
creates a company; add it here first and pass its id with --company.`,
}

var companyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a company",
	Example: `  inventory company add --name "Papelaria Modelo Ltda" --tax-id 11.222.333/0001-81`,
	Args: cobra.NoArgs,
	RunE: runCompanyAdd,
}

var companyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered companies",
	Args:  cobra.NoArgs,
	RunE:  runCompanyList,
}

func init() {
	rootCmd.AddCommand(companyCmd)
	companyCmd.AddCommand(companyAddCmd, companyListCmd)

	companyAddCmd.Flags().String("name", "", "Legal name [REQUIRED]")
	companyAddCmd.Flags().String("tax-id", "", "CNPJ, formatted or digits only [REQUIRED]")
	companyAddCmd.Flags().String("trade-name", "", "Trade name")
	_ = companyAddCmd.MarkFlagRequired("name")
	_ = companyAddCmd.MarkFlagRequired("tax-id")

	companyListCmd.Flags().Bool("json", false, "Output as JSON")
}

func runCompanyAdd(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("company")

	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("name")
	rawTaxID, _ := cmd.Flags().GetString("tax-id")
	tradeName, _ := cmd.Flags().GetString("trade-name")

	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("--name must not be empty")
	}
	if !taxid.Validate(rawTaxID) {
		return fmt.Errorf("invalid CNPJ: %s", rawTaxID)
	}

	ctx, cancel := createContextWithTimeout(30, log)
	defer cancel()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	normalized := taxid.Normalize(rawTaxID)
	existing, err := store.FindCompanyByTaxID(ctx, normalized)
	if err != nil {
		return fmt.Errorf("failed to look up company: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("company with CNPJ %s already exists: %s", taxid.Format(normalized), existing.ID)
	}

	company, err := store.CreateCompany(ctx, storage.CompanyFields{
		Name:      name,
		TaxID:     normalized,
		TradeName: strings.TrimSpace(tradeName),
	})
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}

	log.Info().
		Str("company_id", company.ID).
		Str("tax_id", company.TaxID).
		Msg("Company created")
	fmt.Fprintln(cmd.OutOrStdout(), company.ID)
	return nil
}

func runCompanyList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("company")

	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	ctx, cancel := createContextWithTimeout(30, log)
	defer cancel()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	companies, err := store.ListCompanies(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), companies)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCNPJ\tNAME")
	for _, c := range companies {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, taxid.Format(c.TaxID), c.Name)
	}
	return w.Flush()
}
