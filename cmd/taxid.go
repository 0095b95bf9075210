package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"inventory/internal/taxid"
)

var taxidCmd = &cobra.Command{
	Use:   "taxid [cnpj]",
	Short: "Normalize and validate a CNPJ",
	Example: `  inventory taxid 11.222.333/0001-81
  inventory taxid 11222333000181 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runTaxID,
}

// TaxIDOutput represents the JSON output structure when --json flag is used
type TaxIDOutput struct {
	Input      string `json:"input"`
	Normalized string `json:"normalized"`
	Formatted  string `json:"formatted"`
	Valid      bool   `json:"valid"`
}

func init() {
	rootCmd.AddCommand(taxidCmd)

	taxidCmd.Flags().Bool("json", false, "Output as JSON")
}

func runTaxID(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	result := TaxIDOutput{
		Input:      args[0],
		Normalized: taxid.Normalize(args[0]),
		Formatted:  taxid.Format(args[0]),
		Valid:      taxid.Validate(args[0]),
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Normalized: %s\n", result.Normalized)
	fmt.Fprintf(out, "Formatted:  %s\n", result.Formatted)
	fmt.Fprintf(out, "Valid:      %t\n", result.Valid)
	if !result.Valid {
		return fmt.Errorf("invalid CNPJ: %s", args[0])
	}
	return nil
}
