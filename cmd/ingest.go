package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"inventory/internal/config"
	"inventory/internal/ingest"
	"inventory/internal/logger"
	"inventory/internal/storage/sqlstore"
	"inventory/internal/taxid"
	"inventory/pkg/models"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Record a purchase invoice against a company",
	Long: `Ingest a purchase invoice for an existing company.

The supplier is matched by CNPJ within the company or created. Each line is
matched to one of the supplier's products, first by barcode then by exact
name, or created. Matched products get the invoiced unit price as their new
cost price and the invoiced quantity added to their stock.

Re-ingesting the same document adds its quantities again unless
REJECT_DUPLICATE_INVOICES=true is set.`,
}

var ingestXMLCmd = &cobra.Command{
	Use:   "xml [nfe-file]",
	Short: "Ingest an NF-e XML document",
	Example: `  inventory ingest xml 35240111222333000181550010000012341000012345.xml --company 6f1c...

  # Print the stored invoice as JSON
  inventory ingest xml nota.xml --company 6f1c... --json`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestXML,
}

var ingestImageCmd = &cobra.Command{
	Use:   "image [image-file]",
	Short: "Ingest a photographed receipt through OCR",
	Long: `Recognize the text of a receipt image and ingest what can be extracted.

Fields OCR cannot recover are stored with placeholder values (supplier
"Fornecedor OCR", CNPJ 00.000.000/0000-00, invoice number 000000) so the
invoice can be reviewed later.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  OCR_ENGINE - vision (default) or documentai
  GOOGLE_CLOUD_PROJECT, DOCUMENT_AI_PROCESSOR_ID - for the documentai engine`,
	Example: `  inventory ingest image cupom.jpg --company 6f1c...`,
	Args:    cobra.ExactArgs(1),
	RunE:    runIngestImage,
}

var ingestDraftCmd = &cobra.Command{
	Use:   "draft [json-file]",
	Short: "Ingest an invoice draft prepared as JSON",
	Example: `  inventory ingest draft draft.json --company 6f1c...

  # draft.json
  {
    "supplier": {"name": "Atacado Sul Ltda", "trade_name": "Atacado Sul", "tax_id": "60746948000112"},
    "invoice_number": "42", "series": "1", "issue_date": "2024-03-01",
    "total_amount": "20.00",
    "items": [{"product_name": "Fita Adesiva", "quantity": "4", "unit_price": "5.00", "total_price": "20.00"}]
  }`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestDraft,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.AddCommand(ingestXMLCmd, ingestImageCmd, ingestDraftCmd)

	ingestCmd.PersistentFlags().String("company", "", "Target company id [REQUIRED]")
	ingestCmd.PersistentFlags().Bool("json", false, "Print the stored invoice as JSON")
	ingestCmd.PersistentFlags().StringP("output", "o", "", "Output file path (default: stdout)")
	ingestCmd.PersistentFlags().Int("timeout", 300, "Processing timeout in seconds")
	_ = ingestCmd.MarkPersistentFlagRequired("company")
}

// ingestFlags are shared by every ingest subcommand.
type ingestFlags struct {
	companyID   string
	jsonOutput  bool
	outputPath  string
	timeoutSecs int
}

func readIngestFlags(cmd *cobra.Command) ingestFlags {
	var f ingestFlags
	f.companyID, _ = cmd.Flags().GetString("company")
	f.jsonOutput, _ = cmd.Flags().GetBool("json")
	f.outputPath, _ = cmd.Flags().GetString("output")
	f.timeoutSecs, _ = cmd.Flags().GetInt("timeout")
	f.companyID = strings.TrimSpace(f.companyID)
	return f
}

func runIngestXML(cmd *cobra.Command, args []string) error {
	return runIngest(cmd, args[0], false, func(ctx context.Context, svc *ingest.Service, companyID string) (*models.Invoice, error) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read XML file: %w", err)
		}
		return svc.IngestXML(ctx, companyID, string(data))
	})
}

func runIngestImage(cmd *cobra.Command, args []string) error {
	return runIngest(cmd, args[0], true, func(ctx context.Context, svc *ingest.Service, companyID string) (*models.Invoice, error) {
		return svc.IngestOCRImage(ctx, companyID, args[0])
	})
}

func runIngestDraft(cmd *cobra.Command, args []string) error {
	return runIngest(cmd, args[0], false, func(ctx context.Context, svc *ingest.Service, companyID string) (*models.Invoice, error) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read draft file: %w", err)
		}
		draft, err := parseDraftFile(data)
		if err != nil {
			return nil, err
		}
		return svc.IngestDraft(ctx, companyID, draft)
	})
}

type ingestFunc func(ctx context.Context, svc *ingest.Service, companyID string) (*models.Invoice, error)

func runIngest(cmd *cobra.Command, path string, needsOCR bool, run ingestFunc) error {
	log := logger.WithComponent("ingest")

	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	flags := readIngestFlags(cmd)

	log.Info().
		Str("file", path).
		Str("company_id", flags.companyID).
		Str("command", cmd.Name()).
		Msg("Starting ingestion")

	ctx, cancel := createContextWithTimeout(flags.timeoutSecs, log)
	defer cancel()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	svc, closeOCR, err := newIngestService(ctx, cfg, store, needsOCR, flags.companyID, log)
	if err != nil {
		return err
	}
	defer closeOCR()

	invoice, err := run(ctx, svc, flags.companyID)
	if err != nil {
		return handleIngestError(err, flags.companyID, log)
	}

	var out strings.Builder
	if flags.jsonOutput {
		data, err := marshalJSON(invoice)
		if err != nil {
			return err
		}
		out.Write(data)
	} else {
		printInvoiceSummary(&out, invoice)
	}
	return writeOutput(cmd, flags.outputPath, []byte(out.String()), log)
}

// newIngestService wires the ingestion service. The OCR engine is only created
// when needed; the returned close function is always safe to call.
func newIngestService(ctx context.Context, cfg *config.Config, store *sqlstore.Store, needsOCR bool, companyID string, log zerolog.Logger) (*ingest.Service, func(), error) {
	serviceLog := logger.WithCompany("ingest", companyID)
	opts := ingest.Options{
		Logger:           &serviceLog,
		RejectDuplicates: cfg.RejectDuplicateInvoices,
	}

	closeOCR := func() {}
	if needsOCR {
		ocrService, err := createOCRService(ctx, cfg, logger.WithComponent("ocr"))
		if err != nil {
			return nil, closeOCR, err
		}
		opts.Recognizer = ocrService
		closeOCR = func() {
			if err := ocrService.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close OCR engine")
			}
		}
	}

	return ingest.NewService(store, opts), closeOCR, nil
}

func printInvoiceSummary(w io.Writer, invoice *models.Invoice) {
	fmt.Fprintf(w, "Invoice:  %s\n", invoice.ID)
	fmt.Fprintf(w, "Number:   %s", invoice.InvoiceNumber)
	if invoice.Series != nil {
		fmt.Fprintf(w, " (series %s)", *invoice.Series)
	}
	fmt.Fprintln(w)
	if invoice.IssueDate != nil {
		fmt.Fprintf(w, "Issued:   %s\n", invoice.IssueDate.Format("2006-01-02"))
	}
	if invoice.Supplier != nil {
		fmt.Fprintf(w, "Supplier: %s (%s)\n", invoice.Supplier.Name, taxid.Format(invoice.Supplier.TaxID))
	}
	fmt.Fprintf(w, "Total:    R$ %s\n", invoice.TotalAmount.StringFixed(2))
	fmt.Fprintf(w, "Items:    %d\n", len(invoice.Items))
	for _, item := range invoice.Items {
		name := ""
		stock := ""
		if item.Product != nil {
			name = item.Product.Name
			stock = item.Product.CurrentStockQuantity.String()
		}
		fmt.Fprintf(w, "  %3d  %-40s %10s x %10s = %12s  stock %s\n",
			item.Position+1, name, item.Quantity.String(), item.UnitPrice.StringFixed(2),
			item.TotalPrice.StringFixed(2), stock)
	}
}
