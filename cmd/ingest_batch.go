package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"inventory/internal/extraction"
	"inventory/internal/ingest"
	"inventory/internal/logger"
	"inventory/internal/taxid"
	"inventory/pkg/models"
)

var ingestBatchCmd = &cobra.Command{
	Use:   "batch [folder-path]",
	Short: "Ingest every NF-e XML and receipt image in a folder",
	Long: `Ingest all invoices found in a folder, recursively.

Files ending in .xml are read as NF-e documents; .jpg, .jpeg, .png, .gif,
.bmp, .webp, .tif, .tiff and .pdf files go through OCR. Extraction runs in
parallel (BATCH_WORKERS, default 4). The extracted drafts are then stored one
at a time in file name order, so a supplier or product that appears in
several files is created only once.

A failing file does not stop the batch.`,
	Example: `  inventory ingest batch ./notas --company 6f1c...

  # Only check that every file can be extracted
  inventory ingest batch ./notas --company 6f1c... --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestBatch,
}

func init() {
	ingestCmd.AddCommand(ingestBatchCmd)

	ingestBatchCmd.Flags().Bool("dry-run", false, "Extract files but don't store anything")
	ingestBatchCmd.Flags().Int("workers", 0, "Parallel extraction workers (default: BATCH_WORKERS)")
}

type batchKind int

const (
	kindXML batchKind = iota
	kindImage
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".webp": true, ".tif": true, ".tiff": true, ".pdf": true,
}

// BatchFile is one input of a batch run.
type BatchFile struct {
	Path  string
	Kind  batchKind
	Index int
}

// BatchResult represents the outcome of a single file
type BatchResult struct {
	File    BatchFile
	Draft   *models.Draft
	Invoice *models.Invoice
	Error   error
	Status  string // "success", "warning", "error"
}

func runIngestBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ingest-batch")

	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	flags := readIngestFlags(cmd)
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	numWorkers, _ := cmd.Flags().GetInt("workers")
	if numWorkers <= 0 {
		numWorkers = cfg.BatchWorkers
	}

	folderPath := args[0]
	folderInfo, err := os.Stat(folderPath)
	if err != nil {
		return fmt.Errorf("folder not found: %s", folderPath)
	}
	if !folderInfo.IsDir() {
		return fmt.Errorf("path is not a directory: %s", folderPath)
	}

	files, err := findBatchFiles(folderPath)
	if err != nil {
		return fmt.Errorf("failed to scan folder: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(files) == 0 {
		fmt.Fprintln(out, "No XML or image files found in folder.")
		return nil
	}

	log.Info().
		Str("folder", folderPath).
		Str("company_id", flags.companyID).
		Int("files", len(files)).
		Int("workers", numWorkers).
		Bool("dry_run", dryRun).
		Msg("Starting batch ingestion")

	ctx, cancel := createContextWithTimeout(flags.timeoutSecs, log)
	defer cancel()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	// An unknown company fails the whole batch before any OCR request is made.
	company, err := store.FindCompanyByID(ctx, flags.companyID)
	if err != nil {
		return fmt.Errorf("failed to look up company: %w", err)
	}
	if company == nil {
		return handleIngestError(ingest.ErrUnknownCompany, flags.companyID, log)
	}

	svc, closeOCR, err := newIngestService(ctx, cfg, store, hasImages(files), flags.companyID, log)
	if err != nil {
		return err
	}
	defer closeOCR()

	fmt.Fprintf(out, "Extracting %d files with %d workers...\n", len(files), numWorkers)
	results := extractInParallel(ctx, svc, files, numWorkers, out, log)

	if !dryRun {
		fmt.Fprintln(out, "Storing invoices...")
		storeDrafts(ctx, svc, flags.companyID, results, out, log)
	}

	successCount, warningCount, errorCount := 0, 0, 0
	for _, result := range results {
		switch result.Status {
		case "success":
			successCount++
		case "warning":
			warningCount++
		case "error":
			errorCount++
		}
	}

	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintf(out, "Succeeded: %d\n", successCount)
	if warningCount > 0 {
		fmt.Fprintf(out, "With warnings: %d\n", warningCount)
	}
	if errorCount > 0 {
		fmt.Fprintf(out, "Failed: %d\n", errorCount)
	}

	log.Info().
		Int("total", len(files)).
		Int("success", successCount).
		Int("warnings", warningCount).
		Int("errors", errorCount).
		Msg("Batch ingestion completed")

	if errorCount > 0 {
		return fmt.Errorf("%d of %d files failed", errorCount, len(files))
	}
	return nil
}

// findBatchFiles lists supported files below folderPath in lexical path order.
func findBatchFiles(folderPath string) ([]BatchFile, error) {
	var files []BatchFile

	err := filepath.Walk(folderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(info.Name()))
		switch {
		case ext == ".xml":
			files = append(files, BatchFile{Path: path, Kind: kindXML})
		case imageExtensions[ext]:
			files = append(files, BatchFile{Path: path, Kind: kindImage})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	for i := range files {
		files[i].Index = i
	}
	return files, nil
}

func hasImages(files []BatchFile) bool {
	for _, f := range files {
		if f.Kind == kindImage {
			return true
		}
	}
	return false
}

func extractFile(ctx context.Context, svc *ingest.Service, file BatchFile) (*models.Draft, error) {
	if file.Kind == kindImage {
		return svc.ExtractImage(ctx, file.Path)
	}
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read XML file: %w", err)
	}
	return svc.ExtractXML(string(data))
}

// extractInParallel extracts drafts using a worker pool pattern. Results keep
// the order of files.
func extractInParallel(ctx context.Context, svc *ingest.Service, files []BatchFile, numWorkers int, out io.Writer, log zerolog.Logger) []BatchResult {
	jobs := make(chan BatchFile, len(files))
	results := make([]BatchResult, len(files))

	var processedCount int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for file := range jobs {
				log.Debug().
					Int("worker", workerID).
					Str("file", file.Path).
					Msg("Worker extracting file")

				result := BatchResult{File: file, Status: "success"}
				result.Draft, result.Error = extractFile(ctx, svc, file)
				if result.Error != nil {
					result.Status = "error"
				}
				results[file.Index] = result

				mu.Lock()
				processedCount++
				fmt.Fprintf(out, "[%d/%d] %s - %s", processedCount, len(files), filepath.Base(file.Path), getStatusEmoji(result.Status))
				if result.Error != nil {
					fmt.Fprintf(out, " (%s)", result.Error.Error())
				} else {
					fmt.Fprintf(out, " (R$ %s, %d items)", result.Draft.TotalAmount.StringFixed(2), len(result.Draft.Items))
				}
				fmt.Fprintln(out)
				mu.Unlock()
			}
		}(w)
	}

	for _, file := range files {
		jobs <- file
	}
	close(jobs)

	wg.Wait()

	return results
}

// storeDrafts ingests the extracted drafts sequentially.
func storeDrafts(ctx context.Context, svc *ingest.Service, companyID string, results []BatchResult, out io.Writer, log zerolog.Logger) {
	for i := range results {
		result := &results[i]
		if result.Error != nil {
			continue
		}

		invoice, err := svc.IngestDraft(ctx, companyID, result.Draft)
		name := filepath.Base(result.File.Path)
		if err != nil {
			result.Error = handleIngestError(err, companyID, log)
			result.Status = "error"
			fmt.Fprintf(out, "  %s - %s (%s)\n", name, getStatusEmoji(result.Status), result.Error.Error())
			continue
		}

		result.Invoice = invoice
		if isPlaceholderDraft(result.File, result.Draft) {
			result.Status = "warning"
		}
		fmt.Fprintf(out, "  %s - %s invoice %s\n", name, getStatusEmoji(result.Status), invoice.ID)
	}
}

// isPlaceholderDraft reports whether OCR fell back to sentinel values that need
// manual review. XML drafts never carry placeholders.
func isPlaceholderDraft(file BatchFile, d *models.Draft) bool {
	if file.Kind != kindImage || d == nil {
		return false
	}
	if taxid.Normalize(d.Supplier.TaxID) == taxid.Normalize(extraction.PlaceholderTaxID) ||
		d.Supplier.Name == extraction.PlaceholderSupplierName ||
		d.InvoiceNumber == extraction.PlaceholderInvoiceNumber {
		return true
	}
	for _, item := range d.Items {
		if item.ProductName == extraction.UnrecognizedItemName {
			return true
		}
	}
	return false
}

// getStatusEmoji returns an emoji for the processing status
func getStatusEmoji(status string) string {
	switch status {
	case "success":
		return "✅"
	case "warning":
		return "⚠️"
	case "error":
		return "❌"
	default:
		return "❓"
	}
}
