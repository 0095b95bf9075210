package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"inventory/internal/extraction"
	"inventory/internal/logger"
	"inventory/internal/ocr"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr [image-file]",
	Short: "Recognize a receipt image without storing anything",
	Long: `Run OCR on a receipt image and print the recognized text, or the invoice
draft that "ingest image" would store.

Supported files are JPEG, PNG, GIF, BMP, WEBP, TIFF and PDF up to 20MB.
PDF and TIFF files are limited to 5 pages.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  OCR_ENGINE - vision (default) or documentai`,
	Example: `  # Print recognized text
  inventory ocr cupom.jpg

  # Show the extracted draft
  inventory ocr cupom.jpg --draft

  # Include metadata and output as JSON
  inventory ocr cupom.jpg --metadata --json -o result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

// OCROutput represents the JSON output structure when --json flag is used
type OCROutput struct {
	Text               string    `json:"text"`
	Engine             string    `json:"engine,omitempty"`
	PageCount          int       `json:"page_count,omitempty"`
	Confidence         float32   `json:"confidence,omitempty"`
	LanguageCodes      []string  `json:"language_codes,omitempty"`
	ProcessedAt        time.Time `json:"processed_at,omitempty"`
	ProcessingDuration string    `json:"processing_duration,omitempty"`
	FileName           string    `json:"file_name"`
}

func init() {
	rootCmd.AddCommand(ocrCmd)

	ocrCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	ocrCmd.Flags().BoolP("metadata", "m", false, "Include metadata in output")
	ocrCmd.Flags().Bool("json", false, "Output as JSON")
	ocrCmd.Flags().Bool("draft", false, "Print the extracted invoice draft as JSON")
	ocrCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runOCR(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ocr")

	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	outputPath, _ := cmd.Flags().GetString("output")
	includeMetadata, _ := cmd.Flags().GetBool("metadata")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	draftOutput, _ := cmd.Flags().GetBool("draft")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]

	log.Info().
		Str("file", imagePath).
		Str("output", outputPath).
		Bool("metadata", includeMetadata).
		Bool("json", jsonOutput).
		Bool("draft", draftOutput).
		Int("timeout", timeoutSecs).
		Msg("Starting OCR processing")

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	ocrService, err := createOCRService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ocrService.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close OCR engine")
		}
	}()

	result, err := ocrService.RecognizeFile(ctx, imagePath)
	if err != nil {
		return handleOCRError(err, log)
	}

	log.Info().
		Int("page_count", result.PageCount).
		Float32("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Int("text_length", len(result.Text)).
		Msg("OCR processing completed successfully")

	var outputData []byte
	switch {
	case draftOutput:
		draft := extraction.NewOCRTextExtractor(logger.WithComponent("extraction")).Extract(result.Text)
		outputData, err = marshalJSON(draft)
	case jsonOutput:
		outputData, err = marshalJSON(OCROutput{
			Text:               result.Text,
			Engine:             result.Engine,
			PageCount:          result.PageCount,
			Confidence:         result.Confidence,
			LanguageCodes:      result.LanguageCodes,
			ProcessedAt:        result.ProcessedAt,
			ProcessingDuration: result.ProcessingDuration.String(),
			FileName:           filepath.Base(imagePath),
		})
	default:
		outputData = []byte(formatOCRText(result, imagePath, includeMetadata))
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON output")
		return err
	}

	return writeOutput(cmd, outputPath, outputData, log)
}

func formatOCRText(result *ocr.Result, imagePath string, includeMetadata bool) string {
	var output strings.Builder
	if includeMetadata {
		output.WriteString(fmt.Sprintf("=== OCR Results for %s ===\n", filepath.Base(imagePath)))
		output.WriteString(fmt.Sprintf("Engine: %s\n", result.Engine))
		if result.PageCount > 0 {
			output.WriteString(fmt.Sprintf("Pages processed: %d\n", result.PageCount))
		}
		if result.Confidence > 0 {
			output.WriteString(fmt.Sprintf("Confidence: %.1f%%\n", result.Confidence*100))
		}
		if len(result.LanguageCodes) > 0 {
			output.WriteString(fmt.Sprintf("Languages: %s\n", strings.Join(result.LanguageCodes, ", ")))
		}
		output.WriteString(fmt.Sprintf("Processing time: %v\n", result.ProcessingDuration))
		output.WriteString(fmt.Sprintf("Processed at: %s\n", result.ProcessedAt.Format(time.RFC3339)))
		output.WriteString("\n=== Extracted Text ===\n\n")
	}
	output.WriteString(result.Text)
	if !strings.HasSuffix(result.Text, "\n") {
		output.WriteString("\n")
	}
	return output.String()
}

