package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"inventory/internal/config"
	"inventory/internal/extraction"
	"inventory/internal/ingest"
	"inventory/internal/numeric"
	"inventory/internal/ocr"
	"inventory/internal/storage/sqlstore"
)

// openStore connects to the configured database and applies pending migrations.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*sqlstore.Store, error) {
	store, err := sqlstore.Open(ctx, sqlstore.Config{
		Driver:          cfg.DatabaseDriver,
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("driver", cfg.DatabaseDriver).
			Msg("Failed to open database")
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	log.Debug().Str("driver", cfg.DatabaseDriver).Msg("Database opened")
	return store, nil
}

// createOCRService creates the configured OCR engine behind a rate limiter.
func createOCRService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*ocr.Service, error) {
	if cfg.OCREngine == ocr.EngineDocumentAI {
		if err := cfg.ValidateDocumentAI(); err != nil {
			return nil, err
		}
	}

	engine, err := ocr.NewEngine(ctx, ocr.EngineConfig{
		Kind:          cfg.OCREngine,
		LanguageHints: cfg.OCRLanguageHints,
		DocumentAI: ocr.DocumentAIConfig{
			ProjectID:        cfg.GoogleCloudProject,
			Location:         cfg.GoogleCloudLocation,
			ProcessorID:      cfg.DocumentAIProcessorID,
			ProcessorVersion: cfg.DocumentAIProcessorVersion,
		},
	})
	if err != nil {
		if errors.Is(err, ocr.ErrMissingCredentials) || errors.Is(err, ocr.ErrInvalidCredentials) {
			log.Error().
				Err(err).
				Msg("Google Cloud credentials validation failed")
			return nil, &helpError{
				err:  fmt.Errorf("validating Google Cloud credentials: %w", err),
				help: fmt.Sprintf(credentialsCheckHelp, cfg.OCREngine),
			}
		}
		log.Error().
			Err(err).
			Str("engine", cfg.OCREngine).
			Msg("Failed to create OCR engine")
		return nil, fmt.Errorf("failed to create OCR engine: %w", err)
	}

	limiter := ocr.NewRateLimiter(cfg.OCRRequestsPerSecond, cfg.OCRBurst)

	log.Debug().
		Str("engine", engine.Name()).
		Float64("requests_per_second", cfg.OCRRequestsPerSecond).
		Msg("OCR service created")
	return ocr.NewService(engine, limiter, log), nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// handleIngestError provides user-friendly error messages for ingestion failures
func handleIngestError(err error, companyID string, log zerolog.Logger) error {
	log.Error().Err(err).Str("company_id", companyID).Msg("Ingestion failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("ingestion timed out. Try increasing --timeout")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("ingestion was canceled")
	case errors.Is(err, ingest.ErrUnknownCompany):
		return fmt.Errorf("company %s does not exist. Create it with \"inventory company add\"", companyID)
	case errors.Is(err, ingest.ErrDuplicateInvoice):
		return fmt.Errorf("invoice was already ingested for this company: %w", err)
	case errors.Is(err, ingest.ErrInvalidDraft):
		return fmt.Errorf("invoice data is incomplete: %w", err)
	case errors.Is(err, extraction.ErrMalformedDocument):
		return fmt.Errorf("file is not a readable NF-e document: %w", err)
	case errors.Is(err, extraction.ErrNoLineItems):
		return fmt.Errorf("NF-e document has no product lines")
	case errors.Is(err, numeric.ErrInvalidNumberFormat):
		return fmt.Errorf("document contains an amount that is not a number: %w", err)
	case errors.Is(err, ingest.ErrNoRecognizer):
		return fmt.Errorf("no OCR engine is configured")
	case errors.Is(err, ingest.ErrStorage):
		return fmt.Errorf("database operation failed, nothing after the failing step was stored: %w", err)
	}

	var ocrErr *ocr.OCRError
	if errors.As(err, &ocrErr) {
		return handleOCRError(err, log)
	}
	return fmt.Errorf("ingestion failed: %w", err)
}

const credentialsCheckHelp = `Please verify:

1. GOOGLE_APPLICATION_CREDENTIALS points to a readable service account file, or
2. GOOGLE_CREDENTIALS contains the service account JSON
3. The service account may call the %s API`

const credentialsSetupHelp = `Please check your credentials:

1. Set GOOGLE_APPLICATION_CREDENTIALS to your service account JSON file path:
   export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json

2. Or set GOOGLE_CREDENTIALS with inline JSON

3. If using Application Default Credentials, run:
   gcloud auth application-default login`

// helpError appends multi-line guidance to the error it wraps.
type helpError struct {
	err  error
	help string
}

func (e *helpError) Error() string { return e.err.Error() + "\n\n" + e.help }

func (e *helpError) Unwrap() error { return e.err }

// handleOCRError provides user-friendly error messages for OCR failures
func handleOCRError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("OCR processing failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("OCR processing timed out. Try increasing --timeout or processing a smaller file")
	case errors.Is(err, context.Canceled), errors.Is(err, ocr.ErrContextCanceled):
		return fmt.Errorf("OCR processing was canceled")
	case errors.Is(err, ocr.ErrImageNotFound):
		return fmt.Errorf("image file not found: %w", err)
	case errors.Is(err, ocr.ErrImageTooLarge):
		return fmt.Errorf("image is too large (maximum 20MB). Try a lower resolution scan")
	case errors.Is(err, ocr.ErrUnsupportedImage):
		return fmt.Errorf("unsupported file type. Use JPEG, PNG, GIF, BMP, WEBP, TIFF or PDF: %w", err)
	case errors.Is(err, ocr.ErrEmptyDocument):
		return fmt.Errorf("no readable text found in the image")
	case errors.Is(err, ocr.ErrMissingCredentials), errors.Is(err, ocr.ErrInvalidCredentials):
		return &helpError{
			err:  fmt.Errorf("authenticating with Google Cloud: %w", err),
			help: credentialsSetupHelp,
		}
	case errors.Is(err, ocr.ErrQuotaExceeded):
		return fmt.Errorf("quota exceeded for Google Cloud OCR. Lower OCR_REQUESTS_PER_SECOND or check your project quotas")
	case errors.Is(err, ocr.ErrOCRFailed):
		return fmt.Errorf("OCR processing failed. This may be due to network issues or service unavailability: %w", err)
	default:
		return fmt.Errorf("OCR processing failed: %w", err)
	}
}

// writeOutput writes data to outputPath, or to the command's stdout when the
// path is empty.
func writeOutput(cmd *cobra.Command, outputPath string, data []byte, log zerolog.Logger) error {
	if outputPath == "" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			log.Error().Err(err).Msg("Failed to write to stdout")
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		log.Error().
			Err(err).
			Str("output_file", outputPath).
			Msg("Failed to write output file")
		return fmt.Errorf("failed to write output file: %w", err)
	}
	log.Info().
		Str("output_file", outputPath).
		Int("bytes", len(data)).
		Msg("Output written to file")
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func marshalJSON(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to create JSON output: %w", err)
	}
	return append(data, '\n'), nil
}
