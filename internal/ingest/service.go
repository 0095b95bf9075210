// Package ingest turns extracted invoice drafts into stored invoices.
//
// Three entry points exist, one per source: a ready-made draft, an image that
// goes through OCR, and NF-e XML text. All of them resolve the company first,
// then converge on the same reconcile and assemble steps:
//
//  1. the target company must exist (ErrUnknownCompany otherwise)
//  2. the draft is validated (ErrInvalidDraft)
//  3. the supplier is matched by tax id or created
//  4. each item is matched to a product (barcode, then name) or created, and
//     stock is accumulated
//  5. the invoice header and items are stored in one transaction
//
// Product writes in step 4 are committed individually and are not rolled back
// when step 5 fails.
package ingest

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"inventory/internal/extraction"
	"inventory/internal/logger"
	"inventory/internal/ocr"
	"inventory/internal/storage"
	"inventory/pkg/models"
)

// ErrNoRecognizer is returned by IngestOCRImage when the service was built
// without an OCR engine.
var ErrNoRecognizer = errors.New("no OCR recognizer configured")

var (
	totalsAbsoluteTolerance = decimal.RequireFromString("0.05")
	totalsRelativeTolerance = decimal.RequireFromString("0.01")
)

// Options configures a Service.
type Options struct {
	// Recognizer reads text from images. Optional; only IngestOCRImage needs it.
	Recognizer ocr.Recognizer

	// Logger defaults to the global logger with component "ingest".
	Logger *zerolog.Logger

	// RejectDuplicates refuses a draft whose (supplier, number, series) was
	// already stored for the company.
	RejectDuplicates bool
}

// Service runs ingestion pipelines against a repository.
type Service struct {
	recognizer ocr.Recognizer
	ocrText    *extraction.OCRTextExtractor
	nfeXML     *extraction.NFeXMLExtractor
	reconciler *Reconciler
	assembler  *Assembler
	log        zerolog.Logger
}

func NewService(repo storage.Repository, opts Options) *Service {
	log := logger.WithComponent("ingest")
	if opts.Logger != nil {
		log = *opts.Logger
	}

	return &Service{
		recognizer: opts.Recognizer,
		ocrText:    extraction.NewOCRTextExtractor(log.With().Str("source", "ocr").Logger()),
		nfeXML:     extraction.NewNFeXMLExtractor(log.With().Str("source", "xml").Logger()),
		reconciler: NewReconciler(repo, log, opts.RejectDuplicates),
		assembler:  NewAssembler(repo, log),
		log:        log,
	}
}

// IngestDraft stores a draft that was produced elsewhere.
func (s *Service) IngestDraft(ctx context.Context, companyID string, d *models.Draft) (*models.Invoice, error) {
	const op = "IngestDraft"

	company, err := s.reconciler.ResolveCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.ingest(ctx, op, company, d)
}

// IngestOCRImage recognizes the text of the image at imagePath and stores
// the best-effort draft extracted from it. Fields that OCR cannot recover are
// stored as sentinel values.
func (s *Service) IngestOCRImage(ctx context.Context, companyID, imagePath string) (*models.Invoice, error) {
	const op = "IngestOCRImage"

	company, err := s.reconciler.ResolveCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	draft, err := s.extractImage(ctx, op, imagePath)
	if err != nil {
		return nil, err
	}
	return s.ingest(ctx, op, company, draft)
}

// ExtractImage runs OCR and OCR text extraction on one image without touching
// storage.
func (s *Service) ExtractImage(ctx context.Context, imagePath string) (*models.Draft, error) {
	return s.extractImage(ctx, "ExtractImage", imagePath)
}

func (s *Service) extractImage(ctx context.Context, op, imagePath string) (*models.Draft, error) {
	if s.recognizer == nil {
		return nil, WrapIngestError(op, ErrNoRecognizer, "")
	}

	text, err := s.recognizer.RecognizeText(ctx, imagePath)
	switch {
	case errors.Is(err, ocr.ErrEmptyDocument):
		s.log.Warn().Str("image", imagePath).Msg("OCR found no text, storing placeholder draft")
		text = ""
	case err != nil:
		return nil, WrapIngestError(op, err, "text recognition")
	}

	s.log.Debug().Str("image", imagePath).Int("chars", len(text)).Msg("OCR text received")
	s.log.Trace().Str("text", text).Msg("OCR raw text")

	return s.ocrText.Extract(text), nil
}

// IngestXML extracts an NF-e document and stores it. Extraction failures
// abort before any write.
func (s *Service) IngestXML(ctx context.Context, companyID, xmlText string) (*models.Invoice, error) {
	const op = "IngestXML"

	company, err := s.reconciler.ResolveCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	draft, err := s.nfeXML.ExtractString(xmlText)
	if err != nil {
		return nil, WrapIngestError(op, err, "")
	}
	return s.ingest(ctx, op, company, draft)
}

// ExtractOCRText runs OCR extraction alone, without touching storage.
func (s *Service) ExtractOCRText(text string) *models.Draft {
	return s.ocrText.Extract(text)
}

// ExtractXML runs XML extraction alone, without touching storage.
func (s *Service) ExtractXML(xmlText string) (*models.Draft, error) {
	return s.nfeXML.ExtractString(xmlText)
}

func (s *Service) ingest(ctx context.Context, op string, company *models.Company, d *models.Draft) (*models.Invoice, error) {
	if err := ValidateDraft(d); err != nil {
		return nil, WrapIngestError(op, err, "draft validation")
	}
	s.checkTotals(d)

	res, err := s.reconciler.Reconcile(ctx, company, d)
	if err != nil {
		return nil, err
	}

	invoice, err := s.assembler.Assemble(ctx, res, d)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("op", op).
		Str("company_id", company.ID).
		Str("supplier_id", res.Supplier.ID).
		Bool("supplier_created", res.SupplierCreated).
		Str("invoice_id", invoice.ID).
		Msg("Ingestion completed")

	return invoice, nil
}

// checkTotals warns when the item totals do not add up to the document total.
func (s *Service) checkTotals(d *models.Draft) {
	sum := d.ItemsTotal()
	diff := sum.Sub(d.TotalAmount).Abs()
	if diff.LessThanOrEqual(totalsAbsoluteTolerance) {
		return
	}
	if !d.TotalAmount.IsZero() && diff.Div(d.TotalAmount.Abs()).LessThanOrEqual(totalsRelativeTolerance) {
		return
	}
	s.log.Warn().
		Str("invoice_number", d.InvoiceNumber).
		Str("items_total", sum.String()).
		Str("total_amount", d.TotalAmount.String()).
		Msg("Item totals do not match document total")
}
