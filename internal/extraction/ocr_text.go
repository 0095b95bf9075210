package extraction

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"inventory/internal/numeric"
	"inventory/internal/taxid"
	"inventory/pkg/models"
)

// Sentinel values written when OCR text does not yield a field. They are
// stable so that degraded drafts can be found afterwards.
const (
	PlaceholderTaxID         = "00.000.000/0000-00"
	PlaceholderSupplierName  = "Fornecedor OCR"
	PlaceholderInvoiceNumber = "000000"
	PlaceholderSeries        = "1"

	UnrecognizedItemName        = "ITEM OCR - NÃO RECONHECIDO"
	UnrecognizedItemDescription = "Item não identificado pelo OCR"
	DefaultUnitOfMeasure        = "UN"

	// supplierNameWindow is how many characters before the tax id are taken
	// as the issuer name on a receipt header.
	supplierNameWindow = 60
)

var (
	whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)

	ocrTaxIDPattern         = regexp.MustCompile(`\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}`)
	ocrInvoiceNumberPattern = regexp.MustCompile(`(\d{5,10})\s+Consulta`)
	ocrTotalPattern         = regexp.MustCompile(`((?:\d{1,3}(?:\.\d{3})+|\d+),\d{2})\s*->`)

	// code, quantity, description, unit, unit count, four decimal-comma columns
	ocrItemPattern = regexp.MustCompile(
		`(\d{3,5})\s*\|?\s*(\d+)\s+(.+?)\s+(UN|DP)\s+(\d+)\s+(\d+,\d+)\s+(\d+,\d+)\s+(\d+,\d+)\s+(\d+,\d+)`)
)

// OCRTextExtractor turns raw receipt text into a draft. It never fails:
// every field that cannot be read falls back to a sentinel.
type OCRTextExtractor struct {
	log zerolog.Logger
}

func NewOCRTextExtractor(log zerolog.Logger) *OCRTextExtractor {
	return &OCRTextExtractor{log: log}
}

// Extract reads supplier, invoice number, total and line items from text.
func (e *OCRTextExtractor) Extract(rawText string) *models.Draft {
	text := CleanText(rawText)

	draft := &models.Draft{
		Supplier: models.DraftSupplier{
			Name:  PlaceholderSupplierName,
			TaxID: PlaceholderTaxID,
		},
		InvoiceNumber: PlaceholderInvoiceNumber,
		Series:        PlaceholderSeries,
		TotalAmount:   decimal.Zero,
	}

	if loc := ocrTaxIDPattern.FindStringIndex(text); loc != nil {
		found := text[loc[0]:loc[1]]
		draft.Supplier.TaxID = taxid.Normalize(found)
		if !taxid.Validate(found) {
			e.log.Warn().Str("tax_id", found).Msg("OCR tax id fails check digit validation")
		}
		if name := precedingText(text[:loc[0]], supplierNameWindow); name != "" {
			draft.Supplier.Name = name
		}
	} else {
		e.log.Warn().Msg("No tax id found in OCR text, using placeholder")
	}
	draft.Supplier.TradeName = draft.Supplier.Name

	if m := ocrInvoiceNumberPattern.FindStringSubmatch(text); m != nil {
		draft.InvoiceNumber = m[1]
	}

	if m := ocrTotalPattern.FindStringSubmatch(text); m != nil {
		draft.TotalAmount = e.parseAmount("total_amount", m[1])
	}

	for _, m := range ocrItemPattern.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[3])
		draft.Items = append(draft.Items, models.DraftItem{
			ProductName:   name,
			Description:   name,
			UnitOfMeasure: m[4],
			Quantity:      e.parseAmount("quantity", m[2]),
			UnitPrice:     e.parseAmount("unit_price", m[6]),
			TotalPrice:    e.parseAmount("total_price", m[7]),
		})
	}

	if len(draft.Items) == 0 {
		e.log.Warn().
			Str("total_amount", draft.TotalAmount.String()).
			Msg("No line items recognized in OCR text, adding placeholder item")
		draft.Items = []models.DraftItem{{
			ProductName:   UnrecognizedItemName,
			Description:   UnrecognizedItemDescription,
			UnitOfMeasure: DefaultUnitOfMeasure,
			Quantity:      decimal.NewFromInt(1),
			UnitPrice:     draft.TotalAmount,
			TotalPrice:    draft.TotalAmount,
		}}
	}

	e.log.Debug().
		Str("tax_id", draft.Supplier.TaxID).
		Str("invoice_number", draft.InvoiceNumber).
		Int("items", len(draft.Items)).
		Msg("OCR text extracted")

	return draft
}

func (e *OCRTextExtractor) parseAmount(field, raw string) decimal.Decimal {
	v, err := numeric.ParseBR(raw)
	if err != nil {
		e.log.Warn().Err(err).Str("field", field).Str("raw_value", raw).Msg("Unreadable OCR number, using zero")
		return decimal.Zero
	}
	return v
}

// CleanText drops invalid UTF-8 bytes, applies Unicode NFC normalization and
// collapses every whitespace run, newlines included, into a single space.
func CleanText(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(norm.NFC.String(s), " "))
}

// precedingText returns at most n characters from the end of s, trimmed.
func precedingText(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[len(runes)-n:]
	}
	return strings.TrimSpace(string(runes))
}
