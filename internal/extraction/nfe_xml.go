package extraction

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"inventory/internal/numeric"
	"inventory/internal/taxid"
	"inventory/internal/xmltree"
	"inventory/pkg/models"
)

const (
	// NoBarcode is the value NF-e issuers write in cEAN when a product has no GTIN.
	NoBarcode = "SEM GTIN"

	DefaultSeries       = "1"
	DefaultNFeNumber    = "0"
	DefaultIssuerName   = "Fornecedor XML"
	DefaultProductName  = "ITEM SEM NOME"
	defaultXMLAmount    = "0"
	nfeDateLayout       = "2006-01-02"
	issueTimestampField = "dhEmi"
	issueDateField      = "dEmi"
)

// documentRoots are the envelope paths under which issuing systems place the
// NFe element, tried in order.
var documentRoots = [][]string{
	{"nfeProc", "NFe"},
	{"NFe"},
	{"nfe"},
	{"nfeProc", "nfe"},
}

// NFeXMLExtractor reads NF-e documents. Unlike OCR extraction it fails on
// anything that does not have the expected shape.
type NFeXMLExtractor struct {
	log zerolog.Logger
}

func NewNFeXMLExtractor(log zerolog.Logger) *NFeXMLExtractor {
	return &NFeXMLExtractor{log: log}
}

// ExtractString parses xmlText and extracts a draft from it.
func (e *NFeXMLExtractor) ExtractString(xmlText string) (*models.Draft, error) {
	const op = "ExtractXML"

	doc, err := xmltree.ParseString(xmlText)
	if err != nil {
		return nil, WrapDocumentError(op, fmt.Errorf("%w: %w", ErrMalformedDocument, err), "parse failed")
	}
	return e.Extract(doc)
}

// Extract walks a parsed document tree.
func (e *NFeXMLExtractor) Extract(doc *xmltree.Node) (*models.Draft, error) {
	const op = "ExtractXML"

	var nfe *xmltree.Node
	for _, path := range documentRoots {
		if nfe = doc.Find(path...); nfe != nil {
			break
		}
	}
	if nfe == nil {
		return nil, WrapDocumentError(op, ErrMalformedDocument, "no NFe element under a known envelope")
	}

	inf := nfe.Child("infNFe")
	if inf == nil {
		return nil, WrapDocumentError(op, ErrMalformedDocument, "infNFe block missing")
	}

	ide := inf.Child("ide")
	emit := inf.Child("emit")

	draft := &models.Draft{
		InvoiceNumber: ide.ValueOr(DefaultNFeNumber, "nNF"),
		Series:        ide.ValueOr(DefaultSeries, "serie"),
	}

	issueDate, err := parseIssueDate(ide)
	if err != nil {
		return nil, WrapDocumentError(op, fmt.Errorf("%w: %w", ErrMalformedDocument, err), "ide issue date")
	}
	draft.IssueDate = issueDate

	rawTaxID, ok := emit.Lookup("CNPJ")
	if !ok {
		return nil, WrapDocumentError(op, ErrMalformedDocument, "emit/CNPJ missing")
	}
	draft.Supplier.TaxID = taxid.Normalize(rawTaxID)
	if !taxid.Validate(rawTaxID) {
		e.log.Warn().Str("tax_id", rawTaxID).Msg("Issuer tax id fails check digit validation")
	}
	draft.Supplier.Name = emit.ValueOr(DefaultIssuerName, "xNome")
	draft.Supplier.TradeName = emit.ValueOr(draft.Supplier.Name, "xFant")

	rawTotal := inf.ValueOr(defaultXMLAmount, "total", "ICMSTot", "vNF")
	if draft.TotalAmount, err = numeric.ParseDotted(rawTotal); err != nil {
		return nil, WrapDocumentError(op, err, "total/ICMSTot/vNF")
	}

	for i, det := range inf.ChildrenNamed("det") {
		prod := det.Child("prod")
		if prod == nil {
			e.log.Warn().Int("det_index", i).Msg("Detail block without prod element skipped")
			continue
		}
		item, err := readProduct(prod)
		if err != nil {
			return nil, WrapDocumentError(op, err, fmt.Sprintf("det[%d]", i))
		}
		draft.Items = append(draft.Items, item)
	}

	if len(draft.Items) == 0 {
		return nil, WrapDocumentError(op, ErrNoLineItems, "no det/prod blocks")
	}

	e.log.Debug().
		Str("tax_id", draft.Supplier.TaxID).
		Str("invoice_number", draft.InvoiceNumber).
		Str("series", draft.Series).
		Int("items", len(draft.Items)).
		Msg("NF-e XML extracted")

	return draft, nil
}

func readProduct(prod *xmltree.Node) (models.DraftItem, error) {
	item := models.DraftItem{
		ProductName:   prod.ValueOr(DefaultProductName, "xProd"),
		UnitOfMeasure: prod.ValueOr(DefaultUnitOfMeasure, "uCom"),
	}
	if ean, ok := prod.Lookup("cEAN"); ok && ean != NoBarcode {
		item.Barcode = ean
	}

	fields := []struct {
		name string
		dst  *decimal.Decimal
	}{
		{"qCom", &item.Quantity},
		{"vUnCom", &item.UnitPrice},
		{"vProd", &item.TotalPrice},
	}
	for _, f := range fields {
		v, err := numeric.ParseDecimal(prod.ValueOr(defaultXMLAmount, f.name))
		if err != nil {
			return models.DraftItem{}, fmt.Errorf("prod/%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return item, nil
}

// parseIssueDate reads dhEmi (timestamp with offset, NF-e 3.10+) or dEmi
// (plain date, NF-e 2.00). The calendar date as issued is kept and the time
// of day is dropped.
func parseIssueDate(ide *xmltree.Node) (*time.Time, error) {
	if raw, ok := ide.Lookup(issueTimestampField); ok {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", issueTimestampField, raw, err)
		}
		d := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		return &d, nil
	}
	if raw, ok := ide.Lookup(issueDateField); ok {
		d, err := time.Parse(nfeDateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", issueDateField, raw, err)
		}
		return &d, nil
	}
	return nil, nil
}
