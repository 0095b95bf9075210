package ingest

import (
	"context"

	"github.com/rs/zerolog"

	"inventory/internal/storage"
	"inventory/pkg/models"
)

// Assembler persists the invoice header and items of a resolution.
type Assembler struct {
	repo storage.Repository
	log  zerolog.Logger
}

func NewAssembler(repo storage.Repository, log zerolog.Logger) *Assembler {
	return &Assembler{repo: repo, log: log}
}

// Assemble stores the invoice and its items as one unit and returns it with
// company, supplier, items and products loaded.
func (a *Assembler) Assemble(ctx context.Context, res *Resolution, d *models.Draft) (*models.Invoice, error) {
	const op = "AssembleInvoice"

	items := make([]storage.InvoiceItemFields, 0, len(res.Lines))
	for _, line := range res.Lines {
		items = append(items, storage.InvoiceItemFields{
			ProductID:     line.Product.ID,
			Description:   descriptionOf(line.Item),
			Quantity:      line.Item.Quantity,
			UnitPrice:     line.Item.UnitPrice,
			TotalPrice:    line.Item.TotalPrice,
			UnitOfMeasure: line.Item.UnitOfMeasure,
			Barcode:       line.Item.Barcode,
		})
	}

	created, err := a.repo.CreateInvoice(ctx, storage.InvoiceHeader{
		CompanyID:     res.Company.ID,
		SupplierID:    res.Supplier.ID,
		InvoiceNumber: d.InvoiceNumber,
		Series:        d.Series,
		IssueDate:     d.IssueDate,
		TotalAmount:   d.TotalAmount,
	}, items)
	if err != nil {
		return nil, storageError(op, err, "invoice create")
	}

	invoice, err := a.repo.LoadInvoiceWithRelations(ctx, created.ID)
	if err != nil {
		return nil, storageError(op, err, "invoice reload")
	}

	a.log.Info().
		Str("invoice_id", invoice.ID).
		Str("invoice_number", invoice.InvoiceNumber).
		Int("items", len(invoice.Items)).
		Str("total_amount", invoice.TotalAmount.String()).
		Msg("Invoice stored")

	return invoice, nil
}

// descriptionOf falls back to the product name when the line has no description.
func descriptionOf(item models.DraftItem) string {
	if item.Description != "" {
		return item.Description
	}
	return item.ProductName
}
