package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"inventory/internal/storage"
	"inventory/pkg/models"
)

const (
	invoiceColumns = `id, company_id, supplier_id, invoice_number, series, issue_date, total_amount, created_at, updated_at`
	itemColumns    = `id, invoice_id, product_id, position, description, quantity, unit_price, total_price,
		unit_of_measure, barcode, created_at`
)

// CreateInvoice writes the header and all items in one transaction. Either
// everything is stored or nothing is.
func (s *Store) CreateInvoice(ctx context.Context, header storage.InvoiceHeader, items []storage.InvoiceItemFields) (*models.Invoice, error) {
	ts := now()
	invoice := &models.Invoice{
		ID:            uuid.New().String(),
		CompanyID:     header.CompanyID,
		SupplierID:    header.SupplierID,
		InvoiceNumber: header.InvoiceNumber,
		Series:        nullString(header.Series),
		IssueDate:     header.IssueDate,
		TotalAmount:   header.TotalAmount,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (:id, :company_id, :supplier_id, :invoice_number, :series, :issue_date, :total_amount, :created_at, :updated_at)`,
		invoice)
	if err != nil {
		return nil, fmt.Errorf("inserting invoice: %w", err)
	}

	for i, fields := range items {
		item := models.InvoiceItem{
			ID:            uuid.New().String(),
			InvoiceID:     invoice.ID,
			ProductID:     fields.ProductID,
			Position:      i,
			Description:   nullString(fields.Description),
			Quantity:      fields.Quantity,
			UnitPrice:     fields.UnitPrice,
			TotalPrice:    fields.TotalPrice,
			UnitOfMeasure: nullString(fields.UnitOfMeasure),
			Barcode:       nullString(fields.Barcode),
			CreatedAt:     ts,
		}
		_, err = tx.NamedExecContext(ctx, `INSERT INTO invoice_items (`+itemColumns+`)
			VALUES (:id, :invoice_id, :product_id, :position, :description, :quantity, :unit_price, :total_price,
				:unit_of_measure, :barcode, :created_at)`, item)
		if err != nil {
			return nil, fmt.Errorf("inserting invoice item %d: %w", i, err)
		}
		invoice.Items = append(invoice.Items, item)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing invoice: %w", err)
	}
	return invoice, nil
}

// LoadInvoiceWithRelations returns the invoice with its company, supplier,
// items in document order and each item's product.
func (s *Store) LoadInvoiceWithRelations(ctx context.Context, id string) (*models.Invoice, error) {
	invoice, err := get[models.Invoice](ctx, s.db,
		s.db.Rebind(`SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`), id)
	if err != nil {
		return nil, fmt.Errorf("loading invoice: %w", err)
	}
	if invoice == nil {
		return nil, fmt.Errorf("%w: invoice %s", storage.ErrNotFound, id)
	}

	if invoice.Company, err = s.FindCompanyByID(ctx, invoice.CompanyID); err != nil {
		return nil, fmt.Errorf("loading company: %w", err)
	}
	invoice.Supplier, err = get[models.Supplier](ctx, s.db,
		s.db.Rebind(`SELECT `+supplierColumns+` FROM suppliers WHERE id = ?`), invoice.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("loading supplier: %w", err)
	}

	items := []models.InvoiceItem{}
	err = s.db.SelectContext(ctx, &items,
		s.db.Rebind(`SELECT `+itemColumns+` FROM invoice_items WHERE invoice_id = ? ORDER BY position`), id)
	if err != nil {
		return nil, fmt.Errorf("loading invoice items: %w", err)
	}

	products, err := s.productsByID(ctx, items)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Product = products[items[i].ProductID]
	}
	invoice.Items = items

	return invoice, nil
}

func (s *Store) productsByID(ctx context.Context, items []models.InvoiceItem) (map[string]*models.Product, error) {
	byID := make(map[string]*models.Product, len(items))
	if len(items) == 0 {
		return byID, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := s.db.SelectContext(ctx, &products, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("loading invoice products: %w", err)
	}
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return byID, nil
}

func (s *Store) FindInvoiceByKey(ctx context.Context, key storage.InvoiceKey) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices
		WHERE company_id = ? AND supplier_id = ? AND invoice_number = ?`
	args := []interface{}{key.CompanyID, key.SupplierID, key.InvoiceNumber}

	if key.Series != "" {
		query += ` AND series = ?`
		args = append(args, key.Series)
	} else {
		query += ` AND series IS NULL`
	}
	query += ` ORDER BY created_at LIMIT 1`

	return get[models.Invoice](ctx, s.db, s.db.Rebind(query), args...)
}
