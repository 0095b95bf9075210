package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"inventory/internal/storage"
	"inventory/pkg/models"
)

const productColumns = `id, supplier_id, name, description, barcode, unit_of_measure,
	cost_price, sale_price_suggested, current_stock_quantity, is_active, created_at, updated_at`

func (s *Store) findProduct(ctx context.Context, where string, args ...interface{}) (*models.Product, error) {
	return get[models.Product](ctx, s.db,
		s.db.Rebind(`SELECT `+productColumns+` FROM products WHERE `+where), args...)
}

func (s *Store) FindProductByBarcode(ctx context.Context, supplierID, barcode string) (*models.Product, error) {
	return s.findProduct(ctx, `supplier_id = ? AND barcode = ? ORDER BY created_at LIMIT 1`, supplierID, barcode)
}

func (s *Store) FindProductByName(ctx context.Context, supplierID, name string) (*models.Product, error) {
	return s.findProduct(ctx, `supplier_id = ? AND name = ? ORDER BY created_at LIMIT 1`, supplierID, name)
}

func (s *Store) CreateProduct(ctx context.Context, fields storage.ProductFields) (*models.Product, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		s.db.Rebind(`SELECT COUNT(*) > 0 FROM suppliers WHERE id = ?`), fields.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("checking supplier: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", storage.ErrUnknownSupplierReference, fields.SupplierID)
	}

	ts := now()
	product := &models.Product{
		ID:                   uuid.New().String(),
		SupplierID:           fields.SupplierID,
		Name:                 fields.Name,
		Description:          nullString(fields.Description),
		Barcode:              nullString(fields.Barcode),
		UnitOfMeasure:        nullString(fields.UnitOfMeasure),
		CostPrice:            decimal.NewNullDecimal(fields.CostPrice),
		SalePriceSuggested:   fields.SalePriceSuggested,
		CurrentStockQuantity: fields.StockQuantity,
		IsActive:             fields.IsActive,
		CreatedAt:            ts,
		UpdatedAt:            ts,
	}

	query := `INSERT INTO products (` + productColumns + `)
		VALUES (:id, :supplier_id, :name, :description, :barcode, :unit_of_measure,
			:cost_price, :sale_price_suggested, :current_stock_quantity, :is_active, :created_at, :updated_at)`
	if _, err := s.db.NamedExecContext(ctx, query, product); err != nil {
		return nil, fmt.Errorf("inserting product: %w", err)
	}
	return product, nil
}

// UpdateProduct replaces the cost price and adds the stock increment so
// concurrent ingestions of the same product never lose a quantity.
func (s *Store) UpdateProduct(ctx context.Context, id string, update storage.ProductUpdate) (*models.Product, error) {
	if s.driver == DriverSQLite {
		return s.updateProductExact(ctx, id, update)
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE products
		SET cost_price = ?,
			current_stock_quantity = current_stock_quantity + ?,
			updated_at = ?
		WHERE id = ?`),
		update.CostPrice, update.StockIncrement, now(), id)
	if err != nil {
		return nil, fmt.Errorf("updating product: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: product %s", storage.ErrNotFound, id)
	}

	product, err := s.findProduct(ctx, `id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("reloading product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %s", storage.ErrNotFound, id)
	}
	return product, nil
}

// updateProductExact adds the increment with decimal arithmetic. SQLite has
// no exact numeric type, so the sum cannot be left to SQL. The transaction
// opens with a write, which takes the database write lock before the
// quantity is read.
func (s *Store) updateProductExact(ctx context.Context, id string, update storage.ProductUpdate) (*models.Product, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ts := now()
	res, err := tx.ExecContext(ctx,
		`UPDATE products SET cost_price = ?, updated_at = ? WHERE id = ?`,
		update.CostPrice, ts, id)
	if err != nil {
		return nil, fmt.Errorf("updating product: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: product %s", storage.ErrNotFound, id)
	}

	product, err := get[models.Product](ctx, tx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("reloading product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %s", storage.ErrNotFound, id)
	}

	product.CurrentStockQuantity = product.CurrentStockQuantity.Add(update.StockIncrement)
	_, err = tx.ExecContext(ctx,
		`UPDATE products SET current_stock_quantity = ? WHERE id = ?`,
		product.CurrentStockQuantity, id)
	if err != nil {
		return nil, fmt.Errorf("updating stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing product update: %w", err)
	}
	return product, nil
}

func (s *Store) ListProductsByCompany(ctx context.Context, companyID string) ([]storage.StockRow, error) {
	rows := []storage.StockRow{}
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT p.id, p.supplier_id, p.name, p.description, p.barcode, p.unit_of_measure,
			p.cost_price, p.sale_price_suggested, p.current_stock_quantity, p.is_active,
			p.created_at, p.updated_at,
			s.name AS supplier_name, s.tax_id AS supplier_tax_id
		FROM products p
		JOIN suppliers s ON s.id = p.supplier_id
		WHERE s.company_id = ?
		ORDER BY s.name, p.name`), companyID)
	return rows, err
}
