package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"inventory/internal/storage"
	"inventory/pkg/models"
)

const supplierColumns = `id, company_id, name, trade_name, tax_id, is_active, created_at, updated_at`

func (s *Store) FindSupplierByTaxID(ctx context.Context, companyID, taxID string) (*models.Supplier, error) {
	return get[models.Supplier](ctx, s.db,
		s.db.Rebind(`SELECT `+supplierColumns+` FROM suppliers WHERE company_id = ? AND tax_id = ?`),
		companyID, taxID)
}

func (s *Store) CreateSupplier(ctx context.Context, companyID string, fields storage.SupplierFields) (*models.Supplier, error) {
	ts := now()
	supplier := &models.Supplier{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      fields.Name,
		TradeName: fields.TradeName,
		TaxID:     fields.TaxID,
		IsActive:  fields.IsActive,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	query := `INSERT INTO suppliers (` + supplierColumns + `)
		VALUES (:id, :company_id, :name, :trade_name, :tax_id, :is_active, :created_at, :updated_at)`
	if _, err := s.db.NamedExecContext(ctx, query, supplier); err != nil {
		return nil, fmt.Errorf("inserting supplier: %w", err)
	}
	return supplier, nil
}
