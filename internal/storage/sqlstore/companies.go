package sqlstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"inventory/internal/storage"
	"inventory/pkg/models"
)

const companyColumns = `id, name, tax_id, trade_name, created_at, updated_at`

func (s *Store) FindCompanyByID(ctx context.Context, id string) (*models.Company, error) {
	return get[models.Company](ctx, s.db,
		s.db.Rebind(`SELECT `+companyColumns+` FROM companies WHERE id = ?`), id)
}

func (s *Store) FindCompanyByTaxID(ctx context.Context, taxID string) (*models.Company, error) {
	return get[models.Company](ctx, s.db,
		s.db.Rebind(`SELECT `+companyColumns+` FROM companies WHERE tax_id = ?`), taxID)
}

func (s *Store) CreateCompany(ctx context.Context, fields storage.CompanyFields) (*models.Company, error) {
	ts := now()
	company := &models.Company{
		ID:        uuid.New().String(),
		Name:      fields.Name,
		TaxID:     fields.TaxID,
		TradeName: nullString(fields.TradeName),
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	query := `INSERT INTO companies (` + companyColumns + `)
		VALUES (:id, :name, :tax_id, :trade_name, :created_at, :updated_at)`
	if _, err := s.db.NamedExecContext(ctx, query, company); err != nil {
		return nil, fmt.Errorf("inserting company: %w", err)
	}
	return company, nil
}

func (s *Store) ListCompanies(ctx context.Context) ([]models.Company, error) {
	companies := []models.Company{}
	err := s.db.SelectContext(ctx, &companies, `SELECT `+companyColumns+` FROM companies ORDER BY name`)
	return companies, err
}
