package ingest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"inventory/internal/storage"
	"inventory/pkg/models"
)

type mockRepository struct {
	mock.Mock
}

var _ storage.Repository = (*mockRepository)(nil)

func (m *mockRepository) FindCompanyByID(ctx context.Context, id string) (*models.Company, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.Company)
	return c, args.Error(1)
}

func (m *mockRepository) FindCompanyByTaxID(ctx context.Context, taxID string) (*models.Company, error) {
	args := m.Called(ctx, taxID)
	c, _ := args.Get(0).(*models.Company)
	return c, args.Error(1)
}

func (m *mockRepository) CreateCompany(ctx context.Context, fields storage.CompanyFields) (*models.Company, error) {
	args := m.Called(ctx, fields)
	c, _ := args.Get(0).(*models.Company)
	return c, args.Error(1)
}

func (m *mockRepository) ListCompanies(ctx context.Context) ([]models.Company, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]models.Company)
	return c, args.Error(1)
}

func (m *mockRepository) FindSupplierByTaxID(ctx context.Context, companyID, taxID string) (*models.Supplier, error) {
	args := m.Called(ctx, companyID, taxID)
	s, _ := args.Get(0).(*models.Supplier)
	return s, args.Error(1)
}

func (m *mockRepository) CreateSupplier(ctx context.Context, companyID string, fields storage.SupplierFields) (*models.Supplier, error) {
	args := m.Called(ctx, companyID, fields)
	s, _ := args.Get(0).(*models.Supplier)
	return s, args.Error(1)
}

func (m *mockRepository) FindProductByBarcode(ctx context.Context, supplierID, barcode string) (*models.Product, error) {
	args := m.Called(ctx, supplierID, barcode)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *mockRepository) FindProductByName(ctx context.Context, supplierID, name string) (*models.Product, error) {
	args := m.Called(ctx, supplierID, name)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *mockRepository) CreateProduct(ctx context.Context, fields storage.ProductFields) (*models.Product, error) {
	args := m.Called(ctx, fields)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *mockRepository) UpdateProduct(ctx context.Context, id string, update storage.ProductUpdate) (*models.Product, error) {
	args := m.Called(ctx, id, update)
	p, _ := args.Get(0).(*models.Product)
	return p, args.Error(1)
}

func (m *mockRepository) ListProductsByCompany(ctx context.Context, companyID string) ([]storage.StockRow, error) {
	args := m.Called(ctx, companyID)
	rows, _ := args.Get(0).([]storage.StockRow)
	return rows, args.Error(1)
}

func (m *mockRepository) CreateInvoice(ctx context.Context, header storage.InvoiceHeader, items []storage.InvoiceItemFields) (*models.Invoice, error) {
	args := m.Called(ctx, header, items)
	inv, _ := args.Get(0).(*models.Invoice)
	return inv, args.Error(1)
}

func (m *mockRepository) LoadInvoiceWithRelations(ctx context.Context, id string) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	inv, _ := args.Get(0).(*models.Invoice)
	return inv, args.Error(1)
}

func (m *mockRepository) FindInvoiceByKey(ctx context.Context, key storage.InvoiceKey) (*models.Invoice, error) {
	args := m.Called(ctx, key)
	inv, _ := args.Get(0).(*models.Invoice)
	return inv, args.Error(1)
}
