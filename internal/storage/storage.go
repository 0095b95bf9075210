// Package storage defines the persistence contract used by ingestion.
//
// Find methods return (nil, nil) when no row matches. Mutating methods return
// the stored record as read back from the database.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"inventory/pkg/models"
)

var (
	// ErrNotFound is returned when a record addressed by id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnknownSupplierReference is returned when a product is written for a
	// supplier id that does not exist.
	ErrUnknownSupplierReference = errors.New("unknown supplier reference")
)

// Repository is implemented by sqlstore.Store.
type Repository interface {
	FindCompanyByID(ctx context.Context, id string) (*models.Company, error)
	FindCompanyByTaxID(ctx context.Context, taxID string) (*models.Company, error)
	CreateCompany(ctx context.Context, fields CompanyFields) (*models.Company, error)
	ListCompanies(ctx context.Context) ([]models.Company, error)

	FindSupplierByTaxID(ctx context.Context, companyID, taxID string) (*models.Supplier, error)
	CreateSupplier(ctx context.Context, companyID string, fields SupplierFields) (*models.Supplier, error)

	FindProductByBarcode(ctx context.Context, supplierID, barcode string) (*models.Product, error)
	FindProductByName(ctx context.Context, supplierID, name string) (*models.Product, error)
	CreateProduct(ctx context.Context, fields ProductFields) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, update ProductUpdate) (*models.Product, error)
	ListProductsByCompany(ctx context.Context, companyID string) ([]StockRow, error)

	CreateInvoice(ctx context.Context, header InvoiceHeader, items []InvoiceItemFields) (*models.Invoice, error)
	LoadInvoiceWithRelations(ctx context.Context, id string) (*models.Invoice, error)
	FindInvoiceByKey(ctx context.Context, key InvoiceKey) (*models.Invoice, error)
}

type CompanyFields struct {
	Name      string
	TaxID     string
	TradeName string
}

type SupplierFields struct {
	Name      string
	TradeName string
	TaxID     string
	IsActive  bool
}

// ProductFields describes a new product. Empty optional strings are stored as NULL.
type ProductFields struct {
	SupplierID         string
	Name               string
	Description        string
	Barcode            string
	UnitOfMeasure      string
	CostPrice          decimal.Decimal
	SalePriceSuggested decimal.NullDecimal
	StockQuantity      decimal.Decimal
	IsActive           bool
}

// ProductUpdate overwrites the cost price and adds StockIncrement to the
// current stock atomically.
type ProductUpdate struct {
	CostPrice      decimal.Decimal
	StockIncrement decimal.Decimal
}

type InvoiceHeader struct {
	CompanyID     string
	SupplierID    string
	InvoiceNumber string
	Series        string
	IssueDate     *time.Time
	TotalAmount   decimal.Decimal
}

// InvoiceItemFields is one line; its slice index becomes the stored position.
type InvoiceItemFields struct {
	ProductID     string
	Description   string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	TotalPrice    decimal.Decimal
	UnitOfMeasure string
	Barcode       string
}

// InvoiceKey identifies a fiscal document within a company. An empty Series
// matches invoices stored without one.
type InvoiceKey struct {
	CompanyID     string
	SupplierID    string
	InvoiceNumber string
	Series        string
}

// StockRow is a product joined with the name of its supplier.
type StockRow struct {
	models.Product
	SupplierName  string `db:"supplier_name"`
	SupplierTaxID string `db:"supplier_tax_id"`
}
