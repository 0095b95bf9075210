package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a stock-keeping item belonging to a supplier.
type Product struct {
	ID         string `db:"id" json:"id"`
	SupplierID string `db:"supplier_id" json:"supplier_id"`
	Name       string `db:"name" json:"name"`

	Description   *string `db:"description" json:"description,omitempty"`
	Barcode       *string `db:"barcode" json:"barcode,omitempty"` // GTIN/EAN when known
	UnitOfMeasure *string `db:"unit_of_measure" json:"unit_of_measure,omitempty"`

	CostPrice          decimal.NullDecimal `db:"cost_price" json:"cost_price"`                   // Last unit price paid
	SalePriceSuggested decimal.NullDecimal `db:"sale_price_suggested" json:"sale_price_suggested"` // Never set by ingestion

	CurrentStockQuantity decimal.Decimal `db:"current_stock_quantity" json:"current_stock_quantity"`
	IsActive             bool            `db:"is_active" json:"is_active"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
