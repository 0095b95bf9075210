package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Invoice struct {
	// Core identifiers
	ID            string  `db:"id" json:"id"`
	CompanyID     string  `db:"company_id" json:"company_id"`
	SupplierID    string  `db:"supplier_id" json:"supplier_id"`
	InvoiceNumber string  `db:"invoice_number" json:"invoice_number"` // Document number as printed (nNF)
	Series        *string `db:"series" json:"series,omitempty"`       // Fiscal series, nil when unknown

	// Dates
	IssueDate *time.Time `db:"issue_date" json:"issue_date,omitempty"` // Calendar date of issue, nil for OCR receipts

	// Amounts
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"` // Declared document total

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Relations, populated by a full load
	Company  *Company      `db:"-" json:"company,omitempty"`
	Supplier *Supplier     `db:"-" json:"supplier,omitempty"`
	Items    []InvoiceItem `db:"-" json:"items,omitempty"`
}

type InvoiceItem struct {
	ID        string `db:"id" json:"id"`
	InvoiceID string `db:"invoice_id" json:"invoice_id"`
	ProductID string `db:"product_id" json:"product_id"`
	Position  int    `db:"position" json:"position"` // Zero-based order of the line on the document

	Description   *string         `db:"description" json:"description,omitempty"`
	Quantity      decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice    decimal.Decimal `db:"total_price" json:"total_price"`
	UnitOfMeasure *string         `db:"unit_of_measure" json:"unit_of_measure,omitempty"`
	Barcode       *string         `db:"barcode" json:"barcode,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Product *Product `db:"-" json:"product,omitempty"`
}
