package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Draft is the canonical, source-independent form of an extracted invoice.
// Both the OCR and the NF-e XML extractors produce it; reconciliation only
// ever consumes it.
type Draft struct {
	Supplier      DraftSupplier   `json:"supplier"`
	InvoiceNumber string          `json:"invoice_number"`
	Series        string          `json:"series,omitempty"`
	IssueDate     *time.Time      `json:"issue_date,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []DraftItem     `json:"items"`
}

type DraftSupplier struct {
	Name      string `json:"name"`
	TradeName string `json:"trade_name"`
	TaxID     string `json:"tax_id"`
}

// DraftItem is one line of a draft. Empty optional strings mean absent.
type DraftItem struct {
	ProductName   string          `json:"product_name"`
	Description   string          `json:"description,omitempty"`
	Barcode       string          `json:"barcode,omitempty"`
	UnitOfMeasure string          `json:"unit_of_measure,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// ItemsTotal sums the total price of every line.
func (d *Draft) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range d.Items {
		sum = sum.Add(item.TotalPrice)
	}
	return sum
}
