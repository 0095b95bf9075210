package ingest

import (
	"errors"
	"fmt"
	"strings"

	"inventory/pkg/models"
)

// ValidateDraft checks the fields reconciliation relies on. All problems are
// reported together.
func ValidateDraft(d *models.Draft) error {
	if d == nil {
		return NewValidationError("draft", nil, "draft is required")
	}

	var errs []error
	if strings.TrimSpace(d.Supplier.TaxID) == "" {
		errs = append(errs, NewValidationError("supplier.tax_id", d.Supplier.TaxID, "supplier tax id is required"))
	}
	if strings.TrimSpace(d.Supplier.Name) == "" {
		errs = append(errs, NewValidationError("supplier.name", d.Supplier.Name, "supplier name is required"))
	}
	if strings.TrimSpace(d.InvoiceNumber) == "" {
		errs = append(errs, NewValidationError("invoice_number", d.InvoiceNumber, "invoice number is required"))
	}
	if d.TotalAmount.IsNegative() {
		errs = append(errs, NewValidationError("total_amount", d.TotalAmount, "must not be negative"))
	}
	if len(d.Items) == 0 {
		errs = append(errs, NewValidationError("items", 0, "at least one item is required"))
	}

	for i, item := range d.Items {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }
		if strings.TrimSpace(item.ProductName) == "" {
			errs = append(errs, NewValidationError(field("product_name"), item.ProductName, "product name is required"))
		}
		if item.Quantity.IsNegative() {
			errs = append(errs, NewValidationError(field("quantity"), item.Quantity, "must not be negative"))
		}
		if item.UnitPrice.IsNegative() {
			errs = append(errs, NewValidationError(field("unit_price"), item.UnitPrice, "must not be negative"))
		}
		if item.TotalPrice.IsNegative() {
			errs = append(errs, NewValidationError(field("total_price"), item.TotalPrice, "must not be negative"))
		}
	}

	return errors.Join(errs...)
}
