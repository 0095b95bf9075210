package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"inventory/internal/storage"
	"inventory/pkg/models"
)

// ResolvedLine pairs a draft item with the product it was matched or created as.
type ResolvedLine struct {
	Item    models.DraftItem
	Product *models.Product
	Created bool
}

// Resolution is the reconciled form of a draft.
type Resolution struct {
	Company         *models.Company
	Supplier        *models.Supplier
	SupplierCreated bool
	Lines           []ResolvedLine
}

// Reconciler maps drafts onto supplier and product records of a company.
type Reconciler struct {
	repo             storage.Repository
	log              zerolog.Logger
	rejectDuplicates bool
}

func NewReconciler(repo storage.Repository, log zerolog.Logger, rejectDuplicates bool) *Reconciler {
	return &Reconciler{repo: repo, log: log, rejectDuplicates: rejectDuplicates}
}

// ResolveCompany loads the target company. It is checked before anything is
// extracted or written.
func (r *Reconciler) ResolveCompany(ctx context.Context, companyID string) (*models.Company, error) {
	const op = "ResolveCompany"

	company, err := r.repo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, storageError(op, err, "company lookup")
	}
	if company == nil {
		return nil, WrapIngestError(op, ErrUnknownCompany, fmt.Sprintf("company id: %s", companyID))
	}
	return company, nil
}

// Reconcile resolves the supplier and every product of d, one item at a time
// in document order. Product changes are committed as they happen.
func (r *Reconciler) Reconcile(ctx context.Context, company *models.Company, d *models.Draft) (*Resolution, error) {
	const op = "Reconcile"

	supplier, created, err := r.resolveSupplier(ctx, company.ID, d.Supplier)
	if err != nil {
		return nil, err
	}

	if r.rejectDuplicates {
		existing, err := r.repo.FindInvoiceByKey(ctx, storage.InvoiceKey{
			CompanyID:     company.ID,
			SupplierID:    supplier.ID,
			InvoiceNumber: d.InvoiceNumber,
			Series:        d.Series,
		})
		if err != nil {
			return nil, storageError(op, err, "duplicate check")
		}
		if existing != nil {
			return nil, WrapIngestError(op, ErrDuplicateInvoice,
				fmt.Sprintf("invoice %s series %q already stored as %s", d.InvoiceNumber, d.Series, existing.ID))
		}
	}

	res := &Resolution{
		Company:         company,
		Supplier:        supplier,
		SupplierCreated: created,
		Lines:           make([]ResolvedLine, 0, len(d.Items)),
	}
	for i, item := range d.Items {
		product, created, err := r.resolveProduct(ctx, supplier.ID, item)
		if err != nil {
			return nil, WrapIngestError(op, err, fmt.Sprintf("item %d (%s)", i, item.ProductName))
		}
		res.Lines = append(res.Lines, ResolvedLine{Item: item, Product: product, Created: created})
	}

	return res, nil
}

func (r *Reconciler) resolveSupplier(ctx context.Context, companyID string, s models.DraftSupplier) (*models.Supplier, bool, error) {
	const op = "ResolveSupplier"

	supplier, err := r.repo.FindSupplierByTaxID(ctx, companyID, s.TaxID)
	if err != nil {
		return nil, false, storageError(op, err, "supplier lookup")
	}
	if supplier != nil {
		return supplier, false, nil
	}

	supplier, err = r.repo.CreateSupplier(ctx, companyID, storage.SupplierFields{
		Name:      s.Name,
		TradeName: s.TradeName,
		TaxID:     s.TaxID,
		IsActive:  true,
	})
	if err != nil {
		return nil, false, storageError(op, err, "supplier create")
	}

	r.log.Info().
		Str("supplier_id", supplier.ID).
		Str("tax_id", supplier.TaxID).
		Str("name", supplier.Name).
		Msg("Supplier created")
	return supplier, true, nil
}

// resolveProduct matches by barcode first, then by exact name. A match gets
// its cost price overwritten and its stock incremented; otherwise a product is
// created with the item quantity as initial stock.
func (r *Reconciler) resolveProduct(ctx context.Context, supplierID string, item models.DraftItem) (*models.Product, bool, error) {
	const op = "ResolveProduct"

	var (
		product *models.Product
		err     error
	)
	if item.Barcode != "" {
		if product, err = r.repo.FindProductByBarcode(ctx, supplierID, item.Barcode); err != nil {
			return nil, false, storageError(op, err, "barcode lookup")
		}
	}
	if product == nil {
		if product, err = r.repo.FindProductByName(ctx, supplierID, item.ProductName); err != nil {
			return nil, false, storageError(op, err, "name lookup")
		}
	}

	if product != nil {
		updated, err := r.repo.UpdateProduct(ctx, product.ID, storage.ProductUpdate{
			CostPrice:      item.UnitPrice,
			StockIncrement: item.Quantity,
		})
		if err != nil {
			return nil, false, storageError(op, err, "product update")
		}
		r.log.Debug().
			Str("product_id", updated.ID).
			Str("added", item.Quantity.String()).
			Str("stock", updated.CurrentStockQuantity.String()).
			Msg("Product stock incremented")
		return updated, false, nil
	}

	created, err := r.repo.CreateProduct(ctx, storage.ProductFields{
		SupplierID:         supplierID,
		Name:               item.ProductName,
		Description:        item.Description,
		Barcode:            item.Barcode,
		UnitOfMeasure:      item.UnitOfMeasure,
		CostPrice:          item.UnitPrice,
		SalePriceSuggested: decimal.NullDecimal{},
		StockQuantity:      item.Quantity,
		IsActive:           true,
	})
	if err != nil {
		return nil, false, storageError(op, err, "product create")
	}
	r.log.Debug().
		Str("product_id", created.ID).
		Str("name", created.Name).
		Str("stock", created.CurrentStockQuantity.String()).
		Msg("Product created")
	return created, true, nil
}
