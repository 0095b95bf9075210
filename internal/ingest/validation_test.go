package ingest

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory/pkg/models"
)

func validDraft() *models.Draft {
	return &models.Draft{
		Supplier:      models.DraftSupplier{Name: "Fornecedor", TaxID: "11222333000181"},
		InvoiceNumber: "10",
		TotalAmount:   decimal.NewFromInt(10),
		Items: []models.DraftItem{{
			ProductName: "Lapis", Quantity: decimal.NewFromInt(10),
			UnitPrice: decimal.NewFromInt(1), TotalPrice: decimal.NewFromInt(10),
		}},
	}
}

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *models.Draft)
		fields []string
	}{
		{"valid", func(d *models.Draft) {}, nil},
		{"zero quantity is allowed", func(d *models.Draft) { d.Items[0].Quantity = decimal.Zero }, nil},
		{"missing tax id", func(d *models.Draft) { d.Supplier.TaxID = " " }, []string{"supplier.tax_id"}},
		{"missing supplier name", func(d *models.Draft) { d.Supplier.Name = "" }, []string{"supplier.name"}},
		{"missing number", func(d *models.Draft) { d.InvoiceNumber = "" }, []string{"invoice_number"}},
		{"negative total", func(d *models.Draft) { d.TotalAmount = decimal.NewFromInt(-1) }, []string{"total_amount"}},
		{"no items", func(d *models.Draft) { d.Items = nil }, []string{"items"}},
		{
			"several item problems",
			func(d *models.Draft) {
				d.Items[0].ProductName = ""
				d.Items[0].UnitPrice = decimal.NewFromInt(-2)
			},
			[]string{"items[0].product_name", "items[0].unit_price"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(d)

			err := ValidateDraft(d)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDraft)

			joined, ok := err.(interface{ Unwrap() []error })
			require.True(t, ok)
			var got []string
			for _, e := range joined.Unwrap() {
				var ve *ValidationError
				require.True(t, errors.As(e, &ve))
				got = append(got, ve.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestValidateDraftNil(t *testing.T) {
	err := ValidateDraft(nil)
	assert.ErrorIs(t, err, ErrInvalidDraft)
}
