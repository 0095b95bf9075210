package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory/internal/extraction"
	"inventory/pkg/models"
)

func TestFindBatchFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xml", "a.JPG", "notes.txt", "sub/c.pdf", "sub/d.XML"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}

	files, err := findBatchFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 4)

	var names []string
	for i, f := range files {
		assert.Equal(t, i, f.Index)
		rel, _ := filepath.Rel(dir, f.Path)
		names = append(names, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"a.JPG", "b.xml", "sub/c.pdf", "sub/d.XML"}, names)

	assert.Equal(t, kindImage, files[0].Kind)
	assert.Equal(t, kindXML, files[1].Kind)
	assert.Equal(t, kindImage, files[2].Kind)
	assert.Equal(t, kindXML, files[3].Kind)
	assert.True(t, hasImages(files))
	assert.False(t, hasImages(files[1:2]))
}

func TestIsPlaceholderDraft(t *testing.T) {
	readable := func() *models.Draft {
		return &models.Draft{
			Supplier:      models.DraftSupplier{Name: "PAPELARIA CENTRAL LTDA", TaxID: "11222333000181"},
			InvoiceNumber: "12345",
			TotalAmount:   decimal.RequireFromString("43.70"),
			Items: []models.DraftItem{
				{ProductName: "CANETA AZUL BIC", Quantity: decimal.NewFromInt(2)},
			},
		}
	}
	image := BatchFile{Path: "cupom.jpg", Kind: kindImage}
	xml := BatchFile{Path: "nfe.xml", Kind: kindXML}

	tests := []struct {
		name   string
		file   BatchFile
		mutate func(d *models.Draft)
		want   bool
	}{
		{name: "readable receipt", file: image, want: false},
		{
			name:   "zero total xml",
			file:   xml,
			mutate: func(d *models.Draft) { d.TotalAmount = decimal.Zero },
			want:   false,
		},
		{
			name: "xml with sentinel-like values",
			file: xml,
			mutate: func(d *models.Draft) {
				d.InvoiceNumber = extraction.PlaceholderInvoiceNumber
			},
			want: false,
		},
		{
			name:   "placeholder tax id",
			file:   image,
			mutate: func(d *models.Draft) { d.Supplier.TaxID = extraction.PlaceholderTaxID },
			want:   true,
		},
		{
			name:   "placeholder supplier name",
			file:   image,
			mutate: func(d *models.Draft) { d.Supplier.Name = extraction.PlaceholderSupplierName },
			want:   true,
		},
		{
			name:   "placeholder invoice number",
			file:   image,
			mutate: func(d *models.Draft) { d.InvoiceNumber = extraction.PlaceholderInvoiceNumber },
			want:   true,
		},
		{
			name: "unrecognized item",
			file: image,
			mutate: func(d *models.Draft) {
				d.Items = append(d.Items, models.DraftItem{ProductName: extraction.UnrecognizedItemName})
			},
			want: true,
		},
		{
			name:   "zero total receipt",
			file:   image,
			mutate: func(d *models.Draft) { d.TotalAmount = decimal.Zero },
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := readable()
			if tt.mutate != nil {
				tt.mutate(d)
			}
			assert.Equal(t, tt.want, isPlaceholderDraft(tt.file, d))
		})
	}
}

func TestIsPlaceholderDraftReceiptWithoutItemRows(t *testing.T) {
	draft := extraction.NewOCRTextExtractor(zerolog.Nop()).
		Extract("LOJA EXEMPLO 11.222.333/0001-81 NFC-e 123456 Consulta TOTAL 50,00 ->")

	require.Equal(t, "123456", draft.InvoiceNumber)
	require.True(t, decimal.NewFromInt(50).Equal(draft.TotalAmount))
	assert.True(t, isPlaceholderDraft(BatchFile{Path: "cupom.png", Kind: kindImage}, draft))
}
