package extraction

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const receiptText = `PAPELARIA CENTRAL LTDA
11.222.333/0001-81   IE ISENTO
CUPOM FISCAL
001 | 2 CANETA AZUL BIC   UN 1 2,50 5,00 0,00 5,00
002 | 3 CADERNO 10 MATERIAS DP 1 12,90 38,70 0,00 38,70
TOTAL R$ 43,70 ->
NFC-e 12345 Consulta pelo QR Code`

func TestOCRTextExtractorReceipt(t *testing.T) {
	draft := NewOCRTextExtractor(zerolog.Nop()).Extract(receiptText)

	assert.Equal(t, "PAPELARIA CENTRAL LTDA", draft.Supplier.Name)
	assert.Equal(t, draft.Supplier.Name, draft.Supplier.TradeName)
	assert.Equal(t, "11222333000181", draft.Supplier.TaxID)
	assert.Equal(t, "12345", draft.InvoiceNumber)
	assert.Equal(t, PlaceholderSeries, draft.Series)
	assert.Nil(t, draft.IssueDate)
	assert.True(t, dec("43.70").Equal(draft.TotalAmount))

	require.Len(t, draft.Items, 2)
	assert.Equal(t, "CANETA AZUL BIC", draft.Items[0].ProductName)
	assert.Equal(t, "UN", draft.Items[0].UnitOfMeasure)
	assert.True(t, dec("2").Equal(draft.Items[0].Quantity))
	assert.True(t, dec("2.50").Equal(draft.Items[0].UnitPrice))
	assert.True(t, dec("5").Equal(draft.Items[0].TotalPrice))

	assert.Equal(t, "CADERNO 10 MATERIAS", draft.Items[1].ProductName)
	assert.Equal(t, "DP", draft.Items[1].UnitOfMeasure)
	assert.True(t, dec("38.70").Equal(draft.Items[1].TotalPrice))

	assert.True(t, draft.ItemsTotal().Equal(draft.TotalAmount))
}

func TestOCRTextExtractorNothingRecognized(t *testing.T) {
	for _, text := range []string{"", "   \n\t ", "garbled ### text without fields"} {
		draft := NewOCRTextExtractor(zerolog.Nop()).Extract(text)

		assert.Equal(t, PlaceholderSupplierName, draft.Supplier.Name)
		assert.Equal(t, PlaceholderTaxID, draft.Supplier.TaxID)
		assert.Equal(t, PlaceholderInvoiceNumber, draft.InvoiceNumber)
		assert.True(t, draft.TotalAmount.IsZero())

		require.Len(t, draft.Items, 1)
		item := draft.Items[0]
		assert.Equal(t, UnrecognizedItemName, item.ProductName)
		assert.True(t, dec("1").Equal(item.Quantity))
		assert.True(t, item.UnitPrice.IsZero())
		assert.True(t, item.TotalPrice.IsZero())
	}
}

func TestOCRTextExtractorPlaceholderItemCarriesTotal(t *testing.T) {
	draft := NewOCRTextExtractor(zerolog.Nop()).Extract("MERCADO BOM PRECO VALOR A PAGAR 1.234,56 -> obrigado")

	require.Len(t, draft.Items, 1)
	assert.Equal(t, UnrecognizedItemName, draft.Items[0].ProductName)
	assert.Equal(t, UnrecognizedItemDescription, draft.Items[0].Description)
	assert.True(t, dec("1234.56").Equal(draft.TotalAmount))
	assert.True(t, dec("1234.56").Equal(draft.Items[0].UnitPrice))
	assert.True(t, dec("1234.56").Equal(draft.Items[0].TotalPrice))
}

func TestOCRTextExtractorSupplierNameWindow(t *testing.T) {
	header := strings.Repeat("X", 40) + " " + strings.Repeat("Y", 70) + " "
	draft := NewOCRTextExtractor(zerolog.Nop()).Extract(header + "11.222.333/0001-81")

	assert.Len(t, []rune(draft.Supplier.Name), 59, "60 preceding chars minus the trimmed separator")
	assert.Equal(t, strings.Repeat("Y", 59), draft.Supplier.Name)
}

func TestOCRTextExtractorTaxIDAtStartKeepsPlaceholderName(t *testing.T) {
	draft := NewOCRTextExtractor(zerolog.Nop()).Extract("11.222.333/0001-81 CUPOM")
	assert.Equal(t, PlaceholderSupplierName, draft.Supplier.Name)
	assert.Equal(t, "11222333000181", draft.Supplier.TaxID)
}

func TestOCRTextExtractorWarnsOnInvalidTaxID(t *testing.T) {
	var buf bytes.Buffer
	draft := NewOCRTextExtractor(zerolog.New(&buf)).Extract("LOJA 11.222.333/0001-82 CUPOM")

	assert.Equal(t, "11222333000182", draft.Supplier.TaxID)
	assert.Contains(t, buf.String(), "check digit")
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n\n b\t c  "))
	// decomposed "ã" becomes the composed code point
	assert.Equal(t, "S\u00e3o", CleanText("Sa\u0303o"))
	assert.Equal(t, "ab", CleanText("a\xff\xfeb"))
}

func TestOCRTextExtractorDropsInvalidUTF8(t *testing.T) {
	draft := NewOCRTextExtractor(zerolog.Nop()).Extract("\xff\xfe garbage 11.222.333/0001-81")

	assert.Equal(t, "garbage", draft.Supplier.Name)
	assert.NotContains(t, draft.Supplier.Name, "\uFFFD")
	assert.True(t, utf8.ValidString(draft.Supplier.Name))
}
