package extraction

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory/internal/numeric"
	"inventory/internal/xmltree"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(data)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNFeXMLExtractorTwoItems(t *testing.T) {
	e := NewNFeXMLExtractor(zerolog.Nop())

	draft, err := e.ExtractString(loadFixture(t, "nfe_two_items.xml"))
	require.NoError(t, err)

	assert.Equal(t, "1234", draft.InvoiceNumber)
	assert.Equal(t, "2", draft.Series)
	require.NotNil(t, draft.IssueDate)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *draft.IssueDate)

	assert.Equal(t, "11222333000181", draft.Supplier.TaxID)
	assert.Equal(t, "Distribuidora Central de Papel Ltda", draft.Supplier.Name)
	assert.Equal(t, "Central Papel", draft.Supplier.TradeName)
	assert.True(t, dec("350").Equal(draft.TotalAmount))

	require.Len(t, draft.Items, 2)

	first := draft.Items[0]
	assert.Equal(t, "Resma Papel A4 500 folhas", first.ProductName)
	assert.Equal(t, "7891234567895", first.Barcode)
	assert.Equal(t, "CX", first.UnitOfMeasure)
	assert.True(t, dec("10").Equal(first.Quantity))
	assert.True(t, dec("25.90").Equal(first.UnitPrice))
	assert.True(t, dec("259").Equal(first.TotalPrice))

	second := draft.Items[1]
	assert.Equal(t, "Grampeador de Mesa", second.ProductName)
	assert.Empty(t, second.Barcode, "SEM GTIN means no barcode")
	assert.True(t, dec("2").Equal(second.Quantity))
	assert.True(t, dec("91").Equal(second.TotalPrice))
}

func TestNFeXMLExtractorEnvelopeVariants(t *testing.T) {
	body := `<infNFe><ide><nNF>77</nNF></ide><emit><CNPJ>11222333000181</CNPJ><xNome>Loja</xNome></emit>` +
		`<det><prod><xProd>Item</xProd><qCom>1</qCom><vUnCom>1</vUnCom><vProd>1</vProd></prod></det>` +
		`<total><ICMSTot><vNF>1.00</vNF></ICMSTot></total></infNFe>`

	tests := []struct {
		name string
		xml  string
	}{
		{"processed envelope", `<nfeProc><NFe>` + body + `</NFe></nfeProc>`},
		{"bare NFe", `<NFe>` + body + `</NFe>`},
		{"lowercase nfe", `<nfe>` + body + `</nfe>`},
		{"processed lowercase", `<nfeProc><nfe>` + body + `</nfe></nfeProc>`},
	}

	e := NewNFeXMLExtractor(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, err := e.ExtractString(tt.xml)
			require.NoError(t, err)
			assert.Equal(t, "77", draft.InvoiceNumber)
			assert.Equal(t, DefaultSeries, draft.Series)
			assert.Nil(t, draft.IssueDate)
			assert.Equal(t, "Loja", draft.Supplier.TradeName, "trade name falls back to legal name")
			assert.Equal(t, DefaultUnitOfMeasure, draft.Items[0].UnitOfMeasure)
		})
	}
}

func TestNFeXMLExtractorDefaultsAndSkips(t *testing.T) {
	xml := `<NFe><infNFe>
		<ide><dEmi>2010-05-03</dEmi></ide>
		<emit><CNPJ>11222333000181</CNPJ></emit>
		<det><imposto/></det>
		<det><prod><qCom>3</qCom></prod></det>
	</infNFe></NFe>`

	draft, err := NewNFeXMLExtractor(zerolog.Nop()).ExtractString(xml)
	require.NoError(t, err)

	assert.Equal(t, DefaultNFeNumber, draft.InvoiceNumber)
	assert.Equal(t, DefaultIssuerName, draft.Supplier.Name)
	assert.Equal(t, time.Date(2010, 5, 3, 0, 0, 0, 0, time.UTC), *draft.IssueDate)
	assert.True(t, draft.TotalAmount.IsZero())

	require.Len(t, draft.Items, 1, "det without prod is skipped")
	assert.Equal(t, DefaultProductName, draft.Items[0].ProductName)
	assert.True(t, dec("3").Equal(draft.Items[0].Quantity))
	assert.True(t, draft.Items[0].UnitPrice.IsZero())
}

func TestNFeXMLExtractorFailures(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want error
	}{
		{"not xml", `this is not xml <`, ErrMalformedDocument},
		{"unknown root", `<invoice><infNFe/></invoice>`, ErrMalformedDocument},
		{"missing infNFe", `<nfeProc><NFe><other/></NFe></nfeProc>`, ErrMalformedDocument},
		{"missing issuer tax id", `<NFe><infNFe><emit><xNome>X</xNome></emit></infNFe></NFe>`, ErrMalformedDocument},
		{"bad issue timestamp", `<NFe><infNFe><ide><dhEmi>15/01/2024</dhEmi></ide></infNFe></NFe>`, ErrMalformedDocument},
		{"no items", `<NFe><infNFe><emit><CNPJ>11222333000181</CNPJ></emit></infNFe></NFe>`, ErrNoLineItems},
		{
			"comma total",
			`<NFe><infNFe><emit><CNPJ>11222333000181</CNPJ></emit><total><ICMSTot><vNF>1,50</vNF></ICMSTot></total></infNFe></NFe>`,
			numeric.ErrInvalidNumberFormat,
		},
		{
			"unreadable quantity",
			`<NFe><infNFe><emit><CNPJ>11222333000181</CNPJ></emit><det><prod><qCom>dois</qCom></prod></det></infNFe></NFe>`,
			numeric.ErrInvalidNumberFormat,
		},
	}

	e := NewNFeXMLExtractor(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, err := e.ExtractString(tt.xml)
			require.Error(t, err)
			assert.Nil(t, draft)
			assert.ErrorIs(t, err, tt.want)

			var docErr *DocumentError
			assert.ErrorAs(t, err, &docErr)
		})
	}
}

func TestNFeXMLExtractorSyntaxErrorKeepsCause(t *testing.T) {
	_, err := NewNFeXMLExtractor(zerolog.Nop()).ExtractString(`<NFe><infNFe></NFe>`)
	assert.ErrorIs(t, err, ErrMalformedDocument)
	assert.ErrorIs(t, err, xmltree.ErrSyntax)
}
