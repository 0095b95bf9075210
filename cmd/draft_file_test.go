package cmd

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDraftFile(t *testing.T) {
	data := []byte(`{
		"supplier": {"name": "Atacado Sul", "trade_name": "Sul", "tax_id": "60746948000112"},
		"invoice_number": " 42 ",
		"issue_date": "2024-02-29T22:15:00-03:00",
		"total_amount": "20.00",
		"items": [
			{"product_name": "Fita", "quantity": 4, "unit_price": "5", "total_price": 20}
		]
	}`)

	draft, err := parseDraftFile(data)
	require.NoError(t, err)

	assert.Equal(t, "42", draft.InvoiceNumber)
	assert.Empty(t, draft.Series)
	require.NotNil(t, draft.IssueDate)
	assert.Equal(t, "2024-02-29", draft.IssueDate.Format("2006-01-02"))
	assert.True(t, decimal.NewFromInt(20).Equal(draft.TotalAmount))
	require.Len(t, draft.Items, 1)
	assert.True(t, decimal.NewFromInt(4).Equal(draft.Items[0].Quantity))
}

func TestParseDraftFileErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `invoice`},
		{"bad date", `{"issue_date": "29/02/2024"}`},
		{"bad amount", `{"total_amount": "doze"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDraftFile([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
