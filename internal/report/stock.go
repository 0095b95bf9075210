// Package report renders stored inventory data as spreadsheets.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"inventory/internal/storage"
)

// StockSheetName is the worksheet written by WriteStockSheet.
const StockSheetName = "Estoque"

// StockHeaders are the column titles of the stock sheet, in order.
var StockHeaders = []string{
	"Fornecedor", "CNPJ Fornecedor", "Produto", "Código de Barras",
	"Unidade", "Preço de Custo", "Estoque Atual", "Ativo",
}

var stockColumnWidths = []float64{32, 20, 40, 18, 10, 16, 16, 8}

// WriteStockSheet writes one row per product to w as an .xlsx workbook.
// Amounts are written as numbers; missing optional fields are left blank.
func WriteStockSheet(w io.Writer, rows []storage.StockRow) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(StockSheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	amountFormat := "#,##0.00"
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &amountFormat})
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}

	for i, header := range StockHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(StockSheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header %s: %w", cell, err)
		}
	}
	if err := f.SetCellStyle(StockSheetName, "A1", "H1", headerStyle); err != nil {
		return fmt.Errorf("failed to style headers: %w", err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(StockSheetName, cell, &[]interface{}{
			row.SupplierName,
			row.SupplierTaxID,
			row.Name,
			deref(row.Barcode),
			deref(row.UnitOfMeasure),
			costCell(row),
			row.CurrentStockQuantity.InexactFloat64(),
			row.IsActive,
		}); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if last := len(rows) + 1; last > 1 {
		if err := f.SetCellStyle(StockSheetName, "F2", fmt.Sprintf("F%d", last), amountStyle); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}

	for i, width := range stockColumnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(StockSheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set width of %s: %w", col, err)
		}
	}
	if err := f.SetPanes(StockSheetName, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header row: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func costCell(row storage.StockRow) interface{} {
	if !row.CostPrice.Valid {
		return nil
	}
	return row.CostPrice.Decimal.InexactFloat64()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
