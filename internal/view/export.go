package view

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"medbuscador/internal"
	"medbuscador/internal/catalog"
)

// ExportCSV renders records as UTF-8 CSV with a BOM so Excel opens the
// Spanish headers and accented product names correctly.
func ExportCSV(records []internal.Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\ufeff")

	w := csv.NewWriter(&buf)
	if err := w.Write(catalog.FileColumns[:len(catalog.FileColumns)-1]); err != nil {
		return nil, err
	}
	for _, rec := range records {
		if err := w.Write(exportCells(rec)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportXLSX renders records as a styled workbook: bold header row, widened
// columns, prices kept as display strings so the "S/ " prefix survives.
func ExportXLSX(records []internal.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	headers := catalog.FileColumns[:len(catalog.FileColumns)-1]
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", last, headerStyle)

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len([]rune(h))
	}
	for i, rec := range records {
		row := i + 2
		for col, value := range exportCells(rec) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, value)
			if n := len([]rune(value)); n > widths[col] {
				widths[col] = n
			}
		}
	}
	for i, w := range widths {
		if w > 60 {
			w = 60
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, float64(w)+2)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// exportCells mirrors the repository's column order minus the internal
// ORIGEN column, which users do not need in a download.
func exportCells(rec internal.Record) []string {
	return []string{
		rec.ProductCode,
		rec.ProductName,
		rec.ActiveIngredient,
		rec.RegistryID,
		rec.Manufacturer,
		rec.Presentation,
		rec.Price,
		rec.SourceName,
		rec.Link,
		rec.Group,
		rec.ManufacturerAbbrev,
		rec.SecondaryPriceLabel,
	}
}
