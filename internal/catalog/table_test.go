package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadTableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lista.csv")
	body := "Producto,Precio\nIbuprofeno 400mg,S/ 9.90\nParacetamol,S/ 4.50\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	table := ReadTable(path)
	if len(table.Headers) != 2 || table.Headers[0] != "Producto" {
		t.Fatalf("headers=%v", table.Headers)
	}
	if len(table.Rows) != 2 || table.Rows[0][1] != "S/ 9.90" {
		t.Fatalf("rows=%v", table.Rows)
	}
}

func TestReadTableXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lista.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	_ = f.SetCellValue(sheet, "A1", "Producto")
	_ = f.SetCellValue(sheet, "B1", "Precio")
	_ = f.SetCellValue(sheet, "A2", "Amoxicilina 500mg")
	_ = f.SetCellValue(sheet, "B2", "S/ 12.00")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	table := ReadTable(path)
	if len(table.Rows) != 1 || table.Rows[0][0] != "Amoxicilina 500mg" {
		t.Fatalf("table=%+v", table)
	}
}

func TestReadTableMissingFile(t *testing.T) {
	if table := ReadTable(filepath.Join(t.TempDir(), "nope.xlsx")); !table.Empty() {
		t.Fatalf("table=%+v", table)
	}
}

func TestReadTableGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basura.xlsx")
	if err := os.WriteFile(path, []byte("not a workbook"), 0o644); err != nil {
		t.Fatal(err)
	}
	if table := ReadTable(path); !table.Empty() {
		t.Fatalf("table=%+v", table)
	}
}

func TestSplitPDFLine(t *testing.T) {
	cells := splitPDFLine("Ibuprofeno 400mg    S/ 9.90   Mifarma")
	if len(cells) != 3 || cells[1] != "S/ 9.90" {
		t.Fatalf("cells=%v", cells)
	}
	if cells := splitPDFLine("   "); len(cells) != 0 {
		t.Fatalf("cells=%v", cells)
	}
}
