package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExportCSV(t *testing.T) {
	blob, err := ExportCSV(sample())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(blob, []byte("\ufeff")) {
		t.Fatal("missing BOM")
	}
	body := string(blob)
	if !strings.Contains(body, "Producto (Marca comercial)") {
		t.Fatalf("headers missing: %s", body)
	}
	if strings.Contains(body, "ORIGEN") {
		t.Fatal("internal column exported")
	}
	if !strings.Contains(body, "IBUPROFENO 400MG") || !strings.Contains(body, "S/ 9.90") {
		t.Fatalf("rows missing: %s", body)
	}
}

func TestExportXLSX(t *testing.T) {
	blob, err := ExportXLSX(sample())
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 {
		t.Fatalf("rows=%d", len(rows))
	}
	if rows[0][1] != "Producto (Marca comercial)" {
		t.Fatalf("header=%v", rows[0])
	}
	if rows[1][6] != "S/ 9.90" {
		t.Fatalf("price cell=%q", rows[1][6])
	}
}
