package catalog

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"medbuscador/internal/util"
)

// Table is the raw row/column grid handed to the normalizer. The first row
// of the source file becomes Headers; cell values stay untouched strings.
type Table struct {
	Headers []string
	Rows    [][]string
}

func (t Table) Empty() bool {
	return len(t.Headers) == 0 && len(t.Rows) == 0
}

// ReadTable loads a tabular file by extension (.xlsx/.xls, .csv, .pdf).
// Unreadable or empty input yields an empty table, never an error: the
// normalizer downstream treats that as "no rows".
func ReadTable(path string) Table {
	blob, err := os.ReadFile(path)
	if err != nil {
		return Table{}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(blob)
	case ".pdf":
		return readPDF(blob)
	default:
		return readXLSX(blob)
	}
}

func readXLSX(blob []byte) Table {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return Table{}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil || len(rows) == 0 {
		return Table{}
	}
	return tableFromRows(rows)
}

func readCSV(blob []byte) Table {
	r := csv.NewReader(bytes.NewReader(blob))
	r.FieldsPerRecord = -1
	rows := [][]string{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}
		}
		rows = append(rows, rec)
	}
	return tableFromRows(rows)
}

// readPDF is a best-effort importer for PDF price lists: each text line with
// at least two columns worth of content becomes a row, columns split on runs
// of two or more spaces. The first such line is taken as the header row.
func readPDF(blob []byte) Table {
	r, err := pdf.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return Table{}
	}

	rows := [][]string{}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			cells := splitPDFLine(line)
			if len(cells) >= 2 {
				rows = append(rows, cells)
			}
		}
	}
	return tableFromRows(rows)
}

func splitPDFLine(line string) []string {
	parts := strings.Split(line, "  ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = util.NormalizeSpaces(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func tableFromRows(rows [][]string) Table {
	if len(rows) == 0 {
		return Table{}
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return Table{Headers: headers, Rows: rows[1:]}
}
