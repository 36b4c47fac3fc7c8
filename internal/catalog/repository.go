package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"

	"medbuscador/internal"
)

// Column headers used when persisting catalogs; kept byte-compatible with
// the spreadsheets users already have.
var FileColumns = []string{
	"CÓDIGO PRODUCTO",
	"Producto (Marca comercial)",
	"Principio Activo",
	"N° DIGEMID",
	"Laboratorio / Fabricante",
	"Presentación",
	"Precio",
	"Farmacia / Fuente",
	"Enlace",
	"GRUPO",
	"Laboratorio Abreviado",
	"LABORATORIO PRECIO",
	"ORIGEN",
}

// Repository is the durable home of one catalog file with load-all /
// replace-all semantics. Writes are serialized through a mutex: concurrent
// searches caching web rows must not interleave read-modify-write cycles.
type Repository interface {
	LoadAll() []internal.Record
	ReplaceAll(records []internal.Record) error
	AppendWeb(records []internal.Record) error
	Path() string
}

type fileRepository struct {
	mu      sync.Mutex
	path    string
	profile SourceProfile
}

func NewRepository(path string, profile SourceProfile) Repository {
	return &fileRepository{path: path, profile: profile}
}

func (r *fileRepository) Path() string { return r.path }

// EnsureFile creates an empty catalog with standard headers when the file
// does not exist yet, so a fresh install starts with a valid workbook.
func EnsureFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return writeXLSX(path, nil)
}

func (r *fileRepository) LoadAll() []internal.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Normalize(ReadTable(r.path), r.profile)
}

func (r *fileRepository) ReplaceAll(records []internal.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeXLSX(r.path, records)
}

// AppendWeb merges newly scraped rows into the catalog, deduplicated against
// existing rows by (name, price, source). If rewriting the merged catalog
// fails, only the new rows are written so fresh observations are not lost;
// the original file is left as it was.
func (r *fileRepository) AppendWeb(records []internal.Record) error {
	if len(records) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing := Normalize(ReadTable(r.path), r.profile)
	seen := map[string]struct{}{}
	for _, rec := range existing {
		seen[cacheKey(rec)] = struct{}{}
	}

	added := 0
	for _, rec := range records {
		key := cacheKey(rec)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		rec.Origin = internal.OriginWebCached
		existing = append(existing, rec)
		added++
	}
	if added == 0 {
		return nil
	}

	if err := writeXLSX(r.path, existing); err != nil {
		side := r.path + ".web.xlsx"
		if err2 := writeXLSX(side, records); err2 != nil {
			return fmt.Errorf("cache write failed: %w", err)
		}
		return fmt.Errorf("cache write failed, new rows kept at %s: %w", side, err)
	}
	return nil
}

func cacheKey(rec internal.Record) string {
	return rec.ProductName + "\x00" + rec.Price + "\x00" + rec.SourceName
}

func writeXLSX(path string, records []internal.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range FileColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, rec := range records {
		row := i + 2
		for col, value := range recordCells(rec) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}
	return f.SaveAs(path)
}

func recordCells(rec internal.Record) []string {
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
		string(rec.Origin),
	}
}
