// Package view shapes a record list for presentation: pharmacy filtering,
// sorting, pagination and the summary figures shown above the table.
package view

import (
	"sort"
	"strings"

	"medbuscador/internal"
	"medbuscador/internal/scrape"
)

const (
	minPerPage     = 5
	maxPerPage     = 100
	defaultPerPage = 20
)

// Filter keeps only records whose source is in the given pharmacy set.
// An empty set means no filtering. Matching is case-insensitive.
func Filter(records []internal.Record, pharmacies []string) []internal.Record {
	if len(pharmacies) == 0 {
		return records
	}
	wanted := map[string]struct{}{}
	for _, p := range pharmacies {
		wanted[strings.ToUpper(strings.TrimSpace(p))] = struct{}{}
	}
	out := []internal.Record{}
	for _, rec := range records {
		if _, ok := wanted[strings.ToUpper(rec.SourceName)]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// Sort orders records by the named column. Price sorting is numeric:
// "S/ 9.90" sorts before "S/ 12.50", and records without a parseable price
// go last regardless of direction. The sort is stable so catalog order
// survives as the tiebreak.
func Sort(records []internal.Record, by string, desc bool) {
	var less func(a, b internal.Record) bool
	switch by {
	case "price":
		less = func(a, b internal.Record) bool {
			av, aok := scrape.PriceNumber(a.Price)
			bv, bok := scrape.PriceNumber(b.Price)
			if aok != bok {
				return aok
			}
			if !aok {
				return false
			}
			if desc {
				return av > bv
			}
			return av < bv
		}
	case "source":
		less = func(a, b internal.Record) bool {
			return orderString(a.SourceName, b.SourceName, desc)
		}
	case "name":
		less = func(a, b internal.Record) bool {
			return orderString(a.ProductName, b.ProductName, desc)
		}
	default:
		return
	}
	sort.SliceStable(records, func(i, j int) bool { return less(records[i], records[j]) })
}

func orderString(a, b string, desc bool) bool {
	if desc {
		return a > b
	}
	return a < b
}

// Paginate slices out one page and reports the page count. Page numbers are
// one-based; out-of-range pages clamp to the nearest valid one.
func Paginate(records []internal.Record, page, perPage int) ([]internal.Record, int) {
	if perPage < minPerPage || perPage > maxPerPage {
		perPage = defaultPerPage
	}
	totalPages := (len(records) + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * perPage
	end := start + perPage
	if start > len(records) {
		start = len(records)
	}
	if end > len(records) {
		end = len(records)
	}
	return records[start:end], totalPages
}

// Summary carries the headline figures for a result set.
type Summary struct {
	Total    int              `json:"total"`
	Priced   int              `json:"priced"`
	Cheapest *internal.Record `json:"cheapest,omitempty"`
	Dearest  *internal.Record `json:"dearest,omitempty"`
}

// Summarize finds the cheapest and most expensive priced records. Records
// whose price does not parse are counted in Total but excluded from the
// min/max figures.
func Summarize(records []internal.Record) Summary {
	s := Summary{Total: len(records)}
	var minV, maxV float64
	for i := range records {
		v, ok := scrape.PriceNumber(records[i].Price)
		if !ok {
			continue
		}
		s.Priced++
		if s.Cheapest == nil || v < minV {
			minV = v
			s.Cheapest = &records[i]
		}
		if s.Dearest == nil || v > maxV {
			maxV = v
			s.Dearest = &records[i]
		}
	}
	return s
}

// Pharmacies lists the distinct source names present in the records, in
// first-appearance order, for the filter dropdown.
func Pharmacies(records []internal.Record) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, rec := range records {
		if rec.SourceName == "" {
			continue
		}
		if _, dup := seen[rec.SourceName]; dup {
			continue
		}
		seen[rec.SourceName] = struct{}{}
		out = append(out, rec.SourceName)
	}
	return out
}
