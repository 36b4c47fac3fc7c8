package view

import (
	"testing"

	"medbuscador/internal"
)

func sample() []internal.Record {
	return []internal.Record{
		{ProductName: "IBUPROFENO 400MG", Price: "S/ 9.90", SourceName: "Mifarma"},
		{ProductName: "PARACETAMOL 500MG", Price: "S/ 4.50", SourceName: "Inkafarma"},
		{ProductName: "AMOXICILINA 500MG", Price: "", SourceName: "Mifarma"},
		{ProductName: "LOSARTAN 50MG", Price: "S/ 15.90", SourceName: "Farmauna"},
	}
}

func TestFilterByPharmacy(t *testing.T) {
	got := Filter(sample(), []string{"mifarma"})
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	for _, rec := range got {
		if rec.SourceName != "Mifarma" {
			t.Fatalf("rec=%+v", rec)
		}
	}
	if got := Filter(sample(), nil); len(got) != 4 {
		t.Fatalf("unfiltered len=%d", len(got))
	}
}

func TestSortPriceNumericUnpricedLast(t *testing.T) {
	recs := sample()
	Sort(recs, "price", false)
	if recs[0].Price != "S/ 4.50" || recs[1].Price != "S/ 9.90" || recs[2].Price != "S/ 15.90" {
		t.Fatalf("order=%v", recs)
	}
	if recs[3].Price != "" {
		t.Fatal("unpriced record not last")
	}

	Sort(recs, "price", true)
	if recs[0].Price != "S/ 15.90" {
		t.Fatalf("desc order=%v", recs)
	}
	if recs[3].Price != "" {
		t.Fatal("unpriced record not last on desc")
	}
}

func TestSortByName(t *testing.T) {
	recs := sample()
	Sort(recs, "name", false)
	if recs[0].ProductName != "AMOXICILINA 500MG" {
		t.Fatalf("order=%v", recs)
	}
}

func TestPaginate(t *testing.T) {
	recs := make([]internal.Record, 12)
	page, total := Paginate(recs, 2, 5)
	if total != 3 || len(page) != 5 {
		t.Fatalf("total=%d len=%d", total, len(page))
	}
	page, total = Paginate(recs, 3, 5)
	if total != 3 || len(page) != 2 {
		t.Fatalf("last page total=%d len=%d", total, len(page))
	}
	// Out-of-range values clamp.
	if page, _ := Paginate(recs, 99, 5); len(page) != 2 {
		t.Fatalf("clamped page len=%d", len(page))
	}
	if page, _ := Paginate(recs, 1, 1000); len(page) != 12 {
		t.Fatalf("perPage fallback len=%d", len(page))
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample())
	if s.Total != 4 || s.Priced != 3 {
		t.Fatalf("summary=%+v", s)
	}
	if s.Cheapest == nil || s.Cheapest.Price != "S/ 4.50" {
		t.Fatalf("cheapest=%+v", s.Cheapest)
	}
	if s.Dearest == nil || s.Dearest.Price != "S/ 15.90" {
		t.Fatalf("dearest=%+v", s.Dearest)
	}

	empty := Summarize(nil)
	if empty.Cheapest != nil || empty.Dearest != nil || empty.Total != 0 {
		t.Fatalf("empty=%+v", empty)
	}
}

func TestPharmacies(t *testing.T) {
	got := Pharmacies(sample())
	want := []string{"Mifarma", "Inkafarma", "Farmauna"}
	if len(got) != len(want) {
		t.Fatalf("got=%v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got=%v", got)
		}
	}
}
