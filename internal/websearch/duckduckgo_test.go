package websearch

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"medbuscador/internal/scrape"
)

type fakeFetcher struct {
	pages map[string]scrape.Page
}

func (f *fakeFetcher) Fetch(_ context.Context, target string) (scrape.Page, error) {
	for key, page := range f.pages {
		if strings.Contains(target, key) {
			return page, nil
		}
	}
	return scrape.Page{}, context.DeadlineExceeded
}

const serpHTML = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Ffarmacia.example%2Fibuprofeno">Ibuprofeno 400mg - Farmacia Example</a>
  <div class="result__snippet">Ibuprofeno 400mg tabletas a S/ 8.90 con delivery.</div>
</div>
<div class="result">
  <a class="result__a" href="https://blog.example/articulo">Todo sobre el ibuprofeno</a>
  <div class="result__snippet">Usos y contraindicaciones.</div>
</div>
</body></html>`

func TestSearchUsesSnippetPrices(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]scrape.Page{
		"duckduckgo.com": {HTML: serpHTML},
		"blog.example":   {HTML: "<body><p>sin precios</p></body>"},
	}}
	engine := NewDuckDuckGo(zap.NewNop(), fetcher, "")

	hits, err := engine.Search(context.Background(), "ibuprofeno", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits=%v", hits)
	}
	if hits[0].Price != "S/ 8.90" {
		t.Fatalf("price=%q", hits[0].Price)
	}
	if hits[0].URL != "https://farmacia.example/ibuprofeno" {
		t.Fatalf("url=%q", hits[0].URL)
	}
}

func TestSearchMinesResultPages(t *testing.T) {
	serp := `<div class="result">
	  <a class="result__a" href="https://farmacia.example/losartan">Losartán en oferta</a>
	  <div class="result__snippet">La mejor farmacia del país.</div>
	</div>`
	fetcher := &fakeFetcher{pages: map[string]scrape.Page{
		"duckduckgo.com":   {HTML: serp},
		"farmacia.example": {HTML: "<body><p>Losartán 50mg x 30 tabletas S/ 15.90</p></body>"},
	}}
	engine := NewDuckDuckGo(zap.NewNop(), fetcher, "")

	hits, err := engine.Search(context.Background(), "losartan", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits=%v", hits)
	}
	if hits[0].Name != "Losartán 50mg x 30 tabletas" || hits[0].Price != "S/ 15.90" {
		t.Fatalf("hit=%+v", hits[0])
	}
}

func TestSearchEngineErrorPropagates(t *testing.T) {
	engine := NewDuckDuckGo(zap.NewNop(), &fakeFetcher{}, "")
	if _, err := engine.Search(context.Background(), "ibuprofeno", 10); err == nil {
		t.Fatal("expected error")
	}
}

func TestCleanResultURL(t *testing.T) {
	cases := map[string]string{
		"//duckduckgo.com/l/?uddg=https%3A%2F%2Fx.example%2Fp": "https://x.example/p",
		"https://x.example/p":                                  "https://x.example/p",
		"javascript:void(0)":                                   "",
	}
	for in, want := range cases {
		if got := cleanResultURL(in); got != want {
			t.Fatalf("cleanResultURL(%q)=%q want %q", in, got, want)
		}
	}
}
