package scrape

import "testing"

func TestExtractPrice(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "first valid match wins", input: "Precio: S/ 12.50 antes S/15.00", want: "S/ 12.50"},
		{name: "comma decimal", input: "S/ 9,90", want: "S/ 9.90"},
		{name: "suffixed currency", input: "12.50 S/.", want: "S/ 12.50"},
		{name: "soles label", input: "cuesta 5.50 soles", want: "S/ 5.50"},
		{name: "bare code rejected", input: "código 123456", want: ""},
		{name: "out of range", input: "S/ 99,999.00", want: ""},
		{name: "grouped thousands", input: "S/ 1.234,56", want: "S/ 1234.56"},
		{name: "empty", input: "", want: ""},
		{name: "no digits", input: "agregar al carrito", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractPrice(tc.input)
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestAllPrices(t *testing.T) {
	text := "Ibuprofeno S/ 9.90 oferta\nParacetamol S/ 4.50\notra vez S/ 9.90"
	prices := AllPrices(text)
	if len(prices) != 2 {
		t.Fatalf("len=%d %v", len(prices), prices)
	}
	if prices[0] != "S/ 9.90" || prices[1] != "S/ 4.50" {
		t.Fatalf("prices=%v", prices)
	}
}

func TestAllPricesRejectsBareNumbers(t *testing.T) {
	if got := AllPrices("orden 4832 unidades 12"); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestPriceNumber(t *testing.T) {
	v, ok := PriceNumber("S/ 12.50")
	if !ok || v != 12.5 {
		t.Fatalf("v=%v ok=%v", v, ok)
	}
	if _, ok := PriceNumber(""); ok {
		t.Fatal("empty should not parse")
	}
}
