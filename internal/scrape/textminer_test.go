package scrape

import (
	"strings"
	"testing"
)

func TestMineTextAssociatesNearbyLine(t *testing.T) {
	text := strings.Join([]string{
		"Resultados para paracetamol",
		"Paracetamol 500mg x 10 tabletas",
		"S/ 3.50",
		"Agregar al carrito",
	}, "\n")

	hits := MineText(text, "paracetamol", "https://testfarma.example/buscar")
	if len(hits) != 1 {
		t.Fatalf("len=%d %v", len(hits), hits)
	}
	if hits[0].Name != "Paracetamol 500mg x 10 tabletas" {
		t.Fatalf("name=%q", hits[0].Name)
	}
	if hits[0].Price != "S/ 3.50" {
		t.Fatalf("price=%q", hits[0].Price)
	}
}

func TestMineTextStripsCurrencyFromName(t *testing.T) {
	hits := MineText("Ibuprofeno 400mg tabletas S/ 9.90", "ibuprofeno", "u")
	if len(hits) != 1 {
		t.Fatalf("len=%d %v", len(hits), hits)
	}
	if hits[0].Name != "Ibuprofeno 400mg tabletas" {
		t.Fatalf("name=%q", hits[0].Name)
	}
}

func TestMineTextSynthesizesWhenNoName(t *testing.T) {
	hits := MineText("S/ 7.20", "amoxicilina", "u")
	if len(hits) != 1 {
		t.Fatalf("len=%d %v", len(hits), hits)
	}
	if hits[0].Name != "AMOXICILINA" || hits[0].Price != "S/ 7.20" {
		t.Fatalf("hit=%+v", hits[0])
	}
}

func TestMineTextNoQueryNoSynthesis(t *testing.T) {
	if hits := MineText("S/ 7.20", "", "u"); len(hits) != 0 {
		t.Fatalf("hits=%v", hits)
	}
}

func TestMineTextIgnoresBareNumbers(t *testing.T) {
	if hits := MineText("stock 123 unidades\npedido 4567", "loratadina", "u"); len(hits) != 0 {
		t.Fatalf("hits=%v", hits)
	}
}
