package catalog

import (
	"strings"

	"medbuscador/internal"
	"medbuscador/internal/util"
)

type SourceProfile string

const (
	ProfileMain  SourceProfile = "main"
	ProfileExtra SourceProfile = "extra"
)

// Alias candidates per canonical field, tried in order; matching is
// case-insensitive on the trimmed header. First match wins.
var (
	aliasCode         = []string{"código producto", "codigo producto", "cod", "codigo", "sku"}
	aliasProduct      = []string{"producto (marca comercial)", "producto", "marca comercial", "nombre del producto", "nombre"}
	aliasIngredient   = []string{"principio activo", "p. activo", "activo"}
	aliasRegistry     = []string{"n° digemid", "no digemid", "numero digemid", "registro digemid", "n°  digemid"}
	aliasManufacturer = []string{"laboratorio / fabricante", "laboratorio", "fabricante", "proveedor", "lab"}
	aliasPresentation = []string{"presentación", "presentacion", "contenido"}
	aliasPrice        = []string{"precio", "precio (s/)", "precio s/", "precio s/.", "monto"}
	aliasSource       = []string{"farmacia / fuente", "farmacia", "fuente", "botica", "cadena", "tienda"}
	aliasLink         = []string{"enlace", "link", "url"}
	aliasGroup        = []string{"grupo"}
	aliasAbbrev       = []string{"laboratorio abreviado", "lab. abreviado", "laboratorio abrev"}
	aliasPriceLabel   = []string{"laboratorio precio", "lab precio", "lab completo"}
	aliasOrigin       = []string{"origen", "_origen"}
)

// Normalize maps a table with arbitrary headers onto canonical records.
// Pure over its input; a table the reader could not parse comes in empty and
// goes out as zero records.
func Normalize(table Table, profile SourceProfile) []internal.Record {
	if table.Empty() {
		return []internal.Record{}
	}

	lower := map[string]int{}
	for i, h := range table.Headers {
		lower[strings.ToLower(strings.TrimSpace(h))] = i
	}
	pick := func(aliases []string) int {
		for _, a := range aliases {
			if i, ok := lower[a]; ok {
				return i
			}
		}
		return -1
	}

	registryIdx := pick(aliasRegistry)
	if registryIdx < 0 && profile == ProfileExtra {
		// Supplementary price lists often label the registry column with
		// some spelling of "código digemid"; accept any header carrying
		// both a code root and the "dig" substring.
		for i, h := range table.Headers {
			k := strings.ToLower(strings.TrimSpace(h))
			if (strings.Contains(k, "cod") || strings.Contains(k, "c")) && strings.Contains(k, "dig") {
				registryIdx = i
				break
			}
		}
	}

	idx := map[string]int{
		"code":         pick(aliasCode),
		"product":      pick(aliasProduct),
		"ingredient":   pick(aliasIngredient),
		"registry":     registryIdx,
		"manufacturer": pick(aliasManufacturer),
		"presentation": pick(aliasPresentation),
		"price":        pick(aliasPrice),
		"source":       pick(aliasSource),
		"link":         pick(aliasLink),
		"group":        pick(aliasGroup),
		"abbrev":       pick(aliasAbbrev),
		"priceLabel":   pick(aliasPriceLabel),
		"origin":       pick(aliasOrigin),
	}

	out := make([]internal.Record, 0, len(table.Rows))
	for _, row := range table.Rows {
		cell := func(key string) string {
			i := idx[key]
			if i < 0 || i >= len(row) {
				return ""
			}
			return row[i]
		}

		rec := internal.Record{
			ProductCode:         util.UpperClean(cell("code")),
			ProductName:         util.UpperClean(cell("product")),
			ActiveIngredient:    util.UpperClean(cell("ingredient")),
			RegistryID:          util.UpperClean(cell("registry")),
			Manufacturer:        util.UpperClean(cell("manufacturer")),
			ManufacturerAbbrev:  util.UpperClean(cell("abbrev")),
			Presentation:        util.UpperClean(cell("presentation")),
			Price:               util.CleanCell(cell("price")),
			SourceName:          util.UpperClean(cell("source")),
			Link:                util.CleanCell(cell("link")),
			Group:               util.UpperClean(cell("group")),
			SecondaryPriceLabel: util.UpperClean(cell("priceLabel")),
			Origin:              originFromCell(cell("origin"), profile),
		}
		rec.SyncIdentity()
		out = append(out, rec)
	}
	return out
}

// originFromCell keeps the provenance of rows written back by the web cache;
// everything else defaults to the profile it was loaded under.
func originFromCell(cell string, profile SourceProfile) internal.Origin {
	switch internal.Origin(util.UpperClean(cell)) {
	case internal.OriginWebCached:
		return internal.OriginWebCached
	case internal.OriginWeb:
		return internal.OriginWeb
	}
	if profile == ProfileExtra {
		return internal.OriginExtra
	}
	return internal.OriginBase
}
