package scrape

import (
	"regexp"
	"strings"

	"medbuscador/internal"
	"medbuscador/internal/util"
)

// reCurrencyToken matches a whole currency expression (marker plus amount, in
// either order) so it can be stripped from a line when deriving a name.
var reCurrencyToken = regexp.MustCompile(`(?i)(?:S/\.?|precio[:\s]+S?/?\.?)\s*\d[\d.,]*|\d[\d.,]*\s*(?:S/\.?|soles?|PEN)`)

// MineText is the last extraction tier: no DOM at all, just the page's
// visible text. Every currency amount found is turned into a hit; names come
// from the amount's own line or nearby lines, and amounts with no plausible
// neighbour are still kept under the query's name so a priced result is never
// silently dropped.
func MineText(text, query, sourceURL string) []internal.Hit {
	if text == "" {
		return nil
	}

	lines := splitLines(text)
	consumed := map[string]struct{}{}
	hits := []internal.Hit{}

	for i, line := range lines {
		for _, price := range AllPrices(line) {
			if _, done := consumed[price]; done {
				continue
			}
			name := nameForPriceLine(lines, i, query)
			if name == "" {
				continue
			}
			consumed[price] = struct{}{}
			hits = append(hits, internal.Hit{Name: name, Price: price, URL: sourceURL})
			if len(hits) >= maxContainers {
				return dedupeHits(hits)
			}
		}
	}

	// Amounts the line walk could not place. Only synthesized when a query
	// exists to name them after.
	if query != "" {
		for _, price := range AllPrices(text) {
			if _, done := consumed[price]; done {
				continue
			}
			hits = append(hits, internal.Hit{
				Name:  strings.ToUpper(query),
				Price: price,
				URL:   sourceURL,
			})
			if len(hits) >= maxContainers {
				break
			}
		}
	}
	return dedupeHits(hits)
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = util.NormalizeSpaces(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// nameForPriceLine derives a product name for the price found on lines[i]:
// first the line itself with the currency expression removed, then a window
// of three lines either side, query-bearing lines first.
func nameForPriceLine(lines []string, i int, query string) string {
	if name := stripCurrency(lines[i]); plausibleName(name, "") {
		return name
	}

	queryLower := strings.ToLower(query)
	fallback := ""
	for offset := 1; offset <= 3; offset++ {
		for _, j := range []int{i - offset, i + offset} {
			if j < 0 || j >= len(lines) {
				continue
			}
			candidate := stripCurrency(lines[j])
			if !plausibleName(candidate, "") {
				continue
			}
			if queryLower != "" && strings.Contains(strings.ToLower(candidate), queryLower) {
				return candidate
			}
			if fallback == "" {
				fallback = candidate
			}
		}
	}
	return fallback
}

func stripCurrency(line string) string {
	return util.NormalizeSpaces(reCurrencyToken.ReplaceAllString(line, " "))
}
