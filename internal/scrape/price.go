package scrape

import (
	"regexp"
	"strconv"
	"strings"
)

// Plausible price window in soles. Anything outside is treated as a false
// positive (postal codes, SKUs, phone fragments) and discarded.
const (
	minPrice = 0.01
	maxPrice = 10000
)

// Ordered by specificity: explicit currency context first, the bare grouped
// decimal last. Each pattern captures the numeric token in group 1.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)S/\.?\s*(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?)`),
	regexp.MustCompile(`(?i)(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?)\s*S/\.?`),
	regexp.MustCompile(`(?i)precio[:\s]+S?/?\.?\s*(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?)`),
	regexp.MustCompile(`(?i)(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?)\s*soles?`),
	regexp.MustCompile(`(?i)(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?)\s*PEN`),
	regexp.MustCompile(`(?:^|[^\d.,])(\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{2})?|\d{1,3}(?:[.,]\d{2})?)(?:[^\d.,]|$)`),
}

// Currency-anchored subset used by the exhaustive text scan; the bare
// decimal pattern over-matches far too much for a full-page sweep.
var currencyPatterns = pricePatterns[:5]

var (
	reThousandDots   = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+(?:,\d{2})?$`)
	reThousandCommas = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d{2})?$`)
	rePriceNumber    = regexp.MustCompile(`(\d+(?:\.\d{2})?)`)
)

// ExtractPrice finds the first plausible currency amount in text, returned
// in display form ("S/ 12.50"). Patterns are tried in order; a pattern whose
// first match fails the sanity bounds yields to the next pattern rather than
// scanning further. Empty result means no plausible price.
func ExtractPrice(text string) string {
	if text == "" {
		return ""
	}
	s := strings.NewReplacer(" ", " ", "\n", " ").Replace(text)

	for _, pattern := range pricePatterns {
		m := pattern.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		if norm, ok := boundedPrice(m[1]); ok {
			return "S/ " + norm
		}
	}
	return ""
}

// AllPrices is the exhaustive counterpart of ExtractPrice: every match of
// every currency-anchored pattern, deduplicated, bounds applied. Order
// follows first appearance in the text per pattern.
func AllPrices(text string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, pattern := range currencyPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			norm, ok := boundedPrice(m[1])
			if !ok {
				continue
			}
			display := "S/ " + norm
			if _, dup := seen[display]; dup {
				continue
			}
			seen[display] = struct{}{}
			out = append(out, display)
		}
	}
	return out
}

// PriceNumber parses the numeric value out of a display price for the
// numeric-aware sort. Returns false for empty or unparseable input.
func PriceNumber(display string) (float64, bool) {
	s := strings.ReplaceAll(display, ",", ".")
	m := rePriceNumber.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func boundedPrice(token string) (string, bool) {
	norm := normalizeNumber(token)
	v, err := strconv.ParseFloat(norm, 64)
	if err != nil {
		return "", false
	}
	if v < minPrice || v > maxPrice {
		return "", false
	}
	return norm, true
}

// normalizeNumber reduces grouped tokens ("1.234,56", "1,234.56") to a plain
// decimal with a dot separator.
func normalizeNumber(token string) string {
	compact := strings.ReplaceAll(token, " ", "")
	if reThousandDots.MatchString(compact) {
		compact = strings.ReplaceAll(compact, ".", "")
		return strings.ReplaceAll(compact, ",", ".")
	}
	if reThousandCommas.MatchString(compact) {
		return strings.ReplaceAll(compact, ",", "")
	}
	if strings.Contains(compact, ",") && !strings.Contains(compact, ".") {
		return strings.ReplaceAll(compact, ",", ".")
	}
	return compact
}
