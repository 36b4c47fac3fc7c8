package scrape

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"medbuscador/internal"
	"medbuscador/internal/util"
)

const (
	maxContainers = 50
	minNameLen    = 5
	maxNameLen    = 150
)

// Tokens that mark storefront chrome rather than product names.
var boilerplateTokens = []string{
	"agregar", "comprar", "ver más", "ver mas", "menos", "stock",
	"disponible", "carrito", "precio", "soles", "click", "button",
	"cantidad", "añadir",
}

var nameSelectors = []string{
	".product-name", ".product-title", ".item-name", ".nombre", ".title",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"a[href]",
	"[class*='product']", "[class*='item']", "[class*='nombre']",
	".name", ".producto", ".medicamento",
}

// MineHTML extracts candidate {name, price, url} hits from a retailer
// results page using the profile's structural hints. Pure over its inputs.
// Tier order: product containers, then bare price elements with ancestor
// walking, then nothing — the caller decides whether to fall through to the
// text miner.
func MineHTML(htmlStr, baseURL string, profile internal.Profile, query string) []internal.Hit {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil
	}
	stripNoise(doc)

	containers := collectContainers(doc, profile.ContainerSelectors)
	hits := []internal.Hit{}
	if len(containers) > 0 {
		for _, container := range containers {
			if hit, ok := hitFromContainer(container, baseURL, profile); ok {
				hits = append(hits, hit)
			}
		}
	} else {
		hits = minePriceElements(doc, baseURL, profile)
	}
	return dedupeHits(hits)
}

// VisibleText renders the page's human-readable text: noise nodes removed,
// whitespace left as-is so line association still works downstream.
func VisibleText(htmlStr string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}
	stripNoise(doc)
	return doc.Text()
}

func stripNoise(doc *goquery.Document) {
	doc.Find("script,style,nav,footer,header").Remove()
}

func collectContainers(doc *goquery.Document, selectors []string) []*goquery.Selection {
	seen := map[*html.Node]struct{}{}
	out := []*goquery.Selection{}
	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if len(out) >= maxContainers || len(s.Nodes) == 0 {
				return
			}
			node := s.Nodes[0]
			if _, dup := seen[node]; dup {
				return
			}
			seen[node] = struct{}{}
			out = append(out, s)
		})
		if len(out) >= maxContainers {
			break
		}
	}
	return out
}

func hitFromContainer(container *goquery.Selection, baseURL string, profile internal.Profile) (internal.Hit, bool) {
	price := ""
	for _, sel := range profile.PriceSelectors {
		elem := container.Find(sel).First()
		if elem.Length() == 0 {
			continue
		}
		if price = ExtractPrice(elem.Text()); price != "" {
			break
		}
	}
	if price == "" {
		return internal.Hit{}, false
	}

	name := nameFromSelectors(container, price)
	if name == "" {
		name = nameFromLinkAttrs(container)
	}
	if name == "" {
		name = nameFromTextLines(container.Text(), price)
	}
	if name == "" {
		return internal.Hit{}, false
	}

	return internal.Hit{
		Name:  util.NormalizeSpaces(name),
		Price: price,
		URL:   resolveLink(container, baseURL),
	}, true
}

func nameFromSelectors(container *goquery.Selection, priceText string) string {
	for _, sel := range nameSelectors {
		text := util.NormalizeSpaces(container.Find(sel).First().Text())
		if plausibleName(text, priceText) {
			return text
		}
	}
	return ""
}

func nameFromLinkAttrs(container *goquery.Selection) string {
	link := container.Find("a[href]").First()
	if link.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"title", "aria-label", "alt"} {
		if value, ok := link.Attr(attr); ok {
			value = util.NormalizeSpaces(value)
			if plausibleName(value, "") {
				return value
			}
		}
	}
	return ""
}

func nameFromTextLines(text, priceText string) string {
	for _, line := range strings.Split(text, "\n") {
		line = util.NormalizeSpaces(line)
		if plausibleName(line, priceText) {
			return line
		}
	}
	return ""
}

func plausibleName(text, priceText string) bool {
	if n := len([]rune(text)); n < minNameLen || n > maxNameLen {
		return false
	}
	if priceText != "" && text == priceText {
		return false
	}
	if isAllDigits(text) {
		return false
	}
	return !util.ContainsAny(text, boilerplateTokens)
}

func isAllDigits(text string) bool {
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(text) > 0
}

func resolveLink(container *goquery.Selection, baseURL string) string {
	href, ok := container.Find("a[href]").First().Attr("href")
	if !ok || href == "" {
		return baseURL
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	ref, err := url.Parse(href)
	if err != nil {
		return baseURL
	}
	return base.ResolveReference(ref).String()
}

// minePriceElements is the proximity fallback for pages where no container
// selector matched: locate bare price-bearing elements, then walk up to five
// ancestor levels looking for a plausible name nearby.
func minePriceElements(doc *goquery.Document, baseURL string, profile internal.Profile) []internal.Hit {
	seenPrices := map[string]struct{}{}
	hits := []internal.Hit{}

	for _, sel := range profile.PriceSelectors {
		doc.Find(sel).Each(func(_ int, elem *goquery.Selection) {
			if len(hits) >= maxContainers {
				return
			}
			priceText := util.NormalizeSpaces(elem.Text())
			price := ExtractPrice(priceText)
			if price == "" {
				return
			}
			if _, dup := seenPrices[price]; dup {
				return
			}
			seenPrices[price] = struct{}{}

			name := nameNearPriceElement(elem, priceText)
			if name == "" {
				return
			}
			hits = append(hits, internal.Hit{Name: name, Price: price, URL: baseURL})
		})
	}
	return hits
}

func nameNearPriceElement(elem *goquery.Selection, priceText string) string {
	parent := elem.Parent()
	for level := 0; level < 5 && parent.Length() > 0; level++ {
		for _, sel := range []string{"a", "h1", "h2", "h3", "h4", "span", "div"} {
			name := ""
			parent.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				text := util.NormalizeSpaces(s.Text())
				if plausibleName(text, priceText) {
					name = text
					return false
				}
				return true
			})
			if name != "" {
				return name
			}
		}
		parent = parent.Parent()
	}
	return ""
}

func dedupeHits(hits []internal.Hit) []internal.Hit {
	seen := map[string]struct{}{}
	out := make([]internal.Hit, 0, len(hits))
	for _, hit := range hits {
		key := hitKey(hit)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, hit)
	}
	return out
}

func hitKey(hit internal.Hit) string {
	name := strings.ToUpper(hit.Name)
	if r := []rune(name); len(r) > 50 {
		name = string(r[:50])
	}
	return name + "\x00" + hit.Price
}
