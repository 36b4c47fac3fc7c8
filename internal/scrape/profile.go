package scrape

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"medbuscador/internal"
)

// genericPriceSelectors and genericContainerSelectors cover the storefront
// frameworks seen across Peruvian pharmacy chains; per-profile lists put the
// framework-specific selectors first.
var genericPriceSelectors = []string{
	".price", ".precio", "[class*='price']", "[class*='precio']",
	".amount", ".cost", ".valor", ".precio-actual",
	".price-current", ".current-price", ".price-value",
}

var genericContainerSelectors = []string{
	".product-item", ".product", ".item", ".producto",
	"[class*='product']", "[class*='resultado']",
	".search-result", ".result-item", ".product-card",
	"div[class*='card']", "article[class*='product']",
}

func withGeneric(specific []string, generic []string) []string {
	out := make([]string, 0, len(specific)+len(generic))
	out = append(out, specific...)
	out = append(out, generic...)
	return out
}

// DefaultProfiles is the built-in retailer set. Order matters: the
// orchestrator walks it as given.
func DefaultProfiles() []internal.Profile {
	return []internal.Profile{
		{
			Name:               "Mifarma",
			BaseURL:            "https://www.mifarma.com.pe",
			SearchURL:          "https://www.mifarma.com.pe/buscador?keyword={query}",
			PriceSelectors:     withGeneric([]string{"fp-price", "[class*='fp-price']", "[class*='ng-price']"}, genericPriceSelectors),
			ContainerSelectors: withGeneric([]string{"fp-product", "fp-item", "fp-card", "[class*='fp-']"}, genericContainerSelectors),
			RequiresRendering:  true,
			TextFallback:       true,
		},
		{
			Name:               "Inkafarma",
			BaseURL:            "https://inkafarma.pe",
			SearchURL:          "https://inkafarma.pe/buscador?keyword={query}",
			PriceSelectors:     withGeneric([]string{"fp-price", "[class*='fp-price']", "[class*='ng-price']"}, genericPriceSelectors),
			ContainerSelectors: withGeneric([]string{"fp-product", "fp-item", "fp-card", "[class*='fp-']"}, genericContainerSelectors),
			RequiresRendering:  true,
			TextFallback:       true,
		},
		{
			Name:               "Boticas y Salud",
			BaseURL:            "https://www.boticasysalud.com",
			SearchURL:          "https://www.boticasysalud.com/tienda/busqueda?q={query}",
			PriceSelectors:     withGeneric([]string{"[data-price]", "[itemprop='price']", ".product-price", ".price-wrapper"}, genericPriceSelectors),
			ContainerSelectors: withGeneric([]string{"article.product", "li.product"}, genericContainerSelectors),
			TextFallback:       true,
		},
		{
			Name:               "Boticas Perú",
			BaseURL:            "https://boticasperu.pe",
			SearchURL:          "https://boticasperu.pe/catalogsearch/result/?q={query}",
			PriceSelectors:     withGeneric([]string{"span.price", "[data-price-type]", ".price-box .price", ".price-final"}, genericPriceSelectors),
			ContainerSelectors: withGeneric([]string{".products-grid .product-item", "li.product-item"}, genericContainerSelectors),
		},
		{
			Name:               "Hogar y Salud",
			BaseURL:            "https://www.hogarysalud.com.pe",
			SearchURL:          "https://www.hogarysalud.com.pe/?s={query}&post_type=product",
			PriceSelectors:     withGeneric([]string{".woocommerce-Price-amount", "span.woocommerce-Price-amount"}, genericPriceSelectors),
			ContainerSelectors: withGeneric([]string{".woocommerce ul.products li.product", "li.product", "article.product"}, genericContainerSelectors),
			TextFallback:       true,
		},
		{
			Name:               "Farmacia Universal",
			BaseURL:            "https://www.farmaciauniversal.com",
			SearchURL:          "https://www.farmaciauniversal.com/{query}?_q={query}&map=ft",
			PriceSelectors:     withGeneric([]string{".vtex-product-price-1-x-sellingPrice", ".vtex-store-components-3-x-sellingPrice", "[class*='vtex-price']"}, genericPriceSelectors),
			ContainerSelectors: withGeneric([]string{".vtex-product-summary-2-x-container", ".vtex-search-result-3-x-galleryItem", "[class*='galleryItem']"}, genericContainerSelectors),
			RequiresRendering:  true,
			CustomSearchURL:    true,
		},
		{
			Name:               "Farmauna",
			BaseURL:            "https://www.farmauna.com",
			SearchURL:          "https://www.farmauna.com/search?q={query}",
			PriceSelectors:     withGeneric([]string{"[data-price-value]", ".selling-price"}, genericPriceSelectors),
			ContainerSelectors: withGeneric([]string{".search-result-item", ".item-product", ".product-tile"}, genericContainerSelectors),
			RequiresRendering:  true,
			TextFallback:       true,
		},
		{
			Name:               "Farmacias Lider",
			BaseURL:            "https://www.farmaciaslider.pe",
			SearchURL:          "https://www.farmaciaslider.pe/category_product_search?product_name={query}",
			PriceSelectors:     withGeneric([]string{"[itemprop='price']", ".selling-price", ".price-box"}, genericPriceSelectors),
			ContainerSelectors: withGeneric([]string{".product-list-item", ".product-tile"}, genericContainerSelectors),
			TextFallback:       true,
		},
		{
			Name:               "Farmacenter",
			BaseURL:            "https://farmacenter.com.pe",
			SearchURL:          "https://farmacenter.com.pe/?s={query}&post_type=product",
			PriceSelectors:     withGeneric([]string{".woocommerce-Price-amount", "span.woocommerce-Price-amount"}, genericPriceSelectors),
			ContainerSelectors: withGeneric([]string{".woocommerce ul.products li.product", "li.product", "article.product"}, genericContainerSelectors),
			TextFallback:       true,
		},
	}
}

// LoadProfiles returns the built-in set, or the contents of a YAML override
// file when one is configured.
func LoadProfiles(path string) ([]internal.Profile, error) {
	if path == "" {
		return DefaultProfiles(), nil
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	var wrapper struct {
		Profiles []internal.Profile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(blob, &wrapper); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	if len(wrapper.Profiles) == 0 {
		return nil, fmt.Errorf("profiles file %s has no profiles", path)
	}
	return wrapper.Profiles, nil
}
