package internal

type Origin string

const (
	OriginBase      Origin = "BASE"
	OriginExtra     Origin = "EXTRA"
	OriginWeb       Origin = "WEB"
	OriginWebCached Origin = "WEB_CACHED"
)

// Record is the canonical shape of one product/price observation,
// regardless of whether it came from a local catalog or a live retailer page.
// ProductCode and RegistryID are kept as distinct fields but synchronized
// after normalization: whichever is non-empty populates the other.
type Record struct {
	ProductCode         string `json:"productCode"`
	ProductName         string `json:"productName"`
	ActiveIngredient    string `json:"activeIngredient"`
	RegistryID          string `json:"registryId"`
	Manufacturer        string `json:"manufacturer"`
	ManufacturerAbbrev  string `json:"manufacturerAbbrev"`
	Presentation        string `json:"presentation"`
	Price               string `json:"price"`
	SourceName          string `json:"sourceName"`
	Link                string `json:"link"`
	Group               string `json:"group"`
	SecondaryPriceLabel string `json:"secondaryPriceLabel"`
	Origin              Origin `json:"origin"`
}

// SyncIdentity enforces the code/registry aliasing rule on a record.
// The catalog source data treats the two as one logical key; both fields
// are preserved separately so a future split stays possible.
func (r *Record) SyncIdentity() {
	if r.ProductCode == "" {
		r.ProductCode = r.RegistryID
	}
	r.RegistryID = r.ProductCode
}

// Hit is a raw extraction from one retailer page, before the orchestrator
// widens it into a Record.
type Hit struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	URL   string `json:"url"`
}

// Profile is the static per-retailer configuration: how to search the site
// and which structural hints identify products and prices there. Loaded once
// at process start, never mutated afterwards.
type Profile struct {
	Name               string   `yaml:"name"`
	BaseURL            string   `yaml:"baseUrl"`
	SearchURL          string   `yaml:"searchUrl"`
	PriceSelectors     []string `yaml:"priceSelectors"`
	ContainerSelectors []string `yaml:"containerSelectors"`
	RequiresRendering  bool     `yaml:"requiresRendering"`
	TextFallback       bool     `yaml:"textFallback"`
	CustomSearchURL    bool     `yaml:"customSearchUrl"`
}

type User struct {
	Username string `json:"username"`
	Password string `json:"-"`
	Role     string `json:"role"`
}

const (
	RoleAdmin    = "admin"
	RoleConsulta = "consulta"
)

type SearchMode string

const (
	ModeBase SearchMode = "base"
	ModeWeb  SearchMode = "web"
	ModeBoth SearchMode = "both"
)

type SearchScope string

const (
	ScopeProduct    SearchScope = "PRODUCTO"
	ScopeIngredient SearchScope = "PRINCIPIO ACTIVO"
	ScopeBoth       SearchScope = "AMBOS"
)
