package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"medbuscador/internal"
	"medbuscador/internal/util"
)

// WebSourceName labels rows that came from the search-engine supplement
// rather than a known retailer.
const WebSourceName = "Búsqueda Web"

// SearchEngine supplements retailer results when direct mining comes up
// short. Implementations live in the websearch package.
type SearchEngine interface {
	Search(ctx context.Context, query string, max int) ([]internal.Hit, error)
}

// WebCache receives freshly scraped rows for persistence. Satisfied by
// catalog.Repository.
type WebCache interface {
	AppendWeb(records []internal.Record) error
}

// SourceResult is the per-retailer outcome of one online search, kept for
// logging and the UI's source breakdown. A failed source carries its error
// here instead of aborting the whole search.
type SourceResult struct {
	Source  string
	Hits    []internal.Hit
	Err     error
	Elapsed time.Duration
}

// Orchestrator walks the retailer profiles for one query, isolating each
// source so a slow or broken site cannot take the others down with it.
type Orchestrator struct {
	logger        *zap.Logger
	profiles      []internal.Profile
	fetcher       Fetcher
	renderer      Fetcher
	engine        SearchEngine
	cache         WebCache
	limiter       *Limiter
	maxResults    int
	minDirectHits int
}

type OrchestratorOptions struct {
	Profiles      []internal.Profile
	Fetcher       Fetcher
	Renderer      Fetcher // nil falls back to Fetcher for rendering profiles
	Engine        SearchEngine
	Cache         WebCache
	SourceDelay   time.Duration
	MaxResults    int
	MinDirectHits int
}

func NewOrchestrator(logger *zap.Logger, opts OrchestratorOptions) *Orchestrator {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 40
	}
	return &Orchestrator{
		logger:        logger,
		profiles:      opts.Profiles,
		fetcher:       opts.Fetcher,
		renderer:      opts.Renderer,
		engine:        opts.Engine,
		cache:         opts.Cache,
		limiter:       NewLimiter(opts.SourceDelay),
		maxResults:    opts.MaxResults,
		minDirectHits: opts.MinDirectHits,
	}
}

// FetchOnline runs the query against the profiles in order and returns the
// deduplicated records plus the per-source breakdown. A non-empty selected
// set restricts the pass to those retailers. When the direct pass yields
// fewer than the configured minimum, the search engine supplements the
// result set. Cached rows are written best-effort; a cache failure is
// logged, never surfaced to the caller.
func (o *Orchestrator) FetchOnline(ctx context.Context, query string, selected []string) ([]internal.Record, []SourceResult) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	wanted := map[string]struct{}{}
	for _, name := range selected {
		wanted[strings.ToUpper(strings.TrimSpace(name))] = struct{}{}
	}

	records := []internal.Record{}
	results := make([]SourceResult, 0, len(o.profiles))
	seen := map[string]struct{}{}

	for _, profile := range o.profiles {
		if len(wanted) > 0 {
			if _, ok := wanted[strings.ToUpper(profile.Name)]; !ok {
				continue
			}
		}
		if len(records) >= o.maxResults {
			break
		}
		if err := o.limiter.Wait(ctx); err != nil {
			break
		}

		res := o.mineSource(ctx, profile, query)
		results = append(results, res)
		if res.Err != nil {
			o.logger.Warn("source failed",
				zap.String("source", profile.Name),
				zap.Duration("elapsed", res.Elapsed),
				zap.Error(res.Err))
			continue
		}
		o.logger.Info("source mined",
			zap.String("source", profile.Name),
			zap.Int("hits", len(res.Hits)),
			zap.Duration("elapsed", res.Elapsed))

		for _, hit := range res.Hits {
			if len(records) >= o.maxResults {
				break
			}
			key := profile.Name + "\x00" + hit.Price + "\x00" + hit.URL
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			records = append(records, recordFromHit(hit, profile.Name))
		}
	}

	if len(records) < o.minDirectHits && o.engine != nil && ctx.Err() == nil {
		records = o.supplement(ctx, query, records, seen)
	}

	if o.cache != nil && len(records) > 0 {
		if err := o.cache.AppendWeb(records); err != nil {
			o.logger.Warn("web cache write failed", zap.Error(err))
		}
	}
	return records, results
}

func (o *Orchestrator) mineSource(ctx context.Context, profile internal.Profile, query string) (res SourceResult) {
	start := time.Now()
	res.Source = profile.Name
	defer func() {
		res.Elapsed = time.Since(start)
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("panic mining %s: %v", profile.Name, r)
		}
	}()

	target := searchURL(profile, query)
	fetcher := o.fetcher
	if profile.RequiresRendering && o.renderer != nil {
		fetcher = o.renderer
	}

	page, err := fetcher.Fetch(ctx, target)
	if err != nil {
		res.Err = fmt.Errorf("fetch %s: %w", target, err)
		return res
	}

	hits := MineHTML(page.HTML, profile.BaseURL, profile, query)
	if len(hits) == 0 && profile.TextFallback {
		text := page.Text
		if text == "" {
			text = VisibleText(page.HTML)
		}
		hits = MineText(text, query, target)
	}
	res.Hits = hits
	return res
}

func (o *Orchestrator) supplement(ctx context.Context, query string, records []internal.Record, seen map[string]struct{}) []internal.Record {
	hits, err := o.engine.Search(ctx, query, o.maxResults-len(records))
	if err != nil {
		o.logger.Warn("web search failed", zap.String("query", query), zap.Error(err))
		return records
	}
	for _, hit := range hits {
		if len(records) >= o.maxResults {
			break
		}
		key := WebSourceName + "\x00" + hit.Price + "\x00" + hit.URL
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		records = append(records, recordFromHit(hit, WebSourceName))
	}
	return records
}

// searchURL substitutes the query into the profile's search template. VTEX
// style stores carry the term in the URL path, so those profiles escape it
// as a path segment instead of a query value.
func searchURL(profile internal.Profile, query string) string {
	escaped := url.QueryEscape(query)
	if profile.CustomSearchURL {
		escaped = url.PathEscape(query)
	}
	return strings.ReplaceAll(profile.SearchURL, "{query}", escaped)
}

func recordFromHit(hit internal.Hit, source string) internal.Record {
	rec := internal.Record{
		ProductName: util.UpperClean(hit.Name),
		Price:       hit.Price,
		SourceName:  source,
		Link:        hit.URL,
		Origin:      internal.OriginWeb,
	}
	rec.SyncIdentity()
	return rec
}
