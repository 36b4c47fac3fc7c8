// Package websearch supplements retailer mining with a general search
// engine when the direct sources return too little.
package websearch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"medbuscador/internal"
	"medbuscador/internal/scrape"
	"medbuscador/internal/util"
)

// maxResultPages bounds how many search hits get a follow-up fetch when
// their snippet carried no price.
const maxResultPages = 5

// DuckDuckGo queries the HTML (no-JS) endpoint and turns organic results
// into priced hits: snippet prices are used directly, otherwise the result
// page itself is fetched and text-mined.
type DuckDuckGo struct {
	logger   *zap.Logger
	fetcher  scrape.Fetcher
	endpoint string
}

func NewDuckDuckGo(logger *zap.Logger, fetcher scrape.Fetcher, endpoint string) *DuckDuckGo {
	if endpoint == "" {
		endpoint = "https://duckduckgo.com/html/"
	}
	return &DuckDuckGo{logger: logger, fetcher: fetcher, endpoint: endpoint}
}

type result struct {
	title   string
	url     string
	snippet string
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, max int) ([]internal.Hit, error) {
	if max <= 0 {
		return nil, nil
	}

	target := d.endpoint + "?q=" + url.QueryEscape(query+" precio farmacia peru")
	page, err := d.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("search engine: %w", err)
	}

	results := parseResults(page.HTML)
	d.logger.Debug("search results", zap.String("query", query), zap.Int("count", len(results)))

	hits := []internal.Hit{}
	fetched := 0
	for _, res := range results {
		if len(hits) >= max || ctx.Err() != nil {
			break
		}
		if price := scrape.ExtractPrice(res.snippet); price != "" {
			hits = append(hits, internal.Hit{Name: res.title, Price: price, URL: res.url})
			continue
		}
		if fetched >= maxResultPages {
			continue
		}
		fetched++
		hits = append(hits, d.minePage(ctx, res, query, max-len(hits))...)
	}
	return hits, nil
}

func (d *DuckDuckGo) minePage(ctx context.Context, res result, query string, max int) []internal.Hit {
	page, err := d.fetcher.Fetch(ctx, res.url)
	if err != nil {
		d.logger.Debug("result page fetch failed", zap.String("url", res.url), zap.Error(err))
		return nil
	}
	mined := scrape.MineText(scrape.VisibleText(page.HTML), query, res.url)
	if len(mined) > max {
		mined = mined[:max]
	}
	return mined
}

func parseResults(html string) []result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	out := []result{}
	doc.Find(".result").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		href = cleanResultURL(href)
		title := util.NormalizeSpaces(link.Text())
		if href == "" || title == "" {
			return
		}
		out = append(out, result{
			title:   title,
			url:     href,
			snippet: util.NormalizeSpaces(s.Find(".result__snippet").Text()),
		})
	})
	return out
}

// cleanResultURL unwraps the engine's redirect links ("/l/?uddg=<target>")
// to the destination URL.
func cleanResultURL(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	if parsed.Scheme == "http" || parsed.Scheme == "https" {
		return href
	}
	return ""
}
