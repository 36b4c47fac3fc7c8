package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Page is the content one fetch produced. Text is only populated by
// renderers; miners that want visible text from plain HTML derive it
// themselves. Downstream code must not care which fetcher filled it in.
type Page struct {
	HTML string
	Text string
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "es-PE,es;q=0.9,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("http status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return Page{}, err
	}
	return Page{HTML: string(body)}, nil
}
