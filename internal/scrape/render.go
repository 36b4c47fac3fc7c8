package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Renderer is a Fetcher backed by headless Chrome, for retailers whose
// listings only exist after JavaScript runs. Each Fetch owns a fresh browser
// context; navigation, lazy-load scrolling and consent dismissal all happen
// inside the configured timeout.
type Renderer struct {
	logger    *zap.Logger
	timeout   time.Duration
	userAgent string
}

func NewRenderer(logger *zap.Logger, timeout time.Duration, userAgent string) *Renderer {
	return &Renderer{logger: logger, timeout: timeout, userAgent: userAgent}
}

var consentSelectors = []string{
	"#onetrust-accept-btn-handler",
	"#consent-banner button",
	"button[aria-label='Aceptar']",
	"button[aria-label='ACEPTAR']",
	"button.cookie-accept",
}

func (r *Renderer) Fetch(ctx context.Context, url string) (Page, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
		chromedp.UserAgent(r.userAgent),
		chromedp.Flag("accept-language", "es-PE,es;q=0.9,en;q=0.8"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()
	taskCtx, timeoutCancel := context.WithTimeout(taskCtx, r.timeout)
	defer timeoutCancel()

	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body"),
	); err != nil {
		return Page{}, err
	}

	r.dismissConsent(taskCtx)
	r.scrollForLazyContent(taskCtx)

	html, text := r.waitForPriceContent(taskCtx)
	if len(text) < 500 {
		// Late-loading listings sometimes need one more beat.
		_ = chromedp.Run(taskCtx, chromedp.Sleep(2*time.Second))
		html, text = r.capture(taskCtx)
	}

	r.logger.Debug("rendered page",
		zap.String("url", url),
		zap.Int("html_len", len(html)),
		zap.Int("text_len", len(text)))

	return Page{HTML: html, Text: text}, nil
}

func (r *Renderer) dismissConsent(ctx context.Context) {
	for _, sel := range consentSelectors {
		clickCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		err := chromedp.Run(clickCtx, chromedp.Click(sel, chromedp.NodeVisible))
		cancel()
		if err == nil {
			return
		}
	}
}

func (r *Renderer) scrollForLazyContent(ctx context.Context) {
	for i := 0; i < 6; i++ {
		if err := chromedp.Run(ctx,
			chromedp.Evaluate(`window.scrollBy(0, document.body.scrollHeight/2);`, nil),
			chromedp.Sleep(time.Second),
		); err != nil {
			return
		}
	}
}

// waitForPriceContent polls the DOM a bounded number of times until a price
// marker shows up, then captures final HTML and visible text.
func (r *Renderer) waitForPriceContent(ctx context.Context) (string, string) {
	var html, text string
	for tries := 0; tries < 5; tries++ {
		html, text = r.capture(ctx)
		if strings.Contains(html, "S/") {
			break
		}
		if err := chromedp.Run(ctx, chromedp.Sleep(time.Second)); err != nil {
			break
		}
	}
	return html, text
}

func (r *Renderer) capture(ctx context.Context) (html, text string) {
	_ = chromedp.Run(ctx,
		chromedp.OuterHTML("html", &html),
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &text),
	)
	return html, text
}
