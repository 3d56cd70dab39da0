// Package fetcher drives a single browser-rendered page load: navigation,
// interstitial resolution, lazy-load scrolling and the final HTML snapshot.
package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/canopyhq/harvester/config"
	"github.com/canopyhq/harvester/interstitial"
	"github.com/canopyhq/harvester/models"
	"github.com/canopyhq/harvester/session"
)

// finalSettle is the short pause before the HTML snapshot, letting the last
// scroll-triggered requests land.
const finalSettle = time.Second

// scrollStep is the pixel increment of the lazy-load scroll pass.
const scrollStep = 800

// Fetcher fetches pages through the shared browser session.
// It is safe for concurrent use; each fetch runs in its own page context.
type Fetcher struct {
	session  *session.Session
	resolver *interstitial.Resolver
	cfg      config.FetcherConfig
}

// New creates a Fetcher.
func New(s *session.Session, r *interstitial.Resolver, cfg config.FetcherConfig) *Fetcher {
	return &Fetcher{session: s, resolver: r, cfg: cfg}
}

// Fetch loads url and returns the rendered document.
//
// Lifecycle:
//
//	1. Acquire a fingerprinted page (launches the browser if needed)
//	2. DEFER: close the page — every exit path, success or failure
//	3. Register the native-dialog listener (before navigation)
//	4. Navigate, wait for content parsed, settle
//	5. Resolve interstitials against the live DOM
//	6. Optional wait-for-selector (soft failure: logged, not fatal)
//	7. Optional incremental scroll to full height, back to top
//	8. Final settle, then snapshot HTML / title / final URL / screenshot
//
// Fetch never returns a Go error: navigation and interstitial failures are a
// normal outcome, reported as Success=false with the error message inline.
func (f *Fetcher) Fetch(ctx context.Context, url string, opts models.FetchOptions) *models.FetchResult {
	start := time.Now()

	if opts.Timeout <= 0 {
		opts.Timeout = f.cfg.Timeout
	}
	if opts.WaitTime <= 0 {
		opts.WaitTime = f.cfg.WaitTime
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	page, err := f.session.NewPage(ctx)
	if err != nil {
		return f.failure(url, start, err)
	}
	// The deferred close uses the original page reference, unbound from ctx,
	// so cleanup succeeds even when the fetch deadline has expired. This is
	// the one hard resource-lifetime invariant: no exit path leaks a page.
	defer f.session.ClosePage(page)

	p := page.Context(ctx)

	var dialogs atomic.Int32
	if opts.HandlePopups {
		// Must be installed before Navigate so dialogs fired during load
		// are answered; the subscription dies with the page context.
		f.resolver.ListenDialogs(p, &dialogs)
	}

	waitParsed := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := p.Navigate(url); err != nil {
		return f.failure(url, start, err)
	}
	waitParsed()

	f.sleep(ctx, opts.WaitTime)

	popupClicks := 0
	if opts.HandlePopups {
		popupClicks = f.resolver.Resolve(p)
	}

	if opts.WaitForSelector != "" {
		if _, err := p.Timeout(f.cfg.SelectorTimeout).Element(opts.WaitForSelector); err != nil {
			slog.Warn("wait-for-selector not found, continuing",
				"url", url, "selector", opts.WaitForSelector, "error", err)
		}
	}

	if opts.ScrollToBottom {
		f.scrollThrough(ctx, p)
	}

	f.sleep(ctx, finalSettle)

	html, err := p.HTML()
	if err != nil {
		return f.failure(url, start, err)
	}

	title := evalStringOrEmpty(p, `() => document.title`)
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = url
	}

	var screenshot []byte
	if opts.TakeScreenshot {
		shot, err := p.Screenshot(true, nil)
		if err != nil {
			slog.Warn("screenshot failed", "url", url, "error", err)
		} else {
			screenshot = shot
		}
	}

	return &models.FetchResult{
		Success:       true,
		URL:           url,
		HTML:          html,
		Title:         title,
		FinalURL:      finalURL,
		PopupsHandled: popupClicks + int(dialogs.Load()),
		Screenshot:    screenshot,
		Metrics: models.FetchMetrics{
			RenderTimeMs: time.Since(start).Milliseconds(),
			LayoutCount:  layoutCount(p),
			Environment:  f.cfg.Environment,
		},
	}
}

// layoutCount reads the browser's layout counter for the page, best-effort.
func layoutCount(p *rod.Page) int64 {
	if err := (proto.PerformanceEnable{}).Call(p); err != nil {
		return 0
	}
	res, err := proto.PerformanceGetMetrics{}.Call(p)
	if err != nil {
		return 0
	}
	for _, m := range res.Metrics {
		if m.Name == "LayoutCount" {
			return int64(m.Value)
		}
	}
	return 0
}

// scrollThrough scrolls to the document's full height in fixed increments to
// trigger lazy-loaded content, then returns to the top.
func (f *Fetcher) scrollThrough(ctx context.Context, p *rod.Page) {
	res, err := p.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		slog.Debug("scroll: failed to read document height", "error", err)
		return
	}
	height := res.Value.Int()

	for y := scrollStep; y < height; y += scrollStep {
		if _, err := p.Eval(`(y) => window.scrollTo(0, y)`, y); err != nil {
			return
		}
		f.sleep(ctx, 250*time.Millisecond)
	}
	_, _ = p.Eval(`() => window.scrollTo(0, 0)`)
}

// failure builds the Success=false result. Callers of Fetch treat this as a
// normal outcome, never as an exception. The error code survives the trip so
// the API layer can map status without parsing messages.
func (f *Fetcher) failure(url string, start time.Time, err error) *models.FetchResult {
	msg := err.Error()
	code := models.ErrCodeNavigation

	var scrapeErr *models.ScrapeError
	if errors.As(err, &scrapeErr) {
		msg = scrapeErr.Message
		code = scrapeErr.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "fetch timed out"
		code = models.ErrCodeTimeout
	}
	slog.Warn("fetch failed", "url", url, "error", err)

	return &models.FetchResult{
		Success:   false,
		URL:       url,
		Error:     msg,
		ErrorCode: code,
		Metrics: models.FetchMetrics{
			RenderTimeMs: time.Since(start).Milliseconds(),
			Environment:  f.cfg.Environment,
		},
	}
}

func (f *Fetcher) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}
