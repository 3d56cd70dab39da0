package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/canopyhq/harvester/classify"
	"github.com/canopyhq/harvester/config"
	"github.com/canopyhq/harvester/extract"
	"github.com/canopyhq/harvester/models"
)

// PageFetcher loads one page and never returns a Go error; failures are
// carried inside the result. Satisfied by fetcher.Fetcher.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, opts models.FetchOptions) *models.FetchResult
}

// Crawler runs bounded crawls: discover detail links on a listing page,
// filter by domain policy, then fetch and extract each link in fixed-size
// batches with a politeness pause between batches.
type Crawler struct {
	fetcher   PageFetcher
	extractor *extract.Extractor
	cfg       config.CrawlerConfig
}

// New builds a Crawler.
func New(f PageFetcher, e *extract.Extractor, cfg config.CrawlerConfig) *Crawler {
	return &Crawler{fetcher: f, extractor: e, cfg: cfg}
}

// Crawl processes the detail links discovered on an already-rendered listing
// document. Per-link failures are itemized in the result; they never abort
// the run. Context cancellation stops scheduling new batches but completes
// the batch in flight.
func (c *Crawler) Crawl(ctx context.Context, baseURL string, doc *goquery.Document, opts models.CrawlOptions) *models.CrawlResult {
	opts.Defaults()

	result := &models.CrawlResult{
		BaseURL:      baseURL,
		Results:      []models.CrawlPage{},
		ErrorDetails: []models.CrawlError{},
		Timestamp:    time.Now().UTC(),
	}

	links := DiscoverLinks(doc, baseURL)
	links = c.filterLinks(links, baseURL, opts.LinkFilter)
	result.TotalLinksFound = len(links)

	if len(links) > opts.MaxLinks {
		links = links[:opts.MaxLinks]
	}
	result.LinksProcessed = len(links)

	slog.Info("crawl started",
		"base_url", baseURL,
		"found", result.TotalLinksFound,
		"processing", result.LinksProcessed,
		"filter", opts.LinkFilter,
	)

	batchSize := c.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 3
	}

	var mu sync.Mutex
	for start := 0; start < len(links); start += batchSize {
		if ctx.Err() != nil {
			break
		}

		end := start + batchSize
		if end > len(links) {
			end = len(links)
		}

		var wg sync.WaitGroup
		for _, link := range links[start:end] {
			wg.Add(1)
			go func(link string) {
				defer wg.Done()
				page, errMsg := c.crawlOne(ctx, link, opts.Timeout)

				mu.Lock()
				defer mu.Unlock()
				result.Results = append(result.Results, page)
				if page.Success {
					result.Successful++
				} else {
					result.Errors++
					result.ErrorDetails = append(result.ErrorDetails, models.CrawlError{
						URL:   link,
						Error: errMsg,
					})
				}
			}(link)
		}
		wg.Wait()

		// Politeness pause between batches, not after the last one.
		if end < len(links) {
			select {
			case <-time.After(c.cfg.BatchPause):
			case <-ctx.Done():
			}
		}
	}

	slog.Info("crawl finished",
		"base_url", baseURL,
		"successful", result.Successful,
		"errors", result.Errors,
	)
	return result
}

// crawlOne fetches and extracts one detail link. Scrolling is skipped on
// detail pages; the content of interest is above the fold. The second
// return value is the error message for failed pages.
func (c *Crawler) crawlOne(ctx context.Context, link string, timeout time.Duration) (models.CrawlPage, string) {
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res := c.fetcher.Fetch(fetchCtx, link, models.FetchOptions{
		HandlePopups: true,
		Timeout:      timeout,
	})
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = "fetch failed"
		}
		return models.CrawlPage{URL: link, Success: false}, msg
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.HTML))
	if err != nil {
		return models.CrawlPage{URL: link, Success: false}, "parse failed: " + err.Error()
	}

	sourceURL := res.FinalURL
	if sourceURL == "" {
		sourceURL = link
	}
	contentType := classify.Classify(res.HTML, doc)
	record := c.extractor.Extract(res.HTML, doc, contentType, sourceURL)

	return models.CrawlPage{URL: link, Success: true, Data: record}, ""
}

// filterLinks applies the domain policy relative to the base URL.
func (c *Crawler) filterLinks(links []string, baseURL, policy string) []string {
	if policy == models.LinkFilterAll {
		return links
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	kept := links[:0]
	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil {
			continue
		}
		switch policy {
		case models.LinkFilterSameSite:
			if sameSite(u, base) {
				kept = append(kept, link)
			}
		default:
			if sameDomain(u, base) {
				kept = append(kept, link)
			}
		}
	}
	return kept
}
