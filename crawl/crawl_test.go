package crawl

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/canopyhq/harvester/config"
	"github.com/canopyhq/harvester/extract"
	"github.com/canopyhq/harvester/models"
)

// stubFetcher serves canned results without a browser.
type stubFetcher struct {
	mu      sync.Mutex
	calls   []string
	failFor map[string]string
}

func (s *stubFetcher) Fetch(_ context.Context, url string, _ models.FetchOptions) *models.FetchResult {
	s.mu.Lock()
	s.calls = append(s.calls, url)
	s.mu.Unlock()

	if msg, ok := s.failFor[url]; ok {
		return &models.FetchResult{Success: false, URL: url, Error: msg}
	}
	return &models.FetchResult{
		Success:  true,
		URL:      url,
		FinalURL: url,
		HTML: `<html><head><title>Detail</title></head><body>
			<h1 class="product-title">Detail Item</h1>
			<span class="current-price">$10.00</span>
			<button>Add to cart</button>
		</body></html>`,
	}
}

// concurrencyFetcher records the peak number of overlapping Fetch calls.
type concurrencyFetcher struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	total    int
}

func (s *concurrencyFetcher) Fetch(_ context.Context, url string, _ models.FetchOptions) *models.FetchResult {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > s.peak {
		s.peak = s.inFlight
	}
	s.total++
	s.mu.Unlock()

	// Hold the call open long enough for batch-mates to overlap.
	time.Sleep(25 * time.Millisecond)

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()

	return &models.FetchResult{
		Success:  true,
		URL:      url,
		FinalURL: url,
		HTML:     `<html><body><h1>x</h1></body></html>`,
	}
}

func testCrawler(f PageFetcher) *Crawler {
	return New(f, extract.New(), config.CrawlerConfig{
		MaxLinks:   10,
		BatchSize:  3,
		BatchPause: time.Millisecond,
	})
}

func listingDoc(t *testing.T, n int) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, `<a href="/product/%d">P%d</a>`, i, i)
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

func TestCrawl_BoundedByMaxLinks(t *testing.T) {
	f := &stubFetcher{}
	cr := testCrawler(f)
	doc := parse(t, listingDoc(t, 25))

	res := cr.Crawl(context.Background(), "https://shop.example.com/catalog", doc, models.CrawlOptions{
		MaxLinks: 10,
		Timeout:  5 * time.Second,
	})

	if res.TotalLinksFound != 25 {
		t.Errorf("total found: got %d, want 25", res.TotalLinksFound)
	}
	if res.LinksProcessed != 10 {
		t.Errorf("processed: got %d, want 10", res.LinksProcessed)
	}
	if res.Successful != 10 || res.Errors != 0 {
		t.Errorf("got %d successful, %d errors", res.Successful, res.Errors)
	}
	if len(res.Results) != 10 {
		t.Errorf("results: got %d", len(res.Results))
	}
	if len(f.calls) != 10 {
		t.Errorf("fetch calls: got %d, want 10", len(f.calls))
	}
}

func TestCrawl_BatchesLimitConcurrency(t *testing.T) {
	f := &concurrencyFetcher{}
	cr := testCrawler(f)
	doc := parse(t, listingDoc(t, 10))

	cr.Crawl(context.Background(), "https://shop.example.com/catalog", doc, models.CrawlOptions{
		MaxLinks: 10,
		Timeout:  5 * time.Second,
	})

	if f.total != 10 {
		t.Errorf("fetch calls: got %d, want 10", f.total)
	}
	// Links run in batches of exactly 3: each batch saturates, none exceeds.
	if f.peak != 3 {
		t.Errorf("peak concurrent fetches: got %d, want 3", f.peak)
	}
}

func TestCrawl_PerLinkFailureIsolation(t *testing.T) {
	f := &stubFetcher{failFor: map[string]string{
		"https://shop.example.com/product/1": "navigation refused",
	}}
	cr := testCrawler(f)
	doc := parse(t, listingDoc(t, 4))

	res := cr.Crawl(context.Background(), "https://shop.example.com/catalog", doc, models.CrawlOptions{
		MaxLinks: 10,
		Timeout:  5 * time.Second,
	})

	if res.Successful != 3 || res.Errors != 1 {
		t.Fatalf("got %d successful, %d errors", res.Successful, res.Errors)
	}
	if len(res.ErrorDetails) != 1 {
		t.Fatalf("error details: got %+v", res.ErrorDetails)
	}
	detail := res.ErrorDetails[0]
	if detail.URL != "https://shop.example.com/product/1" || detail.Error != "navigation refused" {
		t.Errorf("detail: got %+v", detail)
	}
}

func TestCrawl_ExtractsRecords(t *testing.T) {
	f := &stubFetcher{}
	cr := testCrawler(f)
	doc := parse(t, listingDoc(t, 2))

	res := cr.Crawl(context.Background(), "https://shop.example.com/catalog", doc, models.CrawlOptions{
		MaxLinks: 10,
		Timeout:  5 * time.Second,
	})

	for _, page := range res.Results {
		if !page.Success {
			t.Fatalf("page failed: %+v", page)
		}
		if page.Data == nil {
			t.Fatal("missing record")
		}
		if page.Data.ContentType != models.ContentTypeProduct {
			t.Errorf("content type: got %s", page.Data.ContentType)
		}
		if page.Data.Title != "Detail Item" {
			t.Errorf("title: got %q", page.Data.Title)
		}
	}
}

func TestFilterLinks_SameDomain(t *testing.T) {
	cr := testCrawler(&stubFetcher{})
	links := []string{
		"https://shop.example.com/product/1",
		"https://www.shop.example.com/product/2",
		"https://cdn.example.com/product/3",
		"https://example.org/product/4",
	}

	got := cr.filterLinks(append([]string(nil), links...), "https://shop.example.com/", models.LinkFilterSameDomain)
	if len(got) != 2 {
		t.Errorf("same-domain: got %v", got)
	}
}

func TestFilterLinks_SameSite(t *testing.T) {
	cr := testCrawler(&stubFetcher{})
	links := []string{
		"https://shop.example.com/product/1",
		"https://cdn.example.com/product/2",
		"https://example.org/product/3",
	}

	got := cr.filterLinks(append([]string(nil), links...), "https://www.example.com/", models.LinkFilterSameSite)
	if len(got) != 2 {
		t.Errorf("same-site: got %v", got)
	}
}

func TestFilterLinks_All(t *testing.T) {
	cr := testCrawler(&stubFetcher{})
	links := []string{
		"https://a.example.com/x",
		"https://b.example.org/y",
	}

	got := cr.filterLinks(links, "https://example.com/", models.LinkFilterAll)
	if len(got) != 2 {
		t.Errorf("all: got %v", got)
	}
}
