package models

import "time"

// Link-filter policies for the bounded crawler.
const (
	LinkFilterAll        = "all"
	LinkFilterSameDomain = "same-domain"
	LinkFilterSameSite   = "same-site"
)

// CrawlOptions bound a crawl invocation.
type CrawlOptions struct {
	// MaxLinks caps how many discovered links are processed. Default: 10.
	MaxLinks int

	// LinkFilter is the domain policy: "all", "same-domain" (exact host
	// match) or "same-site" (registrable domain, subdomains ignored).
	// Default: "same-domain".
	LinkFilter string

	// Timeout is the per-link fetch deadline. Default: 30s.
	Timeout time.Duration
}

// Defaults applies default values to unset fields.
func (o *CrawlOptions) Defaults() {
	if o.MaxLinks <= 0 {
		o.MaxLinks = 10
	}
	if o.LinkFilter == "" {
		o.LinkFilter = LinkFilterSameDomain
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
}

// CrawlPage is the outcome of one crawled detail link.
type CrawlPage struct {
	URL     string  `json:"url"`
	Success bool    `json:"success"`
	Data    *Record `json:"data,omitempty"`
}

// CrawlError itemizes one failed link.
type CrawlError struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// CrawlResult is the immutable outcome of one crawl invocation.
// Per-link failures are itemized; they never abort the crawl.
type CrawlResult struct {
	BaseURL         string       `json:"base_url"`
	TotalLinksFound int          `json:"total_links_found"`
	LinksProcessed  int          `json:"links_processed"`
	Successful      int          `json:"successful"`
	Errors          int          `json:"errors"`
	Results         []CrawlPage  `json:"results"`
	ErrorDetails    []CrawlError `json:"error_details"`
	Timestamp       time.Time    `json:"timestamp"`
}
