package models

// ExtractRequest is the payload for POST /api/v1/extract.
type ExtractRequest struct {
	// URL is the target page. Required; scheme defaulting and www insertion
	// are applied before the pipeline runs.
	URL string `json:"url" binding:"required"`

	// WaitForSelector is an optional CSS selector to wait for.
	WaitForSelector string `json:"wait_for_selector,omitempty"`

	// Timeout is the fetch deadline in seconds. Default: environment
	// dependent (25-30). Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`

	// HandlePopups toggles interstitial resolution. Default: true.
	HandlePopups *bool `json:"handle_popups,omitempty"`

	// ScrollToBottom toggles lazy-load scrolling. Default: true.
	ScrollToBottom *bool `json:"scroll_to_bottom,omitempty"`

	// Screenshot requests a full-page screenshot in the response.
	Screenshot bool `json:"screenshot,omitempty"`

	// MaxAge enables the response cache; results younger than this many
	// milliseconds are served without a fresh fetch.
	MaxAge int `json:"max_age_ms,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *ExtractRequest) Defaults() {
	if r.HandlePopups == nil {
		t := true
		r.HandlePopups = &t
	}
	if r.ScrollToBottom == nil {
		t := true
		r.ScrollToBottom = &t
	}
}

// CrawlRequest is the payload for POST /api/v1/crawl.
type CrawlRequest struct {
	// URL is the listing page to crawl. Required.
	URL string `json:"url" binding:"required"`

	// MaxLinks caps processed detail links. Default: 10. Max: 50.
	MaxLinks int `json:"max_links,omitempty" binding:"omitempty,min=1,max=50"`

	// LinkFilter is the domain policy. Default: "same-domain".
	LinkFilter string `json:"link_filter,omitempty" binding:"omitempty,oneof=all same-domain same-site"`

	// Timeout is the per-link fetch deadline in seconds. Default: 30.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`
}
