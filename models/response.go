package models

// ExtractResponse is the response for POST /api/v1/extract.
type ExtractResponse struct {
	// Success indicates whether fetch and extraction completed.
	Success bool `json:"success"`

	// URL is the requested (normalized) URL.
	URL string `json:"url"`

	// FinalURL is the URL after following all redirects.
	FinalURL string `json:"final_url,omitempty"`

	// Title is the rendered document title.
	Title string `json:"title,omitempty"`

	// ContentType is the classifier's verdict.
	ContentType ContentType `json:"content_type,omitempty"`

	// Record is the typed extraction result.
	Record *Record `json:"record,omitempty"`

	// PopupsHandled counts dismissed interstitials and answered dialogs.
	PopupsHandled int `json:"popups_handled"`

	// Screenshot is the full-page capture, when requested.
	Screenshot []byte `json:"screenshot,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// FetchMs is the time spent navigating and rendering the page.
	FetchMs int64 `json:"fetch_ms"`

	// ExtractMs is the time spent classifying and extracting.
	ExtractMs int64 `json:"extract_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string       `json:"status"` // "healthy" or "degraded"
	Uptime  string       `json:"uptime"`
	Session SessionStats `json:"session"`
	Version string       `json:"version"`
}

// SessionStats reports the state of the shared browser session.
type SessionStats struct {
	BrowserLive bool  `json:"browser_live"`
	ActivePages int   `json:"active_pages"`
	Launches    int64 `json:"launches"`
}
