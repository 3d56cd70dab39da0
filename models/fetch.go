package models

import "time"

// FetchOptions controls a single browser-driven page load.
// Zero values are replaced with environment-dependent defaults by the fetcher.
type FetchOptions struct {
	// WaitForSelector is an optional CSS selector to wait for after
	// navigation. Missing selectors are logged, never fatal.
	WaitForSelector string

	// WaitTime is the settle delay applied after navigation and before the
	// final HTML snapshot.
	WaitTime time.Duration

	// HandlePopups enables interstitial resolution (age gates, consent
	// banners, modals, native dialogs).
	HandlePopups bool

	// ScrollToBottom triggers incremental scrolling to the full document
	// height to load lazy content, then scrolls back to top.
	ScrollToBottom bool

	// TakeScreenshot captures a full-page screenshot in the result.
	TakeScreenshot bool

	// Timeout is the deadline for the whole fetch operation.
	Timeout time.Duration
}

// DefaultFetchOptions returns the options used when the caller passes none.
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		HandlePopups:   true,
		ScrollToBottom: true,
	}
}

// FetchMetrics carries basic telemetry about one page load. LayoutCount is
// best-effort and zero when the browser does not report it.
type FetchMetrics struct {
	RenderTimeMs int64  `json:"render_time_ms"`
	LayoutCount  int64  `json:"layout_count,omitempty"`
	Environment  string `json:"environment"`
}

// FetchResult is the outcome of one browser-driven page load.
//
// On Success the rendered HTML, title and final URL are populated. On
// failure only URL and Error are set. A FetchResult is created fresh per
// fetch and never mutated after return.
type FetchResult struct {
	Success       bool         `json:"success"`
	URL           string       `json:"url"`
	HTML          string       `json:"-"`
	Title         string       `json:"title,omitempty"`
	FinalURL      string       `json:"final_url,omitempty"`
	PopupsHandled int          `json:"popups_handled"`
	Screenshot    []byte       `json:"screenshot,omitempty"`
	Metrics       FetchMetrics `json:"metrics"`
	Error         string       `json:"error,omitempty"`
	ErrorCode     string       `json:"error_code,omitempty"`
}
