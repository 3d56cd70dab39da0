package handler

import (
	"testing"

	"github.com/canopyhq/harvester/models"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/page", "https://example.com/page"},
		{"example.com/page", "https://example.com/page"},
		{"leafly.com/strains/gg4", "https://www.leafly.com/strains/gg4"},
		{"https://weedmaps.com/listings/x", "https://www.weedmaps.com/listings/x"},
		{"https://www.leafly.com/strains/gg4", "https://www.leafly.com/strains/gg4"},
		{"http://example.com", "http://example.com"},
	}

	for _, tt := range tests {
		got, err := NormalizeURL(tt.in)
		if err != nil {
			t.Errorf("NormalizeURL(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeURL_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "ftp://example.com/file", "https://"} {
		if _, err := NormalizeURL(in); err == nil {
			t.Errorf("NormalizeURL(%q): expected an error", in)
		}
	}
}

func TestFetchError_CodeMapping(t *testing.T) {
	// The stamped code wins; browser-launch failures keep their own code
	// instead of collapsing into a navigation failure.
	launch := &models.FetchResult{Error: "failed to launch browser", ErrorCode: models.ErrCodeBrowserLaunch}
	if e := fetchError(launch); e.Code != models.ErrCodeBrowserLaunch {
		t.Errorf("stamped code overridden: %s", e.Code)
	}

	// Fallback sniffing for results without a code.
	if e := fetchError(&models.FetchResult{Error: "fetch timed out"}); e.Code != models.ErrCodeTimeout {
		t.Errorf("timeout message mapped to %s", e.Code)
	}
	if e := fetchError(&models.FetchResult{Error: "net::ERR_NAME_NOT_RESOLVED"}); e.Code != models.ErrCodeNavigation {
		t.Errorf("navigation message mapped to %s", e.Code)
	}
}

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{models.ErrCodeTimeout, 504},
		{models.ErrCodeNavigation, 502},
		{models.ErrCodeInvalidInput, 400},
		{models.ErrCodeRateLimited, 429},
		{models.ErrCodeUnauthorized, 401},
		{models.ErrCodeInternal, 500},
		{models.ErrCodeBrowserLaunch, 503},
		{models.ErrCodeEnvironmentSetup, 503},
	}

	for _, tt := range tests {
		e := models.NewScrapeError(tt.code, "x", nil)
		if got := mapErrorToStatus(e); got != tt.want {
			t.Errorf("mapErrorToStatus(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
