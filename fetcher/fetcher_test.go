package fetcher

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/canopyhq/harvester/config"
	"github.com/canopyhq/harvester/models"
)

func testFetcher() *Fetcher {
	return New(nil, nil, config.FetcherConfig{Environment: "standard"})
}

func TestFailure_CarriesErrorCode(t *testing.T) {
	f := testFetcher()

	launchErr := models.NewScrapeError(models.ErrCodeBrowserLaunch, "failed to launch browser", errors.New("exec: chrome not found"))
	res := f.failure("https://example.com", time.Now(), launchErr)

	if res.Success {
		t.Fatal("failure result marked successful")
	}
	if res.ErrorCode != models.ErrCodeBrowserLaunch {
		t.Errorf("error code: got %q, want %q", res.ErrorCode, models.ErrCodeBrowserLaunch)
	}
	if res.Error != "failed to launch browser" {
		t.Errorf("error message: got %q", res.Error)
	}
}

func TestFailure_DeadlineBecomesTimeout(t *testing.T) {
	f := testFetcher()

	res := f.failure("https://example.com", time.Now(), fmt.Errorf("navigate: %w", context.DeadlineExceeded))

	if res.ErrorCode != models.ErrCodeTimeout {
		t.Errorf("error code: got %q, want %q", res.ErrorCode, models.ErrCodeTimeout)
	}
	if res.Error != "fetch timed out" {
		t.Errorf("error message: got %q", res.Error)
	}
}

func TestFailure_PlainErrorDefaultsToNavigation(t *testing.T) {
	f := testFetcher()

	res := f.failure("https://example.com", time.Now(), errors.New("net::ERR_NAME_NOT_RESOLVED"))

	if res.ErrorCode != models.ErrCodeNavigation {
		t.Errorf("error code: got %q, want %q", res.ErrorCode, models.ErrCodeNavigation)
	}
	if res.Error != "net::ERR_NAME_NOT_RESOLVED" {
		t.Errorf("error message: got %q", res.Error)
	}
}
