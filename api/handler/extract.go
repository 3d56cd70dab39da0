package handler

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"

	"github.com/canopyhq/harvester/cache"
	"github.com/canopyhq/harvester/classify"
	"github.com/canopyhq/harvester/extract"
	"github.com/canopyhq/harvester/fetcher"
	"github.com/canopyhq/harvester/models"
)

// wwwHosts are apex domains known to redirect-loop or 404 without the www
// prefix. The normalizer inserts it up front to save a redirect hop.
var wwwHosts = map[string]struct{}{
	"leafly.com":   {},
	"weedmaps.com": {},
	"allbud.com":   {},
}

// Extract returns a handler for POST /api/v1/extract.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults, normalize the URL.
//  2. Cache lookup (only when max_age_ms is set).
//  3. Fetcher.Fetch → rendered HTML          (records fetch_ms)
//  4. Classify + Extract → typed record      (records extract_ms)
//  5. Fill Timing, store in cache, return 200.
func Extract(f *fetcher.Fetcher, ex *extract.Extractor, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, err.Error(), err), models.TimingInfo{})
			return
		}
		req.Defaults()

		target, err := NormalizeURL(req.URL)
		if err != nil {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, err.Error(), err), models.TimingInfo{})
			return
		}

		cacheKey := cache.Key(target, req.WaitForSelector)
		if cc != nil && req.MaxAge > 0 {
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				cached.CacheStatus = "hit"
				cached.Timing = models.TimingInfo{
					TotalMs: time.Since(totalStart).Milliseconds(),
				}
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		opts := models.FetchOptions{
			WaitForSelector: req.WaitForSelector,
			HandlePopups:    *req.HandlePopups,
			ScrollToBottom:  *req.ScrollToBottom,
			TakeScreenshot:  req.Screenshot,
			Timeout:         time.Duration(req.Timeout) * time.Second,
		}

		fetchStart := time.Now()
		res := f.Fetch(c.Request.Context(), target, opts)
		fetchMs := time.Since(fetchStart).Milliseconds()

		if !res.Success {
			respondError(c, fetchError(res), models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
				FetchMs: fetchMs,
			})
			return
		}

		extractStart := time.Now()
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.HTML))
		if err != nil {
			respondError(c, models.NewScrapeError(models.ErrCodeExtraction, "failed to parse rendered document", err), models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
				FetchMs: fetchMs,
			})
			return
		}

		sourceURL := res.FinalURL
		if sourceURL == "" {
			sourceURL = target
		}
		contentType := classify.Classify(res.HTML, doc)
		record := ex.Extract(res.HTML, doc, contentType, sourceURL)
		extractMs := time.Since(extractStart).Milliseconds()

		resp := &models.ExtractResponse{
			Success:       true,
			URL:           target,
			FinalURL:      res.FinalURL,
			Title:         record.Title,
			ContentType:   contentType,
			Record:        record,
			PopupsHandled: res.PopupsHandled,
			Screenshot:    res.Screenshot,
			Timing: models.TimingInfo{
				TotalMs:   time.Since(totalStart).Milliseconds(),
				FetchMs:   fetchMs,
				ExtractMs: extractMs,
			},
		}

		if cc != nil && req.MaxAge > 0 {
			cc.Set(cacheKey, resp)
			resp.CacheStatus = "miss"
		}

		c.JSON(http.StatusOK, resp)
	}
}

// NormalizeURL applies scheme defaulting and the www allowlist. Bare inputs
// like "leafly.com/strains/gg4" become "https://www.leafly.com/strains/gg4".
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "url is required", nil)
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "invalid url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "unsupported scheme: "+u.Scheme, nil)
	}
	if u.Hostname() == "" {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "url has no host", nil)
	}

	host := strings.ToLower(u.Hostname())
	if _, ok := wwwHosts[host]; ok {
		u.Host = "www." + host
	}

	return u.String(), nil
}

// fetchError converts a failed fetch result into a typed error. The fetcher
// stamps the code on the result; message sniffing is only the fallback for
// results built elsewhere.
func fetchError(res *models.FetchResult) *models.ScrapeError {
	code := res.ErrorCode
	if code == "" {
		code = models.ErrCodeNavigation
		if strings.Contains(res.Error, "timed out") {
			code = models.ErrCodeTimeout
		}
	}
	return models.NewScrapeError(code, res.Error, nil)
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	scrapeErr, ok := err.(*models.ScrapeError)
	if !ok {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.ExtractResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeBrowserLaunch, models.ErrCodeEnvironmentSetup:
		return http.StatusServiceUnavailable // 503
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
