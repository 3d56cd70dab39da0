package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"

	"github.com/canopyhq/harvester/crawl"
	"github.com/canopyhq/harvester/fetcher"
	"github.com/canopyhq/harvester/models"
)

// Crawl returns a handler for POST /api/v1/crawl.
//
// The crawl runs synchronously: the listing page is fetched and rendered,
// detail links are discovered on it, then each link is processed in batches.
// A bounded crawl (10 links default, 50 max) finishes well inside a normal
// HTTP client timeout, so there is no job store or polling endpoint.
func Crawl(f *fetcher.Fetcher, cr *crawl.Crawler) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.CrawlRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, err.Error(), err), models.TimingInfo{})
			return
		}

		target, err := NormalizeURL(req.URL)
		if err != nil {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, err.Error(), err), models.TimingInfo{})
			return
		}

		opts := models.CrawlOptions{
			MaxLinks:   req.MaxLinks,
			LinkFilter: req.LinkFilter,
			Timeout:    time.Duration(req.Timeout) * time.Second,
		}
		opts.Defaults()

		// The listing page itself: scrolling is on so lazy grids populate
		// before link discovery.
		res := f.Fetch(c.Request.Context(), target, models.FetchOptions{
			HandlePopups:   true,
			ScrollToBottom: true,
		})
		if !res.Success {
			respondError(c, fetchError(res), models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
			})
			return
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.HTML))
		if err != nil {
			respondError(c, models.NewScrapeError(models.ErrCodeExtraction, "failed to parse listing document", err), models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
			})
			return
		}

		result := cr.Crawl(c.Request.Context(), target, doc, opts)
		c.JSON(http.StatusOK, result)
	}
}
