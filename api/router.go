// Package api wires the HTTP surface: routing, authentication and rate
// limiting around the extraction pipeline.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/canopyhq/harvester/api/handler"
	"github.com/canopyhq/harvester/api/middleware"
	"github.com/canopyhq/harvester/cache"
	"github.com/canopyhq/harvester/config"
	"github.com/canopyhq/harvester/crawl"
	"github.com/canopyhq/harvester/extract"
	"github.com/canopyhq/harvester/fetcher"
	"github.com/canopyhq/harvester/session"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(s *session.Session, f *fetcher.Fetcher, ex *extract.Extractor, cr *crawl.Crawler, cc *cache.Cache, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(s, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/extract", handler.Extract(f, ex, cc))
	protected.POST("/crawl", handler.Crawl(f, cr))

	return r
}
