// Package api wires the HTTP surface: routes, handlers, and middleware.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gleanerhq/gleaner/api/handler"
	"github.com/gleanerhq/gleaner/api/middleware"
	"github.com/gleanerhq/gleaner/cache"
	"github.com/gleanerhq/gleaner/config"
	"github.com/gleanerhq/gleaner/scraper"
	"github.com/gleanerhq/gleaner/store"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(svc *scraper.Service, cfg *config.Config, cc *cache.Cache, st *store.Store, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(cfg, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Scrape
	protected.POST("/scrape", handler.Scrape(svc, cfg, cc, st))

	// Scrape history
	protected.GET("/scrapes", handler.QueryScrapes(st))
	protected.GET("/scrapes/stats/summary", handler.ScrapeStats(st))
	protected.GET("/scrapes/:id", handler.GetScrape(st))

	return r
}
