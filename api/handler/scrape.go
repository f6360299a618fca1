package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gleanerhq/gleaner/cache"
	"github.com/gleanerhq/gleaner/config"
	"github.com/gleanerhq/gleaner/models"
	"github.com/gleanerhq/gleaner/scraper"
	"github.com/gleanerhq/gleaner/store"
	"github.com/gleanerhq/gleaner/webhook"
)

// maxURLLength bounds accepted target URLs.
const maxURLLength = 2048

// Scrape returns a handler for POST /api/v1/scrape.
//
// The handler validates the request shape, then hands it to the
// orchestrator. Scrape failures are reported inside a 200 response
// (success=false with an error message); only malformed requests get a 400.
func Scrape(svc *scraper.Service, cfg *config.Config, cc *cache.Cache, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				Error:   err.Error(),
			})
			return
		}
		req.Defaults()

		if msg := validateRequest(&req, cfg); msg != "" {
			c.JSON(http.StatusBadRequest, models.ScrapeResponse{
				Success: false,
				Error:   msg,
			})
			return
		}

		// Cache lookup.
		var cacheKey string
		if cc != nil && req.MaxAge > 0 {
			cacheKey = cache.Key(&req)
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		resp := svc.Scrape(c.Request.Context(), &req)

		if cc != nil && cacheKey != "" && resp.Success {
			cc.Set(cacheKey, resp)
		}

		// Persistence and webhook delivery are fire-and-forget: the
		// response never waits on either.
		if st != nil && req.Store {
			go func(req models.ScrapeRequest, resp *models.ScrapeResponse) {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if _, err := st.Save(ctx, &req, resp); err != nil {
					slog.Warn("failed to store scrape outcome", "url", req.URL, "error", err)
				}
			}(req, resp)
		}
		if req.WebhookURL != "" {
			webhook.DeliverAsync(req.WebhookURL, cfg.Webhook.Secret, webhook.NewEvent(req.URL, resp))
		}

		c.JSON(http.StatusOK, resp)
	}
}

// validateRequest enforces the checks gin's binding tags cannot express.
// It returns an error message, or "" when the request is acceptable.
func validateRequest(req *models.ScrapeRequest, cfg *config.Config) string {
	if len(req.URL) > maxURLLength {
		return fmt.Sprintf("URL exceeds maximum length of %d", maxURLLength)
	}
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "URL scheme not allowed; only http and https are supported"
	}
	if req.Mode == models.ModeDynamic && !cfg.Scraper.EnableDynamic {
		return "dynamic scraping is not enabled"
	}
	if req.Mode == models.ModeStatic && !cfg.Scraper.EnableStatic {
		return "static scraping is not enabled"
	}
	return ""
}
