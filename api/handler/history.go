package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gleanerhq/gleaner/models"
	"github.com/gleanerhq/gleaner/store"
)

// GetScrape returns a handler for GET /api/v1/scrapes/:id.
func GetScrape(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if st == nil {
			storeUnavailable(c)
			return
		}
		stored, err := st.GetByID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "scrape not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stored)
	}
}

// QueryScrapes returns a handler for GET /api/v1/scrapes.
// Filters: url, mode, success, from, to (RFC 3339), limit (max 100), offset.
func QueryScrapes(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if st == nil {
			storeUnavailable(c)
			return
		}

		filter := store.QueryFilter{
			URL:  c.Query("url"),
			Mode: c.Query("mode"),
		}
		if v := c.Query("success"); v != "" {
			success, err := strconv.ParseBool(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "success must be a boolean"})
				return
			}
			filter.Success = &success
		}
		var ok bool
		if filter.From, ok = parseTimeParam(c, "from"); !ok {
			return
		}
		if filter.To, ok = parseTimeParam(c, "to"); !ok {
			return
		}

		filter.Limit = intQuery(c, "limit", 50)
		if filter.Limit > 100 {
			filter.Limit = 100
		}
		filter.Offset = intQuery(c, "offset", 0)

		results, total, err := st.Query(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, models.ScrapeQueryResponse{
			Total:   total,
			Limit:   filter.Limit,
			Offset:  filter.Offset,
			Results: results,
		})
	}
}

// ScrapeStats returns a handler for GET /api/v1/scrapes/stats/summary.
func ScrapeStats(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if st == nil {
			storeUnavailable(c)
			return
		}

		from, ok := parseTimeParam(c, "from")
		if !ok {
			return
		}
		to, ok := parseTimeParam(c, "to")
		if !ok {
			return
		}
		if from.IsZero() || to.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
			return
		}

		stats, err := st.Statistics(c.Request.Context(), from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"statistics": stats})
	}
}

func storeUnavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error": "scrape history is not enabled; set GLEANER_STORE_ENABLED=true",
	})
}

// parseTimeParam reads an optional RFC 3339 query parameter. On a malformed
// value it writes a 400 and reports false.
func parseTimeParam(c *gin.Context, name string) (time.Time, bool) {
	v := c.Query(name)
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an RFC 3339 timestamp"})
		return time.Time{}, false
	}
	return t, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	if v := c.Query(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
	}
	return fallback
}
