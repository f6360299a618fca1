package scraper

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/gleanerhq/gleaner/config"
	"github.com/gleanerhq/gleaner/extract"
	"github.com/gleanerhq/gleaner/models"
)

// dynamicScraper acquires pages with a full browser render: navigate, run
// the requested actions, wait for the extraction selector, then read the
// DOM once.
type dynamicScraper struct {
	newPage     func(ctx context.Context, stealth bool) (Page, error)
	cfg         config.ScraperConfig
	screenshots bool
}

func newDynamicScraper(browser *Browser, cfg config.ScraperConfig) *dynamicScraper {
	return &dynamicScraper{
		newPage:     browser.NewPage,
		cfg:         cfg,
		screenshots: cfg.EnableScreenshots,
	}
}

func (d *dynamicScraper) Acquire(ctx context.Context, req *models.ScrapeRequest) (*ScrapedData, error) {
	page, err := d.newPage(ctx, req.Stealth)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			slog.Warn("page close failed", "url", req.URL, "error", closeErr)
		}
	}()

	if err := page.Navigate(req.URL); err != nil {
		return nil, categorizeError(err, "navigation to target URL failed")
	}

	performed, err := executeActions(page, req.Actions, d.cfg.NavigationTimeout)
	if err != nil {
		return nil, err
	}

	// Give the extraction target a chance to appear before reading the DOM.
	if req.Extract != nil {
		waitMs := req.Extract.WaitTimeout
		if waitMs <= 0 {
			waitMs = models.DefaultExtractWaitTimeoutMs
		}
		wait := time.Duration(waitMs) * time.Millisecond
		if err := page.WaitForSelector(req.Extract.Selector, wait); err != nil {
			return nil, fmt.Errorf(
				"extraction failed: selector %q did not appear within %dms. "+
					"Possible issues: (1) element is created by AJAX after an action, add a wait action, "+
					"(2) selector syntax is incorrect, (3) element structure changed",
				req.Extract.Selector, waitMs)
		}
	}

	rawHTML, err := page.Content()
	if err != nil {
		return nil, categorizeError(err, "failed to read page HTML")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse rendered HTML: %w", err)
	}

	content, debug, err := extract.Content(doc, req.Extract, req.OutputFormat)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	finalURL := page.CurrentURL()
	if finalURL == "" {
		finalURL = req.URL
	}

	data := &ScrapedData{
		Content:          content,
		HTML:             rawHTML,
		Title:            page.Title(),
		URL:              finalURL,
		Extraction:       debug,
		ActionsPerformed: performed,
	}

	if req.Screenshot && d.screenshots {
		shot, shotErr := page.Screenshot()
		if shotErr != nil {
			slog.Warn("screenshot capture failed", "url", req.URL, "error", shotErr)
		} else {
			data.Screenshot = base64.StdEncoding.EncodeToString(shot)
		}
	}

	return data, nil
}

// categorizeError wraps raw errors into typed ScrapeErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
