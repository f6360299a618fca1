package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gleanerhq/gleaner/config"
	"github.com/gleanerhq/gleaner/models"
	"github.com/gleanerhq/gleaner/tableparse"
)

// acquirer is a complete method for turning a URL into scraped data.
// There are two implementations: a single-request static fetcher and a
// browser-driven dynamic scraper.
type acquirer interface {
	Acquire(ctx context.Context, req *models.ScrapeRequest) (*ScrapedData, error)
}

// Service orchestrates scrape requests: it resolves the acquisition mode,
// times the operation, interprets extraction misses, and runs the optional
// table-parse stage. Every failure becomes a response value; nothing below
// this boundary escapes to the caller as an error.
type Service struct {
	static  acquirer
	dynamic acquirer
	cfg     config.ScraperConfig
}

// NewService builds the orchestrator and both acquisition strategies.
func NewService(browser *Browser, cfg config.ScraperConfig, proxy string) *Service {
	return &Service{
		static:  newStaticScraper(cfg, proxy),
		dynamic: newDynamicScraper(browser, cfg),
		cfg:     cfg,
	}
}

// Scrape runs one request end to end and always returns a well-formed
// response with either data or an error message populated.
func (s *Service) Scrape(ctx context.Context, req *models.ScrapeRequest) *models.ScrapeResponse {
	start := time.Now()
	mode := resolveMode(req)

	timeout := time.Duration(req.Timeout) * time.Second
	if timeout <= 0 {
		timeout = s.cfg.DefaultTimeout
	}
	if timeout > s.cfg.MaxTimeout {
		timeout = s.cfg.MaxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	acq := s.static
	if mode == models.ModeDynamic {
		acq = s.dynamic
	}

	data, err := acq.Acquire(ctx, req)
	durationMs := time.Since(start).Milliseconds()

	if err != nil {
		// The failure envelope records the mode that was actually being
		// attempted, not a fixed default.
		slog.Warn("scrape failed", "url", req.URL, "mode", mode, "error", err)
		return &models.ScrapeResponse{
			Success: false,
			Metadata: models.ScrapeMetadata{
				ScrapeMode: mode,
				DurationMs: durationMs,
				Timestamp:  time.Now(),
			},
			Error: err.Error(),
		}
	}

	meta := models.ScrapeMetadata{
		ScrapeMode:       mode,
		DurationMs:       durationMs,
		Timestamp:        time.Now(),
		ActionsPerformed: data.ActionsPerformed,
		ExtractionDebug:  data.Extraction,
	}
	if data.Extraction != nil {
		meta.ExtractedElements = data.Extraction.ElementsFound
	}

	// An extraction selector that matched nothing is a failure outcome,
	// reported with full metadata rather than thrown.
	if req.Extract != nil && data.Extraction != nil && !data.Extraction.SelectorMatched {
		return &models.ScrapeResponse{
			Success:  false,
			Metadata: meta,
			Error: fmt.Sprintf(
				"Extraction failed: selector '%s' matched 0 elements. "+
					"Possible issues: (1) Element hasn't appeared - try adding a wait action, "+
					"(2) Selector syntax is incorrect, (3) Element structure changed",
				data.Extraction.SelectorUsed),
		}
	}

	payload := &models.ScrapeData{
		Content: data.Content,
		Title:   data.Title,
		URL:     data.URL,
	}
	// Full HTML is returned only for whole-document reads; extraction
	// responses omit it to bound payload size.
	if req.Extract == nil {
		payload.HTML = data.HTML
	}

	// Table parsing is a separate stage after acquisition; its failure
	// downgrades to "table data absent" without failing the scrape.
	if req.Extract != nil && req.Extract.ParseTable != nil && data.Extraction != nil && data.Extraction.SelectorMatched {
		records, tableMeta, parseErr := tableparse.Parse(data.Content, *req.Extract.ParseTable)
		if parseErr != nil {
			slog.Warn("table parse failed, omitting table data",
				"url", req.URL, "error", parseErr)
		} else {
			payload.Parsed = records
			payload.TableMetadata = &tableMeta
		}
	}

	return &models.ScrapeResponse{
		Success:    true,
		Data:       payload,
		Screenshot: data.Screenshot,
		Metadata:   meta,
	}
}

// resolveMode maps the requested mode to the strategy to run. Auto mode
// needs a live page when the request carries actions or asks for a
// screenshot; plain reads go static.
func resolveMode(req *models.ScrapeRequest) string {
	switch req.Mode {
	case models.ModeStatic, models.ModeDynamic:
		return req.Mode
	}
	if len(req.Actions) > 0 || req.Screenshot {
		return models.ModeDynamic
	}
	return models.ModeStatic
}
