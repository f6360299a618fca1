package models

import "time"

// ScrapeResponse is the outcome of one scrape request. It is always
// well-formed: either Data or Error is populated, and Metadata is filled
// on both the success and failure paths.
type ScrapeResponse struct {
	// Success indicates whether the scrape completed and, when extraction
	// was requested, whether the selector matched.
	Success bool `json:"success"`

	// Data holds the scraped content. Nil when Success is false.
	Data *ScrapeData `json:"data,omitempty"`

	// Screenshot is a base64-encoded PNG, present only when requested.
	Screenshot string `json:"screenshot,omitempty"`

	// Metadata describes the operation itself.
	Metadata ScrapeMetadata `json:"metadata"`

	// Error is a human-readable failure description when Success is false.
	Error string `json:"error,omitempty"`
}

// ScrapeData is the content payload of a successful scrape.
type ScrapeData struct {
	// Content is the extracted content in the requested output format.
	Content string `json:"content"`

	// HTML is the full page markup. Omitted when an extraction spec was
	// supplied, to bound payload size.
	HTML string `json:"html,omitempty"`

	// Title is the page title.
	Title string `json:"title"`

	// URL is the final URL after redirects or navigation.
	URL string `json:"url"`

	// Parsed holds table records when parse_table was requested and the
	// fragment parsed cleanly.
	Parsed []map[string]string `json:"parsed,omitempty"`

	// TableMetadata accompanies Parsed.
	TableMetadata *TableMetadata `json:"table_metadata,omitempty"`
}

// ScrapeMetadata describes a scrape operation.
type ScrapeMetadata struct {
	// ScrapeMode is the acquisition mode that was actually attempted.
	ScrapeMode string `json:"scrape_mode"`

	// DurationMs is the wall-clock duration of the acquisition.
	DurationMs int64 `json:"duration_ms"`

	// Timestamp is when the outcome was produced.
	Timestamp time.Time `json:"timestamp"`

	// ActionsPerformed counts the actions that ran.
	ActionsPerformed int `json:"actions_performed"`

	// ExtractedElements counts elements matched by the extraction selector.
	ExtractedElements int `json:"extracted_elements"`

	// ExtractionDebug is present whenever an extraction selector was used.
	ExtractionDebug *ExtractionDebug `json:"extraction_debug,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status   string            `json:"status"` // "healthy" or "degraded"
	Version  string            `json:"version"`
	Uptime   string            `json:"uptime"`
	Scrapers map[string]string `json:"scrapers"` // mode -> "available"/"unavailable"
}

// StoredScrape is a persisted scrape outcome.
type StoredScrape struct {
	ScrapeID  string         `json:"scrape_id"`
	URL       string         `json:"url"`
	Mode      string         `json:"mode"`
	Success   bool           `json:"success"`
	Content   string         `json:"content,omitempty"`
	Error     string         `json:"error,omitempty"`
	Metadata  ScrapeMetadata `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

// ScrapeQueryResponse is the response for GET /api/v1/scrapes.
type ScrapeQueryResponse struct {
	Total   int            `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
	Results []StoredScrape `json:"results"`
}

// ScrapeStatistic is one aggregation bucket for the stats endpoint,
// grouped by mode and success.
type ScrapeStatistic struct {
	Mode          string  `json:"mode"`
	Success       bool    `json:"success"`
	Count         int     `json:"count"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}
