package scraper

import "github.com/gleanerhq/gleaner/models"

// ScrapedData is the unified return type of both acquisition strategies.
// It never outlives the page or DOM it was read from.
type ScrapedData struct {
	// Content is the extracted content in the requested output format.
	Content string

	// HTML is the full page markup.
	HTML string

	// Title is the page title.
	Title string

	// URL is the final URL after redirects or navigation.
	URL string

	// Screenshot is a base64-encoded PNG, when requested.
	Screenshot string

	// Extraction is present whenever an extraction spec was supplied.
	Extraction *models.ExtractionDebug

	// ActionsPerformed counts the actions that ran (dynamic mode only).
	ActionsPerformed int
}
