package models

// Scrape modes.
const (
	ModeAuto    = "auto"
	ModeStatic  = "static"
	ModeDynamic = "dynamic"
)

// Output formats.
const (
	FormatJSON     = "json"
	FormatHTML     = "html"
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// ScrapeRequest is the payload for POST /api/v1/scrape.
type ScrapeRequest struct {
	// URL is the target page to scrape. Required.
	URL string `json:"url" binding:"required,url"`

	// Mode selects the acquisition strategy.
	// "auto" (default): dynamic when actions or a screenshot are requested,
	// static otherwise.
	// "static": single HTTP request, no JavaScript execution.
	// "dynamic": headless browser with full rendering.
	Mode string `json:"mode,omitempty" binding:"omitempty,oneof=auto static dynamic"`

	// Actions are performed in order on the rendered page before
	// extraction. Dynamic mode only.
	Actions []Action `json:"actions,omitempty"`

	// Extract selects and formats specific element(s). When absent the
	// whole document is returned in the requested format.
	Extract *ExtractSpec `json:"extract,omitempty"`

	// Screenshot captures a base64 PNG of the page after all actions.
	// Dynamic mode only.
	Screenshot bool `json:"screenshot,omitempty"`

	// OutputFormat controls content formatting.
	// Allowed: "json" (default), "html", "text", "markdown".
	OutputFormat string `json:"output_format,omitempty" binding:"omitempty,oneof=json html text markdown"`

	// Stealth enables anti-bot-detection evasions in dynamic mode.
	Stealth bool `json:"stealth,omitempty"`

	// Timeout is the maximum duration in seconds for the whole operation.
	// Default: 30. Capped by the server's max timeout.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`

	// MaxAge enables the response cache: a cached response younger than
	// MaxAge milliseconds is returned without scraping.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`

	// WebhookURL, when set, receives the outcome asynchronously after the
	// scrape completes.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`

	// Store persists the outcome to the scrape history when enabled
	// server-side.
	Store bool `json:"store,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults() {
	if r.Mode == "" {
		r.Mode = ModeAuto
	}
	if r.OutputFormat == "" {
		r.OutputFormat = FormatJSON
	}
	if r.Timeout == 0 {
		r.Timeout = 30
	}
	if r.Extract != nil {
		r.Extract.Defaults()
		if r.Extract.ParseTable != nil {
			r.Extract.ParseTable.Defaults()
		}
	}
}
