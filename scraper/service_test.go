package scraper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleanerhq/gleaner/config"
	"github.com/gleanerhq/gleaner/models"
)

// stubAcquirer returns a fixed outcome and remembers whether it ran.
type stubAcquirer struct {
	data   *ScrapedData
	err    error
	called bool
}

func (s *stubAcquirer) Acquire(ctx context.Context, req *models.ScrapeRequest) (*ScrapedData, error) {
	s.called = true
	return s.data, s.err
}

func testServiceConfig() config.ScraperConfig {
	return config.ScraperConfig{
		DefaultTimeout: 30 * time.Second,
		MaxTimeout:     120 * time.Second,
	}
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name string
		req  models.ScrapeRequest
		want string
	}{
		{"explicit static", models.ScrapeRequest{Mode: models.ModeStatic}, models.ModeStatic},
		{"explicit dynamic", models.ScrapeRequest{Mode: models.ModeDynamic}, models.ModeDynamic},
		{"auto plain read", models.ScrapeRequest{Mode: models.ModeAuto}, models.ModeStatic},
		{
			"auto with actions",
			models.ScrapeRequest{Mode: models.ModeAuto, Actions: []models.Action{{Type: models.ActionClick}}},
			models.ModeDynamic,
		},
		{"auto with screenshot", models.ScrapeRequest{Mode: models.ModeAuto, Screenshot: true}, models.ModeDynamic},
		{
			"explicit static with actions stays static",
			models.ScrapeRequest{Mode: models.ModeStatic, Actions: []models.Action{{Type: models.ActionClick}}},
			models.ModeStatic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveMode(&tt.req))
		})
	}
}

func TestScrapeRoutesToResolvedMode(t *testing.T) {
	static := &stubAcquirer{data: &ScrapedData{Content: "static"}}
	dynamic := &stubAcquirer{data: &ScrapedData{Content: "dynamic"}}
	svc := &Service{static: static, dynamic: dynamic, cfg: testServiceConfig()}

	req := &models.ScrapeRequest{URL: "https://example.com", Screenshot: true}
	req.Defaults()

	resp := svc.Scrape(context.Background(), req)
	require.True(t, resp.Success)
	assert.True(t, dynamic.called)
	assert.False(t, static.called)
	assert.Equal(t, models.ModeDynamic, resp.Metadata.ScrapeMode)
}

func TestScrapeSuccess(t *testing.T) {
	static := &stubAcquirer{data: &ScrapedData{
		Content: "Hello",
		HTML:    "<html><body>Hello</body></html>",
		Title:   "Greeting",
		URL:     "https://example.com/final",
	}}
	svc := &Service{static: static, dynamic: &stubAcquirer{}, cfg: testServiceConfig()}

	req := &models.ScrapeRequest{URL: "https://example.com"}
	req.Defaults()

	resp := svc.Scrape(context.Background(), req)
	require.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "Hello", resp.Data.Content)
	assert.Equal(t, "Greeting", resp.Data.Title)
	assert.Equal(t, "https://example.com/final", resp.Data.URL)
	// Whole-document reads include the raw HTML.
	assert.NotEmpty(t, resp.Data.HTML)
	assert.Equal(t, models.ModeStatic, resp.Metadata.ScrapeMode)
	assert.False(t, resp.Metadata.Timestamp.IsZero())
	assert.Empty(t, resp.Error)
}

func TestScrapeFailureRecordsAttemptedMode(t *testing.T) {
	dynamic := &stubAcquirer{err: fmt.Errorf("browser crashed")}
	svc := &Service{static: &stubAcquirer{}, dynamic: dynamic, cfg: testServiceConfig()}

	req := &models.ScrapeRequest{URL: "https://example.com", Mode: models.ModeDynamic}
	req.Defaults()

	resp := svc.Scrape(context.Background(), req)
	require.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Contains(t, resp.Error, "browser crashed")
	assert.Equal(t, models.ModeDynamic, resp.Metadata.ScrapeMode)
	assert.GreaterOrEqual(t, resp.Metadata.DurationMs, int64(0))
}

func TestScrapeExtractionMissIsFailureOutcome(t *testing.T) {
	static := &stubAcquirer{data: &ScrapedData{
		Content: "",
		Extraction: &models.ExtractionDebug{
			SelectorMatched: false,
			ElementsFound:   0,
			SelectorUsed:    "#missing",
		},
	}}
	svc := &Service{static: static, dynamic: &stubAcquirer{}, cfg: testServiceConfig()}

	req := &models.ScrapeRequest{
		URL:     "https://example.com",
		Mode:    models.ModeStatic,
		Extract: &models.ExtractSpec{Selector: "#missing"},
	}
	req.Defaults()

	resp := svc.Scrape(context.Background(), req)
	require.False(t, resp.Success)
	assert.Contains(t, resp.Error, "'#missing'")
	assert.Contains(t, resp.Error, "matched 0 elements")
	// Metadata survives the failure so callers can debug the selector.
	require.NotNil(t, resp.Metadata.ExtractionDebug)
	assert.Equal(t, 0, resp.Metadata.ExtractedElements)
	assert.Equal(t, models.ModeStatic, resp.Metadata.ScrapeMode)
}

func TestScrapeExtractionOmitsRawHTML(t *testing.T) {
	static := &stubAcquirer{data: &ScrapedData{
		Content: "42",
		HTML:    "<html><body><span id='n'>42</span></body></html>",
		Extraction: &models.ExtractionDebug{
			SelectorMatched: true,
			ElementsFound:   1,
			SelectorUsed:    "#n",
		},
	}}
	svc := &Service{static: static, dynamic: &stubAcquirer{}, cfg: testServiceConfig()}

	req := &models.ScrapeRequest{
		URL:     "https://example.com",
		Mode:    models.ModeStatic,
		Extract: &models.ExtractSpec{Selector: "#n"},
	}
	req.Defaults()

	resp := svc.Scrape(context.Background(), req)
	require.True(t, resp.Success)
	assert.Equal(t, "42", resp.Data.Content)
	assert.Empty(t, resp.Data.HTML, "extraction responses must not carry the full document")
	assert.Equal(t, 1, resp.Metadata.ExtractedElements)
}

func TestScrapeTableParseStage(t *testing.T) {
	tableHTML := `<table>
<thead><tr><th>Name</th><th>Qty</th></tr></thead>
<tbody><tr><td>bolt</td><td>12</td></tr><tr><td>nut</td><td>30</td></tr></tbody>
</table>`
	static := &stubAcquirer{data: &ScrapedData{
		Content: tableHTML,
		Extraction: &models.ExtractionDebug{
			SelectorMatched: true,
			ElementsFound:   1,
			SelectorUsed:    "table",
		},
	}}
	svc := &Service{static: static, dynamic: &stubAcquirer{}, cfg: testServiceConfig()}

	req := &models.ScrapeRequest{
		URL:  "https://example.com/inventory",
		Mode: models.ModeStatic,
		Extract: &models.ExtractSpec{
			Selector:   "table",
			ParseTable: &models.TableSpec{},
		},
	}
	req.Defaults()

	resp := svc.Scrape(context.Background(), req)
	require.True(t, resp.Success)
	require.Len(t, resp.Data.Parsed, 2)
	assert.Equal(t, "bolt", resp.Data.Parsed[0]["Name"])
	assert.Equal(t, "30", resp.Data.Parsed[1]["Qty"])
	require.NotNil(t, resp.Data.TableMetadata)
	assert.Equal(t, 2, resp.Data.TableMetadata.RowsParsed)
	assert.Equal(t, 2, resp.Data.TableMetadata.Columns)
}

func TestScrapeTableParseToleratesMissingDebug(t *testing.T) {
	// An acquirer that never fills the extraction bookkeeping must not
	// crash the table stage; the stage is simply skipped.
	static := &stubAcquirer{data: &ScrapedData{Content: "<table></table>"}}
	svc := &Service{static: static, dynamic: &stubAcquirer{}, cfg: testServiceConfig()}

	req := &models.ScrapeRequest{
		URL:  "https://example.com",
		Mode: models.ModeStatic,
		Extract: &models.ExtractSpec{
			Selector:   "table",
			ParseTable: &models.TableSpec{},
		},
	}
	req.Defaults()

	resp := svc.Scrape(context.Background(), req)
	require.True(t, resp.Success)
	assert.Nil(t, resp.Data.Parsed)
	assert.Nil(t, resp.Data.TableMetadata)
}

func TestScrapeTableParseFailureDowngrades(t *testing.T) {
	static := &stubAcquirer{data: &ScrapedData{
		Content: "<table></table>",
		Extraction: &models.ExtractionDebug{
			SelectorMatched: true,
			ElementsFound:   1,
			SelectorUsed:    "table",
		},
	}}
	svc := &Service{static: static, dynamic: &stubAcquirer{}, cfg: testServiceConfig()}

	req := &models.ScrapeRequest{
		URL:  "https://example.com",
		Mode: models.ModeStatic,
		Extract: &models.ExtractSpec{
			Selector:   "table",
			ParseTable: &models.TableSpec{RowSelector: "tr["},
		},
	}
	req.Defaults()

	resp := svc.Scrape(context.Background(), req)
	// The scrape itself still succeeds; only the table data is absent.
	require.True(t, resp.Success)
	assert.Nil(t, resp.Data.Parsed)
	assert.Nil(t, resp.Data.TableMetadata)
}
