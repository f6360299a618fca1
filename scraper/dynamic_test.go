package scraper

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleanerhq/gleaner/config"
	"github.com/gleanerhq/gleaner/models"
)

func newTestDynamic(page *fakePage, screenshots bool) *dynamicScraper {
	return &dynamicScraper{
		newPage: func(ctx context.Context, stealth bool) (Page, error) {
			return page, nil
		},
		cfg:         config.ScraperConfig{NavigationTimeout: 5 * time.Second},
		screenshots: screenshots,
	}
}

func TestDynamicAcquire(t *testing.T) {
	page := &fakePage{
		html:  `<html><head><title>T</title></head><body><h1>Hello</h1></body></html>`,
		title: "T",
		url:   "https://example.com/final",
	}
	d := newTestDynamic(page, false)

	req := &models.ScrapeRequest{URL: "https://example.com"}
	req.Defaults()

	data, err := d.Acquire(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "T", data.Title)
	assert.Equal(t, "https://example.com/final", data.URL)
	assert.Contains(t, data.HTML, "<h1>Hello</h1>")
	assert.Contains(t, data.Content, "Hello")
	assert.True(t, page.closed, "page must be closed after acquire")
}

func TestDynamicAcquireRunsActions(t *testing.T) {
	page := &fakePage{html: "<html><body></body></html>"}
	d := newTestDynamic(page, false)

	req := &models.ScrapeRequest{
		URL: "https://example.com",
		Actions: []models.Action{
			{Type: models.ActionClick, Selector: "#more"},
			{Type: models.ActionScroll, Amount: 200},
		},
	}
	req.Defaults()

	data, err := d.Acquire(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, data.ActionsPerformed)
	assert.Equal(t, []string{
		"navigate:https://example.com",
		"click:#more",
		"scrollby:200",
	}, page.calls)
}

func TestDynamicAcquireNavigationError(t *testing.T) {
	page := &fakePage{navigateErr: fmt.Errorf("net::ERR_NAME_NOT_RESOLVED")}
	d := newTestDynamic(page, false)

	req := &models.ScrapeRequest{URL: "https://bad.invalid"}
	req.Defaults()

	_, err := d.Acquire(context.Background(), req)
	require.Error(t, err)

	var serr *models.ScrapeError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, models.ErrCodeNavigation, serr.Code)
	assert.True(t, page.closed, "page must be closed on failure too")
}

func TestDynamicAcquireTimeoutCategorized(t *testing.T) {
	page := &fakePage{navigateErr: context.DeadlineExceeded}
	d := newTestDynamic(page, false)

	req := &models.ScrapeRequest{URL: "https://slow.example.com"}
	req.Defaults()

	_, err := d.Acquire(context.Background(), req)
	require.Error(t, err)

	var serr *models.ScrapeError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, models.ErrCodeTimeout, serr.Code)
}

func TestDynamicAcquireExtractionWait(t *testing.T) {
	page := &fakePage{html: `<html><body><div id="late">ok</div></body></html>`}
	d := newTestDynamic(page, false)

	req := &models.ScrapeRequest{
		URL:     "https://example.com",
		Extract: &models.ExtractSpec{Selector: "#late"},
	}
	req.Defaults()

	data, err := d.Acquire(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, page.calls, "waitsel:#late")
	assert.Equal(t, "ok", data.Content)
	require.NotNil(t, data.Extraction)
	assert.True(t, data.Extraction.SelectorMatched)
}

func TestDynamicAcquireExtractionWaitTimesOut(t *testing.T) {
	page := &fakePage{
		html:            "<html><body></body></html>",
		waitSelectorErr: map[string]error{"#ajax": fmt.Errorf("timeout")},
	}
	d := newTestDynamic(page, false)

	req := &models.ScrapeRequest{
		URL:     "https://example.com",
		Extract: &models.ExtractSpec{Selector: "#ajax", WaitTimeout: 1200},
	}
	req.Defaults()

	_, err := d.Acquire(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"#ajax"`)
	assert.Contains(t, err.Error(), "1200ms")
	assert.Contains(t, err.Error(), "add a wait action")
}

func TestDynamicAcquireScreenshot(t *testing.T) {
	shot := []byte{0x89, 0x50, 0x4e, 0x47}
	page := &fakePage{html: "<html><body></body></html>", shot: shot}
	d := newTestDynamic(page, true)

	req := &models.ScrapeRequest{URL: "https://example.com", Screenshot: true}
	req.Defaults()

	data, err := d.Acquire(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(shot), data.Screenshot)
}

func TestDynamicAcquireScreenshotDisabled(t *testing.T) {
	page := &fakePage{html: "<html><body></body></html>", shot: []byte{1}}
	d := newTestDynamic(page, false)

	req := &models.ScrapeRequest{URL: "https://example.com", Screenshot: true}
	req.Defaults()

	data, err := d.Acquire(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, data.Screenshot)
}

func TestDynamicAcquireScreenshotFailureIsNotFatal(t *testing.T) {
	page := &fakePage{
		html:          "<html><body><p>still here</p></body></html>",
		screenshotErr: fmt.Errorf("target closed"),
	}
	d := newTestDynamic(page, true)

	req := &models.ScrapeRequest{URL: "https://example.com", Screenshot: true}
	req.Defaults()

	data, err := d.Acquire(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, data.Screenshot)
	assert.Contains(t, data.Content, "still here")
}

func TestDynamicAcquireFallsBackToRequestURL(t *testing.T) {
	page := &fakePage{html: "<html><body></body></html>", url: ""}
	d := newTestDynamic(page, false)

	req := &models.ScrapeRequest{URL: "https://example.com/page"}
	req.Defaults()

	data, err := d.Acquire(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", data.URL)
}
