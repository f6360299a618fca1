package scraper

import (
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Page is the live page handle the action executor and the dynamic
// strategy drive. It is satisfied by the rod adapter below and by fakes
// in tests.
type Page interface {
	// Navigate loads the URL and waits for the initial render to settle.
	Navigate(url string) error

	// Click clicks the first element matching the selector.
	Click(selector string) error

	// Fill replaces the content of the first element matching the selector.
	Fill(selector, value string) error

	// ScrollIntoView scrolls the first match into the viewport.
	ScrollIntoView(selector string) error

	// ScrollBy scrolls the viewport vertically by the given pixel amount.
	ScrollBy(pixels int) error

	// WaitForSelector waits up to timeout for the selector to match at
	// least one element.
	WaitForSelector(selector string, timeout time.Duration) error

	// WaitLifecycle waits up to timeout for a page lifecycle signal:
	// "load" or "networkidle".
	WaitLifecycle(state string, timeout time.Duration) error

	// Sleep pauses for d, or less if the page's context expires first.
	Sleep(d time.Duration) error

	// Content returns the current serialized DOM.
	Content() (string, error)

	// Title returns the document title, best-effort.
	Title() string

	// CurrentURL returns the page's current URL, best-effort.
	CurrentURL() string

	// Screenshot captures a full-page PNG.
	Screenshot() ([]byte, error)

	// Close releases the page. Safe to call after a context timeout.
	Close() error
}

// rodPage adapts a rod page to the Page interface. ops carries the
// request context; raw keeps the original reference so Close still works
// after the request context has expired.
type rodPage struct {
	ops *rod.Page
	raw *rod.Page
}

func (pg *rodPage) Navigate(url string) error {
	if err := pg.ops.Navigate(url); err != nil {
		return err
	}
	// Settle on network idle; with an expired context this simply
	// returns and the caller proceeds with the DOM as-is.
	pg.ops.WaitRequestIdle(300*time.Millisecond, nil, nil, nil)()
	return nil
}

func (pg *rodPage) Click(selector string) error {
	el, err := pg.ops.Element(selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (pg *rodPage) Fill(selector, value string) error {
	el, err := pg.ops.Element(selector)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(value)
}

func (pg *rodPage) ScrollIntoView(selector string) error {
	el, err := pg.ops.Element(selector)
	if err != nil {
		return err
	}
	return el.ScrollIntoView()
}

func (pg *rodPage) ScrollBy(pixels int) error {
	_, err := pg.ops.Eval(`(y) => window.scrollBy(0, y)`, pixels)
	return err
}

func (pg *rodPage) WaitForSelector(selector string, timeout time.Duration) error {
	return pg.ops.Timeout(timeout).WaitElementsMoreThan(selector, 0)
}

func (pg *rodPage) WaitLifecycle(state string, timeout time.Duration) error {
	p := pg.ops.Timeout(timeout)
	if state == "load" {
		return p.WaitLoad()
	}
	// WaitRequestIdle returns without error when the deadline expires, so
	// the context must be checked afterwards for the timeout to propagate.
	p.WaitRequestIdle(300*time.Millisecond, nil, nil, nil)()
	return p.GetContext().Err()
}

func (pg *rodPage) Sleep(d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-pg.ops.GetContext().Done():
		return pg.ops.GetContext().Err()
	}
}

func (pg *rodPage) Content() (string, error) {
	return pg.ops.HTML()
}

func (pg *rodPage) Title() string {
	return evalStringOrEmpty(pg.ops, `() => document.title`)
}

func (pg *rodPage) CurrentURL() string {
	return evalStringOrEmpty(pg.ops, `() => window.location.href`)
}

func (pg *rodPage) Screenshot() ([]byte, error) {
	return pg.ops.Screenshot(true, nil)
}

func (pg *rodPage) Close() error {
	return pg.raw.Close()
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}
