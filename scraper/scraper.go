package scraper

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/gleanerhq/gleaner/config"
	"github.com/gleanerhq/gleaner/models"
)

// Browser owns the shared headless browser. The browser process is
// launched lazily on the first dynamic request and torn down once at
// shutdown; each request opens and closes its own page.
// Safe for concurrent use.
type Browser struct {
	cfg config.BrowserConfig

	mu      sync.Mutex
	browser *rod.Browser
}

// NewBrowser creates the manager without launching anything.
func NewBrowser(cfg config.BrowserConfig) *Browser {
	return &Browser{cfg: cfg}
}

// ensure launches and connects the browser on first use.
func (b *Browser) ensure() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		return b.browser, nil
	}

	l := launcher.New().
		Headless(b.cfg.Headless).
		NoSandbox(b.cfg.NoSandbox)

	if b.cfg.BrowserBin != "" {
		l = l.Bin(b.cfg.BrowserBin)
	}
	if b.cfg.DefaultProxy != "" {
		l = l.Proxy(b.cfg.DefaultProxy)
	}

	// Flags that make headless Chrome look and behave less like automation.
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	b.browser = browser
	return browser, nil
}

// NewPage opens a fresh page bound to ctx. The returned page must be
// closed by the caller, success or failure.
func (b *Browser) NewPage(ctx context.Context, useStealth bool) (Page, error) {
	browser, err := b.ensure()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to open page",
			err,
		)
	}

	if useStealth {
		// Must be installed before navigation to take effect.
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	return &rodPage{ops: page.Context(ctx), raw: page}, nil
}

// Close kills the browser process if it was ever launched.
// Call this on graceful shutdown to prevent zombie Chrome processes.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return
	}
	slog.Info("closing browser")
	if err := b.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
	b.browser = nil
}
