package scraper

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	tls "github.com/refraction-networking/utls"

	"github.com/gleanerhq/gleaner/config"
	"github.com/gleanerhq/gleaner/extract"
	"github.com/gleanerhq/gleaner/models"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 * 1024 * 1024

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to
// http/1.1 only. Computed once at init time and reused for every
// connection: Go's http.Transport cannot speak HTTP/2 over a utls
// connection, so h2 must never be negotiated.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// staticScraper acquires pages with a single HTTP request, no JavaScript
// execution. The pooled client is shared across requests and is safe for
// concurrent use.
type staticScraper struct {
	client    *http.Client
	userAgent string
}

func newStaticScraper(cfg config.ScraperConfig, proxy string) *staticScraper {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("static: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
	if proxy != "" {
		if proxyURL, err := url.Parse(proxy); err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &staticScraper{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
	}
}

func (s *staticScraper) Acquire(ctx context.Context, req *models.ScrapeRequest) (*ScrapedData, error) {
	body, finalURL, err := s.fetch(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse fetched HTML: %w", err)
	}

	content, debug, err := extract.Content(doc, req.Extract, req.OutputFormat)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	return &ScrapedData{
		Content:    content,
		HTML:       body,
		Title:      strings.TrimSpace(doc.Find("title").First().Text()),
		URL:        finalURL,
		Extraction: debug,
	}, nil
}

// fetch issues a single GET, following redirects, and returns the body
// and the final URL. Any 4xx/5xx status is an error.
func (s *staticScraper) fetch(ctx context.Context, targetURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", "", models.NewScrapeError(models.ErrCodeFetchFailed, "build request", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", "", categorizeError(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", "", models.NewScrapeError(
			models.ErrCodeFetchFailed,
			fmt.Sprintf("HTTP %d for %s", resp.StatusCode, targetURL),
			nil,
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", "", models.NewScrapeError(models.ErrCodeFetchFailed, "read body", err)
	}

	return string(body), resp.Request.URL.String(), nil
}
