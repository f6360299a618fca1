package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gleanerhq/gleaner/api"
	"github.com/gleanerhq/gleaner/cache"
	"github.com/gleanerhq/gleaner/config"
	"github.com/gleanerhq/gleaner/scraper"
	"github.com/gleanerhq/gleaner/store"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("gleaner starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"static", cfg.Scraper.EnableStatic,
		"dynamic", cfg.Scraper.EnableDynamic,
	)

	// ── 3. Initialise the browser manager and scrape service ────────
	// The browser process itself launches lazily on the first dynamic
	// request, so startup stays fast when only static mode is used.
	browser := scraper.NewBrowser(cfg.Browser)
	defer browser.Close()

	svc := scraper.NewService(browser, cfg.Scraper, cfg.Browser.DefaultProxy)

	// ── 3b. Initialise scrape-history store ─────────────────────────
	var st *store.Store
	if cfg.Store.Enabled {
		st = store.New(cfg.Store.Path)
		if err := st.Open(); err != nil {
			slog.Error("failed to open scrape store", "path", cfg.Store.Path, "error", err)
			os.Exit(1)
		}
		defer st.Close()
		slog.Info("scrape store opened", "path", cfg.Store.Path)
	}

	// ── 4. Initialise cache ─────────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries)

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(svc, cfg, cc, st, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// browser.Close() runs via defer — kills Chrome if it was launched.
	slog.Info("gleaner stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
