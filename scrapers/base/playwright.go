package base

import (
	"context"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/config"
	"github.com/raushankrgupta/product-page-extractor/models"
)

// Playwright renders pages with Chromium driven by playwright-go. The
// Playwright driver and browsers must be installed beforehand
// (go run github.com/playwright-community/playwright-go/cmd/playwright install chromium).
type Playwright struct {
	cfg config.BrowserConfig
}

// NewPlaywright creates a Playwright crawler
func NewPlaywright(cfg config.BrowserConfig) *Playwright {
	return &Playwright{cfg: cfg}
}

func (p *Playwright) Name() string { return "playwright" }

// Crawl starts Playwright and a fresh browser for every page. Cancelling ctx
// closes the browser, which aborts whatever call is in flight.
func (p *Playwright) Crawl(ctx context.Context, pageURL string) (*models.PageData, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "playwright: crawl")
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, eris.Wrap(err, "playwright: start")
	}
	defer func() {
		if err := pw.Stop(); err != nil {
			zap.L().Warn("stopping playwright", zap.Error(err))
		}
	}()

	browser, err := pw.Chromium.Launch(p.launchOptions())
	if err != nil {
		return nil, eris.Wrap(err, "playwright: launch browser")
	}
	stop := context.AfterFunc(ctx, func() { _ = browser.Close() })
	defer func() {
		if stop() {
			_ = browser.Close()
		}
	}()

	bctx, err := browser.NewContext(p.contextOptions())
	if err != nil {
		return nil, eris.Wrap(err, "playwright: create context")
	}
	page, err := bctx.NewPage()
	if err != nil {
		return nil, eris.Wrap(err, "playwright: new page")
	}

	zap.L().Info("navigating", zap.String("url", pageURL), zap.Bool("headless", p.cfg.Headless))
	if _, err := page.Goto(pageURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   millis(navTimeout(ctx, p.cfg.NavTimeout)),
	}); err != nil {
		return nil, eris.Wrap(err, "playwright: navigate")
	}

	// Soft wait, same as the chromedp driver.
	if p.cfg.IdleTimeout > 0 {
		if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State:   playwright.LoadStateNetworkidle,
			Timeout: millis(p.cfg.IdleTimeout),
		}); err != nil {
			zap.L().Warn("network idle wait timed out, continuing", zap.Duration("timeout", p.cfg.IdleTimeout), zap.Error(err))
		}
	}

	html, err := page.Content()
	if err != nil {
		return nil, eris.Wrap(err, "playwright: capture page")
	}
	title, err := page.Title()
	if err != nil {
		return nil, eris.Wrap(err, "playwright: read title")
	}
	location := page.URL()

	linger(ctx, p.cfg.Linger)

	if location == "" {
		location = pageURL
	}
	return ExtractPageData(location, title, html)
}

func (p *Playwright) launchOptions() playwright.BrowserTypeLaunchOptions {
	args := []string{
		"--disable-blink-features=AutomationControlled",
		"--disable-dev-shm-usage",
		"--no-sandbox",
	}
	if p.cfg.Locale != "" {
		args = append(args, "--lang="+p.cfg.Locale)
	}
	return playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(p.cfg.Headless),
		Args:     args,
	}
}

func (p *Playwright) contextOptions() playwright.BrowserNewContextOptions {
	h := browserHeaders(p.cfg.Locale)
	headers := make(map[string]string, len(h))
	for k := range h {
		headers[k] = h.Get(k)
	}

	opts := playwright.BrowserNewContextOptions{
		AcceptDownloads:   playwright.Bool(false),
		JavaScriptEnabled: playwright.Bool(true),
		ExtraHttpHeaders:  headers,
	}
	if p.cfg.UserAgent != "" {
		opts.UserAgent = playwright.String(p.cfg.UserAgent)
	}
	if p.cfg.Locale != "" {
		opts.Locale = playwright.String(p.cfg.Locale)
	}
	if p.cfg.Timezone != "" {
		opts.TimezoneId = playwright.String(p.cfg.Timezone)
	}
	if p.cfg.ViewportWidth > 0 && p.cfg.ViewportHeight > 0 {
		opts.Viewport = &playwright.Size{Width: p.cfg.ViewportWidth, Height: p.cfg.ViewportHeight}
	}
	return opts
}

// navTimeout is the configured timeout, shortened to ctx's deadline when
// that comes first. Zero means no limit.
func navTimeout(ctx context.Context, configured time.Duration) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return configured
	}
	remaining := time.Until(deadline)
	if configured <= 0 || remaining < configured {
		return remaining
	}
	return configured
}

func millis(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}
