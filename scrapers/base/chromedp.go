package base

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/config"
	"github.com/raushankrgupta/product-page-extractor/models"
)

// ChromeDP renders pages in a local Chrome driven over the DevTools protocol
type ChromeDP struct {
	cfg config.BrowserConfig
}

// NewChromeDP creates a ChromeDP crawler
func NewChromeDP(cfg config.BrowserConfig) *ChromeDP {
	return &ChromeDP{cfg: cfg}
}

func (c *ChromeDP) Name() string { return "chromedp" }

// Crawl launches a fresh browser, loads pageURL, waits for the network to
// settle (at most IdleTimeout) and returns what the page shows. The browser
// is closed on every path.
func (c *ChromeDP) Crawl(ctx context.Context, pageURL string) (*models.PageData, error) {
	if c.cfg.NavTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.NavTimeout)
		defer cancel()
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, c.allocatorOptions()...)
	defer cancel()

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	idle := newIdleTracker()
	chromedp.ListenTarget(taskCtx, idle.handle)

	h := browserHeaders(c.cfg.Locale)
	headers := make(network.Headers, len(h))
	for k := range h {
		headers[k] = h.Get(k)
	}

	setup := []chromedp.Action{
		network.Enable(),
		page.SetLifecycleEventsEnabled(true),
		network.SetExtraHTTPHeaders(headers),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			idle.setMainFrame(tree.Frame.ID)
			return nil
		}),
	}
	if c.cfg.Timezone != "" {
		setup = append(setup, emulation.SetTimezoneOverride(c.cfg.Timezone))
	}
	if c.cfg.Locale != "" {
		setup = append(setup, emulation.SetLocaleOverride().WithLocale(c.cfg.Locale))
	}
	if err := chromedp.Run(taskCtx, setup...); err != nil {
		return nil, eris.Wrap(err, "chromedp: configure page")
	}

	zap.L().Info("navigating", zap.String("url", pageURL), zap.Bool("headless", c.cfg.Headless))
	if err := chromedp.Run(taskCtx, chromedp.Navigate(pageURL)); err != nil {
		return nil, eris.Wrap(err, "chromedp: navigate")
	}

	if err := c.waitForIdle(taskCtx, idle.signal); err != nil {
		return nil, err
	}

	var html, title, location string
	err := chromedp.Run(taskCtx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Title(&title),
		chromedp.Location(&location),
	)
	if err != nil {
		return nil, eris.Wrap(err, "chromedp: capture page")
	}

	linger(taskCtx, c.cfg.Linger)

	if location == "" {
		location = pageURL
	}
	return ExtractPageData(location, title, html)
}

// waitForIdle is a soft wait: running out of IdleTimeout is logged and the
// crawl continues with whatever has rendered.
func (c *ChromeDP) waitForIdle(ctx context.Context, idle <-chan struct{}) error {
	timeout := c.cfg.IdleTimeout
	if timeout <= 0 {
		return nil
	}

	select {
	case <-idle:
		return nil
	case <-time.After(timeout):
		zap.L().Warn("network idle wait timed out, continuing", zap.Duration("timeout", timeout))
		return nil
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "chromedp: wait for network idle")
	}
}

func (c *ChromeDP) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if c.cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if c.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.cfg.UserAgent))
	}
	if c.cfg.ViewportWidth > 0 && c.cfg.ViewportHeight > 0 {
		opts = append(opts, chromedp.WindowSize(c.cfg.ViewportWidth, c.cfg.ViewportHeight))
	}
	if c.cfg.Locale != "" {
		opts = append(opts, chromedp.Flag("lang", c.cfg.Locale))
	}
	return opts
}

// idleTracker turns main frame lifecycle events into a networkIdle signal.
// Events from iframes are ignored. networkIdle from the blank start page must
// not count, so each new document ("init") clears any earlier signal.
type idleTracker struct {
	mainFrame atomic.Value // cdp.FrameID
	signal    chan struct{}
}

func newIdleTracker() *idleTracker {
	return &idleTracker{signal: make(chan struct{}, 1)}
}

func (t *idleTracker) setMainFrame(id cdp.FrameID) { t.mainFrame.Store(id) }

func (t *idleTracker) handle(ev interface{}) {
	e, ok := ev.(*page.EventLifecycleEvent)
	if !ok {
		return
	}
	main, _ := t.mainFrame.Load().(cdp.FrameID)
	if main == "" || e.FrameID != main {
		return
	}
	switch e.Name {
	case "init":
		select {
		case <-t.signal:
		default:
		}
	case "networkIdle":
		select {
		case t.signal <- struct{}{}:
		default:
		}
	}
}

// linger keeps a headed browser open for a moment so a developer can look at it
func linger(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	zap.L().Info("keeping browser open", zap.Duration("for", d))
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
