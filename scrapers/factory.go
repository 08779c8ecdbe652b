package scrapers

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/raushankrgupta/product-page-extractor/config"
	"github.com/raushankrgupta/product-page-extractor/scrapers/base"
)

const (
	DriverChromeDP   = "chromedp"
	DriverSelenium   = "selenium"
	DriverPlaywright = "playwright"
	DriverHTTP       = "http"
)

// NewCrawler returns the crawler named by browser.Driver
func NewCrawler(browser config.BrowserConfig, sel config.SeleniumConfig) (PageCrawler, error) {
	switch strings.ToLower(strings.TrimSpace(browser.Driver)) {
	case "", DriverChromeDP:
		return base.NewChromeDP(browser), nil
	case DriverSelenium:
		return base.NewSelenium(browser, sel), nil
	case DriverPlaywright:
		return base.NewPlaywright(browser), nil
	case DriverHTTP:
		return base.NewHTTPFetcher(nil, browser), nil
	default:
		return nil, eris.Errorf("scrapers: unknown browser driver %q", browser.Driver)
	}
}
