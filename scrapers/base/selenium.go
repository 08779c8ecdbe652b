package base

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/config"
	"github.com/raushankrgupta/product-page-extractor/models"
)

// seleniumPortRange is how many local chromedriver services may run at once
const seleniumPortRange = 16

// Selenium renders pages through a WebDriver endpoint. Without a remote URL it
// starts a chromedriver per crawl.
type Selenium struct {
	browser config.BrowserConfig
	cfg     config.SeleniumConfig
	ports   *PortManager
}

// NewSelenium creates a Selenium crawler
func NewSelenium(browser config.BrowserConfig, cfg config.SeleniumConfig) *Selenium {
	return &Selenium{
		browser: browser,
		cfg:     cfg,
		ports:   NewPortManager(cfg.Port, seleniumPortRange),
	}
}

func (s *Selenium) Name() string { return "selenium" }

// Crawl loads pageURL and waits (softly) for document.readyState to reach
// "complete". WebDriver calls are not cancellable, so ctx is checked between steps.
func (s *Selenium) Crawl(ctx context.Context, pageURL string) (*models.PageData, error) {
	endpoint := s.cfg.RemoteURL
	if endpoint == "" {
		port, err := s.ports.Acquire()
		if err != nil {
			return nil, err
		}
		defer s.ports.Release(port)

		service, err := selenium.NewChromeDriverService(s.cfg.DriverPath, port)
		if err != nil {
			return nil, eris.Wrap(err, "selenium: start chromedriver")
		}
		defer service.Stop() //nolint:errcheck

		endpoint = fmt.Sprintf("http://localhost:%d/wd/hub", port)
	}

	wd, err := selenium.NewRemote(s.capabilities(), endpoint)
	if err != nil {
		return nil, eris.Wrap(err, "selenium: create webdriver")
	}
	defer wd.Quit() //nolint:errcheck

	if s.browser.NavTimeout > 0 {
		if err := wd.SetPageLoadTimeout(s.browser.NavTimeout); err != nil {
			zap.L().Warn("selenium: set page load timeout", zap.Error(err))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "selenium: navigate")
	}
	zap.L().Info("navigating", zap.String("url", pageURL), zap.Bool("headless", s.browser.Headless))
	if err := wd.Get(pageURL); err != nil {
		return nil, eris.Wrap(err, "selenium: navigate")
	}

	s.waitForReady(wd)

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "selenium: capture page")
	}
	html, err := wd.PageSource()
	if err != nil {
		return nil, eris.Wrap(err, "selenium: page source")
	}
	title, err := wd.Title()
	if err != nil {
		return nil, eris.Wrap(err, "selenium: title")
	}
	location, err := wd.CurrentURL()
	if err != nil || location == "" {
		location = pageURL
	}

	linger(ctx, s.browser.Linger)

	return ExtractPageData(location, title, html)
}

func (s *Selenium) waitForReady(wd selenium.WebDriver) {
	timeout := s.browser.IdleTimeout
	if timeout <= 0 {
		return
	}
	err := wd.WaitWithTimeoutAndInterval(func(wd selenium.WebDriver) (bool, error) {
		state, err := wd.ExecuteScript("return document.readyState", nil)
		if err != nil {
			return false, nil
		}
		return state == "complete", nil
	}, timeout, 250*time.Millisecond)
	if err != nil {
		zap.L().Warn("ready state wait timed out, continuing", zap.Duration("timeout", timeout))
	}
}

func (s *Selenium) capabilities() selenium.Capabilities {
	args := []string{
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-blink-features=AutomationControlled",
		"--disable-extensions",
	}
	if s.browser.Headless {
		args = append(args, "--headless=new", "--disable-gpu")
	}
	if s.browser.ViewportWidth > 0 && s.browser.ViewportHeight > 0 {
		args = append(args, fmt.Sprintf("--window-size=%d,%d", s.browser.ViewportWidth, s.browser.ViewportHeight))
	}
	if s.browser.UserAgent != "" {
		args = append(args, "--user-agent="+s.browser.UserAgent)
	}
	if s.browser.Locale != "" {
		args = append(args, "--lang="+s.browser.Locale)
	}

	prefs := map[string]interface{}{
		"profile.default_content_setting_values.notifications": 2,
	}
	if al := acceptLanguage(s.browser.Locale); al != "" {
		prefs["intl.accept_languages"] = al
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chrome.Capabilities{
		Args:            args,
		ExcludeSwitches: []string{"enable-automation"},
		Prefs:           prefs,
	})
	return caps
}
