package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/cache"
	"github.com/raushankrgupta/product-page-extractor/config"
	"github.com/raushankrgupta/product-page-extractor/extractor"
	"github.com/raushankrgupta/product-page-extractor/pipeline"
	"github.com/raushankrgupta/product-page-extractor/scrapers"
	"github.com/raushankrgupta/product-page-extractor/storage"
	"github.com/raushankrgupta/product-page-extractor/utils"
)

const defaultURL = "https://google.com"

var (
	runMode           string
	runOutput         string
	runDriver         string
	runProvider       string
	runDownloadImages bool
)

func init() {
	f := rootCmd.Flags()
	f.StringVar(&runMode, "mode", string(pipeline.ModeFull), "how far to go: links, html or full")
	f.StringVar(&runOutput, "output", "", "output directory (default from config)")
	f.StringVar(&runDriver, "driver", "", "browser driver: chromedp, selenium, playwright or http (default from config)")
	f.StringVar(&runProvider, "provider", "", "extraction provider: gemini or anthropic (default from config)")
	f.BoolVar(&runDownloadImages, "download-images", false, "also save the verified product images")
}

func runExtract(cmd *cobra.Command, args []string) error {
	pageURL := defaultURL
	if len(args) > 0 {
		pageURL = args[0]
	}

	if !utils.IsValidURL(pageURL) {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "Invalid URL: %s\n", pageURL)
		fmt.Fprintln(errOut, "Please provide a valid URL starting with http:// or https://")
		return pipeline.ErrInvalidURL
	}

	mode, err := pipeline.ParseMode(runMode)
	if err != nil {
		return err
	}
	applyFlags(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := newEnv(ctx, cfg, mode)
	if err != nil {
		return err
	}
	defer env.Close()

	report, err := env.Runner.Run(ctx, pageURL)
	if err != nil {
		// Crawl failures are reported, not fatal.
		zap.L().Error("error during execution", zap.String("url", pageURL), zap.Error(err))
		return nil
	}

	zap.L().Info("done",
		zap.String("title", report.Title),
		zap.Int("links", len(report.Links)),
		zap.String("output", cfg.Output.Dir),
	)
	return nil
}

// applyFlags lets command-line flags win over file and environment settings
func applyFlags(c *config.Config) {
	if runOutput != "" {
		c.Output.Dir = runOutput
	}
	if runDriver != "" {
		c.Browser.Driver = runDriver
	}
	if runProvider != "" {
		c.LLM.Provider = runProvider
	}
}

// env holds everything one process needs to run the pipeline
type env struct {
	Runner    *pipeline.Runner
	Extractor *extractor.Extractor
	closeFns  []func()
}

func newEnv(ctx context.Context, c *config.Config, mode pipeline.Mode) (*env, error) {
	crawler, err := scrapers.NewCrawler(c.Browser, c.Selenium)
	if err != nil {
		return nil, err
	}

	e := &env{}
	runner := &pipeline.Runner{
		Crawler:        crawler,
		Mode:           mode,
		DownloadImages: runDownloadImages,
		HTTPClient:     &http.Client{Timeout: 30 * time.Second},
	}

	if mode != pipeline.ModeLinks {
		sinks, closeSinks := storage.FromConfig(ctx, c)
		runner.Sinks = sinks
		e.closeFns = append(e.closeFns, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			closeSinks(closeCtx)
		})
	}

	if mode == pipeline.ModeFull {
		ex, err := extractor.NewFromConfig(ctx, c)
		if err != nil {
			e.Close()
			return nil, err
		}
		runner.Extractor = ex
		e.Extractor = ex
		e.closeFns = append(e.closeFns, func() {
			if err := ex.Close(); err != nil {
				zap.L().Warn("closing extractor", zap.Error(err))
			}
		})
	}

	e.Runner = runner
	return e, nil
}

// Close releases clients in reverse order of creation
func (e *env) Close() {
	for i := len(e.closeFns) - 1; i >= 0; i-- {
		e.closeFns[i]()
	}
}

// cachedRunner puts the Redis report cache in front of the runner when one is
// configured. An unreachable Redis is logged and the plain runner is used.
func (e *env) cachedRunner(ctx context.Context, c *config.Config) cache.Runner {
	if c.Redis.Addr == "" {
		return e.Runner
	}
	rc, err := cache.NewReportCache(ctx, c.Redis)
	if err != nil {
		zap.L().Warn("report cache disabled", zap.Error(err))
		return e.Runner
	}
	e.closeFns = append(e.closeFns, func() {
		if err := rc.Close(); err != nil {
			zap.L().Warn("closing report cache", zap.Error(err))
		}
	})
	return &cache.CachingRunner{Next: e.Runner, Cache: rc}
}
