package pipeline

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/metrics"
	"github.com/raushankrgupta/product-page-extractor/models"
	"github.com/raushankrgupta/product-page-extractor/scrapers"
	"github.com/raushankrgupta/product-page-extractor/storage"
	"github.com/raushankrgupta/product-page-extractor/utils"
)

// Mode selects how much work a run does after crawling
type Mode string

const (
	// ModeLinks crawls and reports title and links only
	ModeLinks Mode = "links"
	// ModeHTML also saves the page body
	ModeHTML Mode = "html"
	// ModeFull also extracts price and image data and saves the JSON report
	ModeFull Mode = "full"
)

// ErrInvalidURL is returned for anything but an absolute http(s) URL
var ErrInvalidURL = eris.New("pipeline: invalid url")

// ParseMode maps a flag value to a Mode
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeLinks, ModeHTML, ModeFull:
		return m, nil
	case "":
		return ModeFull, nil
	default:
		return "", eris.Errorf("pipeline: unknown mode %q (want links, html or full)", s)
	}
}

// PageExtractor pulls structured data out of page HTML. Failures are carried
// in the returned values.
type PageExtractor interface {
	ExtractPrice(ctx context.Context, html string) models.PriceExtraction
	ExtractImages(ctx context.Context, html string) models.ImageExtraction
}

// Runner crawls one page at a time and hands the results to its sinks
type Runner struct {
	Crawler   scrapers.PageCrawler
	Extractor PageExtractor // Only needed in ModeFull
	Sinks     []storage.Sink
	Mode      Mode

	// DownloadImages saves verified product images next to the report
	DownloadImages bool
	HTTPClient     *http.Client

	// Now stamps artifact names; defaults to time.Now
	Now func() time.Time
}

// Run processes pageURL. Only an invalid URL or a failed crawl is an error;
// extraction and sink failures are logged and reflected in the report.
func (r *Runner) Run(ctx context.Context, pageURL string) (*models.PageReport, error) {
	normalized, ok := utils.NormalizeURL(pageURL)
	if !ok {
		return nil, eris.Wrapf(ErrInvalidURL, "%q", pageURL)
	}
	pageURL = normalized
	mode := r.Mode
	if mode == "" {
		mode = ModeFull
	}

	driver := r.Crawler.Name()
	zap.L().Info("starting crawl", zap.String("url", pageURL), zap.String("driver", driver), zap.String("mode", string(mode)))
	crawlStart := time.Now()
	page, err := r.Crawler.Crawl(ctx, pageURL)
	metrics.CrawlDuration.WithLabelValues(driver).Observe(time.Since(crawlStart).Seconds())
	if err != nil {
		metrics.CrawlsTotal.WithLabelValues(driver, metrics.StatusFailure).Inc()
		return nil, eris.Wrap(err, "pipeline: crawl")
	}
	metrics.CrawlsTotal.WithLabelValues(driver, metrics.StatusSuccess).Inc()
	zap.L().Info("page crawled",
		zap.String("title", page.Title),
		zap.Int("links", len(page.Links)),
		zap.String("final_url", page.URL),
	)

	report := &models.PageReport{
		URL:   pageURL,
		Title: page.Title,
		Links: page.Links,
	}
	if report.Links == nil {
		report.Links = []string{}
	}
	if mode == ModeLinks {
		return report, nil
	}

	names := storage.ArtifactNames(pageURL, r.now())
	artifacts := []storage.Artifact{storage.HTMLArtifact(names.HTML, page.BodyContent)}

	if mode == ModeFull {
		if r.Extractor == nil {
			return nil, eris.New("pipeline: full mode needs an extractor")
		}

		price := timed("price extraction", func() models.PriceExtraction {
			return r.Extractor.ExtractPrice(ctx, page.BodyContent)
		})
		zap.L().Info("extracted price data", zap.Any("price", price))

		images := timed("image extraction", func() models.ImageExtraction {
			return r.Extractor.ExtractImages(ctx, page.BodyContent)
		})
		zap.L().Info("extracted image data", zap.Any("images", images))

		report.PriceData = &price
		report.ImageData = &images

		if r.DownloadImages && len(images.ProductImages) > 0 {
			artifacts = append(artifacts, storage.DownloadImages(ctx, r.HTTPClient, images.ProductImages, names.ImagesDir)...)
		}

		reportArtifact, err := storage.ReportArtifact(names.Report, report)
		if err != nil {
			zap.L().Error("report not saved", zap.Error(err))
		} else {
			artifacts = append(artifacts, reportArtifact)
		}
	}

	r.store(ctx, report, artifacts)
	return report, nil
}

func (r *Runner) store(ctx context.Context, report *models.PageReport, artifacts []storage.Artifact) {
	for _, s := range r.Sinks {
		if err := s.Put(ctx, report, artifacts); err != nil {
			metrics.SinkFailures.WithLabelValues(s.Name()).Inc()
			zap.L().Error("sink failed", zap.String("sink", s.Name()), zap.Error(err))
		}
	}
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// timed runs fn and logs how long it took
func timed[T any](label string, fn func() T) T {
	start := time.Now()
	defer func() {
		seconds := time.Since(start).Seconds()
		metrics.ExtractionDuration.WithLabelValues(label).Observe(seconds)
		zap.L().Info("execution time",
			zap.String("label", label),
			zap.Float64("seconds", seconds),
		)
	}()
	return fn()
}
