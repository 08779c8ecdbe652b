package cache

import (
	"context"

	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/models"
)

// Runner produces a report for one URL
type Runner interface {
	Run(ctx context.Context, url string) (*models.PageReport, error)
}

// CachingRunner answers from the cache when it can and fills it after a
// successful run. Failed runs are never cached, and neither are reports whose
// price or image extraction carries an error.
type CachingRunner struct {
	Next  Runner
	Cache *ReportCache
}

func (r *CachingRunner) Run(ctx context.Context, pageURL string) (*models.PageReport, error) {
	if report, ok := r.Cache.Get(ctx, pageURL); ok {
		zap.L().Info("serving cached report", zap.String("url", pageURL))
		return report, nil
	}

	report, err := r.Next.Run(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if degraded(report) {
		zap.L().Info("report not cached, extraction failed", zap.String("url", pageURL))
		return report, nil
	}
	if err := r.Cache.Set(ctx, pageURL, report); err != nil {
		zap.L().Warn("report not cached", zap.String("url", pageURL), zap.Error(err))
	}
	return report, nil
}

func degraded(report *models.PageReport) bool {
	if report.PriceData != nil && report.PriceData.Error != "" {
		return true
	}
	return report.ImageData != nil && report.ImageData.Error != ""
}
