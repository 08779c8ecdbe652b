package extractor

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/raushankrgupta/product-page-extractor/metrics"
	"github.com/raushankrgupta/product-page-extractor/models"
)

// ValidateImages verifies every candidate concurrently and keeps, in input
// order, only those that turned out to be images with an image/ content type. confidence is passed through
// untouched; nil becomes 0.
func ValidateImages(ctx context.Context, v Verifier, candidates []models.ImageCandidate, confidence *float64) models.ImageExtraction {
	result := models.ImageExtraction{ProductImages: []models.VerifiedImage{}}
	if confidence != nil {
		result.Confidence = *confidence
	}
	if len(candidates) == 0 {
		return result
	}

	// Each goroutine owns outcomes[i]; completion order does not matter.
	outcomes := make([]models.VerificationOutcome, len(candidates))
	var g errgroup.Group
	for i, c := range candidates {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = models.VerificationOutcome{Error: fmt.Sprintf("Error verifying image URL: %v", r)}
				}
			}()
			outcomes[i] = v.Verify(ctx, c.URL)
			return nil
		})
	}
	_ = g.Wait()

	for i, c := range candidates {
		o := outcomes[i]
		if !o.IsImage || !strings.HasPrefix(o.ContentType, "image/") {
			metrics.ImageVerifications.WithLabelValues(metrics.ResultRejected).Inc()
			zap.L().Debug("image candidate rejected",
				zap.String("url", c.URL),
				zap.String("reason", o.Error),
			)
			continue
		}
		metrics.ImageVerifications.WithLabelValues(metrics.ResultVerified).Inc()
		result.ProductImages = append(result.ProductImages, models.VerifiedImage{
			URL:         c.URL,
			ContentType: o.ContentType,
		})
	}

	zap.L().Info("image candidates verified",
		zap.Int("candidates", len(candidates)),
		zap.Int("verified", len(result.ProductImages)),
	)
	return result
}
