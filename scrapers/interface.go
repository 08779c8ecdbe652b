package scrapers

import (
	"context"

	"github.com/raushankrgupta/product-page-extractor/models"
)

// PageCrawler renders a page and reports what it shows
type PageCrawler interface {
	// Crawl loads url and returns its title, links and body HTML
	Crawl(ctx context.Context, url string) (*models.PageData, error)
	// Name identifies the driver in logs
	Name() string
}
