package base

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/config"
	"github.com/raushankrgupta/product-page-extractor/models"
)

// maxPageBytes caps how much of a response body HTTPFetcher reads
const maxPageBytes = 32 << 20

// HTTPFetcher fetches the server-rendered HTML without running any script.
// It is much faster than a browser but misses client-rendered content.
type HTTPFetcher struct {
	Client *http.Client
	cfg    config.BrowserConfig
}

// NewHTTPFetcher creates an HTTPFetcher. A nil client gets one tuned for
// scraping.
func NewHTTPFetcher(client *http.Client, cfg config.BrowserConfig) *HTTPFetcher {
	if client == nil {
		timeout := cfg.NavTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ForceAttemptHTTP2:     false,
				TLSNextProto:          make(map[string]func(string, *tls.Conn) http.RoundTripper),
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		}
	}
	return &HTTPFetcher{Client: client, cfg: cfg}
}

func (f *HTTPFetcher) Name() string { return "http" }

func (f *HTTPFetcher) Crawl(ctx context.Context, pageURL string) (*models.PageData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "http: build request")
	}
	req.Header = browserHeaders(f.cfg.Locale)
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}

	zap.L().Info("fetching", zap.String("url", pageURL))
	res, err := f.Client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "http: fetch page")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, eris.Errorf("http: status code error: %d %s", res.StatusCode, res.Status)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxPageBytes))
	if err != nil {
		return nil, eris.Wrap(err, "http: read body")
	}

	return ExtractPageData(res.Request.URL.String(), "", string(body))
}
