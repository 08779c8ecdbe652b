package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/raushankrgupta/product-page-extractor/models"
)

const (
	// maxConcurrentDownloads keeps us from hammering the image host
	maxConcurrentDownloads = 5
	maxImageBytes          = 20 << 20
	downloadUserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// DownloadImages fetches the verified images as artifacts under dir. A failed
// download is logged and skipped; the rest keep their input order.
func DownloadImages(ctx context.Context, client *http.Client, images []models.VerifiedImage, dir string) []Artifact {
	if client == nil {
		client = http.DefaultClient
	}

	results := make([]*Artifact, len(images))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDownloads)

	for i, img := range images {
		g.Go(func() error {
			data, err := downloadFile(ctx, client, img.URL)
			if err != nil {
				zap.L().Warn("image download failed", zap.String("url", img.URL), zap.Error(err))
				return nil
			}
			results[i] = &Artifact{
				Name:        path.Join(dir, imageFileName(i, img)),
				ContentType: img.ContentType,
				Data:        data,
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Artifact, 0, len(images))
	for _, a := range results {
		if a != nil {
			out = append(out, *a)
		}
	}
	zap.L().Info("images downloaded", zap.Int("requested", len(images)), zap.Int("saved", len(out)))
	return out
}

func downloadFile(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "images: build request")
	}
	req.Header.Set("User-Agent", downloadUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "images: fetch")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("images: bad status: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, eris.Wrap(err, "images: read body")
	}
	if len(data) > maxImageBytes {
		return nil, eris.Errorf("images: larger than %d bytes", maxImageBytes)
	}
	return data, nil
}

// imageFileName is "<index>_<base name>", with the index keeping names unique
func imageFileName(i int, img models.VerifiedImage) string {
	name := ""
	if u, err := url.Parse(img.URL); err == nil {
		name = path.Base(u.Path)
	}
	if name == "" || name == "." || name == "/" || len(name) > 200 {
		name = "image" + extensionFor(img.ContentType)
	} else if path.Ext(name) == "" {
		name += extensionFor(img.ContentType)
	}
	return fmt.Sprintf("%d_%s", i, name)
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".jpg"
	}
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/svg+xml":
		return ".svg"
	}
	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		return exts[0]
	}
	return "." + strings.TrimPrefix(mediaType, "image/")
}
