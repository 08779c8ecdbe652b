package extractor

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/raushankrgupta/product-page-extractor/config"
	"github.com/raushankrgupta/product-page-extractor/models"
	"github.com/raushankrgupta/product-page-extractor/utils"
)

// DefaultVerifyTimeout bounds a single HEAD request when none is configured
const DefaultVerifyTimeout = 5 * time.Second

// Verifier classifies a candidate URL. Implementations must always return an
// outcome; failures are reported in the outcome, never as an error.
type Verifier interface {
	Verify(ctx context.Context, rawURL string) models.VerificationOutcome
}

// ImageVerifier checks candidates with a HEAD request and looks at Content-Type
type ImageVerifier struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// NewImageVerifier creates an ImageVerifier. A nil client gets a pooled default.
func NewImageVerifier(client *http.Client, cfg config.VerifyConfig) *ImageVerifier {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}
	return &ImageVerifier{
		client:    client,
		timeout:   timeout,
		userAgent: cfg.UserAgent,
	}
}

// Verify issues one HEAD request for rawURL. It does not retry.
func (v *ImageVerifier) Verify(ctx context.Context, rawURL string) models.VerificationOutcome {
	target, ok := utils.NormalizeURL(rawURL)
	if !ok {
		return models.VerificationOutcome{Error: "Invalid URL format"}
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return verifyFailure(err)
	}
	if v.userAgent != "" {
		req.Header.Set("User-Agent", v.userAgent)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return verifyFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.VerificationOutcome{
			Error: strings.TrimSpace(fmt.Sprintf("HTTP error: %d %s", resp.StatusCode, statusText(resp))),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	isImage := strings.HasPrefix(contentType, "image/")

	outcome := models.VerificationOutcome{
		IsImage:     isImage,
		ContentType: contentType,
	}
	if !isImage {
		outcome.Error = "URL does not point to an image"
	}
	return outcome
}

// statusText is the server's reason phrase, falling back to the standard one
func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func verifyFailure(err error) models.VerificationOutcome {
	return models.VerificationOutcome{Error: "Error verifying image URL: " + err.Error()}
}
