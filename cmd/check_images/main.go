// Command check_images verifies image URLs the same way extraction does and
// prints which ones really serve images.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/config"
	"github.com/raushankrgupta/product-page-extractor/extractor"
	"github.com/raushankrgupta/product-page-extractor/models"
)

// recordingVerifier keeps every outcome so rejected URLs can be explained
type recordingVerifier struct {
	extractor.Verifier
	mu       sync.Mutex
	outcomes map[string]models.VerificationOutcome
}

func (r *recordingVerifier) Verify(ctx context.Context, rawURL string) models.VerificationOutcome {
	o := r.Verifier.Verify(ctx, rawURL)
	r.mu.Lock()
	r.outcomes[rawURL] = o
	r.mu.Unlock()
	return o
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: check_images <image-url>...")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	if err := config.InitLogger(cfg.Log); err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer zap.L().Sync() //nolint:errcheck

	rv := &recordingVerifier{
		Verifier: extractor.NewImageVerifier(nil, cfg.Verify),
		outcomes: map[string]models.VerificationOutcome{},
	}

	urls := os.Args[1:]
	candidates := make([]models.ImageCandidate, len(urls))
	for i, u := range urls {
		candidates[i] = models.ImageCandidate{URL: u}
	}

	result := extractor.ValidateImages(context.Background(), rv, candidates, nil)

	for _, u := range urls {
		b, _ := json.Marshal(rv.outcomes[u])
		fmt.Printf("%s\n  %s\n", u, b)
	}
	fmt.Println("--------------------------------------------------")
	b, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(b))
}
