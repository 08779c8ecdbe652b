package extractor

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/models"
)

// Options are the per-process settings of an Extractor
type Options struct {
	PriceModel    string
	ImageModel    string
	MaxInputChars int
}

// Extractor turns page HTML into price and image data. It never returns an
// error: failures come back as data on the result.
type Extractor struct {
	client   StructuredClient
	verifier Verifier
	opts     Options
}

// New creates an Extractor. A nil verifier gets the default HEAD verifier.
func New(client StructuredClient, verifier Verifier, opts Options) *Extractor {
	if verifier == nil {
		verifier = NewImageVerifier(nil, defaultVerifyConfig())
	}
	if opts.MaxInputChars == 0 {
		opts.MaxInputChars = DefaultMaxInputChars
	}
	return &Extractor{client: client, verifier: verifier, opts: opts}
}

// Close releases the extraction client if it holds resources
func (e *Extractor) Close() error {
	if c, ok := e.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Verifier returns the verifier used for image candidates
func (e *Extractor) Verifier() Verifier {
	return e.verifier
}

// ExtractPrice pulls pricing data out of html
func (e *Extractor) ExtractPrice(ctx context.Context, html string) models.PriceExtraction {
	input := e.prepare(html, "price")

	resp, err := e.client.ExtractJSON(ctx, StructuredRequest{
		Model:       e.opts.PriceModel,
		Instruction: priceInstruction,
		Schema:      PriceSchema,
		Input:       pricePrompt + input,
	})
	if err != nil {
		return failedPrice(err)
	}
	resp.Usage.Log(resp.Model, "price")

	var out models.PriceExtraction
	if err := json.Unmarshal([]byte(resp.Text), &out); err != nil {
		return failedPrice(eris.Wrap(err, "price: parse response"))
	}
	// The error field is ours; a model echoing one back does not count.
	out.Error = ""

	zap.L().Info("price extraction completed", zap.Float64("confidence", out.Confidence))
	return out
}

// ExtractImages pulls product image URLs out of html and keeps the ones that
// really serve images.
func (e *Extractor) ExtractImages(ctx context.Context, html string) models.ImageExtraction {
	input := e.prepare(html, "images")

	resp, err := e.client.ExtractJSON(ctx, StructuredRequest{
		Model:       e.opts.ImageModel,
		Instruction: imageInstruction,
		Schema:      ImageSchema,
		Input:       imagePrompt + input,
	})
	if err != nil {
		return failedImages(err)
	}
	resp.Usage.Log(resp.Model, "images")

	var raw struct {
		ProductImages json.RawMessage `json:"productImages"`
		Confidence    *float64        `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(resp.Text), &raw); err != nil {
		return failedImages(eris.Wrap(err, "images: parse response"))
	}

	zap.L().Info("image extraction completed")
	return ValidateImages(ctx, e.verifier, parseCandidates(raw.ProductImages), raw.Confidence)
}

func (e *Extractor) prepare(html, phase string) string {
	input := Normalize(html, e.opts.MaxInputChars)
	zap.L().Debug("prepared extraction input",
		zap.String("phase", phase),
		zap.Int("original_length", len(html)),
		zap.Int("cleaned_length", len(input)),
	)
	return input
}

// parseCandidates reads the productImages value. Anything but an array yields
// no candidates; non-string items become empty URLs that fail verification.
func parseCandidates(raw json.RawMessage) []models.ImageCandidate {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	out := make([]models.ImageCandidate, 0, len(items))
	for _, item := range items {
		var u string
		if err := json.Unmarshal(item, &u); err != nil {
			u = ""
		}
		out = append(out, models.ImageCandidate{URL: u})
	}
	return out
}

func failedPrice(err error) models.PriceExtraction {
	zap.L().Error("price extraction failed", zap.Error(err))
	return models.PriceExtraction{Error: err.Error()}
}

func failedImages(err error) models.ImageExtraction {
	zap.L().Error("image extraction failed", zap.Error(err))
	return models.ImageExtraction{
		ProductImages: []models.VerifiedImage{},
		Error:         err.Error(),
	}
}
