package models

// PriceExtraction is the pricing data pulled from a product page.
// All price fields nil and Confidence 0 means no price was found or the
// extraction failed; Error tells the two apart.
type PriceExtraction struct {
	CurrentPrice  *float64 `json:"currentPrice" bson:"current_price"`   // Sale / selling price
	OriginalPrice *float64 `json:"originalPrice" bson:"original_price"` // List price, equal to CurrentPrice when not discounted
	Currency      *string  `json:"currency" bson:"currency"`
	OnSale        bool     `json:"onSale" bson:"on_sale"`
	Confidence    float64  `json:"confidence" bson:"confidence"`
	Error         string   `json:"error,omitempty" bson:"error,omitempty"`
}

// ImageCandidate is an unverified image URL as reported by the extraction service
type ImageCandidate struct {
	URL string `json:"url"`
}

// VerifiedImage is a candidate whose URL was confirmed to serve an image
type VerifiedImage struct {
	URL         string `json:"url" bson:"url"`
	ContentType string `json:"contentType" bson:"content_type"`
}

// ImageExtraction holds the product images that survived verification.
// Every entry in ProductImages has a ContentType starting with "image/".
type ImageExtraction struct {
	ProductImages []VerifiedImage `json:"productImages" bson:"product_images"`
	Confidence    float64         `json:"confidence" bson:"confidence"`
	Error         string          `json:"error,omitempty" bson:"error,omitempty"`
}

// VerificationOutcome classifies a single candidate URL
type VerificationOutcome struct {
	IsImage     bool   `json:"isImage"`
	ContentType string `json:"contentType,omitempty"` // Empty when the header was absent or never read
	Error       string `json:"error,omitempty"`
}
