package models

// PageData is what a crawler hands back for one page
type PageData struct {
	URL         string   `json:"url"` // Final URL after redirects
	Title       string   `json:"title"`
	Links       []string `json:"links"`
	BodyContent string   `json:"-"` // Inner HTML of <body>
}

// PageReport is the combined document written next to the saved HTML
type PageReport struct {
	URL       string           `json:"url" bson:"url"`
	Title     string           `json:"title" bson:"title"`
	PriceData *PriceExtraction `json:"priceData,omitempty" bson:"price_data,omitempty"`
	ImageData *ImageExtraction `json:"imageData,omitempty" bson:"image_data,omitempty"`
	Links     []string         `json:"links" bson:"links"`
}
