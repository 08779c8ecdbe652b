package extractor

import (
	"encoding/json"
)

// SchemaType names a JSON value type
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeBoolean SchemaType = "boolean"
)

// Schema is a provider-neutral description of the JSON an extraction call must return.
// Each client translates it into whatever its API understands.
type Schema struct {
	Type        SchemaType
	Description string
	Nullable    bool
	Items       *Schema
	Properties  map[string]*Schema
	Required    []string
}

// JSONSchema renders s as a JSON Schema document
func (s *Schema) JSONSchema() map[string]any {
	out := map[string]any{}
	if s.Nullable {
		out["type"] = []string{string(s.Type), "null"}
	} else {
		out["type"] = string(s.Type)
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.JSONSchema()
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}

// String returns the indented JSON Schema text
func (s *Schema) String() string {
	b, err := json.MarshalIndent(s.JSONSchema(), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// PriceSchema is the fixed target shape for price extraction
var PriceSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"currentPrice": {
			Type:        TypeNumber,
			Nullable:    true,
			Description: "The current/reduced/sale price without currency symbol (e.g., 19.99)",
		},
		"originalPrice": {
			Type:        TypeNumber,
			Nullable:    true,
			Description: "The original/full price without currency symbol (e.g., 29.99), same as currentPrice if no discount",
		},
		"currency": {
			Type:        TypeString,
			Nullable:    true,
			Description: "The currency code (e.g., 'USD', 'EUR', 'GBP')",
		},
		"onSale": {
			Type:        TypeBoolean,
			Description: "Whether the product appears to be on sale/discount",
		},
		"confidence": {
			Type:        TypeNumber,
			Description: "A value between 0 and 1 indicating confidence in the extraction",
		},
	},
	Required: []string{"currentPrice", "originalPrice", "currency", "onSale", "confidence"},
}

// ImageSchema is the fixed target shape for product image extraction
var ImageSchema = &Schema{
	Type: TypeObject,
	Properties: map[string]*Schema{
		"productImages": {
			Type:        TypeArray,
			Items:       &Schema{Type: TypeString},
			Description: "Array of URLs for all product images, including the main product image and additional gallery images",
		},
		"confidence": {
			Type:        TypeNumber,
			Description: "A value between 0 and 1 indicating confidence in the extraction",
		},
	},
	Required: []string{"productImages", "confidence"},
}

const (
	priceInstruction = `You are a helpful assistant that extracts product pricing information from HTML content.
Extract the information according to the provided JSON schema.

If no price is found, return currentPrice and originalPrice as null, currency as null, onSale as false, and confidence as 0.`

	pricePrompt = "Extract the product pricing information as JSON from this HTML content: "

	imageInstruction = `You are a helpful assistant that extracts product image information from HTML content.
Extract the information according to the provided JSON schema.

If no images are found, return an empty array for productImages and confidence as 0.`

	imagePrompt = "Extract the product image information as JSON from this HTML content: "
)
