package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPage = `<!DOCTYPE html>
<html>
<head><title> Fallback Title </title></head>
<body>
  <h1>Trail Runner</h1>
  <a href="https://shop.example/cart">Cart</a>
  <a href="/products/2">Related</a>
  <a href="reviews?page=2">Reviews</a>
  <a href="#details">Details</a>
  <a href="mailto:help@shop.example">Mail</a>
  <a href="javascript:void(0)">Noop</a>
  <a>No href</a>
  <a href="https://shop.example/cart">Cart again</a>
  <a href="//cdn.example/guide.pdf">Guide</a>
</body>
</html>`

func TestExtractPageData(t *testing.T) {
	pd, err := ExtractPageData("https://shop.example/products/1", "Trail Runner | Shop", productPage)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example/products/1", pd.URL)
	assert.Equal(t, "Trail Runner | Shop", pd.Title)
	assert.Equal(t, []string{
		"https://shop.example/cart",
		"https://shop.example/products/2",
		"https://shop.example/products/reviews?page=2",
		"https://shop.example/products/1#details",
		"https://shop.example/cart",
		"https://cdn.example/guide.pdf",
	}, pd.Links)
	assert.Contains(t, pd.BodyContent, "<h1>Trail Runner</h1>")
	assert.NotContains(t, pd.BodyContent, "<body")
}

func TestExtractPageData_TitleFallback(t *testing.T) {
	pd, err := ExtractPageData("https://shop.example/", "", productPage)
	require.NoError(t, err)
	assert.Equal(t, "Fallback Title", pd.Title)
}

func TestExtractPageData_BaseHref(t *testing.T) {
	html := `<html><head><base href="https://static.example/en/"></head>
<body><a href="item/9">Item</a><a href="/root">Root</a></body></html>`

	pd, err := ExtractPageData("https://shop.example/a/b", "t", html)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://static.example/en/item/9", "https://static.example/root"}, pd.Links)
}

func TestExtractPageData_NoLinks(t *testing.T) {
	pd, err := ExtractPageData("http://plain.example", "Plain", "<p>hello</p>")
	require.NoError(t, err)
	assert.NotNil(t, pd.Links)
	assert.Empty(t, pd.Links)
	assert.Equal(t, "<p>hello</p>", pd.BodyContent)
}

func TestAcceptLanguage(t *testing.T) {
	assert.Equal(t, "en-US,en;q=0.9", acceptLanguage("en-US"))
	assert.Equal(t, "fr", acceptLanguage("fr"))
	assert.Equal(t, "", acceptLanguage(""))
}

func TestLooksBlocked(t *testing.T) {
	assert.True(t, looksBlocked("Amazon.com - Robot Check"))
	assert.True(t, looksBlocked("Access Denied"))
	assert.False(t, looksBlocked("Trail Runner"))
}
