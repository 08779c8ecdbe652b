package base

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/product-page-extractor/config"
)

func TestHTTPFetcher_Crawl(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/product", http.StatusFound)
	})
	mux.HandleFunc("/product", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pagex-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "en-US,en;q=0.9", r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Kettle</title></head><body><a href="/kettle/2">next</a></body></html>`)) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), config.BrowserConfig{UserAgent: "pagex-test", Locale: "en-US"})
	pd, err := f.Crawl(context.Background(), srv.URL+"/short")
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/product", pd.URL)
	assert.Equal(t, "Kettle", pd.Title)
	assert.Equal(t, []string{srv.URL + "/kettle/2"}, pd.Links)
}

func TestHTTPFetcher_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(srv.Client(), config.BrowserConfig{}).Crawl(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code error: 403")
}
