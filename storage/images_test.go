package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/product-page-extractor/models"
)

func TestDownloadImages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/a.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes")) //nolint:errcheck
	})
	mux.HandleFunc("/gone.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/render", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes")) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	got := DownloadImages(context.Background(), srv.Client(), []models.VerifiedImage{
		{URL: srv.URL + "/a.png", ContentType: "image/png"},
		{URL: srv.URL + "/gone.jpg", ContentType: "image/jpeg"},
		{URL: srv.URL + "/render?w=800", ContentType: "image/jpeg"},
	}, "shop-images")

	require.Len(t, got, 2)
	assert.Equal(t, "shop-images/0_a.png", got[0].Name)
	assert.Equal(t, "image/png", got[0].ContentType)
	assert.Equal(t, []byte("png-bytes"), got[0].Data)
	assert.Equal(t, "shop-images/2_render.jpg", got[1].Name)
}

func TestDownloadImages_BoundedConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		w.Write([]byte("x")) //nolint:errcheck
	}))
	defer srv.Close()

	images := make([]models.VerifiedImage, 12)
	for i := range images {
		images[i] = models.VerifiedImage{URL: srv.URL + "/i.png", ContentType: "image/png"}
	}

	got := DownloadImages(context.Background(), srv.Client(), images, "d")
	assert.Len(t, got, 12)
	assert.LessOrEqual(t, peak.Load(), int32(maxConcurrentDownloads))
}

func TestDownloadImages_SkipsOversized(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/huge.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, maxImageBytes+1)) //nolint:errcheck
	})
	mux.HandleFunc("/limit.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, maxImageBytes)) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	got := DownloadImages(context.Background(), srv.Client(), []models.VerifiedImage{
		{URL: srv.URL + "/huge.jpg", ContentType: "image/jpeg"},
		{URL: srv.URL + "/limit.jpg", ContentType: "image/jpeg"},
	}, "d")

	require.Len(t, got, 1)
	assert.Equal(t, "d/1_limit.jpg", got[0].Name)
	assert.Len(t, got[0].Data, maxImageBytes)
}

func TestImageFileName(t *testing.T) {
	assert.Equal(t, "3_shoe.webp", imageFileName(3, models.VerifiedImage{URL: "https://cdn.example/x/shoe.webp?v=2"}))
	assert.Equal(t, "0_image.png", imageFileName(0, models.VerifiedImage{URL: "https://cdn.example/", ContentType: "image/png"}))
	assert.Equal(t, "1_photo.jpg", imageFileName(1, models.VerifiedImage{URL: "https://cdn.example/photo", ContentType: "image/jpeg; charset=binary"}))
	assert.Equal(t, "2_image.jpg", imageFileName(2, models.VerifiedImage{URL: "https://cdn.example/"}))
}
