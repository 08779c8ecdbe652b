package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/product-page-extractor/models"
	"github.com/raushankrgupta/product-page-extractor/utils"
)

func TestAuthMiddleware_Disabled(t *testing.T) {
	called := false
	h := AuthMiddleware("", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestAuthMiddleware(t *testing.T) {
	var gotSubject string
	h := AuthMiddleware("s3cret", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = SubjectFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := utils.GenerateToken("s3cret", "dashboard", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dashboard", gotSubject)
}

func TestRoutes_AuthProtectsExtractButNotHealth(t *testing.T) {
	mr := new(MockRunner)
	mr.On("Run", mock.Anything, "https://shop.example/").Return(&models.PageReport{URL: "https://shop.example/"}, nil)
	h := NewHandler(mr, tableVerifier{}, "s3cret")

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/extract?url=https://shop.example/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	tok, err := utils.GenerateToken("s3cret", "ci", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/extract?url=https://shop.example/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = serve(h, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	mr.AssertExpectations(t)
}
