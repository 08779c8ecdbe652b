package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/extractor"
	"github.com/raushankrgupta/product-page-extractor/models"
	"github.com/raushankrgupta/product-page-extractor/pipeline"
	"github.com/raushankrgupta/product-page-extractor/utils"
)

// maxVerifyURLs bounds a single /verify-images request
const maxVerifyURLs = 100

// PageRunner runs the crawl and extraction for one URL
type PageRunner interface {
	Run(ctx context.Context, url string) (*models.PageReport, error)
}

// Handler serves the extraction endpoints
type Handler struct {
	runner     PageRunner
	verifier   extractor.Verifier
	authSecret string
}

// NewHandler creates a Handler. A non-empty authSecret protects the
// extraction endpoints with bearer tokens.
func NewHandler(runner PageRunner, verifier extractor.Verifier, authSecret string) *Handler {
	return &Handler{runner: runner, verifier: verifier, authSecret: authSecret}
}

// Routes returns the API router. CORS runs before authentication so
// preflight requests never need a token.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(utils.LatencyMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler { return AuthMiddleware(h.authSecret, next) })
		// Method checks live in the handlers so clients get a JSON error.
		r.HandleFunc("/extract", h.Extract)
		r.HandleFunc("/verify-images", h.VerifyImages)
	})

	return r
}

// Extract handles GET /extract?url=... and POST /extract {"url": "..."}
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		utils.RespondError(w, http.StatusMethodNotAllowed, "Use GET or POST")
		return
	}

	// Support both query params and JSON body
	pageURL := r.URL.Query().Get("url")
	if pageURL == "" && r.Body != nil {
		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			pageURL = req.URL
		}
	}

	if pageURL == "" {
		utils.RespondError(w, http.StatusBadRequest, "Please provide a 'url' query parameter or JSON body")
		return
	}
	if !utils.IsValidURL(pageURL) {
		utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid URL: %s. Please provide a valid URL starting with http:// or https://", pageURL))
		return
	}

	subject, _ := SubjectFromContext(r.Context())
	zap.L().Info("extract request", zap.String("url", pageURL), zap.String("subject", subject))
	report, err := h.runner.Run(r.Context(), pageURL)
	if err != nil {
		if eris.Is(err, pipeline.ErrInvalidURL) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		zap.L().Error("extraction failed", zap.String("url", pageURL), zap.Error(err))
		utils.RespondError(w, http.StatusBadGateway, fmt.Sprintf("Extraction failed: %v", err))
		return
	}

	utils.RespondJSON(w, http.StatusOK, report)
}

// VerifyImages handles POST /verify-images {"urls": [...], "confidence": 0.8}
// and answers with the candidates that really serve images.
func (h *Handler) VerifyImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.RespondError(w, http.StatusMethodNotAllowed, "Use POST")
		return
	}

	var req struct {
		URLs       []string `json:"urls"`
		Confidence *float64 `json:"confidence"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Body must be JSON like {\"urls\": [...]}")
		return
	}
	if len(req.URLs) > maxVerifyURLs {
		utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf("At most %d urls per request", maxVerifyURLs))
		return
	}

	candidates := make([]models.ImageCandidate, len(req.URLs))
	for i, u := range req.URLs {
		candidates[i] = models.ImageCandidate{URL: u}
	}

	utils.RespondJSON(w, http.StatusOK, extractor.ValidateImages(r.Context(), h.verifier, candidates, req.Confidence))
}
