package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/raushankrgupta/product-page-extractor/utils"
)

type contextKey string

const subjectKey contextKey = "subject"

// AuthMiddleware requires a valid "Authorization: Bearer <jwt>" header. An
// empty secret turns authentication off.
func AuthMiddleware(secret string, next http.Handler) http.Handler {
	if secret == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			utils.RespondError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}
		subject, err := utils.ValidateToken(secret, strings.TrimSpace(raw))
		if err != nil {
			utils.RespondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey, subject)))
	})
}

// SubjectFromContext returns the token subject of an authenticated request
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey).(string)
	return s, ok
}
