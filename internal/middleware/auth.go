package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"vellum/internal/auth"
	"vellum/internal/domain/models"
	"vellum/internal/httputil"
)

// Auth verifies the bearer token on every request and stores the resolved
// tenant context for handlers. Requests without a valid token, or with a
// token missing tenant identity, are rejected before reaching any handler.
func Auth(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Health probes carry no credentials
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "authorization header must be a bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			r = httputil.WithTenantContext(r, models.TenantContextFromClaims(claims))
			next.ServeHTTP(w, r)
		})
	}
}
