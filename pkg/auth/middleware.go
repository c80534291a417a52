package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/prepline/prepline-engine/pkg/models"
)

// Middleware extracts the bearer token, resolves the actor and attaches it to
// the request context. Requests without a valid token are rejected.
func Middleware(parser *TokenParser, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			actor, err := parser.ParseActor(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				logger.Debug("Rejected bearer token", zap.Error(err))
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(models.WithActor(r.Context(), actor)))
		})
	}
}
