package middleware

import (
	"crypto/subtle"
	"net/http"

	"go.uber.org/zap"
)

// APIKey gates admin routes on the X-API-Key header. Full authentication
// lives in an upstream collaborator; this only keeps admin operations
// from being anonymous.
func APIKey(key string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-API-Key")
			if key == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				logger.Warn("Rejected admin request",
					zap.String("path", r.URL.Path),
					zap.String("ip", r.RemoteAddr),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"status":false,"message":"Invalid API key"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
