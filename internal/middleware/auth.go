package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/Lixing-Zhang/broffee-bot/internal/config"
)

// APIKeyHeader carries the API key on session routes
const APIKeyHeader = "api_key"

// APIKeyAuth middleware validates the API key header against the configured keys
func APIKeyAuth(cfg config.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)

			if apiKey == "" {
				http.Error(w, "Unauthorized: API key required", http.StatusUnauthorized)
				return
			}

			if !validKey(cfg.APIKeys, apiKey) {
				http.Error(w, "Forbidden: Invalid API key", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// validKey compares in constant time and checks every key
func validKey(keys []string, candidate string) bool {
	valid := 0
	for _, key := range keys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(candidate))
	}
	return valid == 1
}
