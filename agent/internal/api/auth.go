package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// APIKey returns middleware that enforces API key authentication.
//
// Behaviour:
//   - If mode != "apikey", all requests are allowed.
//   - If mode == "apikey" and key is empty, every request gets 401.
//   - Otherwise the value of header must equal key.
//   - A missing, empty, or incorrect key gets 401.
func APIKey(mode, header, key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if mode != "apikey" {
			return next
		}
		if key == "" {
			slog.Warn("api: apikey auth enabled but no key is set, rejecting all requests", "header", header)
		}
		want := []byte(key)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(header)
			if len(want) == 0 || got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				jsonErr(w, http.StatusUnauthorized, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
