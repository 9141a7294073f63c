// Package middleware holds the HTTP middleware for the bridge's API surface.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Auth guards the operator read endpoints with a static API key. The webhook
// ingest route is deliberately not behind it: the alert source can only send
// a JSON body, so it authenticates with the payload secret instead. An empty
// key disables the check, for single-host deployments behind a firewall.
func Auth(apiKey string) func(http.Handler) http.Handler {
	key := []byte(apiKey)
	return func(next http.Handler) http.Handler {
		if apiKey == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if subtle.ConstantTimeCompare([]byte(requestKey(r)), key) != 1 {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Set("WWW-Authenticate", `Bearer realm="tradingbot api"`)
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"missing or invalid api key"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestKey reads the operator key from X-API-Key, or from a Bearer token
// for clients that prefer the Authorization header. Missing headers yield an
// empty key, which the constant-time compare rejects with everything else.
func requestKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return strings.TrimSpace(key)
	}
	if scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}
