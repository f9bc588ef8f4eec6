package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/JonMunkholm/csvedit/internal/config"
	"github.com/JonMunkholm/csvedit/internal/logging"
)

// HostToken returns middleware that validates the host's token. Browsers
// cannot set headers on a websocket handshake, so the token is read from the
// X-Host-Token header or, failing that, the token query parameter.
// If RequireHostToken is false, all requests pass through.
func HostToken(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireHostToken {
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get("X-Host-Token")
			if token == "" {
				token = r.URL.Query().Get("token")
			}

			if token == "" {
				logging.FromContext(r.Context()).Warn("auth: missing host token",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, `{"error":"missing host token","code":"AUTH_MISSING_TOKEN"}`, http.StatusUnauthorized)
				return
			}

			if !isValidToken(token, cfg.HostTokens) {
				logging.FromContext(r.Context()).Warn("auth: invalid host token",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, `{"error":"invalid host token","code":"AUTH_INVALID_TOKEN"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isValidToken compares token against every configured token in constant
// time.
func isValidToken(token string, valid []string) bool {
	ok := 0
	for _, v := range valid {
		ok |= subtle.ConstantTimeCompare([]byte(token), []byte(v))
	}
	return ok == 1
}
