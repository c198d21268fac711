package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"lyricsync-go/logcolors"

	log "github.com/sirupsen/logrus"
)

// RequireToken guards destructive endpoints. The Authorization header must
// equal token, with or without a "Bearer " prefix. An empty token disables
// the check.
func RequireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if provided == "" {
				log.Warnf("%s Missing token from %s for %s", logcolors.LogAuth, r.RemoteAddr, r.URL.Path)
				writeUnauthorized(w, "Authorization required")
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				log.Warnf("%s Invalid token from %s for %s", logcolors.LogAuth, r.RemoteAddr, r.URL.Path)
				writeUnauthorized(w, "Invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
