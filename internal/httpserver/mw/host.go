package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/cardshelf/internal/logger"
	"github.com/MrSnakeDoc/cardshelf/internal/utils"
)

// EnforceHost only serves requests whose Host header matches one of
// allowedHosts. Patterns like "*.example.com" match any subdomain. Matching
// ignores case and the port. An empty list lets every request through.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	patterns := make([]string, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			patterns = append(patterns, h)
		}
	}
	if len(patterns) == 0 {
		log.Debug("host guard disabled, no hosts configured")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debug("host guard enabled", logger.Strings("hosts", patterns))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := strings.ToLower(utils.ParseHostNoPort(r.Host))
			for _, pattern := range patterns {
				if matchHost(host, pattern) {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Warn("request rejected by host guard", logger.String("host", r.Host))
			reject(w, http.StatusForbidden, "host not allowed")
		})
	}
}

// matchHost reports whether host equals pattern or, for "*.suffix" patterns,
// is a strict subdomain of suffix.
func matchHost(host, pattern string) bool {
	if host == pattern {
		return true
	}
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(suffix, ".") {
		return len(host) > len(suffix) && strings.HasSuffix(host, suffix)
	}
	return false
}
