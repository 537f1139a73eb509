package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/cardshelf/internal/logger"
	"github.com/MrSnakeDoc/cardshelf/internal/utils"
)

// AllowOnlyCIDRS restricts a route to callers whose address matches one of
// the IPs or CIDRs in allowed. An empty list lets every caller through.
// trustProxy resolves the caller from proxy headers (cloudflared, nginx).
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		log.Debug("cidr guard disabled, no rules configured")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debug("cidr guard enabled",
		logger.Int("rules", m.Len()),
		logger.Bool("trust_proxy", trustProxy))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Warn("request rejected by cidr guard",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path))
				reject(w, http.StatusForbidden, "address not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
