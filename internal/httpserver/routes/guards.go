package routes

import (
	"time"

	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/cardshelf/internal/httpserver/mw"
)

const (
	rateMaxClients    = 10_000
	rateSweepInterval = time.Minute
	rateIdleTTL       = 10 * time.Minute
)

func host(d deps.Deps) Middleware {
	return mw.EnforceHost(d.AllowedHosts, d.Logger)
}

func cidr(d deps.Deps) Middleware {
	return mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)
}

// rateLimit builds a fresh limiter, so each public write route gets its own
// budget per client.
func rateLimit(d deps.Deps) Middleware {
	return mw.RateLimit(mw.RateLimitConfig{
		Burst:         d.RateBurst,
		PerMinute:     d.RatePerMin,
		MaxClients:    rateMaxClients,
		SweepInterval: rateSweepInterval,
		IdleTTL:       rateIdleTTL,
		TrustProxy:    d.TrustProxy,
	})
}
