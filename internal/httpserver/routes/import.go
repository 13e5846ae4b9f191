package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/adlinkton/internal/httpserver/deps"
	"github.com/MrSnakeDoc/adlinkton/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/adlinkton/internal/httpserver/mw"
)

func init() { Register(registerImport) }

// Imports run longer than any global timeout; the handler bounds them with ImportTimeout.
func registerImport(r chi.Router, d deps.Deps) {
	r.With(
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.Auth(d.Sessions, d.SessionCache, d.SessionCacheTTL, d.TimeNow, d.Logger),
		mw.RateLimit(mw.RateLimitConfig{
			Burst:        d.RateLimitBurst,
			RefillPerMin: d.RateLimitPerMin,
			MaxEntries:   10000,
			TrustProxy:   d.TrustProxy,
		}),
	).Post("/api/import/{type}", handlers.Import(d))
}
