package routes

import (
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/adlinkton/internal/httpserver/deps"
	"github.com/MrSnakeDoc/adlinkton/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/adlinkton/internal/httpserver/mw"
)

func init() { Register(registerFavicons, middleware.Timeout(10*time.Second)) }

func registerFavicons(r chi.Router, d deps.Deps) {
	prefix := "/" + strings.Trim(d.FaviconPublicPrefix, "/")
	r.Get(prefix+"/*", handlers.Favicons(d).ServeHTTP)

	r.With(
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.Auth(d.Sessions, d.SessionCache, d.SessionCacheTTL, d.TimeNow, d.Logger),
	).Post("/api/favicons/refetch", handlers.RefetchFavicons(d))
}
