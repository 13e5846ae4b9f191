package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/adlinkton/internal/httpserver/deps"
	"github.com/MrSnakeDoc/adlinkton/internal/httpserver/respond"
	"github.com/MrSnakeDoc/adlinkton/internal/logger"
)

// RefetchFavicons queues a favicon refetch for links without an icon.
func RefetchFavicons(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.RefetchTrigger <- struct{}{}:
			d.Logger.Info("manual favicon refetch triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			respond.JSON(w, http.StatusAccepted, messageResponse{Message: "Favicon refetch triggered"})
		default:
			d.Logger.Warn("favicon refetch already queued",
				logger.String("remote_ip", r.RemoteAddr))
			respond.Error(w, http.StatusTooManyRequests, "Favicon refetch already queued, please wait")
		}
	}
}

// Favicons serves the favicon cache directory. Listings are not exposed.
func Favicons(d deps.Deps) http.Handler {
	prefix := "/" + strings.Trim(d.FaviconPublicPrefix, "/")
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(d.FaviconDir)))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, prefix+"/")
		if name == "" || strings.Contains(name, "/") || strings.HasPrefix(name, ".") {
			http.NotFound(w, r)
			return
		}
		if strings.HasSuffix(name, ".svg") {
			// no script in served SVGs
			w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
		}
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}
