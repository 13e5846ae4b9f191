// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Favicon resolution sources.
const (
	SourceCache    = "cache"
	SourceDataURL  = "data_url"
	SourceNetwork  = "network"
	SourceFallback = "fallback"
	SourceNone     = "none"
)

var (
	// ImportsTotal counts finished imports by result (success, failure).
	ImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adlinkton_imports_total",
		Help: "Bookmark imports by result.",
	}, []string{"result"})

	// ImportEntriesTotal counts imported entries by outcome (folder, link, skipped).
	ImportEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adlinkton_import_entries_total",
		Help: "Imported bookmark entries by outcome.",
	}, []string{"outcome"})

	// FaviconResolutionsTotal counts favicon resolutions by source.
	FaviconResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adlinkton_favicon_resolutions_total",
		Help: "Favicon resolutions by source.",
	}, []string{"source"})

	// FaviconFetchDuration observes single candidate fetches.
	FaviconFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "adlinkton_favicon_fetch_duration_seconds",
		Help:    "Duration of favicon candidate fetches.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
	})

	// FaviconFilesRemoved counts cache files removed by the garbage collector.
	FaviconFilesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adlinkton_favicon_files_removed_total",
		Help: "Orphan favicon files removed from the cache directory.",
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
