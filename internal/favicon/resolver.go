// Package favicon resolves, validates and caches site icons on disk.
//
// Files are keyed by md5(domain), so one icon serves every link of a domain
// for every user. When no icon can be fetched a letter SVG is generated.
package favicon

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"

	"github.com/MrSnakeDoc/adlinkton/internal/domain"
	"github.com/MrSnakeDoc/adlinkton/internal/logger"
	"github.com/MrSnakeDoc/adlinkton/internal/metrics"
)

// candidatePaths are tried in order on https://{domain}.
var candidatePaths = []string{
	"/favicon.ico",
	"/favicon.png",
	"/apple-touch-icon.png",
}

const (
	DefaultTimeout      = 3 * time.Second
	DefaultMaxBytes     = 100 * 1024
	DefaultMaxRedirects = 3
	DefaultUserAgent    = "Mozilla/5.0 (Adlinkton Favicon Fetcher)"
)

// Options configures a Resolver. Zero values fall back to the defaults above.
type Options struct {
	Dir          string        // cache directory
	PublicPrefix string        // URL prefix the directory is served under (ex: /favicons)
	Timeout      time.Duration // per-candidate timeout when the caller passes none
	MaxBytes     int64         // largest accepted icon
	MaxRedirects int           // redirects followed per candidate
	UserAgent    string
	AllowPrivate bool // allow fetching from loopback and private ranges

	// BreakerFailures consecutive network failures stop all fetching for BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration

	// Origin returns the scheme://host candidates are fetched from. Defaults to https://{domain}.
	Origin func(domain string) string
	// Client replaces the built-in HTTP client.
	Client *http.Client
}

func (o Options) withDefaults() Options {
	if o.PublicPrefix == "" {
		o.PublicPrefix = "/favicons"
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	if o.MaxRedirects <= 0 {
		o.MaxRedirects = DefaultMaxRedirects
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.BreakerFailures == 0 {
		o.BreakerFailures = 10
	}
	if o.BreakerCooldown <= 0 {
		o.BreakerCooldown = 30 * time.Second
	}
	if o.Origin == nil {
		o.Origin = func(d string) string { return "https://" + d }
	}
	return o
}

// Resolver turns page URLs and inline data images into cached favicon paths.
type Resolver struct {
	opts    Options
	store   *Store
	fetcher *fetcher
	group   singleflight.Group
	log     logger.Logger
}

// NewResolver builds a resolver. Nothing touches the disk or network until first use.
func NewResolver(opts Options, log logger.Logger) *Resolver {
	opts = opts.withDefaults()
	return &Resolver{
		opts:    opts,
		store:   NewStore(opts.Dir, opts.PublicPrefix),
		fetcher: newFetcher(opts),
		log:     log,
	}
}

// Store exposes the cache directory.
func (r *Resolver) Store() *Store { return r.store }

// Resolve returns the public path of the favicon for rawURL's domain.
//
// A cached file is returned without network I/O. Otherwise the candidates are
// fetched in order, each bounded by timeout (Options.Timeout when <= 0), and a
// letter icon is generated if all fail. ok is false when rawURL has no domain,
// the cache directory cannot be written, or the network is paused by the
// breaker. Nothing is cached in the last case, so a later refetch retries.
func (r *Resolver) Resolve(ctx context.Context, rawURL string, timeout time.Duration) (string, bool) {
	host := domain.Domain(rawURL)
	if host == "" {
		metrics.FaviconResolutionsTotal.WithLabelValues(metrics.SourceNone).Inc()
		return "", false
	}

	if p, ok := r.store.Lookup(host); ok {
		metrics.FaviconResolutionsTotal.WithLabelValues(metrics.SourceCache).Inc()
		return p, true
	}

	if timeout <= 0 {
		timeout = r.opts.Timeout
	}

	// Links of one domain imported concurrently share a single fetch.
	v, _, _ := r.group.Do(host, func() (interface{}, error) {
		return r.resolveMiss(ctx, host, timeout), nil
	})
	p := v.(string)
	return p, p != ""
}

func (r *Resolver) resolveMiss(ctx context.Context, host string, timeout time.Duration) string {
	if p, ok := r.store.Lookup(host); ok {
		metrics.FaviconResolutionsTotal.WithLabelValues(metrics.SourceCache).Inc()
		return p
	}

	origin := r.opts.Origin(host)
	for _, candidate := range candidatePaths {
		data, err := r.fetcher.fetch(ctx, origin+candidate, timeout)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			r.log.Debug("favicon network paused, leaving domain unresolved",
				logger.String("domain", host))
			metrics.FaviconResolutionsTotal.WithLabelValues(metrics.SourceNone).Inc()
			return ""
		}
		if err != nil {
			r.log.Debug("favicon candidate failed",
				logger.String("url", origin+candidate),
				logger.Error(err))
			continue
		}

		ext, ok := sniff(data, r.opts.MaxBytes)
		if !ok {
			continue
		}

		p, err := r.store.Write(host, ext, data)
		if err != nil {
			r.log.Warn("failed to cache favicon",
				logger.String("domain", host),
				logger.Error(err))
			break
		}
		metrics.FaviconResolutionsTotal.WithLabelValues(metrics.SourceNetwork).Inc()
		return p
	}

	p, err := r.store.Write(host, "svg", FallbackSVG(host))
	if err != nil {
		r.log.Warn("failed to write fallback favicon",
			logger.String("domain", host),
			logger.Error(err))
		metrics.FaviconResolutionsTotal.WithLabelValues(metrics.SourceNone).Inc()
		return ""
	}
	metrics.FaviconResolutionsTotal.WithLabelValues(metrics.SourceFallback).Inc()
	return p
}

// SaveDataURL stores an inline data:image/...;base64 icon as the favicon of
// pageURL's domain. Malformed, oversized or non-image payloads return false.
// A domain already cached keeps its file, since links may point at it.
func (r *Resolver) SaveDataURL(dataURL, pageURL string) (string, bool) {
	host := domain.Domain(pageURL)
	if host == "" {
		return "", false
	}

	if p, ok := r.store.Lookup(host); ok {
		metrics.FaviconResolutionsTotal.WithLabelValues(metrics.SourceCache).Inc()
		return p, true
	}

	data, err := decodeDataURL(dataURL)
	if err != nil {
		r.log.Debug("ignoring inline icon",
			logger.String("domain", host),
			logger.Error(err))
		return "", false
	}

	ext, ok := sniff(data, r.opts.MaxBytes)
	if !ok {
		return "", false
	}

	v, _, _ := r.group.Do(host, func() (interface{}, error) {
		if p, ok := r.store.Lookup(host); ok {
			metrics.FaviconResolutionsTotal.WithLabelValues(metrics.SourceCache).Inc()
			return p, nil
		}
		p, err := r.store.Write(host, ext, data)
		if err != nil {
			r.log.Warn("failed to save inline favicon",
				logger.String("domain", host),
				logger.Error(err))
			return "", nil
		}
		metrics.FaviconResolutionsTotal.WithLabelValues(metrics.SourceDataURL).Inc()
		return p, nil
	})
	p := v.(string)
	return p, p != ""
}
