package favicon

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/MrSnakeDoc/adlinkton/internal/metrics"
	"github.com/MrSnakeDoc/adlinkton/internal/utils"
)

// errRejected marks a response that was received but is not an icon.
// It does not count as a network failure for the circuit breaker.
var errRejected = errors.New("favicon rejected")

type fetcher struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker
	userAgent string
	maxBytes  int64
}

func newFetcher(opts Options) *fetcher {
	client := opts.Client
	if client == nil {
		client = newClient(opts)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "favicon-network",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errRejected) || errors.Is(err, errPrivateAddress)
		},
	})

	return &fetcher{
		client:    client,
		breaker:   breaker,
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
	}
}

func newClient(opts Options) *http.Client {
	dialer := &net.Dialer{Timeout: opts.Timeout}
	if !opts.AllowPrivate {
		dialer.Control = denyPrivate
	}

	return &http.Client{
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: opts.Timeout,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     30 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > opts.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", opts.MaxRedirects)
			}
			return nil
		},
	}
}

// fetch downloads url within timeout. It returns gobreaker.ErrOpenState
// without any I/O while the network is considered down.
func (f *fetcher) fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	out, err := f.breaker.Execute(func() (interface{}, error) {
		return f.get(ctx, url, timeout)
	})
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

func (f *fetcher) get(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	start := time.Now()
	defer func() { metrics.FaviconFetchDuration.Observe(time.Since(start).Seconds()) }()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errRejected, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "image/*,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", errRejected, url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	return data, nil
}
