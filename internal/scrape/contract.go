// Package scrape implements the scraping contract and runner
// (schema.md's C7): a plugin declares how to obtain a record type's
// corpus from the network; the runner arbitrates between an on-disk
// JSON cache and a fresh scrape, with retry and background-write
// semantics.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/net/html"
)

// Mirror is an optional secondary cache target consulted only as a
// deployment-warm-start convenience; the runner never reads from it at
// query time, only writes to it best-effort alongside the mandatory
// on-disk JSON cache.
type Mirror interface {
	Set(ctx context.Context, key string, value []byte) error
}

// Metrics receives outcome counters from Run, satisfied structurally
// by *pkg/metrics.Metrics without this package importing it, the same
// pattern Mirror uses to decouple the runner from a concrete backend.
type Metrics interface {
	ObserveCacheHit(key string, hit bool)
	ObserveScrapeOutcome(key, outcome string)
}

// Env is everything a scraper plugin needs: an HTTP client, an HTML
// fetch+parse helper, a logger and the cache configuration. It is
// process-global and built once at startup.
type Env struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	CacheDir   string
	UseCaching bool
	Mirror     Mirror  // may be nil
	Metrics    Metrics // may be nil
}

// FetchHTML performs an HTTP GET against url and parses the response
// body as an HTML document, returning its root node.
func (e *Env) FetchHTML(ctx context.Context, url string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("scrape: build request for %s: %w", url, err)
	}
	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	warnOnLegacyHTTPVersion(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	root, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("scrape: parse HTML from %s: %w", url, err)
	}
	return root, nil
}

// Plugin is the scraping contract for a record type with output type O.
type Plugin[O any] interface {
	// CacheKey identifies this plugin's cache file, before
	// sanitisation. Defaults conventionally to the sanitised type name.
	CacheKey() string
	// Scrape obtains a fresh corpus using env's HTTP client and HTML
	// helpers.
	Scrape(ctx context.Context, env *Env) (O, error)
}

// NetworkError wraps a transport-level failure reaching url.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("scrape: network error fetching %s: %v", e.URL, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("scrape: %s returned status %d", e.URL, e.StatusCode)
}

// DecodeError reports a JSON decode failure of a cached or
// freshly-scraped payload.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("scrape: decode %s: %v", e.Key, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// CacheIOError reports a cache file creation/write/read failure.
type CacheIOError struct {
	Path string
	Err  error
}

func (e *CacheIOError) Error() string { return fmt.Sprintf("scrape: cache I/O on %s: %v", e.Path, e.Err) }
func (e *CacheIOError) Unwrap() error { return e.Err }
