package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/marmitar/MC426-backend/internal/textnorm"
)

// cachePath returns the on-disk path for cacheKey under dir, with the
// key sanitised so it is always a single safe path segment.
func cachePath(dir, cacheKey string) string {
	return filepath.Join(dir, textnorm.SanitisePathSegment(cacheKey)+".json")
}

// Run executes the scraping contract for plugin:
//
//  1. If caching is enabled and the cache file exists and decodes as
//     O, return it.
//  2. Otherwise call plugin.Scrape to produce O. On success, spawn a
//     background task that writes O as JSON to the cache path; the
//     returned value does not block on that write.
//  3. Any failure in step 1 (missing file, decode error) falls through
//     to step 2; on decode error specifically, the stale cache file is
//     removed first so a future run does not retry the same content.
//     Failure in step 2 is surfaced to the caller.
func Run[O any](ctx context.Context, env *Env, plugin Plugin[O]) (O, error) {
	var zero O
	key := plugin.CacheKey()
	path := cachePath(env.CacheDir, key)

	if env.UseCaching {
		if v, ok := tryReadCache[O](env, path, key); ok {
			observeCacheHit(env, key, true)
			observeScrapeOutcome(env, key, "cache_hit")
			return v, nil
		}
		observeCacheHit(env, key, false)
	}

	out, err := plugin.Scrape(ctx, env)
	if err != nil {
		observeScrapeOutcome(env, key, "error")
		return zero, err
	}
	observeScrapeOutcome(env, key, "scraped")

	if env.UseCaching {
		go writeCacheBackground(context.WithoutCancel(ctx), env, path, out)
	}
	return out, nil
}

func observeCacheHit(env *Env, key string, hit bool) {
	if env.Metrics != nil {
		env.Metrics.ObserveCacheHit(key, hit)
	}
}

func observeScrapeOutcome(env *Env, key, outcome string) {
	if env.Metrics != nil {
		env.Metrics.ObserveScrapeOutcome(key, outcome)
	}
}

// ForceRefresh scrapes plugin fresh, ignoring any cached value, and
// writes the result to the cache file synchronously (not in the
// background) before returning — used by the "build-cache" CLI
// subcommand, which must not exit before the file is written. A failed
// write is logged, not returned: the error result reports only a
// failed scrape.
func ForceRefresh[O any](ctx context.Context, env *Env, plugin Plugin[O]) (O, error) {
	var zero O
	out, err := plugin.Scrape(ctx, env)
	if err != nil {
		return zero, err
	}
	writeCacheBackground(ctx, env, cachePath(env.CacheDir, plugin.CacheKey()), out)
	return out, nil
}

// tryReadCache attempts step 1. It returns ok=false on any failure
// (missing file, unreadable file, decode error), forcibly removing the
// file first when the failure was a decode error so the corrupt
// content is not retried on the next process restart.
func tryReadCache[O any](env *Env, path, key string) (O, bool) {
	var zero O
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			env.Logger.Debug("cache read failed, scraping fresh", "path", path, "error", err)
		}
		return zero, false
	}

	var v O
	if err := json.Unmarshal(data, &v); err != nil {
		env.Logger.Info("cache decode failed, invalidating and scraping fresh", "path", path, "key", key, "error", err)
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			env.Logger.Debug("failed to remove stale cache file", "path", path, "error", rmErr)
		}
		return zero, false
	}
	return v, true
}

// writeCacheBackground persists out as JSON to path, creating the
// parent directory as needed and removing any pre-existing file first.
// It runs detached from the request/init context that triggered the
// scrape, per §5's "background cache-write tasks are not cancelled by
// request cancellation."
func writeCacheBackground[O any](_ context.Context, env *Env, path string, out O) {
	data, err := json.Marshal(out)
	if err != nil {
		env.Logger.Error("cache marshal failed", "path", path, "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		env.Logger.Error("cache mkdir failed", "path", path, "error", err)
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		env.Logger.Error("cache remove-before-write failed", "path", path, "error", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		env.Logger.Error("cache write failed", "path", path, "error", err)
		return
	}
	slog.Debug("cache written", "path", path, "bytes", len(data))

	if env.Mirror != nil {
		if err := env.Mirror.Set(context.Background(), filepath.Base(path), data); err != nil {
			env.Logger.Debug("cache mirror write failed", "path", path, "error", err)
		}
	}
}
