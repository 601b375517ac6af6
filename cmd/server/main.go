// Command server runs the multi-corpus fuzzy search service described
// in SPEC_FULL.md: it scrapes (or loads from cache) the discipline and
// course corpora, builds their fuzzy indices, and serves the HTTP API
// of §6.
//
// Usage:
//
//	server [-config configs/development.yaml] [-env development] [serve|build-cache]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmitar/MC426-backend/internal/corpus/course"
	"github.com/marmitar/MC426-backend/internal/corpus/discipline"
	"github.com/marmitar/MC426-backend/internal/corpusindex"
	"github.com/marmitar/MC426-backend/internal/gateway/handler"
	"github.com/marmitar/MC426-backend/internal/gateway/router"
	"github.com/marmitar/MC426-backend/internal/initctl"
	"github.com/marmitar/MC426-backend/internal/registry"
	"github.com/marmitar/MC426-backend/internal/scrape"
	"github.com/marmitar/MC426-backend/internal/search"
	"github.com/marmitar/MC426-backend/internal/textnorm"
	"github.com/marmitar/MC426-backend/pkg/config"
	"github.com/marmitar/MC426-backend/pkg/health"
	"github.com/marmitar/MC426-backend/pkg/logger"
	"github.com/marmitar/MC426-backend/pkg/metrics"
	"github.com/marmitar/MC426-backend/pkg/rediscache"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional, overlays the --env defaults)")
	env := flag.String("env", "development", "deployment profile: development, production, or testing")
	flag.Parse()

	cfg, err := config.Load(*configPath, config.Env(*env))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	command := "serve"
	if args := flag.Args(); len(args) > 0 {
		command = args[0]
	}

	reg := registry.New()
	initOrch := initctl.New()
	searchOrch := search.New()
	m := metrics.New()
	env2, redisClient := buildScrapeEnv(cfg, m)
	if redisClient != nil {
		defer redisClient.Close()
	}

	registerDiscipline(initOrch, reg, searchOrch, env2, cfg, m)
	registerCourse(initOrch, reg, searchOrch, env2, cfg, m)

	switch command {
	case "build-cache":
		runBuildCache(env2)
	case "serve":
		runServe(cfg, initOrch, searchOrch, reg, m, redisClient)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		os.Exit(1)
	}
}

// buildScrapeEnv constructs the process-global scraping environment:
// HTTP client, logger, cache directory, an optional Redis mirror and
// the metrics collector every scrape run reports outcomes to. The
// Redis client, if connected, is also returned so callers can register
// its health check and close it on shutdown.
func buildScrapeEnv(cfg *config.Config, m *metrics.Metrics) (*scrape.Env, *rediscache.Client) {
	var mirror scrape.Mirror
	var client *rediscache.Client
	if cfg.Redis.Addr != "" {
		c, err := rediscache.New(cfg.Redis)
		if err != nil {
			slog.Warn("redis cache mirror unavailable, continuing without it", "error", err)
		} else {
			mirror = c
			client = c
		}
	}

	env := &scrape.Env{
		HTTPClient: scrape.NewHTTPClient(cfg.Cache.WarnAboutHTTPVersion),
		Logger:     slog.Default().With("component", "scrape"),
		CacheDir:   cfg.Cache.CachePath(textnorm.SanitisePathSegment),
		UseCaching: cfg.Cache.UseCaching,
		Mirror:     mirror,
		Metrics:    m,
	}
	return env, client
}

func registerDiscipline(initOrch *initctl.Orchestrator, reg *registry.Registry, searchOrch *search.Orchestrator, env *scrape.Env, cfg *config.Config, m *metrics.Metrics) {
	initctl.Register(initOrch, handler.DisciplineKey, func(ctx context.Context) (initctl.Controller[discipline.Discipline], error) {
		records, err := scrape.Run(ctx, env, discipline.Scraper{})
		if err != nil {
			m.ObserveInitFailure(handler.DisciplineKey)
			return initctl.Controller[discipline.Discipline]{}, err
		}
		if err := registry.Overwrite(reg, handler.DisciplineKey, "discipline", records, discipline.Schema()); err != nil {
			m.ObserveInitFailure(handler.DisciplineKey)
			return initctl.Controller[discipline.Discipline]{}, err
		}
		m.SetCorpusSize(handler.DisciplineKey, len(records))
		return initctl.NewController(records, discipline.Discipline.Key), nil
	})

	searchOrch.Register(search.Corpus{
		Search: func(ctx context.Context, query string) []corpusindex.Result {
			return registry.Search(reg, handler.DisciplineKey, ctx, query, cfg.Search.MaxResultScore, cfg.Search.SendHiddenFields)
		},
	})
}

func registerCourse(initOrch *initctl.Orchestrator, reg *registry.Registry, searchOrch *search.Orchestrator, env *scrape.Env, cfg *config.Config, m *metrics.Metrics) {
	initctl.Register(initOrch, handler.CourseKey, func(ctx context.Context) (initctl.Controller[course.Course], error) {
		records, err := scrape.Run(ctx, env, course.Scraper{})
		if err != nil {
			m.ObserveInitFailure(handler.CourseKey)
			return initctl.Controller[course.Course]{}, err
		}
		if err := registry.Overwrite(reg, handler.CourseKey, "course", records, course.Schema()); err != nil {
			m.ObserveInitFailure(handler.CourseKey)
			return initctl.Controller[course.Course]{}, err
		}
		m.SetCorpusSize(handler.CourseKey, len(records))
		return initctl.NewController(records, course.Course.Key), nil
	})

	searchOrch.Register(search.Corpus{
		Search: func(ctx context.Context, query string) []corpusindex.Result {
			return registry.Search(reg, handler.CourseKey, ctx, query, cfg.Search.MaxResultScore, cfg.Search.SendHiddenFields)
		},
	})
}

// runBuildCache forces a fresh scrape of every corpus and persists it
// to disk synchronously, then exits 1 if any scrape failed and 0
// otherwise, per §6's CLI surface. A failed cache-file write is logged
// by scrape.ForceRefresh and does not change the exit status.
func runBuildCache(env *scrape.Env) {
	ctx := context.Background()
	failed := false

	if _, err := scrape.ForceRefresh(ctx, env, discipline.Scraper{}); err != nil {
		slog.Error("build-cache: discipline scrape failed", "error", err)
		failed = true
	}
	if _, err := scrape.ForceRefresh(ctx, env, course.Scraper{}); err != nil {
		slog.Error("build-cache: course scrape failed", "error", err)
		failed = true
	}

	if failed {
		os.Exit(1)
	}
	os.Exit(0)
}

// runServe waits for every registered corpus to finish initializing,
// then starts the HTTP server and the separate metrics server, and
// blocks until a shutdown signal arrives.
func runServe(cfg *config.Config, initOrch *initctl.Orchestrator, searchOrch *search.Orchestrator, reg *registry.Registry, m *metrics.Metrics, redisClient *rediscache.Client) {
	slog.Info("waiting for corpus initialization")
	if err := initOrch.WaitAllBlocking(context.Background()); err != nil {
		slog.Error("initialization wait failed", "error", err)
	}

	checker := health.NewChecker()
	checker.Register(handler.DisciplineKey, corpusHealthCheck(reg, handler.DisciplineKey))
	checker.Register(handler.CourseKey, corpusHealthCheck(reg, handler.CourseKey))
	if redisClient != nil {
		checker.Register("redis-mirror", redisHealthCheck(redisClient))
	}

	h := handler.New(initOrch, searchOrch, cfg, m)
	mux := router.New(h, m, cfg.Server.ReadTimeout)

	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /healthz", checker.LiveHandler())
	topMux.HandleFunc("GET /readyz", checker.ReadyHandler())
	topMux.Handle("/", mux)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      topMux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var stopMetrics func(context.Context) error
	if cfg.Metrics.Enabled {
		stopMetrics = metrics.StartServer(cfg.Metrics.Port)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if stopMetrics != nil {
			if err := stopMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}

// corpusHealthCheck reports a corpus as up once its index holds at
// least one record, degraded when it is still empty (initialization
// pending or failed).
func corpusHealthCheck(reg *registry.Registry, key string) health.Check {
	return func(context.Context) health.ComponentHealth {
		if n := reg.Len(key); n > 0 {
			return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d records", n)}
		}
		return health.ComponentHealth{Status: health.StatusDegraded, Message: "corpus not yet built"}
	}
}

// redisHealthCheck reports the optional cache mirror's reachability:
// up when a PING succeeds, degraded otherwise. A degraded mirror makes
// the aggregate readiness report degraded, so /readyz answers 503 while
// the mirror is unreachable, even though the request path never reads
// from it.
func redisHealthCheck(client *rediscache.Client) health.Check {
	return func(ctx context.Context) health.ComponentHealth {
		if err := client.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	}
}
