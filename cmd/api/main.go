// Package main is the entrypoint for the roster API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/penshort/roster/internal/cache"
	"github.com/penshort/roster/internal/config"
	"github.com/penshort/roster/internal/database"
	"github.com/penshort/roster/internal/handler"
	"github.com/penshort/roster/internal/metrics"
	"github.com/penshort/roster/internal/middleware"
	"github.com/penshort/roster/internal/repository"
	"github.com/penshort/roster/internal/resource"
	"github.com/penshort/roster/internal/router"
	"github.com/penshort/roster/internal/schema"
	"github.com/penshort/roster/internal/server"
)

// apiPrefix is where the resources and the schema are mounted.
const apiPrefix = "/api"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.DatabaseURL, logger); err != nil {
			logger.Error("failed to migrate database",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	recorder := metrics.NewPrometheus()

	deps := routerDeps{
		stores:   resource.RepositoryStores(repo),
		db:       repo,
		recorder: recorder,
		exporter: recorder.Handler(),
	}

	var cacheClient *cache.Cache
	if cfg.SchemaCacheEnabled() {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		logger.Info("connected to Redis")

		schemaCache := cache.NewSchemaCache(cacheClient, cfg.Schema.CacheTTL)
		// Documents are keyed by version only, so drop what a previous
		// build may have cached under the same version.
		if err := schemaCache.Invalidate(ctx, cfg.Schema.Version, string(schema.FormatJSON), string(schema.FormatYAML)); err != nil {
			logger.Warn("failed to invalidate schema cache", "error", err)
		}
		deps.cache = cacheClient
		deps.schemaCache = schemaCache
	} else {
		logger.Info("REDIS_URL not set, schema cache disabled")
	}

	r := setupRouter(cfg, deps, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"schema_version", cfg.Schema.Version,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// routerDeps are the collaborators setupRouter wires into handlers.
// cache and schemaCache stay nil when Redis is disabled.
type routerDeps struct {
	stores      resource.Stores
	db          handler.HealthChecker
	cache       handler.HealthChecker
	schemaCache handler.SchemaCache
	recorder    metrics.Recorder
	exporter    http.Handler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(cfg *config.Config, deps routerDeps, logger *slog.Logger) *chi.Mux {
	resources := router.NewSimpleRouter()
	resource.Register(resources, deps.stores, logger, deps.recorder)

	generator := schema.NewGenerator(resources.Routes(), schema.Options{
		Title:       cfg.Schema.Title,
		Version:     cfg.Schema.Version,
		Description: cfg.Schema.Description,
		ServerURL:   apiPrefix,
		Logger:      logger,
	})

	h := handler.New(cfg.Schema.Version)
	healthHandler := handler.NewHealthHandler(deps.db, deps.cache)
	metricsHandler := handler.NewMetricsHandler(deps.exporter)
	schemaHandler := handler.NewSchemaHandler(generator, cfg.Schema.Version, deps.schemaCache, deps.recorder, logger)

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger, deps.recorder))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.SecurityHeaders(cfg.IsDevelopment()))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)
	r.Get("/", h.Hello)

	r.Route(apiPrefix, func(r chi.Router) {
		r.Get("/schema/", schemaHandler.Schema)
		resources.Mount(r)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
