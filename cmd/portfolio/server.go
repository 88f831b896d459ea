package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/api"
	"github.com/tendant/simple-portfolio/pkg/portfolio/config"
	"github.com/tendant/simple-portfolio/pkg/portfolio/media"
	"github.com/tendant/simple-portfolio/pkg/portfolio/site"
)

// serverDeps is everything the HTTP surface needs, built once by the serve
// command and directly by tests.
type serverDeps struct {
	Config   *config.ServerConfig
	Service  portfolio.Service
	Store    portfolio.BlobStore
	Uploader *media.Uploader
	Auth     *api.Auth
	Metrics  *api.Metrics
	Logger   *slog.Logger

	// AccessLog receives request logs; nil means stdout
	AccessLog io.Writer
}

func newRouter(deps serverDeps) *chi.Mux {
	cfg := deps.Config
	accessLogger := httplog.NewLogger("portfolio", httplog.Options{
		JSON:     cfg.IsProduction(),
		LogLevel: parseLevel(cfg.LogLevel),
		Concise:  !cfg.IsProduction(),
		Writer:   deps.AccessLog,
		Tags:     map[string]string{"env": cfg.Environment},
	})

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(accessLogger, []string{"/healthz", "/healthz/ready", "/metrics"}))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(middleware.Timeout(60 * time.Second))

	app.RoutesHealthz(r)
	app.RoutesHealthzReady(r)
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.Mount("/api/v1", api.NewAPIRouter(api.RouterConfig{
		Service:        deps.Service,
		Auth:           deps.Auth,
		Uploader:       deps.Uploader,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         deps.Logger,
	}))

	if cfg.ServesMedia() && deps.Store != nil {
		r.Mount("/media", api.NewMediaHandler(deps.Store).Routes())
	}

	renderer := site.NewRenderer(deps.Service, site.WithRendererLogger(deps.Logger))
	r.Mount("/", site.NewHandler(renderer, deps.Logger).Routes())

	return r
}

// buildDeps wires the stack described by cfg. The cleanup is never nil.
func buildDeps(ctx context.Context, cfg *config.ServerConfig, logger *slog.Logger) (serverDeps, func(), error) {
	repo, cleanup, err := cfg.BuildRepository(ctx)
	if err != nil {
		return serverDeps{}, func() {}, err
	}

	metrics := api.NewMetrics()
	svc, err := cfg.BuildService(repo, metrics.EventSink(portfolio.NewLoggingEventSink(logger)), logger)
	if err != nil {
		cleanup()
		return serverDeps{}, func() {}, err
	}

	store, err := cfg.BuildBlobStore(ctx)
	if err != nil {
		cleanup()
		return serverDeps{}, func() {}, err
	}

	deps := serverDeps{
		Config:   cfg,
		Service:  svc,
		Store:    store,
		Uploader: cfg.BuildUploader(store, logger),
		Metrics:  metrics,
		Logger:   logger,
	}

	auth, err := cfg.BuildAuth(logger)
	switch {
	case err == nil:
		deps.Auth = auth
	case errors.Is(err, config.ErrAdminDisabled):
		logger.Warn("ADMIN_PASSWORD_SHA256 not set, admin API disabled")
	default:
		cleanup()
		return serverDeps{}, func() {}, err
	}
	return deps, cleanup, nil
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests.
func serve(ctx context.Context, cfg *config.ServerConfig, logger *slog.Logger) error {
	deps, cleanup, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("portfolio server starting",
			"port", cfg.Port,
			"env", cfg.Environment,
			"database", cfg.DatabaseType,
			"storage", cfg.Storage.Type,
			"admin", deps.Auth != nil,
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}
