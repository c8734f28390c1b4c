package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"photofeed/pkg/config"
	"photofeed/pkg/handlers"
	"photofeed/pkg/ingest"
	"photofeed/pkg/location"
	"photofeed/pkg/middleware"
	"photofeed/pkg/services"
	"photofeed/pkg/storage"
)

// App wires configuration, stores, the gallery service and the HTTP
// surface together.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *services.GalleryService
	server  *http.Server
}

// NewApp builds the full application from a loaded configuration.
func NewApp(cfg *config.Config, logger *zap.Logger) *App {
	store := storage.NewGalleryStore(cfg.GalleryPath(), cfg.QuotaBytes, logger)
	images := storage.NewImageStore(cfg.ImagesDir())
	resolver := buildResolver(cfg, logger)
	service := services.NewGalleryService(cfg, store, images, resolver, logger)
	pipeline := ingest.NewPipeline(images, logger)

	api := handlers.NewAPIHandlers(service, pipeline, images, logger)
	web := handlers.NewWebHandlers(cfg.StaticDir, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	r.Get("/", web.IndexHandler)
	r.Get("/images/{id}", api.ImageHandler)
	r.Mount("/api", api.Routes())

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		service: service,
		server:  server,
	}
}

// Run hydrates the gallery, serves HTTP until ctx is cancelled, then
// shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.service.Hydrate()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.service.Close()
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	a.service.Close()
	return err
}

// buildResolver picks the location source: a pinned coordinate when one
// is configured, the IP geolocation endpoint otherwise. No endpoint
// means no location features; proximity tabs then report unsupported.
func buildResolver(cfg *config.Config, logger *zap.Logger) *location.Resolver {
	opts := location.QueryOptions{
		Timeout:    cfg.LocationTimeout(),
		MaximumAge: cfg.LocationMaxAge(),
	}

	if lat, lng, ok := cfg.StaticCoordinate(); ok {
		return location.NewResolver(location.NewStaticSource(lat, lng), logger, opts)
	}
	return location.NewResolver(location.NewIPSource(cfg.LocationEndpoint), logger, opts)
}
