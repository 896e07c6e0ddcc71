package config

import (
	"fmt"
	"net/http"

	"pdf-extract-server/internal/domain"
	"pdf-extract-server/internal/handler"
	"pdf-extract-server/internal/infra/supabase"
	"pdf-extract-server/internal/repository"
	"pdf-extract-server/internal/service"
	"pdf-extract-server/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Container holds all application dependencies
type Container struct {
	Config            domain.Config
	Logger            domain.Logger
	Registry          *prometheus.Registry
	ArtifactStore     domain.ArtifactStore
	TextExtractor     domain.TextExtractor
	ArtifactMirror    domain.ArtifactMirror
	ExtractionService domain.ExtractionService
	ExtractionHandler *handler.ExtractionHandler
	HTTPMetrics       *handler.HTTPMetrics
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel(), config.GetLogFormat())
	return NewContainerWith(config, appLogger)
}

// NewContainerWith wires the application around an existing config and logger
func NewContainerWith(config domain.Config, appLogger domain.Logger) (*Container, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, err := repository.NewFileArtifactRepository(config.GetUploadPath(), config.GetStorageLayout(), appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upload folder: %w", err)
	}

	extractor, err := service.NewTextExtractor(config.GetExtractor(), config.GetPageTimeout(), appLogger)
	if err != nil {
		return nil, err
	}

	extractionMetrics, err := service.NewExtractionMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register extraction metrics: %w", err)
	}
	httpMetrics, err := handler.NewHTTPMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register http metrics: %w", err)
	}

	mirror := newMirror(config, appLogger)
	extractionService := service.NewExtractionService(store, extractor, mirror, extractionMetrics, appLogger)

	appLogger.Info("Extraction service configured",
		"upload_path", config.GetUploadPath(),
		"layout", string(config.GetStorageLayout()),
		"extractor", extractor.Name(),
		"page_timeout", config.GetPageTimeout().String(),
		"max_file_size", config.GetMaxFileSize(),
	)

	return &Container{
		Config:            config,
		Logger:            appLogger,
		Registry:          registry,
		ArtifactStore:     store,
		TextExtractor:     extractor,
		ArtifactMirror:    mirror,
		ExtractionService: extractionService,
		ExtractionHandler: handler.NewExtractionHandler(extractionService, config.GetMaxFileSize(), appLogger),
		HTTPMetrics:       httpMetrics,
	}, nil
}

// newMirror returns the Supabase mirror when it is fully configured.
func newMirror(config domain.Config, appLogger domain.Logger) domain.ArtifactMirror {
	if config.GetSupabaseURL() == "" && config.GetSupabaseKey() == "" && config.GetSupabaseBucket() == "" {
		return service.NoopMirror{}
	}
	mirror, err := supabase.NewStorageMirror(config, appLogger)
	if err != nil {
		appLogger.Warn("Supabase mirror disabled", "error", err)
		return service.NoopMirror{}
	}
	return mirror
}

// Router builds the HTTP handler for the whole application
func (c *Container) Router() http.Handler {
	return handler.NewRouter(
		c.ExtractionHandler,
		c.HTTPMetrics,
		promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{}),
		c.Config.GetAllowedOrigins(),
		c.Logger,
	)
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}
