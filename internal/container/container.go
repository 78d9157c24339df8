package container

import (
	"fmt"
	"net/http"

	"go-trick-analyzer/internal/config"
	"go-trick-analyzer/internal/factory"
	"go-trick-analyzer/internal/logger"
	"go-trick-analyzer/internal/observer"
	"go-trick-analyzer/internal/predict"
	"go-trick-analyzer/internal/preview"
	"go-trick-analyzer/internal/storage"
	"go-trick-analyzer/internal/transport"
	"go-trick-analyzer/internal/viewstate"
	"go-trick-analyzer/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config       *config.Config
	imageFetcher storage.ImageFetcher
	analyzer     predict.Analyzer
	metrics      *observer.MetricsObserver
	state        *viewstate.Orchestrator
	handler      http.Handler
}

// NewContainer builds the dependency graph from cfg
func NewContainer(cfg *config.Config) (*Container, error) {
	imageFetcher, err := factory.NewStorageFactory(factory.StorageOptions{
		FetchTimeout: cfg.ImageFetchTimeout,
		MaxImageSize: cfg.MaxUploadSize,
		AzureAccount: cfg.AzureAccount,
		AzureKey:     cfg.AzureKey,
	}).CreateStorage(factory.StorageType(cfg.StorageType))
	if err != nil {
		return nil, fmt.Errorf("failed to create image storage: %w", err)
	}

	analyzer := predict.NewClient(cfg.PredictURL(), cfg.AnalysisTimeout,
		predict.WithMinInterval(cfg.AnalysisRateInterval))

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	state := viewstate.New(
		validation.NewImageValidator(),
		preview.NewStore(),
		analyzer,
		viewstate.WithImageFetcher(imageFetcher),
		viewstate.WithEvents(events),
	)

	return &Container{
		config:       cfg,
		imageFetcher: imageFetcher,
		analyzer:     analyzer,
		metrics:      metrics,
		state:        state,
		handler:      transport.NewHandler(state, metrics, cfg),
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// State returns the view state orchestrator
func (c *Container) State() *viewstate.Orchestrator {
	return c.state
}

// Metrics returns the collected view metrics
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}
