package container

import (
	"context"
	"fmt"

	"safetyhub/adapters/cache"
	"safetyhub/adapters/charts"
	"safetyhub/adapters/docstore"
	"safetyhub/adapters/excel"
	"safetyhub/adapters/report"
	"safetyhub/app"
	"safetyhub/internal"
	"safetyhub/internal/api"
	"safetyhub/internal/config"
	"safetyhub/internal/safety"
	"safetyhub/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB    *docstore.Store
	Store ports.DocumentStore
	Cache ports.AnalyticsCache

	// Rendering
	Charts  ports.ChartRenderer
	Reports ports.ReportRenderer

	// Analytics and ingestion
	Engine    *safety.Engine
	Analytics *app.AnalyticsService
	Mapping   *excel.Mapping
	Ingester  *excel.Ingester

	logger *internal.Logger
}

// New creates a new dependency injection container. Components that need the
// document store are wired by Open or InitWithStore.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	mapping, err := excel.LoadMapping(cfg.Paths.CollectionMappingFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection mapping: %w", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	c := &Container{
		Config:  cfg,
		Cache:   cache.NewFileCache(cfg.Paths.AnalyticsCachePath),
		Charts:  charts.NewPlotlyRenderer(),
		Reports: report.NewRenderer(),
		Engine:  safety.NewEngine().WithLogger(logger.With("safety")),
		Mapping: mapping,
		logger:  logger.With("container"),
	}
	return c, nil
}

// Open connects the configured document store and wires the components that use it.
func (c *Container) Open(ctx context.Context) error {
	db, err := docstore.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	c.DB = db
	return c.InitWithStore(db)
}

// InitWithStore initializes components that require the document store
func (c *Container) InitWithStore(store ports.DocumentStore) error {
	if store == nil {
		return fmt.Errorf("document store cannot be nil")
	}

	c.Store = store
	c.Analytics = app.NewAnalyticsService(store, c.Cache, c.Engine)
	c.Ingester = excel.NewIngester(store, c.Mapping, c.Config.Paths.CollectionsFile)

	c.logger.Info("Container initialized with %s document store", c.Config.Database.Driver)
	return nil
}

// Server builds the HTTP API over the wired components.
func (c *Container) Server() (*api.Server, error) {
	if c.Store == nil {
		return nil, fmt.Errorf("document store not initialized")
	}
	return api.NewServer(api.Dependencies{
		Store:        c.Store,
		Charts:       c.Charts,
		Reports:      c.Reports,
		Analytics:    c.Analytics,
		ModelPath:    c.Config.Paths.ModelSavePath,
		MaxBodyBytes: c.Config.MaxUploadBytes(),
	}), nil
}

// Shutdown closes the document store connection
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
