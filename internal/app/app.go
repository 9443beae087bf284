package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/metrics"
	"github.com/vk/taskgrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   Config
	model    *config.Model
	registry *registry.Registry
	metrics  *metrics.Collector

	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Configuration that cannot be loaded or does not match the registered
// workflows is a fatal startup error and panics.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	model := config.NewModel()
	if len(appConfig.ConfigPaths) > 0 {
		loaded, err := loader.Load(ctx, appConfig.ConfigPaths...)
		if err != nil {
			panic(fmt.Errorf("failed to load configuration: %w", err))
		}
		model = loaded
	}

	merged := appConfig.merge(model.Settings)
	if err := merged.validate(); err != nil {
		panic(fmt.Errorf("invalid configuration: %w", err))
	}
	logger = newLogger(merged.LogLevel, merged.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Configuration loaded and merged.", "workers", merged.Workers, "workflows", len(model.Workflows))

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "workflows", len(reg.Names()))

	if err := reg.Validate(ctx, model); err != nil {
		// A workflow block pointing at unknown code is a programmer error.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   merged,
		model:    model,
		registry: reg,
		metrics:  metrics.New(),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Config returns the effective configuration after merging files and defaults.
func (a *App) Config() Config {
	return a.config
}
