package app

import (
	"context"
	"io"

	"github.com/vk/mismipgen/internal/bootstrap"
	"github.com/vk/mismipgen/internal/config"
	"github.com/vk/mismipgen/internal/ctxlog"
	"github.com/vk/mismipgen/internal/hcl"
	"github.com/vk/mismipgen/internal/yaml"
	"go.uber.org/zap"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *zap.Logger
	config   *Config
	preparer bootstrap.Preparer
	loaders  []sweepLoader
}

// sweepLoader pairs a config.Loader with the extensions it reads.
type sweepLoader struct {
	loader     config.Loader
	extensions []string
}

// NewApp is the constructor for the main application. The script goes to
// outW and logs go to logW.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	var preparer bootstrap.Preparer = bootstrap.NewNetCDFPreparer(cfg.BootstrapDir)
	if cfg.NoBootstrap {
		preparer = bootstrap.Nop{}
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		preparer: preparer,
		loaders: []sweepLoader{
			{loader: hcl.NewLoader(), extensions: []string{hcl.Extension}},
			{loader: yaml.NewLoader(), extensions: yaml.Extensions},
		},
	}
}

// Context returns ctx carrying the application's logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
