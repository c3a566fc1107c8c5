package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/nnpipe/internal/ctxlog"
	"github.com/vk/nnpipe/internal/hclconfig"
	"github.com/vk/nnpipe/internal/remote"
)

// Loader builds a pipeline from a pipeline file.
type Loader interface {
	Load(ctx context.Context, path string) (*hclconfig.Result, error)
}

// PublishFunc ships an encoded bundle to an execution host.
type PublishFunc func(ctx context.Context, cfg remote.Config, bundle []byte) error

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	loader  Loader
	publish PublishFunc
}

// Option configures an App.
type Option func(*App)

// WithPublisher replaces the socket.io publisher.
func WithPublisher(fn PublishFunc) Option {
	return func(a *App) { a.publish = fn }
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger.
func NewApp(outW io.Writer, cfg *Config, loader Loader, opts ...Option) (*App, error) {
	logger, err := newLogger(cfg, outW)
	if err != nil {
		return nil, fmt.Errorf("failed to configure logger: %w", err)
	}
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		loader:  loader,
		publish: remote.Publish,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Logger returns the application's logger. This is primarily for testing.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
