package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/nnpipe/internal/remote"
)

// Run loads the pipeline file, compiles it, writes the bundle and, when a
// remote host is configured, publishes it.
func (a *App) Run(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	a.logger.Debug("App.Run method started.")

	res, err := a.loader.Load(ctx, a.config.PipelinePath)
	if err != nil {
		return fmt.Errorf("failed to load pipeline: %w", err)
	}
	a.logger.Debug("Pipeline loaded.", "nodes", len(res.Nodes))

	bundle, err := res.Pipeline.Compile(ctx)
	if err != nil {
		return fmt.Errorf("failed to compile pipeline: %w", err)
	}

	data, err := bundle.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(a.config.OutputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	a.logger.Info("Bundle written.", "path", a.config.OutputPath, "bytes", len(data))

	if err := writeSummary(a.outW, res, bundle, a.config.OutputPath, len(data)); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if a.config.Publishing() {
		cfg := remote.Config{
			URL:                a.config.RemoteURL,
			Namespace:          a.config.RemoteNamespace,
			Timeout:            a.config.RemoteTimeout,
			InsecureSkipVerify: a.config.RemoteInsecure,
		}
		if err := a.publish(ctx, cfg, data); err != nil {
			return fmt.Errorf("failed to publish bundle: %w", err)
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
