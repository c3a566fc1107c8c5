// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package remote ships compiled pipeline bundles to an execution host over
// socket.io.
package remote

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/nnpipe/internal/ctxlog"
	"github.com/vk/nnpipe/internal/nnerr"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Events exchanged with the execution host.
const (
	EventPipeline    = "pipeline"
	EventPipelineAck = "pipeline_ack"
)

// DefaultTimeout bounds both connecting and waiting for the acknowledgement.
const DefaultTimeout = 15 * time.Second

// Config describes the execution host.
type Config struct {
	URL                string
	Namespace          string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

func (c Config) parse() (*url.URL, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("remote url is required: %w", nnerr.ErrInvalidArgument)
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remote url %q: %w", c.URL, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, fmt.Errorf("remote url %q has unsupported scheme %q: %w", c.URL, u.Scheme, nnerr.ErrInvalidArgument)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("remote url %q has no host: %w", c.URL, nnerr.ErrInvalidArgument)
	}
	return u, nil
}

func (c Config) namespace() string {
	if c.Namespace == "" {
		return "/"
	}
	return c.Namespace
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Publish connects to the host, emits the bundle and waits until the host
// acknowledges it. A non-empty string in the acknowledgement is the host's
// rejection reason.
func Publish(ctx context.Context, cfg Config, bundle []byte) error {
	u, err := cfg.parse()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish cancelled: %w", err)
	}

	logger := ctxlog.FromContext(ctx).With("url", cfg.URL, "namespace", cfg.namespace())
	timeout := cfg.timeout()

	opts := socket.DefaultOptions()
	if u.Path != "" && u.Path != "/" {
		opts.SetPath(u.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", u.Scheme, u.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.namespace(), opts)
	defer io.Disconnect()

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Connected to execution host.", "sid", io.Id())
		connected <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		connected <- connectError(errs)
	})

	logger.Debug("Connecting to execution host...")
	io.Connect()

	if err := wait(ctx, timeout, connected, "socket.io connection"); err != nil {
		return err
	}

	acked := make(chan error, 1)
	io.Once(types.EventName(EventPipelineAck), func(data ...any) {
		if len(data) > 0 {
			if reason, ok := data[0].(string); ok && reason != "" {
				acked <- fmt.Errorf("execution host rejected pipeline: %s", reason)
				return
			}
		}
		acked <- nil
	})

	logger.Info("Publishing pipeline bundle.", "bytes", len(bundle))
	io.Emit(EventPipeline, bundle)

	if err := wait(ctx, timeout, acked, fmt.Sprintf("event '%s'", EventPipelineAck)); err != nil {
		return err
	}
	logger.Info("Execution host accepted pipeline.")
	return nil
}

func wait(ctx context.Context, timeout time.Duration, ch <-chan error, what string) error {
	select {
	case err := <-ch:
		if err != nil {
			return fmt.Errorf("waiting for %s: %w", what, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for %s: %w", what, ctx.Err())
	case <-time.After(timeout):
		return fmt.Errorf("timed out after %v waiting for %s", timeout, what)
	}
}

// connectError extracts the error passed to a connect_error handler.
func connectError(args []any) error {
	if len(args) > 0 {
		if err, ok := args[0].(error); ok && err != nil {
			return err
		}
	}
	return fmt.Errorf("unknown connection error")
}
