package app

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// BundleExt is the extension of bundle files written next to the pipeline
// file when no output path is given.
const BundleExt = ".nnb"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PipelinePath string // hcl file
	OutputPath   string // compiled bundle

	LogFormat string
	LogLevel  string

	RemoteURL       string
	RemoteNamespace string
	RemoteTimeout   time.Duration
	RemoteInsecure  bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}
	if cfg.RemoteTimeout < 0 {
		return nil, errors.New("RemoteTimeout cannot be negative")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if _, err := parseLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if err := checkLogFormat(cfg.LogFormat); err != nil {
		return nil, err
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = DefaultOutputPath(cfg.PipelinePath)
	}
	return &cfg, nil
}

// DefaultOutputPath places the bundle next to the pipeline file, e.g.
// `detect.hcl` compiles to `detect.nnb`.
func DefaultOutputPath(pipelinePath string) string {
	return strings.TrimSuffix(pipelinePath, filepath.Ext(pipelinePath)) + BundleExt
}

// Publishing reports whether the bundle should be sent to a remote host.
func (c *Config) Publishing() bool {
	return c.RemoteURL != ""
}
