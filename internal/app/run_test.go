package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nnpipe/internal/blob"
	"github.com/vk/nnpipe/internal/hclconfig"
	"github.com/vk/nnpipe/internal/openvino"
	"github.com/vk/nnpipe/internal/pipeline"
	"github.com/vk/nnpipe/internal/remote"
)

const pipelineHCL = `
node "xlink_in" "frames" {
  stream_name = "frames"
}

node "neural_network" "detector" {
  blob_path = "model.blob"
}

node "xlink_out" "results" {
  stream_name = "detections"
}

link {
  from = "frames.out"
  to   = "detector.in"
}

link {
  from = "detector.out"
  to   = "results.in"
}
`

func setup(t *testing.T, content string) *Config {
	t.Helper()
	dir := t.TempDir()
	data := blob.Marshal(openvino.MustParse("2021.3"), []byte("weights"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.blob"), data, 0600))
	path := filepath.Join(dir, "detect.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := NewConfig(Config{PipelinePath: path, LogFormat: "text", LogLevel: "error"})
	require.NoError(t, err)
	return cfg
}

func newApp(t *testing.T, outW *bytes.Buffer, cfg *Config, opts ...Option) *App {
	t.Helper()
	a, err := NewApp(outW, cfg, hclconfig.NewLoader(), opts...)
	require.NoError(t, err)
	return a
}

func TestNewApp_RejectsUnvalidatedLogSettings(t *testing.T) {
	_, err := NewApp(&bytes.Buffer{}, &Config{PipelinePath: "a.hcl", LogLevel: "trace", LogFormat: "text"}, hclconfig.NewLoader())
	require.ErrorContains(t, err, "invalid log-level")

	_, err = NewApp(&bytes.Buffer{}, &Config{PipelinePath: "a.hcl", LogLevel: "info", LogFormat: "xml"}, hclconfig.NewLoader())
	require.ErrorContains(t, err, "invalid log-format")
}

func TestRun_WritesBundleAndSummary(t *testing.T) {
	// --- Arrange ---
	cfg := setup(t, pipelineHCL)
	out := &bytes.Buffer{}
	a := newApp(t, out, cfg)

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)

	f, err := os.Open(cfg.OutputPath)
	require.NoError(t, err)
	defer f.Close()
	bundle, err := pipeline.DecodeBundle(f)
	require.NoError(t, err)
	assert.Equal(t, "2021.3", bundle.Schema.RuntimeVersion)
	assert.Len(t, bundle.Schema.Nodes, 3)
	assert.Len(t, bundle.Assets, 1)

	summary := out.String()
	assert.Contains(t, summary, "runtime 2021.3: 3 nodes, 2 links")
	assert.Contains(t, summary, "detector")
	assert.Contains(t, summary, "node/1/__blob")
	assert.Contains(t, summary, bundle.AssetChecksums()["node/1/__blob"])
	assert.Contains(t, summary, cfg.OutputPath)
}

func TestRun_Publishes(t *testing.T) {
	cfg := setup(t, pipelineHCL)
	cfg.RemoteURL = "http://device.local:3000"
	cfg.RemoteNamespace = "/pipelines"
	cfg.RemoteTimeout = time.Second

	var got remote.Config
	var payload []byte
	a := newApp(t, &bytes.Buffer{}, cfg, WithPublisher(func(_ context.Context, rc remote.Config, b []byte) error {
		got, payload = rc, b
		return nil
	}))

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, remote.Config{URL: "http://device.local:3000", Namespace: "/pipelines", Timeout: time.Second}, got)

	written, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, written, payload)
}

func TestRun_Failures(t *testing.T) {
	t.Run("load", func(t *testing.T) {
		cfg := setup(t, `node "camera" "cam" {}`)
		err := newApp(t, &bytes.Buffer{}, cfg).Run(context.Background())
		require.ErrorContains(t, err, "failed to load pipeline")
	})

	t.Run("compile", func(t *testing.T) {
		cfg := setup(t, `node "neural_network" "detector" {}`)
		err := newApp(t, &bytes.Buffer{}, cfg).Run(context.Background())
		require.ErrorContains(t, err, "failed to compile pipeline")
		_, statErr := os.Stat(cfg.OutputPath)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("publish", func(t *testing.T) {
		cfg := setup(t, pipelineHCL)
		cfg.RemoteURL = "http://device.local:3000"
		boom := errors.New("host unreachable")
		a := newApp(t, &bytes.Buffer{}, cfg, WithPublisher(func(context.Context, remote.Config, []byte) error {
			return boom
		}))
		require.ErrorIs(t, a.Run(context.Background()), boom)
	})
}
