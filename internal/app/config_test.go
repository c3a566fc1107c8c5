package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name       string
		input      Config
		expectErr  bool
		wantOutput string
	}{
		{name: "defaults output next to pipeline", input: Config{PipelinePath: "/srv/detect.hcl"}, wantOutput: "/srv/detect.nnb"},
		{name: "explicit output", input: Config{PipelinePath: "detect.hcl", OutputPath: "out.bin"}, wantOutput: "out.bin"},
		{name: "pipeline without extension", input: Config{PipelinePath: "detect"}, wantOutput: "detect.nnb"},
		{name: "error - no pipeline", input: Config{}, expectErr: true},
		{name: "error - negative timeout", input: Config{PipelinePath: "a.hcl", RemoteTimeout: -time.Second}, expectErr: true},
		{name: "error - log level", input: Config{PipelinePath: "a.hcl", LogLevel: "trace"}, expectErr: true},
		{name: "error - log format", input: Config{PipelinePath: "a.hcl", LogFormat: "xml"}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.input)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantOutput, cfg.OutputPath)
		})
	}
}

func TestConfig_Publishing(t *testing.T) {
	assert.False(t, (&Config{}).Publishing())
	assert.True(t, (&Config{RemoteURL: "http://device:3000"}).Publishing())
}

func TestNewConfig_LogDefaults(t *testing.T) {
	cfg, err := NewConfig(Config{PipelinePath: "a.hcl"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)

	cfg, err = NewConfig(Config{PipelinePath: "a.hcl", LogLevel: "Debug", LogFormat: "JSON"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
}
