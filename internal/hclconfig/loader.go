// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package hclconfig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/nnpipe/internal/asset"
	"github.com/vk/nnpipe/internal/ctxlog"
	"github.com/vk/nnpipe/internal/nnerr"
	"github.com/vk/nnpipe/internal/node"
	"github.com/vk/nnpipe/internal/openvino"
	"github.com/vk/nnpipe/internal/pipeline"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// ConfigDirVariable holds the absolute directory of the pipeline file being
// loaded.
const ConfigDirVariable = "config_dir"

// Loader builds pipelines from HCL files.
type Loader struct {
	assets asset.Loader
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithAssetLoader sets how blob files referenced by the pipeline are read.
func WithAssetLoader(l asset.Loader) LoaderOption {
	return func(loader *Loader) { loader.assets = l }
}

// NewLoader creates a new HCL pipeline loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{assets: asset.OSLoader{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// fileRoot is the top level of a pipeline file.
type fileRoot struct {
	OpenVINOVersion *string      `hcl:"openvino_version,optional"`
	Nodes           []*nodeBlock `hcl:"node,block"`
	Links           []*linkBlock `hcl:"link,block"`
}

// nodeBlock is decoded in two passes: labels first, then the body once the
// kind is known.
type nodeBlock struct {
	Kind string   `hcl:"kind,label"`
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

type linkBlock struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

// Result is a loaded pipeline along with its nodes by declared name.
type Result struct {
	Pipeline *pipeline.Pipeline
	Nodes    map[string]node.Node
}

// Load parses the pipeline file at path and builds the pipeline it
// describes. Nodes are created in declaration order, so the first declared
// node gets id 0.
func (l *Loader) Load(ctx context.Context, path string) (*Result, error) {
	_, logger := ctxlog.With(ctx, "path", path)
	logger.Debug("HCL pipeline loader started.")

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("pipeline file %s: %w", path, nnerr.ErrResourceNotFound)
		}
		return nil, fmt.Errorf("error accessing pipeline file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("pipeline file %s is a directory: %w", path, nnerr.ErrInvalidArgument)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving directory of %s: %w", path, err)
	}
	evalCtx := newEvalContext(dir)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	opts := []pipeline.Option{pipeline.WithLoader(l.assets)}
	if root.OpenVINOVersion != nil {
		v, err := openvino.Parse(*root.OpenVINOVersion)
		if err != nil {
			return nil, fmt.Errorf("%s: openvino_version: %w", path, err)
		}
		if !openvino.IsSupported(v) {
			return nil, fmt.Errorf("%s: openvino_version %s is not a supported release: %w", path, v, nnerr.ErrInvalidArgument)
		}
		opts = append(opts, pipeline.WithRuntimeVersion(v))
	}

	res := &Result{Pipeline: pipeline.New(opts...), Nodes: make(map[string]node.Node)}
	b := &builder{path: path, dir: dir, evalCtx: evalCtx, result: res}

	for _, block := range root.Nodes {
		if err := b.addNode(block); err != nil {
			return nil, err
		}
		logger.Debug("Declared node.", "name", block.Name, "kind", block.Kind, "id", res.Nodes[block.Name].ID())
	}
	for _, link := range root.Links {
		if err := b.addLink(link); err != nil {
			return nil, err
		}
	}

	logger.Debug("HCL pipeline loading complete.", "nodes", len(res.Nodes), "links", len(root.Links))
	return res, nil
}

func newEvalContext(dir string) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			ConfigDirVariable: cty.StringVal(dir),
		},
		Functions: map[string]function.Function{
			"format": stdlib.FormatFunc,
			"lower":  stdlib.LowerFunc,
			"upper":  stdlib.UpperFunc,
			"max":    stdlib.MaxFunc,
			"min":    stdlib.MinFunc,
		},
	}
}
