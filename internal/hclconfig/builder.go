// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package hclconfig

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/nnpipe/internal/nnerr"
	"github.com/vk/nnpipe/internal/node"
	"github.com/vk/nnpipe/internal/pipeline"
	"github.com/vk/nnpipe/internal/port"
)

// Node kinds accepted in `node "<kind>" "<name>"` blocks.
const (
	KindNeuralNetwork = "neural_network"
	KindXLinkIn       = "xlink_in"
	KindXLinkOut      = "xlink_out"
)

type inputBlock struct {
	Name      string `hcl:"name,label"`
	Blocking  *bool  `hcl:"blocking,optional"`
	QueueSize *int   `hcl:"queue_size,optional"`
}

type neuralNetworkBody struct {
	BlobPath                 *string       `hcl:"blob_path,optional"`
	NumPoolFrames            *int          `hcl:"num_pool_frames,optional"`
	NumInferenceThreads      *int          `hcl:"num_inference_threads,optional"`
	NumNCEPerInferenceThread *int          `hcl:"num_nce_per_inference_thread,optional"`
	Inputs                   []*inputBlock `hcl:"input,block"`
}

type xlinkInBody struct {
	StreamName  string `hcl:"stream_name"`
	MaxDataSize *int   `hcl:"max_data_size,optional"`
	NumFrames   *int   `hcl:"num_frames,optional"`
}

type xlinkOutBody struct {
	StreamName   string        `hcl:"stream_name"`
	FPSLimit     *float64      `hcl:"fps_limit,optional"`
	MetadataOnly *bool         `hcl:"metadata_only,optional"`
	Inputs       []*inputBlock `hcl:"input,block"`
}

// builder turns decoded blocks into pipeline nodes and links.
type builder struct {
	path    string
	dir     string
	evalCtx *hcl.EvalContext
	result  *Result
}

type nodeFactory func(b *builder, p *pipeline.Pipeline, body hcl.Body) (node.Node, error)

var nodeFactories = map[string]nodeFactory{
	KindNeuralNetwork: (*builder).neuralNetwork,
	KindXLinkIn:       (*builder).xlinkIn,
	KindXLinkOut:      (*builder).xlinkOut,
}

func (b *builder) addNode(block *nodeBlock) error {
	if !validName(block.Name) {
		return fmt.Errorf("%s: invalid node name %q: %w", b.path, block.Name, nnerr.ErrInvalidArgument)
	}
	if _, exists := b.result.Nodes[block.Name]; exists {
		return fmt.Errorf("%s: node %q is declared more than once: %w", b.path, block.Name, nnerr.ErrInvalidArgument)
	}
	create, ok := nodeFactories[block.Kind]
	if !ok {
		return fmt.Errorf("%s: node %q has unknown kind %q: %w", b.path, block.Name, block.Kind, nnerr.ErrInvalidArgument)
	}

	n, err := create(b, b.result.Pipeline, block.Body)
	if err != nil {
		return fmt.Errorf("%s: node %q: %w", b.path, block.Name, err)
	}
	b.result.Nodes[block.Name] = n
	return nil
}

func (b *builder) decode(body hcl.Body, val any) error {
	if diags := gohcl.DecodeBody(body, b.evalCtx, val); diags.HasErrors() {
		return diags
	}
	return nil
}

func (b *builder) neuralNetwork(p *pipeline.Pipeline, body hcl.Body) (node.Node, error) {
	var cfg neuralNetworkBody
	if err := b.decode(body, &cfg); err != nil {
		return nil, err
	}

	nn := p.CreateNeuralNetwork()
	if cfg.BlobPath != nil {
		if err := nn.SetBlobPath(b.resolve(*cfg.BlobPath)); err != nil {
			return nil, err
		}
	}
	if cfg.NumPoolFrames != nil {
		if err := nn.SetNumPoolFrames(*cfg.NumPoolFrames); err != nil {
			return nil, err
		}
	}
	if cfg.NumInferenceThreads != nil {
		if err := nn.SetNumInferenceThreads(*cfg.NumInferenceThreads); err != nil {
			return nil, err
		}
	}
	if cfg.NumNCEPerInferenceThread != nil {
		if err := nn.SetNumNCEPerInferenceThread(*cfg.NumNCEPerInferenceThread); err != nil {
			return nil, err
		}
	}
	if err := configureInputs(nn, cfg.Inputs); err != nil {
		return nil, err
	}
	return nn, nil
}

func (b *builder) xlinkIn(p *pipeline.Pipeline, body hcl.Body) (node.Node, error) {
	var cfg xlinkInBody
	if err := b.decode(body, &cfg); err != nil {
		return nil, err
	}

	x := p.CreateXLinkIn()
	if err := x.SetStreamName(cfg.StreamName); err != nil {
		return nil, err
	}
	if cfg.MaxDataSize != nil {
		if err := x.SetMaxDataSize(*cfg.MaxDataSize); err != nil {
			return nil, err
		}
	}
	if cfg.NumFrames != nil {
		if err := x.SetNumFrames(*cfg.NumFrames); err != nil {
			return nil, err
		}
	}
	return x, nil
}

func (b *builder) xlinkOut(p *pipeline.Pipeline, body hcl.Body) (node.Node, error) {
	var cfg xlinkOutBody
	if err := b.decode(body, &cfg); err != nil {
		return nil, err
	}

	x := p.CreateXLinkOut()
	if err := x.SetStreamName(cfg.StreamName); err != nil {
		return nil, err
	}
	if cfg.FPSLimit != nil {
		if err := x.SetFPSLimit(*cfg.FPSLimit); err != nil {
			return nil, err
		}
	}
	if cfg.MetadataOnly != nil {
		x.SetMetadataOnly(*cfg.MetadataOnly)
	}
	if err := configureInputs(x, cfg.Inputs); err != nil {
		return nil, err
	}
	return x, nil
}

// resolve makes a relative path relative to the pipeline file.
func (b *builder) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(b.dir, path)
}

func configureInputs(n node.Node, blocks []*inputBlock) error {
	for _, block := range blocks {
		in := findInput(n, block.Name)
		if in == nil {
			return fmt.Errorf("%s has no input %q: %w", n.Name(), block.Name, nnerr.ErrInvalidArgument)
		}
		if block.Blocking != nil {
			in.SetBlocking(*block.Blocking)
		}
		if block.QueueSize != nil {
			if err := in.SetQueueSize(*block.QueueSize); err != nil {
				return fmt.Errorf("input %q: %w", block.Name, err)
			}
		}
	}
	return nil
}

func findInput(n node.Node, name string) *port.Input {
	for _, in := range n.Inputs() {
		if in.Name() == name {
			return in
		}
	}
	return nil
}

func findOutput(n node.Node, name string) *port.Output {
	for _, out := range n.Outputs() {
		if out.Name() == name {
			return out
		}
	}
	return nil
}

func (b *builder) addLink(link *linkBlock) error {
	from, err := ParseRef(link.From)
	if err != nil {
		return fmt.Errorf("%s: link from: %w", b.path, err)
	}
	to, err := ParseRef(link.To)
	if err != nil {
		return fmt.Errorf("%s: link to: %w", b.path, err)
	}

	src, ok := b.result.Nodes[from.Node]
	if !ok {
		return fmt.Errorf("%s: link %s -> %s: unknown node %q: %w", b.path, from, to, from.Node, nnerr.ErrInvalidArgument)
	}
	dst, ok := b.result.Nodes[to.Node]
	if !ok {
		return fmt.Errorf("%s: link %s -> %s: unknown node %q: %w", b.path, from, to, to.Node, nnerr.ErrInvalidArgument)
	}
	out := findOutput(src, from.Port)
	if out == nil {
		return fmt.Errorf("%s: link %s -> %s: %s has no output %q: %w", b.path, from, to, src.Name(), from.Port, nnerr.ErrInvalidArgument)
	}
	in := findInput(dst, to.Port)
	if in == nil {
		return fmt.Errorf("%s: link %s -> %s: %s has no input %q: %w", b.path, from, to, dst.Name(), to.Port, nnerr.ErrInvalidArgument)
	}

	if err := b.result.Pipeline.Link(out, in); err != nil {
		return fmt.Errorf("%s: link %s -> %s: %w", b.path, from, to, err)
	}
	return nil
}
