// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/nnpipe/internal/asset"
	"github.com/vk/nnpipe/internal/ctxlog"
	"github.com/vk/nnpipe/internal/node"
	"github.com/vk/nnpipe/internal/nnerr"
	"github.com/vk/nnpipe/internal/openvino"
	"github.com/vk/nnpipe/internal/port"
	"github.com/vmihailenco/msgpack/v5"
)

// SchemaVersion is bumped whenever the layout of Schema changes.
const SchemaVersion = 1

// Schema is the device-facing description of a compiled pipeline.
type Schema struct {
	Version        int          `msgpack:"version"`
	RuntimeVersion string       `msgpack:"runtimeVersion"`
	Nodes          []NodeInfo   `msgpack:"nodes"`
	Connections    []Connection `msgpack:"connections"`
}

// NodeInfo is one node of the schema. Properties holds the msgpack encoding
// of the node's properties snapshot.
type NodeInfo struct {
	ID         int64             `msgpack:"id"`
	Name       string            `msgpack:"name"`
	Properties []byte            `msgpack:"properties"`
	Ports      []port.Descriptor `msgpack:"ports"`
}

// Node returns the schema entry for id.
func (s *Schema) Node(id int64) (NodeInfo, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeInfo{}, false
}

// DecodeProperties decodes the node's properties into v.
func (n NodeInfo) DecodeProperties(v any) error {
	if err := msgpack.Unmarshal(n.Properties, v); err != nil {
		return fmt.Errorf("decoding properties of node %d (%s): %w", n.ID, n.Name, err)
	}
	return nil
}

// Compile validates the pipeline and serializes it into a Bundle. The bundle
// holds copies only; the pipeline may be changed or compiled again afterwards.
func (p *Pipeline) Compile(ctx context.Context) (*Bundle, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Compiling pipeline.", "nodes", len(p.nodes), "links", len(p.links))

	var errs []error
	for _, n := range p.sortedNodesLocked() {
		if v, ok := n.(node.Validator); ok {
			if err := v.Validate(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("pipeline validation failed: %w", err)
	}

	if err := p.topo.DetectCycles(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, nnerr.ErrInvalidConnection)
	}
	order, err := p.topo.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, nnerr.ErrInvalidConnection)
	}

	runtime, err := p.requiredRuntimeVersionLocked()
	if err != nil {
		return nil, err
	}
	if runtime.IsZero() {
		runtime = openvino.Latest()
		logger.Debug("No node requires a runtime release, using the latest.", "runtime", runtime.String())
	}

	schema := Schema{
		Version:        SchemaVersion,
		RuntimeVersion: runtime.String(),
		Connections:    p.sortedConnectionsLocked(),
	}
	assets := asset.NewManager()

	for _, id := range order {
		n := p.nodes[id]
		_, nodeLogger := ctxlog.With(ctx, "node", id, "name", n.Name())
		props, err := msgpack.Marshal(n.Properties())
		if err != nil {
			return nil, fmt.Errorf("encoding properties of node %d (%s): %w", id, n.Name(), err)
		}

		info := NodeInfo{ID: id, Name: n.Name(), Properties: props}
		for _, in := range n.Inputs() {
			info.Ports = append(info.Ports, in.Descriptor())
		}
		for _, out := range n.Outputs() {
			info.Ports = append(info.Ports, out.Descriptor())
		}
		schema.Nodes = append(schema.Nodes, info)

		if err := assets.Merge(n.Assets()); err != nil {
			return nil, fmt.Errorf("collecting assets of node %d: %w", id, err)
		}
		upstream, _ := p.topo.Dependencies(id)
		downstream, _ := p.topo.Dependents(id)
		nodeLogger.Debug("Serialized node.", "properties_bytes", len(props), "upstream", upstream, "downstream", downstream)
	}

	logger.Debug("Pipeline compiled.", "runtime", schema.RuntimeVersion, "assets", assets.Len())
	return &Bundle{Schema: schema, Assets: assets.All()}, nil
}
