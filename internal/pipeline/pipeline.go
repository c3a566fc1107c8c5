// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package pipeline

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vk/nnpipe/internal/asset"
	"github.com/vk/nnpipe/internal/dag"
	"github.com/vk/nnpipe/internal/node"
	"github.com/vk/nnpipe/internal/nnerr"
	"github.com/vk/nnpipe/internal/openvino"
	"github.com/vk/nnpipe/internal/port"
)

// Pipeline is a graph of nodes under construction. Accessors are safe for
// concurrent use; the nodes themselves are owned by the caller that
// configures them.
type Pipeline struct {
	mu     sync.RWMutex
	loader asset.Loader
	forced openvino.Version
	nextID node.ID
	nodes  map[node.ID]node.Node
	links  map[Connection]struct{}
	topo   *dag.Graph
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLoader sets the loader nodes use to read asset files.
func WithLoader(loader asset.Loader) Option {
	return func(p *Pipeline) { p.loader = loader }
}

// WithRuntimeVersion forces the runtime release the pipeline is compiled for.
func WithRuntimeVersion(v openvino.Version) Option {
	return func(p *Pipeline) { p.forced = v }
}

// New creates an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		loader: asset.OSLoader{},
		nodes:  make(map[node.ID]node.Node),
		links:  make(map[Connection]struct{}),
		topo:   dag.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ForcedRuntimeVersion returns the forced runtime release, if any.
func (p *Pipeline) ForcedRuntimeVersion() (openvino.Version, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.forced, !p.forced.IsZero()
}

// Add creates a node through create under a fresh id and adds it to the
// pipeline. It is the entry point for node variants defined outside this
// module; create must build its node with the id it is given.
func (p *Pipeline) Add(create func(id node.ID) node.Node) (node.Node, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	n := create(id)
	if n == nil || n.ID() != id {
		return nil, fmt.Errorf("node factory did not build a node with id %d: %w", id, nnerr.ErrInvalidArgument)
	}
	return p.addLocked(n), nil
}

func (p *Pipeline) addLocked(n node.Node) node.Node {
	p.nodes[n.ID()] = n
	p.topo.AddNode(n.ID())
	if n.ID() >= p.nextID {
		p.nextID = n.ID() + 1
	}
	return n
}

// CreateNeuralNetwork adds an unconfigured inference node.
func (p *Pipeline) CreateNeuralNetwork() *node.NeuralNetwork {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addLocked(node.NewNeuralNetwork(p.nextID, p.loader)).(*node.NeuralNetwork)
}

// CreateXLinkIn adds a host-to-device stream node.
func (p *Pipeline) CreateXLinkIn() *node.XLinkIn {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addLocked(node.NewXLinkIn(p.nextID)).(*node.XLinkIn)
}

// CreateXLinkOut adds a device-to-host stream node.
func (p *Pipeline) CreateXLinkOut() *node.XLinkOut {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addLocked(node.NewXLinkOut(p.nextID)).(*node.XLinkOut)
}

// Duplicate clones n, which may belong to another pipeline, into p under a
// fresh id. Links are not copied. A clone that does not carry the id it was
// given is rejected.
func (p *Pipeline) Duplicate(n node.Node) (node.Node, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	c := n.Clone(id)
	if c == nil || c.ID() != id {
		return nil, fmt.Errorf("clone of node %d (%s) did not take id %d: %w", n.ID(), n.Name(), id, nnerr.ErrInvalidArgument)
	}
	return p.addLocked(c), nil
}

// Node returns the node with the given id.
func (p *Pipeline) Node(id node.ID) (node.Node, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n, ok := p.nodes[id]
	return n, ok
}

// Nodes returns all nodes ordered by id.
func (p *Pipeline) Nodes() []node.Node {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sortedNodesLocked()
}

func (p *Pipeline) sortedNodesLocked() []node.Node {
	out := make([]node.Node, 0, len(p.nodes))
	for _, n := range p.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Remove deletes n and every link touching it.
func (p *Pipeline) Remove(n node.Node) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.nodes[n.ID()]; !ok || existing != n {
		return fmt.Errorf("node %d (%s) does not belong to this pipeline: %w", n.ID(), n.Name(), nnerr.ErrInvalidArgument)
	}
	for c := range p.links {
		if c.OutputNode == n.ID() || c.InputNode == n.ID() {
			delete(p.links, c)
		}
	}
	p.topo.RemoveNode(n.ID())
	delete(p.nodes, n.ID())
	return nil
}

// ownsOutput reports whether out is one of the ports of a node in p.
func (p *Pipeline) ownsOutput(out *port.Output) bool {
	n, ok := p.nodes[out.Owner()]
	if !ok {
		return false
	}
	for _, o := range n.Outputs() {
		if o == out {
			return true
		}
	}
	return false
}

// ownsInput reports whether in is one of the ports of a node in p.
func (p *Pipeline) ownsInput(in *port.Input) bool {
	n, ok := p.nodes[in.Owner()]
	if !ok {
		return false
	}
	for _, i := range n.Inputs() {
		if i == in {
			return true
		}
	}
	return false
}
