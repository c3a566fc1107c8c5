// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package pipeline

import (
	"fmt"
	"sort"

	"github.com/vk/nnpipe/internal/nnerr"
	"github.com/vk/nnpipe/internal/port"
)

// Connection is a link from an output port to an input port.
type Connection struct {
	OutputNode int64  `msgpack:"outputNode"`
	Output     string `msgpack:"output"`
	InputNode  int64  `msgpack:"inputNode"`
	Input      string `msgpack:"input"`
}

func (c Connection) String() string {
	return fmt.Sprintf("%d.%s -> %d.%s", c.OutputNode, c.Output, c.InputNode, c.Input)
}

func connectionOf(out *port.Output, in *port.Input) Connection {
	return Connection{OutputNode: out.Owner(), Output: out.Name(), InputNode: in.Owner(), Input: in.Name()}
}

// Link connects out to in. Both ports must belong to nodes of this pipeline,
// some kind out sends must be accepted by in, and single-consumer ports may
// take part in only one link.
func (p *Pipeline) Link(out *port.Output, in *port.Input) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := connectionOf(out, in)
	if !p.ownsOutput(out) || !p.ownsInput(in) {
		return fmt.Errorf("link %s: ports do not belong to this pipeline: %w", c, nnerr.ErrInvalidConnection)
	}
	if out.Owner() == in.Owner() {
		return fmt.Errorf("link %s: a node cannot link to itself: %w", c, nnerr.ErrInvalidConnection)
	}
	if !out.CanConnect(in) {
		return fmt.Errorf("link %s: output sends %v but input accepts %v: %w", c, out.Produced(), in.Accepted(), nnerr.ErrInvalidConnection)
	}
	if _, exists := p.links[c]; exists {
		return fmt.Errorf("link %s already exists: %w", c, nnerr.ErrInvalidConnection)
	}
	for existing := range p.links {
		if out.QueueKind() == port.SingleConsumer && existing.OutputNode == c.OutputNode && existing.Output == c.Output {
			return fmt.Errorf("link %s: single-consumer output is already linked by %s: %w", c, existing, nnerr.ErrInvalidConnection)
		}
		if in.QueueKind() == port.SingleConsumer && existing.InputNode == c.InputNode && existing.Input == c.Input {
			return fmt.Errorf("link %s: single-consumer input is already linked by %s: %w", c, existing, nnerr.ErrInvalidConnection)
		}
	}

	if err := p.topo.AddEdge(c.OutputNode, c.InputNode); err != nil {
		return fmt.Errorf("link %s: %v: %w", c, err, nnerr.ErrInvalidConnection)
	}
	p.links[c] = struct{}{}
	return nil
}

// Unlink removes the link from out to in.
func (p *Pipeline) Unlink(out *port.Output, in *port.Input) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := connectionOf(out, in)
	if _, ok := p.links[c]; !ok {
		return fmt.Errorf("link %s does not exist: %w", c, nnerr.ErrInvalidConnection)
	}
	delete(p.links, c)
	p.topo.RemoveEdge(c.OutputNode, c.InputNode)
	return nil
}

// Connections returns all links in a stable order.
func (p *Pipeline) Connections() []Connection {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sortedConnectionsLocked()
}

func (p *Pipeline) sortedConnectionsLocked() []Connection {
	out := make([]Connection, 0, len(p.links))
	for c := range p.links {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.OutputNode != b.OutputNode {
			return a.OutputNode < b.OutputNode
		}
		if a.Output != b.Output {
			return a.Output < b.Output
		}
		if a.InputNode != b.InputNode {
			return a.InputNode < b.InputNode
		}
		return a.Input < b.Input
	})
	return out
}
