// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the typed connection points a node declares.
//
// Why declare ports up front?
//
// A port is the data contract of a node: it states which message kinds the
// node produces or accepts and how the device runtime should queue them. With
// those contracts declared on the host, the pipeline builder can reject a bad
// link at build time instead of the device discovering it after the pipeline
// has been deployed.

// Package port models the directional, typed inputs and outputs of a node.
package port

import (
	"fmt"

	"github.com/vk/nnpipe/internal/datatype"
	"github.com/vk/nnpipe/internal/nnerr"
)

// Direction is the side of a node a port sits on.
type Direction int

const (
	// In ports receive messages.
	In Direction = iota
	// Out ports send messages.
	Out
)

func (d Direction) String() string {
	if d == In {
		return "input"
	}
	return "output"
}

// QueueKind says how many peers may share the port's end of a link.
type QueueKind int

const (
	// SingleConsumer ports take part in at most one link.
	SingleConsumer QueueKind = iota
	// MultiConsumer ports fan in or fan out to any number of links.
	MultiConsumer
)

func (q QueueKind) String() string {
	if q == SingleConsumer {
		return "single-consumer"
	}
	return "multi-consumer"
}

// Hierarchy is one accepted (or produced) message kind. When Descendants is
// set, every kind derived from Kind is accepted as well.
type Hierarchy struct {
	Kind        datatype.Kind `msgpack:"datatype"`
	Descendants bool          `msgpack:"descendants"`
}

// Descriptor is a value snapshot of a port, as written into the schema.
type Descriptor struct {
	Name      string      `msgpack:"name"`
	Direction Direction   `msgpack:"direction"`
	QueueKind QueueKind   `msgpack:"queueKind"`
	Blocking  bool        `msgpack:"blocking"`
	QueueSize int         `msgpack:"queueSize"`
	Kinds     []Hierarchy `msgpack:"kinds"`
}

// Ref names a port by its owning node and port name.
type Ref struct {
	Node int64
	Name string
}

func (r Ref) String() string {
	return fmt.Sprintf("%d.%s", r.Node, r.Name)
}

// Input is a port that receives messages. Blocking and QueueSize describe the
// device-side queue: a blocking input makes producers wait for space, a
// non-blocking one drops the oldest message when full.
type Input struct {
	owner     int64
	name      string
	queue     QueueKind
	blocking  bool
	queueSize int
	accepted  []Hierarchy
}

// NewInput declares an input port owned by the node with the given id.
func NewInput(owner int64, name string, queue QueueKind, blocking bool, queueSize int, accepted ...Hierarchy) *Input {
	return &Input{
		owner:     owner,
		name:      name,
		queue:     queue,
		blocking:  blocking,
		queueSize: queueSize,
		accepted:  append([]Hierarchy(nil), accepted...),
	}
}

func (i *Input) Owner() int64         { return i.owner }
func (i *Input) Name() string         { return i.name }
func (i *Input) QueueKind() QueueKind { return i.queue }
func (i *Input) Blocking() bool       { return i.blocking }
func (i *Input) QueueSize() int       { return i.queueSize }
func (i *Input) Ref() Ref             { return Ref{Node: i.owner, Name: i.name} }

// Accepted returns a copy of the kinds this input accepts.
func (i *Input) Accepted() []Hierarchy {
	return append([]Hierarchy(nil), i.accepted...)
}

// SetBlocking switches the device-side queue between blocking and dropping.
func (i *Input) SetBlocking(blocking bool) {
	i.blocking = blocking
}

// SetQueueSize sets the device-side queue depth.
func (i *Input) SetQueueSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("input %q: queue size %d must be positive: %w", i.name, size, nnerr.ErrInvalidArgument)
	}
	i.queueSize = size
	return nil
}

// Clone returns a copy of the input with identical settings owned by another node.
func (i *Input) Clone(owner int64) *Input {
	c := *i
	c.owner = owner
	c.accepted = i.Accepted()
	return &c
}

// Descriptor returns the schema snapshot of the input.
func (i *Input) Descriptor() Descriptor {
	return Descriptor{
		Name:      i.name,
		Direction: In,
		QueueKind: i.queue,
		Blocking:  i.blocking,
		QueueSize: i.queueSize,
		Kinds:     i.Accepted(),
	}
}

// Output is a port that sends messages.
type Output struct {
	owner    int64
	name     string
	queue    QueueKind
	possible []Hierarchy
}

// NewOutput declares an output port owned by the node with the given id.
func NewOutput(owner int64, name string, queue QueueKind, possible ...Hierarchy) *Output {
	return &Output{
		owner:    owner,
		name:     name,
		queue:    queue,
		possible: append([]Hierarchy(nil), possible...),
	}
}

func (o *Output) Owner() int64         { return o.owner }
func (o *Output) Name() string         { return o.name }
func (o *Output) QueueKind() QueueKind { return o.queue }
func (o *Output) Ref() Ref             { return Ref{Node: o.owner, Name: o.name} }

// Produced returns a copy of the kinds this output may send.
func (o *Output) Produced() []Hierarchy {
	return append([]Hierarchy(nil), o.possible...)
}

// CanConnect reports whether some kind this output sends is accepted by in.
func (o *Output) CanConnect(in *Input) bool {
	for _, out := range o.possible {
		for _, acc := range in.accepted {
			if out.Kind == acc.Kind {
				return true
			}
			if acc.Descendants && datatype.IsSubclassOf(out.Kind, acc.Kind) {
				return true
			}
		}
	}
	return false
}

// Clone returns a copy of the output owned by another node.
func (o *Output) Clone(owner int64) *Output {
	c := *o
	c.owner = owner
	c.possible = o.Produced()
	return &c
}

// Descriptor returns the schema snapshot of the output.
func (o *Output) Descriptor() Descriptor {
	return Descriptor{
		Name:      o.name,
		Direction: Out,
		QueueKind: o.queue,
		Kinds:     o.Produced(),
	}
}
