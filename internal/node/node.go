// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package node defines the contract every pipeline node fulfils toward the
// pipeline builder, and the concrete node variants shipped with nnpipe.
package node

import (
	"strings"

	"github.com/vk/nnpipe/internal/asset"
	"github.com/vk/nnpipe/internal/openvino"
	"github.com/vk/nnpipe/internal/port"
)

// ID identifies a node within its owning pipeline.
type ID = int64

// Auto lets the device runtime choose a value (pool sizes, thread counts).
const Auto = 0

// Node is a configurable unit of work the builder compiles into a pipeline.
// Third-party variants implement it the same way the built-in ones do.
type Node interface {
	// ID is unique within the owning pipeline.
	ID() ID
	// Name is the variant name the device runtime dispatches on.
	Name() string
	Inputs() []*port.Input
	Outputs() []*port.Output

	// Properties returns a value snapshot of the node's configuration, ready
	// for encoding. Later changes to the node do not affect the snapshot.
	Properties() any
	// Clone returns an independent copy of the node under a new identity.
	Clone(id ID) Node
	// RequiredRuntimeVersion reports the runtime release the node needs, if any.
	RequiredRuntimeVersion() (openvino.Version, bool)
	// Assets holds files the node ships with the pipeline, keyed by asset key.
	Assets() *asset.Manager
}

// Validator is implemented by nodes that can only be compiled once they are
// fully configured.
type Validator interface {
	Validate() error
}

// Base carries the identity and assets shared by all variants.
type Base struct {
	id     ID
	assets *asset.Manager
}

// NewBase creates the common part of a node.
func NewBase(id ID) Base {
	return Base{id: id, assets: asset.NewManager()}
}

// ID implements Node.
func (b *Base) ID() ID { return b.id }

// Assets implements Node.
func (b *Base) Assets() *asset.Manager { return b.assets }

// cloneFor copies the base under a new id. Asset keys scoped to the old node
// are moved to the new one.
func (b *Base) cloneFor(id ID) Base {
	c := NewBase(id)
	oldPrefix := strings.TrimSuffix(asset.NodeBlobKey(b.id), "__blob")
	newPrefix := strings.TrimSuffix(asset.NodeBlobKey(id), "__blob")
	for _, a := range b.assets.All() {
		key := a.Key
		if rest, ok := strings.CutPrefix(key, oldPrefix); ok {
			key = newPrefix + rest
		}
		c.assets.Set(key, a.Data)
	}
	return c
}

var (
	_ Node      = (*NeuralNetwork)(nil)
	_ Node      = (*XLinkIn)(nil)
	_ Node      = (*XLinkOut)(nil)
	_ Validator = (*NeuralNetwork)(nil)
)
