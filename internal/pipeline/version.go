// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package pipeline

import (
	"fmt"

	"github.com/vk/nnpipe/internal/nnerr"
	"github.com/vk/nnpipe/internal/openvino"
)

// RequiredRuntimeVersion aggregates the requirements of all nodes. It
// returns the newest requirement, the forced release if one was set, or the
// zero Version when nothing is required.
func (p *Pipeline) RequiredRuntimeVersion() (openvino.Version, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.requiredRuntimeVersionLocked()
}

func (p *Pipeline) requiredRuntimeVersionLocked() (openvino.Version, error) {
	var (
		required openvino.Version
		owner    int64
	)
	for _, n := range p.sortedNodesLocked() {
		v, ok := n.RequiredRuntimeVersion()
		if !ok {
			continue
		}
		if required.IsZero() {
			required, owner = v, n.ID()
			continue
		}
		if !openvino.Compatible(required, v) {
			return openvino.Version{}, fmt.Errorf("node %d requires runtime %s but node %d requires %s: %w",
				owner, required, n.ID(), v, nnerr.ErrIncompatibleRequirements)
		}
		if v.Compare(required) > 0 {
			required, owner = v, n.ID()
		}
	}

	if p.forced.IsZero() {
		return required, nil
	}
	if !required.IsZero() && (!openvino.Compatible(p.forced, required) || p.forced.Compare(required) < 0) {
		return openvino.Version{}, fmt.Errorf("forced runtime %s cannot run node %d which requires %s: %w",
			p.forced, owner, required, nnerr.ErrIncompatibleRequirements)
	}
	return p.forced, nil
}
