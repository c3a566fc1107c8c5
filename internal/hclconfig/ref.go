// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package hclconfig

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vk/nnpipe/internal/nnerr"
)

// nameRegex matches a node or port name, e.g. `detector` or `pass-through_2`.
var nameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

// Ref names a port of a node declared in a pipeline file, written `node.port`.
type Ref struct {
	Node string
	Port string
}

func (r Ref) String() string {
	return r.Node + "." + r.Port
}

// ParseRef parses a `node.port` reference.
func ParseRef(raw string) (Ref, error) {
	if raw == "" {
		return Ref{}, fmt.Errorf("port reference cannot be empty: %w", nnerr.ErrInvalidArgument)
	}

	nodeName, portName, ok := strings.Cut(raw, ".")
	if !ok {
		return Ref{}, fmt.Errorf("port reference %q must have the form node.port: %w", raw, nnerr.ErrInvalidArgument)
	}
	if !validName(nodeName) {
		return Ref{}, fmt.Errorf("port reference %q: invalid node name %q: %w", raw, nodeName, nnerr.ErrInvalidArgument)
	}
	if !validName(portName) {
		return Ref{}, fmt.Errorf("port reference %q: invalid port name %q: %w", raw, portName, nnerr.ErrInvalidArgument)
	}
	return Ref{Node: nodeName, Port: portName}, nil
}

func validName(name string) bool {
	return nameRegex.MatchString(name)
}
