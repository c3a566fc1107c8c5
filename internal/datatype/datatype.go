// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package datatype enumerates the message kinds that flow between nodes on the
// device and the parent/child relation between them.
package datatype

import "fmt"

// Kind identifies the type of a message carried over a link.
type Kind int

const (
	// Buffer is the root kind; every other kind is a Buffer.
	Buffer Kind = iota
	// ImgFrame carries an image plane plus capture metadata.
	ImgFrame
	// InferenceResult carries the output tensors of a neural network.
	InferenceResult
	// ImageManipConfig carries runtime reconfiguration for image manipulation.
	ImageManipConfig
	// Tracklets carries object tracker state.
	Tracklets
)

var kindNames = map[Kind]string{
	Buffer:           "Buffer",
	ImgFrame:         "ImgFrame",
	InferenceResult:  "InferenceResult",
	ImageManipConfig: "ImageManipConfig",
	Tracklets:        "Tracklets",
}

// parents maps every kind except the root to its direct parent.
var parents = map[Kind]Kind{
	ImgFrame:         Buffer,
	InferenceResult:  Buffer,
	ImageManipConfig: Buffer,
	Tracklets:        Buffer,
}

// String returns the kind's name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// IsSubclassOf reports whether child is parent or derives from it.
func IsSubclassOf(child, parent Kind) bool {
	for k := child; ; {
		if k == parent {
			return true
		}
		next, ok := parents[k]
		if !ok {
			return false
		}
		k = next
	}
}
