// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package nnerr defines the error kinds shared by the node, builder and loader
// packages. Callers match them with errors.Is; the wrapping error always names
// the offending path or value.
package nnerr

import "errors"

var (
	// ErrResourceNotFound reports a path that does not resolve to an existing file.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrInvalidFormat reports a file that exists but is not a valid model blob.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidArgument reports a configuration value outside its legal range.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIncompatibleRequirements reports nodes whose runtime version
	// requirements cannot be satisfied by a single runtime.
	ErrIncompatibleRequirements = errors.New("incompatible requirements")

	// ErrInvalidConnection reports a link between ports that may not be connected.
	ErrInvalidConnection = errors.New("invalid connection")
)
