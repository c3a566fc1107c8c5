// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

/*
Package pipeline assembles nodes into a graph and compiles it into a bundle
the device runtime can load.

Compilation is a multi-phase process:

 1. Validation: every node that implements node.Validator is checked, and the
    link topology is checked for cycles.

 2. Version resolution: each node reports the runtime release it needs. The
    pipeline picks the newest of them, and fails with
    nnerr.ErrIncompatibleRequirements if two requirements belong to different
    release years, or if a forced release cannot satisfy them.

 3. Serialization: nodes are visited in topological order; each node's
    properties snapshot is encoded with msgpack and its assets are collected.
    The result is a Bundle holding the schema and the assets, which can be
    written to disk or handed to a remote host.
*/
package pipeline
