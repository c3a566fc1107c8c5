// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package blob reads the compatibility header at the start of a compiled
// model blob. Only the header is interpreted; the payload is opaque.
//
// Layout (little-endian, every field 4-byte aligned):
//
//	0  magic "NNBL"
//	4  header size in bytes (>= 20, multiple of 4)
//	8  total blob size in bytes
//	12 runtime release year
//	16 runtime release number
package blob

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/vk/nnpipe/internal/nnerr"
	"github.com/vk/nnpipe/internal/openvino"
)

// MinHeaderSize is the size of the fixed header fields.
const MinHeaderSize = 20

var magic = [4]byte{'N', 'N', 'B', 'L'}

// Header is the decoded compatibility header.
type Header struct {
	HeaderSize   uint32
	FileSize     uint32
	RuntimeYear  uint32
	RuntimeMinor uint32
}

// RuntimeVersion is the runtime release the blob was compiled for.
func (h Header) RuntimeVersion() openvino.Version {
	return openvino.FromParts(h.RuntimeYear, h.RuntimeMinor)
}

// ParseHeader validates and decodes the header of data, which must hold the
// whole blob.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < MinHeaderSize {
		return Header{}, fmt.Errorf("blob is %d bytes, shorter than its %d-byte header: %w", len(data), MinHeaderSize, nnerr.ErrInvalidFormat)
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return Header{}, fmt.Errorf("bad blob magic %q: %w", data[:4], nnerr.ErrInvalidFormat)
	}

	le := binary.LittleEndian
	h := Header{
		HeaderSize:   le.Uint32(data[4:]),
		FileSize:     le.Uint32(data[8:]),
		RuntimeYear:  le.Uint32(data[12:]),
		RuntimeMinor: le.Uint32(data[16:]),
	}

	if h.HeaderSize < MinHeaderSize || h.HeaderSize%4 != 0 {
		return Header{}, fmt.Errorf("blob header size %d is not a 4-byte multiple of at least %d: %w", h.HeaderSize, MinHeaderSize, nnerr.ErrInvalidFormat)
	}
	if uint64(h.HeaderSize) > uint64(len(data)) {
		return Header{}, fmt.Errorf("blob header size %d exceeds blob length %d: %w", h.HeaderSize, len(data), nnerr.ErrInvalidFormat)
	}
	if uint64(h.FileSize) != uint64(len(data)) {
		return Header{}, fmt.Errorf("blob declares %d bytes but has %d: %w", h.FileSize, len(data), nnerr.ErrInvalidFormat)
	}
	if !openvino.IsSupported(h.RuntimeVersion()) {
		return Header{}, fmt.Errorf("blob targets unsupported runtime %d.%d: %w", h.RuntimeYear, h.RuntimeMinor, nnerr.ErrInvalidFormat)
	}
	return h, nil
}

// Marshal builds a blob for the given runtime release around payload.
// HeaderSize and FileSize are filled in.
func Marshal(version openvino.Version, payload []byte) []byte {
	out := make([]byte, MinHeaderSize+len(payload))
	copy(out, magic[:])
	le := binary.LittleEndian
	le.PutUint32(out[4:], MinHeaderSize)
	le.PutUint32(out[8:], uint32(len(out)))
	le.PutUint32(out[12:], uint32(version.Year()))
	le.PutUint32(out[16:], uint32(version.Release()))
	copy(out[MinHeaderSize:], payload)
	return out
}
