// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package pipeline

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/vk/nnpipe/internal/asset"
	"github.com/vmihailenco/msgpack/v5"
)

// Bundle is a compiled pipeline: its schema plus every asset its nodes ship.
type Bundle struct {
	Schema Schema        `msgpack:"schema"`
	Assets []asset.Asset `msgpack:"assets"`
}

// Encode writes the bundle as a snappy-framed msgpack document.
func (b *Bundle) Encode(w io.Writer) error {
	sw := snappy.NewBufferedWriter(w)
	if err := msgpack.NewEncoder(sw).Encode(b); err != nil {
		return fmt.Errorf("encoding bundle: %w", err)
	}
	if err := sw.Close(); err != nil {
		return fmt.Errorf("flushing bundle: %w", err)
	}
	return nil
}

// Bytes returns the encoded bundle.
func (b *Bundle) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBundle reads a bundle written by Encode.
func DecodeBundle(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := msgpack.NewDecoder(snappy.NewReader(r)).Decode(&b); err != nil {
		return nil, fmt.Errorf("decoding bundle: %w", err)
	}
	return &b, nil
}

// AssetChecksums maps every asset key to the checksum of its contents.
func (b *Bundle) AssetChecksums() map[string]string {
	out := make(map[string]string, len(b.Assets))
	for _, a := range b.Assets {
		out[a.Key] = a.Checksum()
	}
	return out
}
