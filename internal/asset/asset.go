// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package asset holds the binary files (model blobs and the like) that are
// shipped alongside a compiled pipeline, and the loader used to read them
// from the host.
package asset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/vk/nnpipe/internal/nnerr"
)

// DefaultAlignment is the byte alignment the device expects for asset data.
const DefaultAlignment = 64

// URIPrefix marks a property value that refers to an asset key.
const URIPrefix = "asset:"

// Asset is a named blob of bytes destined for the device.
type Asset struct {
	Key       string `msgpack:"key"`
	Data      []byte `msgpack:"data"`
	Alignment int    `msgpack:"alignment"`
}

// Checksum identifies the asset contents for bundling and deduplication.
func (a Asset) Checksum() string {
	return strconv.FormatUint(xxhash.Sum64(a.Data), 16)
}

// URI returns the property value that references the asset.
func (a Asset) URI() string {
	return URIPrefix + a.Key
}

func (a Asset) clone() Asset {
	a.Data = append([]byte(nil), a.Data...)
	return a
}

// NodeBlobKey is the asset key of the model blob attached to a node.
func NodeBlobKey(nodeID int64) string {
	return fmt.Sprintf("node/%d/__blob", nodeID)
}

// Loader reads asset files from the host.
type Loader interface {
	// Load returns the contents of the file at path. A missing file yields an
	// error wrapping nnerr.ErrResourceNotFound.
	Load(path string) ([]byte, error)
}

// OSLoader reads files from the local filesystem.
type OSLoader struct{}

// Load implements Loader.
func (OSLoader) Load(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %q: %w", path, nnerr.ErrResourceNotFound)
		}
		return nil, fmt.Errorf("file %q: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%q is a directory: %w", path, nnerr.ErrResourceNotFound)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return data, nil
}

// Manager is a keyed set of assets. Data is copied on the way in and out so
// callers never share byte slices with the manager.
type Manager struct {
	assets map[string]Asset
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{assets: make(map[string]Asset)}
}

// Set stores a copy of data under key.
func (m *Manager) Set(key string, data []byte) Asset {
	a := Asset{Key: key, Data: append([]byte(nil), data...), Alignment: DefaultAlignment}
	m.assets[key] = a
	return a.clone()
}

// Len returns the number of stored assets.
func (m *Manager) Len() int {
	return len(m.assets)
}

// Keys returns all keys in sorted order.
func (m *Manager) Keys() []string {
	keys := make([]string, 0, len(m.assets))
	for k := range m.assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All returns copies of all assets ordered by key.
func (m *Manager) All() []Asset {
	out := make([]Asset, 0, len(m.assets))
	for _, k := range m.Keys() {
		out = append(out, m.assets[k].clone())
	}
	return out
}

// Merge copies every asset of other into m. A key present in both with
// different contents is an error.
func (m *Manager) Merge(other *Manager) error {
	for _, k := range other.Keys() {
		incoming := other.assets[k]
		if existing, ok := m.assets[k]; ok && existing.Checksum() != incoming.Checksum() {
			return fmt.Errorf("asset %q is defined twice with different contents", k)
		}
		m.assets[k] = incoming.clone()
	}
	return nil
}
