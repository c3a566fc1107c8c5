// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the NeuralNetwork node, which runs inference on the
// device with a precompiled model blob.
//
// How configuration flows
//
// The caller configures the node through its setters; each setter validates
// its argument and either applies it or returns an error without touching the
// node. When the pipeline is compiled, the builder asks the node for a value
// snapshot of its properties, its runtime version requirement and its assets.
// Nothing the builder receives aliases the node's own state.
package node

import (
	"fmt"

	"github.com/vk/nnpipe/internal/asset"
	"github.com/vk/nnpipe/internal/blob"
	"github.com/vk/nnpipe/internal/datatype"
	"github.com/vk/nnpipe/internal/nnerr"
	"github.com/vk/nnpipe/internal/openvino"
	"github.com/vk/nnpipe/internal/port"
)

// NeuralNetworkName is the variant name of the inference node.
const NeuralNetworkName = "NeuralNetwork"

const (
	// MaxInferenceThreads is the largest explicit inference thread count.
	MaxInferenceThreads = 2
	// MaxNCEPerInferenceThread is the largest explicit number of compute
	// engines a single inference thread may use.
	MaxNCEPerInferenceThread = 2
)

// Default settings of the "in" port.
const (
	DefaultInputBlocking  = true
	DefaultInputQueueSize = 5
)

// State is the configuration state of an inference node.
type State int

const (
	// Unconfigured nodes have no blob and no runtime requirement.
	Unconfigured State = iota
	// Configured nodes have a valid blob.
	Configured
)

func (s State) String() string {
	if s == Configured {
		return "configured"
	}
	return "unconfigured"
}

// NeuralNetworkProperties is the serialized configuration of a NeuralNetwork
// node. Zero counts mean Auto.
type NeuralNetworkProperties struct {
	BlobPath        string `msgpack:"blobPath"`
	BlobURI         string `msgpack:"blobUri"`
	BlobSize        int64  `msgpack:"blobSize"`
	NumFrames       int    `msgpack:"numFrames"`
	NumThreads      int    `msgpack:"numThreads"`
	NumNCEPerThread int    `msgpack:"numNCEPerThread"`
}

// NeuralNetwork runs inference on the messages it receives on "in". Results
// are sent on "out"; the message that was inferred upon is forwarded on
// "passthrough", which is useful when "in" is non-blocking and drops frames.
type NeuralNetwork struct {
	Base

	loader  asset.Loader
	props   NeuralNetworkProperties
	runtime openvino.Version

	in          *port.Input
	out         *port.Output
	passthrough *port.Output
}

// NewNeuralNetwork creates an unconfigured inference node. Blob files are
// read through loader; a nil loader reads from the local filesystem.
func NewNeuralNetwork(id ID, loader asset.Loader) *NeuralNetwork {
	if loader == nil {
		loader = asset.OSLoader{}
	}
	return &NeuralNetwork{
		Base:   NewBase(id),
		loader: loader,
		in: port.NewInput(id, "in", port.SingleConsumer, DefaultInputBlocking, DefaultInputQueueSize,
			port.Hierarchy{Kind: datatype.Buffer, Descendants: true}),
		out: port.NewOutput(id, "out", port.MultiConsumer,
			port.Hierarchy{Kind: datatype.InferenceResult}),
		passthrough: port.NewOutput(id, "passthrough", port.MultiConsumer,
			port.Hierarchy{Kind: datatype.Buffer, Descendants: true}),
	}
}

// Name implements Node.
func (n *NeuralNetwork) Name() string { return NeuralNetworkName }

// In is the port receiving data to infer upon.
func (n *NeuralNetwork) In() *port.Input { return n.in }

// Out is the port carrying inference results.
func (n *NeuralNetwork) Out() *port.Output { return n.out }

// Passthrough is the port forwarding each message inference ran on.
func (n *NeuralNetwork) Passthrough() *port.Output { return n.passthrough }

// Inputs implements Node.
func (n *NeuralNetwork) Inputs() []*port.Input { return []*port.Input{n.in} }

// Outputs implements Node.
func (n *NeuralNetwork) Outputs() []*port.Output { return []*port.Output{n.out, n.passthrough} }

// SetBlobPath attaches the model blob at path to the node. The blob is read,
// its header validated, and its contents stored as the node's blob asset.
// On error the node is left exactly as it was.
func (n *NeuralNetwork) SetBlobPath(path string) error {
	data, err := n.loader.Load(path)
	if err != nil {
		return fmt.Errorf("blob %q: %w", path, err)
	}
	header, err := blob.ParseHeader(data)
	if err != nil {
		return fmt.Errorf("blob %q: %w", path, err)
	}

	a := n.assets.Set(asset.NodeBlobKey(n.id), data)
	n.props.BlobPath = path
	n.props.BlobURI = a.URI()
	n.props.BlobSize = int64(len(data))
	n.runtime = header.RuntimeVersion()
	return nil
}

// SetNumPoolFrames sets how many frame buffers the device preallocates for
// the node's outputs. Auto sizes the pool from the connected queue depths.
func (n *NeuralNetwork) SetNumPoolFrames(numFrames int) error {
	if numFrames < 0 {
		return fmt.Errorf("pool frames %d must not be negative: %w", numFrames, nnerr.ErrInvalidArgument)
	}
	n.props.NumFrames = numFrames
	return nil
}

// SetNumInferenceThreads sets how many device threads run the network:
// Auto, 1 or 2.
func (n *NeuralNetwork) SetNumInferenceThreads(numThreads int) error {
	if numThreads < Auto || numThreads > MaxInferenceThreads {
		return fmt.Errorf("inference threads %d outside [0, %d]: %w", numThreads, MaxInferenceThreads, nnerr.ErrInvalidArgument)
	}
	n.props.NumThreads = numThreads
	return nil
}

// SetNumNCEPerInferenceThread sets how many compute engines each inference
// thread uses: Auto, 1 or 2.
func (n *NeuralNetwork) SetNumNCEPerInferenceThread(numNCE int) error {
	if numNCE < Auto || numNCE > MaxNCEPerInferenceThread {
		return fmt.Errorf("compute engines per thread %d outside [0, %d]: %w", numNCE, MaxNCEPerInferenceThread, nnerr.ErrInvalidArgument)
	}
	n.props.NumNCEPerThread = numNCE
	return nil
}

// NumInferenceThreads returns the configured thread count; 0 means Auto.
func (n *NeuralNetwork) NumInferenceThreads() int { return n.props.NumThreads }

// NumNCEPerInferenceThread returns the configured engines per thread; 0 means Auto.
func (n *NeuralNetwork) NumNCEPerInferenceThread() int { return n.props.NumNCEPerThread }

// NumPoolFrames returns the configured pool size; 0 means Auto.
func (n *NeuralNetwork) NumPoolFrames() int { return n.props.NumFrames }

// BlobPath returns the path of the attached blob, or "" if none is set.
func (n *NeuralNetwork) BlobPath() string { return n.props.BlobPath }

// State reports whether a blob has been attached.
func (n *NeuralNetwork) State() State {
	if n.runtime.IsZero() {
		return Unconfigured
	}
	return Configured
}

// Properties implements Node. The returned value is a NeuralNetworkProperties.
func (n *NeuralNetwork) Properties() any {
	return n.props
}

// RequiredRuntimeVersion implements Node.
func (n *NeuralNetwork) RequiredRuntimeVersion() (openvino.Version, bool) {
	if n.runtime.IsZero() {
		return openvino.Version{}, false
	}
	return n.runtime, true
}

// Validate implements Validator.
func (n *NeuralNetwork) Validate() error {
	if n.State() != Configured {
		return fmt.Errorf("%s node %d has no blob: %w", NeuralNetworkName, n.id, nnerr.ErrInvalidArgument)
	}
	return nil
}

// Clone implements Node.
func (n *NeuralNetwork) Clone(id ID) Node {
	c := &NeuralNetwork{
		Base:        n.cloneFor(id),
		loader:      n.loader,
		props:       n.props,
		runtime:     n.runtime,
		in:          n.in.Clone(id),
		out:         n.out.Clone(id),
		passthrough: n.passthrough.Clone(id),
	}
	if c.props.BlobURI != "" {
		c.props.BlobURI = asset.URIPrefix + asset.NodeBlobKey(id)
	}
	return c
}
