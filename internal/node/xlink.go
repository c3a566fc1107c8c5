// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package node

import (
	"fmt"

	"github.com/vk/nnpipe/internal/datatype"
	"github.com/vk/nnpipe/internal/nnerr"
	"github.com/vk/nnpipe/internal/openvino"
	"github.com/vk/nnpipe/internal/port"
)

const (
	XLinkInName  = "XLinkIn"
	XLinkOutName = "XLinkOut"
)

const (
	DefaultMaxDataSize  = 5 * 1024 * 1024
	DefaultXLinkFrames  = 8
	DefaultXLinkOutSize = 8
	// FPSUnlimited disables rate limiting on an XLinkOut stream.
	FPSUnlimited = -1.0
)

// XLinkInProperties is the serialized configuration of an XLinkIn node.
type XLinkInProperties struct {
	StreamName  string `msgpack:"streamName"`
	MaxDataSize int    `msgpack:"maxDataSize"`
	NumFrames   int    `msgpack:"numFrames"`
}

// XLinkIn streams messages sent by the host into the pipeline.
type XLinkIn struct {
	Base
	props XLinkInProperties
	out   *port.Output
}

// NewXLinkIn creates a host-to-device stream node.
func NewXLinkIn(id ID) *XLinkIn {
	return &XLinkIn{
		Base:  NewBase(id),
		props: XLinkInProperties{MaxDataSize: DefaultMaxDataSize, NumFrames: DefaultXLinkFrames},
		out: port.NewOutput(id, "out", port.MultiConsumer,
			port.Hierarchy{Kind: datatype.Buffer, Descendants: true}),
	}
}

func (x *XLinkIn) Name() string            { return XLinkInName }
func (x *XLinkIn) Out() *port.Output       { return x.out }
func (x *XLinkIn) Inputs() []*port.Input   { return nil }
func (x *XLinkIn) Outputs() []*port.Output { return []*port.Output{x.out} }
func (x *XLinkIn) Properties() any         { return x.props }
func (x *XLinkIn) StreamName() string      { return x.props.StreamName }

// RequiredRuntimeVersion implements Node; stream nodes need no particular runtime.
func (x *XLinkIn) RequiredRuntimeVersion() (openvino.Version, bool) {
	return openvino.Version{}, false
}

// SetStreamName names the host stream feeding the node.
func (x *XLinkIn) SetStreamName(name string) error {
	if name == "" {
		return fmt.Errorf("%s stream name must not be empty: %w", XLinkInName, nnerr.ErrInvalidArgument)
	}
	x.props.StreamName = name
	return nil
}

// SetMaxDataSize sets the largest message, in bytes, the stream accepts.
func (x *XLinkIn) SetMaxDataSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%s max data size %d must be positive: %w", XLinkInName, size, nnerr.ErrInvalidArgument)
	}
	x.props.MaxDataSize = size
	return nil
}

// SetNumFrames sets how many messages the device buffers for the stream.
func (x *XLinkIn) SetNumFrames(n int) error {
	if n <= 0 {
		return fmt.Errorf("%s frame count %d must be positive: %w", XLinkInName, n, nnerr.ErrInvalidArgument)
	}
	x.props.NumFrames = n
	return nil
}

// Validate implements Validator.
func (x *XLinkIn) Validate() error {
	if x.props.StreamName == "" {
		return fmt.Errorf("%s node %d has no stream name: %w", XLinkInName, x.id, nnerr.ErrInvalidArgument)
	}
	return nil
}

// Clone implements Node.
func (x *XLinkIn) Clone(id ID) Node {
	return &XLinkIn{Base: x.cloneFor(id), props: x.props, out: x.out.Clone(id)}
}

// XLinkOutProperties is the serialized configuration of an XLinkOut node.
type XLinkOutProperties struct {
	StreamName   string  `msgpack:"streamName"`
	MaxFPSLimit  float64 `msgpack:"maxFpsLimit"`
	MetadataOnly bool    `msgpack:"metadataOnly"`
}

// XLinkOut streams the messages it receives back to the host.
type XLinkOut struct {
	Base
	props XLinkOutProperties
	in    *port.Input
}

// NewXLinkOut creates a device-to-host stream node.
func NewXLinkOut(id ID) *XLinkOut {
	return &XLinkOut{
		Base:  NewBase(id),
		props: XLinkOutProperties{MaxFPSLimit: FPSUnlimited},
		in: port.NewInput(id, "in", port.SingleConsumer, true, DefaultXLinkOutSize,
			port.Hierarchy{Kind: datatype.Buffer, Descendants: true}),
	}
}

func (x *XLinkOut) Name() string            { return XLinkOutName }
func (x *XLinkOut) In() *port.Input         { return x.in }
func (x *XLinkOut) Inputs() []*port.Input   { return []*port.Input{x.in} }
func (x *XLinkOut) Outputs() []*port.Output { return nil }
func (x *XLinkOut) Properties() any         { return x.props }
func (x *XLinkOut) StreamName() string      { return x.props.StreamName }

// RequiredRuntimeVersion implements Node; stream nodes need no particular runtime.
func (x *XLinkOut) RequiredRuntimeVersion() (openvino.Version, bool) {
	return openvino.Version{}, false
}

// SetStreamName names the host stream the node writes to.
func (x *XLinkOut) SetStreamName(name string) error {
	if name == "" {
		return fmt.Errorf("%s stream name must not be empty: %w", XLinkOutName, nnerr.ErrInvalidArgument)
	}
	x.props.StreamName = name
	return nil
}

// SetFPSLimit caps the message rate sent to the host. FPSUnlimited removes the cap.
func (x *XLinkOut) SetFPSLimit(fps float64) error {
	if fps != FPSUnlimited && fps <= 0 {
		return fmt.Errorf("%s fps limit %v must be positive or unlimited: %w", XLinkOutName, fps, nnerr.ErrInvalidArgument)
	}
	x.props.MaxFPSLimit = fps
	return nil
}

// SetMetadataOnly sends message metadata without the payload.
func (x *XLinkOut) SetMetadataOnly(metadataOnly bool) {
	x.props.MetadataOnly = metadataOnly
}

// Validate implements Validator.
func (x *XLinkOut) Validate() error {
	if x.props.StreamName == "" {
		return fmt.Errorf("%s node %d has no stream name: %w", XLinkOutName, x.id, nnerr.ErrInvalidArgument)
	}
	return nil
}

// Clone implements Node.
func (x *XLinkOut) Clone(id ID) Node {
	return &XLinkOut{Base: x.cloneFor(id), props: x.props, in: x.in.Clone(id)}
}
