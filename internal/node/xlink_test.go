package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nnpipe/internal/nnerr"
)

func TestXLinkIn(t *testing.T) {
	x := NewXLinkIn(4)
	require.ErrorIs(t, x.Validate(), nnerr.ErrInvalidArgument)

	require.ErrorIs(t, x.SetStreamName(""), nnerr.ErrInvalidArgument)
	require.ErrorIs(t, x.SetMaxDataSize(0), nnerr.ErrInvalidArgument)
	require.ErrorIs(t, x.SetNumFrames(-1), nnerr.ErrInvalidArgument)

	require.NoError(t, x.SetStreamName("frames"))
	require.NoError(t, x.SetMaxDataSize(1024))
	require.NoError(t, x.SetNumFrames(2))
	require.NoError(t, x.Validate())

	assert.Equal(t, XLinkInProperties{StreamName: "frames", MaxDataSize: 1024, NumFrames: 2}, x.Properties())
	assert.Empty(t, x.Inputs())
	_, ok := x.RequiredRuntimeVersion()
	assert.False(t, ok)

	c := x.Clone(5).(*XLinkIn)
	require.NoError(t, c.SetStreamName("other"))
	assert.Equal(t, "frames", x.StreamName())
	assert.Equal(t, int64(5), c.Out().Owner())
}

func TestXLinkOut(t *testing.T) {
	x := NewXLinkOut(6)
	assert.Equal(t, XLinkOutProperties{MaxFPSLimit: FPSUnlimited}, x.Properties())

	require.ErrorIs(t, x.SetFPSLimit(0), nnerr.ErrInvalidArgument)
	require.ErrorIs(t, x.SetFPSLimit(-3), nnerr.ErrInvalidArgument)
	require.NoError(t, x.SetFPSLimit(FPSUnlimited))
	require.NoError(t, x.SetFPSLimit(15))
	x.SetMetadataOnly(true)
	require.NoError(t, x.SetStreamName("detections"))

	assert.Equal(t, XLinkOutProperties{StreamName: "detections", MaxFPSLimit: 15, MetadataOnly: true}, x.Properties())
	assert.True(t, x.In().Blocking())
	assert.Equal(t, DefaultXLinkOutSize, x.In().QueueSize())

	c := x.Clone(8).(*XLinkOut)
	c.In().SetBlocking(false)
	assert.True(t, x.In().Blocking())
	assert.Equal(t, int64(8), c.ID())
}
