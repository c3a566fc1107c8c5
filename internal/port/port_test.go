package port

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nnpipe/internal/datatype"
	"github.com/vk/nnpipe/internal/nnerr"
)

func TestOutputCanConnect(t *testing.T) {
	testCases := []struct {
		name     string
		produced []Hierarchy
		accepted []Hierarchy
		want     bool
	}{
		{
			name:     "exact kind",
			produced: []Hierarchy{{Kind: datatype.InferenceResult}},
			accepted: []Hierarchy{{Kind: datatype.InferenceResult}},
			want:     true,
		},
		{
			name:     "descendant accepted",
			produced: []Hierarchy{{Kind: datatype.ImgFrame}},
			accepted: []Hierarchy{{Kind: datatype.Buffer, Descendants: true}},
			want:     true,
		},
		{
			name:     "descendant rejected without flag",
			produced: []Hierarchy{{Kind: datatype.ImgFrame}},
			accepted: []Hierarchy{{Kind: datatype.Buffer}},
			want:     false,
		},
		{
			name:     "parent never satisfies a child input",
			produced: []Hierarchy{{Kind: datatype.Buffer, Descendants: true}},
			accepted: []Hierarchy{{Kind: datatype.ImgFrame, Descendants: true}},
			want:     false,
		},
		{
			name:     "one of many matches",
			produced: []Hierarchy{{Kind: datatype.Tracklets}, {Kind: datatype.InferenceResult}},
			accepted: []Hierarchy{{Kind: datatype.InferenceResult}},
			want:     true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := NewOutput(1, "out", MultiConsumer, tc.produced...)
			in := NewInput(2, "in", SingleConsumer, true, 5, tc.accepted...)
			assert.Equal(t, tc.want, out.CanConnect(in))
		})
	}
}

func TestInputSettings(t *testing.T) {
	in := NewInput(3, "in", SingleConsumer, true, 5, Hierarchy{Kind: datatype.Buffer, Descendants: true})

	in.SetBlocking(false)
	require.NoError(t, in.SetQueueSize(2))

	err := in.SetQueueSize(0)
	require.ErrorIs(t, err, nnerr.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "queue size 0")

	d := in.Descriptor()
	assert.Equal(t, Descriptor{
		Name:      "in",
		Direction: In,
		QueueKind: SingleConsumer,
		Blocking:  false,
		QueueSize: 2,
		Kinds:     []Hierarchy{{Kind: datatype.Buffer, Descendants: true}},
	}, d)
	assert.Equal(t, Ref{Node: 3, Name: "in"}, in.Ref())
}

func TestClonesShareNothing(t *testing.T) {
	in := NewInput(1, "in", SingleConsumer, true, 5, Hierarchy{Kind: datatype.Buffer, Descendants: true})
	inClone := in.Clone(7)
	require.NoError(t, inClone.SetQueueSize(9))
	inClone.accepted[0].Kind = datatype.Tracklets

	assert.Equal(t, int64(7), inClone.Owner())
	assert.Equal(t, 5, in.QueueSize())
	assert.Equal(t, datatype.Buffer, in.Accepted()[0].Kind)

	out := NewOutput(1, "out", MultiConsumer, Hierarchy{Kind: datatype.InferenceResult})
	outClone := out.Clone(7)
	outClone.possible[0].Kind = datatype.Buffer
	assert.Equal(t, datatype.InferenceResult, out.Produced()[0].Kind)
	assert.Equal(t, "7.out", outClone.Ref().String())
}
