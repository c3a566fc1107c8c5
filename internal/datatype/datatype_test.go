package datatype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSubclassOf(t *testing.T) {
	testCases := []struct {
		name   string
		child  Kind
		parent Kind
		want   bool
	}{
		{name: "same kind", child: Buffer, parent: Buffer, want: true},
		{name: "frame is a buffer", child: ImgFrame, parent: Buffer, want: true},
		{name: "inference result is a buffer", child: InferenceResult, parent: Buffer, want: true},
		{name: "buffer is not a frame", child: Buffer, parent: ImgFrame, want: false},
		{name: "siblings are unrelated", child: ImgFrame, parent: InferenceResult, want: false},
		{name: "unknown kind", child: Kind(99), parent: Buffer, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsSubclassOf(tc.child, tc.parent))
		})
	}
}

func TestString(t *testing.T) {
	names := map[Kind]string{
		Buffer:           "Buffer",
		ImgFrame:         "ImgFrame",
		InferenceResult:  "InferenceResult",
		ImageManipConfig: "ImageManipConfig",
		Tracklets:        "Tracklets",
	}
	for k, name := range names {
		assert.Equal(t, name, k.String())
		assert.True(t, k.Valid())
	}

	assert.Equal(t, "Kind(42)", Kind(42).String())
	assert.False(t, Kind(42).Valid())
}
