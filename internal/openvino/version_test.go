package openvino

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		tag       string
		expectErr bool
		want      string
	}{
		{name: "release tag", tag: "2021.4", want: "2021.4"},
		{name: "leading zero release", tag: "2020.03", expectErr: true},
		{name: "year only", tag: "2021", expectErr: true},
		{name: "patch component rejected", tag: "2021.4.1", expectErr: true},
		{name: "zero patch component rejected", tag: "2021.4.0", expectErr: true},
		{name: "v prefix rejected", tag: "v2021.4", expectErr: true},
		{name: "build metadata rejected", tag: "2021.4+build7", expectErr: true},
		{name: "prerelease rejected", tag: "2021.4-rc1", expectErr: true},
		{name: "garbage", tag: "latest", expectErr: true},
		{name: "empty", tag: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Parse(tc.tag)
			if tc.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.tag)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, v.String())
		})
	}
}

func TestCompareAndCompatible(t *testing.T) {
	v20203 := MustParse("2020.3")
	v20213 := MustParse("2021.3")
	v20214 := MustParse("2021.4")

	assert.Equal(t, -1, v20213.Compare(v20214))
	assert.Equal(t, 1, v20214.Compare(v20203))
	assert.Equal(t, -1, Version{}.Compare(v20203))
	assert.True(t, Version{}.Equal(Version{}))
	assert.Equal(t, "none", Version{}.String())

	assert.True(t, Compatible(v20213, v20214))
	assert.False(t, Compatible(v20203, v20214))
	assert.True(t, Compatible(Version{}, v20203))
}

func TestSupported(t *testing.T) {
	all := Supported()
	require.Len(t, all, 6)
	for i := 1; i < len(all); i++ {
		assert.Equal(t, -1, all[i-1].Compare(all[i]), "supported list must be ascending")
	}
	assert.True(t, IsSupported(FromParts(2021, 2)))
	assert.False(t, IsSupported(FromParts(2019, 1)))
	assert.Equal(t, "2021.4", Latest().String())
}

func TestTextRoundTrip(t *testing.T) {
	b, err := MustParse("2020.4").MarshalText()
	require.NoError(t, err)

	var v Version
	require.NoError(t, v.UnmarshalText(b))
	assert.Equal(t, "2020.4", v.String())

	require.NoError(t, v.UnmarshalText(nil))
	assert.True(t, v.IsZero())
}
