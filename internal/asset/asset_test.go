package asset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/nnpipe/internal/nnerr"
)

func TestOSLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.blob")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0600))

	data, err := OSLoader{}.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	missing := filepath.Join(dir, "missing.blob")
	_, err = OSLoader{}.Load(missing)
	require.ErrorIs(t, err, nnerr.ErrResourceNotFound)
	assert.Contains(t, err.Error(), missing)

	_, err = OSLoader{}.Load(dir)
	require.ErrorIs(t, err, nnerr.ErrResourceNotFound)
}

func TestManager_CopiesData(t *testing.T) {
	m := NewManager()
	src := []byte{1, 2, 3}
	m.Set(NodeBlobKey(4), src)
	src[0] = 9

	all := m.All()
	require.Len(t, all, 1)
	a := all[0]
	assert.Equal(t, []byte{1, 2, 3}, a.Data)
	assert.Equal(t, DefaultAlignment, a.Alignment)
	assert.Equal(t, "asset:node/4/__blob", a.URI())

	a.Data[1] = 9
	assert.Equal(t, []byte{1, 2, 3}, m.All()[0].Data)
}

func TestManager_Merge(t *testing.T) {
	m := NewManager()
	m.Set("b", []byte("bee"))
	m.Set("a", []byte("ay"))
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	assert.Equal(t, 2, m.Len())

	other := NewManager()
	other.Set("c", []byte("sea"))
	other.Set("a", []byte("ay"))
	require.NoError(t, m.Merge(other))
	assert.Equal(t, []string{"a", "b", "c"}, m.Keys())

	conflict := NewManager()
	conflict.Set("b", []byte("different"))
	err := m.Merge(conflict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"b"`)
}

func TestChecksum(t *testing.T) {
	a := Asset{Data: []byte("same")}
	b := Asset{Data: []byte("same")}
	c := Asset{Data: []byte("other")}
	assert.Equal(t, a.Checksum(), b.Checksum())
	assert.NotEqual(t, a.Checksum(), c.Checksum())
}
