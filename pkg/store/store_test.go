package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetMissing(t *testing.T) {
	m := NewMemory()

	_, err := m.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_RoundTrip(t *testing.T) {
	m := NewMemory()

	require.NoError(t, m.Put("k", []byte{0x01, 0x02}))

	got, err := m.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, got)
}

func TestMemory_Overwrite(t *testing.T) {
	m := NewMemory()

	require.NoError(t, m.Put("k", []byte{1}))
	require.NoError(t, m.Put("k", []byte{2}))

	got, err := m.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, got)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	m := NewMemory()

	value := []byte{1, 2, 3}
	require.NoError(t, m.Put("k", value))
	value[0] = 99

	got, err := m.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	got[1] = 99
	again, err := m.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, again)
}

func TestFile_MissingFileIsEmpty(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	_, err = f.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFile_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.yaml")

	f, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Put("warning", []byte{0xAC, 0x0D}))
	require.NoError(t, f.Put("btoff", []byte{0xE4, 0x0C}))

	reopened, err := NewFile(path)
	require.NoError(t, err)

	got, err := reopened.Get("warning")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAC, 0x0D}, got)

	got, err = reopened.Get("btoff")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xE4, 0x0C}, got)
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.yaml")
	require.NoError(t, os.WriteFile(path, []byte("]not yaml["), 0644))

	_, err := NewFile(path)
	assert.Error(t, err)
}
