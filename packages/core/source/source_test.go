package source

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_ReadsOnce(t *testing.T) {
	reads := 0
	s := New("req.reqq", WithReader(func(path string) ([]byte, error) {
		reads++
		return []byte("GET https://example.com"), nil
	}))

	assert.False(t, s.Loaded())

	first, err := s.Text()
	require.NoError(t, err)
	second, err := s.Text()
	require.NoError(t, err)

	assert.Equal(t, 1, reads)
	assert.Equal(t, first, second)
	assert.True(t, s.Loaded())
}

func TestSource_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.reqq")
	require.NoError(t, os.WriteFile(path, []byte("GET https://example.com\n"), 0644))

	s := New(path)
	text, err := s.Text()
	require.NoError(t, err)
	assert.Equal(t, "GET https://example.com\n", text)

	// Later edits are not observed by an already-loaded source.
	require.NoError(t, os.WriteFile(path, []byte("POST https://example.com\n"), 0644))
	text, err = s.Text()
	require.NoError(t, err)
	assert.Equal(t, "GET https://example.com\n", text)
}

func TestSource_MissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing.reqq"))

	_, err := s.Text()
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.False(t, s.Loaded())
}

func TestSource_NewLoaded(t *testing.T) {
	s := NewLoaded("/does/not/exist", "inline")
	text, err := s.Text()
	require.NoError(t, err)
	assert.Equal(t, "inline", text)
}
