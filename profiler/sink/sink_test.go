/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package sink

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json")
	s, err := NewFile(path)
	require.NoError(t, err)

	_, err = s.Write([]byte("[1,2,3]"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[1,2,3]", string(b))
}

func TestGzipFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json.gz")
	s, err := NewGzipFile(path)
	require.NoError(t, err)

	_, err = s.Write([]byte("[4,5,6]"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	got, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, "[4,5,6]", string(got))
}
