package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexCachesByContentHash(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)
	defer idx.Close()

	first, err := idx.Parse("a.cpp", []byte("int x;"))
	require.NoError(t, err)
	again, err := idx.Parse("a.cpp", []byte("int x;"))
	require.NoError(t, err)
	assert.Same(t, first, again)

	changed, err := idx.Parse("a.cpp", []byte("int y;"))
	require.NoError(t, err)
	assert.NotSame(t, first, changed)

	hits, misses := idx.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)
	assert.Equal(t, 1, idx.Len())
}

func TestIndexInvalidate(t *testing.T) {
	idx, err := NewIndex()
	require.NoError(t, err)
	defer idx.Close()

	_, err = idx.Parse("a.cpp", []byte("int x;"))
	require.NoError(t, err)

	assert.True(t, idx.Invalidate("a.cpp"))
	assert.False(t, idx.Invalidate("a.cpp"))
	assert.Equal(t, 0, idx.Len())
}

func TestIndexParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "w.h")
	require.NoError(t, os.WriteFile(path, []byte("class W {};\n"), 0o644))

	idx, err := NewIndex()
	require.NoError(t, err)
	defer idx.Close()

	tu, err := idx.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, tu.Path())

	_, err = idx.ParseFile(filepath.Join(dir, "missing.h"))
	assert.Error(t, err)
}

func TestSharedParserPool(t *testing.T) {
	p, err := GetSharedParser()
	require.NoError(t, err)

	tu, err := p.Parse("pool.cpp", []byte("int x;"))
	require.NoError(t, err)
	tu.Close()
	ReleaseParser(p)

	ReleaseParser(nil)
	closed, err := NewParser()
	require.NoError(t, err)
	closed.Close()
	ReleaseParser(closed)
}
