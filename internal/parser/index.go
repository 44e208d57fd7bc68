package parser

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/rht/internal/debug"
	"github.com/standardbeagle/rht/internal/source"
)

type indexEntry struct {
	hash uint64
	tu   *TranslationUnit
}

// Index caches translation units by path. A file is parsed again only when
// its content hash changes. Units handed out by an Index belong to it: do not
// Close them, and stop using a unit once its file is re-parsed or invalidated.
type Index struct {
	mu     sync.Mutex
	parser *Parser
	units  map[string]indexEntry

	hits   int
	misses int
}

// NewIndex creates an empty index with its own parser.
func NewIndex() (*Index, error) {
	p, err := NewParser()
	if err != nil {
		return nil, err
	}
	return &Index{parser: p, units: make(map[string]indexEntry)}, nil
}

// ParseFile reads path and returns its translation unit.
func (idx *Index) ParseFile(path string) (*TranslationUnit, error) {
	content, err := source.ReadBytes(path)
	if err != nil {
		return nil, err
	}
	return idx.Parse(path, content)
}

// Parse returns the cached unit for path when content is unchanged, and
// parses it otherwise.
func (idx *Index) Parse(path string, content []byte) (*TranslationUnit, error) {
	hash := xxhash.Sum64(content)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if entry, ok := idx.units[path]; ok {
		if entry.hash == hash {
			idx.hits++
			return entry.tu, nil
		}
		entry.tu.Close()
		delete(idx.units, path)
	}

	idx.misses++
	tu, err := idx.parser.Parse(path, content)
	if err != nil {
		return nil, err
	}
	idx.units[path] = indexEntry{hash: hash, tu: tu}
	debug.LogParse("index: cached %s (%016x)\n", path, hash)
	return tu, nil
}

// Invalidate drops the unit for path. It reports whether one was cached.
func (idx *Index) Invalidate(path string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	entry, ok := idx.units[path]
	if ok {
		entry.tu.Close()
		delete(idx.units, path)
	}
	return ok
}

// Len returns the number of cached units.
func (idx *Index) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.units)
}

// Stats returns cache hits and misses since the index was created.
func (idx *Index) Stats() (hits, misses int) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.hits, idx.misses
}

// Close releases every cached unit and the parser.
func (idx *Index) Close() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for path, entry := range idx.units {
		entry.tu.Close()
		delete(idx.units, path)
	}
	idx.parser.Close()
}
