// Package parser is the C/C++ front end behind the reflection helpers. It
// parses sources with tree-sitter and exposes the result through the
// libclang-style cursor contract of package ast.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"github.com/standardbeagle/rht/internal/debug"
	"github.com/standardbeagle/rht/internal/errors"
	"github.com/standardbeagle/rht/internal/source"
)

// SupportedExtensions lists the file extensions handled by the C++ grammar.
// C++ uses the same parser for all C/C++ extensions.
var SupportedExtensions = []string{".cpp", ".cc", ".cxx", ".c", ".h", ".hpp", ".hh", ".hxx", ".inl"}

// IsSupported reports whether path has a C or C++ extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Parser turns C/C++ source into translation units. A Parser is not safe for
// concurrent use; give each goroutine its own.
type Parser struct {
	parser *tree_sitter.Parser
}

// NewParser creates a parser configured with the C++ grammar.
func NewParser() (*Parser, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_cpp.Language())
	if err := parser.SetLanguage(language); err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to set C++ language: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

// ParseFile reads path and parses it.
func (p *Parser) ParseFile(path string) (*TranslationUnit, error) {
	content, err := source.ReadBytes(path)
	if err != nil {
		return nil, err
	}
	return p.Parse(path, content)
}

// Parse builds a translation unit for content. Syntax errors do not fail the
// parse: like a compiler front end, the parser recovers and the unit exposes
// whatever declarations survived. The caller must Close the unit.
func (p *Parser) Parse(path string, content []byte) (tu *TranslationUnit, err error) {
	if p.parser == nil {
		return nil, errors.NewParseError(path, 0, 0, fmt.Errorf("parser is closed"))
	}

	// Add protection against tree-sitter crashes with proper error logging
	defer func() {
		if r := recover(); r != nil {
			debug.LogParse("TREE-SITTER PANIC in file %s: %v\n", path, r)
			tu = nil
			err = errors.NewParseError(path, 0, 0, fmt.Errorf("tree-sitter panic: %v", r))
		}
	}()

	// Tree-sitter keeps referring to the buffer, so the unit owns a private copy
	buffer := make([]byte, len(content))
	copy(buffer, content)

	tree := p.parser.Parse(buffer, nil)
	if tree == nil {
		return nil, errors.NewParseError(path, 0, 0, fmt.Errorf("tree-sitter returned no tree"))
	}

	tu = newTranslationUnit(path, buffer, tree)
	if root := tree.RootNode(); root.HasError() {
		if row, col, ok := firstErrorPosition(root); ok {
			debug.Infof("%s:%d:%d: syntax error, continuing with recovered tree", path, row, col)
		}
	}
	debug.LogParse("parsed %s (%d bytes)\n", path, len(buffer))
	return tu, nil
}

// firstErrorPosition locates the first ERROR or missing node, 1-based.
func firstErrorPosition(n *tree_sitter.Node) (uint, uint, bool) {
	if n.IsError() || n.IsMissing() {
		p := n.StartPosition()
		return p.Row + 1, p.Column + 1, true
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if row, col, ok := firstErrorPosition(child); ok {
			return row, col, true
		}
	}
	return 0, 0, false
}
