package parser

import (
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/rht/internal/ast"
)

// TranslationUnit is one parsed source buffer. Cursors obtained from it stay
// valid until Close.
type TranslationUnit struct {
	path    string
	content []byte
	tree    *tree_sitter.Tree
	lines   lineTable

	scopesOnce sync.Once
	scopes     scopeIndex
}

func newTranslationUnit(path string, content []byte, tree *tree_sitter.Tree) *TranslationUnit {
	return &TranslationUnit{
		path:    path,
		content: content,
		tree:    tree,
		lines:   scanLineDirectives(path, content),
	}
}

// Path returns the file name the unit was parsed under.
func (tu *TranslationUnit) Path() string {
	return tu.path
}

// Content returns the parsed buffer. Callers must not modify it.
func (tu *TranslationUnit) Content() []byte {
	return tu.content
}

// Cursor returns the root cursor of kind ast.KindTranslationUnit, or the
// null cursor once the unit is closed.
func (tu *TranslationUnit) Cursor() ast.Cursor {
	if tu.tree == nil {
		return ast.NullCursor
	}
	return tu.cursorFor(tu.tree.RootNode())
}

// HasErrors reports whether tree-sitter had to recover from syntax errors.
func (tu *TranslationUnit) HasErrors() bool {
	return tu.tree != nil && tu.tree.RootNode().HasError()
}

// Close releases the syntax tree.
func (tu *TranslationUnit) Close() {
	if tu.tree != nil {
		tu.tree.Close()
		tu.tree = nil
	}
}

func (tu *TranslationUnit) text(n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(tu.content[n.StartByte():n.EndByte()])
}

// nameText is the spelling of a declared name. A conversion operator is
// spelled without its parameter list: "operator bool".
func (tu *TranslationUnit) nameText(n *tree_sitter.Node) string {
	if n == nil || n.Kind() != nodeOperatorCast {
		return tu.text(n)
	}
	end := n.EndByte()
	if d := field(n, "declarator"); d != nil {
		end = d.StartByte()
	}
	return collapseSpace(string(tu.content[n.StartByte():end]))
}

func (tu *TranslationUnit) index() *scopeIndex {
	tu.scopesOnce.Do(func() {
		tu.scopes = buildScopeIndex(tu)
	})
	return &tu.scopes
}
