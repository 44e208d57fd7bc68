package astutil

import (
	"github.com/standardbeagle/rht/internal/ast"
)

// fakeCursor is an in-memory cursor tree used to drive the helpers without a
// real parser.
type fakeCursor struct {
	kind     ast.Kind
	name     string
	parent   *fakeCursor
	children []*fakeCursor
	file     string
	line     uint
	column   uint

	// handles records every string handed out so tests can check disposal
	handles *[]ast.String
}

func newTree() *fakeCursor {
	return &fakeCursor{kind: ast.KindTranslationUnit, name: "unit.cpp", handles: new([]ast.String)}
}

// add appends a child whose semantic parent is also c.
func (c *fakeCursor) add(kind ast.Kind, name string) *fakeCursor {
	child := &fakeCursor{kind: kind, name: name, parent: c, handles: c.handles}
	c.children = append(c.children, child)
	return child
}

func (c *fakeCursor) at(file string, line, column uint) *fakeCursor {
	c.file, c.line, c.column = file, line, column
	return c
}

func (c *fakeCursor) newString(s string) ast.String {
	str := ast.NewString(s)
	*c.handles = append(*c.handles, str)
	return str
}

func (c *fakeCursor) Kind() ast.Kind { return c.kind }

func (c *fakeCursor) SemanticParent() ast.Cursor {
	if c.parent == nil {
		return ast.NullCursor
	}
	return c.parent
}

func (c *fakeCursor) DisplayName() ast.String { return c.newString(c.name) }

func (c *fakeCursor) Location() ast.Location { return fakeLocation{c} }

func (c *fakeCursor) VisitChildren(visitor ast.CursorVisitor, data ast.ClientData) bool {
	for _, child := range c.children {
		switch visitor(child, c, data) {
		case ast.ChildVisitBreak:
			return true
		case ast.ChildVisitRecurse:
			if child.VisitChildren(visitor, data) {
				return true
			}
		}
	}
	return false
}

func (c *fakeCursor) Equal(other ast.Cursor) bool {
	o, ok := other.(*fakeCursor)
	return ok && o == c
}

type fakeLocation struct{ c *fakeCursor }

func (l fakeLocation) PresumedLocation() (ast.String, uint, uint) {
	return l.c.newString(l.c.file), l.c.line, l.c.column
}

func (l fakeLocation) SpellingLocation() (ast.String, uint, uint) {
	return l.c.newString(l.c.file), l.c.line, l.c.column
}
