package parser

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/rht/internal/ast"
)

// cursor is the ast.Cursor implementation. Most cursors wrap one syntax node.
// Declarations that introduce several names ("int a, b;") get one cursor per
// declarator, and "namespace a::b" gets one cursor per segment.
type cursor struct {
	tu    *TranslationUnit
	node  *tree_sitter.Node
	decl  *tree_sitter.Node // declarator within node, for declarations
	depth int               // segment of a nested namespace, 0 = innermost
	kind  ast.Kind
}

func (tu *TranslationUnit) cursorFor(n *tree_sitter.Node) *cursor {
	return tu.newCursor(n, nil, 0)
}

func (tu *TranslationUnit) newCursor(n, decl *tree_sitter.Node, depth int) *cursor {
	c := &cursor{tu: tu, node: n, decl: decl, depth: depth}
	c.kind = c.classify()
	return c
}

func (c *cursor) Kind() ast.Kind { return c.kind }

func (c *cursor) SemanticParent() ast.Cursor {
	return c.semanticParent()
}

func (c *cursor) DisplayName() ast.String {
	return ast.NewString(c.displayName())
}

func (c *cursor) Location() ast.Location {
	if c.kind == ast.KindTranslationUnit {
		return location{tu: c.tu}
	}
	n := c.nameNode()
	if n == nil {
		n = c.node
	}
	p := n.StartPosition()
	return location{tu: c.tu, row: p.Row + 1, column: p.Column + 1, valid: true}
}

func (c *cursor) VisitChildren(visitor ast.CursorVisitor, data ast.ClientData) bool {
	for _, child := range c.children() {
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

func (c *cursor) Equal(other ast.Cursor) bool {
	o, ok := other.(*cursor)
	if !ok {
		return false
	}
	return c.tu == o.tu && c.node.Id() == o.node.Id() && c.depth == o.depth && sameNode(c.decl, o.decl)
}

func sameNode(a, b *tree_sitter.Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Id() == b.Id()
}

func (c *cursor) String() string {
	return fmt.Sprintf("%s %q at %s", c.kind, c.displayName(), c.spellingString())
}

func (c *cursor) spellingString() string {
	name, line, column := c.Location().SpellingLocation()
	defer name.Dispose()
	return fmt.Sprintf("%s:%d:%d", name.CString(), line, column)
}

func (c *cursor) classify() ast.Kind {
	n := c.node
	switch n.Kind() {
	case nodeTranslationUnit:
		return ast.KindTranslationUnit
	case nodeNamespace:
		return ast.KindNamespace
	case nodeClass:
		return recordKind(n, ast.KindClassDecl)
	case nodeStruct:
		return recordKind(n, ast.KindStructDecl)
	case nodeUnion:
		return recordKind(n, ast.KindUnionDecl)
	case nodeEnum:
		return ast.KindEnumDecl
	case nodeEnumerator:
		return ast.KindEnumConstantDecl
	case nodeFunctionDefinition:
		return c.functionKind()
	case nodeDeclaration, nodeFieldDeclaration:
		if c.decl == nil {
			return ast.KindInvalid
		}
		if _, fn := unwrapDeclarator(c.decl); fn != nil {
			return c.functionKind()
		}
		return c.variableKind()
	case nodeTypeDefinition:
		return ast.KindTypedefDecl
	case nodeAliasDeclaration:
		return ast.KindTypeAliasDecl
	case nodeParameter, nodeOptionalParameter, nodeVariadicParameter:
		return ast.KindParmDecl
	case nodeLinkageSpec:
		return ast.KindLinkageSpec
	case nodeUsingDeclaration:
		if hasToken(n, "namespace") {
			return ast.KindUsingDirective
		}
		return ast.KindUsingDeclaration
	case nodeInclude:
		return ast.KindInclusionDirective
	case nodeDefine, nodeFunctionDefine:
		return ast.KindMacroDefinition
	case nodeAccessSpecifier:
		return ast.KindCXXAccessSpecifier
	case nodeCompoundStatement:
		return ast.KindCompoundStmt
	default:
		return ast.KindInvalid
	}
}

func recordKind(n *tree_sitter.Node, plain ast.Kind) ast.Kind {
	if templateOf(n) != nil {
		return ast.KindClassTemplate
	}
	return plain
}

// functionKind tells free functions from members. Members are recognized by
// their semantic parent, so out-of-line definitions such as "void A::f()"
// are methods too.
func (c *cursor) functionKind() ast.Kind {
	if tmpl := templateOf(c.node); tmpl != nil && !c.classTemplateMember(tmpl) {
		return ast.KindFunctionTemplate
	}
	name := c.tu.unqualified(c.qualifiedNameNode())
	if name != nil && name.Kind() == nodeDestructorName {
		return ast.KindDestructor
	}
	parent, ok := c.enclosingScope().(*cursor)
	if !ok {
		return ast.KindFunctionDecl
	}
	switch parent.kind {
	case ast.KindClassDecl, ast.KindStructDecl, ast.KindUnionDecl, ast.KindClassTemplate:
		if name != nil && c.tu.text(name) == c.tu.text(c.tu.recordNameNode(parent.node)) {
			return ast.KindConstructor
		}
		return ast.KindCXXMethod
	default:
		return ast.KindFunctionDecl
	}
}

// classTemplateMember reports an out-of-line member of a class template,
// "template<class T> void V<T>::f()": a method, not a function template. A
// member template carries a second template header and stays a template.
func (c *cursor) classTemplateMember(tmpl *tree_sitter.Node) bool {
	if outer := tmpl.Parent(); outer != nil && outer.Kind() == nodeTemplateDeclaration {
		return false
	}
	var last *tree_sitter.Node
	for n := c.qualifiedNameNode(); n != nil && n.Kind() == nodeQualifiedIdentifier; n = field(n, "name") {
		if scope := field(n, "scope"); scope != nil {
			last = scope
		}
	}
	return last != nil && last.Kind() == nodeTemplateType
}

// variableKind separates data members from variables. Static data members
// are variables, as in clang.
func (c *cursor) variableKind() ast.Kind {
	parent, ok := c.enclosingScope().(*cursor)
	if ok && parent.kind.IsRecord() || ok && parent.kind == ast.KindClassTemplate {
		if c.tu.hasStorageClass(c.node, "static") {
			return ast.KindVarDecl
		}
		return ast.KindFieldDecl
	}
	return ast.KindVarDecl
}

// qualifiedNameNode returns the declared name as spelled, which may carry a
// qualifier ("A::B::f").
func (c *cursor) qualifiedNameNode() *tree_sitter.Node {
	switch c.node.Kind() {
	case nodeClass, nodeStruct, nodeUnion, nodeEnum:
		return field(c.node, "name")
	case nodeFunctionDefinition:
		name, _ := unwrapDeclarator(field(c.node, "declarator"))
		return name
	case nodeDeclaration, nodeFieldDeclaration, nodeTypeDefinition:
		name, _ := unwrapDeclarator(c.decl)
		return name
	default:
		return nil
	}
}

// nameNode returns the unqualified name the cursor is located at, or nil.
func (c *cursor) nameNode() *tree_sitter.Node {
	n := c.node
	switch n.Kind() {
	case nodeNamespace:
		segments := namespaceSegments(n)
		if len(segments) == 0 {
			return nil
		}
		return segments[len(segments)-1-c.depth]
	case nodeClass, nodeStruct, nodeUnion, nodeEnum:
		return c.tu.recordNameNode(n)
	case nodeFunctionDefinition, nodeDeclaration, nodeFieldDeclaration, nodeTypeDefinition:
		return c.tu.unqualified(c.qualifiedNameNode())
	case nodeParameter, nodeOptionalParameter, nodeVariadicParameter:
		name, _ := unwrapDeclarator(field(n, "declarator"))
		return name
	case nodeEnumerator, nodeAliasDeclaration, nodeDefine, nodeFunctionDefine:
		return field(n, "name")
	case nodeInclude:
		return field(n, "path")
	case nodeUsingDeclaration:
		children := namedChildren(n)
		if len(children) == 0 {
			return nil
		}
		return c.tu.unqualified(children[len(children)-1])
	default:
		return nil
	}
}

// location is the ast.Location of a cursor: a physical position in the
// unit's buffer that is remapped through #line directives on demand.
type location struct {
	tu     *TranslationUnit
	row    uint
	column uint
	valid  bool
}

func (l location) PresumedLocation() (ast.String, uint, uint) {
	if !l.valid {
		return ast.NewString(""), 0, 0
	}
	file, line := l.tu.lines.presumed(l.row)
	return ast.NewString(file), line, l.column
}

func (l location) SpellingLocation() (ast.String, uint, uint) {
	if !l.valid {
		return ast.NewString(""), 0, 0
	}
	return ast.NewString(l.tu.path), l.row, l.column
}
