package parser

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/rht/internal/ast"
	"github.com/standardbeagle/rht/internal/debug"
)

// scopeEntry is a namespace or record definition. depth selects a segment
// of a nested namespace definition: 0 is the innermost.
type scopeEntry struct {
	node  *tree_sitter.Node
	depth int
}

// scopeIndex maps "::"-joined scope paths to the definitions that open them.
// Reopened namespaces register one entry per block.
type scopeIndex struct {
	byPath map[string][]scopeEntry
}

func buildScopeIndex(tu *TranslationUnit) scopeIndex {
	idx := scopeIndex{byPath: make(map[string][]scopeEntry)}
	if tu.tree == nil {
		return idx
	}
	var walk func(n *tree_sitter.Node, path []string)
	walk = func(n *tree_sitter.Node, path []string) {
		for _, child := range namedChildren(n) {
			childPath := path
			if isScopeNode(child) {
				segments := tu.scopeSegments(child)
				for i, seg := range segments {
					childPath = append(childPath[:len(childPath):len(childPath)], seg)
					if child.Kind() == nodeNamespace || i == len(segments)-1 {
						key := strings.Join(childPath, "::")
						idx.byPath[key] = append(idx.byPath[key], scopeEntry{node: child, depth: len(segments) - 1 - i})
					}
				}
			}
			walk(child, childPath)
		}
	}
	walk(tu.tree.RootNode(), nil)
	debug.LogParse("indexed %d scopes in %s\n", len(idx.byPath), tu.path)
	return idx
}

// scopeSegments returns the path segments a scope node contributes. Names
// that cannot be spelled in a qualifier get a unique placeholder so they
// never match a lookup.
func (tu *TranslationUnit) scopeSegments(n *tree_sitter.Node) []string {
	switch n.Kind() {
	case nodeNamespace:
		ids := namespaceSegments(n)
		if len(ids) == 0 {
			return []string{fmt.Sprintf("<anonymous@%d>", n.StartByte())}
		}
		segments := make([]string, len(ids))
		for i, id := range ids {
			segments[i] = tu.text(id)
		}
		return segments
	case nodeClass, nodeStruct, nodeUnion, nodeEnum:
		scopes, name, _ := tu.qualifiedName(field(n, "name"))
		if name == nil {
			return []string{fmt.Sprintf("<anonymous@%d>", n.StartByte())}
		}
		return append(scopes, tu.scopeSegment(name))
	case nodeFunctionDefinition:
		return []string{fmt.Sprintf("<function@%d>", n.StartByte())}
	default:
		return nil
	}
}

// scopePath returns the segments leading to and including scope node n,
// minus the depth innermost segments of a nested namespace.
func (tu *TranslationUnit) scopePath(n *tree_sitter.Node, depth int) []string {
	var chain []*tree_sitter.Node
	for p := n; p != nil; p = p.Parent() {
		if p.Kind() != nodeTranslationUnit && isScopeNode(p) {
			chain = append(chain, p)
		}
	}
	var path []string
	for i := len(chain) - 1; i >= 0; i-- {
		path = append(path, tu.scopeSegments(chain[i])...)
	}
	return path[:len(path)-depth]
}

// lookupScope resolves a qualifier the way name lookup does: try the
// qualifier inside from, then inside each enclosing scope out to the
// translation unit.
func (tu *TranslationUnit) lookupScope(from *tree_sitter.Node, depth int, qualifier []string, global bool) (scopeEntry, bool) {
	idx := tu.index()
	var base []string
	if !global && from != nil && from.Kind() != nodeTranslationUnit {
		base = tu.scopePath(from, depth)
	}
	for i := len(base); i >= 0; i-- {
		key := strings.Join(append(base[:i:i], qualifier...), "::")
		if entries := idx.byPath[key]; len(entries) > 0 {
			return entries[0], true
		}
	}
	return scopeEntry{}, false
}

// scopeCursor returns the cursor for a scope node found by lexicalScope.
func (tu *TranslationUnit) scopeCursor(n *tree_sitter.Node, depth int) ast.Cursor {
	if n == nil {
		return ast.NullCursor
	}
	return tu.newCursor(n, nil, depth)
}

// semanticParent implements ast.Cursor.SemanticParent.
func (c *cursor) semanticParent() ast.Cursor {
	tu := c.tu
	switch c.kind {
	case ast.KindTranslationUnit, ast.KindInvalid:
		return ast.NullCursor
	case ast.KindNamespace:
		if c.depth < len(namespaceSegments(c.node))-1 {
			return tu.newCursor(c.node, nil, c.depth+1)
		}
	case ast.KindParmDecl:
		if owner := tu.parameterOwner(c.node); owner != nil {
			return owner
		}
	}
	return c.enclosingScope()
}

// enclosingScope resolves the scope a declaration belongs to: the scope its
// qualifier names, or else the scope it is written in. It does not read
// c.kind, so classification can use it.
func (c *cursor) enclosingScope() ast.Cursor {
	tu := c.tu
	lexical := lexicalScope(c.node)
	if name := c.qualifiedNameNode(); name != nil && name.Kind() == nodeQualifiedIdentifier {
		qualifier, _, global := tu.qualifiedName(name)
		if len(qualifier) > 0 {
			if entry, ok := tu.lookupScope(lexical, 0, qualifier, global); ok {
				return tu.newCursor(entry.node, nil, entry.depth)
			}
			debug.Infof("%s: cannot resolve scope %q, using the enclosing scope", c.spellingString(), strings.Join(qualifier, "::"))
		}
	}
	return tu.scopeCursor(lexical, 0)
}

// parameterOwner returns the function cursor a parameter belongs to, or nil
// for parameters of lambdas and templates.
func (tu *TranslationUnit) parameterOwner(param *tree_sitter.Node) ast.Cursor {
	list := param.Parent()
	if list == nil {
		return nil
	}
	declarator := list.Parent()
	if declarator == nil || declarator.Kind() != nodeFunctionDeclarator {
		return nil
	}
	child := declarator
	for p := declarator.Parent(); p != nil; child, p = p, p.Parent() {
		switch p.Kind() {
		case nodeFunctionDefinition:
			return tu.newCursor(p, nil, 0)
		case nodeDeclaration, nodeFieldDeclaration, nodeTypeDefinition:
			return tu.newCursor(p, child, 0)
		case "init_declarator", "pointer_declarator", "array_declarator", "reference_declarator",
			"attributed_declarator", nodeParenthesized, nodeFunctionDeclarator:
			continue
		default:
			return nil
		}
	}
	return nil
}
