package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/rht/internal/ast"
)

// children returns the direct child cursors in source order.
func (c *cursor) children() []*cursor {
	tu := c.tu
	n := c.node
	switch c.kind {
	case ast.KindTranslationUnit:
		return tu.collect(n, nil)
	case ast.KindNamespace:
		if c.depth > 0 {
			return []*cursor{tu.newCursor(n, nil, c.depth-1)}
		}
		return tu.collect(field(n, "body"), nil)
	case ast.KindLinkageSpec:
		body := field(n, "body")
		if body != nil && body.Kind() != "declaration_list" {
			// extern "C" int f(); has a single declaration as its body.
			return tu.collectNode(body, nil)
		}
		return tu.collect(body, nil)
	case ast.KindClassDecl, ast.KindStructDecl, ast.KindUnionDecl, ast.KindClassTemplate:
		return tu.collect(field(n, "body"), nil)
	case ast.KindEnumDecl:
		var out []*cursor
		for _, e := range namedChildren(field(n, "body")) {
			if e.Kind() == nodeEnumerator {
				out = append(out, tu.cursorFor(e))
			}
		}
		return out
	case ast.KindFunctionDecl, ast.KindCXXMethod, ast.KindConstructor, ast.KindDestructor, ast.KindFunctionTemplate:
		var out []*cursor
		params := field(c.functionDeclarator(), "parameters")
		if tu.voidParameters(params) {
			params = nil
		}
		for _, p := range namedChildren(params) {
			switch p.Kind() {
			case nodeParameter, nodeOptionalParameter, nodeVariadicParameter:
				out = append(out, tu.cursorFor(p))
			}
		}
		if n.Kind() == nodeFunctionDefinition {
			if body := field(n, "body"); body != nil && body.Kind() == nodeCompoundStatement {
				out = append(out, tu.cursorFor(body))
			}
		}
		return out
	case ast.KindCompoundStmt:
		return tu.collectStatements(n, nil)
	default:
		return nil
	}
}

// collect gathers the declaration cursors directly inside a declaration
// list, looking through preprocessor conditionals and template headers.
func (tu *TranslationUnit) collect(list *tree_sitter.Node, out []*cursor) []*cursor {
	for _, n := range namedChildren(list) {
		out = tu.collectNode(n, out)
	}
	return out
}

func (tu *TranslationUnit) collectNode(n *tree_sitter.Node, out []*cursor) []*cursor {
	switch n.Kind() {
	case nodeNamespace:
		// "namespace a::b" is entered at its outermost segment.
		return append(out, tu.newCursor(n, nil, max(len(namespaceSegments(n))-1, 0)))
	case nodeFunctionDefinition, nodeAliasDeclaration, nodeLinkageSpec,
		nodeUsingDeclaration, nodeInclude, nodeDefine, nodeFunctionDefine, nodeAccessSpecifier,
		nodeEnumerator:
		return append(out, tu.cursorFor(n))
	case nodeClass, nodeStruct, nodeUnion, nodeEnum:
		// A bare "class A;" is a forward declaration and still a cursor.
		return append(out, tu.cursorFor(n))
	case nodeDeclaration, nodeFieldDeclaration, nodeTypeDefinition:
		return tu.collectDeclaration(n, out)
	case nodeTemplateDeclaration:
		for _, child := range namedChildren(n) {
			if child.Kind() != "template_parameter_list" {
				out = tu.collectNode(child, out)
			}
		}
		return out
	case "declaration_list", "field_declaration_list", "preproc_if", "preproc_ifdef",
		"preproc_else", "preproc_elif", "preproc_elifdef", "ERROR":
		return tu.collect(n, out)
	default:
		return out
	}
}

// collectDeclaration splits "struct P { int x; } a, *b;" into the struct
// definition and one cursor per declarator.
func (tu *TranslationUnit) collectDeclaration(n *tree_sitter.Node, out []*cursor) []*cursor {
	declarators := fieldChildren(n, "declarator")
	if t := field(n, "type"); t != nil {
		switch t.Kind() {
		case nodeClass, nodeStruct, nodeUnion, nodeEnum:
			if hasBody(t) || len(declarators) == 0 {
				out = append(out, tu.cursorFor(t))
			}
		}
	}
	for _, d := range declarators {
		if c := tu.newCursor(n, d, 0); c.kind != ast.KindInvalid {
			out = append(out, c)
		}
	}
	return out
}

// collectStatements finds local declarations and nested blocks inside a
// function body, descending through control-flow statements.
func (tu *TranslationUnit) collectStatements(n *tree_sitter.Node, out []*cursor) []*cursor {
	for _, child := range namedChildren(n) {
		switch child.Kind() {
		case nodeCompoundStatement:
			out = append(out, tu.cursorFor(child))
		case nodeDeclaration, nodeTypeDefinition:
			out = tu.collectDeclaration(child, out)
		case nodeAliasDeclaration, nodeUsingDeclaration, nodeClass, nodeStruct, nodeUnion, nodeEnum:
			out = append(out, tu.cursorFor(child))
		case nodeFunctionDefinition, "lambda_expression":
			// Lambda bodies belong to the lambda.
		default:
			out = tu.collectStatements(child, out)
		}
	}
	return out
}
