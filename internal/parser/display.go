package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/rht/internal/ast"
)

// displayName renders the name clang would show for the cursor: functions
// carry their parameter types and class templates their parameter list.
func (c *cursor) displayName() string {
	tu := c.tu
	switch c.kind {
	case ast.KindTranslationUnit:
		return tu.path
	case ast.KindFunctionDecl, ast.KindCXXMethod, ast.KindConstructor, ast.KindDestructor, ast.KindFunctionTemplate:
		return tu.nameText(c.nameNode()) + "(" + strings.Join(tu.parameterTypes(c.functionDeclarator()), ", ") + ")"
	case ast.KindClassTemplate:
		name := tu.text(c.nameNode())
		if name == "" {
			return ""
		}
		return name + "<" + strings.Join(tu.templateParameters(templateOf(c.node)), ", ") + ">"
	case ast.KindInclusionDirective:
		return strings.Trim(tu.text(c.nameNode()), "\"<>")
	case ast.KindCompoundStmt, ast.KindLinkageSpec, ast.KindCXXAccessSpecifier, ast.KindInvalid:
		return ""
	default:
		return tu.nameText(c.nameNode())
	}
}

// functionDeclarator returns the function_declarator of a function cursor.
func (c *cursor) functionDeclarator() *tree_sitter.Node {
	d := c.decl
	if c.node.Kind() == nodeFunctionDefinition {
		d = field(c.node, "declarator")
	}
	_, fn := unwrapDeclarator(d)
	return fn
}

// parameterTypes renders each parameter without its name or default value.
// "(void)" has no parameters.
func (tu *TranslationUnit) parameterTypes(fn *tree_sitter.Node) []string {
	list := field(fn, "parameters")
	var types []string
	for _, p := range namedChildren(list) {
		switch p.Kind() {
		case nodeParameter, nodeOptionalParameter:
			types = append(types, tu.parameterType(p))
		case nodeVariadicParameter:
			types = append(types, tu.parameterType(p)+"...")
		}
	}
	if tu.voidParameters(list) {
		types = nil
	}
	if list != nil && hasToken(list, "...") {
		types = append(types, "...")
	}
	return types
}

// voidParameters reports a "(void)" list, which declares no parameters.
func (tu *TranslationUnit) voidParameters(list *tree_sitter.Node) bool {
	params := namedChildren(list)
	return len(params) == 1 && params[0].Kind() == nodeParameter &&
		field(params[0], "declarator") == nil && tu.parameterType(params[0]) == "void"
}

// parameterType is the text of a parameter with the declared identifier and
// any default argument cut out.
func (tu *TranslationUnit) parameterType(p *tree_sitter.Node) string {
	start, end := p.StartByte(), p.EndByte()
	if def := field(p, "default_value"); def != nil {
		end = def.StartByte()
	}
	text := string(tu.content[start:end])
	if name, _ := unwrapDeclarator(field(p, "declarator")); name != nil && name.Kind() == "identifier" {
		i, j := name.StartByte()-start, name.EndByte()-start
		if j <= uint(len(text)) {
			text = text[:i] + text[j:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "=")
	return collapseSpace(strings.ReplaceAll(text, "...", ""))
}

func (tu *TranslationUnit) templateParameters(tmpl *tree_sitter.Node) []string {
	var out []string
	for _, p := range namedChildren(field(tmpl, "parameters")) {
		name := field(p, "name")
		if name == nil {
			name, _ = unwrapDeclarator(field(p, "declarator"))
		}
		if name == nil {
			// "typename..." and friends spell the parameter in the last child.
			if children := namedChildren(p); len(children) > 0 {
				name = children[len(children)-1]
			}
		}
		out = append(out, tu.text(name))
	}
	return out
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
