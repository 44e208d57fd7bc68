package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Tree-sitter node kinds the cursor model cares about.
const (
	nodeTranslationUnit     = "translation_unit"
	nodeNamespace           = "namespace_definition"
	nodeNestedNamespace     = "nested_namespace_specifier"
	nodeNamespaceIdentifier = "namespace_identifier"
	nodeClass               = "class_specifier"
	nodeStruct              = "struct_specifier"
	nodeUnion               = "union_specifier"
	nodeEnum                = "enum_specifier"
	nodeEnumerator          = "enumerator"
	nodeFunctionDefinition  = "function_definition"
	nodeFunctionDeclarator  = "function_declarator"
	nodeDeclaration         = "declaration"
	nodeFieldDeclaration    = "field_declaration"
	nodeTypeDefinition      = "type_definition"
	nodeAliasDeclaration    = "alias_declaration"
	nodeTemplateDeclaration = "template_declaration"
	nodeLinkageSpec         = "linkage_specification"
	nodeUsingDeclaration    = "using_declaration"
	nodeInclude             = "preproc_include"
	nodeDefine              = "preproc_def"
	nodeFunctionDefine      = "preproc_function_def"
	nodeAccessSpecifier     = "access_specifier"
	nodeCompoundStatement   = "compound_statement"
	nodeQualifiedIdentifier = "qualified_identifier"
	nodeTemplateType        = "template_type"
	nodeDestructorName      = "destructor_name"
	nodeParenthesized       = "parenthesized_declarator"
	nodeOperatorCast        = "operator_cast"
	nodeParameter           = "parameter_declaration"
	nodeOptionalParameter   = "optional_parameter_declaration"
	nodeVariadicParameter   = "variadic_parameter_declaration"
	nodeStorageClass        = "storage_class_specifier"
	nodeComment             = "comment"
)

func field(n *tree_sitter.Node, name string) *tree_sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(name)
}

// fieldChildren returns every child stored under a repeated field, such as
// the declarators of "int a, b;".
func fieldChildren(n *tree_sitter.Node, name string) []*tree_sitter.Node {
	tc := n.Walk()
	defer tc.Close()
	nodes := n.ChildrenByFieldName(name, tc)
	out := make([]*tree_sitter.Node, 0, len(nodes))
	for i := range nodes {
		out = append(out, &nodes[i])
	}
	return out
}

func namedChildren(n *tree_sitter.Node) []*tree_sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*tree_sitter.Node, 0, n.ChildCount())
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child != nil && child.IsNamed() && child.Kind() != nodeComment {
			out = append(out, child)
		}
	}
	return out
}

func firstNamedChild(n *tree_sitter.Node) *tree_sitter.Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil && child.IsNamed() {
			return child
		}
	}
	return nil
}

// hasToken reports whether n has a direct child of the given kind, e.g. the
// anonymous "namespace" keyword of a using-directive.
func hasToken(n *tree_sitter.Node, kind string) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil && child.Kind() == kind {
			return true
		}
	}
	return false
}

func isRecordNode(kind string) bool {
	return kind == nodeClass || kind == nodeStruct || kind == nodeUnion
}

// hasBody reports whether a class, struct, union or enum specifier is a
// definition rather than a reference to the type.
func hasBody(n *tree_sitter.Node) bool {
	return field(n, "body") != nil
}

// isScopeNode reports whether n opens a scope that declarations can belong to.
func isScopeNode(n *tree_sitter.Node) bool {
	switch n.Kind() {
	case nodeTranslationUnit, nodeNamespace, nodeFunctionDefinition:
		return true
	case nodeClass, nodeStruct, nodeUnion, nodeEnum:
		return hasBody(n)
	default:
		return false
	}
}

func lexicalScope(n *tree_sitter.Node) *tree_sitter.Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if isScopeNode(p) {
			return p
		}
	}
	return nil
}

// templateOf returns the template declaration that n is the templated entity
// of. Explicit specializations ("template<>") are not templates.
func templateOf(n *tree_sitter.Node) *tree_sitter.Node {
	p := n.Parent()
	if p == nil || p.Kind() != nodeTemplateDeclaration {
		return nil
	}
	if len(namedChildren(field(p, "parameters"))) == 0 {
		return nil
	}
	return p
}

// unwrapDeclarator peels pointer, reference, array and init declarators off
// a declarator and returns the declared name. fn is the function declarator
// when the declarator declares a function; it is nil for variables,
// including pointers to functions such as "int (*fp)(int)". Abstract
// declarators ("const A&", "void (*)(int)") declare no name.
func unwrapDeclarator(n *tree_sitter.Node) (name, fn *tree_sitter.Node) {
	for n != nil {
		switch n.Kind() {
		case "init_declarator", "pointer_declarator", "array_declarator", "reference_declarator", "attributed_declarator":
			n = declaratorChild(n)
		case nodeParenthesized:
			fn = nil
			n = firstNamedChild(n)
		case nodeFunctionDeclarator:
			if fn == nil {
				fn = n
			}
			n = field(n, "declarator")
		case "abstract_pointer_declarator", "abstract_reference_declarator", "abstract_array_declarator",
			"abstract_function_declarator", "abstract_parenthesized_declarator":
			return nil, fn
		default:
			if fn == nil {
				fn = castDeclarator(n)
			}
			return n, fn
		}
	}
	return nil, fn
}

// castDeclarator returns the parameter list holder of a conversion operator
// name, "operator bool() const" or "A::operator bool()", or nil when name is
// something else.
func castDeclarator(name *tree_sitter.Node) *tree_sitter.Node {
	for name != nil && name.Kind() == nodeQualifiedIdentifier {
		name = field(name, "name")
	}
	if name == nil || name.Kind() != nodeOperatorCast {
		return nil
	}
	return field(name, "declarator")
}

func declaratorChild(n *tree_sitter.Node) *tree_sitter.Node {
	if d := field(n, "declarator"); d != nil {
		return d
	}
	return firstNamedChild(n)
}

// qualifiedName splits a possibly qualified name into its scope segments and
// the final name node. global is set for names spelled with a leading "::".
func (tu *TranslationUnit) qualifiedName(n *tree_sitter.Node) (scopes []string, name *tree_sitter.Node, global bool) {
	first := true
	for n != nil && n.Kind() == nodeQualifiedIdentifier {
		scope := field(n, "scope")
		if scope == nil {
			if first {
				global = true
			}
		} else {
			scopes = append(scopes, tu.scopeSegment(scope))
		}
		first = false
		n = field(n, "name")
	}
	return scopes, n, global
}

// scopeSegment renders one qualifier: "Vec<T>" contributes "Vec".
func (tu *TranslationUnit) scopeSegment(n *tree_sitter.Node) string {
	if n.Kind() == nodeTemplateType {
		if name := field(n, "name"); name != nil {
			return tu.text(name)
		}
	}
	return tu.text(n)
}

// unqualified returns the last segment of a possibly qualified name.
func (tu *TranslationUnit) unqualified(n *tree_sitter.Node) *tree_sitter.Node {
	_, name, _ := tu.qualifiedName(n)
	return name
}

// namespaceSegments returns the identifiers of a namespace definition, one
// per segment of "namespace a::b::c". Anonymous namespaces have none.
func namespaceSegments(n *tree_sitter.Node) []*tree_sitter.Node {
	name := field(n, "name")
	if name == nil {
		return nil
	}
	if name.Kind() != nodeNestedNamespace {
		return []*tree_sitter.Node{name}
	}
	var segments []*tree_sitter.Node
	var collect func(*tree_sitter.Node)
	collect = func(x *tree_sitter.Node) {
		for _, child := range namedChildren(x) {
			if child.Kind() == nodeNamespaceIdentifier {
				segments = append(segments, child)
			} else {
				collect(child)
			}
		}
	}
	collect(name)
	return segments
}

// recordNameNode returns the unqualified name of a class, struct, union or
// enum specifier, or nil when it is anonymous.
func (tu *TranslationUnit) recordNameNode(n *tree_sitter.Node) *tree_sitter.Node {
	name := tu.unqualified(field(n, "name"))
	if name != nil && name.Kind() == nodeTemplateType {
		return field(name, "name")
	}
	return name
}

func (tu *TranslationUnit) hasStorageClass(n *tree_sitter.Node, class string) bool {
	for _, child := range namedChildren(n) {
		if child.Kind() == nodeStorageClass && strings.TrimSpace(tu.text(child)) == class {
			return true
		}
	}
	return false
}
