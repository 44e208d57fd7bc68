package astutil

import (
	"strings"

	"github.com/standardbeagle/rht/internal/ast"
)

// ScopeSeparator joins the segments of a qualified name.
const ScopeSeparator = "::"

// QualifyingKinds are the ancestor kinds that contribute a segment to a
// qualified name. The ancestor walk stops at the first kind outside the set.
var QualifyingKinds = [...]ast.Kind{
	ast.KindClassDecl,
	ast.KindStructDecl,
	ast.KindNamespace,
}

// FullName returns the fully-qualified name of c: the display names of its
// enclosing classes, structs and namespaces, outermost first, each followed
// by "::", then c's own display name. Anonymous scopes contribute whatever
// the parser reports for them. The result is recomputed on every call.
func FullName(c ast.Cursor) string {
	var scopes []string
	parent := c.SemanticParent()
	for Contains(parent.Kind(), QualifyingKinds[:]...) {
		scopes = append(scopes, ToString(parent.DisplayName()))
		parent = parent.SemanticParent()
	}

	var sb strings.Builder
	for i := len(scopes) - 1; i >= 0; i-- {
		sb.WriteString(scopes[i])
		sb.WriteString(ScopeSeparator)
	}
	sb.WriteString(ToString(c.DisplayName()))
	return sb.String()
}

// ToString copies a parser-owned string and releases the handle. The handle
// must not be read again afterwards.
func ToString(s ast.String) string {
	result := s.CString()
	s.Dispose()
	return result
}

// Contains reports whether item equals any element of items.
func Contains[T comparable](item T, items ...T) bool {
	for _, other := range items {
		if item == other {
			return true
		}
	}
	return false
}
