package astutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/rht/internal/ast"
)

func TestFullName_NoQualifyingAncestor(t *testing.T) {
	tu := newTree()
	f := tu.add(ast.KindFunctionDecl, "free_function(int)")

	assert.Equal(t, "free_function(int)", FullName(f))
}

func TestFullName_ThreeLevels(t *testing.T) {
	tu := newTree()
	c := tu.add(ast.KindNamespace, "A").
		add(ast.KindClassDecl, "B").
		add(ast.KindStructDecl, "C")
	field := c.add(ast.KindFieldDecl, "value")

	assert.Equal(t, "A::B::C::value", FullName(field))
	assert.Equal(t, "A::B::C", FullName(c))
}

func TestFullName_Scenario(t *testing.T) {
	tu := newTree()
	f := tu.add(ast.KindNamespace, "N1").
		add(ast.KindClassDecl, "C1").
		add(ast.KindFunctionDecl, "f")

	assert.Equal(t, "N1::C1::f", FullName(f))
}

func TestFullName_StopsAtNonQualifyingKind(t *testing.T) {
	tests := []struct {
		name     string
		stopKind ast.Kind
	}{
		{"function scope", ast.KindFunctionDecl},
		{"method scope", ast.KindCXXMethod},
		{"class template", ast.KindClassTemplate},
		{"union", ast.KindUnionDecl},
		{"enum", ast.KindEnumDecl},
		{"linkage spec", ast.KindLinkageSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tu := newTree()
			local := tu.add(ast.KindNamespace, "outer").
				add(ast.KindNamespace, "skipped").
				add(tt.stopKind, "stop").
				add(ast.KindStructDecl, "Local").
				add(ast.KindFieldDecl, "x")

			// the walk never passes the stop kind, so nothing above it appears
			assert.Equal(t, "Local::x", FullName(local))
		})
	}
}

func TestFullName_AnonymousScopePassesThrough(t *testing.T) {
	tu := newTree()
	f := tu.add(ast.KindNamespace, "outer").
		add(ast.KindNamespace, "").
		add(ast.KindFunctionDecl, "helper()")

	assert.Equal(t, "outer::::helper()", FullName(f))
}

func TestFullName_InvalidParentStopsWalk(t *testing.T) {
	orphan := &fakeCursor{kind: ast.KindClassDecl, name: "Orphan", handles: new([]ast.String)}
	assert.Equal(t, "Orphan", FullName(orphan))
}

func TestFullName_DisposesHandles(t *testing.T) {
	tu := newTree()
	f := tu.add(ast.KindNamespace, "ns").add(ast.KindFunctionDecl, "f")

	FullName(f)

	assert.Len(t, *tu.handles, 2)
	for _, h := range *tu.handles {
		assert.True(t, h.Disposed())
	}
}

func TestFullName_Recomputed(t *testing.T) {
	tu := newTree()
	ns := tu.add(ast.KindNamespace, "before")
	f := ns.add(ast.KindFunctionDecl, "f")
	assert.Equal(t, "before::f", FullName(f))

	ns.name = "after"
	assert.Equal(t, "after::f", FullName(f))
}

func TestToString(t *testing.T) {
	s := ast.NewString("Widget")
	assert.Equal(t, "Widget", ToString(s))
	assert.True(t, s.Disposed())
	assert.Equal(t, "", s.CString())
}

func TestContains(t *testing.T) {
	assert.True(t, Contains(ast.KindNamespace, QualifyingKinds[:]...))
	assert.False(t, Contains(ast.KindTranslationUnit, QualifyingKinds[:]...))
	assert.True(t, Contains("b", "a", "b", "c"))
	assert.False(t, Contains(4, 1, 2, 3))
	assert.False(t, Contains(1))
}

func TestQualifyingKindsArraySize(t *testing.T) {
	const n = len(QualifyingKinds)
	assert.Equal(t, 3, n)
}
